package calls

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/storage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T, kv storage.KV) (*Store, *feed.Recorder) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)}
	rec := &feed.Recorder{}
	s := NewStore(kv, Options{Logger: logging.Discard(), Publisher: rec, Now: clock.Now})
	require.NoError(t, s.Hydrate(context.Background()))
	return s, rec
}

func TestStartCall_Validation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())

	_, err := s.StartCall(ctx, Start{ReceiverID: "b", Type: TypeAudio})
	require.ErrorIs(t, err, ErrInvalidCall)
	_, err = s.StartCall(ctx, Start{CallerID: "a", Type: TypeAudio})
	require.ErrorIs(t, err, ErrInvalidCall)
	_, err = s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "b", Type: Type("fax")})
	require.ErrorIs(t, err, ErrInvalidCall)
	assert.Nil(t, s.Current())
}

func TestStartCall_Defaults(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())

	call, err := s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "b", Type: TypeVideo})
	require.NoError(t, err)
	assert.NotEmpty(t, call.ID)
	assert.Equal(t, StatusCalling, call.Status)
	assert.Zero(t, call.Duration)
	assert.False(t, call.IsGroupCall)
	assert.False(t, call.StartTime.IsZero())
	assert.True(t, s.State().IsVideoEnabled)

	_, err = s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "c", Type: TypeAudio})
	require.ErrorIs(t, err, ErrCallInProgress)
	assert.Equal(t, call.ID, s.Current().ID)
	assert.True(t, s.State().IsVideoEnabled)
}

func TestStartCall_GroupDetection(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		in   Start
		want bool
	}{
		{"group id", Start{CallerID: "a", GroupID: "g", Type: TypeAudio}, true},
		{"two participants", Start{CallerID: "a", Participants: []Participant{{ID: "b"}, {ID: "c"}}, Type: TypeAudio}, true},
		{"one participant", Start{CallerID: "a", Participants: []Participant{{ID: "b"}}, Type: TypeAudio}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(t, storage.NewMemory())
			call, err := s.StartCall(ctx, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, call.IsGroupCall)
		})
	}
}

func TestMutators_NoOpWithoutCall(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, storage.NewMemory())

	require.ErrorIs(t, s.ToggleMute(ctx), ErrNoActiveCall)
	require.ErrorIs(t, s.UpdateDuration(ctx, 10), ErrNoActiveCall)
	require.ErrorIs(t, s.UpdateStatus(ctx, StatusActive), ErrNoActiveCall)
	require.ErrorIs(t, s.SetNotes(ctx, "x"), ErrNoActiveCall)
	require.ErrorIs(t, s.ToggleSpeaker(ctx), ErrNoActiveCall)
	require.ErrorIs(t, s.ToggleVideo(ctx), ErrNoActiveCall)
	require.ErrorIs(t, s.ToggleRecording(ctx), ErrNoActiveCall)
	require.ErrorIs(t, s.SetTranscription(ctx, "x"), ErrNoActiveCall)
	_, err := s.EndCall(ctx)
	require.ErrorIs(t, err, ErrNoActiveCall)

	st := s.State()
	assert.Nil(t, st.Current)
	assert.False(t, st.IsMuted)
	assert.False(t, st.IsSpeakerOn)
	assert.False(t, st.IsRecording)
	assert.Zero(t, st.Duration)
	assert.Empty(t, rec.Events())
}

func TestUpdateStatus_Transitions(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())
	_, err := s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "b", Type: TypeAudio})
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, StatusRinging))
	require.NoError(t, s.UpdateStatus(ctx, StatusActive))
	require.ErrorIs(t, s.UpdateStatus(ctx, StatusMissed), ErrInvalidTransition)
	require.ErrorIs(t, s.UpdateStatus(ctx, StatusRinging), ErrInvalidTransition)
	require.ErrorIs(t, s.UpdateStatus(ctx, Status("on-hold")), ErrInvalidStatus)
	assert.Equal(t, StatusActive, s.Current().Status)
}

func TestEndCall_ArchivesAndResetsFlags(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())
	_, err := s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "b", Type: TypeVideo})
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, StatusActive))
	require.NoError(t, s.ToggleMute(ctx))
	require.NoError(t, s.ToggleSpeaker(ctx))
	require.NoError(t, s.ToggleRecording(ctx))
	require.NoError(t, s.UpdateDuration(ctx, 95))
	require.NoError(t, s.SetNotes(ctx, "prayer request"))

	ended, err := s.EndCall(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, ended.Status)
	assert.Equal(t, 95, ended.Duration)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, "prayer request", ended.Notes)

	st := s.State()
	assert.Nil(t, st.Current)
	assert.False(t, st.IsMuted || st.IsSpeakerOn || st.IsVideoEnabled || st.IsRecording)
	assert.Zero(t, st.Duration)
	require.Len(t, st.History, 1)
}

func TestEndCall_KeepsMissedStatus(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())
	_, err := s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "b", Type: TypeAudio})
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, StatusMissed))

	ended, err := s.EndCall(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusMissed, ended.Status)
}

func TestHistory_CapAndOrder(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := newTestStore(t, kv)

	var ids []string
	for i := 0; i < HistoryLimit+1; i++ {
		call, err := s.StartCall(ctx, Start{CallerID: "me", ReceiverID: fmt.Sprintf("r%d", i), Type: TypeAudio})
		require.NoError(t, err)
		_, err = s.EndCall(ctx)
		require.NoError(t, err)
		ids = append(ids, call.ID)
	}

	history := s.History()
	require.Len(t, history, HistoryLimit)
	assert.Equal(t, ids[HistoryLimit], history[0].ID)
	assert.Equal(t, ids[1], history[HistoryLimit-1].ID)
	for _, c := range history {
		assert.NotEqual(t, ids[0], c.ID)
	}

	again, _ := newTestStore(t, kv)
	require.Len(t, again.History(), HistoryLimit)
	assert.Equal(t, ids[HistoryLimit], again.History()[0].ID)
	assert.Nil(t, again.Current())
}

func TestLogs_AppendOnlyAndPersisted(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := newTestStore(t, kv)
	call, err := s.StartCall(ctx, Start{CallerID: "a", ReceiverID: "b", Type: TypeAudio})
	require.NoError(t, err)

	_, err = s.AddRecording(ctx, Recording{CallID: call.ID, URL: "https://cdn.example.org/r1.m4a", DurationSec: 30})
	require.NoError(t, err)
	_, err = s.AddNote(ctx, call.ID, "follow up Tuesday")
	require.NoError(t, err)
	_, err = s.AddNote(ctx, call.ID, " ")
	require.ErrorIs(t, err, ErrInvalidCall)
	assert.Equal(t, "https://cdn.example.org/r1.m4a", s.Current().RecordingURL)

	s.ClearHistory(ctx)

	again, _ := newTestStore(t, kv)
	st := again.State()
	require.Len(t, st.Recordings, 1)
	require.Len(t, st.Notes, 1)
	assert.Equal(t, "follow up Tuesday", st.Notes[0].Text)
	assert.Empty(t, st.History)
}
