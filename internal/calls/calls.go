// Package calls tracks the single in-progress call and the archive of finished ones.
package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey   = "call-storage"
	TopicUpdated = "call.updated"

	HistoryLimit = 100
)

var (
	ErrInvalidCall       = errors.New("invalid call")
	ErrCallInProgress    = errors.New("a call is already in progress")
	ErrNoActiveCall      = errors.New("no active call")
	ErrInvalidTransition = errors.New("invalid call status transition")
	ErrInvalidStatus     = errors.New("invalid call status")
)

type Type string

const (
	TypeAudio Type = "audio"
	TypeVideo Type = "video"
)

type Status string

const (
	StatusCalling  Status = "calling"
	StatusRinging  Status = "ringing"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
	StatusMissed   Status = "missed"
	StatusDeclined Status = "declined"
)

var transitions = map[Status][]Status{
	StatusCalling: {StatusRinging, StatusActive, StatusMissed, StatusDeclined, StatusEnded},
	StatusRinging: {StatusActive, StatusMissed, StatusDeclined, StatusEnded},
	StatusActive:  {StatusEnded},
}

func (s Status) Valid() bool {
	switch s {
	case StatusCalling, StatusRinging, StatusActive, StatusEnded, StatusMissed, StatusDeclined:
		return true
	}
	return false
}

// CanTransition reports whether a call in status from may move to status to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Session struct {
	ID            string        `json:"id"`
	CallerID      string        `json:"callerId"`
	CallerName    string        `json:"callerName"`
	ReceiverID    string        `json:"receiverId,omitempty"`
	ReceiverName  string        `json:"receiverName,omitempty"`
	GroupID       string        `json:"groupId,omitempty"`
	GroupName     string        `json:"groupName,omitempty"`
	Participants  []Participant `json:"participants,omitempty"`
	IsGroupCall   bool          `json:"isGroupCall"`
	Type          Type          `json:"type"`
	Status        Status        `json:"status"`
	StartTime     time.Time     `json:"startTime"`
	EndTime       *time.Time    `json:"endTime,omitempty"`
	Duration      int           `json:"duration"`
	IsRecording   bool          `json:"isRecording"`
	RecordingURL  string        `json:"recordingUrl,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Transcription string        `json:"transcription,omitempty"`
}

type Start struct {
	CallerID     string        `json:"callerId" validate:"required"`
	CallerName   string        `json:"callerName"`
	ReceiverID   string        `json:"receiverId"`
	ReceiverName string        `json:"receiverName"`
	GroupID      string        `json:"groupId"`
	GroupName    string        `json:"groupName"`
	Participants []Participant `json:"participants"`
	Type         Type          `json:"type" validate:"required,oneof=audio video"`
}

type Recording struct {
	ID          string    `json:"id"`
	CallID      string    `json:"callId"`
	URL         string    `json:"url"`
	DurationSec int       `json:"duration"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Note struct {
	ID        string    `json:"id"`
	CallID    string    `json:"callId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the runtime view. Only History, Recordings and Notes are persisted.
type State struct {
	Current        *Session    `json:"currentCall"`
	IsMuted        bool        `json:"isMuted"`
	IsSpeakerOn    bool        `json:"isSpeakerOn"`
	IsVideoEnabled bool        `json:"isVideoEnabled"`
	IsRecording    bool        `json:"isRecording"`
	Duration       int         `json:"callDuration"`
	History        []Session   `json:"callHistory"`
	Recordings     []Recording `json:"recordings"`
	Notes          []Note      `json:"notes"`
}

type snapshot struct {
	History    []Session   `json:"callHistory"`
	Recordings []Recording `json:"recordings"`
	Notes      []Note      `json:"notes"`
}

type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher
	Now       func() time.Time
}

type Store struct {
	repo *persist.Repository[snapshot]
	pub  feed.Publisher
	now  func() time.Time

	mu    sync.Mutex
	state State
	rev   uint64
}

func NewStore(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		repo: persist.New[snapshot](kv, persist.Options[snapshot]{
			Key:      StorageKey,
			Version:  1,
			Defaults: func() snapshot { return snapshot{} },
			Metrics:  opts.Metrics,
			Logger:   opts.Logger.With("component", "calls"),
		}),
		pub: feed.OrNop(opts.Publisher),
		now: opts.Now,
	}
}

func (s *Store) Hydrate(ctx context.Context) error {
	snap, _, err := s.repo.Load(ctx)
	if len(snap.History) > HistoryLimit {
		snap.History = snap.History[:HistoryLimit]
	}
	s.mu.Lock()
	s.state.History = snap.History
	s.state.Recordings = snap.Recordings
	s.state.Notes = snap.Notes
	s.mu.Unlock()
	return err
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

func (s *Store) Current() *Session {
	return s.State().Current
}

func (s *Store) History() []Session {
	return s.State().History
}

// StartCall opens a new call in the calling status. It returns ErrInvalidCall for a malformed
// request and ErrCallInProgress while another call is current; neither changes the state.
func (s *Store) StartCall(ctx context.Context, in Start) (Session, error) {
	in.CallerID = strings.TrimSpace(in.CallerID)
	in.ReceiverID = strings.TrimSpace(in.ReceiverID)
	in.GroupID = strings.TrimSpace(in.GroupID)
	switch {
	case in.CallerID == "":
		return Session{}, fmt.Errorf("%w: caller is required", ErrInvalidCall)
	case in.ReceiverID == "" && in.GroupID == "" && len(in.Participants) == 0:
		return Session{}, fmt.Errorf("%w: receiver, group or participants required", ErrInvalidCall)
	case in.Type != TypeAudio && in.Type != TypeVideo:
		return Session{}, fmt.Errorf("%w: type %q", ErrInvalidCall, in.Type)
	}

	call := Session{
		ID:           uuid.NewString(),
		CallerID:     in.CallerID,
		CallerName:   in.CallerName,
		ReceiverID:   in.ReceiverID,
		ReceiverName: in.ReceiverName,
		GroupID:      in.GroupID,
		GroupName:    in.GroupName,
		Participants: append([]Participant(nil), in.Participants...),
		IsGroupCall:  in.GroupID != "" || len(in.Participants) > 1,
		Type:         in.Type,
		Status:       StatusCalling,
		StartTime:    s.now().UTC(),
	}

	err := s.mutate(ctx, false, func(st *State) error {
		if st.Current != nil {
			return ErrCallInProgress
		}
		st.Current = &call
		st.Duration = 0
		st.IsVideoEnabled = call.Type == TypeVideo
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return copySession(call), nil
}

// UpdateStatus moves the current call along the status machine. Repeating the current status is a
// no-op. Without a current call it returns ErrNoActiveCall and changes nothing.
func (s *Store) UpdateStatus(ctx context.Context, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.mutateCurrent(ctx, func(st *State) error {
		if st.Current.Status == status {
			return nil
		}
		if !CanTransition(st.Current.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st.Current.Status, status)
		}
		st.Current.Status = status
		return nil
	})
}

// UpdateDuration sets the elapsed seconds, clamping negatives to zero. It returns ErrNoActiveCall
// when no call is current.
func (s *Store) UpdateDuration(ctx context.Context, seconds int) error {
	if seconds < 0 {
		seconds = 0
	}
	return s.mutateCurrent(ctx, func(st *State) error {
		st.Duration = seconds
		st.Current.Duration = seconds
		return nil
	})
}

// The toggles and setters below return ErrNoActiveCall and leave the state untouched when no call
// is current.

func (s *Store) ToggleMute(ctx context.Context) error {
	return s.mutateCurrent(ctx, func(st *State) error {
		st.IsMuted = !st.IsMuted
		return nil
	})
}

func (s *Store) ToggleSpeaker(ctx context.Context) error {
	return s.mutateCurrent(ctx, func(st *State) error {
		st.IsSpeakerOn = !st.IsSpeakerOn
		return nil
	})
}

func (s *Store) ToggleVideo(ctx context.Context) error {
	return s.mutateCurrent(ctx, func(st *State) error {
		st.IsVideoEnabled = !st.IsVideoEnabled
		return nil
	})
}

func (s *Store) ToggleRecording(ctx context.Context) error {
	return s.mutateCurrent(ctx, func(st *State) error {
		st.IsRecording = !st.IsRecording
		st.Current.IsRecording = st.IsRecording
		return nil
	})
}

func (s *Store) SetNotes(ctx context.Context, notes string) error {
	return s.mutateCurrent(ctx, func(st *State) error {
		st.Current.Notes = notes
		return nil
	})
}

func (s *Store) SetTranscription(ctx context.Context, text string) error {
	return s.mutateCurrent(ctx, func(st *State) error {
		st.Current.Transcription = text
		return nil
	})
}

// EndCall finalizes the current call, archives it at the head of the history and resets the
// in-call flags. A missed or declined call keeps its status.
func (s *Store) EndCall(ctx context.Context) (Session, error) {
	var ended Session
	err := s.mutate(ctx, true, func(st *State) error {
		if st.Current == nil {
			return ErrNoActiveCall
		}
		call := *st.Current
		end := s.now().UTC()
		call.EndTime = &end
		call.Duration = st.Duration
		if call.Status != StatusMissed && call.Status != StatusDeclined {
			call.Status = StatusEnded
		}
		call.IsRecording = false

		history := make([]Session, 0, min(len(st.History)+1, HistoryLimit))
		history = append(history, call)
		history = append(history, st.History...)
		if len(history) > HistoryLimit {
			history = history[:HistoryLimit]
		}

		st.History = history
		st.Current = nil
		st.IsMuted = false
		st.IsSpeakerOn = false
		st.IsVideoEnabled = false
		st.IsRecording = false
		st.Duration = 0
		ended = copySession(call)
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return ended, nil
}

func (s *Store) AddRecording(ctx context.Context, r Recording) (Recording, error) {
	r.CallID = strings.TrimSpace(r.CallID)
	r.URL = strings.TrimSpace(r.URL)
	if r.CallID == "" || r.URL == "" {
		return Recording{}, fmt.Errorf("%w: recording needs call id and url", ErrInvalidCall)
	}
	r.ID = uuid.NewString()
	r.CreatedAt = s.now().UTC()
	err := s.mutate(ctx, true, func(st *State) error {
		st.Recordings = append(st.Recordings, r)
		if st.Current != nil && st.Current.ID == r.CallID {
			st.Current.RecordingURL = r.URL
		}
		return nil
	})
	return r, err
}

func (s *Store) AddNote(ctx context.Context, callID, text string) (Note, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" || strings.TrimSpace(text) == "" {
		return Note{}, fmt.Errorf("%w: note needs call id and text", ErrInvalidCall)
	}
	n := Note{ID: uuid.NewString(), CallID: callID, Text: text, CreatedAt: s.now().UTC()}
	err := s.mutate(ctx, true, func(st *State) error {
		st.Notes = append(st.Notes, n)
		return nil
	})
	return n, err
}

func (s *Store) ClearHistory(ctx context.Context) {
	_ = s.mutate(ctx, true, func(st *State) error {
		st.History = nil
		return nil
	})
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	rev, snap := s.rev, snapshotOf(s.state)
	s.mu.Unlock()
	if rev == 0 {
		return nil
	}
	return s.repo.Save(ctx, rev, snap)
}

func (s *Store) mutateCurrent(ctx context.Context, fn func(*State) error) error {
	return s.mutate(ctx, false, func(st *State) error {
		if st.Current == nil {
			return ErrNoActiveCall
		}
		return fn(st)
	})
}

// mutate applies fn under the lock. persisted marks changes to the archived logs, the only part
// of the state written to storage.
func (s *Store) mutate(ctx context.Context, persisted bool, fn func(*State) error) error {
	s.mu.Lock()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	var rev uint64
	var snap snapshot
	if persisted {
		s.rev++
		rev, snap = s.rev, snapshotOf(s.state)
	}
	view := copyState(s.state)
	s.mu.Unlock()

	if persisted {
		s.repo.Persist(ctx, rev, snap)
	}
	s.pub.Publish(TopicUpdated, view)
	return nil
}

func snapshotOf(st State) snapshot {
	c := copyState(st)
	return snapshot{History: c.History, Recordings: c.Recordings, Notes: c.Notes}
}

func copySession(c Session) Session {
	c.Participants = append([]Participant(nil), c.Participants...)
	if c.EndTime != nil {
		t := *c.EndTime
		c.EndTime = &t
	}
	return c
}

func copyState(st State) State {
	if st.Current != nil {
		c := copySession(*st.Current)
		st.Current = &c
	}
	history := make([]Session, len(st.History))
	for i, c := range st.History {
		history[i] = copySession(c)
	}
	st.History = history
	st.Recordings = append([]Recording{}, st.Recordings...)
	st.Notes = append([]Note{}, st.Notes...)
	return st
}
