package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/storage"
)

func newTestStore(t *testing.T, kv storage.KV) (*Store, *feed.Recorder) {
	t.Helper()
	rec := &feed.Recorder{}
	s := NewStore(kv, Options{Logger: logging.Discard(), Publisher: rec})
	require.NoError(t, s.Hydrate(context.Background()))
	return s, rec
}

func TestLogin_RequiresClosedRole(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemory())

	_, err := s.Login(context.Background(), User{ID: "u1", Name: "Ann", Role: Role("pastor")})
	require.ErrorIs(t, err, ErrInvalidRole)
	assert.False(t, s.IsAuthenticated())

	_, err = s.Login(context.Background(), User{Name: "Ann", Role: RoleMember})
	require.ErrorIs(t, err, ErrInvalidUser)
}

func TestLogin_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, rec := newTestStore(t, kv)

	sess, err := s.Login(ctx, User{ID: "u1", Name: " Ann ", Role: RoleMember})
	require.NoError(t, err)
	assert.Equal(t, "Ann", sess.User.Name)
	assert.Equal(t, []string{TopicUpdated}, rec.Topics())

	again, _ := newTestStore(t, kv)
	require.True(t, again.IsAuthenticated())
	assert.Equal(t, "u1", again.Session().User.ID)
}

func TestLoginAsGuest_FixedIdentity(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemory())
	sess := s.LoginAsGuest(context.Background())
	require.NotNil(t, sess.User)
	assert.Equal(t, GuestUser(), *sess.User)
}

func TestLogout_RemovesStorageKey(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := newTestStore(t, kv)
	s.LoginAsGuest(ctx)

	sess := s.Logout(ctx)
	assert.Nil(t, sess.User)

	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Flush(ctx))
	_, ok, _ = kv.Get(ctx, StorageKey)
	assert.False(t, ok)
}

func TestLogout_KeepsWelcomeSeenAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := newTestStore(t, kv)
	s.SetWelcomeSeen(ctx)
	s.LoginAsGuest(ctx)

	sess := s.Logout(ctx)
	assert.Nil(t, sess.User)
	assert.True(t, sess.WelcomeSeen)
	require.NoError(t, s.Flush(ctx))

	again, _ := newTestStore(t, kv)
	assert.False(t, again.IsAuthenticated())
	assert.True(t, again.Session().WelcomeSeen)
}

func TestWelcomeFlag_OneWayUntilReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())

	s.SetWelcomeSeen(ctx)
	s.SetWelcomeSeen(ctx)
	assert.True(t, s.Session().WelcomeSeen)

	s.ResetWelcome(ctx)
	assert.False(t, s.Session().WelcomeSeen)
}

func TestSession_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemory())
	s.LoginAsGuest(context.Background())

	sess := s.Session()
	sess.User.Name = "mutated"
	assert.Equal(t, "Guest", s.Session().User.Name)
}

func TestHydrate_DropsUnknownStoredRole(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, StorageKey, `{"version":1,"savedAtMs":1,"state":{"user":{"id":"u","name":"x","role":"root"},"welcomeSeen":true}}`))

	s := NewStore(kv, Options{Logger: logging.Discard()})
	require.ErrorIs(t, s.Hydrate(ctx), ErrInvalidRole)
	assert.False(t, s.IsAuthenticated())
	assert.True(t, s.Session().WelcomeSeen)
}

func TestOnboarding_CompleteAndReset(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	o := NewOnboarding(kv, Options{Logger: logging.Discard()})
	require.NoError(t, o.Hydrate(ctx))
	assert.False(t, o.Completed())

	o.Complete(ctx)
	again := NewOnboarding(kv, Options{Logger: logging.Discard()})
	require.NoError(t, again.Hydrate(ctx))
	assert.True(t, again.Completed())

	again.Reset(ctx)
	assert.False(t, again.Completed())
}
