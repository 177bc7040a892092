package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary-app/internal/appconfig"
	"sanctuary-app/internal/auth"
	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/music"
	"sanctuary-app/internal/storage"
	"sanctuary-app/internal/theme"
)

type brokenKV struct {
	*storage.Memory
	failSet bool
}

func (b brokenKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == appconfig.StorageKey {
		return "", false, errors.New("read timeout")
	}
	return b.Memory.Get(ctx, key)
}

func (b brokenKV) Set(ctx context.Context, key, value string) error {
	if b.failSet {
		return errors.New("disk full")
	}
	return b.Memory.Set(ctx, key, value)
}

func TestOpen_HydratesEveryStore(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	first, err := Open(ctx, Deps{KV: kv, Logger: logging.Discard(), AudioLoader: music.NewClockLoader(logging.Discard())})
	require.NoError(t, err)
	require.NoError(t, first.Theme.SetMode(ctx, theme.ModeDark))
	first.Onboarding.Complete(ctx)
	first.Community.SaveDraft(ctx, "c1", "hi")
	require.NoError(t, first.Close(ctx))

	second, err := Open(ctx, Deps{KV: kv, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, theme.ModeDark, second.Theme.Mode())
	assert.True(t, second.Onboarding.Completed())
	assert.Equal(t, "hi", second.Community.GetDraft("c1"))
	assert.NotEmpty(t, second.Events.List())
}

func TestOpen_FailedHydrationKeepsDefaults(t *testing.T) {
	c, err := Open(context.Background(), Deps{KV: brokenKV{Memory: storage.NewMemory()}, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, appconfig.Defaults().Branding, c.AppConfig.Config().Branding)
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, Deps{KV: storage.NewMemory(), Logger: logging.Discard()})
	require.ErrorIs(t, err, context.Canceled)
}

// slowKV fails one key with a deadline and blocks every other read until its context is done.
type slowKV struct {
	*storage.Memory
}

func (s slowKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == theme.StorageKey {
		return "", false, context.DeadlineExceeded
	}
	<-ctx.Done()
	return "", false, ctx.Err()
}

func TestOpen_DeadlineCancelsSiblingHydration(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := Open(context.Background(), Deps{KV: slowKV{Memory: storage.NewMemory()}, Logger: logging.Discard()})
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Open did not return after a hydration deadline")
	}
}

func TestClose_AggregatesFlushErrors(t *testing.T) {
	ctx := context.Background()
	kv := brokenKV{Memory: storage.NewMemory(), failSet: true}
	c, err := Open(ctx, Deps{KV: kv, Logger: logging.Discard()})
	require.NoError(t, err)

	c.Auth.LoginAsGuest(ctx)
	c.Community.SaveDraft(ctx, "c1", "x")
	assert.True(t, c.Auth.IsAuthenticated())
	_, err = c.Auth.Login(ctx, auth.User{ID: "m1", Role: auth.RoleMember})
	require.NoError(t, err)

	err = c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "x", c.Community.State().Drafts["c1"])
}
