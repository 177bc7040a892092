package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/storage"
)

type failingKV struct{ storage.KV }

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestStore_SystemModeFollowsPlatformAtReadTime(t *testing.T) {
	system := NewSystemScheme(SchemeLight)
	s := NewStore(storage.NewMemory(), Options{System: system, Logger: logging.Discard()})
	require.NoError(t, s.Hydrate(context.Background()))

	assert.Equal(t, ModeSystem, s.Mode())
	assert.False(t, s.View().IsDark)

	system.Set(SchemeDark)
	assert.True(t, s.View().IsDark)
	assert.Equal(t, darkPalette, s.View().Palette)
}

func TestStore_SetModePersistsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	rec := &feed.Recorder{}

	s := NewStore(kv, Options{Logger: logging.Discard(), Publisher: rec})
	require.NoError(t, s.SetMode(ctx, ModeDark))
	assert.Equal(t, []string{TopicUpdated}, rec.Topics())

	again := NewStore(kv, Options{Logger: logging.Discard()})
	require.NoError(t, again.Hydrate(ctx))
	assert.Equal(t, ModeDark, again.Mode())
}

func TestStore_SetModeRejectsUnknown(t *testing.T) {
	s := NewStore(storage.NewMemory(), Options{Logger: logging.Discard()})
	err := s.SetMode(context.Background(), Mode("sepia"))
	require.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, ModeSystem, s.Mode())
}

func TestStore_SetModeSurvivesStorageFailure(t *testing.T) {
	s := NewStore(failingKV{storage.NewMemory()}, Options{Logger: logging.Discard()})
	require.NoError(t, s.SetMode(context.Background(), ModeLight))
	assert.Equal(t, ModeLight, s.Mode())
	assert.Error(t, s.Flush(context.Background()))
}

func TestStore_HydrateLegacyPlainValue(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, StorageKey, `"dark"`))

	s := NewStore(kv, Options{Logger: logging.Discard()})
	require.NoError(t, s.Hydrate(ctx))
	assert.Equal(t, ModeDark, s.Mode())
}

func TestStore_HydrateRejectsUnknownStoredMode(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, StorageKey, `{"version":1,"savedAtMs":1,"state":"sepia"}`))

	s := NewStore(kv, Options{Logger: logging.Discard()})
	require.ErrorIs(t, s.Hydrate(ctx), ErrInvalidMode)
	assert.Equal(t, ModeSystem, s.Mode())
}
