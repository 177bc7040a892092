package appconfig

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/storage"
)

func frozenClock() func() time.Time {
	t := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	s := NewStore(kv, Options{Logger: logging.Discard(), Now: frozenClock()})
	require.NoError(t, s.Hydrate(context.Background()))
	return s
}

func TestUpdateLightColors_PartialMerge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	before := s.Config()
	darkBefore, err := json.Marshal(before.DarkColors)
	require.NoError(t, err)

	accent := "#000000"
	after := s.UpdateLightColors(ctx, ColorsPatch{Accent: &accent})

	want := before.LightColors
	want.Accent = "#000000"
	assert.Equal(t, want, after.LightColors)

	darkAfter, err := json.Marshal(after.DarkColors)
	require.NoError(t, err)
	assert.Equal(t, string(darkBefore), string(darkAfter))
	assert.Equal(t, before.Branding, after.Branding)
	assert.Equal(t, before.Features, after.Features)
	assert.True(t, after.LastUpdated.After(before.LastUpdated))
}

func TestLastUpdated_StrictlyAdvancesOnFrozenClock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	on := true

	first := s.UpdateFeatures(ctx, FeaturesPatch{Donations: &on}).LastUpdated
	second := s.UpdateFeatures(ctx, FeaturesPatch{Donations: &on}).LastUpdated
	third := s.ResetToDefaults(ctx).LastUpdated
	assert.True(t, second.After(first))
	assert.True(t, third.After(second))
}

func TestUpdates_PersistAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	name := "Grace Chapel"
	logo := "https://cdn.example.org/logo.png"
	s.UpdateBranding(ctx, BrandingPatch{ChurchName: &name})
	s.UpdateImages(ctx, ImagesPatch{Logo: &logo})

	again := newTestStore(t, kv)
	cfg := again.Config()
	assert.Equal(t, "Grace Chapel", cfg.Branding.ChurchName)
	assert.Equal(t, Defaults().Branding.Tagline, cfg.Branding.Tagline)
	assert.Equal(t, logo, cfg.Images.Logo)
}

func TestResetToDefaults_RemovesStoredDocument(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	primary := "#123456"
	s.UpdateDarkColors(ctx, ColorsPatch{Primary: &primary})

	cfg := s.ResetToDefaults(ctx)
	assert.Equal(t, Defaults().DarkColors, cfg.DarkColors)

	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Flush(ctx))
	_, ok, _ = kv.Get(ctx, StorageKey)
	assert.False(t, ok)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, storage.NewMemory())
	name := "Hope Church"
	src.UpdateBranding(ctx, BrandingPatch{ChurchName: &name})
	data, err := src.Export()
	require.NoError(t, err)

	dst := newTestStore(t, storage.NewMemory())
	cfg, err := dst.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, "Hope Church", cfg.Branding.ChurchName)
	assert.True(t, cfg.LastUpdated.After(src.Config().LastUpdated))

	_, err = dst.Import(ctx, []byte(`{"branding":`))
	require.ErrorIs(t, err, ErrInvalidImport)
	assert.Equal(t, "Hope Church", dst.Config().Branding.ChurchName)
}

func TestImport_MissingSectionsTakeDefaults(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	cfg, err := s.Import(context.Background(), []byte(`{"features":{"shop":false}}`))
	require.NoError(t, err)
	assert.False(t, cfg.Features.Shop)
	assert.True(t, cfg.Features.Events)
	assert.Equal(t, Defaults().LightColors, cfg.LightColors)
}
