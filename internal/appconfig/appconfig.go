// Package appconfig stores the editable theming, branding and feature document.
package appconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey   = "app-config-storage"
	TopicUpdated = "app-config.updated"
)

var ErrInvalidImport = errors.New("invalid config document")

type Config struct {
	LightColors Colors    `json:"lightColors"`
	DarkColors  Colors    `json:"darkColors"`
	Branding    Branding  `json:"branding"`
	Images      Images    `json:"images"`
	Features    Features  `json:"features"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher
	Now       func() time.Time
}

type Store struct {
	repo *persist.Repository[Config]
	pub  feed.Publisher
	now  func() time.Time

	mu      sync.Mutex
	config  Config
	rev     uint64
	cleared bool
}

func NewStore(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		repo: persist.New[Config](kv, persist.Options[Config]{
			Key:      StorageKey,
			Version:  1,
			Defaults: Defaults,
			Metrics:  opts.Metrics,
			Logger:   opts.Logger.With("component", "app-config"),
		}),
		pub:    feed.OrNop(opts.Publisher),
		now:    opts.Now,
		config: Defaults(),
	}
}

func (s *Store) Hydrate(ctx context.Context) error {
	cfg, _, err := s.repo.Load(ctx)
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return err
}

func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Store) UpdateLightColors(ctx context.Context, p ColorsPatch) Config {
	return s.mutate(ctx, func(c *Config) { p.apply(&c.LightColors) })
}

func (s *Store) UpdateDarkColors(ctx context.Context, p ColorsPatch) Config {
	return s.mutate(ctx, func(c *Config) { p.apply(&c.DarkColors) })
}

func (s *Store) UpdateBranding(ctx context.Context, p BrandingPatch) Config {
	return s.mutate(ctx, func(c *Config) { p.apply(&c.Branding) })
}

func (s *Store) UpdateImages(ctx context.Context, p ImagesPatch) Config {
	return s.mutate(ctx, func(c *Config) { p.apply(&c.Images) })
}

func (s *Store) UpdateFeatures(ctx context.Context, p FeaturesPatch) Config {
	return s.mutate(ctx, func(c *Config) { p.apply(&c.Features) })
}

// Export returns the whole document as JSON.
func (s *Store) Export() ([]byte, error) {
	return json.MarshalIndent(s.Config(), "", "  ")
}

// Import replaces the document. Only the JSON shape is checked; sections missing from data
// take their default values.
func (s *Store) Import(ctx context.Context, data []byte) (Config, error) {
	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return s.mutate(ctx, func(c *Config) { *c = cfg }), nil
}

// ResetToDefaults restores the defaults and deletes the stored document.
func (s *Store) ResetToDefaults(ctx context.Context) Config {
	s.mu.Lock()
	last := s.config.LastUpdated
	s.config = Defaults()
	s.config.LastUpdated = s.nextStamp(last)
	s.rev++
	rev, out := s.rev, s.config
	s.cleared = true
	s.mu.Unlock()

	s.repo.Forget(ctx, rev)
	s.pub.Publish(TopicUpdated, out)
	return out
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	cfg, rev, cleared := s.config, s.rev, s.cleared
	s.mu.Unlock()
	if rev == 0 {
		return nil
	}
	if cleared {
		return s.repo.Clear(ctx, rev)
	}
	return s.repo.Save(ctx, rev, cfg)
}

func (s *Store) mutate(ctx context.Context, fn func(*Config)) Config {
	s.mu.Lock()
	last := s.config.LastUpdated
	fn(&s.config)
	if s.config.LastUpdated.After(last) {
		last = s.config.LastUpdated
	}
	s.config.LastUpdated = s.nextStamp(last)
	s.rev++
	rev, out := s.rev, s.config
	s.cleared = false
	s.mu.Unlock()

	s.repo.Persist(ctx, rev, out)
	s.pub.Publish(TopicUpdated, out)
	return out
}

// nextStamp returns now, or one millisecond past last when the clock has not moved past it.
func (s *Store) nextStamp(last time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if !now.After(last) {
		return last.Add(time.Millisecond)
	}
	return now
}
