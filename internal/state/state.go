// Package state builds every store once at startup and flushes them at shutdown.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"sanctuary-app/internal/admin"
	"sanctuary-app/internal/appconfig"
	"sanctuary-app/internal/auth"
	"sanctuary-app/internal/calls"
	"sanctuary-app/internal/community"
	"sanctuary-app/internal/events"
	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/music"
	"sanctuary-app/internal/storage"
	"sanctuary-app/internal/theme"
)

type Deps struct {
	KV        storage.KV
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher

	System      *theme.SystemScheme
	AudioLoader music.Loader
	AutoAdvance bool
	// ProgressInterval is the music status tick period.
	ProgressInterval time.Duration

	AdminRemote       admin.Authenticator
	AdminEmail        string
	AdminPasscodeHash string

	Events []events.Event
}

type Container struct {
	Theme      *theme.Store
	Auth       *auth.Store
	Onboarding *auth.Onboarding
	Admin      *admin.Store
	Events     *events.Catalog
	Reminders  *events.ReminderStore
	Community  *community.Store
	Calls      *calls.Store
	Music      *music.Player
	AppConfig  *appconfig.Store

	logger *slog.Logger
}

type hydrator interface {
	Hydrate(ctx context.Context) error
}

type flusher interface {
	Flush(ctx context.Context) error
}

func New(d Deps) *Container {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Events == nil {
		d.Events = events.SeedEvents()
	}
	logger, m, pub := d.Logger, d.Metrics, d.Publisher

	return &Container{
		Theme: theme.NewStore(d.KV, theme.Options{System: d.System, Logger: logger, Metrics: m, Publisher: pub}),
		Auth:  auth.NewStore(d.KV, auth.Options{Logger: logger, Metrics: m, Publisher: pub}),
		Onboarding: auth.NewOnboarding(d.KV, auth.Options{
			Logger: logger, Metrics: m, Publisher: pub,
		}),
		Admin: admin.NewStore(d.KV, admin.Options{
			Remote:       d.AdminRemote,
			AdminEmail:   d.AdminEmail,
			PasscodeHash: d.AdminPasscodeHash,
			Logger:       logger,
			Metrics:      m,
			Publisher:    pub,
		}),
		Events:    events.NewCatalog(d.Events),
		Reminders: events.NewReminderStore(d.KV, events.Options{Logger: logger, Metrics: m, Publisher: pub}),
		Community: community.NewStore(d.KV, community.Options{Logger: logger, Metrics: m, Publisher: pub}),
		Calls:     calls.NewStore(d.KV, calls.Options{Logger: logger, Metrics: m, Publisher: pub}),
		Music: music.NewPlayer(d.KV, music.Options{
			Loader:           d.AudioLoader,
			AutoAdvance:      d.AutoAdvance,
			ProgressInterval: d.ProgressInterval,
			Logger:           logger,
			Metrics:          m,
			Publisher:        pub,
		}),
		AppConfig: appconfig.NewStore(d.KV, appconfig.Options{Logger: logger, Metrics: m, Publisher: pub}),
		logger:    logger.With("component", "state"),
	}
}

// Open builds the container and hydrates every store concurrently. A store that fails to load
// keeps its defaults. Open only fails when ctx is done; a hydration cut short by that cancels the
// others.
func Open(ctx context.Context, d Deps) (*Container, error) {
	c := New(d)

	g, gctx := errgroup.WithContext(ctx)
	for name, h := range c.hydrators() {
		name, h := name, h
		g.Go(func() error {
			err := h.Hydrate(gctx)
			if err == nil {
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("hydrate %s: %w", name, err)
			}
			c.logger.Warn("hydrate failed; using defaults", "store", name, "error", err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close stops playback and writes every store's latest snapshot.
func (c *Container) Close(ctx context.Context) error {
	var err error
	if e := c.Music.Close(ctx); e != nil {
		err = multierr.Append(err, e)
	}
	for name, f := range c.flushers() {
		if e := f.Flush(ctx); e != nil {
			c.logger.Warn("flush failed", "store", name, "error", e)
			err = multierr.Append(err, e)
		}
	}
	return err
}

func (c *Container) hydrators() map[string]hydrator {
	return map[string]hydrator{
		theme.StorageKey:          c.Theme,
		auth.StorageKey:           c.Auth,
		auth.OnboardingStorageKey: c.Onboarding,
		admin.StorageKey:          c.Admin,
		events.StorageKey:         c.Reminders,
		community.StorageKey:      c.Community,
		calls.StorageKey:          c.Calls,
		music.StorageKey:          c.Music,
		appconfig.StorageKey:      c.AppConfig,
	}
}

// flushers excludes the music player, which Close flushes after stopping it.
func (c *Container) flushers() map[string]flusher {
	return map[string]flusher{
		theme.StorageKey:          c.Theme,
		auth.StorageKey:           c.Auth,
		auth.OnboardingStorageKey: c.Onboarding,
		admin.StorageKey:          c.Admin,
		events.StorageKey:         c.Reminders,
		community.StorageKey:      c.Community,
		calls.StorageKey:          c.Calls,
		appconfig.StorageKey:      c.AppConfig,
	}
}
