package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const StorageKey = "theme-mode"

const TopicUpdated = "theme.updated"

var ErrInvalidMode = errors.New("invalid theme mode")

// SystemScheme holds the scheme most recently reported by the platform.
type SystemScheme struct {
	v atomic.Value
}

func NewSystemScheme(initial Scheme) *SystemScheme {
	s := &SystemScheme{}
	s.Set(initial)
	return s
}

func (s *SystemScheme) Set(scheme Scheme) {
	if scheme != SchemeDark {
		scheme = SchemeLight
	}
	s.v.Store(scheme)
}

func (s *SystemScheme) Get() Scheme {
	if v, ok := s.v.Load().(Scheme); ok {
		return v
	}
	return SchemeLight
}

type Options struct {
	System    *SystemScheme
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher
}

type Store struct {
	repo   *persist.Repository[Mode]
	system *SystemScheme
	logger *slog.Logger
	pub    feed.Publisher

	mu   sync.Mutex
	mode Mode
	rev  uint64
}

type View struct {
	Mode    Mode    `json:"mode"`
	System  Scheme  `json:"systemScheme"`
	IsDark  bool    `json:"isDark"`
	Palette Palette `json:"palette"`
}

func NewStore(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.System == nil {
		opts.System = NewSystemScheme(SchemeLight)
	}
	logger := opts.Logger.With("component", "theme")
	return &Store{
		repo: persist.New[Mode](kv, persist.Options[Mode]{
			Key:      StorageKey,
			Version:  1,
			Defaults: func() Mode { return ModeSystem },
			Metrics:  opts.Metrics,
			Logger:   logger,
		}),
		system: opts.System,
		logger: logger,
		pub:    feed.OrNop(opts.Publisher),
		mode:   ModeSystem,
	}
}

func (s *Store) Hydrate(ctx context.Context) error {
	mode, _, err := s.repo.Load(ctx)
	if err == nil && !mode.Valid() {
		err = fmt.Errorf("%w: stored %q", ErrInvalidMode, mode)
		mode = ModeSystem
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return err
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// View resolves the palette against the platform scheme at call time.
func (s *Store) View() View {
	mode := s.Mode()
	system := s.system.Get()
	palette := Resolve(mode, system)
	return View{
		Mode:    mode,
		System:  system,
		IsDark:  palette.Scheme == SchemeDark,
		Palette: palette,
	}
}

// SetMode applies the mode in memory before persisting it; a failed write does not undo it.
func (s *Store) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	s.mu.Lock()
	s.mode = mode
	s.rev++
	rev := s.rev
	s.mu.Unlock()

	s.repo.Persist(ctx, rev, mode)
	s.pub.Publish(TopicUpdated, s.View())
	return nil
}

// SetSystemScheme records a platform appearance change.
func (s *Store) SetSystemScheme(scheme Scheme) {
	s.system.Set(scheme)
	s.pub.Publish(TopicUpdated, s.View())
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	mode, rev := s.mode, s.rev
	s.mu.Unlock()
	if rev == 0 {
		return nil
	}
	return s.repo.Save(ctx, rev, mode)
}
