// Package persist wraps a storage.KV key in a versioned JSON document owned by one store.
//
// Documents are written as {"version":N,"savedAtMs":...,"state":...}. Loading runs the
// registered migrations up to the current version and decodes the state over the store's
// defaults, so fields missing from older documents keep their default values.
//
// Writes carry a revision taken under the owning store's lock. A write whose revision is not
// newer than the last one written is dropped, which keeps a slow write from replacing newer
// state that already reached storage.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/storage"
)

var (
	ErrFutureVersion    = errors.New("document version is newer than supported")
	ErrMissingMigration = errors.New("missing migration")
)

// Migration upgrades a raw state document from version n to n+1.
type Migration func(state json.RawMessage) (json.RawMessage, error)

type Options[T any] struct {
	Key        string
	Version    int
	Migrations map[int]Migration
	Defaults   func() T
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Now        func() time.Time
}

type envelope struct {
	Version   int             `json:"version"`
	SavedAtMs int64           `json:"savedAtMs"`
	State     json.RawMessage `json:"state"`
}

type Repository[T any] struct {
	kv         storage.KV
	key        string
	version    int
	migrations map[int]Migration
	defaults   func() T
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	lastRev uint64
}

func New[T any](kv storage.KV, opts Options[T]) *Repository[T] {
	if opts.Version <= 0 {
		opts.Version = 1
	}
	if opts.Defaults == nil {
		opts.Defaults = func() T {
			var zero T
			return zero
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Repository[T]{
		kv:         kv,
		key:        opts.Key,
		version:    opts.Version,
		migrations: opts.Migrations,
		defaults:   opts.Defaults,
		metrics:    opts.Metrics,
		logger:     opts.Logger.With("storeKey", opts.Key),
		now:        opts.Now,
	}
}

func (r *Repository[T]) Key() string {
	return r.key
}

// Load returns the stored document, or the defaults with ok=false when nothing is stored.
// On error the defaults are returned alongside it.
func (r *Repository[T]) Load(ctx context.Context) (T, bool, error) {
	v := r.defaults()

	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.metrics.PersistLoad(r.key, metrics.ResultError)
		return v, false, err
	}
	if !ok {
		r.metrics.PersistLoad(r.key, metrics.ResultOK)
		return v, false, nil
	}

	state, err := r.upgrade([]byte(raw))
	if err != nil {
		r.metrics.PersistLoad(r.key, metrics.ResultError)
		return r.defaults(), false, err
	}
	if err := json.Unmarshal(state, &v); err != nil {
		r.metrics.PersistLoad(r.key, metrics.ResultError)
		return r.defaults(), false, fmt.Errorf("decode %s: %w", r.key, err)
	}
	r.metrics.PersistLoad(r.key, metrics.ResultOK)
	return v, true, nil
}

func (r *Repository[T]) upgrade(raw []byte) (json.RawMessage, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode %s: invalid JSON document", r.key)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.State == nil {
		// Written before documents were versioned: the whole value is the state.
		env = envelope{Version: 0, State: raw}
	}
	if env.Version > r.version {
		return nil, fmt.Errorf("%w: %s v%d > v%d", ErrFutureVersion, r.key, env.Version, r.version)
	}

	state := env.State
	for v := env.Version; v < r.version; v++ {
		migrate, ok := r.migrations[v]
		if !ok {
			if v == 0 {
				// Unversioned documents share the v1 shape unless a migration says otherwise.
				continue
			}
			return nil, fmt.Errorf("%w: %s v%d -> v%d", ErrMissingMigration, r.key, v, v+1)
		}
		next, err := migrate(state)
		if err != nil {
			return nil, fmt.Errorf("migrate %s v%d -> v%d: %w", r.key, v, v+1, err)
		}
		state = next
	}
	return state, nil
}

// Save writes snapshot as revision rev. Revision 0 always writes.
func (r *Repository[T]) Save(ctx context.Context, rev uint64, snapshot T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rev != 0 && rev <= r.lastRev {
		r.metrics.PersistWrite(r.key, metrics.ResultStale)
		return nil
	}

	state, err := json.Marshal(snapshot)
	if err != nil {
		r.metrics.PersistWrite(r.key, metrics.ResultError)
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	doc, err := json.Marshal(envelope{
		Version:   r.version,
		SavedAtMs: r.now().UnixMilli(),
		State:     state,
	})
	if err != nil {
		r.metrics.PersistWrite(r.key, metrics.ResultError)
		return fmt.Errorf("encode %s envelope: %w", r.key, err)
	}

	if err := r.kv.Set(ctx, r.key, string(doc)); err != nil {
		r.metrics.PersistWrite(r.key, metrics.ResultError)
		return err
	}
	if rev > r.lastRev {
		r.lastRev = rev
	}
	r.metrics.PersistWrite(r.key, metrics.ResultOK)
	return nil
}

// Clear removes the document. Saves at or below rev are dropped afterwards.
func (r *Repository[T]) Clear(ctx context.Context, rev uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rev != 0 && rev <= r.lastRev {
		r.metrics.PersistWrite(r.key, metrics.ResultStale)
		return nil
	}
	if err := r.kv.Remove(ctx, r.key); err != nil {
		r.metrics.PersistWrite(r.key, metrics.ResultError)
		return err
	}
	if rev > r.lastRev {
		r.lastRev = rev
	}
	r.metrics.PersistWrite(r.key, metrics.ResultOK)
	return nil
}

// Persist is Save for callers that treat persistence as best effort: failures are logged.
func (r *Repository[T]) Persist(ctx context.Context, rev uint64, snapshot T) {
	if err := r.Save(ctx, rev, snapshot); err != nil {
		r.logger.Warn("persist failed", "rev", rev, "error", err)
	}
}

// Forget is Clear with failures logged.
func (r *Repository[T]) Forget(ctx context.Context, rev uint64) {
	if err := r.Clear(ctx, rev); err != nil {
		r.logger.Warn("clear failed", "rev", rev, "error", err)
	}
}
