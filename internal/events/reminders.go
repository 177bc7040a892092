package events

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey   = "event-storage"
	TopicUpdated = "reminders.updated"
)

type reminderState struct {
	Reminders map[string]bool `json:"reminders"`
}

type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher
}

// ReminderStore keeps the per-event reminder opt-in. Ids are not checked against any catalog.
type ReminderStore struct {
	repo *persist.Repository[reminderState]
	pub  feed.Publisher

	mu        sync.Mutex
	reminders map[string]bool
	rev       uint64
}

type ReminderChange struct {
	EventID string `json:"eventId"`
	Enabled bool   `json:"enabled"`
}

func NewReminderStore(kv storage.KV, opts Options) *ReminderStore {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ReminderStore{
		repo: persist.New[reminderState](kv, persist.Options[reminderState]{
			Key:      StorageKey,
			Version:  1,
			Defaults: func() reminderState { return reminderState{Reminders: map[string]bool{}} },
			Metrics:  opts.Metrics,
			Logger:   opts.Logger.With("component", "reminders"),
		}),
		pub:       feed.OrNop(opts.Publisher),
		reminders: map[string]bool{},
	}
}

func (s *ReminderStore) Hydrate(ctx context.Context) error {
	st, _, err := s.repo.Load(ctx)
	if st.Reminders == nil {
		st.Reminders = map[string]bool{}
	}
	s.mu.Lock()
	s.reminders = st.Reminders
	s.mu.Unlock()
	return err
}

// Toggle flips the reminder for id and returns the new value. Absent counts as false.
func (s *ReminderStore) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	enabled := !s.reminders[id]
	s.reminders[id] = enabled
	s.rev++
	rev, snapshot := s.rev, s.snapshotLocked()
	s.mu.Unlock()

	s.repo.Persist(ctx, rev, snapshot)
	s.pub.Publish(TopicUpdated, ReminderChange{EventID: id, Enabled: enabled})
	return enabled
}

func (s *ReminderStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders[id]
}

// Enabled lists the ids with a reminder on, sorted.
func (s *ReminderStore) Enabled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.reminders))
	for id, on := range s.reminders {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (s *ReminderStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	rev, snapshot := s.rev, s.snapshotLocked()
	s.mu.Unlock()
	if rev == 0 {
		return nil
	}
	return s.repo.Save(ctx, rev, snapshot)
}

func (s *ReminderStore) snapshotLocked() reminderState {
	m := make(map[string]bool, len(s.reminders))
	for k, v := range s.reminders {
		m[k] = v
	}
	return reminderState{Reminders: m}
}
