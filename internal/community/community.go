// Package community holds the selected group or conversation and unsent message drafts.
package community

import (
	"context"
	"log/slog"
	"sync"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey   = "community-storage"
	TopicUpdated = "community.updated"
)

type State struct {
	SelectedGroupID        string            `json:"selectedGroupId,omitempty"`
	SelectedConversationID string            `json:"selectedConversationId,omitempty"`
	Drafts                 map[string]string `json:"drafts"`
}

type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher
}

type Store struct {
	repo *persist.Repository[State]
	pub  feed.Publisher

	mu    sync.Mutex
	state State
	rev   uint64
}

func NewStore(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		repo: persist.New[State](kv, persist.Options[State]{
			Key:      StorageKey,
			Version:  1,
			Defaults: func() State { return State{Drafts: map[string]string{}} },
			Metrics:  opts.Metrics,
			Logger:   opts.Logger.With("component", "community"),
		}),
		pub:   feed.OrNop(opts.Publisher),
		state: State{Drafts: map[string]string{}},
	}
}

func (s *Store) Hydrate(ctx context.Context) error {
	st, _, err := s.repo.Load(ctx)
	if st.Drafts == nil {
		st.Drafts = map[string]string{}
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return err
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

func (s *Store) SelectGroup(ctx context.Context, id string) State {
	return s.mutate(ctx, func(st *State) {
		st.SelectedGroupID = id
	})
}

func (s *Store) SelectConversation(ctx context.Context, id string) State {
	return s.mutate(ctx, func(st *State) {
		st.SelectedConversationID = id
	})
}

func (s *Store) ClearSelection(ctx context.Context) State {
	return s.mutate(ctx, func(st *State) {
		st.SelectedGroupID = ""
		st.SelectedConversationID = ""
	})
}

func (s *Store) SaveDraft(ctx context.Context, key, text string) {
	s.mutate(ctx, func(st *State) {
		st.Drafts[key] = text
	})
}

// GetDraft returns the draft under key, or "" when none is saved.
func (s *Store) GetDraft(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Drafts[key]
}

// ClearDraft deletes the key rather than storing an empty draft.
func (s *Store) ClearDraft(ctx context.Context, key string) {
	s.mutate(ctx, func(st *State) {
		delete(st.Drafts, key)
	})
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	st, rev := copyState(s.state), s.rev
	s.mu.Unlock()
	if rev == 0 {
		return nil
	}
	return s.repo.Save(ctx, rev, st)
}

func (s *Store) mutate(ctx context.Context, fn func(*State)) State {
	s.mu.Lock()
	fn(&s.state)
	s.rev++
	rev, out := s.rev, copyState(s.state)
	s.mu.Unlock()

	s.repo.Persist(ctx, rev, out)
	s.pub.Publish(TopicUpdated, out)
	return out
}

func copyState(st State) State {
	drafts := make(map[string]string, len(st.Drafts))
	for k, v := range st.Drafts {
		drafts[k] = v
	}
	st.Drafts = drafts
	return st
}
