package auth

import (
	"context"
	"log/slog"
	"sync"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const TopicOnboardingUpdated = "onboarding.updated"

type onboardingState struct {
	Completed bool `json:"hasCompletedOnboarding"`
}

// Onboarding tracks whether the intro flow has been finished on this device.
type Onboarding struct {
	repo *persist.Repository[onboardingState]
	pub  feed.Publisher

	mu    sync.Mutex
	state onboardingState
	rev   uint64
}

func NewOnboarding(kv storage.KV, opts Options) *Onboarding {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Onboarding{
		repo: persist.New[onboardingState](kv, persist.Options[onboardingState]{
			Key:     OnboardingStorageKey,
			Version: 1,
			Metrics: opts.Metrics,
			Logger:  opts.Logger.With("component", "onboarding"),
		}),
		pub: feed.OrNop(opts.Publisher),
	}
}

func (o *Onboarding) Hydrate(ctx context.Context) error {
	st, _, err := o.repo.Load(ctx)
	o.mu.Lock()
	o.state = st
	o.mu.Unlock()
	return err
}

func (o *Onboarding) Completed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Completed
}

func (o *Onboarding) Complete(ctx context.Context) {
	o.set(ctx, true)
}

func (o *Onboarding) Reset(ctx context.Context) {
	o.set(ctx, false)
}

func (o *Onboarding) Flush(ctx context.Context) error {
	o.mu.Lock()
	st, rev := o.state, o.rev
	o.mu.Unlock()
	if rev == 0 {
		return nil
	}
	return o.repo.Save(ctx, rev, st)
}

func (o *Onboarding) set(ctx context.Context, completed bool) {
	o.mu.Lock()
	o.state.Completed = completed
	o.rev++
	rev, st := o.rev, o.state
	o.mu.Unlock()

	o.repo.Persist(ctx, rev, st)
	o.pub.Publish(TopicOnboardingUpdated, map[string]bool{"completed": completed})
}
