package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey           = "auth-storage"
	OnboardingStorageKey = "onboarding-storage"

	TopicUpdated = "auth.updated"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrInvalidUser = errors.New("invalid user")
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

type Session struct {
	User        *User `json:"user"`
	WelcomeSeen bool  `json:"welcomeSeen"`
}

func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

func GuestUser() User {
	return User{ID: "guest", Name: "Guest", Role: RoleGuest}
}

type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Publisher feed.Publisher
}

type Store struct {
	repo   *persist.Repository[Session]
	logger *slog.Logger
	pub    feed.Publisher

	mu      sync.Mutex
	session Session
	rev     uint64
	cleared bool
}

func NewStore(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("component", "auth")
	return &Store{
		repo: persist.New[Session](kv, persist.Options[Session]{
			Key:     StorageKey,
			Version: 1,
			Metrics: opts.Metrics,
			Logger:  logger,
		}),
		logger: logger,
		pub:    feed.OrNop(opts.Publisher),
	}
}

func (s *Store) Hydrate(ctx context.Context) error {
	sess, _, err := s.repo.Load(ctx)
	if sess.User != nil && !sess.User.Role.Valid() {
		err = errors.Join(err, fmt.Errorf("%w: stored %q", ErrInvalidRole, sess.User.Role))
		sess.User = nil
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return err
}

func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session)
}

func (s *Store) IsAuthenticated() bool {
	return s.Session().IsAuthenticated()
}

// Login replaces any current user. The welcome flag is kept.
func (s *Store) Login(ctx context.Context, user User) (Session, error) {
	user.ID = strings.TrimSpace(user.ID)
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" {
		return Session{}, fmt.Errorf("%w: id is required", ErrInvalidUser)
	}
	if !user.Role.Valid() {
		return Session{}, fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
	return s.mutate(ctx, func(sess *Session) {
		sess.User = &user
	}), nil
}

// LoginAsGuest signs in the fixed guest identity without contacting any backend.
func (s *Store) LoginAsGuest(ctx context.Context) Session {
	guest := GuestUser()
	return s.mutate(ctx, func(sess *Session) {
		sess.User = &guest
	})
}

// Logout clears the user. The stored document is removed unless the welcome flag is set, in
// which case only the flag is kept.
func (s *Store) Logout(ctx context.Context) Session {
	s.mu.Lock()
	s.session.User = nil
	s.rev++
	rev := s.rev
	s.cleared = !s.session.WelcomeSeen
	out := copySession(s.session)
	s.mu.Unlock()

	if out.WelcomeSeen {
		s.repo.Persist(ctx, rev, out)
	} else {
		s.repo.Forget(ctx, rev)
	}
	s.pub.Publish(TopicUpdated, out)
	return out
}

func (s *Store) SetWelcomeSeen(ctx context.Context) Session {
	return s.mutate(ctx, func(sess *Session) {
		sess.WelcomeSeen = true
	})
}

func (s *Store) ResetWelcome(ctx context.Context) Session {
	return s.mutate(ctx, func(sess *Session) {
		sess.WelcomeSeen = false
	})
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	sess, rev, cleared := copySession(s.session), s.rev, s.cleared
	s.mu.Unlock()
	if rev == 0 {
		return nil
	}
	if cleared {
		return s.repo.Clear(ctx, rev)
	}
	return s.repo.Save(ctx, rev, sess)
}

func (s *Store) mutate(ctx context.Context, fn func(*Session)) Session {
	s.mu.Lock()
	fn(&s.session)
	s.rev++
	rev := s.rev
	s.cleared = false
	out := copySession(s.session)
	s.mu.Unlock()

	s.repo.Persist(ctx, rev, out)
	s.pub.Publish(TopicUpdated, out)
	return out
}

func copySession(s Session) Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
