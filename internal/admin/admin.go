package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/remote"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey   = "admin-storage"
	TopicUpdated = "admin.updated"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginUnavailable   = errors.New("admin login not configured")
	ErrInvalidUser        = errors.New("invalid admin user")
	ErrNotFound           = errors.New("team member not found")
	ErrInvalidMember      = errors.New("invalid team member")
)

type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
}

type TeamMember struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	AddedAt     time.Time `json:"addedAt"`
}

type TeamMemberInput struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Email       string   `json:"email" validate:"required,email"`
	Role        string   `json:"role" validate:"required,max=60"`
	Permissions []string `json:"permissions"`
}

type TeamMemberPatch struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=120"`
	Email       *string   `json:"email,omitempty" validate:"omitempty,email"`
	Role        *string   `json:"role,omitempty" validate:"omitempty,max=60"`
	Permissions *[]string `json:"permissions,omitempty"`
}

type Session struct {
	User      *User        `json:"user"`
	StaffName string       `json:"staffName"`
	Team      []TeamMember `json:"teamMembers"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// Authenticator is the backend's admin login procedure.
type Authenticator interface {
	AdminLogin(ctx context.Context, email, password string) (remote.AdminLoginResult, error)
}

type Options struct {
	Remote       Authenticator
	AdminEmail   string
	PasscodeHash string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Publisher    feed.Publisher
	Now          func() time.Time
}

type Store struct {
	repo         *persist.Repository[Session]
	remote       Authenticator
	adminEmail   string
	passcodeHash []byte
	logger       *slog.Logger
	pub          feed.Publisher
	now          func() time.Time

	mu      sync.Mutex
	session Session
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
	logger := opts.Logger.With("component", "admin")
	return &Store{
		repo: persist.New[Session](kv, persist.Options[Session]{
			Key:      StorageKey,
			Version:  1,
			Defaults: func() Session { return Session{Team: []TeamMember{}} },
			Metrics:  opts.Metrics,
			Logger:   logger,
		}),
		remote:       opts.Remote,
		adminEmail:   strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		passcodeHash: []byte(strings.TrimSpace(opts.PasscodeHash)),
		logger:       logger,
		pub:          feed.OrNop(opts.Publisher),
		now:          opts.Now,
	}
}

func (s *Store) Hydrate(ctx context.Context) error {
	sess, _, err := s.repo.Load(ctx)
	if sess.Team == nil {
		sess.Team = []TeamMember{}
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return err
}

// Session returns the current session. An expired token reads as logged out.
func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := copySession(s.session)
	if out.ExpiresAt != nil && !s.now().Before(*out.ExpiresAt) {
		out.User = nil
		out.Token = ""
	}
	return out
}

func (s *Store) IsLoggedIn() bool {
	return s.Session().User != nil
}

// HasPermission reports whether the current session grants id. No hierarchy is applied.
func (s *Store) HasPermission(id string) bool {
	sess := s.Session()
	if sess.User == nil {
		return false
	}
	for _, p := range sess.User.Permissions {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) Login(ctx context.Context, user User, staffName string) (Session, error) {
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return Session{}, fmt.Errorf("%w: id is required", ErrInvalidUser)
	}
	if user.Permissions == nil {
		user.Permissions = []Permission{}
	}
	staffName = strings.TrimSpace(staffName)
	if staffName == "" {
		staffName = user.Name
	}
	return s.login(ctx, user, staffName, "", nil), nil
}

// Authenticate signs in through the backend when one is configured, otherwise against the
// local passcode hash.
func (s *Store) Authenticate(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	if s.remote != nil {
		res, err := s.remote.AdminLogin(ctx, email, password)
		if err != nil {
			return Session{}, err
		}
		user := User{
			ID:          res.User.ID,
			Name:        res.User.Name,
			Email:       res.User.Email,
			Role:        res.User.Role,
			Permissions: PermissionsFor(res.User.Permissions),
		}
		if user.ID == "" {
			return Session{}, fmt.Errorf("%w: backend returned no user id", ErrInvalidUser)
		}
		return s.login(ctx, user, user.Name, res.Token, s.tokenExpiry(res.Token)), nil
	}

	if s.adminEmail == "" || len(s.passcodeHash) == 0 {
		return Session{}, ErrLoginUnavailable
	}
	if strings.ToLower(email) != s.adminEmail {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	user := User{
		ID:          "local-admin",
		Name:        "Administrator",
		Email:       email,
		Role:        "admin",
		Permissions: allPermissions(),
	}
	return s.login(ctx, user, user.Name, "", nil), nil
}

// tokenExpiry reads the exp claim without verifying the signature; the backend owns verification.
func (s *Store) tokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		s.logger.Warn("admin token not a jwt", "error", err)
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}

func (s *Store) login(ctx context.Context, user User, staffName, token string, expiresAt *time.Time) Session {
	return s.mutate(ctx, func(sess *Session) {
		sess.User = &user
		sess.StaffName = staffName
		sess.Token = token
		sess.ExpiresAt = expiresAt
	})
}

// Logout clears the session and removes the stored document, team roster included.
func (s *Store) Logout(ctx context.Context) Session {
	s.mu.Lock()
	s.session = Session{Team: []TeamMember{}}
	s.rev++
	rev := s.rev
	s.cleared = true
	out := copySession(s.session)
	s.mu.Unlock()

	s.repo.Forget(ctx, rev)
	s.pub.Publish(TopicUpdated, publicView(out))
	return out
}

// SetStaffName updates the display name and mirrors it into the signed-in user.
func (s *Store) SetStaffName(ctx context.Context, name string) Session {
	name = strings.TrimSpace(name)
	return s.mutate(ctx, func(sess *Session) {
		sess.StaffName = name
		if sess.User != nil {
			sess.User.Name = name
		}
	})
}

func (s *Store) Team() []TeamMember {
	return s.Session().Team
}

func (s *Store) AddTeamMember(ctx context.Context, in TeamMemberInput) (TeamMember, error) {
	m := TeamMember{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Role:        strings.TrimSpace(in.Role),
		Permissions: normalizeIDs(in.Permissions),
		AddedAt:     s.now().UTC(),
	}
	if m.Name == "" || m.Email == "" {
		return TeamMember{}, fmt.Errorf("%w: name and email are required", ErrInvalidMember)
	}
	s.mutate(ctx, func(sess *Session) {
		sess.Team = append(sess.Team, m)
	})
	return m, nil
}

func (s *Store) UpdateTeamMember(ctx context.Context, id string, patch TeamMemberPatch) (TeamMember, error) {
	var (
		updated TeamMember
		found   bool
	)
	s.mutateIf(ctx, func(sess *Session) bool {
		for i := range sess.Team {
			if sess.Team[i].ID != id {
				continue
			}
			m := &sess.Team[i]
			if patch.Name != nil {
				m.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Email != nil {
				m.Email = strings.TrimSpace(*patch.Email)
			}
			if patch.Role != nil {
				m.Role = strings.TrimSpace(*patch.Role)
			}
			if patch.Permissions != nil {
				m.Permissions = normalizeIDs(*patch.Permissions)
			}
			updated, found = copyMember(*m), true
			return true
		}
		return false
	})
	if !found {
		return TeamMember{}, ErrNotFound
	}
	return updated, nil
}

func (s *Store) RemoveTeamMember(ctx context.Context, id string) error {
	changed := s.mutateIf(ctx, func(sess *Session) bool {
		for i := range sess.Team {
			if sess.Team[i].ID == id {
				sess.Team = append(sess.Team[:i], sess.Team[i+1:]...)
				return true
			}
		}
		return false
	})
	if !changed {
		return ErrNotFound
	}
	return nil
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
	s.mutateIf(ctx, func(sess *Session) bool {
		fn(sess)
		return true
	})
	return s.Session()
}

// mutateIf applies fn and persists only when fn reports a change.
func (s *Store) mutateIf(ctx context.Context, fn func(*Session) bool) bool {
	s.mu.Lock()
	if !fn(&s.session) {
		s.mu.Unlock()
		return false
	}
	s.rev++
	rev := s.rev
	s.cleared = false
	snapshot := copySession(s.session)
	s.mu.Unlock()

	s.repo.Persist(ctx, rev, snapshot)
	s.pub.Publish(TopicUpdated, publicView(snapshot))
	return true
}

// publicView drops the bearer token from feed payloads.
func publicView(s Session) Session {
	s.Token = ""
	return s
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func copyMember(m TeamMember) TeamMember {
	m.Permissions = append([]string(nil), m.Permissions...)
	return m
}

func copySession(s Session) Session {
	if s.User != nil {
		u := *s.User
		u.Permissions = append([]Permission(nil), u.Permissions...)
		s.User = &u
	}
	team := make([]TeamMember, len(s.Team))
	for i, m := range s.Team {
		team[i] = copyMember(m)
	}
	s.Team = team
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		s.ExpiresAt = &t
	}
	return s
}
