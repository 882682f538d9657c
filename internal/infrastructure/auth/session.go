package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/dashboard/internal/domain/identity"
	"go.uber.org/zap"
)

// ErrNoSession is returned by stores that hold no session
var ErrNoSession = errors.New("no stored session")

// EventKind describes why subscribers are notified
type EventKind string

const (
	EventLogin        EventKind = "login"
	EventLogout       EventKind = "logout"
	EventUnauthorized EventKind = "unauthorized"
	EventExpired      EventKind = "expired"
)

// Event is delivered to session subscribers
type Event struct {
	Kind EventKind
	User identity.User
}

// Snapshot is the persisted form of a session
type Snapshot struct {
	Token     string        `json:"token"`
	User      identity.User `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// SessionStore persists a session between CLI invocations
type SessionStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Delete(ctx context.Context) error
}

// Session holds the bearer token and user of the current login.
// It is created once and injected into the API client; login populates it,
// logout or a 401 clears it and notifies subscribers.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      identity.User
	expiresAt time.Time

	store  SessionStore
	logger *zap.Logger
	now    func() time.Time

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithStore persists the session through store
func WithStore(store SessionStore) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates an empty session
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		logger: zap.NewNop(),
		now:    time.Now,
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin installs the credentials returned by login or register
func (s *Session) Begin(ctx context.Context, resp identity.AuthResponse) error {
	if resp.Token == "" {
		return ErrInvalidToken
	}

	user := resp.User()
	expiresAt := resp.ExpiresAt
	if claims, err := ParseUnverified(resp.Token); err == nil {
		if expiresAt.IsZero() && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		if user.ID == "" {
			user.ID = claims.UserID
		}
	}
	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		return ErrExpiredToken
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = user
	s.expiresAt = expiresAt
	s.mu.Unlock()

	if s.store != nil {
		snap := Snapshot{Token: resp.Token, User: user, ExpiresAt: expiresAt}
		if err := s.store.Save(ctx, snap); err != nil {
			s.logger.Warn("Failed to persist session", zap.Error(err))
		}
	}

	s.logger.Info("Session started", zap.String("username", user.Username))
	s.notify(Event{Kind: EventLogin, User: user})
	return nil
}

// Restore loads a previously persisted session. It reports whether a valid session was found.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	snap, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if snap.Token == "" || (!snap.ExpiresAt.IsZero() && !s.now().Before(snap.ExpiresAt)) {
		if err := s.store.Delete(ctx); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return false, nil
	}

	s.mu.Lock()
	s.token = snap.Token
	s.user = snap.User
	s.expiresAt = snap.ExpiresAt
	s.mu.Unlock()
	return true, nil
}

// Token returns the bearer token, or "" when there is no live session
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiredLocked() {
		return ""
	}
	return s.token
}

// User returns the logged in user
func (s *Session) User() (identity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return identity.User{}, false
	}
	return s.user, true
}

// ExpiresAt returns when the token stops being accepted
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// IsAuthenticated reports whether a non-expired token is held
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) expiredLocked() bool {
	return !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt)
}

// Clear drops the credentials, deletes the persisted copy and notifies subscribers.
// Clearing an empty session is a no-op so repeated 401s notify once.
func (s *Session) Clear(ctx context.Context, kind EventKind) {
	s.mu.Lock()
	had := s.token != ""
	user := s.user
	s.token = ""
	s.user = identity.User{}
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx); err != nil {
			s.logger.Warn("Failed to delete stored session", zap.Error(err))
		}
	}
	if !had {
		return
	}

	s.logger.Info("Session cleared", zap.String("reason", string(kind)), zap.String("username", user.Username))
	s.notify(Event{Kind: kind, User: user})
}

// Subscribe registers fn for session events and returns a function that removes it
func (s *Session) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
