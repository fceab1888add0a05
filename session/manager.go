package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/daticahealth/datisession/auth"
	"github.com/daticahealth/datisession/logs"
)

// Transport performs the network half of each operation. Each method makes
// exactly one call and returns the {user, token} pair or an error.
type Transport interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Register(ctx context.Context, name, email, password string) (*auth.Session, error)
	CheckToken(ctx context.Context, token string) (*auth.Session, error)
}

// TokenStore is a durable slot holding one bearer token. Get reports a
// missing token with ok == false.
type TokenStore interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Tokens are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithStaleTokenEviction controls whether a token rejected by the token check
// is removed from the store. It is left in place by default.
func WithStaleTokenEviction(evict bool) Option {
	return func(m *Manager) {
		m.evictStale = evict
	}
}

// Manager owns the session state. It is safe for concurrent use.
//
// Operations are not serialized against each other: if a login and a token
// check race, whichever response arrives last is committed last.
type Manager struct {
	transport  Transport
	store      TokenStore
	logger     *slog.Logger
	evictStale bool

	// writeMu serializes writers so the store and the in-memory state move together.
	writeMu sync.Mutex

	mu     sync.RWMutex
	status Status
	user   *auth.User

	subs subscribers
}

// New returns a Manager in the checking state. Call CheckAuthStatus to
// resolve it, or use Open.
func New(transport Transport, store TokenStore, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		store:     store,
		logger:    logs.Discard(),
		status:    StatusChecking,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns a Manager whose initial status has already been resolved by
// CheckAuthStatus.
func Open(ctx context.Context, transport Transport, store TokenStore, opts ...Option) *Manager {
	m := New(transport, store, opts...)
	m.CheckAuthStatus(ctx)
	return m
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (m *Manager) CurrentUser() *auth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// Status returns the current authentication status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Snapshot returns the status and user read together.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{Status: m.status, User: m.user.Clone()}
}

// Login signs in with email and password. On success the returned user and
// token are committed and true is returned. On failure nothing changes and
// the error carries the server's message (see Message).
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, oops.Code(CodeInvalidInput).Wrap(ErrEmptyCredentials)
	}
	return detach(ctx, func(ctx context.Context) (bool, error) {
		s, err := m.transport.Login(ctx, email, password)
		if err != nil {
			logs.LogError(m.logger, slog.LevelWarn, "login failed", err)
			return false, oops.Code(CodeLoginFailed).With("email", email).Wrap(err)
		}
		return m.commitSession(ctx, s)
	})
}

// Register creates an account and signs it in. It behaves exactly like Login.
func (m *Manager) Register(ctx context.Context, name, email, password string) (bool, error) {
	if name == "" || email == "" || password == "" {
		return false, oops.Code(CodeInvalidInput).Wrap(ErrEmptyCredentials)
	}
	return detach(ctx, func(ctx context.Context) (bool, error) {
		s, err := m.transport.Register(ctx, name, email, password)
		if err != nil {
			logs.LogError(m.logger, slog.LevelWarn, "register failed", err)
			return false, oops.Code(CodeRegisterFailed).With("email", email).Wrap(err)
		}
		return m.commitSession(ctx, s)
	})
}

// CheckAuthStatus verifies the stored token and reports whether the session
// is authenticated. It never fails: any problem resolves the session to
// StatusNotAuthenticated.
//
// Without a stored token no request is made and the session is logged out.
// A rejected token clears the user but stays in the store unless stale token
// eviction is enabled.
func (m *Manager) CheckAuthStatus(ctx context.Context) bool {
	token, ok, err := m.store.Get(ctx)
	if err != nil {
		logs.LogError(m.logger, slog.LevelWarn, "reading stored token failed", err)
		m.resolveNotAuthenticated(ctx, false)
		return false
	}
	if !ok {
		m.logger.Debug("no stored token")
		if err := m.Logout(ctx); err != nil {
			logs.LogError(m.logger, slog.LevelWarn, "logout failed", err)
		}
		return false
	}

	authenticated, _ := detach(ctx, func(ctx context.Context) (bool, error) {
		s, err := m.transport.CheckToken(ctx, token)
		if err != nil {
			logs.LogError(m.logger, slog.LevelInfo, "token check failed", err)
			m.resolveNotAuthenticated(ctx, m.evictStale)
			return false, nil
		}
		if _, err := m.commitSession(ctx, s); err != nil {
			m.resolveNotAuthenticated(ctx, false)
			return false, nil
		}
		return true, nil
	})
	return authenticated
}

// Logout removes the stored token and clears the session. It makes no network
// call and is idempotent. The in-memory state is cleared even if removing the
// token fails; that failure is returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err := m.store.Remove(ctx)
	m.setLocked(StatusNotAuthenticated, nil)
	if err != nil {
		return oops.Code(CodeLogoutFailed).Wrap(err)
	}
	return nil
}

func (m *Manager) commitSession(ctx context.Context, s *auth.Session) (bool, error) {
	if s == nil || s.User == nil || s.Token == "" {
		return false, oops.Code(CodePersistFailed).Wrap(auth.ErrMalformedSession)
	}
	if err := m.commitAuthenticated(ctx, s.User, s.Token); err != nil {
		return false, err
	}
	return true, nil
}

// commitAuthenticated is the only path into StatusAuthenticated. The token is
// stored first; if that fails nothing else changes.
func (m *Manager) commitAuthenticated(ctx context.Context, user *auth.User, token string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Set(ctx, token); err != nil {
		logs.LogError(m.logger, slog.LevelError, "storing token failed", err)
		return oops.Code(CodePersistFailed).With("user_id", user.ID).Wrap(err)
	}
	m.setLocked(StatusAuthenticated, user.Clone())
	return nil
}

func (m *Manager) resolveNotAuthenticated(ctx context.Context, evict bool) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if evict {
		if err := m.store.Remove(ctx); err != nil {
			logs.LogError(m.logger, slog.LevelWarn, "evicting stale token failed", err)
		}
	}
	m.setLocked(StatusNotAuthenticated, nil)
}

// setLocked swaps the in-memory state and notifies subscribers. writeMu must be held.
func (m *Manager) setLocked(status Status, user *auth.User) {
	m.mu.Lock()
	m.status = status
	m.user = user
	snap := m.snapshotLocked()
	m.mu.Unlock()

	attrs := []any{"status", status.String()}
	if user != nil {
		attrs = append(attrs, "user_id", user.ID)
	}
	m.logger.Debug("session state changed", attrs...)

	m.subs.publish(snap)
}

// detach runs fn to completion even if ctx is cancelled, so a response that
// arrives is always committed. The caller stops waiting when ctx is done.
func detach(ctx context.Context, fn func(context.Context) (bool, error)) (bool, error) {
	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := fn(context.WithoutCancel(ctx))
		done <- result{ok: ok, err: err}
	}()
	select {
	case r := <-done:
		return r.ok, r.err
	case <-ctx.Done():
		return false, oops.Code(CodeAbandoned).Wrap(ctx.Err())
	}
}
