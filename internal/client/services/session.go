// Package services contains the application services of the client: the
// Session Manager, which owns the login state machine, and the record and
// user services, which call the backend on behalf of the current session.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/client/store"
	"github.com/dmitrijs2005/passclient/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// State of the Session Manager.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

const sessionExpiredMessage = "Your session has expired, please log in again"

// CredentialStore is the durable holder of the session. *store.Store
// implements it.
type CredentialStore interface {
	Save(ctx context.Context, token string, userID models.ID) error
	Read(ctx context.Context) (store.Credentials, bool, error)
	Clear(ctx context.Context) error
	SaveUser(ctx context.Context, u models.User) error
	ReadUser(ctx context.Context) (models.User, bool, error)
}

// SessionManager owns the current session. Login, Register, Logout,
// Restore and Invalidate run one at a time; the getters never block on the
// network.
type SessionManager struct {
	api       client.AuthAPI
	store     CredentialStore
	log       logging.Logger
	autoLogin bool

	op sync.Mutex

	mu      sync.RWMutex
	state   State
	session models.Session
	user    models.User
	subs    map[int]func(error)
	nextSub int
}

type SessionOption func(*SessionManager)

// WithAutoLoginOnRegister controls whether a successful registration also
// opens a session. It does by default.
func WithAutoLoginOnRegister(v bool) SessionOption {
	return func(m *SessionManager) { m.autoLogin = v }
}

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(m *SessionManager) { m.log = l }
}

func NewSessionManager(api client.AuthAPI, st CredentialStore, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		api:       api,
		store:     st,
		log:       logging.Nop(),
		autoLogin: true,
		subs:      map[int]func(error){},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Restore loads a persisted session, if any. The token is not checked
// against the server; an expired one surfaces on first use. A token that
// cannot be decrypted is discarded.
func (m *SessionManager) Restore(ctx context.Context) (bool, error) {
	m.op.Lock()
	defer m.op.Unlock()

	creds, ok, err := m.store.Read(ctx)
	if errors.Is(err, store.ErrUnreadableToken) {
		m.log.Warn(ctx, "discarding unreadable stored session", "error", err)
		m.clearStore(ctx)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read stored session: %w", err)
	}
	if !ok {
		return false, nil
	}

	u, hasUser, err := m.store.ReadUser(ctx)
	if err != nil {
		m.log.Warn(ctx, "cached profile unreadable", "error", err)
	}
	if !hasUser || u.ID != creds.UserID {
		u = models.User{ID: creds.UserID}
	}

	m.setAuthenticated(newSession(creds.Token, creds.UserID), u)
	m.log.Info(ctx, "session restored", "user_id", creds.UserID)
	return true, nil
}

// Login authenticates against the auth service and persists the session.
// On failure the state is Unauthenticated and the store is left untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string) (models.Session, error) {
	m.op.Lock()
	defer m.op.Unlock()

	m.setState(StateAuthenticating)

	resp, err := m.api.Login(ctx, models.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return models.Session{}, m.fail(ctx, "login", loginError(err))
	}

	return m.establish(ctx, resp)
}

// Register creates an account. With auto-login (the default) the response
// opens a session exactly like Login; otherwise the session is untouched.
func (m *SessionManager) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.User{}, client.NewError(client.KindInvalidRequest, "Username, email and password are required")
	}

	m.op.Lock()
	defer m.op.Unlock()

	if !m.autoLogin {
		resp, err := m.api.Register(ctx, req)
		if err != nil {
			return models.User{}, err
		}
		m.log.Info(ctx, "registered", "user_id", resp.ID)
		return withNames(resp.User(), req), nil
	}

	m.setState(StateAuthenticating)

	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return models.User{}, m.fail(ctx, "register", err)
	}

	u := withNames(resp.User(), req)
	if _, err := m.establishWithUser(ctx, resp, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Logout clears the session from any state. Store failures are logged.
func (m *SessionManager) Logout(ctx context.Context) {
	m.op.Lock()
	defer m.op.Unlock()

	m.clearStore(ctx)
	m.setUnauthenticated()
	m.log.Info(ctx, "logged out")
}

// Invalidate ends the session if token is still the current token, then
// notifies subscribers. Calls for a token that is no longer current do not
// change the state or notify, so a burst of 401s for one token has one
// effect. If that token is still in the store, for example after a failed
// re-login, it is removed so Restore cannot bring it back.
func (m *SessionManager) Invalidate(ctx context.Context, token string) bool {
	subs, ok := m.invalidate(ctx, token)
	if !ok {
		return false
	}

	reason := client.NewError(client.KindSessionExpired, sessionExpiredMessage)
	for _, fn := range subs {
		fn(reason)
	}
	return true
}

func (m *SessionManager) invalidate(ctx context.Context, token string) ([]func(error), bool) {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.RLock()
	current := m.session.Token
	m.mu.RUnlock()
	if token == "" {
		return nil, false
	}
	if token != current {
		m.dropStale(ctx, token)
		return nil, false
	}

	m.clearStore(ctx)
	m.setUnauthenticated()
	m.log.Info(ctx, "session invalidated by server")

	m.mu.RLock()
	defer m.mu.RUnlock()
	subs := make([]func(error), 0, len(m.subs))
	for i := 0; i < m.nextSub; i++ {
		if fn, ok := m.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs, true
}

// OnInvalidated registers fn to run after every invalidation. The returned
// func removes it.
func (m *SessionManager) OnInvalidated(fn func(error)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *SessionManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUserID returns the user id while Authenticated.
func (m *SessionManager) CurrentUserID() (models.ID, bool) {
	s, ok := m.Session()
	return s.UserID, ok
}

// Session returns a snapshot of the current session while Authenticated.
func (m *SessionManager) Session() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated {
		return models.Session{}, false
	}
	return m.session, true
}

// CurrentUser returns the cached profile of the session owner.
func (m *SessionManager) CurrentUser() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated {
		return models.User{}, false
	}
	return m.user, true
}

// UpdateCurrentUser refreshes the cached profile when u is the session owner.
// It holds the operation lock, so a concurrent Logout either runs first and
// makes this a no-op or runs after the profile is written and removes it.
func (m *SessionManager) UpdateCurrentUser(ctx context.Context, u models.User) {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.Lock()
	if m.state != StateAuthenticated || u.ID != m.session.UserID {
		m.mu.Unlock()
		return
	}
	u.Password = ""
	if u.Role == "" {
		u.Role = m.user.Role
	}
	m.user = u
	m.mu.Unlock()

	if err := m.store.SaveUser(ctx, u); err != nil {
		m.log.Warn(ctx, "failed to cache profile", "error", err)
	}
}

func (m *SessionManager) establish(ctx context.Context, resp models.AuthResponse) (models.Session, error) {
	return m.establishWithUser(ctx, resp, resp.User())
}

func (m *SessionManager) establishWithUser(ctx context.Context, resp models.AuthResponse, u models.User) (models.Session, error) {
	sess := newSession(resp.Token, resp.ID)
	if !sess.Valid() {
		return models.Session{}, m.fail(ctx, "auth response", client.NewError(client.KindAuthenticationFailed, "Authentication failed"))
	}

	if err := m.store.Save(ctx, resp.Token, resp.ID); err != nil {
		return models.Session{}, m.fail(ctx, "persist session", fmt.Errorf("save session: %w", err))
	}
	if err := m.store.SaveUser(ctx, u); err != nil {
		m.log.Warn(ctx, "failed to cache profile", "error", err)
	}

	m.setAuthenticated(sess, u)
	m.log.Info(ctx, "authenticated", "user_id", resp.ID)
	return sess, nil
}

func (m *SessionManager) fail(ctx context.Context, step string, err error) error {
	m.setUnauthenticated()
	m.log.Info(ctx, "authentication failed", "step", step, "kind", client.KindOf(err))
	return err
}

// dropStale clears the store when it still holds token. Caller holds op.
func (m *SessionManager) dropStale(ctx context.Context, token string) {
	creds, ok, err := m.store.Read(ctx)
	if err != nil || !ok || creds.Token != token {
		return
	}
	m.clearStore(ctx)
	m.log.Info(ctx, "stale stored session removed")
}

func (m *SessionManager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn(ctx, "failed to clear stored session", "error", err)
	}
}

func (m *SessionManager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *SessionManager) setAuthenticated(s models.Session, u models.User) {
	u.Password = ""
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthenticated
	m.session = s
	m.user = u
}

func (m *SessionManager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUnauthenticated
	m.session = models.Session{}
	m.user = models.User{}
}

// loginError folds request rejections into AuthenticationFailed, keeping
// the server's message. Network and server failures keep their kind.
func loginError(err error) error {
	switch client.KindOf(err) {
	case client.KindInvalidRequest, client.KindForbidden, client.KindNotFound:
		return &client.Error{Kind: client.KindAuthenticationFailed, Message: client.Message(err), Err: err}
	}
	return err
}

func withNames(u models.User, req models.RegisterRequest) models.User {
	if u.FirstName == "" {
		u.FirstName = req.FirstName
	}
	if u.LastName == "" {
		u.LastName = req.LastName
	}
	return u
}

// newSession reads the informational claims of a JWT without verifying it.
// Opaque tokens are kept as they are.
func newSession(token string, userID models.ID) models.Session {
	s := models.Session{UserID: userID, Token: token}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s
	}
	s.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

// ExpiresIn returns the time left on the session's token, if it says.
func ExpiresIn(s models.Session, now time.Time) (time.Duration, bool) {
	if s.ExpiresAt.IsZero() {
		return 0, false
	}
	return s.ExpiresAt.Sub(now), true
}
