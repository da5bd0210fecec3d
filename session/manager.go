package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/portfoliolabs/go-admin-client/api"
	"github.com/portfoliolabs/go-admin-client/nav"
	"github.com/portfoliolabs/go-admin-client/storage"
	"github.com/rs/zerolog"
)

// AuthAPI is the authentication collaborator the manager delegates to.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) (*api.ChangePasswordResponse, error)
}

// subscriberBuffer bounds how many snapshots a subscriber may lag behind. A
// receiver that falls further behind misses intermediate snapshots; the
// latest state is always available from Current.
const subscriberBuffer = 8

// Manager is the single authority over session transitions. It holds the
// current session in memory, mirrors it to durable storage, and publishes
// whole-session snapshots so observers never see a credential without its
// identity.
type Manager struct {
	authAPI   AuthAPI
	store     storage.Store
	navigator nav.Navigator
	nowTime   func() time.Time // injectable for testing
	logger    zerolog.Logger

	mu          sync.RWMutex
	current     Session
	subscribers []chan Session
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the manager's logger. Credential material is never logged
// regardless of level.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager initializes a Manager with required dependencies. Optional
// configuration can be provided via options (e.g., WithNowTime for testing).
func NewManager(authAPI AuthAPI, store storage.Store, navigator nav.Navigator, options ...ManagerOption) (*Manager, error) {
	if authAPI == nil {
		return nil, errors.New("[NewManager] authAPI is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if navigator == nil {
		return nil, errors.New("[NewManager] navigator is required")
	}

	manager := &Manager{
		authAPI:   authAPI,
		store:     store,
		navigator: navigator,
		nowTime:   time.Now,
		logger:    zerolog.Nop(),
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

// Login authenticates against the collaborator. On success the credential,
// identity, and the locally computed expiry deadline (now + expiresIn) are
// stored in memory, persisted, and published as one snapshot. On any
// failure the prior session is left untouched and ErrInvalidCredentials is
// returned for server rejections.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	response, err := m.authAPI.Login(ctx, username, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			m.logger.Info().Str("username", username).Int("status", apiErr.StatusCode).Msg("login rejected")
			return Session{}, errors.Wrap(ErrInvalidCredentials, apiErr.Message)
		}
		return Session{}, errors.Wrap(err, "[Manager.Login] authAPI.Login")
	}

	// A response without a token, or naming a different user than the one
	// who submitted credentials, cannot be trusted.
	if response == nil || response.Token == "" || response.User.Username != username {
		return Session{}, ErrInvalidCredentials
	}

	identity := identityFromUser(response.User)
	deadline := m.nowTime().Add(time.Duration(response.ExpiresIn) * time.Second)

	if err := m.persist(response.Token, identity, deadline); err != nil {
		return Session{}, errors.Wrap(err, "[Manager.Login] persist")
	}

	session := Session{Token: response.Token, Identity: &identity, ExpiresAt: deadline}
	m.setCurrent(session)

	m.logger.Info().Str("username", identity.Username).Time("expiresAt", deadline).Msg("login succeeded")
	return session, nil
}

// Logout clears the session and navigates to the login view. It is
// idempotent: calling it with no active session is safe.
func (m *Manager) Logout() {
	m.ClearSession()
	m.navigator.Navigate(nav.LoginPath)
}

// ClearSession empties the in-memory session and the durable entries without
// navigating. The response fault handler uses it to end the session and then
// perform a single redirect of its own.
func (m *Manager) ClearSession() {
	m.clearStorage()
	m.setCurrent(Session{})
	m.logger.Debug().Msg("session cleared")
}

// IsAuthenticated reports whether a credential is present and the locally
// stored deadline has not passed. It never fails; on any doubt it reports
// false.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	active := m.current.Active()
	m.mu.RUnlock()

	return active && !m.IsTokenExpired()
}

// IsTokenExpired reports whether the stored expiry deadline has passed.
// A missing or unreadable deadline counts as expired.
func (m *Manager) IsTokenExpired() bool {
	raw, err := m.store.Get(storage.KeyExpiration)
	if err != nil {
		return true
	}
	deadlineMillis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return m.nowTime().UnixMilli() >= deadlineMillis
}

// InitializeAuth restores a persisted session at process start. The three
// durable entries are treated all-or-nothing: unless every one is present,
// readable, and the deadline lies in the future, storage is cleared and the
// manager stays anonymous. Safe to call more than once.
func (m *Manager) InitializeAuth() {
	token, errToken := m.store.Get(storage.KeyToken)
	userJSON, errUser := m.store.Get(storage.KeyUser)
	expiration, errExpiration := m.store.Get(storage.KeyExpiration)

	if errToken != nil || errUser != nil || errExpiration != nil {
		m.clearStorage()
		return
	}

	deadlineMillis, err := strconv.ParseInt(expiration, 10, 64)
	if err != nil || m.nowTime().UnixMilli() >= deadlineMillis {
		m.clearStorage()
		return
	}

	var identity Identity
	if err := json.Unmarshal([]byte(userJSON), &identity); err != nil {
		m.clearStorage()
		return
	}

	session := Session{Token: token, Identity: &identity, ExpiresAt: time.UnixMilli(deadlineMillis)}
	m.setCurrent(session)
	m.logger.Info().Str("username", identity.Username).Time("expiresAt", session.ExpiresAt).Msg("session restored")
}

// ChangePassword delegates to the collaborator and, on success, replaces
// only the stored identity (the server returns it with the password-change
// flag cleared). The credential and its deadline are untouched. A server
// rejection is returned as-is so its reason reaches the user verbatim.
func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) (*Identity, error) {
	response, err := m.authAPI.ChangePassword(ctx, currentPassword, newPassword, confirmPassword)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, errors.Wrap(err, "[Manager.ChangePassword] authAPI.ChangePassword")
	}

	identity := identityFromUser(response.User)

	userJSON, err := json.Marshal(identity)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.ChangePassword] marshal identity")
	}
	if err := m.store.Set(storage.KeyUser, string(userJSON)); err != nil {
		return nil, errors.Wrap(err, "[Manager.ChangePassword] persist identity")
	}

	m.mu.Lock()
	if m.current.Active() {
		m.current.Identity = &identity
	}
	session := m.current
	m.mu.Unlock()
	m.publish(session)

	m.logger.Info().Str("username", identity.Username).Msg("password changed")
	return &identity, nil
}

// RequiresPasswordChange reports whether the current identity is flagged for
// a forced password change. False when no session is active.
func (m *Manager) RequiresPasswordChange() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Identity != nil && m.current.Identity.RequiresPasswordChange
}

// Token returns the current credential, or "" when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// User returns a copy of the current identity, or nil when anonymous.
func (m *Manager) User() *Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current.Identity == nil {
		return nil
	}
	identity := *m.current.Identity
	return &identity
}

// Current returns the current session snapshot.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe returns a channel that receives a whole-session snapshot after
// every transition. Credential and identity always arrive together in one
// value. The channel is buffered; a subscriber that stops draining drops
// older snapshots rather than blocking the manager.
func (m *Manager) Subscribe() <-chan Session {
	ch := make(chan Session, subscriberBuffer)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

func (m *Manager) persist(token string, identity Identity, deadline time.Time) error {
	userJSON, err := json.Marshal(identity)
	if err != nil {
		return errors.Wrap(err, "marshal identity")
	}

	if err := m.store.Set(storage.KeyToken, token); err != nil {
		m.clearStorage()
		return errors.Wrap(err, "store token")
	}
	if err := m.store.Set(storage.KeyUser, string(userJSON)); err != nil {
		m.clearStorage()
		return errors.Wrap(err, "store identity")
	}
	if err := m.store.Set(storage.KeyExpiration, strconv.FormatInt(deadline.UnixMilli(), 10)); err != nil {
		m.clearStorage()
		return errors.Wrap(err, "store expiration")
	}
	return nil
}

func (m *Manager) clearStorage() {
	for _, key := range []string{storage.KeyToken, storage.KeyUser, storage.KeyExpiration} {
		if err := m.store.Delete(key); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to clear storage entry")
		}
	}
}

func (m *Manager) setCurrent(session Session) {
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()
	m.publish(session)
}

func (m *Manager) publish(session Session) {
	m.mu.RLock()
	subscribers := append([]chan Session(nil), m.subscribers...)
	m.mu.RUnlock()

	for _, ch := range subscribers {
		select {
		case ch <- session:
		default:
		}
	}
}
