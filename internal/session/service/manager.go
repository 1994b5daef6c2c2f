package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
	"github.com/lebfix/lebfix-client/internal/session/repository"
)

// API is the slice of the backend the session manager needs.
type API interface {
	Login(ctx context.Context, hostURL string) (string, error)
	ExchangeSession(ctx context.Context, sessionID string) (*mkthttp.SessionResponse, error)
	GetMe(ctx context.Context, token string) (*domain.User, error)
	CompleteProfile(ctx context.Context, token string, req mkthttp.CompleteProfileRequest) error
}

// BrowserOpener navigates the user's browser to url.
type BrowserOpener func(url string) error

// State is what the view router needs from the session.
type State struct {
	User    *domain.User
	Loading bool
}

// ProfileData is the one-time profile completion payload.
type ProfileData struct {
	Role    domain.Role
	Phone   string
	Address string
}

// Manager owns the session token and the cached current user. One Manager
// exists per running client; it is created at startup and closed at exit.
type Manager struct {
	api   API
	store repository.TokenStore
	open  BrowserOpener

	mu      sync.RWMutex
	token   string
	user    *domain.User
	loading bool
}

// NewManager builds a Manager. It starts in the loading state until
// RestoreSession or HandleAuthCallback completes.
func NewManager(api API, store repository.TokenStore, open BrowserOpener) *Manager {
	return &Manager{
		api:     api,
		store:   store,
		open:    open,
		loading: true,
	}
}

// RestoreSession loads the persisted token and resolves the user. Any
// failure clears the token and leaves the client logged out.
func (m *Manager) RestoreSession(ctx context.Context) *domain.User {
	logger := logging.NewLogger(ctx, "session")
	defer m.setLoading(false)

	token, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNoToken) {
			logger.LogError("restore_session", err)
		}
		m.setSession("", nil)
		return nil
	}

	user, err := m.api.GetMe(ctx, token)
	if err != nil {
		logger.LogWarnf("restore_session", "stored token rejected, clearing: %v", err)
		m.expire(ctx)
		return nil
	}

	m.setSession(token, user)
	return cloneUser(user)
}

// HandleAuthCallback exchanges an external-auth session id for a token and
// user, persisting the token. On failure no user state is set.
func (m *Manager) HandleAuthCallback(ctx context.Context, sessionID string) (*domain.User, error) {
	logger := logging.NewLogger(ctx, "session")
	defer m.setLoading(false)

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		err := fmt.Errorf("%w: empty session id", domain.ErrAuthCallbackFailed)
		logger.LogError("auth_callback", err)
		return nil, err
	}

	resp, err := m.api.ExchangeSession(ctx, sessionID)
	if err != nil {
		logger.LogError("auth_callback", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthCallbackFailed, err)
	}
	token := resp.User.SessionToken
	if token == "" {
		err := fmt.Errorf("%w: backend returned no session token", domain.ErrAuthCallbackFailed)
		logger.LogError("auth_callback", err)
		return nil, err
	}

	if err := m.store.Save(ctx, token); err != nil {
		logger.LogWarnf("auth_callback", "token not persisted, session lasts for this run only: %v", err)
	}

	user := resp.User
	user.SessionToken = ""
	m.setSession(token, &user)
	logger.LogInfof("auth_callback", "signed in user_id=%s new_user=%t", user.ID, resp.IsNewUser)
	return cloneUser(&user), nil
}

// Login asks the backend for the external-auth URL that returns to origin
// and sends the browser there. The URL is returned so callers can show it
// when no browser could be opened.
func (m *Manager) Login(ctx context.Context, origin string) (string, error) {
	authURL, err := m.api.Login(ctx, strings.TrimRight(origin, "/"))
	if err != nil {
		logging.NewLogger(ctx, "session").LogError("login", err)
		return "", fmt.Errorf("login: %w", err)
	}
	if m.open != nil {
		if err := m.open(authURL); err != nil {
			return authURL, fmt.Errorf("login: open browser: %w", err)
		}
	}
	return authURL, nil
}

// Logout forgets the token and user. No backend call is made.
func (m *Manager) Logout(ctx context.Context) error {
	m.setSession("", nil)
	m.setLoading(false)
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// CompleteProfile submits role and contact details, then re-fetches the
// canonical user. Failures are returned to the caller.
func (m *Manager) CompleteProfile(ctx context.Context, data ProfileData) error {
	token := m.Token()
	if token == "" {
		return domain.ErrNotLoggedIn
	}

	req := mkthttp.CompleteProfileRequest{
		Role:    data.Role,
		Phone:   strings.TrimSpace(data.Phone),
		Address: strings.TrimSpace(data.Address),
	}
	if err := m.api.CompleteProfile(ctx, token, req); err != nil {
		logging.NewLogger(ctx, "session").LogError("complete_profile", err)
		return fmt.Errorf("complete profile: %w: %w", domain.ErrSubmissionFailed, err)
	}

	return m.RefreshUser(ctx)
}

// RefreshUser re-fetches /users/me. A rejected token ends the session.
func (m *Manager) RefreshUser(ctx context.Context) error {
	token := m.Token()
	if token == "" {
		return domain.ErrNotLoggedIn
	}

	user, err := m.api.GetMe(ctx, token)
	if err != nil {
		logging.NewLogger(ctx, "session").LogError("refresh_user", err)
		if mkthttp.IsUnauthorized(err) {
			m.expire(ctx)
			return fmt.Errorf("refresh user: %w", domain.ErrAuthExpired)
		}
		return fmt.Errorf("refresh user: %w: %w", domain.ErrFetchFailed, err)
	}

	m.mu.Lock()
	if m.token == token {
		m.user = user
	}
	m.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the cached user, or nil.
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

// State snapshots the session for routing.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{User: cloneUser(m.user), Loading: m.loading}
}

// Close releases the token store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) expire(ctx context.Context) {
	m.setSession("", nil)
	if err := m.store.Clear(ctx); err != nil {
		logging.NewLogger(ctx, "session").LogError("clear_token", err)
	}
}

func (m *Manager) setSession(token string, user *domain.User) {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
