package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
	"github.com/lebfix/lebfix-client/internal/session/repository"
)

type fakeAPI struct {
	authURL    string
	loginHost  string
	loginErr   error
	session    *mkthttp.SessionResponse
	sessionErr error
	me         *domain.User
	meErr      error
	meCalls    int
	completed  []mkthttp.CompleteProfileRequest
	completeFn func() error
}

func (f *fakeAPI) Login(_ context.Context, hostURL string) (string, error) {
	f.loginHost = hostURL
	return f.authURL, f.loginErr
}

func (f *fakeAPI) ExchangeSession(_ context.Context, _ string) (*mkthttp.SessionResponse, error) {
	return f.session, f.sessionErr
}

func (f *fakeAPI) GetMe(_ context.Context, _ string) (*domain.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.me
	return &u, nil
}

func (f *fakeAPI) CompleteProfile(_ context.Context, _ string, req mkthttp.CompleteProfileRequest) error {
	f.completed = append(f.completed, req)
	if f.completeFn != nil {
		return f.completeFn()
	}
	return nil
}

var unauthorized = &mkthttp.StatusError{Method: "GET", Path: "/users/me", Code: 401}

func TestManager_StartsLoading(t *testing.T) {
	m := NewManager(&fakeAPI{}, repository.NewMemoryStore(), nil)
	assert.True(t, m.State().Loading)
	assert.Nil(t, m.State().User)
}

func TestManager_RestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("no token yields no user and stops loading", func(t *testing.T) {
		api := &fakeAPI{}
		m := NewManager(api, repository.NewMemoryStore(), nil)

		assert.Nil(t, m.RestoreSession(ctx))
		assert.False(t, m.State().Loading)
		assert.Equal(t, 0, api.meCalls)
	})

	t.Run("valid token resolves user", func(t *testing.T) {
		store := repository.NewMemoryStore()
		require.NoError(t, store.Save(ctx, "tok"))
		api := &fakeAPI{me: &domain.User{ID: "u1", Role: domain.RoleCustomer}}
		m := NewManager(api, store, nil)

		user := m.RestoreSession(ctx)
		require.NotNil(t, user)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "tok", m.Token())
		assert.False(t, m.State().Loading)
	})

	t.Run("any fetch failure clears the token", func(t *testing.T) {
		store := repository.NewMemoryStore()
		require.NoError(t, store.Save(ctx, "stale"))
		api := &fakeAPI{meErr: errors.New("connection refused")}
		m := NewManager(api, store, nil)

		assert.Nil(t, m.RestoreSession(ctx))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, repository.ErrNoToken)
		assert.Empty(t, m.Token())
		assert.False(t, m.State().Loading)
	})
}

func TestManager_LogoutThenRestore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "tok"))
	api := &fakeAPI{me: &domain.User{ID: "u1", Role: domain.RoleCompany}}
	m := NewManager(api, store, nil)
	require.NotNil(t, m.RestoreSession(ctx))

	require.NoError(t, m.Logout(ctx))
	assert.Nil(t, m.User())
	assert.Empty(t, m.Token())

	restored := NewManager(api, store, nil)
	assert.Nil(t, restored.RestoreSession(ctx))
	state := restored.State()
	assert.Nil(t, state.User)
	assert.False(t, state.Loading)
}

func TestManager_HandleAuthCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("persists returned token", func(t *testing.T) {
		store := repository.NewMemoryStore()
		api := &fakeAPI{session: &mkthttp.SessionResponse{
			User:      domain.User{ID: "u1", Name: "Ana", Role: domain.RoleCustomer, SessionToken: "tok1"},
			IsNewUser: true,
		}}
		m := NewManager(api, store, nil)

		user, err := m.HandleAuthCallback(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Empty(t, user.SessionToken)

		token, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok1", token)
		assert.Equal(t, "tok1", m.Token())
		assert.False(t, m.State().Loading)
	})

	t.Run("exchange failure sets no user", func(t *testing.T) {
		store := repository.NewMemoryStore()
		api := &fakeAPI{sessionErr: errors.New("invalid session")}
		m := NewManager(api, store, nil)

		_, err := m.HandleAuthCallback(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrAuthCallbackFailed)
		assert.Nil(t, m.User())
		_, err = store.Load(ctx)
		assert.ErrorIs(t, err, repository.ErrNoToken)
	})

	t.Run("failure does not roll back an existing session", func(t *testing.T) {
		store := repository.NewMemoryStore()
		require.NoError(t, store.Save(ctx, "old"))
		api := &fakeAPI{me: &domain.User{ID: "u0"}, sessionErr: errors.New("boom")}
		m := NewManager(api, store, nil)
		m.RestoreSession(ctx)

		_, err := m.HandleAuthCallback(ctx, "abc")
		require.Error(t, err)
		assert.Equal(t, "old", m.Token())
		assert.Equal(t, "u0", m.User().ID)
	})

	t.Run("missing token in response", func(t *testing.T) {
		api := &fakeAPI{session: &mkthttp.SessionResponse{User: domain.User{ID: "u1"}}}
		m := NewManager(api, repository.NewMemoryStore(), nil)

		_, err := m.HandleAuthCallback(ctx, "abc")
		assert.ErrorIs(t, err, domain.ErrAuthCallbackFailed)
		assert.Nil(t, m.User())
	})

	t.Run("empty session id", func(t *testing.T) {
		m := NewManager(&fakeAPI{}, repository.NewMemoryStore(), nil)
		_, err := m.HandleAuthCallback(ctx, " ")
		assert.ErrorIs(t, err, domain.ErrAuthCallbackFailed)
	})
}

func TestManager_Login(t *testing.T) {
	var opened string
	api := &fakeAPI{authURL: "https://auth.example/?redirect=x"}
	m := NewManager(api, repository.NewMemoryStore(), func(u string) error {
		opened = u
		return nil
	})

	authURL, err := m.Login(context.Background(), "http://127.0.0.1:8765/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8765", api.loginHost)
	assert.Equal(t, authURL, opened)
}

func TestManager_Login_OpenFailureStillReturnsURL(t *testing.T) {
	api := &fakeAPI{authURL: "https://auth.example/"}
	m := NewManager(api, repository.NewMemoryStore(), func(string) error { return errors.New("no display") })

	authURL, err := m.Login(context.Background(), "http://127.0.0.1:8765")
	require.Error(t, err)
	assert.Equal(t, "https://auth.example/", authURL)
}

func TestManager_CompleteProfile(t *testing.T) {
	ctx := context.Background()

	newSignedIn := func(api *fakeAPI) *Manager {
		store := repository.NewMemoryStore()
		require.NoError(t, store.Save(ctx, "tok"))
		m := NewManager(api, store, nil)
		require.NotNil(t, m.RestoreSession(ctx))
		return m
	}

	t.Run("submits then refetches", func(t *testing.T) {
		api := &fakeAPI{me: &domain.User{ID: "u1", Role: domain.RoleCustomer}}
		m := newSignedIn(api)
		api.me = &domain.User{ID: "u1", Role: domain.RoleCustomer, Phone: "03 123", Address: "Hamra"}

		err := m.CompleteProfile(ctx, ProfileData{Role: domain.RoleCustomer, Phone: " 03 123 ", Address: "Hamra"})
		require.NoError(t, err)
		require.Len(t, api.completed, 1)
		assert.Equal(t, "03 123", api.completed[0].Phone)
		assert.Equal(t, 2, api.meCalls)
		assert.True(t, m.User().HasContactDetails())
	})

	t.Run("submission failure propagates", func(t *testing.T) {
		api := &fakeAPI{me: &domain.User{ID: "u1"}}
		m := newSignedIn(api)
		api.completeFn = func() error { return fmt.Errorf("500") }

		err := m.CompleteProfile(ctx, ProfileData{Role: domain.RoleCompany})
		assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
		assert.Equal(t, 1, api.meCalls)
	})

	t.Run("requires a session", func(t *testing.T) {
		m := NewManager(&fakeAPI{}, repository.NewMemoryStore(), nil)
		assert.ErrorIs(t, m.CompleteProfile(ctx, ProfileData{Role: domain.RoleCustomer}), domain.ErrNotLoggedIn)
	})
}

func TestManager_RefreshUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "tok"))
	api := &fakeAPI{me: &domain.User{ID: "u1", Name: "Old"}}
	m := NewManager(api, store, nil)
	m.RestoreSession(ctx)

	t.Run("transient failure keeps cached user", func(t *testing.T) {
		api.meErr = errors.New("timeout")
		err := m.RefreshUser(ctx)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		assert.Equal(t, "Old", m.User().Name)
	})

	t.Run("rejected token expires the session", func(t *testing.T) {
		api.meErr = unauthorized
		err := m.RefreshUser(ctx)
		assert.ErrorIs(t, err, domain.ErrAuthExpired)
		assert.Nil(t, m.User())
		_, err = store.Load(ctx)
		assert.ErrorIs(t, err, repository.ErrNoToken)
	})
}

func TestManager_UserIsACopy(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "tok"))
	m := NewManager(&fakeAPI{me: &domain.User{ID: "u1", Name: "Ana"}}, store, nil)
	m.RestoreSession(ctx)

	u := m.User()
	u.Name = "changed"
	assert.Equal(t, "Ana", m.User().Name)
}
