package session_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/portfoliolabs/go-admin-client/api"
	"github.com/portfoliolabs/go-admin-client/internal/utils"
	"github.com/portfoliolabs/go-admin-client/nav"
	"github.com/portfoliolabs/go-admin-client/session"
	"github.com/portfoliolabs/go-admin-client/storage"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "admin"
	testPassword = "password123"
	testToken    = "header.payload.signature"
	testUserID   = "user-1"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeAuthAPI is a hand-rolled authentication collaborator.
type fakeAuthAPI struct {
	loginResponse  *api.LoginResponse
	loginErr       error
	loginCalls     int
	changeResponse *api.ChangePasswordResponse
	changeErr      error
	changeCalls    int
}

func (f *fakeAuthAPI) Login(_ context.Context, _, _ string) (*api.LoginResponse, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResponse, nil
}

func (f *fakeAuthAPI) ChangePassword(_ context.Context, _, _, _ string) (*api.ChangePasswordResponse, error) {
	f.changeCalls++
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return f.changeResponse, nil
}

func validLoginResponse() *api.LoginResponse {
	return &api.LoginResponse{
		Token:     testToken,
		ExpiresIn: 3600,
		User:      api.User{ID: testUserID, Username: testUsername, Role: "admin"},
	}
}

// testFixture holds all test dependencies.
type testFixture struct {
	authAPI   *fakeAuthAPI
	store     *storage.Memory
	navigator *nav.Recorder
	manager   *session.Manager
}

func newFixture(t *testing.T, authAPI *fakeAuthAPI) *testFixture {
	t.Helper()

	store := storage.NewMemory()
	navigator := nav.NewRecorder("/admin/dashboard")
	manager, err := session.NewManager(authAPI, store, navigator,
		session.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)

	return &testFixture{authAPI: authAPI, store: store, navigator: navigator, manager: manager}
}

func TestNewManager(t *testing.T) {
	store := storage.NewMemory()
	navigator := nav.NewRecorder("/")

	t.Run("missing authAPI", func(t *testing.T) {
		_, err := session.NewManager(nil, store, navigator)
		require.Error(t, err)
	})

	t.Run("missing store", func(t *testing.T) {
		_, err := session.NewManager(&fakeAuthAPI{}, nil, navigator)
		require.Error(t, err)
	})

	t.Run("missing navigator", func(t *testing.T) {
		_, err := session.NewManager(&fakeAuthAPI{}, store, nil)
		require.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{loginResponse: validLoginResponse()})

		current, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)

		require.True(t, f.manager.IsAuthenticated())
		require.Equal(t, testToken, f.manager.Token())
		require.Equal(t, testUsername, current.Identity.Username)
		require.True(t, current.ExpiresAt.Equal(testNow.Add(time.Hour)))

		storedToken, err := f.store.Get(storage.KeyToken)
		require.NoError(t, err)
		require.Equal(t, testToken, storedToken)

		storedExpiration, err := f.store.Get(storage.KeyExpiration)
		require.NoError(t, err)
		require.Equal(t, strconv.FormatInt(testNow.Add(time.Hour).UnixMilli(), 10), storedExpiration)

		storedUser, err := f.store.Get(storage.KeyUser)
		require.NoError(t, err)
		require.Contains(t, storedUser, testUsername)
	})

	t.Run("server rejection", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{
			loginErr: &api.Error{StatusCode: 401, Message: "Invalid username or password"},
		})

		_, err := f.manager.Login(context.Background(), testUsername, "wrong")
		require.ErrorIs(t, err, session.ErrInvalidCredentials)
		require.Contains(t, err.Error(), "Invalid username or password")
		require.False(t, f.manager.IsAuthenticated())
		require.Empty(t, f.manager.Token())
	})

	t.Run("identity mismatch", func(t *testing.T) {
		response := validLoginResponse()
		response.User.Username = "someone-else"
		f := newFixture(t, &fakeAuthAPI{loginResponse: response})

		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.ErrorIs(t, err, session.ErrInvalidCredentials)
		require.False(t, f.manager.IsAuthenticated())
	})

	t.Run("empty token in response", func(t *testing.T) {
		response := validLoginResponse()
		response.Token = ""
		f := newFixture(t, &fakeAuthAPI{loginResponse: response})

		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.ErrorIs(t, err, session.ErrInvalidCredentials)
	})

	t.Run("failed login leaves prior session untouched", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{loginResponse: validLoginResponse()})

		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)

		f.authAPI.loginErr = &api.Error{StatusCode: 401, Message: "Invalid username or password"}
		_, err = f.manager.Login(context.Background(), testUsername, "wrong")
		require.ErrorIs(t, err, session.ErrInvalidCredentials)

		require.True(t, f.manager.IsAuthenticated())
		require.Equal(t, testToken, f.manager.Token())
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears session and navigates to login", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{loginResponse: validLoginResponse()})
		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)

		f.manager.Logout()

		require.False(t, f.manager.IsAuthenticated())
		require.Empty(t, f.manager.Token())
		require.Nil(t, f.manager.User())
		require.Equal(t, nav.LoginPath, f.navigator.CurrentPath())

		for _, key := range []string{storage.KeyToken, storage.KeyUser, storage.KeyExpiration} {
			_, err := f.store.Get(key)
			require.ErrorIs(t, err, storage.ErrNotFound)
		}
	})

	t.Run("idempotent when already logged out", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{})

		f.manager.Logout()
		f.manager.Logout()

		require.False(t, f.manager.IsAuthenticated())
	})
}

func TestIsTokenExpired(t *testing.T) {
	f := newFixture(t, &fakeAuthAPI{})

	t.Run("no stored deadline", func(t *testing.T) {
		require.True(t, f.manager.IsTokenExpired())
	})

	t.Run("future deadline", func(t *testing.T) {
		require.NoError(t, f.store.Set(storage.KeyExpiration,
			strconv.FormatInt(testNow.Add(time.Minute).UnixMilli(), 10)))
		require.False(t, f.manager.IsTokenExpired())
	})

	t.Run("deadline exactly now", func(t *testing.T) {
		require.NoError(t, f.store.Set(storage.KeyExpiration,
			strconv.FormatInt(testNow.UnixMilli(), 10)))
		require.True(t, f.manager.IsTokenExpired())
	})

	t.Run("unparseable deadline", func(t *testing.T) {
		require.NoError(t, f.store.Set(storage.KeyExpiration, "not-a-number"))
		require.True(t, f.manager.IsTokenExpired())
	})
}

func TestInitializeAuth(t *testing.T) {
	t.Run("restores a persisted session in a fresh process image", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{loginResponse: validLoginResponse()})
		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)
		expectedUser := f.manager.User()

		// Same durable storage, fresh manager.
		restored, err := session.NewManager(&fakeAuthAPI{}, f.store, nav.NewRecorder("/"),
			session.WithNowTime(func() time.Time { return testNow }))
		require.NoError(t, err)
		restored.InitializeAuth()

		require.True(t, restored.IsAuthenticated())
		require.Equal(t, testToken, restored.Token())
		require.Equal(t, expectedUser, restored.User())
	})

	t.Run("expired deadline clears storage and does not restore", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{})
		require.NoError(t, f.store.Set(storage.KeyToken, testToken))
		require.NoError(t, f.store.Set(storage.KeyUser, `{"id":"user-1","username":"admin","role":"admin"}`))
		require.NoError(t, f.store.Set(storage.KeyExpiration,
			strconv.FormatInt(testNow.Add(-time.Second).UnixMilli(), 10)))

		f.manager.InitializeAuth()

		require.False(t, f.manager.IsAuthenticated())
		for _, key := range []string{storage.KeyToken, storage.KeyUser, storage.KeyExpiration} {
			_, err := f.store.Get(key)
			require.ErrorIs(t, err, storage.ErrNotFound, key)
		}
	})

	t.Run("partial persisted state is cleared", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{})
		require.NoError(t, f.store.Set(storage.KeyToken, testToken))

		f.manager.InitializeAuth()

		require.False(t, f.manager.IsAuthenticated())
		_, err := f.store.Get(storage.KeyToken)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("corrupt identity JSON is cleared", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{})
		require.NoError(t, f.store.Set(storage.KeyToken, testToken))
		require.NoError(t, f.store.Set(storage.KeyUser, "{corrupt"))
		require.NoError(t, f.store.Set(storage.KeyExpiration,
			strconv.FormatInt(testNow.Add(time.Hour).UnixMilli(), 10)))

		f.manager.InitializeAuth()

		require.False(t, f.manager.IsAuthenticated())
		_, err := f.store.Get(storage.KeyUser)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{loginResponse: validLoginResponse()})
		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)

		f.manager.InitializeAuth()
		f.manager.InitializeAuth()

		require.True(t, f.manager.IsAuthenticated())
	})
}

func TestChangePassword(t *testing.T) {
	loginWithFlag := func() *api.LoginResponse {
		response := validLoginResponse()
		response.User.RequiresPasswordChange = utils.Ptr(true)
		return response
	}

	t.Run("success clears the flag and keeps the token", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{
			loginResponse: loginWithFlag(),
			changeResponse: &api.ChangePasswordResponse{
				Message: "Password changed successfully",
				User:    api.User{ID: testUserID, Username: testUsername, Role: "admin"},
			},
		})
		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)
		require.True(t, f.manager.RequiresPasswordChange())

		identity, err := f.manager.ChangePassword(context.Background(), testPassword, "newPassword1", "newPassword1")
		require.NoError(t, err)
		require.False(t, identity.RequiresPasswordChange)
		require.False(t, f.manager.RequiresPasswordChange())

		// The credential and its deadline are untouched.
		require.Equal(t, testToken, f.manager.Token())
		storedToken, err := f.store.Get(storage.KeyToken)
		require.NoError(t, err)
		require.Equal(t, testToken, storedToken)

		storedUser, err := f.store.Get(storage.KeyUser)
		require.NoError(t, err)
		require.NotContains(t, storedUser, "requiresPasswordChange")
	})

	t.Run("server rejection surfaces the reason verbatim", func(t *testing.T) {
		f := newFixture(t, &fakeAuthAPI{
			loginResponse: loginWithFlag(),
			changeErr:     &api.Error{StatusCode: 400, Message: "New password and confirmation do not match"},
		})
		_, err := f.manager.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)

		_, err = f.manager.ChangePassword(context.Background(), testPassword, "a", "b")
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "New password and confirmation do not match", apiErr.Message)

		// Session untouched, flag still set.
		require.True(t, f.manager.IsAuthenticated())
		require.True(t, f.manager.RequiresPasswordChange())
	})
}

func TestRequiresPasswordChange(t *testing.T) {
	f := newFixture(t, &fakeAuthAPI{})
	require.False(t, f.manager.RequiresPasswordChange())
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, &fakeAuthAPI{loginResponse: validLoginResponse()})
	updates := f.manager.Subscribe()

	_, err := f.manager.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	// Credential and identity always arrive in the same snapshot.
	snapshot := <-updates
	require.Equal(t, testToken, snapshot.Token)
	require.NotNil(t, snapshot.Identity)
	require.Equal(t, testUsername, snapshot.Identity.Username)

	f.manager.Logout()
	snapshot = <-updates
	require.Empty(t, snapshot.Token)
	require.Nil(t, snapshot.Identity)
}
