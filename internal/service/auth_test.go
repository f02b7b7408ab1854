package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/inkpost/inkpost/internal/domain/auth"
	authmocks "github.com/inkpost/inkpost/internal/mocks/auth"
	repomocks "github.com/inkpost/inkpost/internal/mocks/repo"
	"github.com/inkpost/inkpost/internal/ports"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	saveFunc   func(context.Context, domainauth.Session) error
	getFunc    func(context.Context, string) (domainauth.Session, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, sess)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestAuthService() (*AuthService, *authmocks.MockAuthProvider, *authmocks.MemorySessionStore, *repomocks.MemoryUserRepo) {
	provider := authmocks.NewMockAuthProvider()
	sessions := authmocks.NewMemorySessionStore()
	users := repomocks.NewMemoryUserRepo()
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Users:    users,
	})
	return svc, provider, sessions, users
}

func TestNewAuthService_DefaultTTL(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	assert.Equal(t, 24*time.Hour, svc.sessionTTL)
}

func TestAuthService_BeginLogin_Success(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	result, err := svc.BeginLogin(ctx, "http://localhost:8080/auth/callback")

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)
}

func TestAuthService_BeginLogin_EmptyRedirectURL(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	result, err := svc.BeginLogin(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestAuthService_BeginLogin_ProviderError(t *testing.T) {
	svc, provider, _, _ := newTestAuthService()
	provider.BeginFunc = func(context.Context, ports.BeginInput) (string, string, string, error) {
		return "", "", "", errors.New("idp unavailable")
	}

	_, err := svc.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin auth flow")
}

func TestAuthService_CompleteLogin_CreatesUserAndSession(t *testing.T) {
	svc, _, sessions, users := newTestAuthService()
	ctx := context.Background()

	result, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "code", State: "s", Nonce: "n"})

	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "mock-subject-1", result.User.ExternalID)
	assert.Equal(t, "mock.user@example.com", result.User.Email)
	assert.Equal(t, "Mock User", result.User.Name)
	require.NotNil(t, result.User.AvatarURL)
	assert.Equal(t, "https://mock-idp/avatar.png", *result.User.AvatarURL)

	assert.NotEmpty(t, result.Session.ID)
	assert.Equal(t, result.User.ID, result.Session.UserID)
	assert.True(t, result.Session.ExpiresAt.After(time.Now()))

	// Session was persisted
	stored, err := sessions.Get(ctx, result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, stored.UserID)

	assert.Equal(t, 1, users.Len())
}

func TestAuthService_CompleteLogin_ReturningUserIsNotDuplicated(t *testing.T) {
	svc, _, _, users := newTestAuthService()
	ctx := context.Background()

	first, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "code", State: "s1", Nonce: "n1"})
	require.NoError(t, err)

	second, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "code", State: "s2", Nonce: "n2"})
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, 1, users.Len())
}

func TestAuthService_CompleteLogin_ConcurrentSameIdentity(t *testing.T) {
	svc, _, _, users := newTestAuthService()
	ctx := context.Background()

	const n = 8
	results := make([]*CompleteLoginResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CompleteLogin(ctx, CompleteLoginInput{Code: "code", State: "s", Nonce: "n"})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	// All logins resolve to the same user record
	for i := 1; i < n; i++ {
		assert.Equal(t, results[0].User.ID, results[i].User.ID)
	}
	assert.Equal(t, 1, users.Len())
}

func TestAuthService_CompleteLogin_ValidationErrors(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name   string
		input  CompleteLoginInput
		errMsg string
	}{
		{"missing code", CompleteLoginInput{State: "s", Nonce: "n"}, "authorization code is required"},
		{"missing state", CompleteLoginInput{Code: "c", Nonce: "n"}, "state parameter is required"},
		{"missing nonce", CompleteLoginInput{Code: "c", State: "s"}, "nonce parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteLogin(ctx, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAuthService_CompleteLogin_ExchangeError(t *testing.T) {
	svc, provider, _, _ := newTestAuthService()
	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("access denied")
	}

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange authorization code")
}

func TestAuthService_CompleteLogin_UserRepoError(t *testing.T) {
	svc, _, _, users := newTestAuthService()
	users.FindOrCreateErr = errors.New("db down")

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find or create user")
}

func TestAuthService_CompleteLogin_SaveError(t *testing.T) {
	provider := authmocks.NewMockAuthProvider()
	users := repomocks.NewMemoryUserRepo()
	store := &mockSessionStore{
		saveFunc: func(context.Context, domainauth.Session) error {
			return errors.New("redis down")
		},
	}
	svc := NewAuthService(AuthServiceOptions{Provider: provider, Sessions: store, Users: users})

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
}

func TestAuthService_CompleteLogin_TTLFallback(t *testing.T) {
	provider := authmocks.NewMockAuthProvider()
	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		// Identity without a usable expiry
		return domainauth.Identity{Subject: "sub-1", Email: "a@example.com", Name: "A"}, nil
	}
	svc := NewAuthService(AuthServiceOptions{
		Provider:   provider,
		Sessions:   authmocks.NewMemorySessionStore(),
		Users:      repomocks.NewMemoryUserRepo(),
		SessionTTL: 2 * time.Hour,
	})

	result, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), result.Session.ExpiresAt, time.Minute)
}

func TestAuthService_GetSession_Success(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService()
	ctx := context.Background()

	sess := domainauth.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, sess))

	got, err := svc.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestAuthService_GetSession_EmptyID(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, err := svc.GetSession(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID is required")
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService()
	ctx := context.Background()

	sess := domainauth.Session{ID: "sess-old", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, sessions.Save(ctx, sess))

	_, err := svc.GetSession(ctx, "sess-old")
	require.ErrorIs(t, err, ErrSessionExpired)

	// Expired session was evicted
	_, err = sessions.Get(ctx, "sess-old")
	assert.Equal(t, authmocks.ErrNotFound, err)
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService()
	ctx := context.Background()

	result, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)

	// Unknown session
	_, err = svc.CurrentUser(ctx, "missing")
	require.Error(t, err)

	// Session pointing at a deleted user surfaces an error
	orphan := domainauth.Session{ID: "orphan", UserID: "gone", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, orphan))
	_, err = svc.CurrentUser(ctx, "orphan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve session user")
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService()
	ctx := context.Background()

	sess := domainauth.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, sess))

	require.NoError(t, svc.Logout(ctx, "sess-1"))
	_, err := sessions.Get(ctx, "sess-1")
	assert.Equal(t, authmocks.ErrNotFound, err)

	// Empty id is a no-op
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestAuthService_Logout_DeleteError(t *testing.T) {
	store := &mockSessionStore{
		deleteFunc: func(context.Context, string) error { return errors.New("redis down") },
	}
	svc := NewAuthService(AuthServiceOptions{
		Provider: authmocks.NewMockAuthProvider(),
		Sessions: store,
		Users:    repomocks.NewMemoryUserRepo(),
	})

	err := svc.Logout(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete session")
}
