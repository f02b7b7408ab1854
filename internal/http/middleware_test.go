package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/inkpost/inkpost/internal/domain/auth"
	"github.com/inkpost/inkpost/internal/domain/model"
	"github.com/inkpost/inkpost/internal/service"
)

// authSvcStub implements AuthServiceInterface with overridable functions.
type authSvcStub struct {
	BeginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	CurrentUserFunc   func(ctx context.Context, sessionID string) (*model.User, error)
	LogoutFunc        func(ctx context.Context, sessionID string) error
}

func (s *authSvcStub) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if s.BeginLoginFunc != nil {
		return s.BeginLoginFunc(ctx, redirectURL)
	}
	return nil, errors.New("not implemented")
}

func (s *authSvcStub) CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
	if s.CompleteLoginFunc != nil {
		return s.CompleteLoginFunc(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func (s *authSvcStub) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if s.GetSessionFunc != nil {
		return s.GetSessionFunc(ctx, sessionID)
	}
	return nil, errors.New("no session")
}

func (s *authSvcStub) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if s.CurrentUserFunc != nil {
		return s.CurrentUserFunc(ctx, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (s *authSvcStub) Logout(ctx context.Context, sessionID string) error {
	if s.LogoutFunc != nil {
		return s.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func validSessionStub(sess domainauth.Session) *authSvcStub {
	return &authSvcStub{
		GetSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			if sessionID == sess.ID {
				return &sess, nil
			}
			return nil, errors.New("no session")
		},
	}
}

func TestRequireAuthBrowser_RedirectsBrowserToLogin(t *testing.T) {
	handler := RequireAuthBrowser(&authSvcStub{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/my-posts", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fmy-posts", rec.Header().Get("Location"))
}

func TestRequireAuthBrowser_APIRequestGets401(t *testing.T) {
	handler := RequireAuthBrowser(&authSvcStub{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/my-posts", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestRequireAuthBrowser_ValidSessionPassesThrough(t *testing.T) {
	sess := domainauth.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}

	var gotSession *domainauth.Session
	handler := RequireAuthBrowser(validSessionStub(sess))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := GetUserSessionFromContext(r.Context()); ok {
			gotSession = s
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/my-posts", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotSession)
	assert.Equal(t, "user-1", gotSession.UserID)
}

func TestRequireAuthBrowser_InvalidCookieRedirects(t *testing.T) {
	sess := domainauth.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	handler := RequireAuthBrowser(validSessionStub(sess))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/compose", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestOptionalAuth_NeverBlocks(t *testing.T) {
	handler := OptionalAuth(&authSvcStub{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetUserSessionFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecover_Returns500OnPanic(t *testing.T) {
	handler := Recover(slog.Default())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogging_PreservesStatus(t *testing.T) {
	handler := Logging(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestIsBrowserRequest(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		accept string
		want   bool
	}{
		{name: "html accept", path: "/posts", accept: "text/html", want: true},
		{name: "no accept header", path: "/posts", accept: "", want: true},
		{name: "json accept", path: "/posts", accept: "application/json", want: false},
		{name: "static asset", path: "/static/css/main.css", accept: "text/html", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			assert.Equal(t, tt.want, isBrowserRequest(req))
		})
	}
}
