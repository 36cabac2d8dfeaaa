package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fnderrors "git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

func newTestMiddleware(t *testing.T) (*Middleware, string) {
	t.Helper()
	svc := newTestService(t, "s3cret")
	token, _, err := svc.Login(t.Context(), "alice", "s3cret")
	require.NoError(t, err)

	adapter := fnderrors.NewHTTPErrorAdapter(slog.Default())
	return NewMiddleware(svc, adapter, "", ""), token
}

func echoUserHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(identity.Username))
	})
}

func TestRequire_ValidCookie_PassesIdentity(t *testing.T) {
	mw, token := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/submit", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
	rec := httptest.NewRecorder()

	mw.Require(echoUserHandler(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", rec.Body.String())
}

func TestRequire_BearerHeader_Accepted(t *testing.T) {
	mw, token := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.Require(echoUserHandler(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequire_AnonymousBrowser_RedirectsToLogin(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/submit?category=guides", nil)
	rec := httptest.NewRecorder()

	mw.Require(echoUserHandler(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login?next=%2Fsubmit%3Fcategory%3Dguides", rec.Header().Get("Location"))
}

func TestRequire_AnonymousAPI_Gets401JSON(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	rec := httptest.NewRecorder()

	mw.Require(echoUserHandler(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestOptional_AnonymousPassesThrough(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	var sawIdentity bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw.Optional(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, sawIdentity)
}

func TestRequire_ExpiredSession_Rejected(t *testing.T) {
	registry, err := LoadRegistry(writeUsersFile(t, "s3cret"))
	require.NoError(t, err)
	sessions, err := NewSQLiteSessionStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	// Session TTL in the past: token signs fine but the row is dead on read.
	svc := NewService(registry, sessions, testSecret, time.Nanosecond, slog.Default())
	token, _, err := svc.Login(t.Context(), "alice", "s3cret")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	adapter := fnderrors.NewHTTPErrorAdapter(slog.Default())
	mw := NewMiddleware(svc, adapter, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.Require(echoUserHandler(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
