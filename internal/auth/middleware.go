package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/observability"
)

type identityKeyType string

const identityKey identityKeyType = "auth-identity"

// IdentityFrom returns the authenticated identity attached to ctx, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// withIdentity attaches an identity to the context for downstream handlers.
func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Middleware gates routes behind a valid session. Page requests without
// one are redirected to the login form with a next parameter; API
// requests get a 401 JSON envelope.
type Middleware struct {
	verifier   Verifier
	adapter    *errors.HTTPErrorAdapter
	cookieName string
	loginPath  string
}

// NewMiddleware builds the session gate. cookieName defaults to
// DefaultCookieName, loginPath to /login.
func NewMiddleware(verifier Verifier, adapter *errors.HTTPErrorAdapter, cookieName, loginPath string) *Middleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Middleware{verifier: verifier, adapter: adapter, cookieName: cookieName, loginPath: loginPath}
}

// Require wraps next so it only runs for authenticated requests. The
// identity lands in the request context and in the observability log
// context.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.authenticate(r)
		if err != nil {
			m.reject(w, r, err)
			return
		}
		ctx := withIdentity(r.Context(), identity)
		ctx = observability.WithUser(ctx, identity.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the identity when a valid session is present but
// lets anonymous requests through. Pages use it to switch nav state.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := m.authenticate(r); err == nil {
			ctx := withIdentity(r.Context(), identity)
			ctx = observability.WithUser(ctx, identity.Username)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate pulls the session token from cookie or bearer header and
// verifies it.
func (m *Middleware) authenticate(r *http.Request) (*Identity, error) {
	token := ""
	if c, err := r.Cookie(m.cookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" {
		return nil, errors.AuthError("authentication required").Build()
	}
	return m.verifier.Verify(r.Context(), token)
}

// reject answers an unauthenticated request: JSON for the API, a login
// redirect for everything else.
func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		m.adapter.WriteErrorResponse(w, r, err)
		return
	}
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, m.loginPath+"?next="+url.QueryEscape(next), http.StatusSeeOther)
}

// wantsJSON reports whether the client is an API consumer rather than a
// browser navigation.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
