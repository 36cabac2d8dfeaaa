package auth

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "docserver_session"

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	Username    string
	DisplayName string
	SessionID   string
}

// Verifier turns a bearer token into an identity. The HTTP layer
// depends on this narrow interface, not on the full Service.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Service combines the user registry, the session store and token
// signing into the login/logout/verify surface.
type Service struct {
	registry *Registry
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService wires the auth service. The secret must be non-empty;
// config validation guarantees that before the daemon gets here.
func NewService(registry *Registry, sessions SessionStore, secret string, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// Login verifies credentials, creates a session, and returns the signed
// session token together with its expiry for the cookie.
func (s *Service) Login(ctx context.Context, username, password string) (token string, expires time.Time, err error) {
	user, err := s.registry.Verify(username, password)
	if err != nil {
		s.logger.Warn("Login rejected", logfields.User(username))
		return "", time.Time{}, err
	}

	sess, err := s.sessions.Create(ctx, user.Username, s.ttl)
	if err != nil {
		return "", time.Time{}, errors.WrapError(err, errors.CategoryStore, "create session").
			WithContext("user", user.Username).
			Build()
	}

	token, err = signToken(s.secret, sess)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return "", time.Time{}, err
	}

	s.logger.Info("User logged in",
		logfields.User(user.Username),
		logfields.SessionID(sess.ID))
	return token, sess.ExpiresAt, nil
}

// Verify checks the token signature, then the backing session row, so a
// logged-out session is rejected even while its JWT is unexpired.
func (s *Service) Verify(ctx context.Context, token string) (*Identity, error) {
	sessionID, subject, err := parseToken(s.secret, token)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "load session").Build()
	}
	if sess == nil || sess.Subject != subject {
		return nil, errors.AuthError("session expired or revoked").Build()
	}

	identity := &Identity{Username: sess.Subject, SessionID: sess.ID}
	if u, ok := s.registry.users[sess.Subject]; ok {
		identity.DisplayName = u.DisplayName
	}
	return identity, nil
}

// Logout revokes the token's session. An already-invalid token is a
// no-op; logout must always succeed from the user's point of view.
func (s *Service) Logout(ctx context.Context, token string) error {
	sessionID, _, err := parseToken(s.secret, token)
	if err != nil {
		return nil //nolint:nilerr // invalid token means nothing to revoke
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return errors.WrapError(err, errors.CategoryStore, "delete session").Build()
	}
	s.logger.Info("User logged out", logfields.SessionID(sessionID))
	return nil
}
