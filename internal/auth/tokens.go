package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

// Claim names used in session tokens.
const (
	claimSession = "sid"
	claimSubject = "sub"
)

// signToken creates a signed HS256 JWT binding a session id to its
// subject. The token's exp mirrors the session row's expiry; the row
// remains authoritative (deleting it revokes the token early).
func signToken(secret []byte, sess *Session) (string, error) {
	claims := jwt.MapClaims{
		claimSession: sess.ID,
		claimSubject: sess.Subject,
		"iat":        time.Now().Unix(),
		"exp":        sess.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "sign session token").Build()
	}
	return signed, nil
}

// parseToken verifies signature and expiry and extracts the session id
// and subject. Any defect (bad signature, wrong algorithm, expired,
// missing claims) is an auth-class error.
func parseToken(secret []byte, tokenString string) (sessionID, subject string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.WrapError(err, errors.CategoryAuth, "invalid session token").Build()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.AuthError("invalid session token claims").Build()
	}
	sessionID, _ = claims[claimSession].(string)
	subject, _ = claims[claimSubject].(string)
	if sessionID == "" || subject == "" {
		return "", "", errors.AuthError("session token missing claims").Build()
	}
	return sessionID, subject, nil
}
