package auth

import (
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

// UserSource resolves usernames to accounts
type UserSource interface {
	UserByUsername(username string) (*store.User, error)
}

// Verifier validates bearer credentials and resolves them to users.
// It is the identity-verification capability the session handlers and
// the REST middleware depend on.
type Verifier struct {
	secret string
	users  UserSource
}

// NewVerifier creates a Verifier backed by the given user source
func NewVerifier(secret string, users UserSource) *Verifier {
	return &Verifier{secret: secret, users: users}
}

// VerifyToken checks the token signature and expiry and resolves the
// subject to a stored user. Any failure yields ErrInvalidToken.
func (v *Verifier) VerifyToken(tokenString string) (*store.User, error) {
	username, err := ParseAccessToken(v.secret, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := v.users.UserByUsername(username)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
