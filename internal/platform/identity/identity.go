// Package identity resolves the reader the current process acts for.
//
// The user is resolved once at startup and handed to every component that
// needs it; there is no process-wide current-user holder.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// User identifies the reader whose engagement and progress are recorded.
type User struct {
	ID    string
	Email string
}

var ErrMissingUser = errors.New("identity: no user configured")

// Resolve prefers a backend-issued access token (HS256, verified with
// secret) and falls back to a plain configured user id.
func Resolve(userID, accessToken, secret string) (User, error) {
	if strings.TrimSpace(accessToken) != "" {
		return FromToken(accessToken, secret)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrMissingUser
	}
	return User{ID: userID}, nil
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// FromToken verifies token and reads the user from its subject claim.
func FromToken(token, secret string) (User, error) {
	if secret == "" {
		return User{}, fmt.Errorf("identity: jwt secret is required to verify access token")
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("identity: invalid access token: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return User{}, fmt.Errorf("identity: access token has no subject")
	}
	return User{ID: c.Subject, Email: c.Email}, nil
}

type ctxKey struct{}

// WithUser stores u on ctx for request-scoped handlers.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok && u.ID != ""
}
