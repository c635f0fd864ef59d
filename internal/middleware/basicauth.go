// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/models"
)

type ctxKey string

const (
	userKey     ctxKey = "user"
	userSlotKey ctxKey = "user-slot"
)

// Authenticator checks a username/password pair. It returns an error wrapping
// ErrBadCredentials when the pair does not match an account.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, username, password string) (*models.User, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return f(ctx, username, password)
}

// ErrBadCredentials lets an Authenticator tell a wrong login apart from an
// internal failure.
var ErrBadCredentials = errors.New("bad credentials")

// BasicAuth is a middleware that enforces HTTP Basic authentication.
//
// Every request must carry an Authorization header with a valid
// username/password pair. On success the authenticated user is stored in the
// request context and can be read with UserFromContext.
func BasicAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			u, err := auth.Authenticate(r.Context(), username, password)
			if errors.Is(err, ErrBadCredentials) {
				unauthorized(w)
				return
			}
			if err != nil {
				logger.Error("authentication failed", zap.String("user", username), zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if slot, ok := r.Context().Value(userSlotKey).(*string); ok {
				*slot = u.Username
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="wardrobix", charset="UTF-8"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// withUserSlot lets an outer middleware learn who authenticated.
func withUserSlot(ctx context.Context, slot *string) context.Context {
	return context.WithValue(ctx, userSlotKey, slot)
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// GetUserIDFromContext returns the authenticated user's id, or 0 if not found.
func GetUserIDFromContext(ctx context.Context) int64 {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return 0
}
