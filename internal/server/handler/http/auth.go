// Package http provides the HTTP handlers and router of the wardrobe backend.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/service"
)

// AuthService defines the interface for account operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns its id.
	Register(ctx context.Context, creds models.Credentials) (int64, error)
	// Authenticate checks a username/password pair.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// AuthHandler handles HTTP requests for account registration.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	Logger      *zap.Logger
}

// Register handles POST /register.
// It expects a JSON body with non-blank "username" and "password" fields
// and answers 201 on success and 409 when the username is taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	_, err := h.AuthService.Register(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrUserExists):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.Logger.Error("register failed", zap.String("user", req.Username), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("account created", zap.String("user", req.Username))
	render.Status(r, http.StatusCreated)
	render.PlainText(w, r, "Account created!")
}
