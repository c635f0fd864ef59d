// Package auth signs the user in and out. A session is nothing more than the
// username/password pair: every authenticated call carries it as an HTTP
// Basic token, and login is a probe that the server accepts the pair.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/api"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/client/session"
	"github.com/atinyakov/wardrobix/internal/models"
)

var (
	// ErrInvalidCredentials means the server answered the login probe with 401.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLoginFailed means the login probe did not get a usable answer.
	ErrLoginFailed = errors.New("login failed")
	// ErrRegistrationUnavailable means the registration request never reached a verdict.
	ErrRegistrationUnavailable = errors.New("registration unavailable")
	// ErrInvalidUsername means the username cannot be carried in a Basic token.
	ErrInvalidUsername = errors.New("username cannot contain ':'")
)

// Backend is the part of the API client the gateway needs.
type Backend interface {
	ListClothes(ctx context.Context, authz string) ([]models.ClothingItem, error)
	Register(ctx context.Context, creds models.Credentials) error
}

// Gateway performs login, registration and logout against one backend.
type Gateway struct {
	backend  Backend
	store    *session.Store
	notifier notify.Notifier
	log      *zap.Logger
}

// NewGateway builds a Gateway.
func NewGateway(backend Backend, store *session.Store, notifier notify.Notifier, log *zap.Logger) *Gateway {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{backend: backend, store: store, notifier: notifier, log: log.Named("auth")}
}

// BasicToken encodes creds as base64("username:password").
func BasicToken(creds models.Credentials) string {
	return base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password))
}

// Header returns the Authorization header value for creds.
func Header(creds models.Credentials) string {
	return "Basic " + BasicToken(creds)
}

// Login probes the collection endpoint with the pair. Only a 2xx answer
// stores the credentials.
func (g *Gateway) Login(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: username, Password: password}

	_, err := g.backend.ListClothes(ctx, Header(creds))
	switch {
	case err == nil:
		g.store.Set(ctx, creds)
		return nil
	case errors.Is(err, api.ErrUnauthorized):
		g.log.Info("login rejected", zap.String("user", username))
		g.notifier.Notify(notify.Notice{Kind: notify.InvalidCredentials, Message: "invalid username or password"})
		return ErrInvalidCredentials
	default:
		g.log.Warn("login probe failed", zap.String("user", username), zap.Error(err))
		g.notifier.Notify(notify.Notice{Kind: notify.LoginFailed, Message: "login failed, please try again"})
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
}

// Register creates an account. It reports false without an error when the
// server rejected the request, typically because the username is taken.
// A username with a colon is refused locally with ErrInvalidUsername.
// The session is never touched.
func (g *Gateway) Register(ctx context.Context, username, password string) (bool, error) {
	if strings.Contains(username, ":") {
		return false, ErrInvalidUsername
	}
	err := g.backend.Register(ctx, models.Credentials{Username: username, Password: password})
	switch {
	case err == nil:
		g.log.Info("registered", zap.String("user", username))
		return true, nil
	case api.IsRejected(err):
		g.log.Info("registration rejected", zap.String("user", username), zap.Int("status", api.StatusCode(err)))
		return false, nil
	default:
		g.log.Warn("registration failed", zap.String("user", username), zap.Error(err))
		return false, fmt.Errorf("%w: %w", ErrRegistrationUnavailable, err)
	}
}

// Logout ends the session.
func (g *Gateway) Logout(ctx context.Context) {
	g.store.Clear(ctx)
}
