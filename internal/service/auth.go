// Package service provides the backend business logic for accounts, the
// wardrobe and outfit recommendations, delegating persistence to repository
// interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/repository"
)

var (
	// ErrInvalidInput is returned when a username or password is blank or the
	// username cannot be carried in a Basic token.
	ErrInvalidInput = errors.New("username and password cannot be empty")
	// ErrUserExists is returned when the username is already taken.
	ErrUserExists = errors.New("username is already taken")
	// ErrInvalidCredentials is returned when a login does not match a stored account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a user and returns its id.
	// A taken username is reported as repository.ErrConflict.
	CreateUser(ctx context.Context, username string, passwordHash []byte) (int64, error)
	// UserByUsername loads a user, or repository.ErrNotFound.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService implements registration and Basic credential checks.
type AuthService struct {
	repo AuthRepository
	cost int
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, creds models.Credentials) (int64, error) {
	if strings.TrimSpace(creds.Username) == "" || strings.TrimSpace(creds.Password) == "" {
		return 0, ErrInvalidInput
	}
	// Basic auth splits the token at the first colon.
	if strings.Contains(creds.Username, ":") {
		return 0, fmt.Errorf("%w: username cannot contain ':'", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.repo.CreateUser(ctx, creds.Username, hash)
	if errors.Is(err, repository.ErrConflict) {
		return 0, ErrUserExists
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Authenticate returns the account matching username and password.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.UserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
