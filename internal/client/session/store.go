// Package session holds the credentials of the signed-in user and reacts to
// their transitions. Nothing here touches the network.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/models"
)

// ErrAnonymous is returned by operations that need credentials when none are set.
var ErrAnonymous = errors.New("not signed in")

// Listener is called after every Set (authenticated=true) and Clear
// (authenticated=false). Listeners run synchronously, outside the store lock.
type Listener func(ctx context.Context, authenticated bool)

// Store is the credential store. The zero value is not usable; call NewStore.
type Store struct {
	mu        sync.Mutex
	creds     *models.Credentials
	sessionID string
	listeners []Listener

	notifier notify.Notifier
	log      *zap.Logger
}

// NewStore returns an anonymous store.
func NewStore(notifier notify.Notifier, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{notifier: notifier, log: log.Named("session")}
}

// OnChange registers fn for credential transitions.
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Set makes creds the current session and notifies listeners.
func (s *Store) Set(ctx context.Context, creds models.Credentials) {
	s.mu.Lock()
	c := creds
	s.creds = &c
	s.sessionID = uuid.NewString()
	id := s.sessionID
	listeners := s.snapshot()
	s.mu.Unlock()

	s.log.Info("signed in", zap.String("user", creds.Username), zap.String("session", id))
	for _, fn := range listeners {
		fn(ctx, true)
	}
}

// Clear drops the credentials. Listeners run before Clear returns, also when
// the store was already anonymous.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	was := s.creds
	id := s.sessionID
	s.creds = nil
	s.sessionID = ""
	listeners := s.snapshot()
	s.mu.Unlock()

	if was != nil {
		s.log.Info("signed out", zap.String("user", was.Username), zap.String("session", id))
	}
	for _, fn := range listeners {
		fn(ctx, false)
	}
}

// Expire ends the session after the server refused the credentials.
func (s *Store) Expire(ctx context.Context) {
	s.log.Warn("session expired", zap.String("session", s.SessionID()))
	s.Clear(ctx)
	s.notifier.Notify(notify.Notice{
		Kind:    notify.SessionExpired,
		Message: "your session has expired, please log in again",
	})
}

// Credentials returns a copy of the current credentials.
func (s *Store) Credentials() (models.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return models.Credentials{}, false
	}
	return *s.creds, true
}

// Authenticated reports whether credentials are set.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds != nil
}

// SessionID is a random id for log correlation. Empty when anonymous.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Store) snapshot() []Listener {
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}
