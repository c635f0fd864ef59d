package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/api"
)

// Resetter is a component holding per-session state.
type Resetter interface {
	Reset()
}

// Refetcher is a component that loads its state from the server on sign-in.
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// Controller ties session transitions to the components that depend on them:
// sign-in refetches, sign-out resets. It is also the single place where a 401
// turns into a teardown.
type Controller struct {
	store *Store
	log   *zap.Logger

	mu         sync.Mutex
	components []Resetter
}

// NewController subscribes to store.
func NewController(store *Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{store: store, log: log.Named("lifecycle")}
	store.OnChange(c.onChange)
	return c
}

// Manage registers components. Those that also implement Refetcher are
// refetched on every sign-in.
func (c *Controller) Manage(components ...Resetter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components = append(c.components, components...)
}

// Unauthorized reports whether err is a 401. If so and a session is active,
// the session is expired.
func (c *Controller) Unauthorized(ctx context.Context, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	if c.store.Authenticated() {
		c.store.Expire(ctx)
	}
	return true
}

func (c *Controller) onChange(ctx context.Context, authenticated bool) {
	c.mu.Lock()
	components := make([]Resetter, len(c.components))
	copy(components, c.components)
	c.mu.Unlock()

	// a sign-in over an existing session must not inherit its state
	for _, comp := range components {
		comp.Reset()
	}
	if !authenticated {
		return
	}

	for _, comp := range components {
		r, ok := comp.(Refetcher)
		if !ok {
			continue
		}
		if err := r.Refetch(ctx); err != nil {
			c.log.Warn("refetch after sign-in failed", zap.Error(err))
		}
	}
}
