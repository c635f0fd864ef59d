// Package outfit requests outfit recommendations and keeps the last result.
package outfit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/auth"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/client/session"
	"github.com/atinyakov/wardrobix/internal/models"
)

var (
	// ErrMissingParams is returned when formality or city is blank.
	ErrMissingParams = errors.New("formality and city are required")
	// ErrStale is returned when a response arrives after a newer request or a
	// reset. The result is left untouched.
	ErrStale = errors.New("outfit response superseded")
)

// Params are the generation parameters.
type Params struct {
	Formality string
	City      string
}

func (p Params) validate() error {
	if strings.TrimSpace(p.Formality) == "" || strings.TrimSpace(p.City) == "" {
		return ErrMissingParams
	}
	return nil
}

// Backend is the part of the API client the requester needs.
type Backend interface {
	Recommend(ctx context.Context, authz, formality, city string) (models.Outfit, error)
}

// Interceptor turns a 401 into a session teardown and reports whether it did.
type Interceptor interface {
	Unauthorized(ctx context.Context, err error) bool
}

// Requester is the recommendation requester.
type Requester struct {
	backend  Backend
	store    *session.Store
	guard    Interceptor
	notifier notify.Notifier
	log      *zap.Logger

	mu      sync.Mutex
	params  Params
	result  models.Outfit
	issued  uint64
	applied uint64
	epoch   uint64
}

// New builds a Requester. guard must not be nil.
func New(backend Backend, store *session.Store, guard Interceptor, notifier notify.Notifier, log *zap.Logger) *Requester {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Requester{
		backend:  backend,
		store:    store,
		guard:    guard,
		notifier: notifier,
		log:      log.Named("outfit"),
	}
}

// SetParams stores p for the next Generate.
func (r *Requester) SetParams(p Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = p
}

// Params returns the stored parameters.
func (r *Requester) Params() Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

// Result returns the last generated outfit, nil when there is none.
func (r *Requester) Result() models.Outfit {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return nil
	}
	out := make(models.Outfit, len(r.result))
	copy(out, r.result)
	return out
}

// Reset clears the result and parameters. In-flight requests will not apply.
func (r *Requester) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = Params{}
	r.result = nil
	r.epoch++
}

// GenerateWith stores formality and city, then generates.
func (r *Requester) GenerateWith(ctx context.Context, formality, city string) (models.Outfit, error) {
	r.SetParams(Params{Formality: formality, City: city})
	return r.Generate(ctx)
}

// Generate issues one recommendation request with the stored parameters. On
// success the result is replaced wholesale; on failure it is left as is.
func (r *Requester) Generate(ctx context.Context) (models.Outfit, error) {
	r.mu.Lock()
	p := r.params
	r.mu.Unlock()

	if err := p.validate(); err != nil {
		r.notifier.Notify(notify.Notice{Kind: notify.ValidationFailed, Message: "please provide both formality and city"})
		return nil, err
	}
	creds, ok := r.store.Credentials()
	if !ok {
		return nil, session.ErrAnonymous
	}

	r.mu.Lock()
	r.issued++
	seq := r.issued
	epoch := r.epoch
	r.mu.Unlock()

	formality, city := strings.TrimSpace(p.Formality), strings.TrimSpace(p.City)
	outfit, err := r.backend.Recommend(ctx, auth.Header(creds), formality, city)
	if err != nil {
		r.notifier.Notify(notify.Notice{Kind: notify.GenerateFailed, Message: "could not generate an outfit"})
		if !r.guard.Unauthorized(ctx, err) {
			r.log.Warn("generate failed",
				zap.String("formality", formality),
				zap.String("city", city),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("generate: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch != r.epoch || seq <= r.applied {
		r.log.Debug("stale outfit dropped", zap.Uint64("seq", seq))
		return nil, ErrStale
	}
	r.result = outfit
	r.applied = seq
	r.log.Info("outfit generated", zap.Int("entries", len(outfit)), zap.Int("items", len(outfit.Items())))
	return outfit, nil
}
