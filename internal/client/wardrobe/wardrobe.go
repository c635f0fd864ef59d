// Package wardrobe keeps the local mirror of the user's clothing items and the
// draft form used to create or edit one. The server owns the collection: every
// successful mutation is followed by a full refetch that replaces the mirror.
package wardrobe

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/auth"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/client/session"
	"github.com/atinyakov/wardrobix/internal/models"
)

// Backend is the part of the API client the synchronizer needs.
type Backend interface {
	ListClothes(ctx context.Context, authz string) ([]models.ClothingItem, error)
	CreateClothing(ctx context.Context, authz string, fields models.ClothingFields) (models.ClothingItem, error)
	UpdateClothing(ctx context.Context, authz string, id int64, fields models.ClothingFields) (models.ClothingItem, error)
	DeleteClothing(ctx context.Context, authz string, id int64) error
}

// Interceptor turns a 401 into a session teardown and reports whether it did.
type Interceptor interface {
	Unauthorized(ctx context.Context, err error) bool
}

// Synchronizer is the collection synchronizer. All methods are safe for
// concurrent use; no lock is held while a request is in flight.
type Synchronizer struct {
	backend  Backend
	store    *session.Store
	guard    Interceptor
	notifier notify.Notifier
	log      *zap.Logger

	mu      sync.Mutex
	items   []models.ClothingItem
	draft   models.ClothingFields
	editing *int64
	// issued/applied order refetch responses; epoch changes on Reset so that
	// responses to requests issued before it are dropped.
	issued  uint64
	applied uint64
	epoch   uint64
}

// New builds a Synchronizer. guard must not be nil.
func New(backend Backend, store *session.Store, guard Interceptor, notifier notify.Notifier, log *zap.Logger) *Synchronizer {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		backend:  backend,
		store:    store,
		guard:    guard,
		notifier: notifier,
		log:      log.Named("wardrobe"),
	}
}

// Items returns a copy of the mirror in server order.
func (s *Synchronizer) Items() []models.ClothingItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ClothingItem, len(s.items))
	copy(out, s.items)
	return out
}

// Find looks id up in the mirror.
func (s *Synchronizer) Find(id int64) (models.ClothingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.ClothingItem{}, false
}

// Draft returns the form state.
func (s *Synchronizer) Draft() models.ClothingFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the form state. The edit target, if any, is kept.
func (s *Synchronizer) SetDraft(fields models.ClothingFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = fields
}

// Editing returns the id of the item being edited.
func (s *Synchronizer) Editing() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return 0, false
	}
	return *s.editing, true
}

// BeginEdit loads item into the draft and makes it the edit target. Later
// refetches do not touch the draft.
func (s *Synchronizer) BeginEdit(item models.ClothingItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := item.ID
	s.editing = &id
	s.draft = item.ClothingFields
}

// CancelEdit leaves edit mode and clears the draft.
func (s *Synchronizer) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
	s.draft = models.ClothingFields{}
}

// Reset drops all session state. Pending refetches will not apply.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.draft = models.ClothingFields{}
	s.editing = nil
	s.epoch++
}

// Submit sends the draft: a create in idle mode, an update of the edit target
// otherwise. On success the form is cleared and the mirror refetched.
func (s *Synchronizer) Submit(ctx context.Context) error {
	creds, ok := s.store.Credentials()
	if !ok {
		return session.ErrAnonymous
	}

	s.mu.Lock()
	draft := s.draft
	var target *int64
	if s.editing != nil {
		id := *s.editing
		target = &id
	}
	epoch := s.epoch
	s.mu.Unlock()

	var (
		saved models.ClothingItem
		err   error
	)
	if target == nil {
		saved, err = s.backend.CreateClothing(ctx, auth.Header(creds), draft)
		if err != nil {
			return s.fail(ctx, "create item", err)
		}
		s.log.Info("item created", zap.Int64("id", saved.ID))
	} else {
		saved, err = s.backend.UpdateClothing(ctx, auth.Header(creds), *target, draft)
		if err != nil {
			return s.fail(ctx, "update item", err)
		}
		s.log.Info("item updated", zap.Int64("id", saved.ID))
	}

	s.mu.Lock()
	if s.epoch == epoch {
		if target != nil && s.editing != nil && *s.editing == *target {
			s.editing = nil
		}
		if s.editing == nil {
			s.draft = models.ClothingFields{}
		}
	}
	s.mu.Unlock()

	return s.Refetch(ctx)
}

// Remove deletes item id. Deleting the edit target cancels the edit.
func (s *Synchronizer) Remove(ctx context.Context, id int64) error {
	creds, ok := s.store.Credentials()
	if !ok {
		return session.ErrAnonymous
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	if err := s.backend.DeleteClothing(ctx, auth.Header(creds), id); err != nil {
		return s.fail(ctx, "delete item", err)
	}
	s.log.Info("item deleted", zap.Int64("id", id))

	s.mu.Lock()
	if s.epoch == epoch && s.editing != nil && *s.editing == id {
		s.editing = nil
		s.draft = models.ClothingFields{}
	}
	s.mu.Unlock()

	return s.Refetch(ctx)
}

// Refetch replaces the mirror with the server's collection. A response is
// applied only if no newer one was applied and no reset happened meanwhile.
func (s *Synchronizer) Refetch(ctx context.Context) error {
	creds, ok := s.store.Credentials()
	if !ok {
		return session.ErrAnonymous
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	epoch := s.epoch
	s.mu.Unlock()

	items, err := s.backend.ListClothes(ctx, auth.Header(creds))
	if err != nil {
		return s.fail(ctx, "refetch", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || seq <= s.applied {
		s.log.Debug("stale refetch dropped", zap.Uint64("seq", seq), zap.Uint64("applied", s.applied))
		return nil
	}
	s.items = items
	s.applied = seq
	return nil
}

func (s *Synchronizer) fail(ctx context.Context, op string, err error) error {
	if s.guard.Unauthorized(ctx, err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Warn(op+" failed", zap.Error(err))
	s.notifier.Notify(notify.Notice{Kind: notify.RequestFailed, Message: fmt.Sprintf("%s failed: %v", op, err)})
	return fmt.Errorf("%s: %w", op, err)
}
