package service

import (
	"context"
	"errors"

	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/repository"
)

// ErrNotFound is returned when an item does not exist or belongs to another user.
var ErrNotFound = errors.New("clothing item not found")

// ClothesRepository defines the persistence operations needed by the WardrobeService.
type ClothesRepository interface {
	// ListByUser returns every item of the user, ordered by id.
	ListByUser(ctx context.Context, userID int64) ([]models.ClothingItem, error)
	// GetByID fetches a single item, or repository.ErrNotFound.
	GetByID(ctx context.Context, userID, id int64) (models.ClothingItem, error)
	// Create stores a new item and returns it with its id.
	Create(ctx context.Context, userID int64, f models.ClothingFields) (models.ClothingItem, error)
	// Update replaces an item's fields, or returns repository.ErrNotFound.
	Update(ctx context.Context, userID, id int64, f models.ClothingFields) (models.ClothingItem, error)
	// Delete removes an item, or returns repository.ErrNotFound.
	Delete(ctx context.Context, userID, id int64) error
}

// WardrobeService implements per-user clothing CRUD.
type WardrobeService struct {
	repo ClothesRepository
}

// NewWardrobeService constructs a WardrobeService with the provided ClothesRepository.
func NewWardrobeService(repo ClothesRepository) *WardrobeService {
	return &WardrobeService{repo: repo}
}

// List returns all items owned by the user.
func (s *WardrobeService) List(ctx context.Context, userID int64) ([]models.ClothingItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one item owned by the user.
func (s *WardrobeService) Get(ctx context.Context, userID, id int64) (models.ClothingItem, error) {
	it, err := s.repo.GetByID(ctx, userID, id)
	return it, notFound(err)
}

// Create adds an item to the user's wardrobe.
func (s *WardrobeService) Create(ctx context.Context, userID int64, f models.ClothingFields) (models.ClothingItem, error) {
	return s.repo.Create(ctx, userID, f)
}

// Update replaces the fields of an item owned by the user.
func (s *WardrobeService) Update(ctx context.Context, userID, id int64, f models.ClothingFields) (models.ClothingItem, error) {
	it, err := s.repo.Update(ctx, userID, id, f)
	return it, notFound(err)
}

// Delete removes an item owned by the user.
func (s *WardrobeService) Delete(ctx context.Context, userID, id int64) error {
	return notFound(s.repo.Delete(ctx, userID, id))
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
