package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/middleware"
	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/service"
)

// WardrobeService defines the clothing operations required by the ClothesHandler.
type WardrobeService interface {
	List(ctx context.Context, userID int64) ([]models.ClothingItem, error)
	Get(ctx context.Context, userID, id int64) (models.ClothingItem, error)
	Create(ctx context.Context, userID int64, f models.ClothingFields) (models.ClothingItem, error)
	Update(ctx context.Context, userID, id int64, f models.ClothingFields) (models.ClothingItem, error)
	Delete(ctx context.Context, userID, id int64) error
}

// ClothesHandler serves the caller's clothing items under /clothes.
type ClothesHandler struct {
	WardrobeService WardrobeService
	Logger          *zap.Logger
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeFields(w http.ResponseWriter, r *http.Request) (models.ClothingFields, bool) {
	var f models.ClothingFields
	if err := render.DecodeJSON(r.Body, &f); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return f, false
	}
	if f.Name == "" || f.Type == "" {
		http.Error(w, "name and type are required", http.StatusBadRequest)
		return f, false
	}
	return f, true
}

// fail answers a service error, hiding internal details.
func (h *ClothesHandler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.Logger.Error(op+" failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// List handles GET /clothes.
func (h *ClothesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.WardrobeService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "list clothes", err)
		return
	}
	render.JSON(w, r, items)
}

// Get handles GET /clothes/{id}.
func (h *ClothesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	it, err := h.WardrobeService.Get(r.Context(), middleware.GetUserIDFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, "get clothing item", err)
		return
	}
	render.JSON(w, r, it)
}

// Create handles POST /clothes. Any id in the body is ignored.
func (h *ClothesHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	it, err := h.WardrobeService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), f)
	if err != nil {
		h.fail(w, "create clothing item", err)
		return
	}
	render.JSON(w, r, it)
}

// Update handles PUT /clothes/{id}.
func (h *ClothesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	it, err := h.WardrobeService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, f)
	if err != nil {
		h.fail(w, "update clothing item", err)
		return
	}
	render.JSON(w, r, it)
}

// Delete handles DELETE /clothes/{id}.
func (h *ClothesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	if err := h.WardrobeService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), id); err != nil {
		h.fail(w, "delete clothing item", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
