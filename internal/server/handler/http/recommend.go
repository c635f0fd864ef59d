package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/middleware"
	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/service"
	"github.com/atinyakov/wardrobix/internal/weather"
)

// RecommendService builds an outfit for an occasion and a city.
type RecommendService interface {
	Recommend(ctx context.Context, userID int64, formality, city string) (models.Outfit, error)
}

// RecommendHandler serves GET /recommend/{formality}/{city}.
type RecommendHandler struct {
	RecommendService RecommendService
	Logger           *zap.Logger
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		v = u
	}
	return strings.TrimSpace(v)
}

// Recommend answers with a JSON array of items. A wardrobe missing a required
// garment type yields 422, an unknown city 400 and a weather outage 502.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	formality := pathParam(r, "formality")
	city := pathParam(r, "city")
	if formality == "" || city == "" {
		http.Error(w, "formality and city are required", http.StatusBadRequest)
		return
	}

	outfit, err := h.RecommendService.Recommend(r.Context(), middleware.GetUserIDFromContext(r.Context()), formality, city)
	switch {
	case errors.Is(err, service.ErrIncompleteWardrobe):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, weather.ErrUnknownCity):
		http.Error(w, "unknown city", http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrWeatherUnavailable):
		h.Logger.Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
		http.Error(w, "weather service unavailable", http.StatusBadGateway)
		return
	case err != nil:
		h.Logger.Error("recommend failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if outfit == nil {
		outfit = models.Outfit{}
	}
	render.JSON(w, r, outfit)
}
