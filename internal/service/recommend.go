package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/service/scoring"
	"github.com/atinyakov/wardrobix/internal/weather"
)

var (
	// ErrIncompleteWardrobe is returned when the wardrobe lacks a required garment type.
	ErrIncompleteWardrobe = errors.New("incomplete wardrobe")
	// ErrWeatherUnavailable is returned when the weather provider cannot answer.
	ErrWeatherUnavailable = errors.New("weather unavailable")
)

// Garment types every outfit must contain.
var requiredTypes = []string{models.TypeTop, models.TypeBottom, models.TypeFootwear}

// WardrobeLister returns a user's full wardrobe.
type WardrobeLister interface {
	List(ctx context.Context, userID int64) ([]models.ClothingItem, error)
}

// WeatherProvider reports current conditions for a city.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (weather.Report, error)
}

// Outfitter picks one item per garment slot.
type Outfitter interface {
	Outfit(options map[string][]models.ClothingItem, cond scoring.Conditions) models.Outfit
}

// RecommendService builds weather-aware outfits from a user's wardrobe.
type RecommendService struct {
	wardrobe WardrobeLister
	weather  WeatherProvider
	engine   Outfitter
}

// NewRecommendService wires the wardrobe, the weather provider and the scoring engine.
func NewRecommendService(wardrobe WardrobeLister, weather WeatherProvider, engine Outfitter) *RecommendService {
	return &RecommendService{wardrobe: wardrobe, weather: weather, engine: engine}
}

// Recommend returns an outfit for the occasion and the current weather in city.
//
// Items whose formality matches, or is "any", are preferred. A required type
// with no matching item falls back to every item of that type.
func (s *RecommendService) Recommend(ctx context.Context, userID int64, formality, city string) (models.Outfit, error) {
	all, err := s.wardrobe.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := map[string][]models.ClothingItem{}
	for _, it := range all {
		byType[it.Type] = append(byType[it.Type], it)
	}
	for _, t := range requiredTypes {
		if len(byType[t]) == 0 {
			return nil, fmt.Errorf("%w: you cannot make an outfit without any %s", ErrIncompleteWardrobe, t)
		}
	}

	options := map[string][]models.ClothingItem{}
	for _, it := range all {
		if it.Formality == formality || it.Formality == models.FormalityAny {
			options[it.Type] = append(options[it.Type], it)
		}
	}
	for _, t := range requiredTypes {
		if len(options[t]) == 0 {
			options[t] = byType[t]
		}
	}

	report, err := s.weather.Current(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
	}

	return s.engine.Outfit(options, scoring.Conditions{TempF: report.TempF, Weather: report.Condition}), nil
}
