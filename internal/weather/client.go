// Package weather looks up current conditions from weatherapi.com and caches
// them per city.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownCity is returned when the provider cannot resolve the location.
var ErrUnknownCity = errors.New("unknown city")

// Report is the simplified current weather of a city.
type Report struct {
	// TempF is the temperature in Fahrenheit.
	TempF float64
	// Condition is one of clear, sunny, cloudy, rainy, snowy or windy.
	Condition string
}

type currentResponse struct {
	Current struct {
		TempF     float64 `json:"temp_f"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// Client queries the weatherapi.com current conditions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// NewClient returns a Client for baseURL (for example
// https://api.weatherapi.com/v1). A nil httpClient gets a 10s timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		log:     log.Named("weather"),
	}
}

// Current fetches the current temperature and simplified condition for city.
func (c *Client) Current(ctx context.Context, city string) (Report, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("weather request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("weather provider error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return Report{}, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Report{}, fmt.Errorf("decode weather: %w", err)
	}

	r := Report{TempF: data.Current.TempF, Condition: Simplify(data.Current.Condition.Text)}
	c.log.Debug("weather fetched", zap.String("city", city), zap.Float64("temp_f", r.TempF), zap.String("condition", r.Condition))
	return r, nil
}

// Simplify maps a provider condition text onto the condition vocabulary used
// for scoring. Anything unrecognised counts as clear.
func Simplify(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "clear"):
		return "clear"
	case strings.Contains(t, "sunny"):
		return "sunny"
	case strings.Contains(t, "cloud"):
		return "cloudy"
	case strings.Contains(t, "rain"), strings.Contains(t, "drizzle"):
		return "rainy"
	case strings.Contains(t, "snow"), strings.Contains(t, "ice"), strings.Contains(t, "sleet"):
		return "snowy"
	case strings.Contains(t, "wind"):
		return "windy"
	default:
		return "clear"
	}
}
