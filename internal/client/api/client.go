// Package api is the HTTP client for the wardrobe backend. It turns the
// backend's status codes into the client's error taxonomy: ErrUnauthorized,
// *StatusError (rejection) and *TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/models"
)

const (
	pathClothes   = "/clothes"
	pathRecommend = "/recommend"
	pathRegister  = "/register"

	maxErrorBody = 4 << 10
)

// Client talks to one backend. It holds no session state: every
// authenticated call receives the Authorization header value from the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New builds a Client for baseURL. A nil httpClient gets a 10s-timeout default.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		log:        log.Named("api"),
	}
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// ListClothes fetches the caller's full collection in server order.
func (c *Client) ListClothes(ctx context.Context, authz string) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	if err := c.do(ctx, "list clothes", http.MethodGet, pathClothes, authz, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ClothingItem{}
	}
	return items, nil
}

// CreateClothing stores a new item. The server assigns the id.
func (c *Client) CreateClothing(ctx context.Context, authz string, fields models.ClothingFields) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := c.do(ctx, "create clothing", http.MethodPost, pathClothes, authz, fields, &item)
	return item, err
}

// UpdateClothing replaces the fields of item id.
func (c *Client) UpdateClothing(ctx context.Context, authz string, id int64, fields models.ClothingFields) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := c.do(ctx, "update clothing", http.MethodPut, itemPath(id), authz, fields, &item)
	return item, err
}

// DeleteClothing removes item id.
func (c *Client) DeleteClothing(ctx context.Context, authz string, id int64) error {
	return c.do(ctx, "delete clothing", http.MethodDelete, itemPath(id), authz, nil, nil)
}

// Recommend asks for an outfit. formality and city travel as path segments.
func (c *Client) Recommend(ctx context.Context, authz, formality, city string) (models.Outfit, error) {
	path := pathRecommend + "/" + url.PathEscape(formality) + "/" + url.PathEscape(city)
	var outfit models.Outfit
	if err := c.do(ctx, "recommend", http.MethodGet, path, authz, nil, &outfit); err != nil {
		return nil, err
	}
	if outfit == nil {
		outfit = models.Outfit{}
	}
	return outfit, nil
}

// Register creates an account. It is the only unauthenticated call.
func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, "register", http.MethodPost, pathRegister, "", creds, nil)
}

func itemPath(id int64) string {
	return pathClothes + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path, authz string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}
