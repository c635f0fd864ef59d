package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/repository"
	"github.com/atinyakov/wardrobix/internal/service"
	"github.com/atinyakov/wardrobix/internal/weather"
)

// fakeAuthService accepts alice/pw1 and records registrations.
type fakeAuthService struct {
	registerErr error
	registered  []models.Credentials
}

func (f *fakeAuthService) Register(_ context.Context, creds models.Credentials) (int64, error) {
	if f.registerErr != nil {
		return 0, f.registerErr
	}
	f.registered = append(f.registered, creds)
	return int64(len(f.registered)), nil
}

func (f *fakeAuthService) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	if username == "alice" && password == "pw1" {
		return &models.User{ID: 1, Username: "alice"}, nil
	}
	return nil, service.ErrInvalidCredentials
}

// memWardrobe is an in-memory WardrobeService keyed by user.
type memWardrobe struct {
	next  int64
	items map[int64][]models.ClothingItem
	err   error
}

func newMemWardrobe() *memWardrobe {
	return &memWardrobe{items: map[int64][]models.ClothingItem{}}
}

func (m *memWardrobe) List(_ context.Context, userID int64) ([]models.ClothingItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.ClothingItem{}, m.items[userID]...), nil
}

func (m *memWardrobe) find(userID, id int64) int {
	for i, it := range m.items[userID] {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (m *memWardrobe) Get(_ context.Context, userID, id int64) (models.ClothingItem, error) {
	i := m.find(userID, id)
	if i < 0 {
		return models.ClothingItem{}, service.ErrNotFound
	}
	return m.items[userID][i], nil
}

func (m *memWardrobe) Create(_ context.Context, userID int64, f models.ClothingFields) (models.ClothingItem, error) {
	m.next++
	it := models.ClothingItem{ID: m.next, ClothingFields: f}
	m.items[userID] = append(m.items[userID], it)
	return it, nil
}

func (m *memWardrobe) Update(_ context.Context, userID, id int64, f models.ClothingFields) (models.ClothingItem, error) {
	i := m.find(userID, id)
	if i < 0 {
		return models.ClothingItem{}, service.ErrNotFound
	}
	m.items[userID][i].ClothingFields = f
	return m.items[userID][i], nil
}

func (m *memWardrobe) Delete(_ context.Context, userID, id int64) error {
	i := m.find(userID, id)
	if i < 0 {
		return service.ErrNotFound
	}
	m.items[userID] = append(m.items[userID][:i], m.items[userID][i+1:]...)
	return nil
}

type recommendFunc func(ctx context.Context, userID int64, formality, city string) (models.Outfit, error)

func (f recommendFunc) Recommend(ctx context.Context, userID int64, formality, city string) (models.Outfit, error) {
	return f(ctx, userID, formality, city)
}

type testServer struct {
	*httptest.Server
	auth      *fakeAuthService
	wardrobe  *memWardrobe
	recommend recommendFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{auth: &fakeAuthService{}, wardrobe: newMemWardrobe()}
	ts.recommend = func(context.Context, int64, string, string) (models.Outfit, error) {
		return models.Outfit{}, nil
	}
	log := zap.NewNop()
	router := NewRouter(
		&AuthHandler{AuthService: ts.auth, Logger: log},
		&ClothesHandler{WardrobeService: ts.wardrobe, Logger: log},
		&RecommendHandler{
			RecommendService: recommendFunc(func(ctx context.Context, userID int64, formality, city string) (models.Outfit, error) {
				return ts.recommend(ctx, userID, formality, city)
			}),
			Logger: log,
		},
		log,
	)
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, authed bool) (int, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.SetBasicAuth("alice", "pw1")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)
	code, body := ts.do(t, http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, Banner, body)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		registerErr  error
		expectedCode int
	}{
		{"invalid JSON", `not a json`, nil, http.StatusBadRequest},
		{"blank fields", `{"username":"","password":""}`, service.ErrInvalidInput, http.StatusBadRequest},
		{"taken", `{"username":"bob","password":"pw2"}`, service.ErrUserExists, http.StatusConflict},
		{"internal", `{"username":"bob","password":"pw2"}`, errors.New("db down"), http.StatusInternalServerError},
		{"created", `{"username":"bob","password":"pw2"}`, nil, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.auth.registerErr = tt.registerErr
			code, body := ts.do(t, http.MethodPost, "/register", tt.body, false)
			assert.Equal(t, tt.expectedCode, code, body)
		})
	}
}

func TestRegister_StoresCredentials(t *testing.T) {
	ts := newTestServer(t)
	code, _ := ts.do(t, http.MethodPost, "/register", `{"username":"bob","password":"pw2"}`, false)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []models.Credentials{{Username: "bob", Password: "pw2"}}, ts.auth.registered)
}

func TestClothes_RequireAuth(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodGet, "/clothes", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/clothes", nil)
	req.SetBasicAuth("alice", "wrong")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
}

func TestClothes_CRUD(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodGet, "/clothes", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body)

	code, body = ts.do(t, http.MethodPost, "/clothes",
		`{"name":"Blue Shirt","formality":"casual","color":"blue","type":"top","subtype":"shirt"}`, true)
	require.Equal(t, http.StatusOK, code, body)
	var created models.ClothingItem
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, int64(1), created.ID)

	code, body = ts.do(t, http.MethodPut, "/clothes/1",
		`{"name":"Navy Shirt","formality":"casual","color":"navy-blue","type":"top","subtype":"shirt"}`, true)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "Navy Shirt")

	code, body = ts.do(t, http.MethodGet, "/clothes/1", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"color":"navy-blue"`)

	code, _ = ts.do(t, http.MethodDelete, "/clothes/1", "", true)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodGet, "/clothes/1", "", true)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestClothes_Errors(t *testing.T) {
	ts := newTestServer(t)
	valid := `{"name":"Tee","type":"top","subtype":"t-shirt"}`

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad id", http.MethodGet, "/clothes/abc", "", http.StatusBadRequest},
		{"zero id", http.MethodDelete, "/clothes/0", "", http.StatusBadRequest},
		{"missing update", http.MethodPut, "/clothes/42", valid, http.StatusNotFound},
		{"missing delete", http.MethodDelete, "/clothes/42", "", http.StatusNotFound},
		{"invalid body", http.MethodPost, "/clothes", `{`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/clothes", `{"type":"top"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := ts.do(t, tt.method, tt.path, tt.body, true)
			assert.Equal(t, tt.want, code, body)
		})
	}
}

func TestClothes_InternalErrorHidden(t *testing.T) {
	ts := newTestServer(t)
	ts.wardrobe.err = fmt.Errorf("ListByUser: %w", errors.New("connection refused"))

	code, body := ts.do(t, http.MethodGet, "/clothes", "", true)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body, "connection refused")
}

func TestClothes_RejectsNonJSON(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/clothes", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("alice", "pw1")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRecommend_EscapedParams(t *testing.T) {
	ts := newTestServer(t)
	var gotFormality, gotCity string
	var gotUser int64
	ts.recommend = func(_ context.Context, userID int64, formality, city string) (models.Outfit, error) {
		gotUser, gotFormality, gotCity = userID, formality, city
		return models.Outfit{
			{ID: 1, ClothingFields: models.ClothingFields{Name: "Tee", Type: "top"}},
			{ID: 2, ClothingFields: models.ClothingFields{Name: "Jeans", Type: "bottom"}},
		}, nil
	}

	code, body := ts.do(t, http.MethodGet, "/recommend/black%20tie/New%20York", "", true)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, int64(1), gotUser)
	assert.Equal(t, "black tie", gotFormality)
	assert.Equal(t, "New York", gotCity)

	var outfit models.Outfit
	require.NoError(t, json.Unmarshal([]byte(body), &outfit))
	assert.Len(t, outfit.Items(), 2)
}

func TestRecommend_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"incomplete", fmt.Errorf("%w: you cannot make an outfit without any bottom", service.ErrIncompleteWardrobe), http.StatusUnprocessableEntity},
		{"unknown city", fmt.Errorf("%w: %w", service.ErrWeatherUnavailable, weather.ErrUnknownCity), http.StatusBadRequest},
		{"weather down", fmt.Errorf("%w: timeout", service.ErrWeatherUnavailable), http.StatusBadGateway},
		{"internal", repository.ErrConflict, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.recommend = func(context.Context, int64, string, string) (models.Outfit, error) {
				return nil, tt.err
			}
			code, body := ts.do(t, http.MethodGet, "/recommend/formal/Paris", "", true)
			assert.Equal(t, tt.want, code, body)
			if tt.want == http.StatusUnprocessableEntity {
				assert.Contains(t, body, "bottom")
			}
		})
	}
}
