package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/wardrobix/internal/client/app"
	"github.com/atinyakov/wardrobix/internal/client/config"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/models"
)

type memBackend struct {
	mu     sync.Mutex
	items  []models.ClothingItem
	nextID int64
}

func (m *memBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, pass, ok := r.BasicAuth(); !ok || user != "alice" || pass != "pw1" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch {
	case r.URL.Path == "/clothes" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(m.items)
	case r.URL.Path == "/clothes" && r.Method == http.MethodPost:
		var f models.ClothingFields
		_ = json.NewDecoder(r.Body).Decode(&f)
		m.nextID++
		m.items = append(m.items, models.ClothingItem{ID: m.nextID, ClothingFields: f})
		_ = json.NewEncoder(w).Encode(m.items[len(m.items)-1])
	case strings.HasPrefix(r.URL.Path, "/clothes/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/clothes/"), 10, 64)
		for i := range m.items {
			if m.items[i].ID != id {
				continue
			}
			if r.Method == http.MethodDelete {
				m.items = append(m.items[:i], m.items[i+1:]...)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&m.items[i].ClothingFields)
			_ = json.NewEncoder(w).Encode(m.items[i])
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case strings.HasPrefix(r.URL.Path, "/recommend/"):
		out := make(models.Outfit, 0, len(m.items)+1)
		for i := range m.items {
			out = append(out, &m.items[i])
		}
		out = append(out, nil)
		_ = json.NewEncoder(w).Encode(out)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func runScript(t *testing.T, script string) string {
	t.Helper()
	ts := httptest.NewServer(&memBackend{})
	defer ts.Close()

	rec := &notify.Recorder{}
	a, err := app.New(&config.Config{BaseURL: ts.URL, Timeout: time.Second}, rec, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	repl(context.Background(), a, rec, strings.NewReader(script), &out)
	return out.String()
}

func TestRepl_Session(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"list",
		"login alice wrong",
		"login alice pw1",
		"set name Blue Shirt",
		"set type top",
		"set colour blue",
		"add",
		"edit 1",
		"set color navy",
		"save",
		"list",
		"generate formal",
		"generate formal Paris",
		"delete 1",
		"list",
		"logout",
		"bogus",
		"exit",
		"list",
	}, "\n"))

	assert.Contains(t, out, "error: not signed in")
	assert.Contains(t, out, "! invalid username or password")
	assert.Contains(t, out, "Welcome, alice")
	assert.Contains(t, out, `error: unknown field "colour"`)
	assert.Contains(t, out, "Item added")
	assert.Contains(t, out, "Editing #1")
	assert.Contains(t, out, "Item updated")
	assert.Contains(t, out, "#1 Blue Shirt (top/, navy, )")
	assert.Contains(t, out, "error: usage: generate [<formality> <city>]")
	assert.Contains(t, out, "Your outfit:")
	assert.Contains(t, out, "Item deleted")
	assert.Contains(t, out, "No items yet")
	assert.Contains(t, out, "Logged out")
	assert.Contains(t, out, "Unknown command")
	assert.True(t, strings.HasSuffix(out, "Bye\n"), "exit stops the loop")
}

func TestRepl_AddWhileEditingCreates(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"login alice pw1",
		"set name Blue Shirt",
		"set type top",
		"add",
		"edit 1",
		"set name Blue Shirt Copy",
		"add",
		"draft",
		"list",
	}, "\n"))

	assert.Equal(t, 2, strings.Count(out, "Item added"))
	assert.NotContains(t, out, "Item updated")
	assert.NotContains(t, out, "error:")
	assert.Contains(t, out, "#1 Blue Shirt (top/")
	assert.Contains(t, out, "#2 Blue Shirt Copy (top/")
	assert.NotContains(t, out, "* #", "edit mode is left after add")
}

func TestRepl_ValidationNotice(t *testing.T) {
	out := runScript(t, "login alice pw1\nparams formal  \ngenerate\n")
	assert.Contains(t, out, "error: usage: params <formality> <city>")
	assert.Contains(t, out, "! please provide both formality and city")
	assert.NotContains(t, out, "error: formality and city are required")
}

func TestRepl_Prompt(t *testing.T) {
	out := runScript(t, "login alice pw1\n")
	assert.Contains(t, out, "wardrobix> ")
	assert.Contains(t, out, "wardrobix(alice)> ")
}
