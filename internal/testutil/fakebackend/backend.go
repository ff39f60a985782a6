// Package fakebackend serves the three telemetry routes for tests and records
// every request it receives.
package fakebackend

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bnema/miniapp-telemetry/internal/adapters/backend/httpapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"
)

type Request struct {
	Path   string
	Header http.Header
	Body   []byte
}

func (r Request) Field(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []Request
	statuses map[string]int
	nextID   int
}

func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{statuses: map[string]int{}}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)

	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// FailWith makes every request to path answer with status.
func (b *Backend) FailWith(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[path] = status
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) RequestsTo(path string) []Request {
	var out []Request
	for _, req := range b.Requests() {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Post(httpapi.DefaultRegisterPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"ok":true}`)
	})
	r.Post(httpapi.DefaultStartPath, func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		b.nextID++
		id := b.nextID
		b.mu.Unlock()
		writeJSON(w, fmt.Sprintf(`{"session_id":"sess-%d"}`, id))
	})
	r.Post(httpapi.DefaultEndPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"status":"ended"}`)
	})

	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, Request{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		status, failing := b.statuses[r.URL.Path]
		b.mu.Unlock()

		if failing {
			http.Error(w, http.StatusText(status), status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}
