// Package apitest provides a recording fake of the course platform API for
// tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// Recorded is one request the fake server received.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Form parses a multipart/form-data body.
func (r Recorded) Form() (*multipart.Form, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("parse content type: %w", err)
	}
	if mediaType != "multipart/form-data" {
		return nil, fmt.Errorf("unexpected content type %q", mediaType)
	}
	return multipart.NewReader(bytes.NewReader(r.Body), params["boundary"]).ReadForm(1 << 20)
}

// JSON decodes the recorded body into out.
func (r Recorded) JSON(out any) error {
	return json.Unmarshal(r.Body, out)
}

// Server is an httptest server routed by gorilla/mux that records every
// request, routed or not.
type Server struct {
	*httptest.Server
	Router *mux.Router

	mu       sync.Mutex
	requests []Recorded
}

// NewServer starts a fake API and closes it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{Router: mux.NewRouter()}
	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "route not found"})
	})
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	s.mu.Unlock()

	s.Router.ServeHTTP(w, r)
}

// Handle registers fn for method and path (mux path template syntax).
func (s *Server) Handle(method, path string, fn http.HandlerFunc) {
	s.Router.HandleFunc(path, fn).Methods(method)
}

// Reply registers a canned JSON response.
func (s *Server) Reply(method, path string, status int, body any) {
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests were received.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Last returns the most recent request.
func (s *Server) Last() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Envelope wraps data the way the platform API does.
func Envelope(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
