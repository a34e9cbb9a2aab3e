// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mockapi serves the interaction API from the embedded fixtures:
// autocomplete and single-item lookup over the seed catalog, and the mock
// depletions and optimizations payloads. It backs the serve command and
// end-to-end tests of the remote catalog and backend.
package mockapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
	"github.com/WDD-CODER/ex-witget-v1/internal/fixtures"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// Options configures the mock server.
type Options struct {
	Paths types.APIPaths

	// Latency delays every interaction response.
	Latency time.Duration

	Logger *zap.Logger
}

// Server is the mock API. It implements http.Handler.
type Server struct {
	catalog *catalog.Static
	opts    Options
	logger  *zap.Logger
	handler http.Handler
}

// New returns a mock API over c.
func New(c *catalog.Static, opts Options) *Server {
	if opts.Paths == (types.APIPaths{}) {
		opts.Paths = types.DefaultAPIPaths()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{catalog: c, opts: opts, logger: opts.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+opts.Paths.Autocomplete, s.handleAutocomplete)
	mux.HandleFunc("GET "+opts.Paths.Item, s.handleItem)
	mux.HandleFunc("POST "+opts.Paths.Depletions, s.handleDepletions)
	mux.HandleFunc("POST "+opts.Paths.Optimizations, s.handleOptimizations)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.handler = requestIDMiddleware(tracingMiddleware(loggingMiddleware(s.logger, mux)))
	return s
}

// ServeHTTP dispatches to the API routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// catalogItem is the autocomplete wire shape.
type catalogItem struct {
	ID   string     `json:"_id"`
	Name string     `json:"name"`
	Kind types.Kind `json:"kind"`
}

func toItems(cs []types.Candidate) []catalogItem {
	out := make([]catalogItem, 0, len(cs))
	for _, c := range cs {
		out = append(out, catalogItem{ID: c.ID, Name: c.Name, Kind: c.Kind})
	}
	return out
}

// handleAutocomplete answers GET autocomplete?q=... . The query may also
// arrive as data={"q": "..."}, the form older clients send.
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		if data := r.URL.Query().Get("data"); data != "" {
			var wrapped struct {
				Q string `json:"q"`
			}
			if err := json.Unmarshal([]byte(data), &wrapped); err != nil {
				writeError(w, http.StatusBadRequest, "invalid data parameter")
				return
			}
			query = wrapped.Q
		}
	}
	if query == "" {
		writeJSON(w, http.StatusOK, []catalogItem{})
		return
	}

	results, err := s.catalog.Lookup(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toItems(results))
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	c, err := s.catalog.Find(r.Context(), name)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toItems([]types.Candidate{c})[0])
}

// interactionQuery is the body of both interaction endpoints.
type interactionQuery struct {
	Q []string `json:"q"`
}

// handleDepletions answers with the mock depletions in a success envelope.
func (s *Server) handleDepletions(w http.ResponseWriter, r *http.Request) {
	q, ok := s.readQuery(w, r)
	if !ok {
		return
	}
	data := json.RawMessage(fixtures.DepletionsJSON)
	if fixtures.SelectsNothing(q.Q) {
		data = json.RawMessage("[]")
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// handleOptimizations answers with the mock optimizations, grouped by label.
func (s *Server) handleOptimizations(w http.ResponseWriter, r *http.Request) {
	q, ok := s.readQuery(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if fixtures.SelectsNothing(q.Q) {
		_, _ = w.Write([]byte("[]\n"))
		return
	}
	_, _ = w.Write(bytes.TrimSpace(fixtures.OptimizationsJSON))
}

// readQuery decodes the request body and applies the configured latency.
func (s *Server) readQuery(w http.ResponseWriter, r *http.Request) (interactionQuery, bool) {
	var q interactionQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return q, false
	}
	if len(q.Q) == 0 {
		writeError(w, http.StatusBadRequest, "q must list at least one item")
		return q, false
	}
	if s.opts.Latency > 0 {
		t := time.NewTimer(s.opts.Latency)
		defer t.Stop()
		select {
		case <-r.Context().Done():
			return q, false
		case <-t.C:
		}
	}
	return q, true
}
