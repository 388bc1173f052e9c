// Package server exposes the scraper as a read-only JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"tildes-reader/pkg/tildes"
	"tildes-reader/scraper"
)

const (
	defaultLimit = 25
	maxLimit     = 100
)

// Source is what the handlers read from.
type Source interface {
	Groups(ctx context.Context) ([]string, error)
	Topics(ctx context.Context, group, after string, limit int) (topics []*tildes.Topic, next string, err error)
	Post(ctx context.Context, group, id string) (*tildes.Post, error)
}

// Server handles HTTP requests.
type Server struct {
	source Source
	logger *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Source Source
	Logger *slog.Logger
}

// New creates a new HTTP server handler.
func New(cfg *Config) *Server {
	return &Server{
		source: cfg.Source,
		logger: cfg.Logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	router.GET("/groups", s.handleGroups)
	router.GET("/topics", s.handleTopics)
	router.GET("/groups/:group/topics", s.handleTopics)
	router.GET("/groups/:group/topics/:id", s.handlePost)
	return router
}

// ListenAndServe serves the API on port until the server fails.
func (s *Server) ListenAndServe(port string) error {
	// Configure server with timeouts to prevent resource exhaustion
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second, // Large comment trees take a while upstream
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "port", port)
	return server.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	groups, err := s.source.Groups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"groups": groups})
}

type topicsResponse struct {
	Topics []*tildes.Topic `json:"topics"`
	Group  string          `json:"group,omitempty"`
	After  string          `json:"after,omitempty"` // Cursor for the next request, empty when exhausted
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	group := ps.ByName("group")
	topics, next, err := s.source.Topics(r.Context(), group, r.URL.Query().Get("after"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if topics == nil {
		topics = []*tildes.Topic{}
	}
	s.writeJSON(w, http.StatusOK, topicsResponse{Topics: topics, Group: group, After: next})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := s.source.Post(r.Context(), ps.ByName("group"), ps.ByName("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return n, nil
}

// writeError maps scraper failures onto gateway responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	var upstream *scraper.HTTPStatusError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
		status = http.StatusNotFound
	}

	level := slog.LevelWarn
	if scraper.IsParseError(err) {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "Upstream request failed", "path", r.URL.Path, "status_code", status, "error", err)

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
