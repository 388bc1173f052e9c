// Package scraper handles fetching and parsing Tildes group, listing and topic pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the site every request is issued against unless overridden.
const DefaultBaseURL = "https://tildes.net"

// HTTPStatusError indicates a non-2xx response from the site.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsHTTPStatusError checks if an error is an HTTP status error.
func IsHTTPStatusError(err error) bool {
	var status *HTTPStatusError
	return errors.As(err, &status)
}

// ParseError indicates that a page lacked a node or attribute the parser requires.
type ParseError struct {
	Err   error  // Underlying cause, if any (e.g. a strconv error)
	Field string // Which field could not be extracted
	URL   string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s: %s", e.Field, e.URL)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError checks if an error is a structural parse error.
func IsParseError(err error) bool {
	var parse *ParseError
	return errors.As(err, &parse)
}

// Scraper fetches and parses Tildes pages.
// It is not safe for concurrent use.
type Scraper struct {
	client    *http.Client
	logger    *slog.Logger
	selectors *Selectors
	baseURL   string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithSelectors replaces the markup query table.
func WithSelectors(sel *Selectors) Option {
	return func(s *Scraper) {
		s.selectors = sel
	}
}

// New creates a new scraper. An empty baseURL means DefaultBaseURL.
func New(client *http.Client, baseURL string, logger *slog.Logger, opts ...Option) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	s := &Scraper{
		client:    client,
		logger:    logger,
		selectors: DefaultSelectors(),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetch issues one GET for path and parses the response body.
// Failures are returned as-is; there is no retry.
func (s *Scraper) fetch(ctx context.Context, path, purpose string) (*goquery.Document, error) {
	pageURL := s.baseURL + path

	s.logger.Info("HTTP request starting",
		"method", "GET",
		"url", pageURL,
		"purpose", purpose)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	startTime := time.Now()
	resp, err := s.client.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Warn("HTTP request failed",
			"url", pageURL,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	s.logger.Info("HTTP request completed",
		"url", pageURL,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"content_length", resp.ContentLength)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Error("Failed to parse HTML", "url", pageURL, "error", err)
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Url = req.URL
	return doc, nil
}
