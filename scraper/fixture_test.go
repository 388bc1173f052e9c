package scraper

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fixtureSite serves testdata files keyed by request URI and counts hits per URI.
type fixtureSite struct {
	routes map[string]string
	hits   map[string]int
	order  []string
	mu     sync.Mutex
}

func newFixtureSite(t *testing.T, routes map[string]string) (*fixtureSite, *httptest.Server) {
	t.Helper()
	site := &fixtureSite{routes: routes, hits: make(map[string]int)}
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)
	return site, srv
}

func (f *fixtureSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.RequestURI()]++
	f.order = append(f.order, r.URL.RequestURI())
	name, ok := f.routes[r.URL.RequestURI()]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (f *fixtureSite) hitCount(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[uri]
}

func (f *fixtureSite) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func testScraper(srv *httptest.Server) *Scraper {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.Client(), srv.URL, logger)
}
