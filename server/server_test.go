package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tildes-reader/pkg/tildes"
	"tildes-reader/scraper"
)

type stubSource struct {
	err       error
	lastGroup string
	lastAfter string
	lastLimit int
	mu        sync.Mutex
}

func (s *stubSource) last() (group, after string, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGroup, s.lastAfter, s.lastLimit
}

func (s *stubSource) Groups(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"comp", "music"}, nil
}

func (s *stubSource) Topics(ctx context.Context, group, after string, limit int) ([]*tildes.Topic, string, error) {
	s.mu.Lock()
	s.lastGroup, s.lastAfter, s.lastLimit = group, after, limit
	s.mu.Unlock()
	if s.err != nil {
		return nil, "", s.err
	}
	return []*tildes.Topic{{ID: "a1", Group: group, Title: "Hello"}}, "a1", nil
}

func (s *stubSource) Post(ctx context.Context, group, id string) (*tildes.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tildes.Post{
		Group: group,
		ID:    id,
		Title: "Hello",
		Comments: []*tildes.Comment{
			{Text: "top", Replies: []*tildes.Comment{{Text: "reply", ByOP: true}}},
		},
	}, nil
}

func newTestServer(t *testing.T, src Source) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(&Config{Source: src, Logger: logger}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubSource{})

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestGroups(t *testing.T) {
	srv := newTestServer(t, &stubSource{})

	var body map[string][]string
	status := getJSON(t, srv.URL+"/groups", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"comp", "music"}, body["groups"])
}

func TestTopicsParams(t *testing.T) {
	src := &stubSource{}
	srv := newTestServer(t, src)

	var body topicsResponse
	status := getJSON(t, srv.URL+"/groups/comp/topics?limit=10&after=z9", &body)
	require.Equal(t, http.StatusOK, status)
	group, after, limit := src.last()
	assert.Equal(t, "comp", group)
	assert.Equal(t, "z9", after)
	assert.Equal(t, 10, limit)
	assert.Equal(t, "a1", body.After)
	require.Len(t, body.Topics, 1)

	status = getJSON(t, srv.URL+"/topics", &body)
	require.Equal(t, http.StatusOK, status)
	group, _, limit = src.last()
	assert.Equal(t, "", group)
	assert.Equal(t, defaultLimit, limit)
}

func TestTopicsBadLimit(t *testing.T) {
	srv := newTestServer(t, &stubSource{})

	for _, limit := range []string{"0", "-1", "abc", fmt.Sprint(maxLimit + 1)} {
		resp, err := http.Get(srv.URL + "/topics?limit=" + limit)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
}

func TestPost(t *testing.T) {
	srv := newTestServer(t, &stubSource{})

	var post tildes.Post
	status := getJSON(t, srv.URL+"/groups/comp/topics/b2", &post)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "b2", post.ID)
	require.Len(t, post.Comments, 1)
	require.Len(t, post.Comments[0].Replies, 1)
	assert.True(t, post.Comments[0].Replies[0].ByOP)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"upstream not found", fmt.Errorf("fetch: %w", &scraper.HTTPStatusError{URL: "u", StatusCode: 404}), http.StatusNotFound},
		{"upstream failure", &scraper.HTTPStatusError{URL: "u", StatusCode: 503}, http.StatusBadGateway},
		{"parse failure", &scraper.ParseError{Field: "post title", URL: "u"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubSource{err: tt.err})

			var body map[string]string
			status := getJSON(t, srv.URL+"/groups/comp/topics/b2", &body)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

const listingPage = `<html><body><ol class="topic-listing">
<li><article id="topic-%[1]s" data-topic-posted-by="alice">
  <h1 class="topic-title"><a href="/~comp/%[1]s/t">Topic %[1]s</a></h1>
  <div class="topic-info-comments"><a href="/~comp/%[1]s/t">2 comments</a></div>
  <time datetime="2024-05-01T10:00:00Z">1h</time>
  <span class="topic-voting-votes">3</span>
</article></li>
</ol></body></html>`

func TestScraperSourceTopics(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RequestURI() {
		case "/~comp":
			fmt.Fprintf(w, listingPage, "a1")
		case "/~comp?after=a1":
			fmt.Fprintf(w, listingPage, "b2")
		default:
			fmt.Fprint(w, `<html><body><ol class="topic-listing"></ol></body></html>`)
		}
	}))
	t.Cleanup(site.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := &ScraperSource{Scraper: scraper.New(site.Client(), site.URL, logger)}
	ctx := context.Background()

	topics, next, err := src.Topics(ctx, "comp", "", 1)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "a1", topics[0].ID)
	assert.Equal(t, "a1", next)

	topics, next, err = src.Topics(ctx, "comp", next, 5)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "b2", topics[0].ID)
	assert.True(t, topics[0].SelfPost)
	assert.Empty(t, next, "exhausted listing should not hand out a cursor")
}
