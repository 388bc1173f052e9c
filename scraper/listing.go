package scraper

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/iterator"

	"tildes-reader/pkg/tildes"
)

type walkerState int

const (
	hasBufferedPage walkerState = iota
	needsNextPage
	exhausted
	failed
)

// Walker pages forward through a topic listing, one topic at a time.
// Next returns iterator.Done once a fetched page holds no topics.
// A topic that fails to parse stops the walk: every later Next returns the same error.
// A failed page fetch does not, and the next call requests that page again.
// A Walker is not safe for concurrent use.
type Walker struct {
	scraper *Scraper
	page    *goquery.Selection // Topic nodes of the buffered page
	pageURL string
	group   string // Empty for the front page
	cursor  string // ID of the last topic returned
	pos     int
	state   walkerState
	err     error // Set in the failed state
}

// Walk fetches the first page of group's listing, or of the front page when group is empty.
func (s *Scraper) Walk(ctx context.Context, group string) (*Walker, error) {
	return s.WalkAfter(ctx, group, "")
}

// WalkAfter is like Walk but starts with the page following the topic ID after.
func (s *Scraper) WalkAfter(ctx context.Context, group, after string) (*Walker, error) {
	w := &Walker{
		scraper: s,
		group:   group,
		cursor:  after,
	}
	if err := w.load(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Next returns the next topic in listing order, fetching a new page when the
// buffered one is used up.
func (w *Walker) Next(ctx context.Context) (*tildes.Topic, error) {
	for {
		switch w.state {
		case exhausted:
			return nil, iterator.Done

		case failed:
			return nil, w.err

		case needsNextPage:
			if err := w.load(ctx); err != nil {
				return nil, err
			}

		case hasBufferedPage:
			if w.pos >= w.page.Length() {
				w.state = needsNextPage
				continue
			}
			node := w.page.Eq(w.pos)
			w.pos++

			topic, err := w.parseTopic(node)
			if err != nil {
				w.state = failed
				w.err = err
				w.scraper.logger.Warn("Listing walk stopped",
					"url", w.pageURL,
					"position", w.pos-1,
					"error", err)
				return nil, err
			}
			w.cursor = topic.ID
			return topic, nil
		}
	}
}

// All ranges over the remaining topics. Iteration stops after the first error.
func (w *Walker) All(ctx context.Context) iter.Seq2[*tildes.Topic, error] {
	return func(yield func(*tildes.Topic, error) bool) {
		for {
			topic, err := w.Next(ctx)
			if errors.Is(err, iterator.Done) {
				return
			}
			if !yield(topic, err) || err != nil {
				return
			}
		}
	}
}

// PageLen returns the number of topic nodes on the buffered page.
func (w *Walker) PageLen() int {
	if w.page == nil {
		return 0
	}
	return w.page.Length()
}

// Cursor returns the ID of the last topic returned by Next.
func (w *Walker) Cursor() string {
	return w.cursor
}

// Group returns the group being walked, or "" for the front page.
func (w *Walker) Group() string {
	return w.group
}

// load replaces the buffered page with the one after the current cursor.
// On failure the state is left untouched so the caller may call Next again.
func (w *Walker) load(ctx context.Context) error {
	path := w.pagePath()
	doc, err := w.scraper.fetch(ctx, path, "fetch_listing_page")
	if err != nil {
		return fmt.Errorf("fetch listing page: %w", err)
	}

	w.page = doc.Find(w.scraper.selectors.Topics)
	w.pageURL = doc.Url.String()
	w.pos = 0

	if w.page.Length() == 0 {
		w.state = exhausted
		w.scraper.logger.Info("Listing exhausted", "url", w.pageURL, "cursor", w.cursor)
		return nil
	}

	w.state = hasBufferedPage
	w.scraper.logger.Info("Listing page parsed",
		"url", w.pageURL,
		"group", w.group,
		"cursor", w.cursor,
		"topics_found", w.page.Length())
	return nil
}

func (w *Walker) pagePath() string {
	path := "/"
	if w.group != "" {
		path = "/~" + url.PathEscape(w.group)
	}
	if w.cursor != "" {
		path += "?after=" + url.QueryEscape(w.cursor)
	}
	return path
}

func (w *Walker) parseTopic(node *goquery.Selection) (*tildes.Topic, error) {
	sel := w.scraper.selectors

	rawID, err := requiredAttr(node, sel.TopicIDAttr, "topic id", w.pageURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(rawID, sel.TopicIDPrefix) {
		return nil, &ParseError{
			Field: "topic id",
			URL:   w.pageURL,
			Err:   fmt.Errorf("id %q lacks prefix %q", rawID, sel.TopicIDPrefix),
		}
	}
	id := strings.TrimPrefix(rawID, sel.TopicIDPrefix)

	titleLink := node.Find(sel.TopicTitleLink).First()
	title, err := requiredText(titleLink, "topic title", w.pageURL)
	if err != nil {
		return nil, err
	}
	link, err := requiredAttr(titleLink, sel.HrefAttr, "topic url", w.pageURL)
	if err != nil {
		return nil, err
	}

	votes, err := requiredCount(node.Find(sel.TopicVotes).First(), "topic votes", w.pageURL)
	if err != nil {
		return nil, err
	}

	created, err := requiredTime(node.Find(sel.TopicTime).First(), sel.TimeAttr, "topic time", w.pageURL)
	if err != nil {
		return nil, err
	}

	author, err := requiredAttr(node, sel.TopicAuthorAttr, "topic author", w.pageURL)
	if err != nil {
		return nil, err
	}

	commentsLink := node.Find(sel.TopicCommentsLink).First()
	commentsURL, err := requiredAttr(commentsLink, sel.HrefAttr, "topic comments url", w.pageURL)
	if err != nil {
		return nil, err
	}
	comments, err := requiredCountExcept(commentsLink, sel.TopicCommentsNew, "topic comment count", w.pageURL)
	if err != nil {
		return nil, err
	}

	group := w.group
	if group == "" {
		group = tildes.GroupFromPath(commentsURL)
	}

	return tildes.NewTopic(id, group, title, link, commentsURL, author, votes, comments, created), nil
}
