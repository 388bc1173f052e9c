package server

import (
	"context"
	"errors"

	"google.golang.org/api/iterator"

	"tildes-reader/pkg/tildes"
	"tildes-reader/scraper"
)

// ScraperSource serves requests straight from the site.
// Every call builds its own lister or walker, so concurrent requests share nothing mutable.
type ScraperSource struct {
	Scraper *scraper.Scraper
}

// Groups lists the site's groups.
func (src *ScraperSource) Groups(ctx context.Context) ([]string, error) {
	return scraper.NewLister(src.Scraper).Groups(ctx)
}

// Topics reads up to limit topics after the given cursor. next is empty once the listing is exhausted.
func (src *ScraperSource) Topics(ctx context.Context, group, after string, limit int) ([]*tildes.Topic, string, error) {
	w, err := src.Scraper.WalkAfter(ctx, group, after)
	if err != nil {
		return nil, "", err
	}

	topics := make([]*tildes.Topic, 0, limit)
	for len(topics) < limit {
		topic, err := w.Next(ctx)
		if errors.Is(err, iterator.Done) {
			return topics, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		topics = append(topics, topic)
	}
	return topics, w.Cursor(), nil
}

// Post fetches one topic with its comments.
func (src *ScraperSource) Post(ctx context.Context, group, id string) (*tildes.Post, error) {
	return src.Scraper.Post(ctx, group, id)
}
