package scraper

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Lister resolves the site's group names and remembers them.
type Lister struct {
	scraper *Scraper
	groups  []string
	loaded  bool
}

// NewLister creates a lister backed by s.
func NewLister(s *Scraper) *Lister {
	return &Lister{scraper: s}
}

// Groups returns every group name without its "~" sigil.
// The index page is fetched on the first successful call only.
// A page without a group list yields an empty result, not an error.
// Each call returns a fresh copy of the cached names.
func (l *Lister) Groups(ctx context.Context) ([]string, error) {
	if l.loaded {
		return slices.Clone(l.groups), nil
	}

	doc, err := l.scraper.fetch(ctx, "/groups", "fetch_group_index")
	if err != nil {
		return nil, fmt.Errorf("fetch group index: %w", err)
	}

	sel := l.scraper.selectors
	groups := []string{}
	doc.Find(sel.GroupLinks).Each(func(_ int, a *goquery.Selection) {
		name := ownText(a)
		if name == "" {
			return
		}
		groups = append(groups, strings.TrimPrefix(name, sel.GroupSigil))
	})

	if len(groups) == 0 {
		l.scraper.logger.Warn("Group index contained no groups", "url", doc.Url.String())
	} else {
		l.scraper.logger.Info("Group index parsed", "groups_found", len(groups))
	}

	l.groups = groups
	l.loaded = true
	return slices.Clone(l.groups), nil
}
