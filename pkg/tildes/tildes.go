// Package tildes contains the record types produced by the Tildes scraper.
package tildes

import (
	"net/url"
	"strings"
	"time"
)

// Topic is one row of a topic listing.
type Topic struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	Group        string    `json:"group"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`          // Title link target
	CommentsURL  string    `json:"comments_url"` // Comment-count link target
	Author       string    `json:"author"`
	Votes        int       `json:"votes"`
	CommentCount int       `json:"comment_count"`
	SelfPost     bool      `json:"self_post"` // URL == CommentsURL
}

// NewTopic builds a Topic, deriving SelfPost from the two link targets.
func NewTopic(id, group, title, link, commentsLink, author string, votes, comments int, created time.Time) *Topic {
	return &Topic{
		CreatedAt:    created,
		ID:           id,
		Group:        group,
		Title:        title,
		URL:          link,
		CommentsURL:  commentsLink,
		Author:       author,
		Votes:        votes,
		CommentCount: comments,
		SelfPost:     link == commentsLink,
	}
}

// Post is a fully fetched topic page.
type Post struct {
	CreatedAt time.Time  `json:"created_at"`
	Group     string     `json:"group"`
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Link      string     `json:"link,omitempty"` // External link, empty for self-posts
	Text      string     `json:"text,omitempty"` // Body text, empty for link-only posts
	Tags      []string   `json:"tags"`
	Comments  []*Comment `json:"comments"`
	Votes     int        `json:"votes"`
}

// HasLink reports whether the post points at an external URL.
func (p *Post) HasLink() bool {
	return p.Link != ""
}

// HasText reports whether the post carries body text.
func (p *Post) HasText() bool {
	return p.Text != ""
}

// CommentCount returns the number of comments in the whole tree.
func (p *Post) CommentCount() int {
	n := 0
	for _, c := range p.Comments {
		c.Walk(func(*Comment, int) { n++ })
	}
	return n
}

// Comment is a single comment and the replies it owns.
type Comment struct {
	CreatedAt time.Time  `json:"created_at"`
	Text      string     `json:"text"`
	Author    string     `json:"author"`
	Replies   []*Comment `json:"replies"`
	Votes     int        `json:"votes"`
	ByOP      bool       `json:"by_op"`
	Exemplary bool       `json:"exemplary"`
	Removed   bool       `json:"removed,omitempty"` // Deleted or removed placeholder; replies are kept
}

// Walk visits c and its replies depth-first, in document order.
// depth is 0 for c itself.
func (c *Comment) Walk(fn func(c *Comment, depth int)) {
	c.walk(fn, 0)
}

func (c *Comment) walk(fn func(*Comment, int), depth int) {
	fn(c, depth)
	for _, r := range c.Replies {
		r.walk(fn, depth+1)
	}
}

// GroupFromPath extracts the group name from a topic link such as
// "/~comp/1abc/some_slug" or "https://tildes.net/~comp/1abc/".
// Returns "" when the link does not point into a group.
func GroupFromPath(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	seg, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !strings.HasPrefix(seg, "~") {
		return ""
	}
	return strings.TrimPrefix(seg, "~")
}
