package scraper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selectors is the only place that knows the site's markup.
// Relative selectors are evaluated against the node named in the field comment.
type Selectors struct {
	// Group index page.
	GroupLinks string
	GroupSigil string

	// Listing pages. Topic fields are relative to one Topics node.
	Topics            string
	TopicIDAttr       string
	TopicIDPrefix     string
	TopicTitleLink    string
	TopicVotes        string
	TopicTime         string
	TopicAuthorAttr   string
	TopicCommentsLink string
	TopicCommentsNew  string // Unread marker inside TopicCommentsLink

	// Topic page.
	PostTitle  string
	PostAuthor string
	PostTime   string
	PostVotes  string
	PostTags   string
	PostLink   string
	PostText   string

	// Comments. CommentBody and CommentReplies are direct children of a comment article;
	// the remaining comment fields are relative to CommentBody.
	Comments       string
	CommentBody    string
	CommentText    string
	CommentAuthor  string
	CommentTime    string
	CommentVotes   string
	CommentReplies string
	CommentArticle string

	// Class tokens on a comment article. Deleted and removed comments keep
	// their place in the tree but carry no author, time or votes.
	OPClass        string
	ExemplaryClass string
	DeletedClass   string
	RemovedClass   string

	TimeAttr string
	HrefAttr string
}

// DefaultSelectors returns the query table for the live site.
func DefaultSelectors() *Selectors {
	return &Selectors{
		GroupLinks: "ol.group-list > li > a",
		GroupSigil: "~",

		Topics:            ".topic-listing article",
		TopicIDAttr:       "id",
		TopicIDPrefix:     "topic-",
		TopicTitleLink:    ".topic-title a",
		TopicVotes:        ".topic-voting-votes",
		TopicTime:         "time",
		TopicAuthorAttr:   "data-topic-posted-by",
		TopicCommentsLink: ".topic-info-comments a",
		TopicCommentsNew:  ".topic-info-comments-new",

		PostTitle:  "article > header h1",
		PostAuthor: "article > header .link-user",
		PostTime:   "article > header time",
		PostVotes:  ".topic-voting-votes",
		PostTags:   ".topic-full-tags a",
		PostLink:   ".topic-full-link a",
		PostText:   "article > .topic-full-text",

		Comments:       "#comments > * > article",
		CommentBody:    ".comment-itself",
		CommentText:    ".comment-text",
		CommentAuthor:  ".link-user",
		CommentTime:    "time",
		CommentVotes:   ".comment-votes",
		CommentReplies: ".comment-tree-replies",
		CommentArticle: "article",

		OPClass:        "is-comment-by-op",
		ExemplaryClass: "is-comment-exemplary",
		DeletedClass:   "is-comment-deleted",
		RemovedClass:   "is-comment-removed",

		TimeAttr: "datetime",
		HrefAttr: "href",
	}
}

var errMissing = errors.New("node not found")

// ownText joins the text nodes that are direct children of the first node in sel.
// Text inside nested elements (badges, "new" markers) is ignored.
func ownText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for c := sel.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// textContent returns the trimmed text of the first node in sel and all its descendants.
func textContent(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

func requiredText(sel *goquery.Selection, field, pageURL string) (string, error) {
	if sel.Length() == 0 {
		return "", &ParseError{Field: field, URL: pageURL, Err: errMissing}
	}
	return ownText(sel), nil
}

func requiredAttr(sel *goquery.Selection, attr, field, pageURL string) (string, error) {
	v, ok := sel.First().Attr(attr)
	if !ok {
		return "", &ParseError{Field: field, URL: pageURL, Err: fmt.Errorf("attribute %q not found", attr)}
	}
	return v, nil
}

func requiredCount(sel *goquery.Selection, field, pageURL string) (int, error) {
	if sel.Length() == 0 {
		return 0, &ParseError{Field: field, URL: pageURL, Err: errMissing}
	}
	n, err := parseCount(ownText(sel))
	if err != nil {
		return 0, &ParseError{Field: field, URL: pageURL, Err: err}
	}
	return n, nil
}

// requiredCountExcept is requiredCount over the full text of sel,
// ignoring any descendants matching strip.
func requiredCountExcept(sel *goquery.Selection, strip, field, pageURL string) (int, error) {
	if sel.Length() == 0 {
		return 0, &ParseError{Field: field, URL: pageURL, Err: errMissing}
	}
	clone := sel.First().Clone()
	clone.Find(strip).Remove()
	n, err := parseCount(textContent(clone))
	if err != nil {
		return 0, &ParseError{Field: field, URL: pageURL, Err: err}
	}
	return n, nil
}

func requiredTime(sel *goquery.Selection, attr, field, pageURL string) (time.Time, error) {
	raw, err := requiredAttr(sel, attr, field, pageURL)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, URL: pageURL, Err: err}
	}
	return t, nil
}

// parseCount reads a count from text such as "15 votes" or "1 comment".
// Only the first whitespace-delimited token is considered.
func parseCount(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, errors.New("empty count")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
