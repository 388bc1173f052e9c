package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tildes-reader/pkg/tildes"
)

// Post fetches one topic page and parses it, comment tree included.
// The returned post is complete; no further requests are made for it.
func (s *Scraper) Post(ctx context.Context, group, id string) (*tildes.Post, error) {
	path := fmt.Sprintf("/~%s/%s/", url.PathEscape(group), url.PathEscape(id))
	doc, err := s.fetch(ctx, path, "fetch_topic_page")
	if err != nil {
		return nil, fmt.Errorf("fetch topic page: %w", err)
	}

	post, err := s.parsePost(doc, group, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Topic page parsed successfully",
		"url", doc.Url.String(),
		"title", post.Title,
		"top_level_comments", len(post.Comments),
		"total_comments", post.CommentCount())

	return post, nil
}

func (s *Scraper) parsePost(doc *goquery.Document, group, id string) (*tildes.Post, error) {
	sel := s.selectors
	pageURL := doc.Url.String()

	title, err := requiredText(doc.Find(sel.PostTitle).First(), "post title", pageURL)
	if err != nil {
		return nil, err
	}
	author, err := requiredText(doc.Find(sel.PostAuthor).First(), "post author", pageURL)
	if err != nil {
		return nil, err
	}
	created, err := requiredTime(doc.Find(sel.PostTime).First(), sel.TimeAttr, "post time", pageURL)
	if err != nil {
		return nil, err
	}
	votes, err := requiredCount(doc.Find(sel.PostVotes).First(), "post votes", pageURL)
	if err != nil {
		return nil, err
	}

	tags := []string{}
	doc.Find(sel.PostTags).Each(func(_ int, a *goquery.Selection) {
		if tag := ownText(a); tag != "" {
			tags = append(tags, tag)
		}
	})

	// Optional: link-only posts have no body and self-posts have no link.
	link, _ := doc.Find(sel.PostLink).First().Attr(sel.HrefAttr)
	text := textContent(doc.Find(sel.PostText))

	comments, err := s.parseComments(doc.Find(sel.Comments), pageURL)
	if err != nil {
		return nil, err
	}

	return &tildes.Post{
		CreatedAt: created,
		Group:     group,
		ID:        id,
		Title:     title,
		Author:    author,
		Link:      strings.TrimSpace(link),
		Text:      text,
		Tags:      tags,
		Comments:  comments,
		Votes:     votes,
	}, nil
}

// parseComments wraps each comment article in articles, recursing into its replies.
func (s *Scraper) parseComments(articles *goquery.Selection, pageURL string) ([]*tildes.Comment, error) {
	comments := make([]*tildes.Comment, 0, articles.Length())
	for i := range articles.Length() {
		c, err := s.parseComment(articles.Eq(i), pageURL)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (s *Scraper) parseComment(article *goquery.Selection, pageURL string) (*tildes.Comment, error) {
	sel := s.selectors
	replyArticles := article.ChildrenFiltered(sel.CommentReplies).Children().ChildrenFiltered(sel.CommentArticle)

	if article.HasClass(sel.DeletedClass) || article.HasClass(sel.RemovedClass) {
		replies, err := s.parseComments(replyArticles, pageURL)
		if err != nil {
			return nil, err
		}
		return &tildes.Comment{Replies: replies, Removed: true}, nil
	}

	body := article.ChildrenFiltered(sel.CommentBody)

	text := textContent(body.Find(sel.CommentText))
	author, err := requiredText(body.Find(sel.CommentAuthor).First(), "comment author", pageURL)
	if err != nil {
		return nil, err
	}
	created, err := requiredTime(body.Find(sel.CommentTime).First(), sel.TimeAttr, "comment time", pageURL)
	if err != nil {
		return nil, err
	}
	votes, err := requiredCount(body.Find(sel.CommentVotes).First(), "comment votes", pageURL)
	if err != nil {
		return nil, err
	}

	replies, err := s.parseComments(replyArticles, pageURL)
	if err != nil {
		return nil, err
	}

	return &tildes.Comment{
		CreatedAt: created,
		Text:      text,
		Author:    author,
		Replies:   replies,
		Votes:     votes,
		ByOP:      article.HasClass(sel.OPClass),
		Exemplary: article.HasClass(sel.ExemplaryClass),
	}, nil
}
