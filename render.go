package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kr/pretty"

	"tildes-reader/pkg/tildes"
)

const (
	formatTable  = "table"
	formatTree   = "tree"
	formatJSON   = "json"
	formatPretty = "pretty"
)

func renderGroups(w io.Writer, groups []string, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, groups)
	case formatPretty:
		_, err := pretty.Fprintf(w, "%# v\n", groups)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Group"})
	for _, g := range groups {
		t.AppendRow(table.Row{"~" + g})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func renderTopics(w io.Writer, topics []*tildes.Topic, format string) error {
	switch format {
	case formatJSON:
		if topics == nil {
			topics = []*tildes.Topic{}
		}
		return writeJSON(w, topics)
	case formatPretty:
		_, err := pretty.Fprintf(w, "%# v\n", topics)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Group", "Votes", "Comments", "Author", "Posted", "Title"})
	for _, topic := range topics {
		title := topic.Title
		if !topic.SelfPost {
			title += " [link]"
		}
		t.AppendRow(table.Row{
			topic.ID,
			"~" + topic.Group,
			topic.Votes,
			topic.CommentCount,
			topic.Author,
			topic.CreatedAt.Format(time.DateTime),
			title,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func renderPost(w io.Writer, post *tildes.Post, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, post)
	case formatPretty:
		_, err := pretty.Fprintf(w, "%# v\n", post)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", post.Title)
	fmt.Fprintf(&b, "~%s/%s by %s, %s, %d votes\n", post.Group, post.ID, post.Author, post.CreatedAt.Format(time.DateTime), post.Votes)
	if len(post.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(post.Tags, ", "))
	}
	if post.HasLink() {
		fmt.Fprintf(&b, "link: %s\n", post.Link)
	}
	if post.HasText() {
		fmt.Fprintf(&b, "\n%s\n", post.Text)
	}
	fmt.Fprintf(&b, "\n%d comments\n", post.CommentCount())

	for _, c := range post.Comments {
		c.Walk(func(c *tildes.Comment, depth int) {
			indent := strings.Repeat("  ", depth)
			author := c.Author
			if author == "" {
				author = "(unknown)"
			}
			fmt.Fprintf(&b, "\n%s%s (%d votes)%s\n", indent, author, c.Votes, commentMarks(c))
			for _, line := range strings.Split(c.Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					fmt.Fprintf(&b, "%s  %s\n", indent, line)
				}
			}
		})
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func commentMarks(c *tildes.Comment) string {
	var marks []string
	if c.ByOP {
		marks = append(marks, "OP")
	}
	if c.Exemplary {
		marks = append(marks, "exemplary")
	}
	if c.Removed {
		marks = append(marks, "removed")
	}
	if len(marks) == 0 {
		return ""
	}
	return " [" + strings.Join(marks, ", ") + "]"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
