package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tildes-reader/pkg/tildes"
)

func samplePost() *tildes.Post {
	return &tildes.Post{
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Group:     "comp",
		ID:        "b2",
		Title:     "Ask: favourite editor?",
		Author:    "bob",
		Text:      "Which editor do you use?",
		Tags:      []string{"ask", "editors"},
		Votes:     1,
		Comments: []*tildes.Comment{
			{Author: "bob", Text: "Level one", Votes: 2, ByOP: true, Replies: []*tildes.Comment{
				{Author: "carol", Text: "Level two", Votes: 15, Exemplary: true},
			}},
		},
	}
}

func TestRenderPostTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPost(&buf, samplePost(), formatTree))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Ask: favourite editor?\n"))
	assert.Contains(t, out, "~comp/b2 by bob, 2024-05-01 09:00:00, 1 votes")
	assert.Contains(t, out, "tags: ask, editors")
	assert.NotContains(t, out, "link:")
	assert.Contains(t, out, "2 comments")
	assert.Contains(t, out, "\nbob (2 votes) [OP]\n  Level one\n")
	assert.Contains(t, out, "\n  carol (15 votes) [exemplary]\n    Level two\n")
}

func TestRenderPostRemovedComment(t *testing.T) {
	post := samplePost()
	post.Comments = append(post.Comments, &tildes.Comment{
		Removed: true,
		Replies: []*tildes.Comment{{Author: "dave", Text: "still here", Votes: 1}},
	})

	var buf bytes.Buffer
	require.NoError(t, renderPost(&buf, post, formatTree))
	out := buf.String()

	assert.Contains(t, out, "4 comments")
	assert.Contains(t, out, "\n(unknown) (0 votes) [removed]\n")
	assert.Contains(t, out, "\n  dave (1 votes)\n    still here\n")
}

func TestRenderPostJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPost(&buf, samplePost(), formatJSON))

	var got tildes.Post
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Level two", got.Comments[0].Replies[0].Text)
	assert.NotContains(t, buf.String(), `"link"`)
}

func TestRenderTopicsTable(t *testing.T) {
	topics := []*tildes.Topic{
		tildes.NewTopic("a1", "comp", "Rust 2.0", "https://example.com", "/~comp/a1/rust", "alice", 15, 12, time.Time{}),
		tildes.NewTopic("b2", "comp", "Ask", "/~comp/b2/ask", "/~comp/b2/ask", "bob", 1, 1, time.Time{}),
	}

	var buf bytes.Buffer
	require.NoError(t, renderTopics(&buf, topics, formatTable))
	out := buf.String()

	assert.Contains(t, out, "Rust 2.0 [link]")
	assert.Contains(t, out, "~comp")
	assert.NotContains(t, out, "Ask [link]")
}

func TestRenderEmptyTopicsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTopics(&buf, nil, formatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderGroups(&buf, []string{"comp", "music"}, formatJSON))
	assert.JSONEq(t, `["comp","music"]`, buf.String())

	buf.Reset()
	require.NoError(t, renderGroups(&buf, []string{"comp"}, formatTable))
	assert.Contains(t, buf.String(), "~comp")
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("json", formatTable, formatJSON))
	assert.Error(t, checkFormat("yaml", formatTable, formatJSON))
}
