package sitecounts_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendant/site-counts/pkg/sitecounts"
	"github.com/tendant/site-counts/pkg/sitecounts/repo/memory"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// base is inside the default 9-17 window
var base = time.Date(2024, time.March, 12, 16, 30, 0, 0, time.UTC)

func newRepo(t *testing.T, types ...sitecounts.ContentType) *memory.Repository {
	t.Helper()
	repo := memory.New()
	for _, ct := range types {
		require.NoError(t, repo.RegisterType(context.Background(), ct))
	}
	return repo
}

func postsAndPages() []sitecounts.ContentType {
	return []sitecounts.ContentType{
		{Slug: "post", Name: "Posts", Public: true},
		{Slug: "page", Name: "Pages", Public: true},
	}
}

// fooBazPost returns a published post matching the default list query.
// Lower ids are published later, so they come first.
func fooBazPost(id int64, title string) sitecounts.Item {
	return sitecounts.Item{
		ID:          sitecounts.ItemID(id),
		Type:        "post",
		Title:       title,
		Status:      sitecounts.ItemStatusPublished,
		PublishedAt: base.Add(-time.Duration(id) * time.Minute),
		Categories:  []string{"baz"},
		Tags:        []string{"foo"},
	}
}

func putItems(t *testing.T, repo *memory.Repository, items ...sitecounts.Item) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, repo.PutItem(context.Background(), item))
	}
}

func newBlock(t *testing.T, repo sitecounts.Repository, opts ...sitecounts.Option) sitecounts.Block {
	t.Helper()
	b, err := sitecounts.New(append([]sitecounts.Option{sitecounts.WithRepository(repo)}, opts...)...)
	require.NoError(t, err)
	return b
}

func render(t *testing.T, b sitecounts.Block, rc sitecounts.RenderContext) string {
	t.Helper()
	result, err := b.Render(context.Background(), sitecounts.Attributes{}, "", rc)
	require.NoError(t, err)
	return result.Markup
}

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func liTexts(ul *html.Node) []string {
	var entries []string
	for li := ul.FirstChild; li != nil; li = li.NextSibling {
		if li.Type == html.ElementNode && li.DataAtom == atom.Li {
			entries = append(entries, textOf(li))
		}
	}
	return entries
}

// countLines returns the entries of the count summary list.
func countLines(t *testing.T, markup string) []string {
	t.Helper()
	ul := findFirst(parse(t, markup), atom.Ul)
	require.NotNil(t, ul)
	return liTexts(ul)
}

// listEntries returns the titles of the filtered list, or nil when the
// list fragment is empty.
func listEntries(t *testing.T, markup string) []string {
	t.Helper()
	h2 := findFirst(parse(t, markup), atom.H2)
	if h2 == nil {
		return nil
	}
	for n := h2.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.Ul {
			entries := liTexts(n)
			if entries == nil {
				entries = []string{}
			}
			return entries
		}
	}
	t.Fatalf("heading without list in %s", markup)
	return nil
}

func findAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
