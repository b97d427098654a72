package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/search"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func samplePost(slug, title string, tags ...string) content.Post {
	return content.Post{
		Summary: content.Summary{
			ID:          slug,
			Title:       title,
			Description: title + " description",
			Tags:        tags,
			URL:         "/blogs/" + slug + "/",
			Published:   true,
		},
		Slug:        slug,
		Author:      "tester",
		PublishedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestGridSentinel(t *testing.T) {
	page := GridPage{
		Category: "all",
		Posts:    []content.Post{samplePost("a", "First"), samplePost("b", "Second")},
		NextURL:  "/categories/all/?page=1&partial=grid",
	}
	got := renderString(t, Grid(page))
	if strings.Count(got, `class="card"`) != 2 {
		t.Errorf("expected 2 cards: %s", got)
	}
	if !strings.Contains(got, `data-next="/categories/all/?page=1&amp;partial=grid"`) {
		t.Errorf("sentinel missing next url: %s", got)
	}
	if !strings.Contains(got, `<a href="/categories/all/?page=1">More posts</a>`) {
		t.Errorf("noscript fallback missing: %s", got)
	}

	page.NextURL = ""
	if got := renderString(t, Grid(page)); strings.Contains(got, "data-sentinel") {
		t.Errorf("no sentinel expected once everything is shown: %s", got)
	}
}

func TestPostCardEscapes(t *testing.T) {
	got := renderString(t, Grid(GridPage{Posts: []content.Post{samplePost("x", `<script>alert("x")</script>`)}}))
	if strings.Contains(got, "<script>alert") {
		t.Errorf("title not escaped: %s", got)
	}
}

func TestLayoutMeta(t *testing.T) {
	site := Site{Name: "Ink", URL: "https://ink.test", Description: "notes", Language: "ko"}
	meta := PageMeta{Title: "Hello", URL: "https://ink.test/blogs/hello/", OGType: "article", CSRFToken: "tok"}
	got := renderString(t, Layout(site, meta, templ.Raw("<p>body</p>")))

	for _, want := range []string{
		`<html lang="ko">`,
		`<title>Hello | Ink</title>`,
		`<meta name="csrf-token" content="tok">`,
		`<link rel="canonical" href="https://ink.test/blogs/hello/">`,
		`<meta property="og:type" content="article">`,
		`<p>body</p>`,
		`id="search-overlay"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("layout missing %q", want)
		}
	}
}

func TestPostPage(t *testing.T) {
	site := Site{Name: "Ink", URL: "https://ink.test"}
	post := samplePost("guides/eth", "Ethereum Guide", "Blockchain", "Web 3")
	post.Image = "cover.png"
	got := renderString(t, Post(site, PageMeta{Title: post.Title}, PostPage{
		Post:    post,
		Related: []content.Post{samplePost("bc", "Blockchain Basics", "blockchain")},
	}, templ.Raw("<p>content</p>")))

	for _, want := range []string{
		`<h1>Ethereum Guide</h1>`,
		`data-slug="guides/eth"`,
		`src="/thumbs/guides/eth"`,
		`href="/categories/web-3/"`,
		`March 5, 2024`,
		`Related posts`,
		`"@type":"BlogPosting"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestSearchPage(t *testing.T) {
	site := Site{Name: "Ink"}
	empty := renderString(t, Search(site, PageMeta{}, SearchPage{Query: "zzz"}))
	if !strings.Contains(empty, "No posts match") {
		t.Errorf("expected empty message: %s", empty)
	}
	res := renderString(t, Search(site, PageMeta{}, SearchPage{
		Query:   "eth",
		Results: []search.Result{{Item: samplePost("eth", "Ethereum Guide").Summary}},
	}))
	if !strings.Contains(res, `<a href="/blogs/eth/"><strong>Ethereum Guide</strong>`) {
		t.Errorf("result missing: %s", res)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://ink.test", nil, "https://ink.test"},
		{"https://ink.test", []string{"blogs", "a/b"}, "https://ink.test/blogs/a/b/"},
		{"https://ink.test/sub", []string{"feed.xml"}, "https://ink.test/sub/feed.xml/"},
	}
	for _, tt := range tests {
		if got := buildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("buildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}
