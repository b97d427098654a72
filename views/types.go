package views

import (
	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/search"
)

// Site holds site-wide settings. Every handler passes this to templates so
// nothing is hardcoded.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	Email       string
	Language    string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	CSRFToken   string
}

// GridPage is one rendering of a category's post grid. Posts holds the
// visible window; NextURL fetches the next window and is empty once
// everything is shown.
type GridPage struct {
	Category   string
	Categories []string
	Posts      []content.Post
	Total      int
	NextURL    string
}

// PostPage is a single post with its neighbours.
type PostPage struct {
	Post    content.Post
	Related []content.Post
}

// SearchPage lists the results for a query.
type SearchPage struct {
	Query   string
	Results []search.Result
}
