// Package content loads blog posts from Markdown/MDX files with YAML frontmatter
// and exposes them as immutable, date-ordered sets.
package content

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested post or category does not exist
// among the published content.
var ErrNotFound = errors.New("content: not found")

// CategoryAll is the synthetic category listing every published post.
const CategoryAll = "all"

// Summary is the read-only view of a post used for search and listings.
type Summary struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	URL         string
	Published   bool
}

// Post is a single piece of content loaded from disk.
type Post struct {
	Summary
	Slug        string
	Author      string
	Image       string // cover image path, relative to the post file or absolute under the static dir
	PublishedAt time.Time
	UpdatedAt   time.Time
	Body        string
	Path        string // source file path
}

// Categories returns the category slugs of the post's tags, deduplicated, in tag order.
func (p Post) Categories() []string {
	seen := make(map[string]struct{}, len(p.Tags))
	var out []string
	for _, t := range p.Tags {
		s := Slugify(t)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Set is an immutable snapshot of loaded content. All slices returned by a Set
// are shared and must not be modified by callers.
type Set struct {
	all        []Post
	published  []Post
	bySlug     map[string]int
	categories []string
	errs       []*LoadError
}

// NewSet orders posts newest first (slug ascending on equal dates) and indexes them.
func NewSet(posts []Post) *Set {
	all := make([]Post, len(posts))
	copy(all, posts)
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].PublishedAt.Equal(all[j].PublishedAt) {
			return all[i].PublishedAt.After(all[j].PublishedAt)
		}
		return all[i].Slug < all[j].Slug
	})

	s := &Set{all: all, bySlug: make(map[string]int, len(all))}
	cats := make(map[string]struct{})
	for i, p := range all {
		s.bySlug[p.Slug] = i
		if !p.Published {
			continue
		}
		s.published = append(s.published, p)
		for _, c := range p.Categories() {
			cats[c] = struct{}{}
		}
	}
	s.categories = make([]string, 0, len(cats)+1)
	for c := range cats {
		if c != CategoryAll {
			s.categories = append(s.categories, c)
		}
	}
	sort.Strings(s.categories)
	s.categories = append([]string{CategoryAll}, s.categories...)
	return s
}

// All returns every loaded post, drafts included.
func (s *Set) All() []Post { return s.all }

// Published returns published posts, newest first.
func (s *Set) Published() []Post { return s.published }

// Summaries returns the summary of every loaded post. The Published flag is
// carried so consumers can filter.
func (s *Set) Summaries() []Summary {
	out := make([]Summary, len(s.all))
	for i, p := range s.all {
		out[i] = p.Summary
	}
	return out
}

// Post returns the published post with the given slug.
func (s *Set) Post(slug string) (Post, error) {
	i, ok := s.bySlug[strings.Trim(slug, "/")]
	if !ok || !s.all[i].Published {
		return Post{}, ErrNotFound
	}
	return s.all[i], nil
}

// Categories returns "all" followed by the sorted category slugs of published posts.
func (s *Set) Categories() []string { return s.categories }

// InCategory returns the published posts in category, newest first. The "all"
// category returns the shared Published slice.
func (s *Set) InCategory(category string) ([]Post, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == CategoryAll {
		return s.published, nil
	}
	if !s.hasCategory(category) {
		return nil, ErrNotFound
	}
	var out []Post
	for _, p := range s.published {
		for _, c := range p.Categories() {
			if c == category {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (s *Set) hasCategory(category string) bool {
	i := sort.SearchStrings(s.categories[1:], category)
	return i < len(s.categories)-1 && s.categories[1+i] == category
}

// Errors returns the files that were skipped during loading.
func (s *Set) Errors() []*LoadError { return s.errs }
