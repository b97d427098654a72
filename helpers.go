package inkblog

import (
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/eringen/inkblog/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterRelatedPosts returns up to limit posts sharing at least one category
// with current, in the order of posts.
func FilterRelatedPosts(current content.Post, posts []content.Post, limit int) []content.Post {
	cats := make(map[string]struct{})
	for _, c := range current.Categories() {
		cats[c] = struct{}{}
	}
	var related []content.Post
	for _, p := range posts {
		if len(related) == limit {
			break
		}
		if p.Slug == current.Slug {
			continue
		}
		for _, c := range p.Categories() {
			if _, ok := cats[c]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
