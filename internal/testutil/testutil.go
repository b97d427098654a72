// Package testutil provides shared helpers for building content directories in tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PostFixture describes a post file to write into a test content directory.
type PostFixture struct {
	Slug        string // relative path without extension, e.g. "ai/tools"
	Title       string
	Description string
	Date        string // publishedAt, YYYY-MM-DD
	Tags        []string
	Draft       bool
	Image       string
	Body        string
}

// WritePost writes fx as an .mdx file below dir and returns its path.
func WritePost(t *testing.T, dir string, fx PostFixture) string {
	t.Helper()
	if fx.Date == "" {
		fx.Date = "2024-01-01"
	}
	if fx.Description == "" {
		fx.Description = fx.Title + " description"
	}
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", fx.Title)
	fmt.Fprintf(&b, "description: %q\n", fx.Description)
	fmt.Fprintf(&b, "publishedAt: %q\n", fx.Date)
	b.WriteString("author: tester\n")
	if fx.Image != "" {
		fmt.Fprintf(&b, "image: %q\n", fx.Image)
	}
	if fx.Draft {
		b.WriteString("isPublished: false\n")
	}
	if len(fx.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range fx.Tags {
			fmt.Fprintf(&b, "  - %q\n", tag)
		}
	}
	b.WriteString("---\n\n")
	b.WriteString(fx.Body)

	path := filepath.Join(dir, filepath.FromSlash(fx.Slug)+".mdx")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ContentDir creates a temporary content directory populated with posts.
func ContentDir(t *testing.T, posts ...PostFixture) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range posts {
		WritePost(t, dir, p)
	}
	return dir
}
