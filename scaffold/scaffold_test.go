package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eringen/inkblog/content"
)

func TestNewPostLoads(t *testing.T) {
	dir := t.TempDir()
	path, err := NewPost(dir, PostData{
		Title:     `Hello "World"`,
		Author:    "Ada",
		Date:      "2024-05-06",
		Tags:      []string{"Go", "web dev"},
		Published: true,
	})
	if err != nil {
		t.Fatalf("NewPost: %v", err)
	}
	if filepath.Base(path) != "hello-world.mdx" {
		t.Errorf("path = %s", path)
	}

	set, err := content.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Errors()) != 0 {
		t.Fatalf("generated post is invalid: %v", set.Errors()[0])
	}
	p, err := set.Post("hello-world")
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != `Hello "World"` || p.Author != "Ada" || p.PublishedAt.Format("2006-01-02") != "2024-05-06" {
		t.Errorf("post = %+v", p)
	}
	if got := strings.Join(p.Categories(), ","); got != "go,web-dev" {
		t.Errorf("categories = %s", got)
	}
}

func TestNewPostDraftAndExisting(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewPost(dir, PostData{Title: "Draft"}); err != nil {
		t.Fatal(err)
	}
	set, err := content.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.All()) != 1 || len(set.Published()) != 0 {
		t.Errorf("draft: all=%d published=%d", len(set.All()), len(set.Published()))
	}

	if _, err := NewPost(dir, PostData{Title: "Draft"}); err == nil {
		t.Error("expected error for an existing post")
	}
	if _, err := NewPost(dir, PostData{Title: "!!!"}); err == nil {
		t.Error("expected error for a title without a slug")
	}
}

func TestNewSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")
	var out bytes.Buffer
	if err := NewSite(dir, SiteData{Date: "2024-01-02"}, &out); err != nil {
		t.Fatalf("NewSite: %v", err)
	}

	for _, name := range []string{"inkblog.yaml", ".env.example", "content/hello-world.mdx", "public/.gitkeep"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	cfg, err := os.ReadFile(filepath.Join(dir, "inkblog.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cfg), `name: "My Blog"`) {
		t.Errorf("site name not rendered:\n%s", cfg)
	}
	if !strings.Contains(out.String(), "created") {
		t.Error("no progress output")
	}

	set, err := content.Load(filepath.Join(dir, "content"))
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Published()) != 1 || len(set.Errors()) != 0 {
		t.Errorf("starter post: published=%d errors=%v", len(set.Published()), set.Errors())
	}

	if err := NewSite(dir, SiteData{}, &out); err == nil {
		t.Error("expected error for an existing directory")
	}
}
