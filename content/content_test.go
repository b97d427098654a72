package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eringen/inkblog/internal/testutil"
)

func slugs(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestLoadOrdersNewestFirst(t *testing.T) {
	dir := testutil.ContentDir(t,
		testutil.PostFixture{Slug: "old", Title: "Old", Date: "2023-05-01"},
		testutil.PostFixture{Slug: "new", Title: "New", Date: "2024-03-01"},
		testutil.PostFixture{Slug: "ai/mid", Title: "Mid", Date: "2023-12-24"},
	)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"new", "ai/mid", "old"}, slugs(set.Published())); diff != "" {
		t.Errorf("Published order mismatch (-want +got):\n%s", diff)
	}
	if len(set.Errors()) != 0 {
		t.Errorf("unexpected load errors: %v", set.Errors())
	}
}

func TestLoadParsesFrontmatter(t *testing.T) {
	dir := testutil.ContentDir(t, testutil.PostFixture{
		Slug:        "guides/ethereum",
		Title:       "Ethereum Guide",
		Description: "All about ether",
		Date:        "2024-02-10",
		Tags:        []string{"Web3", "Smart Contracts"},
		Image:       "../../public/blogs/eth.png",
		Body:        "# Hello\n\nBody text.",
	})

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := set.Post("guides/ethereum")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	want := Summary{
		ID:          "guides/ethereum",
		Title:       "Ethereum Guide",
		Description: "All about ether",
		Tags:        []string{"Web3", "Smart Contracts"},
		URL:         "/blogs/guides/ethereum/",
		Published:   true,
	}
	if diff := cmp.Diff(want, got.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
	if got.Author != "tester" {
		t.Errorf("Author = %q, want %q", got.Author, "tester")
	}
	if !got.PublishedAt.Equal(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishedAt = %v", got.PublishedAt)
	}
	if !got.UpdatedAt.Equal(got.PublishedAt) {
		t.Errorf("UpdatedAt should default to PublishedAt, got %v", got.UpdatedAt)
	}
	if got.Body != "# Hello\n\nBody text." {
		t.Errorf("Body = %q", got.Body)
	}
	if diff := cmp.Diff([]string{"web3", "smart-contracts"}, got.Categories()); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSkipsInvalidFiles(t *testing.T) {
	dir := testutil.ContentDir(t, testutil.PostFixture{Slug: "good", Title: "Good"})
	if err := os.WriteFile(filepath.Join(dir, "nofm.md"), []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := "---\ntitle: Missing description\npublishedAt: 2024-01-01\nauthor: x\n---\nbody"
	if err := os.WriteFile(filepath.Join(dir, "missing.mdx"), []byte(missing), 0o644); err != nil {
		t.Fatal(err)
	}
	badDate := "---\ntitle: T\ndescription: D\npublishedAt: yesterday\nauthor: x\n---\nbody"
	if err := os.WriteFile(filepath.Join(dir, "baddate.mdx"), []byte(badDate), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"good"}, slugs(set.All())); diff != "" {
		t.Errorf("loaded posts mismatch (-want +got):\n%s", diff)
	}
	if len(set.Errors()) != 3 {
		t.Fatalf("Errors count = %d, want 3: %v", len(set.Errors()), set.Errors())
	}
	for _, e := range set.Errors() {
		if filepath.Base(e.Path) == "nofm.md" && !errors.Is(e, errNoFrontmatter) {
			t.Errorf("nofm.md error = %v, want errNoFrontmatter", e.Err)
		}
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestDraftsAreHidden(t *testing.T) {
	dir := testutil.ContentDir(t,
		testutil.PostFixture{Slug: "live", Title: "Live", Tags: []string{"go"}},
		testutil.PostFixture{Slug: "draft", Title: "Draft", Tags: []string{"secret"}, Draft: true},
	)
	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(set.All()) != 2 {
		t.Errorf("All count = %d, want 2", len(set.All()))
	}
	if diff := cmp.Diff([]string{"live"}, slugs(set.Published())); diff != "" {
		t.Errorf("Published mismatch (-want +got):\n%s", diff)
	}
	if _, err := set.Post("draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Post(draft) error = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff([]string{"all", "go"}, set.Categories()); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
	if _, err := set.InCategory("secret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("InCategory(secret) error = %v, want ErrNotFound", err)
	}
}

func TestInCategory(t *testing.T) {
	set := NewSet([]Post{
		{Summary: Summary{Tags: []string{"AI Tools"}, Published: true}, Slug: "a", PublishedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{Summary: Summary{Tags: []string{"web3"}, Published: true}, Slug: "b", PublishedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Summary: Summary{Tags: []string{"ai tools", "web3"}, Published: true}, Slug: "c", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})

	got, err := set.InCategory("ai-tools")
	if err != nil {
		t.Fatalf("InCategory failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, slugs(got)); diff != "" {
		t.Errorf("ai-tools mismatch (-want +got):\n%s", diff)
	}

	all, err := set.InCategory("all")
	if err != nil {
		t.Fatalf("InCategory(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all count = %d, want 3", len(all))
	}
	again, _ := set.InCategory("ALL")
	if &again[0] != &all[0] {
		t.Error("all category should return the shared published slice")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Go & Rust!! ", "go-rust"},
		{"AI 개발", "ai-개발"},
		{"Next.js 14", "next-js-14"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWatchReportsChanges(t *testing.T) {
	dir := testutil.ContentDir(t, testutil.PostFixture{Slug: "first", Title: "First"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, logger, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	testutil.WritePost(t, dir, testutil.PostFixture{Slug: "nested/second", Title: "Second"})

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}
