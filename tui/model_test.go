package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/search"
	"github.com/eringen/inkblog/viewcount"
)

type staticSource struct {
	set *content.Set
	ix  *search.Index
}

func newSource(posts ...content.Post) *staticSource {
	set := content.NewSet(posts)
	return &staticSource{set: set, ix: search.Build(set.Summaries())}
}

func (s *staticSource) Snapshot() (*content.Set, *search.Index, error) { return s.set, s.ix, nil }

type fakeStore struct {
	mu    sync.Mutex
	calls int
	count int64
	fail  bool
}

func (s *fakeStore) Increment(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return &viewcount.TransientError{Op: "increment", Slug: slug, Err: errors.New("offline")}
	}
	s.count++
	return nil
}

func (s *fakeStore) Count(context.Context, string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

func (s *fakeStore) Close() error { return nil }

func post(slug, title string, day int, tags ...string) content.Post {
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
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Body:        "import X from 'x'\n\n# " + title + "\n\nbody text",
	}
}

func series(n int) []content.Post {
	posts := make([]content.Post, n)
	for i := range posts {
		posts[i] = post(fmt.Sprintf("p%02d", i), fmt.Sprintf("Post %02d", i), n-i, "go")
	}
	return posts
}

func newModel(t *testing.T, src Source, store viewcount.Store) *Model {
	t.Helper()
	m, err := New(src, store, Options{LoadDelay: time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// deliver runs cmd and feeds the resulting browser message back to m.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	switch msg.(type) {
	case loadTickMsg, viewsMsg:
		m.Update(msg)
	default:
		t.Fatalf("unexpected message %T", msg)
	}
}

func TestTailRows(t *testing.T) {
	require.Equal(t, 1, tailRows(1))
	require.Equal(t, 1, tailRows(9))
	require.Equal(t, 1, tailRows(10))
	require.Equal(t, 2, tailRows(18))
	require.Equal(t, 2, tailRows(20))
}

func TestCursorRevealsNextPage(t *testing.T) {
	m := newModel(t, newSource(series(20)...), &fakeStore{})
	require.Equal(t, 9, m.win.Count())

	for i := 0; i < 7; i++ {
		require.Nil(t, press(m, tea.KeyDown), "row %d is above the sentinel", i+1)
	}
	require.False(t, m.win.Loading())

	tick := press(m, tea.KeyDown)
	require.Equal(t, 8, m.cursor)
	require.True(t, m.win.Loading())
	require.Contains(t, m.View(), "loading")

	// Signals while loading are ignored.
	require.Nil(t, press(m, tea.KeyDown))
	require.Nil(t, press(m, tea.KeyUp))
	require.Nil(t, press(m, tea.KeyDown))
	require.Equal(t, 9, m.win.Count())

	deliver(t, m, tick)
	require.False(t, m.win.Loading())
	require.Equal(t, 18, m.win.Count())
	require.True(t, m.win.HasMore())

	for m.cursor < 15 {
		require.Nil(t, press(m, tea.KeyDown))
	}
	deliver(t, m, press(m, tea.KeyDown))
	require.Equal(t, 20, m.win.Count())
	require.False(t, m.win.HasMore())

	for i := 0; i < 5; i++ {
		require.Nil(t, press(m, tea.KeyDown), "nothing left to reveal")
	}
	require.Equal(t, 19, m.cursor)
}

func TestStaleTickIsDiscarded(t *testing.T) {
	m := newModel(t, newSource(series(20)...), &fakeStore{})
	for m.cursor < 7 {
		press(m, tea.KeyDown)
	}
	tick := press(m, tea.KeyDown)
	require.True(t, m.win.Loading())

	// Switching category replaces the items before the tick arrives.
	press(m, tea.KeyTab)
	require.Equal(t, "go", m.categories[m.catIdx])
	require.False(t, m.win.Loading())

	deliver(t, m, tick)
	require.Equal(t, 9, m.win.Count(), "replaced window must not advance")
}

func TestCategorySwitchResetsWindow(t *testing.T) {
	posts := append(series(12), post("w1", "Web One", 100, "web"), post("w2", "Web Two", 101, "web"))
	m := newModel(t, newSource(posts...), &fakeStore{})
	require.Equal(t, []string{"all", "go", "web"}, m.categories)
	require.Equal(t, 9, m.win.Count())

	press(m, tea.KeyDown)
	press(m, tea.KeyShiftTab)
	require.Equal(t, "web", m.categories[m.catIdx])
	require.Equal(t, 0, m.cursor)
	require.Equal(t, 2, m.win.Count())
	require.False(t, m.win.HasMore())

	press(m, tea.KeyTab)
	require.Equal(t, "all", m.categories[m.catIdx])
	require.Equal(t, 9, m.win.Count())
}

func searchPosts() []content.Post {
	return []content.Post{
		post("ai", "AI Tools", 3),
		post("bc", "Blockchain Basics", 2),
		post("eth", "Ethereum Guide", 1, "blockchain"),
	}
}

func TestOverlaySearchOpensPost(t *testing.T) {
	store := &fakeStore{}
	m := newModel(t, newSource(searchPosts()...), store)

	require.Nil(t, press(m, tea.KeyCtrlK))
	require.True(t, m.ov.Open())
	typeText(m, "ethereum")
	require.Equal(t, "ethereum", m.ov.Query())
	require.NotEmpty(t, m.ov.Results())
	require.Equal(t, "Ethereum Guide", m.ov.Results()[0].Item.Title)
	require.Contains(t, m.View(), "Ethereum Guide")

	visit := press(m, tea.KeyEnter)
	require.False(t, m.ov.Open())
	require.Equal(t, modePost, m.mode)
	require.Equal(t, "eth", m.post.Slug)
	deliver(t, m, visit)
	require.Equal(t, 1, store.calls)
	view := m.View()
	require.Contains(t, view, "1 view")
	require.NotContains(t, view, "import X")

	// Reading the same post again in this session does not count.
	press(m, tea.KeyEsc)
	require.Equal(t, modeList, m.mode)
	for m.win.Displayed()[m.cursor].Slug != "eth" {
		press(m, tea.KeyDown)
	}
	deliver(t, m, press(m, tea.KeyEnter))
	require.Equal(t, 1, store.calls)
}

func TestOverlayKeysWhileClosed(t *testing.T) {
	m := newModel(t, newSource(searchPosts()...), &fakeStore{})
	press(m, tea.KeyEsc)
	require.False(t, m.ov.Open())
	require.Equal(t, modeList, m.mode)

	press(m, tea.KeyCtrlK)
	typeText(m, "zzz")
	require.Empty(t, m.ov.Results())
	require.Contains(t, m.View(), "no results")
	require.Nil(t, press(m, tea.KeyEnter))
	require.True(t, m.ov.Open())

	press(m, tea.KeyEsc)
	require.False(t, m.ov.Open())
	require.Empty(t, m.input.Value())
}

func TestViewErrorShownInline(t *testing.T) {
	store := &fakeStore{fail: true}
	m := newModel(t, newSource(searchPosts()...), store)

	deliver(t, m, press(m, tea.KeyEnter))
	require.Contains(t, m.View(), "views unavailable")

	store.fail = false
	_, retry := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	deliver(t, m, retry)
	require.Contains(t, m.View(), "1 view")
	require.Equal(t, 2, store.calls)
}

func TestContentReload(t *testing.T) {
	src := newSource(series(20)...)
	m := newModel(t, src, &fakeStore{})
	for m.cursor < 8 {
		press(m, tea.KeyDown)
	}

	// Same snapshot: nothing resets.
	m.Update(ContentChangedMsg{})
	require.Equal(t, 8, m.cursor)

	fresh := newSource(append(series(20), post("zeta", "Zeta Release", 50, "go"))...)
	src.set, src.ix = fresh.set, fresh.ix
	m.Update(ContentChangedMsg{})
	require.Equal(t, 0, m.cursor)
	require.Equal(t, 21, m.win.Len())
	require.Equal(t, 9, m.win.Count())

	press(m, tea.KeyCtrlK)
	typeText(m, "zeta")
	require.NotEmpty(t, m.ov.Results())
	require.Equal(t, "zeta", m.ov.Results()[0].Item.ID)
}

func TestZeroLoadDelayRevealsAtOnce(t *testing.T) {
	m, err := New(newSource(series(20)...), &fakeStore{}, Options{})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	for m.cursor < 7 {
		require.Nil(t, press(m, tea.KeyDown))
	}
	require.Nil(t, press(m, tea.KeyDown), "no timer to schedule")
	require.False(t, m.win.Loading())
	require.Equal(t, 18, m.win.Count())
}
