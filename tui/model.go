// Package tui is a terminal browser for a content directory. Posts of the
// current category are listed through an infinite-scroll window, ctrl+k opens
// the search overlay and reading a post counts a view once per session.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/overlay"
	"github.com/eringen/inkblog/search"
	"github.com/eringen/inkblog/viewcount"
	"github.com/eringen/inkblog/window"
)

// Source provides the current content set and its search index.
type Source interface {
	Snapshot() (*content.Set, *search.Index, error)
}

// Options configures the browser.
type Options struct {
	Title     string
	PageSize  int           // posts revealed per advance, default 9
	LoadDelay time.Duration // delay before a page is revealed; <= 0 reveals at once
	Timeout   time.Duration // view store calls, default 5s
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = "inkblog"
	}
	if o.PageSize < 1 {
		o.PageSize = 9
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
}

type mode int

const (
	modeList mode = iota
	modePost
)

// ContentChangedMsg tells the browser the content on disk changed and the
// source holds a fresh snapshot.
type ContentChangedMsg struct{}

// loadTickMsg fires the window timer with the given sequence number.
type loadTickMsg struct{ seq uint64 }

// viewsMsg carries the result of counting a view.
type viewsMsg struct {
	slug  string
	count int64
	err   error
}

// Model is the bubbletea model of the browser.
type Model struct {
	src     Source
	tracker *viewcount.Tracker
	opts    Options
	keys    keyMap
	ovKeys  overlay.Keymap
	styles  *Styles
	help    help.Model

	set        *content.Set
	categories []string
	catIdx     int

	clock    *loopClock
	sentinel *cursorSentinel
	win      *window.Window[content.Post]
	cursor   int
	offset   int

	ov    *overlay.State
	input textinput.Model

	mode     mode
	post     content.Post
	body     viewport.Model
	views    int64
	viewsOK  bool
	viewsErr string
	status   string

	width  int
	height int
}

// New builds a browser over src. Views of opened posts are counted in store
// through a Tracker scoped to this browser session.
func New(src Source, store viewcount.Store, opts Options) (*Model, error) {
	opts.setDefaults()
	set, ix, err := src.Snapshot()
	if err != nil {
		return nil, err
	}

	m := &Model{
		src:      src,
		tracker:  viewcount.NewTracker(store),
		opts:     opts,
		keys:     defaultKeys(),
		ovKeys:   overlay.DefaultKeymap(),
		styles:   NewStyles(),
		help:     help.New(),
		set:      set,
		clock:    &loopClock{},
		sentinel: &cursorSentinel{},
		ov:       overlay.NewState(ix, search.OverlayLimit),
		width:    80,
		height:   24,
	}
	m.categories = set.Categories()
	m.win = window.New(set.Published(), opts.PageSize,
		window.WithDelay(opts.LoadDelay),
		window.WithClock(m.clock))
	m.win.Attach(m.sentinel)

	m.input = textinput.New()
	m.input.Prompt = "search: "
	m.input.Placeholder = "title, description or tag"
	m.input.Cursor.SetMode(cursor.CursorStatic)

	m.body = viewport.New(m.width, m.bodyHeight())
	return m, nil
}

// NewProgram returns a full-screen program running m until ctx ends.
func NewProgram(ctx context.Context, m *Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
}

// Close stops the window; pending loads are discarded.
func (m *Model) Close() { m.win.Close() }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.body.Width = msg.Width
		m.body.Height = m.bodyHeight()
		if m.mode == modePost {
			m.body.SetContent(m.renderBody(m.post))
		}
		m.scroll()
		return m, nil

	case ContentChangedMsg:
		m.reload()
		return m, nil

	case loadTickMsg:
		m.clock.fire(msg.seq)
		return m, nil

	case viewsMsg:
		if m.mode != modePost || msg.slug != m.post.Slug {
			return m, nil
		}
		if msg.err != nil {
			m.viewsErr = describeViewsError(msg.err)
			return m, nil
		}
		m.views = msg.count
		m.viewsOK = true
		m.viewsErr = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if cmd, ok := m.ovKeys.Dispatch(msg, m.ov.Open()); ok {
		return m, m.applyOverlay(cmd)
	}
	if m.ov.Open() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != m.ov.Query() {
			m.ov.SetQuery(m.input.Value())
		}
		return m, cmd
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.mode == modePost {
		return m.updatePost(msg)
	}
	return m.updateList(msg)
}

func (m *Model) applyOverlay(cmd overlay.Command) tea.Cmd {
	eff := m.ov.Apply(cmd)
	if m.ov.Open() {
		m.input.Focus()
	} else {
		m.input.Blur()
		m.input.SetValue("")
	}
	if eff.Navigate != "" {
		return m.openURL(eff.Navigate)
	}
	return nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	posts := m.win.Displayed()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(posts)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextCat):
		m.switchCategory(1)
	case key.Matches(msg, m.keys.PrevCat):
		m.switchCategory(-1)
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(posts) {
			return m, m.openPost(posts[m.cursor])
		}
	}
	m.scroll()
	return m, m.revealSentinel()
}

func (m *Model) updatePost(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Retry):
		if m.viewsErr != "" {
			m.viewsErr = ""
			return m, m.visitCmd(m.post.Slug)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

// revealSentinel reports the cursor position to the sentinel and, when that
// started a load, schedules the window timer on the event loop.
func (m *Model) revealSentinel() tea.Cmd {
	m.sentinel.check(m.cursor, m.win.Count())
	t, ok := m.clock.scheduled()
	if !ok {
		return nil
	}
	seq := t.seq
	return tea.Tick(t.delay, func(time.Time) tea.Msg { return loadTickMsg{seq: seq} })
}

func (m *Model) switchCategory(delta int) {
	n := len(m.categories)
	if n == 0 {
		return
	}
	m.catIdx = (m.catIdx + delta + n) % n
	posts, err := m.set.InCategory(m.categories[m.catIdx])
	if err != nil {
		m.status = err.Error()
		return
	}
	m.win.Replace(posts)
	m.cursor = 0
	m.offset = 0
	m.status = ""
}

// reload picks up a new snapshot. The window resets only when the post list
// of the current category actually changed.
func (m *Model) reload() {
	set, ix, err := m.src.Snapshot()
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	m.set = set
	m.categories = set.Categories()
	if m.catIdx >= len(m.categories) {
		m.catIdx = 0
	}
	posts, err := set.InCategory(m.categories[m.catIdx])
	if err != nil {
		m.catIdx = 0
		posts = set.Published()
	}
	if m.win.Sync(posts) {
		m.cursor = 0
		m.offset = 0
	}
	m.ov.SetSearcher(ix)
	m.status = ""
}

func (m *Model) openURL(url string) tea.Cmd {
	slug := strings.Trim(strings.TrimPrefix(url, "/blogs/"), "/")
	post, err := m.set.Post(slug)
	if err != nil {
		m.status = "post " + slug + " not found"
		return nil
	}
	return m.openPost(post)
}

func (m *Model) openPost(p content.Post) tea.Cmd {
	m.mode = modePost
	m.post = p
	m.views = 0
	m.viewsOK = false
	m.viewsErr = ""
	m.body.SetContent(m.renderBody(p))
	m.body.GotoTop()
	return m.visitCmd(p.Slug)
}

// visitCmd counts a view of slug, once per session, and reads the total.
func (m *Model) visitCmd(slug string) tea.Cmd {
	tracker, timeout := m.tracker, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := tracker.Visit(ctx, slug); err != nil {
			return viewsMsg{slug: slug, err: err}
		}
		n, err := tracker.Count(ctx, slug)
		return viewsMsg{slug: slug, count: n, err: err}
	}
}

func describeViewsError(err error) string {
	if viewcount.IsTransient(err) {
		return "views unavailable, press r to retry"
	}
	return "views: " + err.Error()
}

// scroll keeps the cursor inside the visible rows of the list.
func (m *Model) scroll() {
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) listHeight() int { return max(3, m.height-8) }
func (m *Model) bodyHeight() int { return max(3, m.height-7) }
