package overlay

import (
	"strings"

	"github.com/eringen/inkblog/search"
)

// Searcher answers ranked queries. *search.Index satisfies it.
type Searcher interface {
	Search(query string) []search.Result
}

// Effect is what the host must do after a command is applied.
type Effect struct {
	// Navigate is the URL to open, set when a result was selected.
	Navigate string
	// Changed reports whether the visible state changed.
	Changed bool
}

// State holds whether the overlay is open, its query, the current results
// and the selected row. Build it with NewState.
type State struct {
	searcher Searcher
	limit    int

	open     bool
	query    string
	results  []search.Result
	selected int
}

// NewState returns a closed overlay over s keeping at most limit results.
// A limit below 1 uses search.OverlayLimit.
func NewState(s Searcher, limit int) *State {
	if limit < 1 {
		limit = search.OverlayLimit
	}
	return &State{searcher: s, limit: limit}
}

// SetSearcher swaps the index, e.g. after the content was reloaded, and
// re-runs the current query.
func (s *State) SetSearcher(sr Searcher) {
	s.searcher = sr
	if s.open {
		s.SetQuery(s.query)
	}
}

func (s *State) Open() bool               { return s.open }
func (s *State) Query() string            { return s.query }
func (s *State) Results() []search.Result { return s.results }
func (s *State) Selected() int            { return s.selected }

// Current returns the selected result.
func (s *State) Current() (search.Result, bool) {
	if s.selected < 0 || s.selected >= len(s.results) {
		return search.Result{}, false
	}
	return s.results[s.selected], true
}

// SetQuery re-runs the search for q and resets the selection to the first
// result. It is a no-op while the overlay is closed.
func (s *State) SetQuery(q string) Effect {
	if !s.open {
		return Effect{}
	}
	s.query = q
	s.selected = 0
	if strings.TrimSpace(q) == "" || s.searcher == nil {
		s.results = nil
		return Effect{Changed: true}
	}
	s.results = search.Top(s.searcher.Search(q), s.limit)
	return Effect{Changed: true}
}

// Apply runs cmd against the state.
func (s *State) Apply(cmd Command) Effect {
	switch cmd {
	case CmdToggle:
		if s.open {
			s.reset()
		} else {
			s.open = true
		}
		return Effect{Changed: true}
	case CmdClose:
		if !s.open {
			return Effect{}
		}
		s.reset()
		return Effect{Changed: true}
	case CmdUp:
		if !s.open || s.selected == 0 {
			return Effect{}
		}
		s.selected--
		return Effect{Changed: true}
	case CmdDown:
		if !s.open || s.selected >= len(s.results)-1 {
			return Effect{}
		}
		s.selected++
		return Effect{Changed: true}
	case CmdSelect:
		r, ok := s.Current()
		if !s.open || !ok {
			return Effect{}
		}
		s.reset()
		return Effect{Navigate: r.Item.URL, Changed: true}
	}
	return Effect{}
}

func (s *State) reset() {
	s.open = false
	s.query = ""
	s.results = nil
	s.selected = 0
}
