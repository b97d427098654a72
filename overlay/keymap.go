// Package overlay implements the search overlay: a keyboard dispatcher that
// maps key combinations to named commands and a state machine that applies
// those commands.
package overlay

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Command is a named overlay action.
type Command int

const (
	CmdNone Command = iota
	CmdToggle
	CmdClose
	CmdUp
	CmdDown
	CmdSelect
)

func (c Command) String() string {
	switch c {
	case CmdToggle:
		return "toggle"
	case CmdClose:
		return "close"
	case CmdUp:
		return "up"
	case CmdDown:
		return "down"
	case CmdSelect:
		return "select"
	default:
		return "none"
	}
}

// Keymap binds key combinations to overlay commands.
type Keymap struct {
	Toggle key.Binding
	Close  key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultKeymap returns the standard bindings: ctrl+k toggles, esc closes,
// arrows (or ctrl+p/ctrl+n) move and enter selects.
func DefaultKeymap() Keymap {
	return Keymap{
		Toggle: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "search")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	}
}

// Dispatch maps msg to a command. While the overlay is closed only the toggle
// binding is recognised, so other keys keep their normal meaning.
func (k Keymap) Dispatch(msg tea.KeyMsg, open bool) (Command, bool) {
	if key.Matches(msg, k.Toggle) {
		return CmdToggle, true
	}
	if !open {
		return CmdNone, false
	}
	switch {
	case key.Matches(msg, k.Close):
		return CmdClose, true
	case key.Matches(msg, k.Up):
		return CmdUp, true
	case key.Matches(msg, k.Down):
		return CmdDown, true
	case key.Matches(msg, k.Select):
		return CmdSelect, true
	}
	return CmdNone, false
}

// ShortHelp lists the bindings for a help line.
func (k Keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Up, k.Down, k.Select, k.Close}
}
