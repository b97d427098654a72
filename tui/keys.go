package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextCat key.Binding
	PrevCat key.Binding
	Open    key.Binding
	Back    key.Binding
	Retry   key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextCat: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
		PrevCat: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev category")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry views")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextCat, k.Open, k.Quit}
}

func (k keyMap) postHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back, k.Retry, k.Quit}
}
