package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all the style definitions for the browser.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Row       lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Overlay   lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1),
		Row:       lipgloss.NewStyle().PaddingLeft(2),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Dim:       lipgloss.NewStyle().Faint(true),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(64),
		Help: lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
