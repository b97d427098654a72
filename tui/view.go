package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/markdown"
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.opts.Title))
	b.WriteString("\n")

	switch {
	case m.ov.Open():
		b.WriteString(m.overlayView())
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(m.help.ShortHelpView(m.ovKeys.ShortHelp())))
	case m.mode == modePost:
		b.WriteString(m.postView())
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(m.help.ShortHelpView(m.keys.postHelp())))
	default:
		b.WriteString(m.listView())
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(m.help.ShortHelpView(append(m.keys.listHelp(), m.ovKeys.Toggle))))
	}
	return b.String()
}

func (m *Model) tabs() string {
	tabs := make([]string, 0, len(m.categories))
	for i, c := range m.categories {
		style := m.styles.Tab
		if i == m.catIdx {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render("#"+c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	posts := m.win.Displayed()
	if len(posts) == 0 {
		b.WriteString(m.styles.Dim.Render("  no posts"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.listHeight(), len(posts))
	for i := m.offset; i < end; i++ {
		p := posts[i]
		line := fmt.Sprintf("%s  %s", p.PublishedAt.Format("2006-01-02"), p.Title)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(m.styles.Row.Render(line))
		}
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%d of %d posts", m.win.Count(), m.win.Len())
	if m.win.Loading() {
		status += "  loading…"
	}
	if m.status != "" {
		status += "  " + m.status
	}
	b.WriteString(m.styles.Status.Render(status))
	return b.String()
}

func (m *Model) overlayView() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	results := m.ov.Results()
	switch {
	case strings.TrimSpace(m.ov.Query()) == "":
		b.WriteString(m.styles.Dim.Render("type to search"))
	case len(results) == 0:
		b.WriteString(m.styles.Dim.Render("no results"))
	}
	for i, r := range results {
		b.WriteString("\n")
		line := r.Item.Title
		if r.Item.Description != "" {
			line += m.styles.Dim.Render("  " + r.Item.Description)
		}
		if i == m.ov.Selected() {
			b.WriteString(m.styles.Selected.Render("> " + r.Item.Title))
			continue
		}
		b.WriteString("  " + line)
	}
	return m.styles.Overlay.Render(b.String())
}

func (m *Model) postView() string {
	p := m.post
	meta := []string{p.PublishedAt.Format("January 2, 2006")}
	if len(p.Tags) > 0 {
		meta = append(meta, "#"+strings.Join(p.Categories(), " #"))
	}
	meta = append(meta, m.viewsLabel())

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render(strings.Join(meta, " · ")))
	b.WriteString("\n\n")
	b.WriteString(m.body.View())
	return b.String()
}

func (m *Model) viewsLabel() string {
	switch {
	case m.viewsErr != "":
		return m.styles.Error.Render(m.viewsErr)
	case m.viewsOK:
		if m.views == 1 {
			return "1 view"
		}
		return fmt.Sprintf("%d views", m.views)
	default:
		return "… views"
	}
}

func (m *Model) renderBody(p content.Post) string {
	body := strings.TrimSpace(markdown.StripESM(p.Body))
	return lipgloss.NewStyle().Width(max(20, m.width-2)).Render(body)
}
