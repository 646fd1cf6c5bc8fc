package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu. A Heading item is
// rendered as a group title and can never be selected.
type MenuItem struct {
	Label    string
	Detail   string
	Heading  bool
	Disabled bool
	Action   func() tea.Cmd
}

func (it MenuItem) selectable() bool {
	return !it.Heading && !it.Disabled
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first selectable item highlighted.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	for i, item := range items {
		if item.selectable() {
			m.Selected = i
			break
		}
	}
	return m
}

// Current returns the highlighted item, or false when nothing is selectable.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if m.Items[i].selectable() {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if m.Items[i].selectable() {
				m.Selected = i
				break
			}
		}
	case "enter":
		if item, ok := m.Current(); ok && item.selectable() && item.Action != nil {
			return m, item.Action()
		}
	}

	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case item.Heading:
			b.WriteString("\n" + theme.Heading.Render(item.Label) + "\n")
			continue
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + item.Label))
		case item.Disabled:
			b.WriteString(theme.Disabled.Render("    " + item.Label))
		default:
			b.WriteString(theme.Unselected.Render("    " + item.Label))
		}
		if item.Detail != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + item.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
