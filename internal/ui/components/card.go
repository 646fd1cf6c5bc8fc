package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for stacked cards so
// they visually align.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
// The active card gets the primary border color.
func Card(content string, cw int, active bool) string {
	style := theme.Card
	if active {
		style = theme.ActiveCard
	}
	return style.Width(cw - 2).Render(content)
}

// Centered places content in the middle of a width x height area.
func Centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
