package components

import (
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// Button is a focusable, possibly disabled, action label.
type Button struct {
	Label    string
	Focused  bool
	Disabled bool
}

// NewButton creates a new button.
func NewButton(label string, focused, disabled bool) Button {
	return Button{
		Label:    label,
		Focused:  focused,
		Disabled: disabled,
	}
}

// View renders the button.
func (b Button) View() string {
	switch {
	case b.Disabled:
		return theme.ButtonDisabled.Render(b.Label)
	case b.Focused:
		return theme.ButtonActive.Render("▸ " + b.Label)
	default:
		return theme.ButtonInactive.Render(b.Label)
	}
}
