package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// Choice is a single-answer option selector. Once Locked, navigation stops
// and the chosen option stays highlighted; Reveal marks the correct answer.
type Choice struct {
	Options []string
	Cursor  int
	Chosen  int // -1 until an option is chosen
	Locked  bool

	// Correct, when non-empty after Reveal, is rendered in the success color.
	Correct  string
	revealed bool
}

// NewChoice creates a selector over options. preset preselects a previously
// chosen option by value.
func NewChoice(options []string, preset string) Choice {
	c := Choice{Options: options, Chosen: -1}
	for i, opt := range options {
		if opt == preset && preset != "" {
			c.Cursor = i
			c.Chosen = i
			break
		}
	}
	return c
}

// Value returns the chosen option, or "" when none.
func (c Choice) Value() string {
	if c.Chosen < 0 || c.Chosen >= len(c.Options) {
		return ""
	}
	return c.Options[c.Chosen]
}

// Reveal shows correct next to the chosen option.
func (c *Choice) Reveal(correct string) {
	c.Correct = correct
	c.revealed = true
}

// Update moves the cursor with arrows or vim keys. Space or a digit
// chooses an option; enter is left to the owner.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if c.Locked {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return c, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space":
		if len(c.Options) > 0 {
			c.Chosen = c.Cursor
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Cursor = i
				c.Chosen = i
			}
		}
	}
	return c, nil
}

// View renders the options, one per line.
func (c Choice) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		mark := "( )"
		if i == c.Chosen {
			mark = "(•)"
		}
		prefix := "  "
		if i == c.Cursor && !c.Locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s %d. %s", prefix, mark, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.revealed && opt == c.Correct:
			style = theme.Correct
		case c.revealed && i == c.Chosen:
			style = theme.Incorrect
		case c.Locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == c.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
