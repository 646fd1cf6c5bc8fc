// Package account holds the sign-in and registration screens.
package account

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// form is a vertical list of text fields with one focused at a time.
type form struct {
	fields  []components.TextInput
	focus   int
	busy    bool
	message string
}

func newForm(fields ...components.TextInput) form {
	f := form{fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].Focus()
	}
	return f
}

func (f *form) value(i int) string {
	return f.fields[i].Value()
}

func (f *form) focusOn(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	f.fields[f.focus].Blur()
	f.focus = i
	return f.fields[i].Focus()
}

func (f *form) onLast() bool {
	return f.focus == len(f.fields)-1
}

// update handles field navigation and typing. submit reports that enter
// was pressed on the last field.
func (f *form) update(msg tea.Msg) (submit bool, cmd tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return false, f.focusOn(f.focus + 1)
		case "shift+tab", "up":
			return false, f.focusOn(f.focus - 1)
		case "enter":
			if f.busy {
				return false, nil
			}
			if f.onLast() {
				return true, nil
			}
			return false, f.focusOn(f.focus + 1)
		}
	}
	if f.busy {
		return false, nil
	}
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return false, cmd
}

func (f *form) view(width int) string {
	var b strings.Builder
	for i, fld := range f.fields {
		fld.Model.SetWidth(max(width-24, 10))
		b.WriteString(fld.View())
		if i < len(f.fields)-1 {
			b.WriteString("\n\n")
		}
	}
	b.WriteString("\n\n")
	switch {
	case f.busy:
		b.WriteString(theme.Hint.Render("Please wait..."))
	case f.message != "":
		b.WriteString(theme.ErrorText.Render(f.message))
	}
	return b.String()
}
