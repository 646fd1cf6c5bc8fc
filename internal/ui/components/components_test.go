package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenuSkipsHeadingsAndDisabled(t *testing.T) {
	var picked string
	pick := func(label string) func() tea.Cmd {
		return func() tea.Cmd {
			picked = label
			return nil
		}
	}

	m := NewMenu([]MenuItem{
		{Label: "Programming", Heading: true},
		{Label: "Go", Action: pick("Go")},
		{Label: "Rust", Disabled: true, Action: pick("Rust")},
		{Label: "Math", Heading: true},
		{Label: "Algebra", Action: pick("Algebra")},
	})

	if m.Selected != 1 {
		t.Fatalf("expected first selectable item 1, got %d", m.Selected)
	}

	m, _ = m.Update(key("down"))
	if m.Selected != 4 {
		t.Errorf("expected down to skip disabled and heading, got %d", m.Selected)
	}

	m, _ = m.Update(key("enter"))
	if picked != "Algebra" {
		t.Errorf("expected Algebra action, got %q", picked)
	}

	m, _ = m.Update(key("up"))
	if m.Selected != 1 {
		t.Errorf("expected up to return to Go, got %d", m.Selected)
	}
}

func TestMenuWithNothingSelectable(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "Only heading", Heading: true}})
	if _, ok := m.Current(); ok {
		t.Error("expected no current item")
	}
	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("enter with nothing selectable should be a no-op")
	}
}

func TestChoice(t *testing.T) {
	c := NewChoice([]string{"a", "b", "c"}, "")
	if c.Value() != "" {
		t.Fatalf("expected no value, got %q", c.Value())
	}

	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("space"))
	if c.Value() != "b" {
		t.Errorf("expected b, got %q", c.Value())
	}

	c, _ = c.Update(key("3"))
	if c.Value() != "c" || c.Cursor != 2 {
		t.Errorf("digit should choose c, got %q at %d", c.Value(), c.Cursor)
	}

	c, _ = c.Update(key("9"))
	if c.Value() != "c" {
		t.Errorf("out-of-range digit changed the choice to %q", c.Value())
	}

	c.Locked = true
	c, _ = c.Update(key("1"))
	if c.Value() != "c" {
		t.Error("locked choice must not change")
	}

	c.Reveal("a")
	if !strings.Contains(c.View(), "1. a") {
		t.Error("expected options in view")
	}
}

func TestChoicePreset(t *testing.T) {
	c := NewChoice([]string{"x", "y"}, "y")
	if c.Value() != "y" || c.Cursor != 1 {
		t.Errorf("preset not applied: %q at %d", c.Value(), c.Cursor)
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 6, 0},
		{3, 6, 0.5},
		{9, 6, 1},
		{3, 0, 0},
		{-1, 6, 0},
	}
	for _, tt := range tests {
		if got := Fraction(tt.done, tt.total); got != tt.want {
			t.Errorf("Fraction(%d, %d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}
