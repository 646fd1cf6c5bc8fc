package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptlearn/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	resumed int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

// resumableScreen counts Resume calls.
type resumableScreen struct {
	stubScreen
}

func (s *resumableScreen) Resume() tea.Cmd {
	s.resumed++
	return nil
}

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after replace, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Replace(s3)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" {
		t.Errorf("expected active 'third', got %q", r.Active().Title())
	}
}

func TestPopResumesScreenUnderneath(t *testing.T) {
	home := &resumableScreen{stubScreen{title: "home"}}
	r := New(home)

	r.Push(&stubScreen{title: "detail"})
	r.Update(PopScreenMsg{})

	if home.resumed != 1 {
		t.Errorf("expected 1 resume, got %d", home.resumed)
	}

	// Popping at the bottom does not resume.
	r.Pop()
	if home.resumed != 1 {
		t.Errorf("expected no resume at bottom, got %d", home.resumed)
	}
}

func TestResetScreenMsg(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})
	r.Push(&stubScreen{title: "third"})

	login := &stubScreen{title: "login"}
	r.Update(ResetScreenMsg{Screen: login})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after reset, got %d", r.Depth())
	}
	if r.Active().Title() != "login" {
		t.Errorf("expected active 'login', got %q", r.Active().Title())
	}
	if !login.initRan {
		t.Error("expected Init() to run on reset screen")
	}
}

func TestNavigationCommands(t *testing.T) {
	s := &stubScreen{title: "x"}

	if _, ok := Push(s)().(PushScreenMsg); !ok {
		t.Error("Push should produce PushScreenMsg")
	}
	if _, ok := Pop()().(PopScreenMsg); !ok {
		t.Error("Pop should produce PopScreenMsg")
	}
	if _, ok := Replace(s)().(ReplaceScreenMsg); !ok {
		t.Error("Replace should produce ReplaceScreenMsg")
	}
	if msg, ok := Reset(s)().(ResetScreenMsg); !ok || msg.Screen != s {
		t.Error("Reset should produce ResetScreenMsg carrying the screen")
	}
}
