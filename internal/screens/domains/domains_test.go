package domains

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/screen/screentest"
)

func TestGroup(t *testing.T) {
	groups := Group([]api.Domain{
		{ID: 1, Name: "Go", Category: "programming"},
		{ID: 2, Name: "Misc"},
		{ID: 3, Name: "Algebra", Category: "Mathematics"},
		{ID: 4, Name: "Rust", Category: " programming "},
	})

	require.Len(t, groups, 3)
	assert.Equal(t, "Mathematics", groups[0].Title)
	assert.Equal(t, "Programming", groups[1].Title)
	assert.Equal(t, "Other", groups[2].Title)
	assert.Len(t, groups[1].Domains, 2)
	assert.Equal(t, "Misc", groups[2].Domains[0].Name)
}

type harness struct {
	f      *screentest.Fixture
	d      *DomainsScreen
	pushed []screen.Screen
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := screentest.New(t)
	h := &harness{f: f, d: New(f.Env)}
	screentest.Drain(t, h.d.Init(), h.update)
	h.d.Update(screen.StateChangedMsg{State: f.Env.State()})
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	if p, ok := msg.(router.PushScreenMsg); ok {
		h.pushed = append(h.pushed, p.Screen)
		return nil
	}
	_, cmd := h.d.Update(msg)
	return cmd
}

func (h *harness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := h.d.Update(screentest.Key(k))
		screentest.Drain(t, cmd, h.update)
	}
}

func TestMenuIsGroupedByCategory(t *testing.T) {
	h := newHarness(t)

	var labels []string
	for _, it := range h.d.menu.Items {
		labels = append(labels, it.Label)
	}
	assert.Equal(t, []string{"Mathematics", "Algebra", "Programming", "Go", "Rust"}, labels)

	cur, ok := h.d.menu.Current()
	require.True(t, ok)
	assert.Equal(t, "Algebra", cur.Label)
	assert.Contains(t, h.d.View(100, 30), "in progress")
}

func TestOpenInProgressDomainGoesHome(t *testing.T) {
	h := newHarness(t)

	h.press(t, "down", "enter")

	require.Len(t, h.pushed, 1)
	dest := h.pushed[0].(*screentest.Dest)
	assert.Equal(t, "domainhome", dest.Name)
	assert.Equal(t, screentest.GoDomain, dest.DomainID)
	assert.Equal(t, screentest.GoDomain, h.f.Env.State().SelectedDomainID())
	assert.Nil(t, h.d.pending)
}

func TestOpenNewDomainStartsAssessment(t *testing.T) {
	h := newHarness(t)

	h.press(t, "down", "down", "enter")

	require.Len(t, h.pushed, 1)
	assert.Equal(t, "assessment", h.pushed[0].(*screentest.Dest).Name)
	assert.Len(t, h.f.Env.State().AssessmentQuestions, 2)
}

func TestFailedSelectionStaysOnNewDomain(t *testing.T) {
	h := newHarness(t)
	h.f.Srv.Fail("assessment-questions", 500, `{"message":"generator offline"}`)

	h.press(t, "down", "down", "enter")

	assert.Empty(t, h.pushed)
	assert.Equal(t, "generator offline", h.f.Env.State().Error)
}

func TestKeysIgnoredWhileOpening(t *testing.T) {
	h := newHarness(t)
	h.d.pending = &api.Domain{ID: 3}

	_, cmd := h.d.Update(screentest.Key("enter"))
	assert.Nil(t, cmd)
}

func TestRefreshRefetches(t *testing.T) {
	h := newHarness(t)
	before := len(h.f.Srv.Calls())

	h.press(t, "r")

	assert.Equal(t, before+1, len(h.f.Srv.Calls()))
	assert.Equal(t, "domains-status", h.f.Srv.CallNames()[before])
}
