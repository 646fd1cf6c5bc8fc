// Package domainhome shows the topics of a domain with their level and
// progress, and starts learning or a review on one of them.
package domainhome

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

type intent int

const (
	intentNone intent = iota
	intentLearn
	intentReview
)

// CanLearn reports whether learning can start on topic t. A pending review
// blocks further insights, and a locked topic can only be learned while it
// is the current one.
func CanLearn(t api.TopicOverview) bool {
	return !t.ReviewAvailable && (t.Current || t.Unlocked)
}

// CanReview reports whether topic t has a review ready.
func CanReview(t api.TopicOverview) bool {
	return t.ReviewAvailable
}

// DomainHomeScreen is the per-domain overview.
type DomainHomeScreen struct {
	env      *screen.Env
	domainID int64
	cursor   int

	// pending is what happens once the in-flight operation succeeds.
	pending intent
}

var (
	_ screen.Screen          = (*DomainHomeScreen)(nil)
	_ screen.KeyHintProvider = (*DomainHomeScreen)(nil)
	_ screen.Resumer         = (*DomainHomeScreen)(nil)
)

// New creates the overview screen of domainID.
func New(env *screen.Env, domainID int64) *DomainHomeScreen {
	return &DomainHomeScreen{env: env, domainID: domainID, cursor: -1}
}

func (h *DomainHomeScreen) Title() string {
	if ov := h.env.State().Overview; ov != nil && ov.DomainName != "" {
		return ov.DomainName
	}
	if d := h.env.State().SelectedDomain; d != nil {
		return d.Name
	}
	return "Domain"
}

func (h *DomainHomeScreen) Init() tea.Cmd { return h.refresh() }

// Resume re-fetches the overview when coming back from learning or a review.
func (h *DomainHomeScreen) Resume() tea.Cmd {
	h.pending = intentNone
	return h.refresh()
}

func (h *DomainHomeScreen) refresh() tea.Cmd {
	orch, id := h.env.Orch, h.domainID
	return screen.Run(learning.OpFetchOverview, func(ctx context.Context) error {
		return orch.FetchOverview(ctx, id)
	})
}

func (h *DomainHomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Topic"}}
	if t, ok := h.selected(); ok {
		if CanLearn(t) {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Learn"})
		}
		if CanReview(t) {
			hints = append(hints, layout.KeyHint{Key: "v", Description: "Review"})
		}
	}
	return append(hints,
		layout.KeyHint{Key: "r", Description: "Refresh"},
		layout.KeyHint{Key: "Esc", Description: "Domains"},
	)
}

func (h *DomainHomeScreen) topics() []api.TopicOverview {
	if ov := h.env.State().Overview; ov != nil {
		return ov.Topics
	}
	return nil
}

// selected returns the highlighted topic. Until the learner moves the
// cursor it follows the current topic.
func (h *DomainHomeScreen) selected() (api.TopicOverview, bool) {
	ts := h.topics()
	idx := h.index()
	if idx < 0 || idx >= len(ts) {
		return api.TopicOverview{}, false
	}
	return ts[idx], true
}

func (h *DomainHomeScreen) index() int {
	if h.cursor >= 0 {
		return h.cursor
	}
	return h.env.State().CurrentTopicIndex
}

func (h *DomainHomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.OpDoneMsg:
		return h, h.onDone(msg)

	case tea.KeyPressMsg:
		if h.pending != intentNone {
			return h, nil
		}
		n := len(h.topics())
		switch msg.String() {
		case "up", "k":
			if i := h.index(); i > 0 {
				h.cursor = i - 1
			}
		case "down", "j":
			if i := h.index(); i < n-1 {
				h.cursor = i + 1
			}
		case "r":
			return h, h.refresh()
		case "enter", "l":
			return h, h.start(intentLearn)
		case "v":
			return h, h.start(intentReview)
		}
	}
	return h, nil
}

// start makes the highlighted topic current when needed, then continues
// with the intent once the server agrees.
func (h *DomainHomeScreen) start(in intent) tea.Cmd {
	t, ok := h.selected()
	if !ok || h.env.State().IsLoading {
		return nil
	}
	if (in == intentLearn && !CanLearn(t)) || (in == intentReview && !CanReview(t)) {
		return nil
	}

	h.pending = in
	idx := h.index()
	if idx != h.env.State().CurrentTopicIndex || !t.Current {
		orch, id := h.env.Orch, h.domainID
		return screen.Run(learning.OpPickTopic, func(ctx context.Context) error {
			return orch.PickTopic(ctx, id, idx)
		})
	}
	return h.proceed()
}

func (h *DomainHomeScreen) proceed() tea.Cmd {
	switch h.pending {
	case intentLearn:
		h.pending = intentNone
		h.cursor = -1
		return router.Push(h.env.Nav.Learn())
	case intentReview:
		return screen.Run(learning.OpFetchReview, h.env.Orch.FetchReview)
	}
	return nil
}

func (h *DomainHomeScreen) onDone(msg screen.OpDoneMsg) tea.Cmd {
	if h.pending == intentNone {
		return nil
	}
	if msg.Err != nil {
		if msg.Op == learning.OpPickTopic || msg.Op == learning.OpFetchReview {
			h.pending = intentNone
		}
		return nil
	}
	switch msg.Op {
	case learning.OpPickTopic:
		return h.proceed()
	case learning.OpFetchReview:
		h.pending = intentNone
		if h.env.State().ReviewData == nil {
			return nil
		}
		h.cursor = -1
		return router.Push(h.env.Nav.Review())
	}
	return nil
}

func (h *DomainHomeScreen) View(width, height int) string {
	s := h.env.State()
	cw := components.ContentWidth(width)
	ts := h.topics()

	if len(ts) == 0 {
		msg := "No topics yet."
		if s.IsLoading {
			msg = "Loading topics..."
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.Card(theme.Hint.Render(msg), cw, false))
	}

	idx := h.index()
	var rows []string
	for i, t := range ts {
		rows = append(rows, renderTopic(t, i == idx, cw))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(h.Title()))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Your learning path"))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(rows, "\n"))

	if t, ok := h.selected(); ok {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			components.NewButton("Learn", CanLearn(t), !CanLearn(t)).View(),
			"  ",
			components.NewButton("Review", CanReview(t) && !CanLearn(t), !CanReview(t)).View(),
		))
	}
	switch h.pending {
	case intentLearn:
		b.WriteString("\n\n" + theme.Hint.Render("Preparing your next insight..."))
	case intentReview:
		b.WriteString("\n\n" + theme.Hint.Render("Loading review..."))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(b.String(), cw, true))
}

func renderTopic(t api.TopicOverview, highlighted bool, cw int) string {
	marker := "  "
	nameStyle := theme.Unselected
	switch {
	case highlighted:
		marker = "▸ "
		nameStyle = theme.Selected
	case !t.Unlocked && !t.Current:
		nameStyle = theme.Disabled
	}

	status := ""
	switch {
	case t.ReviewAvailable:
		status = lipgloss.NewStyle().Foreground(theme.Accent).Render("review ready")
	case t.Current:
		status = lipgloss.NewStyle().Foreground(theme.Secondary).Render("current")
	case !t.Unlocked:
		status = theme.Hint.Render("locked")
	}

	head := nameStyle.Render(marker+t.TopicName) +
		theme.Hint.Render(fmt.Sprintf("  level %d  ", t.Level)) + status
	bar := components.NewProgressBar("", components.Fraction(t.CompletedInsights, t.RequiredInsights), true, cw-8).View()
	count := theme.Hint.Render(fmt.Sprintf("    %d/%d insights", t.CompletedInsights, t.RequiredInsights))
	return head + "\n    " + bar + "\n" + count
}
