// Package review runs the level checkpoint: summary, revision questions,
// then completion.
package review

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
	"github.com/abhisek/adaptlearn/internal/screens/question"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

type phase int

const (
	phaseSummary phase = iota
	phaseQuestions
	phaseConfirm
	phaseCompleting
)

// ReviewScreen shows the review of the current level.
type ReviewScreen struct {
	env      *screen.Env
	question *question.Widget
	phase    phase

	// graded holds correctness per revision question id.
	graded map[int64]bool
}

var (
	_ screen.Screen          = (*ReviewScreen)(nil)
	_ screen.KeyHintProvider = (*ReviewScreen)(nil)
)

// New creates the review screen for the loaded review.
func New(env *screen.Env) *ReviewScreen {
	return &ReviewScreen{
		env:      env,
		question: question.New(env, true),
		graded:   map[int64]bool{},
	}
}

func (r *ReviewScreen) Init() tea.Cmd { return nil }

func (r *ReviewScreen) Title() string { return "Review" }

func (r *ReviewScreen) KeyHints() []layout.KeyHint {
	switch r.phase {
	case phaseSummary:
		return []layout.KeyHint{{Key: "Enter", Description: "Start questions"}, {Key: "Esc", Description: "Later"}}
	case phaseQuestions:
		return r.question.KeyHints("Finish review")
	case phaseConfirm:
		return []layout.KeyHint{{Key: "Enter", Description: "Complete review"}}
	}
	return nil
}

// score returns correct and total over the revision questions.
func (r *ReviewScreen) score(rv *api.Review) (int, int) {
	if rv == nil {
		return 0, 0
	}
	correct := 0
	for _, q := range rv.RevisionQuestions {
		if r.graded[q.ID] {
			correct++
		}
	}
	return correct, len(rv.RevisionQuestions)
}

func (r *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateChangedMsg:
		r.grade(msg.State)
		r.question.Sync(msg.State)
		return r, nil

	case screen.OpDoneMsg:
		if msg.Op == learning.OpCompleteReview && r.phase == phaseCompleting {
			if msg.Err != nil && r.env.State().ReviewData != nil {
				// The completion call itself failed; let the learner retry.
				r.phase = phaseConfirm
				return r, nil
			}
			return r, router.Pop()
		}
		r.grade(r.env.State())
		r.question.Update(msg)
		return r, nil

	case tea.KeyPressMsg:
		return r, r.key(msg)
	}
	return r, nil
}

func (r *ReviewScreen) grade(s learning.State) {
	if fb := s.Feedback; fb != nil && s.ReviewData != nil {
		r.graded[fb.QuestionID] = fb.Correct
	}
}

func (r *ReviewScreen) key(msg tea.KeyPressMsg) tea.Cmd {
	s := r.env.State()
	switch r.phase {
	case phaseSummary:
		if msg.String() != "enter" || s.ReviewData == nil {
			return nil
		}
		if len(s.ReviewData.RevisionQuestions) == 0 {
			r.phase = phaseConfirm
		} else {
			r.phase = phaseQuestions
		}
		return nil

	case phaseQuestions:
		out, cmd := r.question.Update(msg)
		if out == question.OutcomeFinish {
			r.phase = phaseConfirm
		}
		return cmd

	case phaseConfirm:
		if msg.String() != "enter" || s.IsLoading {
			return nil
		}
		r.phase = phaseCompleting
		orch := r.env.Orch
		// Finishing the review always reports satisfactory performance.
		return screen.Run(learning.OpCompleteReview, func(ctx context.Context) error {
			return orch.CompleteReview(ctx, true)
		})
	}
	return nil
}

func (r *ReviewScreen) View(width, height int) string {
	s := r.env.State()
	cw := components.ContentWidth(width)
	rv := s.ReviewData
	if rv == nil {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.Card(theme.Hint.Render("Loading review..."), cw, false))
	}

	var body string
	switch r.phase {
	case phaseSummary:
		body = summaryView(rv, cw-4)
	case phaseQuestions:
		body = r.question.View(cw - 4)
	default:
		correct, total := r.score(rv)
		var b strings.Builder
		b.WriteString(theme.Title.Render("Review finished"))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render(fmt.Sprintf("You answered %d of %d revision questions correctly.", correct, total)))
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("Completing the review moves you to the next level."))
		if correct < total {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("Look over the weaknesses from the summary before you continue."))
		}
		if r.phase == phaseCompleting {
			b.WriteString("\n\n" + theme.Hint.Render("Saving..."))
		}
		body = b.String()
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(body, cw, true))
}

func summaryView(rv *api.Review, width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Review summary"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(width).Render(rv.Summary))
	writeList(&b, "Strengths", rv.Strengths, theme.Correct)
	writeList(&b, "Weaknesses", rv.Weaknesses, lipgloss.NewStyle().Foreground(theme.Accent))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d revision questions", len(rv.RevisionQuestions))))
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string, bullet lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Heading.Render(title))
	for _, it := range items {
		b.WriteString("\n")
		b.WriteString(bullet.Render("  • ") + theme.Body.Render(it))
	}
}
