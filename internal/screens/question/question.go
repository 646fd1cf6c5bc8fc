// Package question is the question-and-feedback widget shared by the learn
// and review screens.
package question

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// Outcome is what an advance key press did.
type Outcome int

const (
	OutcomeNone   Outcome = iota
	OutcomeNext           // moved to the next question
	OutcomeFinish         // the last question was advanced from; the owner finishes
)

// Widget shows the active question list of the session one question at a
// time: choose, submit, read the feedback, advance.
type Widget struct {
	env       *screen.Env
	forReview bool

	choice    components.Choice
	sub       learning.Submission
	boundID   int64 // question id the choice was built for
	startedAt time.Time

	now func() time.Time
}

// New creates a widget. forReview marks submissions as review answers and
// advances with the review cursor.
func New(env *screen.Env, forReview bool) *Widget {
	return &Widget{env: env, forReview: forReview, now: time.Now}
}

// Sync binds the widget to the displayed question. A different question
// gets a fresh selector, timer and submission flag.
func (w *Widget) Sync(s learning.State) {
	v := learning.ViewActive(s)
	w.sub.Observe(v.Index)
	if v.Current == nil {
		w.boundID = 0
		return
	}
	if v.Current.ID == w.boundID {
		return
	}
	w.boundID = v.Current.ID
	w.choice = components.NewChoice(v.Current.Options, "")
	w.sub.Reset()
	w.startedAt = w.now()
}

// Submitted reports whether the displayed question has been submitted.
func (w *Widget) Submitted(s learning.State) bool {
	return w.sub.Submitted(s.CurrentQuestionIndex)
}

// Update handles keys and the result of the widget's own submission.
func (w *Widget) Update(msg tea.Msg) (Outcome, tea.Cmd) {
	s := w.env.State()
	w.Sync(s)
	v := learning.ViewActive(s)

	switch msg := msg.(type) {
	case screen.OpDoneMsg:
		if msg.Op == learning.OpSubmitAnswer && msg.Err != nil && v.Feedback == nil {
			// Grading failed; let the learner try again.
			w.sub.Reset()
			w.choice.Locked = false
		}
		return OutcomeNone, nil

	case tea.KeyPressMsg:
		if msg.String() != "enter" {
			if !w.sub.Submitted(v.Index) {
				w.choice, _ = w.choice.Update(msg)
			}
			return OutcomeNone, nil
		}
		if v.Current == nil {
			return OutcomeNone, nil
		}
		if !w.sub.Submitted(v.Index) {
			return OutcomeNone, w.submit(v)
		}
		if !learning.CanAdvance(v, w.sub, s.IsLoading) {
			return OutcomeNone, nil
		}
		return w.advance(v), nil
	}
	return OutcomeNone, nil
}

func (w *Widget) submit(v learning.QuestionView) tea.Cmd {
	answer := w.choice.Value()
	if answer == "" {
		return nil
	}
	w.sub.Mark(v.Index)
	w.choice.Locked = true

	qid := v.Current.ID
	elapsed := w.now().Sub(w.startedAt)
	forReview := w.forReview
	orch := w.env.Orch
	return screen.Run(learning.OpSubmitAnswer, func(ctx context.Context) error {
		return orch.SubmitQuestionAnswer(ctx, qid, answer, elapsed, forReview)
	})
}

func (w *Widget) advance(v learning.QuestionView) Outcome {
	if v.Step() == learning.StepFinish {
		return OutcomeFinish
	}
	if w.forReview {
		w.env.Orch.NextReviewQuestion()
	} else {
		w.env.Orch.NextQuestionOrInsight()
	}
	return OutcomeNext
}

// KeyHints describes the enter key for the current phase.
func (w *Widget) KeyHints(finishLabel string) []layout.KeyHint {
	s := w.env.State()
	v := learning.ViewActive(s)
	switch {
	case v.Current == nil:
		return nil
	case !w.sub.Submitted(v.Index):
		return []layout.KeyHint{
			{Key: "↑↓/1-9", Description: "Choose"},
			{Key: "Space", Description: "Select"},
			{Key: "Enter", Description: "Submit"},
		}
	case v.IsLast:
		return []layout.KeyHint{{Key: "Enter", Description: finishLabel}}
	default:
		return []layout.KeyHint{{Key: "Enter", Description: "Next question"}}
	}
}

// View renders the displayed question with its feedback.
func (w *Widget) View(width int) string {
	s := w.env.State()
	w.Sync(s)
	v := learning.ViewActive(s)
	if v.Current == nil {
		return theme.Hint.Render("No questions.")
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(positionLabel(v)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Width(width).Render(v.Current.QuestionText))
	b.WriteString("\n\n")
	b.WriteString(w.choiceView(v))

	if fb := v.Feedback; fb != nil && w.sub.Submitted(v.Index) {
		b.WriteString("\n")
		if fb.Correct {
			b.WriteString(theme.Correct.Render("✓ Correct"))
		} else {
			b.WriteString(theme.Incorrect.Render("✗ Incorrect"))
			if fb.CorrectAnswer != "" {
				b.WriteString(theme.Subtitle.Render("  answer: " + fb.CorrectAnswer))
			}
		}
		if fb.Feedback != "" {
			b.WriteString("\n")
			b.WriteString(theme.Body.Width(width).Render(fb.Feedback))
		}
	} else if w.sub.Submitted(v.Index) {
		b.WriteString("\n" + theme.Hint.Render("Checking your answer..."))
	}
	return b.String()
}

func (w *Widget) choiceView(v learning.QuestionView) string {
	c := w.choice
	if v.Feedback != nil {
		c.Reveal(v.Feedback.CorrectAnswer)
	}
	return c.View()
}

func positionLabel(v learning.QuestionView) string {
	return fmt.Sprintf("Question %d of %d", v.Index+1, len(v.Questions))
}
