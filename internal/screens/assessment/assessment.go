// Package assessment is the placement quiz taken before a domain starts.
package assessment

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// AssessmentScreen walks through the placement questions of the selected
// domain and submits them all at once.
type AssessmentScreen struct {
	env *screen.Env

	index      int
	choice     components.Choice
	boundID    int64
	submitting bool
}

var (
	_ screen.Screen          = (*AssessmentScreen)(nil)
	_ screen.KeyHintProvider = (*AssessmentScreen)(nil)
)

// New creates the assessment screen for the selected domain.
func New(env *screen.Env) *AssessmentScreen {
	return &AssessmentScreen{env: env}
}

func (a *AssessmentScreen) Init() tea.Cmd { return nil }

func (a *AssessmentScreen) Title() string {
	if d := a.env.State().SelectedDomain; d != nil {
		return d.Name + " assessment"
	}
	return "Assessment"
}

func (a *AssessmentScreen) KeyHints() []layout.KeyHint {
	s := a.env.State()
	hints := []layout.KeyHint{
		{Key: "1-9", Description: "Answer"},
		{Key: "←→", Description: "Question"},
	}
	if s.AssessmentComplete() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Submit"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

// sync rebuilds the selector when the displayed question changes.
func (a *AssessmentScreen) sync(s learning.State) {
	qs := s.AssessmentQuestions
	if len(qs) == 0 {
		a.index, a.boundID = 0, 0
		return
	}
	a.index = min(max(a.index, 0), len(qs)-1)
	q := qs[a.index]
	if q.ID == a.boundID {
		return
	}
	a.boundID = q.ID
	a.choice = components.NewChoice(q.Options, s.AssessmentAnswers[q.ID])
	a.choice.Locked = a.submitting
}

func (a *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s := a.env.State()
	a.sync(s)

	switch msg := msg.(type) {
	case screen.OpDoneMsg:
		if msg.Op != learning.OpSubmitAssessment {
			return a, nil
		}
		a.submitting = false
		a.choice.Locked = false
		if msg.Err != nil {
			return a, nil
		}
		id := a.env.State().SelectedDomainID()
		if id == 0 {
			return a, router.Pop()
		}
		return a, router.Replace(a.env.Nav.DomainHome(id))

	case tea.KeyPressMsg:
		if a.submitting || len(s.AssessmentQuestions) == 0 {
			return a, nil
		}
		switch msg.String() {
		case "left", "shift+tab":
			a.index--
			a.sync(s)
			return a, nil
		case "right", "tab":
			a.index++
			a.sync(s)
			return a, nil
		case "ctrl+s":
			return a, a.submit(s)
		case "enter":
			a.record(s)
			s = a.env.State()
			if a.index < len(s.AssessmentQuestions)-1 {
				if s.AssessmentAnswers[a.boundID] != "" {
					a.index++
					a.sync(s)
				}
				return a, nil
			}
			return a, a.submit(s)
		}

		a.choice, _ = a.choice.Update(msg)
		a.record(s)
	}
	return a, nil
}

// record stores the chosen option when it differs from the recorded one.
func (a *AssessmentScreen) record(s learning.State) {
	v := a.choice.Value()
	if v == "" || s.AssessmentAnswers[a.boundID] == v {
		return
	}
	a.env.Orch.UpdateAssessmentAnswer(a.boundID, v)
}

func (a *AssessmentScreen) submit(s learning.State) tea.Cmd {
	if !s.AssessmentComplete() || s.IsLoading {
		return nil
	}
	a.submitting = true
	a.choice.Locked = true
	return screen.Run(learning.OpSubmitAssessment, a.env.Orch.SubmitAssessment)
}

func (a *AssessmentScreen) View(width, height int) string {
	s := a.env.State()
	a.sync(s)
	cw := components.ContentWidth(width)

	var b strings.Builder
	qs := s.AssessmentQuestions
	switch {
	case len(qs) == 0 && s.IsLoading:
		b.WriteString(theme.Hint.Render("Loading questions..."))
	case len(qs) == 0:
		b.WriteString(theme.Hint.Render("This domain has no placement questions."))
	default:
		q := qs[a.index]
		answered := 0
		for _, q := range qs {
			if s.AssessmentAnswers[q.ID] != "" {
				answered++
			}
		}
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Question %d of %d", a.index+1, len(qs))))
		b.WriteString("\n")
		b.WriteString(components.NewProgressBar("Answered", components.Fraction(answered, len(qs)), true, cw-4).View())
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Width(cw - 4).Render(q.QuestionText))
		b.WriteString("\n\n")
		b.WriteString(a.choice.View())
		b.WriteString("\n")
		b.WriteString(components.NewButton("Submit assessment", a.index == len(qs)-1, !s.AssessmentComplete() || a.submitting).View())
		if a.submitting {
			b.WriteString("\n\n" + theme.Hint.Render("Building your learning path..."))
		}
	}

	title := theme.Title.Render("Placement assessment")
	sub := theme.Subtitle.Render("Answer every question so we can tailor your path.")
	content := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", b.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(content, cw, true))
}
