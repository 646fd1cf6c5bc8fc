// Package learn shows the current insight of the selected topic and quizzes
// the learner on it. It fetches progress and the next insight on its own.
package learn

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/screens/question"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// LearnScreen is the learning dashboard of one topic.
type LearnScreen struct {
	env      *screen.Env
	dash     learning.Dashboard
	question *question.Widget

	// openingReview is set while the review is being fetched.
	openingReview bool
}

var (
	_ screen.Screen          = (*LearnScreen)(nil)
	_ screen.KeyHintProvider = (*LearnScreen)(nil)
)

// New creates the learning dashboard for the selected domain and topic.
func New(env *screen.Env) *LearnScreen {
	return &LearnScreen{env: env, question: question.New(env, false)}
}

func (l *LearnScreen) Title() string {
	if t := l.env.State().CurrentTopic; t != "" {
		return t
	}
	return "Learn"
}

func (l *LearnScreen) Init() tea.Cmd {
	return l.effect(l.env.State())
}

// effect starts whatever fetch the dashboard asks for.
func (l *LearnScreen) effect(s learning.State) tea.Cmd {
	orch := l.env.Orch
	switch l.dash.Next(s) {
	case learning.EffectFetchProgress:
		return screen.Run(learning.OpFetchProgress, orch.FetchTopicProgress)
	case learning.EffectFetchNextInsight:
		return screen.Run(learning.OpFetchNextInsight, orch.FetchNextInsight)
	}
	return nil
}

func (l *LearnScreen) reviewReady(s learning.State) bool {
	return s.CurrentInsight == nil && s.TopicProgress != nil && s.TopicProgress.ReviewAvailable
}

func (l *LearnScreen) KeyHints() []layout.KeyHint {
	s := l.env.State()
	switch {
	case s.CurrentInsight != nil:
		return l.question.KeyHints("Complete insight")
	case l.reviewReady(s):
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start review"},
			{Key: "Esc", Description: "Topics"},
		}
	default:
		return []layout.KeyHint{
			{Key: "r", Description: "Retry"},
			{Key: "Esc", Description: "Topics"},
		}
	}
}

func (l *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s := l.env.State()

	switch msg := msg.(type) {
	case screen.StateChangedMsg:
		l.question.Sync(msg.State)
		return l, l.effect(msg.State)

	case screen.OpDoneMsg:
		if msg.Op == learning.OpFetchReview && l.openingReview {
			l.openingReview = false
			if msg.Err == nil && l.env.State().ReviewData != nil {
				return l, router.Replace(l.env.Nav.Review())
			}
			return l, nil
		}
		l.question.Update(msg)
		return l, nil

	case tea.KeyPressMsg:
		if s.CurrentInsight == nil {
			return l, l.idleKey(msg.String(), s)
		}
		out, cmd := l.question.Update(msg)
		if out == question.OutcomeFinish {
			l.env.Orch.NextQuestionOrInsight()
			return l, l.effect(l.env.State())
		}
		return l, cmd
	}
	return l, nil
}

func (l *LearnScreen) idleKey(key string, s learning.State) tea.Cmd {
	if s.IsLoading || l.openingReview {
		return nil
	}
	switch {
	case key == "enter" && l.reviewReady(s):
		l.openingReview = true
		return screen.Run(learning.OpFetchReview, l.env.Orch.FetchReview)
	case key == "r":
		l.env.Orch.DismissError()
		return screen.Run(learning.OpFetchNextInsight, l.env.Orch.FetchNextInsight)
	}
	return nil
}

func (l *LearnScreen) View(width, height int) string {
	s := l.env.State()
	cw := components.ContentWidth(width)

	sections := []string{l.progressView(s, cw)}
	if ins := s.CurrentInsight; ins != nil {
		explain := theme.Heading.Render(ins.Title) + "\n\n" +
			theme.Body.Width(cw-4).Render(ins.Explanation)
		sections = append(sections,
			components.Card(explain, cw, false),
			components.Card(l.question.View(cw-4), cw, true),
		)
	} else {
		sections = append(sections, components.Card(l.idleView(s), cw, true))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n"))
}

func (l *LearnScreen) progressView(s learning.State, cw int) string {
	done, total := s.InsightsCompletedThisLevel, s.InsightsRequiredForReview
	if p := s.TopicProgress; p != nil {
		done = p.CompletedInsightsCount
		if p.TotalInsightsInLevel > 0 {
			total = p.TotalInsightsInLevel
		}
	}
	label := fmt.Sprintf("Level %d", s.CurrentLevel)
	if p := s.TopicProgress; p != nil && p.Level > 0 {
		label = fmt.Sprintf("Level %d", p.Level)
	}
	bar := components.NewProgressBar(label, components.Fraction(done, total), false, cw-16).View()
	return bar + theme.Hint.Render(fmt.Sprintf("  %d/%d", done, total))
}

func (l *LearnScreen) idleView(s learning.State) string {
	switch {
	case l.openingReview:
		return theme.Hint.Render("Loading review...")
	case s.IsLoading:
		return theme.Hint.Render("Loading your next insight...")
	case l.reviewReady(s):
		return theme.Title.Render("Level complete!") + "\n\n" +
			theme.Body.Render("You have finished every insight of this level. Take the review to move on.")
	case s.Error != "":
		return theme.Body.Render("Something went wrong. Press r to try again.")
	default:
		return theme.Body.Render("No new insight is available right now. Press r to check again.")
	}
}
