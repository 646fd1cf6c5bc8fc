// Package screentest builds a screen.Env against the fake backend for
// screen tests.
package screentest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/api/apitest"
	"github.com/abhisek/adaptlearn/internal/auth"
	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/store"
)

// GoDomain is the id of the seeded "Go" domain.
const GoDomain = int64(1)

// Fixture is an Env wired to a fake backend.
type Fixture struct {
	Env    *screen.Env
	Srv    *apitest.Server
	Client *api.Client
	Tokens *auth.TokenStore
	Nav    *Nav
}

// New creates a fixture with seeded data and a signed-in user "ada".
func New(t *testing.T) *Fixture {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "screens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenStore(context.Background(), db.TokenRepo())
	require.NoError(t, err)

	srv := apitest.New(t)
	client, err := api.New(api.Options{
		BaseURL:  srv.URL(),
		Timeout:  5 * time.Second,
		Tokens:   tokens,
		Recorder: db.EventRepo(),
	})
	require.NoError(t, err)

	srv.AddUser("ada", "secret")
	require.NoError(t, tokens.Save(context.Background(), srv.Token("ada", time.Hour), "ada"))

	nav := &Nav{}
	env := &screen.Env{
		Orch: learning.NewOrchestrator(client, learning.NewStore(nil), nil),
		Auth: auth.NewService(client, tokens, nil),
		Nav:  nav,
	}
	f := &Fixture{Env: env, Srv: srv, Client: client, Tokens: tokens, Nav: nav}
	Seed(srv)
	return f
}

// Seed installs the standard test data: domains Go (in progress) and Rust,
// a two-topic path for Go with Concurrency current, one queued insight with
// two questions, and a one-question review.
func Seed(srv *apitest.Server) {
	srv.SetDomains(
		api.Domain{ID: GoDomain, Name: "Go", Category: "programming", InProgress: true},
		api.Domain{ID: 2, Name: "Rust", Category: "programming"},
		api.Domain{ID: 3, Name: "Algebra", Category: "mathematics"},
	)
	srv.SetQuestions(GoDomain, api.AssessmentQuestion{ID: 9, QuestionText: "Experience?", Options: []string{"None"}})
	srv.SetQuestions(2,
		api.AssessmentQuestion{ID: 1, QuestionText: "Experience?", Options: []string{"None", "Some"}},
		api.AssessmentQuestion{ID: 2, QuestionText: "Goal?", Options: []string{"Work", "Fun"}},
	)
	srv.SetLearningPath(2, api.LearningPath{DomainName: "Rust", Topics: []string{"Ownership"}})
	srv.SetProgress(2, api.TopicProgress{TopicName: "Ownership", Level: 1, TotalInsightsInLevel: 3})
	srv.SetOverview(2, api.Overview{DomainID: 2, DomainName: "Rust", Topics: []api.TopicOverview{
		{TopicName: "Ownership", Level: 1, RequiredInsights: 3, Unlocked: true, Current: true},
	}})

	srv.SetProgress(GoDomain, api.TopicProgress{TopicName: "Concurrency", Level: 1, CompletedInsightsCount: 1, TotalInsightsInLevel: 3})
	srv.SetOverview(GoDomain, api.Overview{DomainID: GoDomain, DomainName: "Go", Topics: []api.TopicOverview{
		{TopicName: "Basics", Level: 2, CompletedInsights: 6, RequiredInsights: 6, Unlocked: true},
		{TopicName: "Concurrency", Level: 1, CompletedInsights: 1, RequiredInsights: 3, Unlocked: true, Current: true},
		{TopicName: "Generics", Level: 1, RequiredInsights: 3},
	}})
	srv.QueueInsights(GoDomain, api.Insight{
		ID:          10,
		Title:       "Goroutines",
		Explanation: "A goroutine is a lightweight thread managed by the Go runtime.",
		Questions: []api.Question{
			{ID: 11, QuestionText: "Keyword to start one?", Options: []string{"go", "run"}},
			{ID: 12, QuestionText: "Managed by?", Options: []string{"OS", "runtime"}},
		},
	})
	srv.SetAnswer(11, "go")
	srv.SetAnswer(12, "runtime")
	srv.SetReview(GoDomain, api.Review{
		Summary:           "Solid grasp of goroutines.",
		Strengths:         []string{"syntax"},
		Weaknesses:        []string{"channels"},
		RevisionQuestions: []api.Question{{ID: 50, QuestionText: "Unbuffered send blocks?", Options: []string{"yes", "no"}}},
	})
	srv.SetAnswer(50, "yes")
}

// Nav records which destination a screen asked for.
type Nav struct {
	Visited []string
}

// Dest is a placeholder screen named after its destination.
type Dest struct {
	Name     string
	DomainID int64
}

func (d *Dest) Init() tea.Cmd                           { return nil }
func (d *Dest) Update(tea.Msg) (screen.Screen, tea.Cmd) { return d, nil }
func (d *Dest) View(int, int) string                    { return d.Name }
func (d *Dest) Title() string                           { return d.Name }

func (n *Nav) dest(name string, id int64) screen.Screen {
	n.Visited = append(n.Visited, name)
	return &Dest{Name: name, DomainID: id}
}

func (n *Nav) Login() screen.Screen              { return n.dest("login", 0) }
func (n *Nav) Register() screen.Screen           { return n.dest("register", 0) }
func (n *Nav) Domains() screen.Screen            { return n.dest("domains", 0) }
func (n *Nav) Assessment() screen.Screen         { return n.dest("assessment", 0) }
func (n *Nav) DomainHome(id int64) screen.Screen { return n.dest("domainhome", id) }
func (n *Nav) Learn() screen.Screen              { return n.dest("learn", 0) }
func (n *Nav) Review() screen.Screen             { return n.dest("review", 0) }

// Key builds a key press for s: a single rune or a named key like "enter".
func Key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "shift+tab":
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace}
	}
	if len(s) == 6 && s[:5] == "ctrl+" {
		return tea.KeyPressMsg{Code: rune(s[5]), Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// Drain runs cmd and every command it produces, feeding each message to
// update, until nothing is left. Batches are flattened. Commands must not
// block on timers.
func Drain(t *testing.T, cmd tea.Cmd, update func(tea.Msg) tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		seen = append(seen, msg)
		queue = append(queue, update(msg))
	}
	return seen
}
