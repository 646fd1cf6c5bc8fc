package learning_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/api/apitest"
	"github.com/abhisek/adaptlearn/internal/learning"
)

const goDomain = int64(1)

type staticTokens struct {
	mu  sync.Mutex
	tok string
}

func (s *staticTokens) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok
}

func (s *staticTokens) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	return nil
}

type harness struct {
	srv          *apitest.Server
	tokens       *staticTokens
	orch         *learning.Orchestrator
	store        *learning.Store
	unauthorized atomic.Int32

	mu    sync.Mutex
	trace []learning.ActionType
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{srv: apitest.New(t)}
	h.tokens = &staticTokens{tok: h.srv.Token("ada", time.Hour)}

	client, err := api.New(api.Options{
		BaseURL:        h.srv.URL(),
		Timeout:        5 * time.Second,
		Tokens:         h.tokens,
		OnUnauthorized: func() { h.unauthorized.Add(1) },
	})
	require.NoError(t, err)

	h.store = learning.NewStore(nil)
	h.store.Subscribe(func(_, _ learning.State, a learning.Action) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.trace = append(h.trace, a.Type())
	})
	h.orch = learning.NewOrchestrator(client, h.store, nil)

	h.seed()
	return h
}

func (h *harness) seed() {
	h.srv.SetDomains(
		api.Domain{ID: goDomain, Name: "Go", Category: "Programming"},
		api.Domain{ID: 2, Name: "Rust", Category: "Programming"},
	)
	h.srv.SetQuestions(goDomain,
		api.AssessmentQuestion{ID: 1, QuestionText: "Experience?", Options: []string{"None", "Some"}},
		api.AssessmentQuestion{ID: 2, QuestionText: "Goal?", Options: []string{"Work", "Fun"}},
	)
	h.srv.SetQuestions(2, api.AssessmentQuestion{ID: 3, QuestionText: "Experience?", Options: []string{"None"}})
	h.srv.SetLearningPath(goDomain, api.LearningPath{DomainName: "Go", Topics: []string{"Basics", "Concurrency"}})
	h.srv.SetProgress(goDomain, api.TopicProgress{TopicName: "Basics", Level: 1, CompletedInsightsCount: 2, TotalInsightsInLevel: 4})
	h.srv.SetOverview(goDomain, api.Overview{
		DomainID:   goDomain,
		DomainName: "Go",
		Topics: []api.TopicOverview{
			{TopicName: "Basics", Level: 2, Unlocked: true},
			{TopicName: "Concurrency", Level: 1, Unlocked: true, Current: true},
		},
	})
	h.srv.SetReview(goDomain, api.Review{
		Summary:           "Solid",
		Strengths:         []string{"syntax"},
		Weaknesses:        []string{},
		RevisionQuestions: []api.Question{{ID: 50, QuestionText: "Revise?", Options: []string{"a", "b"}}},
	})
	h.srv.SetAnswer(11, "b")
}

// selectGo selects the Go domain and installs its learning path.
func (h *harness) selectGo(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.orch.SelectDomain(ctx, api.Domain{ID: goDomain, Name: "Go"}))
	h.orch.UpdateAssessmentAnswer(1, "Some")
	h.orch.UpdateAssessmentAnswer(2, "Work")
	require.NoError(t, h.orch.SubmitAssessment(ctx))
}

func (h *harness) resetTrace() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trace = nil
}

func (h *harness) traceBytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	var b strings.Builder
	for _, a := range h.trace {
		b.WriteString(string(a))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func assertTrace(t *testing.T, h *harness, name string) {
	t.Helper()
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, name, h.traceBytes())
}

func TestOrchestrator_FetchDomains(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.orch.FetchDomains(context.Background()))

	assertTrace(t, h, "fetch-domains")
	s := h.store.State()
	require.Len(t, s.Domains, 2)
	assert.Equal(t, "Go", s.Domains[0].Name)
	assert.False(t, s.IsLoading)
}

func TestOrchestrator_SelectDomain(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.orch.SelectDomain(context.Background(), api.Domain{ID: goDomain, Name: "Go"}))

	assertTrace(t, h, "select-domain")
	s := h.store.State()
	assert.Equal(t, goDomain, s.SelectedDomainID())
	assert.Len(t, s.AssessmentQuestions, 2)
	assert.False(t, s.AssessmentComplete())
}

func TestOrchestrator_SubmitAssessment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.orch.SelectDomain(ctx, api.Domain{ID: goDomain, Name: "Go"}))
	h.orch.UpdateAssessmentAnswer(1, "Some")
	h.orch.UpdateAssessmentAnswer(2, "Work")
	h.resetTrace()

	require.NoError(t, h.orch.SubmitAssessment(ctx))

	assertTrace(t, h, "submit-assessment")
	s := h.store.State()
	assert.Equal(t, "Basics", s.CurrentTopic)
	assert.Equal(t, 1, s.ProfileVersion)
	require.NotNil(t, s.TopicProgress)
	assert.Equal(t, 4, s.InsightsRequiredForReview)

	subs := h.srv.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, map[int64]string{1: "Some", 2: "Work"}, subs[0].Answers)
}

func TestOrchestrator_SubmitAssessmentWithoutDomain(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.orch.SubmitAssessment(context.Background()))
	assert.Empty(t, h.srv.Calls())
	assert.Empty(t, h.traceBytes())
}

func TestOrchestrator_FetchNextInsight(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.srv.QueueInsights(goDomain, api.Insight{
		ID:        7,
		Title:     "Slices",
		Questions: []api.Question{{ID: 11, QuestionText: "len?", Options: []string{"a", "b"}}},
	})
	h.resetTrace()

	require.NoError(t, h.orch.FetchNextInsight(context.Background()))

	assertTrace(t, h, "fetch-next-insight")
	s := h.store.State()
	require.NotNil(t, s.CurrentInsight)
	assert.Equal(t, int64(7), s.CurrentInsight.ID)
	assert.Equal(t, int64(11), s.CurrentQuestion().ID)
}

func TestOrchestrator_FetchNextInsightNoContent(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.srv.SetProgress(goDomain, api.TopicProgress{CompletedInsightsCount: 4, TotalInsightsInLevel: 4, ReviewAvailable: true})
	h.resetTrace()

	require.NoError(t, h.orch.FetchNextInsight(context.Background()))

	assertTrace(t, h, "fetch-next-insight-empty")
	s := h.store.State()
	assert.Nil(t, s.CurrentInsight)
	require.NotNil(t, s.TopicProgress)
	assert.True(t, s.TopicProgress.ReviewAvailable)
}

func TestOrchestrator_SubmitQuestionAnswer(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.srv.QueueInsights(goDomain, api.Insight{
		ID:        7,
		Questions: []api.Question{{ID: 11, QuestionText: "len?", Options: []string{"a", "b"}}},
	})
	ctx := context.Background()
	require.NoError(t, h.orch.FetchNextInsight(ctx))
	h.resetTrace()

	require.NoError(t, h.orch.SubmitQuestionAnswer(ctx, 11, "b", 1500*time.Millisecond, false))

	assertTrace(t, h, "submit-answer")
	s := h.store.State()
	require.NotNil(t, s.Feedback)
	assert.True(t, s.Feedback.Correct)
	assert.Equal(t, "b", s.UserAnswersForInsight[11])

	var body string
	for _, c := range h.srv.Calls() {
		if c.Name == "submit-answer" {
			body = c.Body
		}
	}
	assert.Contains(t, body, `"timeTakenMs":1500`)
	assert.Contains(t, body, `"forReview":false`)
}

func TestOrchestrator_NextQuestionOrInsight(t *testing.T) {
	store := learning.NewStore(nil)
	o := learning.NewOrchestrator(nil, store, nil)
	store.Dispatch(learning.SetCurrentInsight{Insight: &api.Insight{
		ID:        1,
		Questions: []api.Question{{ID: 1}, {ID: 2}},
	}})

	o.NextQuestionOrInsight()
	assert.Equal(t, 1, store.State().CurrentQuestionIndex)
	assert.False(t, store.State().IsLoading)

	o.NextQuestionOrInsight()
	s := store.State()
	assert.Nil(t, s.CurrentInsight)
	assert.Equal(t, 1, s.ProfileVersion)

	// Without an insight there is nothing to advance.
	o.NextQuestionOrInsight()
	assert.Equal(t, 1, store.State().ProfileVersion)
}

func TestOrchestrator_NextReviewQuestionStopsAtLast(t *testing.T) {
	store := learning.NewStore(nil)
	o := learning.NewOrchestrator(nil, store, nil)
	store.Dispatch(learning.SetReviewData{Review: &api.Review{
		RevisionQuestions: []api.Question{{ID: 1}, {ID: 2}},
	}})

	o.NextReviewQuestion()
	o.NextReviewQuestion()
	assert.Equal(t, 1, store.State().CurrentQuestionIndex)
	assert.NotNil(t, store.State().ReviewData)
}

func TestOrchestrator_FetchReview(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.resetTrace()

	require.NoError(t, h.orch.FetchReview(context.Background()))

	assertTrace(t, h, "fetch-review")
	s := h.store.State()
	require.NotNil(t, s.ReviewData)
	assert.Equal(t, int64(50), s.CurrentQuestion().ID)
}

func TestOrchestrator_CompleteReview(t *testing.T) {
	for _, tt := range []struct {
		name         string
		satisfactory bool
		golden       string
	}{
		{"satisfactory", true, "complete-review-satisfactory"},
		{"unsatisfactory", false, "complete-review-unsatisfactory"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.selectGo(t)
			ctx := context.Background()
			require.NoError(t, h.orch.FetchReview(ctx))
			h.resetTrace()

			require.NoError(t, h.orch.CompleteReview(ctx, tt.satisfactory))

			assertTrace(t, h, tt.golden)
			s := h.store.State()
			assert.Nil(t, s.ReviewData)
			require.NotNil(t, s.Overview)
			assert.Equal(t, "Concurrency", s.CurrentTopic)
			assert.Equal(t, 1, s.CurrentTopicIndex)

			var query string
			for _, c := range h.srv.Calls() {
				if c.Name == "complete-review" {
					query = c.RawQuery
				}
			}
			if tt.satisfactory {
				assert.Equal(t, "satisfactoryPerformance=true", query)
			} else {
				assert.Equal(t, "satisfactoryPerformance=false", query)
			}
		})
	}
}

func TestOrchestrator_CompleteReviewContinuesAfterStepFailure(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	ctx := context.Background()
	require.NoError(t, h.orch.FetchReview(ctx))
	h.srv.Fail("topic-progress", 500, `{"message":"Progress unavailable"}`)
	h.resetTrace()

	err := h.orch.CompleteReview(ctx, false)

	require.Error(t, err)
	var serr *api.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 500, serr.Status)

	assertTrace(t, h, "complete-review-step-failure")
	s := h.store.State()
	assert.Nil(t, s.ReviewData)
	assert.NotNil(t, s.Overview)
	assert.Equal(t, "Progress unavailable", s.Error)
}

func TestOrchestrator_PickTopic(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.resetTrace()

	require.NoError(t, h.orch.PickTopic(context.Background(), goDomain, 0))

	assertTrace(t, h, "pick-topic")
	s := h.store.State()
	assert.Equal(t, "Basics", s.CurrentTopic)
	require.NotNil(t, s.Overview)
	assert.True(t, s.Overview.Topics[0].Current)

	names := h.srv.CallNames()
	assert.Equal(t, []string{"select-topic", "overview"}, names[len(names)-2:])
}

func TestOrchestrator_ServerErrorSetsMessage(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.srv.Fail("review", 404, `{"message":"Review not ready"}`)
	h.resetTrace()

	err := h.orch.FetchReview(context.Background())

	require.Error(t, err)
	assertTrace(t, h, "fetch-review-error")
	s := h.store.State()
	assert.Equal(t, "Review not ready", s.Error)
	assert.False(t, s.IsLoading)

	h.orch.DismissError()
	assert.Empty(t, h.store.State().Error)
}

func TestOrchestrator_UnauthorizedOnlyEndsLoading(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.tokens.tok = h.srv.Token("ada", -time.Minute)
	h.resetTrace()

	err := h.orch.FetchTopicProgress(context.Background())

	require.ErrorIs(t, err, api.ErrUnauthorized)
	s := h.store.State()
	assert.Empty(t, s.Error)
	assert.False(t, s.IsLoading)
	assert.Equal(t, int32(1), h.unauthorized.Load())
	assert.Empty(t, h.tokens.Token())
}

func TestOrchestrator_DropsResponseForPreviousDomain(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	h.srv.QueueInsights(goDomain, api.Insight{ID: 7, Questions: []api.Question{{ID: 11, Options: []string{"a"}}}})
	gate := h.srv.Hold("next-insight")

	done := make(chan error, 1)
	go func() { done <- h.orch.FetchNextInsight(context.Background()) }()

	<-gate.Arrived
	require.NoError(t, h.orch.SelectDomain(context.Background(), api.Domain{ID: 2, Name: "Rust"}))
	gate.Release()

	require.ErrorIs(t, <-done, learning.ErrStale)
	s := h.store.State()
	assert.Equal(t, int64(2), s.SelectedDomainID())
	assert.Nil(t, s.CurrentInsight)
	assert.Nil(t, s.LearningPath)
}

func TestOrchestrator_NewerRunSupersedesOlder(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	gate := h.srv.Hold("topic-progress")

	done := make(chan error, 1)
	go func() { done <- h.orch.FetchTopicProgress(context.Background()) }()
	<-gate.Arrived

	h.srv.SetProgress(goDomain, api.TopicProgress{CompletedInsightsCount: 3, TotalInsightsInLevel: 5})
	require.NoError(t, h.orch.FetchTopicProgress(context.Background()))
	gate.Release()

	require.ErrorIs(t, <-done, learning.ErrStale)
	s := h.store.State()
	require.NotNil(t, s.TopicProgress)
	assert.Equal(t, 3, s.TopicProgress.CompletedInsightsCount)
	assert.Equal(t, 5, s.InsightsRequiredForReview)
}

func TestOrchestrator_ResetCancelsInFlight(t *testing.T) {
	h := newHarness(t)
	h.selectGo(t)
	gate := h.srv.Hold("review")

	done := make(chan error, 1)
	go func() { done <- h.orch.FetchReview(context.Background()) }()
	<-gate.Arrived

	h.orch.Reset()

	select {
	case err := <-done:
		require.ErrorIs(t, err, learning.ErrStale)
	case <-time.After(5 * time.Second):
		t.Fatal("FetchReview did not return after Reset")
	}
	s := h.store.State()
	assert.Nil(t, s.SelectedDomain)
	assert.Nil(t, s.ReviewData)
	assert.False(t, s.IsLoading)
}

func TestOrchestrator_CallerCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.orch.FetchDomains(ctx)

	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	s := h.store.State()
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Error)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server message", &api.ServerError{Status: 404, Message: "Domain not found"}, "Domain not found"},
		{"server status only", &api.ServerError{Status: 500}, "Internal Server Error"},
		{"server plain-text body", &api.ServerError{Status: 409, Body: "Username already taken"}, "Username already taken"},
		{"timeout", context.DeadlineExceeded, "Request timed out"},
		{"transport", &api.TransportError{Err: errors.New("connection refused")}, "Network error: the server could not be reached"},
		{"validation", &api.ValidationError{Endpoint: "review", Err: errors.New("bad")}, "Unexpected response from the server"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, learning.ErrorMessage(tt.err))
		})
	}
}
