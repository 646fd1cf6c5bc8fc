package learning

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/adaptlearn/internal/api"
)

// API is the backend surface the orchestrators call. *api.Client satisfies it.
type API interface {
	DomainsWithStatus(ctx context.Context) ([]api.Domain, error)
	AssessmentQuestions(ctx context.Context, domainID int64) ([]api.AssessmentQuestion, error)
	StartDomain(ctx context.Context, sub api.AssessmentSubmission) (*api.LearningPath, error)
	NextInsight(ctx context.Context, domainID int64) (*api.Insight, error)
	SubmitAnswer(ctx context.Context, sub api.AnswerSubmission) (*api.Feedback, error)
	TopicProgress(ctx context.Context, domainID int64) (*api.TopicProgress, error)
	Review(ctx context.Context, domainID int64) (*api.Review, error)
	CompleteReview(ctx context.Context, domainID int64, satisfactory bool) error
	Overview(ctx context.Context, domainID int64) (*api.Overview, error)
	SelectTopic(ctx context.Context, domainID int64, idx int) error
}

// Operation names. Each has its own generation counter.
const (
	OpFetchDomains     = "fetch-domains"
	OpSelectDomain     = "select-domain"
	OpSubmitAssessment = "submit-assessment"
	OpFetchNextInsight = "fetch-next-insight"
	OpSubmitAnswer     = "submit-answer"
	OpFetchProgress    = "fetch-progress"
	OpFetchReview      = "fetch-review"
	OpCompleteReview   = "complete-review"
	OpFetchOverview    = "fetch-overview"
	OpPickTopic        = "pick-topic"
)

// ticket identifies one run of an operation. Its responses apply only while
// it is the newest run of that operation and the domain has not changed.
type ticket struct {
	ctx      context.Context
	op       string
	gen      uint64
	epoch    uint64
	domainID int64 // 0 = not bound to a domain
}

type opState struct {
	gen    uint64
	cancel context.CancelFunc
}

// Orchestrator runs the session operations: each validates its
// preconditions, marks loading, calls the backend and dispatches the
// resulting transitions. Operations block until done and are safe to run
// from multiple goroutines; a superseded run is cancelled and its late
// response is dropped.
type Orchestrator struct {
	api   API
	store *Store
	log   *zap.Logger

	mu    sync.Mutex
	ops   map[string]*opState
	epoch uint64 // bumped on domain selection and reset
}

// NewOrchestrator creates an Orchestrator dispatching into store.
func NewOrchestrator(backend API, store *Store, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		api:   backend,
		store: store,
		log:   log,
		ops:   map[string]*opState{},
	}
}

// Store returns the store the orchestrator dispatches into.
func (o *Orchestrator) Store() *Store { return o.store }

// begin starts a new run of op, cancelling the previous in-flight run.
func (o *Orchestrator) begin(ctx context.Context, op string, domainID int64) *ticket {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.ops[op]
	if st == nil {
		st = &opState{}
		o.ops[op] = st
	}
	if st.cancel != nil {
		st.cancel()
	}
	st.gen++

	ctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	return &ticket{ctx: ctx, op: op, gen: st.gen, epoch: o.epoch, domainID: domainID}
}

// end releases the run's context.
func (o *Orchestrator) end(t *ticket) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.ops[t.op]
	if st.gen == t.gen && st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
}

// currentLocked reports whether t may still change state. Caller holds o.mu.
func (o *Orchestrator) currentLocked(t *ticket) bool {
	if o.ops[t.op].gen != t.gen || o.epoch != t.epoch {
		return false
	}
	return t.domainID == 0 || o.store.State().SelectedDomainID() == t.domainID
}

// apply dispatches actions if t is still current.
func (o *Orchestrator) apply(t *ticket, actions ...Action) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.currentLocked(t) {
		o.log.Debug("dropping stale response", zap.String("op", t.op), zap.Uint64("gen", t.gen))
		return ErrStale
	}
	for _, a := range actions {
		o.store.Dispatch(a)
	}
	return nil
}

// fail records err for t. A 401 is handled globally by the client, so it
// only ends the loading state here.
func (o *Orchestrator) fail(t *ticket, err error) error {
	if errors.Is(err, context.Canceled) {
		o.log.Debug("operation cancelled", zap.String("op", t.op))
		if staleErr := o.apply(t, SetLoading{Loading: false}); staleErr != nil {
			return staleErr
		}
		return err
	}
	if errors.Is(err, api.ErrUnauthorized) {
		_ = o.apply(t, SetLoading{Loading: false})
		return err
	}

	o.log.Warn("operation failed", zap.String("op", t.op), zap.Error(err))
	if staleErr := o.apply(t, SetError{Message: ErrorMessage(err)}); staleErr != nil {
		return staleErr
	}
	return err
}

// shownInBanner reports whether err belongs in the error banner.
func shownInBanner(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, api.ErrUnauthorized)
}

// FetchDomains loads the domain list with status flags.
func (o *Orchestrator) FetchDomains(ctx context.Context) error {
	t := o.begin(ctx, OpFetchDomains, 0)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	domains, err := o.api.DomainsWithStatus(t.ctx)
	if err != nil {
		return o.fail(t, err)
	}
	return o.apply(t, SetDomains{Domains: domains})
}

// SelectDomain resets all domain-scoped state to d and loads its assessment
// questions. Every in-flight response for the previous domain becomes stale.
func (o *Orchestrator) SelectDomain(ctx context.Context, d api.Domain) error {
	o.mu.Lock()
	o.epoch++
	o.store.Dispatch(SelectDomain{Domain: d})
	o.mu.Unlock()

	t := o.begin(ctx, OpSelectDomain, d.ID)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	qs, err := o.api.AssessmentQuestions(t.ctx, d.ID)
	if err != nil {
		return o.fail(t, err)
	}
	return o.apply(t, SetAssessmentQuestions{Questions: qs})
}

// UpdateAssessmentAnswer records the option chosen for an assessment question.
func (o *Orchestrator) UpdateAssessmentAnswer(questionID int64, answer string) {
	o.store.Dispatch(UpdateAssessmentAnswer{QuestionID: questionID, Answer: answer})
}

// SubmitAssessment posts the answers, installs the learning path and, when
// the path has topics, fetches topic progress. No-op without a domain.
func (o *Orchestrator) SubmitAssessment(ctx context.Context) error {
	s := o.store.State()
	if s.SelectedDomain == nil {
		return nil
	}
	domainID := s.SelectedDomain.ID

	t := o.begin(ctx, OpSubmitAssessment, domainID)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	path, err := o.api.StartDomain(t.ctx, api.AssessmentSubmission{
		DomainID: domainID,
		Answers:  s.AssessmentAnswers,
	})
	if err != nil {
		return o.fail(t, err)
	}

	// Step 1: install the path. Step 2: refresh progress for it.
	if err := o.apply(t, SetLearningPath{Path: path}, ProfileTick{}); err != nil {
		return err
	}
	if path != nil && len(path.Topics) > 0 {
		return o.stepFetchTopicProgress(t, domainID)
	}
	return nil
}

// FetchNextInsight loads the next insight. No content means the level is
// exhausted: the current insight is cleared and progress refreshed so the
// review becomes visible.
func (o *Orchestrator) FetchNextInsight(ctx context.Context) error {
	domainID := o.store.State().SelectedDomainID()
	if domainID == 0 {
		return nil
	}

	t := o.begin(ctx, OpFetchNextInsight, domainID)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	ins, err := o.api.NextInsight(t.ctx, domainID)
	if err != nil {
		return o.fail(t, err)
	}
	if ins != nil {
		return o.apply(t, SetCurrentInsight{Insight: ins})
	}

	if err := o.apply(t, ClearCurrentInsight{}); err != nil {
		return err
	}
	return o.stepFetchTopicProgress(t, domainID)
}

// SubmitQuestionAnswer grades an answer, shows its feedback and always
// refreshes topic progress afterwards.
func (o *Orchestrator) SubmitQuestionAnswer(ctx context.Context, questionID int64, answer string, timeTaken time.Duration, forReview bool) error {
	domainID := o.store.State().SelectedDomainID()

	t := o.begin(ctx, OpSubmitAnswer, domainID)
	defer o.end(t)

	if err := o.apply(t, UpdateUserAnswer{QuestionID: questionID, Answer: answer}, SetLoading{Loading: true}); err != nil {
		return err
	}
	fb, err := o.api.SubmitAnswer(t.ctx, api.AnswerSubmission{
		QuestionID:     questionID,
		SelectedAnswer: answer,
		TimeTakenMs:    timeTaken.Milliseconds(),
		ForReview:      forReview,
	})
	if err != nil {
		return o.fail(t, err)
	}
	if err := o.apply(t, SetFeedback{Feedback: fb}); err != nil {
		return err
	}
	if domainID != 0 {
		return o.stepFetchTopicProgress(t, domainID)
	}
	return nil
}

// NextQuestionOrInsight advances within the current insight, or completes
// it from the last question.
func (o *Orchestrator) NextQuestionOrInsight() {
	s := o.store.State()
	if s.CurrentInsight == nil {
		return
	}
	if s.CurrentQuestionIndex < len(s.CurrentInsight.Questions)-1 {
		o.store.Dispatch(IncrementQuestionIndex{})
		return
	}
	o.store.Dispatch(InsightCompleted{})
}

// NextReviewQuestion advances within the review; it never moves past the
// last revision question.
func (o *Orchestrator) NextReviewQuestion() {
	s := o.store.State()
	if s.ReviewData == nil {
		return
	}
	if s.CurrentQuestionIndex < len(s.ReviewData.RevisionQuestions)-1 {
		o.store.Dispatch(IncrementQuestionIndex{})
	}
}

// FetchTopicProgress refreshes progress for the selected domain.
func (o *Orchestrator) FetchTopicProgress(ctx context.Context) error {
	domainID := o.store.State().SelectedDomainID()
	if domainID == 0 {
		return nil
	}
	t := o.begin(ctx, OpFetchProgress, domainID)
	defer o.end(t)
	return o.stepFetchTopicProgress(t, domainID)
}

// FetchReview loads the review for the selected domain.
func (o *Orchestrator) FetchReview(ctx context.Context) error {
	domainID := o.store.State().SelectedDomainID()
	if domainID == 0 {
		return nil
	}

	t := o.begin(ctx, OpFetchReview, domainID)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	r, err := o.api.Review(t.ctx, domainID)
	if err != nil {
		return o.fail(t, err)
	}
	return o.apply(t, SetReviewData{Review: r})
}

// CompleteReview closes the review. Only a satisfactory review advances the
// level locally; progress and overview are refreshed either way, in that
// order, and the review is cleared last. A failed refresh is shown but does
// not stop the sequence.
func (o *Orchestrator) CompleteReview(ctx context.Context, satisfactory bool) error {
	domainID := o.store.State().SelectedDomainID()
	if domainID == 0 {
		return nil
	}

	t := o.begin(ctx, OpCompleteReview, domainID)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	if err := o.api.CompleteReview(t.ctx, domainID, satisfactory); err != nil {
		return o.fail(t, err)
	}
	if satisfactory {
		if err := o.apply(t, AdvanceLevel{}); err != nil {
			return err
		}
	}

	progressErr := o.stepFetchTopicProgress(t, domainID)
	if errors.Is(progressErr, ErrStale) {
		return progressErr
	}
	overviewErr := o.stepFetchOverview(t, domainID)
	if errors.Is(overviewErr, ErrStale) {
		return overviewErr
	}
	stepErr := errors.Join(progressErr, overviewErr)
	final := []Action{SetReviewData{Review: nil}}
	if shownInBanner(stepErr) {
		// A later step's SET_LOADING cleared the banner; show it again.
		final = append(final, SetError{Message: ErrorMessage(stepErr)})
	}
	if err := o.apply(t, final...); err != nil {
		return err
	}
	return stepErr
}

// FetchOverview loads the domain overview and reconciles the local topic
// cursor with the topic the server marks current.
func (o *Orchestrator) FetchOverview(ctx context.Context, domainID int64) error {
	if domainID == 0 {
		return nil
	}
	t := o.begin(ctx, OpFetchOverview, domainID)
	defer o.end(t)
	return o.stepFetchOverview(t, domainID)
}

// PickTopic makes topic idx current on the server, moves the local cursor,
// then re-fetches the overview to reconcile.
func (o *Orchestrator) PickTopic(ctx context.Context, domainID int64, idx int) error {
	if domainID == 0 {
		return nil
	}

	t := o.begin(ctx, OpPickTopic, domainID)
	defer o.end(t)

	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	if err := o.api.SelectTopic(t.ctx, domainID, idx); err != nil {
		return o.fail(t, err)
	}
	if err := o.apply(t, SetCurrentTopicIdx{Index: idx}); err != nil {
		return err
	}
	return o.stepFetchOverview(t, domainID)
}

// DismissError clears the error banner.
func (o *Orchestrator) DismissError() {
	if o.store.State().Error != "" {
		o.store.Dispatch(DismissError{})
	}
}

// Reset cancels every in-flight operation and returns to the initial state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.epoch++
	for _, st := range o.ops {
		if st.cancel != nil {
			st.cancel()
			st.cancel = nil
		}
	}
	o.store.Dispatch(ResetAll{})
}

// stepFetchTopicProgress is the shared "refresh progress" step.
func (o *Orchestrator) stepFetchTopicProgress(t *ticket, domainID int64) error {
	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	p, err := o.api.TopicProgress(t.ctx, domainID)
	if err != nil {
		return o.fail(t, err)
	}
	return o.apply(t, SetTopicProgress{Progress: p})
}

// stepFetchOverview installs the overview, derives the learning path from
// it, then jumps the cursor to the topic marked current.
func (o *Orchestrator) stepFetchOverview(t *ticket, domainID int64) error {
	if err := o.apply(t, SetLoading{Loading: true}); err != nil {
		return err
	}
	ov, err := o.api.Overview(t.ctx, domainID)
	if err != nil {
		return o.fail(t, err)
	}

	path := &api.LearningPath{DomainName: ov.DomainName}
	current := -1
	for i, topic := range ov.Topics {
		path.Topics = append(path.Topics, topic.TopicName)
		if current < 0 && topic.Current {
			current = i
		}
	}

	actions := []Action{SetOverview{Overview: ov}, SetLearningPath{Path: path}}
	if current >= 0 {
		actions = append(actions, SetCurrentTopicIdx{Index: current})
	}
	return o.apply(t, actions...)
}
