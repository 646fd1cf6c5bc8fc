// Package learning holds the client-side learning session: a single state
// value, the pure transition function that advances it, a Store that applies
// transitions and notifies subscribers, and the orchestrators that sequence
// backend calls into transitions.
package learning

import "github.com/abhisek/adaptlearn/internal/api"

// DefaultInsightsRequiredForReview is used until the backend reports the
// per-level total.
const DefaultInsightsRequiredForReview = 6

// State is the whole learning session. A State value is never mutated after
// it has been returned by Reduce; maps and payloads are replaced, not edited.
type State struct {
	// Domains is the domain list with in-progress flags.
	Domains []api.Domain

	// Overview is the latest per-topic snapshot of the selected domain.
	Overview *api.Overview

	// SelectedDomain drives every domain-scoped fetch. Nil until chosen.
	SelectedDomain *api.Domain

	AssessmentQuestions []api.AssessmentQuestion

	// AssessmentAnswers maps assessment question id to the chosen option.
	AssessmentAnswers map[int64]string

	LearningPath *api.LearningPath

	// CurrentTopicIndex indexes LearningPath.Topics.
	CurrentTopicIndex int

	// CurrentTopic is LearningPath.Topics[CurrentTopicIndex], or "" for none.
	CurrentTopic string

	CurrentLevel int

	CurrentInsight *api.Insight

	// CurrentQuestionIndex indexes ActiveQuestions().
	CurrentQuestionIndex int

	// UserAnswersForInsight maps question id to the answer the learner gave.
	UserAnswersForInsight map[int64]string

	// Feedback is the result of the most recent answer submission. It is only
	// shown against the question whose id it carries.
	Feedback *api.Feedback

	TopicProgress *api.TopicProgress

	// ReviewData is set while a review is on screen.
	ReviewData *api.Review

	IsLoading bool

	// Error is the message of the last failed operation, "" when none.
	Error string

	InsightsCompletedThisLevel int

	// InsightsRequiredForReview is the backend-declared insight total per level.
	InsightsRequiredForReview int

	// ProfileVersion increments whenever cached profile data goes stale.
	ProfileVersion int
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{
		AssessmentAnswers:         map[int64]string{},
		UserAnswersForInsight:     map[int64]string{},
		CurrentLevel:              1,
		InsightsRequiredForReview: DefaultInsightsRequiredForReview,
	}
}

// ActiveQuestions returns the question list on screen: the review's revision
// questions while a review is loaded, else the current insight's questions.
func (s State) ActiveQuestions() []api.Question {
	switch {
	case s.ReviewData != nil:
		return s.ReviewData.RevisionQuestions
	case s.CurrentInsight != nil:
		return s.CurrentInsight.Questions
	default:
		return nil
	}
}

// CurrentQuestion returns the displayed question, or nil when the active
// list is empty.
func (s State) CurrentQuestion() *api.Question {
	qs := s.ActiveQuestions()
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(qs) {
		return nil
	}
	return &qs[s.CurrentQuestionIndex]
}

// SelectedDomainID returns the selected domain id, or 0 when none.
func (s State) SelectedDomainID() int64 {
	if s.SelectedDomain == nil {
		return 0
	}
	return s.SelectedDomain.ID
}

// AssessmentComplete reports whether every assessment question has an answer.
func (s State) AssessmentComplete() bool {
	if len(s.AssessmentQuestions) == 0 {
		return false
	}
	for _, q := range s.AssessmentQuestions {
		if s.AssessmentAnswers[q.ID] == "" {
			return false
		}
	}
	return true
}
