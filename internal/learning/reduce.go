package learning

import "github.com/abhisek/adaptlearn/internal/api"

// Reduce returns the state that follows s after a. It performs no I/O and
// never mutates s: maps are copied before they change. Unknown actions
// return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		s.IsLoading = a.Loading
		s.Error = ""

	case SetError:
		s.IsLoading = false
		s.Error = a.Message

	case DismissError:
		s.Error = ""

	case SetDomains:
		s.Domains = a.Domains
		s.IsLoading = false

	case SelectDomain:
		d := a.Domain
		s.SelectedDomain = &d
		s.Overview = nil
		s.AssessmentQuestions = nil
		s.AssessmentAnswers = map[int64]string{}
		s.LearningPath = nil
		s.CurrentTopicIndex = 0
		s.CurrentTopic = ""
		s.CurrentInsight = nil
		s.CurrentQuestionIndex = 0
		s.UserAnswersForInsight = map[int64]string{}
		s.Feedback = nil
		s.TopicProgress = nil
		s.ReviewData = nil
		s.InsightsCompletedThisLevel = 0
		s.CurrentLevel = 1

	case SetAssessmentQuestions:
		s.AssessmentQuestions = a.Questions
		s.IsLoading = false

	case UpdateAssessmentAnswer:
		s.AssessmentAnswers = withAnswer(s.AssessmentAnswers, a.QuestionID, a.Answer)

	case SetLearningPath:
		s.LearningPath = a.Path
		s.CurrentTopicIndex = 0
		s.CurrentTopic = topicAt(a.Path, 0)
		s.CurrentLevel = 1
		s.IsLoading = false
		s.InsightsCompletedThisLevel = 0

	case SetCurrentInsight:
		s.CurrentInsight = a.Insight
		s.CurrentQuestionIndex = 0
		s.UserAnswersForInsight = map[int64]string{}
		s.Feedback = nil
		s.IsLoading = false
		if a.Insight != nil {
			s.ReviewData = nil
		}

	case ClearCurrentInsight:
		s.CurrentInsight = nil
		s.Feedback = nil
		if s.ReviewData == nil {
			s.CurrentQuestionIndex = 0
		}

	case SetFeedback:
		s.Feedback = a.Feedback
		s.IsLoading = false

	case UpdateUserAnswer:
		s.UserAnswersForInsight = withAnswer(s.UserAnswersForInsight, a.QuestionID, a.Answer)

	case IncrementQuestionIndex:
		if s.CurrentQuestionIndex < len(s.ActiveQuestions())-1 {
			s.CurrentQuestionIndex++
		}
		s.Feedback = nil

	case InsightCompleted:
		s.CurrentInsight = nil
		s.CurrentQuestionIndex = 0
		s.Feedback = nil
		s.InsightsCompletedThisLevel++
		s.ProfileVersion++

	case SetTopicProgress:
		s.TopicProgress = a.Progress
		if a.Progress != nil && a.Progress.TotalInsightsInLevel > 0 {
			s.InsightsRequiredForReview = a.Progress.TotalInsightsInLevel
		}
		s.IsLoading = false

	case SetReviewData:
		s.ReviewData = a.Review
		s.CurrentQuestionIndex = 0
		s.Feedback = nil
		s.IsLoading = false
		if a.Review != nil {
			s.CurrentInsight = nil
		}

	case AdvanceLevel:
		s.CurrentLevel++
		s = clearLevel(s)

	case AdvanceTopic:
		next := s.CurrentTopicIndex + 1
		if s.LearningPath == nil || next >= len(s.LearningPath.Topics) {
			s.IsLoading = false
			break
		}
		s.CurrentTopicIndex = next
		s.CurrentTopic = s.LearningPath.Topics[next]
		s.CurrentLevel = 1
		s = clearLevel(s)

	case SetOverview:
		s.Overview = a.Overview
		s.TopicProgress = nil
		s.ReviewData = nil
		s.IsLoading = false
		if s.CurrentInsight == nil {
			s.CurrentQuestionIndex = 0
		}

	case SetCurrentTopicIdx:
		s.CurrentTopicIndex = a.Index
		s.CurrentTopic = topicAt(s.LearningPath, a.Index)
		s.CurrentLevel = 1
		s.InsightsCompletedThisLevel = 0
		s.CurrentInsight = nil
		if s.ReviewData == nil {
			s.CurrentQuestionIndex = 0
		}

	case ResetAll:
		return Initial()

	case ProfileTick:
		s.ProfileVersion++
	}
	return s
}

// clearLevel drops everything tied to the current level.
func clearLevel(s State) State {
	s.CurrentInsight = nil
	s.ReviewData = nil
	s.TopicProgress = nil
	s.CurrentQuestionIndex = 0
	s.Feedback = nil
	s.InsightsCompletedThisLevel = 0
	return s
}

// topicAt returns the topic name at idx, or "" when out of range.
func topicAt(p *api.LearningPath, idx int) string {
	if p == nil || idx < 0 || idx >= len(p.Topics) {
		return ""
	}
	return p.Topics[idx]
}

func withAnswer(m map[int64]string, id int64, answer string) map[int64]string {
	out := make(map[int64]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[id] = answer
	return out
}
