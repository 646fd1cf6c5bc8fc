package learning

import "github.com/abhisek/adaptlearn/internal/api"

// ActionType names a transition.
type ActionType string

const (
	TypeSetLoading             ActionType = "SET_LOADING"
	TypeSetError               ActionType = "SET_ERROR"
	TypeDismissError           ActionType = "DISMISS_ERROR"
	TypeSetDomains             ActionType = "SET_DOMAINS"
	TypeSelectDomain           ActionType = "SELECT_DOMAIN"
	TypeSetAssessmentQuestions ActionType = "SET_ASSESSMENT_QUESTIONS"
	TypeUpdateAssessmentAnswer ActionType = "UPDATE_ASSESSMENT_ANSWER"
	TypeSetLearningPath        ActionType = "SET_LEARNING_PATH"
	TypeSetCurrentInsight      ActionType = "SET_CURRENT_INSIGHT"
	TypeClearCurrentInsight    ActionType = "CLEAR_CURRENT_INSIGHT"
	TypeSetFeedback            ActionType = "SET_FEEDBACK"
	TypeUpdateUserAnswer       ActionType = "UPDATE_USER_ANSWER"
	TypeIncrementQuestionIndex ActionType = "INCREMENT_QUESTION_INDEX"
	TypeInsightCompleted       ActionType = "INSIGHT_COMPLETED"
	TypeSetTopicProgress       ActionType = "SET_TOPIC_PROGRESS"
	TypeSetReviewData          ActionType = "SET_REVIEW_DATA"
	TypeAdvanceLevel           ActionType = "ADVANCE_LEVEL"
	TypeAdvanceTopic           ActionType = "ADVANCE_TOPIC"
	TypeSetOverview            ActionType = "SET_OVERVIEW"
	TypeSetCurrentTopicIdx     ActionType = "SET_CURRENT_TOPIC_IDX"
	TypeResetAll               ActionType = "RESET_ALL"
	TypeProfileTick            ActionType = "PROFILE_TICK"
)

// Action is a tagged transition request.
type Action interface {
	Type() ActionType
}

type SetLoading struct{ Loading bool }

type SetError struct{ Message string }

// DismissError clears the error banner without touching other state.
type DismissError struct{}

type SetDomains struct{ Domains []api.Domain }

type SelectDomain struct{ Domain api.Domain }

type SetAssessmentQuestions struct{ Questions []api.AssessmentQuestion }

type UpdateAssessmentAnswer struct {
	QuestionID int64
	Answer     string
}

type SetLearningPath struct{ Path *api.LearningPath }

type SetCurrentInsight struct{ Insight *api.Insight }

type ClearCurrentInsight struct{}

type SetFeedback struct{ Feedback *api.Feedback }

type UpdateUserAnswer struct {
	QuestionID int64
	Answer     string
}

type IncrementQuestionIndex struct{}

type InsightCompleted struct{}

type SetTopicProgress struct{ Progress *api.TopicProgress }

type SetReviewData struct{ Review *api.Review }

type AdvanceLevel struct{}

type AdvanceTopic struct{}

type SetOverview struct{ Overview *api.Overview }

type SetCurrentTopicIdx struct{ Index int }

type ResetAll struct{}

// ProfileTick marks cached profile data stale.
type ProfileTick struct{}

func (SetLoading) Type() ActionType             { return TypeSetLoading }
func (SetError) Type() ActionType               { return TypeSetError }
func (DismissError) Type() ActionType           { return TypeDismissError }
func (SetDomains) Type() ActionType             { return TypeSetDomains }
func (SelectDomain) Type() ActionType           { return TypeSelectDomain }
func (SetAssessmentQuestions) Type() ActionType { return TypeSetAssessmentQuestions }
func (UpdateAssessmentAnswer) Type() ActionType { return TypeUpdateAssessmentAnswer }
func (SetLearningPath) Type() ActionType        { return TypeSetLearningPath }
func (SetCurrentInsight) Type() ActionType      { return TypeSetCurrentInsight }
func (ClearCurrentInsight) Type() ActionType    { return TypeClearCurrentInsight }
func (SetFeedback) Type() ActionType            { return TypeSetFeedback }
func (UpdateUserAnswer) Type() ActionType       { return TypeUpdateUserAnswer }
func (IncrementQuestionIndex) Type() ActionType { return TypeIncrementQuestionIndex }
func (InsightCompleted) Type() ActionType       { return TypeInsightCompleted }
func (SetTopicProgress) Type() ActionType       { return TypeSetTopicProgress }
func (SetReviewData) Type() ActionType          { return TypeSetReviewData }
func (AdvanceLevel) Type() ActionType           { return TypeAdvanceLevel }
func (AdvanceTopic) Type() ActionType           { return TypeAdvanceTopic }
func (SetOverview) Type() ActionType            { return TypeSetOverview }
func (SetCurrentTopicIdx) Type() ActionType     { return TypeSetCurrentTopicIdx }
func (ResetAll) Type() ActionType               { return TypeResetAll }
func (ProfileTick) Type() ActionType            { return TypeProfileTick }
