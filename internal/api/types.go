package api

// Domain is a subject area, with the caller's in-progress flag.
type Domain struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	InProgress  bool   `json:"inProgress" yaml:"inProgress"`
}

// AssessmentQuestion is one placement question for a domain.
type AssessmentQuestion struct {
	ID           int64    `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// AssessmentSubmission carries the placement answers keyed by question id.
type AssessmentSubmission struct {
	DomainID int64            `json:"domainId"`
	Answers  map[int64]string `json:"answers"`
}

// LearningPath is the ordered topic list produced by an assessment.
type LearningPath struct {
	DomainName string   `json:"domainName" yaml:"domainName"`
	Topics     []string `json:"topics" yaml:"topics"`
}

// TopicOverview is the server-computed state of one topic.
type TopicOverview struct {
	TopicName         string `json:"topicName" yaml:"topicName"`
	Level             int    `json:"level" yaml:"level"`
	CompletedInsights int    `json:"completedInsights" yaml:"completedInsights"`
	RequiredInsights  int    `json:"requiredInsights" yaml:"requiredInsights"`
	ReviewAvailable   bool   `json:"reviewAvailable" yaml:"reviewAvailable"`
	Unlocked          bool   `json:"unlocked" yaml:"unlocked"`
	Current           bool   `json:"current" yaml:"current"`
}

// Overview is the per-topic snapshot of a domain.
type Overview struct {
	DomainID   int64           `json:"domainId" yaml:"domainId"`
	DomainName string          `json:"domainName" yaml:"domainName"`
	Topics     []TopicOverview `json:"topics" yaml:"topics"`
}

// Question is a quiz question inside an insight or a review.
type Question struct {
	ID           int64    `json:"id"`
	QuestionType string   `json:"questionType,omitempty"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// Insight is one learning unit: an explanation plus questions.
type Insight struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Explanation string     `json:"explanation"`
	Completed   bool       `json:"completed"`
	Questions   []Question `json:"questions"`
}

// AnswerSubmission is a single answer to an insight or review question.
type AnswerSubmission struct {
	QuestionID     int64  `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	TimeTakenMs    int64  `json:"timeTakenMs"`
	ForReview      bool   `json:"forReview"`
}

// Feedback is the graded result of an answer submission.
type Feedback struct {
	QuestionID     int64  `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	Correct        bool   `json:"correct"`
	CorrectAnswer  string `json:"correctAnswer"`
	Feedback       string `json:"feedback"`
}

// TopicProgress describes progress through the current level of a topic.
type TopicProgress struct {
	TopicName                      string `json:"topicName"`
	Level                          int    `json:"level"`
	CompletedInsightsCount         int    `json:"completedInsightsCount"`
	TotalInsightsInLevel           int    `json:"totalInsightsInLevel"`
	TotalGeneratedInsightsForTopic int    `json:"totalGeneratedInsightsForTopic"`
	ReviewAvailable                bool   `json:"reviewAvailable"`
}

// Review is the level checkpoint: a summary plus revision questions.
type Review struct {
	Summary           string     `json:"summary"`
	Strengths         []string   `json:"strengths"`
	Weaknesses        []string   `json:"weaknesses"`
	RevisionQuestions []Question `json:"revisionQuestions"`
}

// Profile is the signed-in user's summary.
type Profile struct {
	ID                int64    `json:"id" yaml:"id"`
	Username          string   `json:"username" yaml:"username"`
	Email             string   `json:"email" yaml:"email"`
	OverallProgress   float64  `json:"overallProgress" yaml:"overallProgress"`
	Domains           []Domain `json:"domains" yaml:"domains"`
	StartedDomains    int      `json:"startedDomains" yaml:"startedDomains"`
	CompletedInsights int      `json:"completedInsights" yaml:"completedInsights"`
}

// Credentials are sent to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration creates a new account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthToken is returned by a successful login.
type AuthToken struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// User is the account created by registration.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
