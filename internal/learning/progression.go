package learning

import "github.com/abhisek/adaptlearn/internal/api"

// Step is what advancing from the displayed question does.
type Step int

const (
	StepNone   Step = iota // nothing to advance from
	StepNext               // move to the next question
	StepFinish             // leave the flow: complete the insight or review
)

// QuestionView is the derived view of a question list at a cursor.
type QuestionView struct {
	Questions []api.Question
	Index     int

	// Current is nil when the list is empty or the index is out of range.
	Current *api.Question

	// Feedback is set only when it belongs to Current.
	Feedback *api.Feedback

	// IsLast is evaluated against the list, so an empty list is never last.
	IsLast bool
}

// ViewQuestions builds the view of questions at index with the latest feedback.
func ViewQuestions(questions []api.Question, index int, fb *api.Feedback) QuestionView {
	v := QuestionView{Questions: questions, Index: index}
	if index >= 0 && index < len(questions) {
		v.Current = &questions[index]
		v.IsLast = index == len(questions)-1
	}
	if v.Current != nil && fb != nil && fb.QuestionID == v.Current.ID {
		v.Feedback = fb
	}
	return v
}

// ViewActive builds the view of the state's active question list.
func ViewActive(s State) QuestionView {
	return ViewQuestions(s.ActiveQuestions(), s.CurrentQuestionIndex, s.Feedback)
}

// Step reports what advancing does from the displayed question.
func (v QuestionView) Step() Step {
	switch {
	case v.Current == nil:
		return StepNone
	case v.IsLast:
		return StepFinish
	default:
		return StepNext
	}
}

// Submission tracks whether the learner has submitted the displayed
// question. The flag is keyed by cursor index: any index change resets it.
type Submission struct {
	index     int
	submitted bool
}

// Observe resets the flag when index differs from the last observed index.
func (s *Submission) Observe(index int) {
	if index != s.index {
		s.index = index
		s.submitted = false
	}
}

// Mark records a submission for index.
func (s *Submission) Mark(index int) {
	s.index = index
	s.submitted = true
}

// Reset forgets any submission, e.g. when a new question list is shown.
func (s *Submission) Reset() {
	*s = Submission{}
}

// Submitted reports whether index has been submitted.
func (s Submission) Submitted(index int) bool {
	return s.submitted && s.index == index
}

// CanAdvance reports whether the advance action is enabled: the displayed
// question was submitted, its own feedback arrived, and nothing is loading.
func CanAdvance(v QuestionView, sub Submission, loading bool) bool {
	return v.Current != nil && v.Feedback != nil && sub.Submitted(v.Index) && !loading
}
