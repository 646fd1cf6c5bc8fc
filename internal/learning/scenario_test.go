package learning

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/adaptlearn/internal/api"
)

// scenario is a scripted sequence of transitions with expectations checked
// after individual steps.
type scenario struct {
	// Name identifies the scenario in test output.
	Name string `yaml:"name"`

	// Description says what the scenario exercises.
	Description string `yaml:"description"`

	Steps []scenarioStep `yaml:"steps"`
}

// scenarioStep is one action plus an optional expectation on the state
// that follows it.
type scenarioStep struct {
	Type       string           `yaml:"type"`
	DomainID   int64            `yaml:"domainId"`
	Topics     []string         `yaml:"topics"`
	Insight    *scenarioInsight `yaml:"insight"`
	Review     *scenarioReview  `yaml:"review"`
	Progress   *scenarioProg    `yaml:"progress"`
	Index      int              `yaml:"index"`
	QuestionID int64            `yaml:"questionId"`
	Answer     string           `yaml:"answer"`
	Message    string           `yaml:"message"`
	Loading    bool             `yaml:"loading"`
	Expect     *scenarioExpect  `yaml:"expect"`
}

type scenarioInsight struct {
	ID        int64 `yaml:"id"`
	Questions int   `yaml:"questions"`
}

type scenarioReview struct {
	Questions int `yaml:"questions"`
}

type scenarioProg struct {
	Completed       int  `yaml:"completed"`
	Total           int  `yaml:"total"`
	ReviewAvailable bool `yaml:"reviewAvailable"`
}

// scenarioExpect lists the fields to check. Nil fields are not checked.
type scenarioExpect struct {
	Domain             *int64  `yaml:"domain"`
	Topic              *string `yaml:"topic"`
	TopicIndex         *int    `yaml:"topicIndex"`
	Level              *int    `yaml:"level"`
	QuestionIndex      *int    `yaml:"questionIndex"`
	QuestionID         *int64  `yaml:"questionId"`
	HasInsight         *bool   `yaml:"hasInsight"`
	HasReview          *bool   `yaml:"hasReview"`
	HasProgress        *bool   `yaml:"hasProgress"`
	HasFeedback        *bool   `yaml:"hasFeedback"`
	Loading            *bool   `yaml:"loading"`
	Error              *string `yaml:"error"`
	Required           *int    `yaml:"required"`
	CompletedThisLevel *int    `yaml:"completedThisLevel"`
	ProfileVersion     *int    `yaml:"profileVersion"`
	Answers            *int    `yaml:"answers"`
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario has no name", path)
	}
	return &sc, nil
}

func (st scenarioStep) action() (Action, error) {
	switch ActionType(st.Type) {
	case TypeSetLoading:
		return SetLoading{Loading: st.Loading}, nil
	case TypeSetError:
		return SetError{Message: st.Message}, nil
	case TypeDismissError:
		return DismissError{}, nil
	case TypeSelectDomain:
		return SelectDomain{Domain: api.Domain{ID: st.DomainID, Name: fmt.Sprintf("domain-%d", st.DomainID)}}, nil
	case TypeUpdateAssessmentAnswer:
		return UpdateAssessmentAnswer{QuestionID: st.QuestionID, Answer: st.Answer}, nil
	case TypeSetLearningPath:
		return SetLearningPath{Path: path(st.Topics...)}, nil
	case TypeSetCurrentInsight:
		if st.Insight == nil {
			return SetCurrentInsight{}, nil
		}
		return SetCurrentInsight{Insight: insight(st.Insight.ID, st.Insight.Questions)}, nil
	case TypeClearCurrentInsight:
		return ClearCurrentInsight{}, nil
	case TypeSetFeedback:
		return SetFeedback{Feedback: &api.Feedback{QuestionID: st.QuestionID, SelectedAnswer: st.Answer}}, nil
	case TypeUpdateUserAnswer:
		return UpdateUserAnswer{QuestionID: st.QuestionID, Answer: st.Answer}, nil
	case TypeIncrementQuestionIndex:
		return IncrementQuestionIndex{}, nil
	case TypeInsightCompleted:
		return InsightCompleted{}, nil
	case TypeSetTopicProgress:
		if st.Progress == nil {
			return SetTopicProgress{}, nil
		}
		return SetTopicProgress{Progress: &api.TopicProgress{
			CompletedInsightsCount: st.Progress.Completed,
			TotalInsightsInLevel:   st.Progress.Total,
			ReviewAvailable:        st.Progress.ReviewAvailable,
		}}, nil
	case TypeSetReviewData:
		if st.Review == nil {
			return SetReviewData{}, nil
		}
		return SetReviewData{Review: review(st.Review.Questions)}, nil
	case TypeAdvanceLevel:
		return AdvanceLevel{}, nil
	case TypeAdvanceTopic:
		return AdvanceTopic{}, nil
	case TypeSetOverview:
		return SetOverview{Overview: &api.Overview{DomainID: st.DomainID}}, nil
	case TypeSetCurrentTopicIdx:
		return SetCurrentTopicIdx{Index: st.Index}, nil
	case TypeResetAll:
		return ResetAll{}, nil
	case TypeProfileTick:
		return ProfileTick{}, nil
	}
	return nil, fmt.Errorf("unknown action type %q", st.Type)
}

func (e *scenarioExpect) check(s State) []string {
	var diffs []string
	mismatch := func(field string, got, want any) {
		if got != want {
			diffs = append(diffs, fmt.Sprintf("%s = %v, want %v", field, got, want))
		}
	}

	if e.Domain != nil {
		mismatch("domain", s.SelectedDomainID(), *e.Domain)
	}
	if e.Topic != nil {
		mismatch("topic", s.CurrentTopic, *e.Topic)
	}
	if e.TopicIndex != nil {
		mismatch("topicIndex", s.CurrentTopicIndex, *e.TopicIndex)
	}
	if e.Level != nil {
		mismatch("level", s.CurrentLevel, *e.Level)
	}
	if e.QuestionIndex != nil {
		mismatch("questionIndex", s.CurrentQuestionIndex, *e.QuestionIndex)
	}
	if e.QuestionID != nil {
		var id int64
		if q := s.CurrentQuestion(); q != nil {
			id = q.ID
		}
		mismatch("questionId", id, *e.QuestionID)
	}
	if e.HasInsight != nil {
		mismatch("hasInsight", s.CurrentInsight != nil, *e.HasInsight)
	}
	if e.HasReview != nil {
		mismatch("hasReview", s.ReviewData != nil, *e.HasReview)
	}
	if e.HasProgress != nil {
		mismatch("hasProgress", s.TopicProgress != nil, *e.HasProgress)
	}
	if e.HasFeedback != nil {
		mismatch("hasFeedback", s.Feedback != nil, *e.HasFeedback)
	}
	if e.Loading != nil {
		mismatch("loading", s.IsLoading, *e.Loading)
	}
	if e.Error != nil {
		mismatch("error", s.Error, *e.Error)
	}
	if e.Required != nil {
		mismatch("required", s.InsightsRequiredForReview, *e.Required)
	}
	if e.CompletedThisLevel != nil {
		mismatch("completedThisLevel", s.InsightsCompletedThisLevel, *e.CompletedThisLevel)
	}
	if e.ProfileVersion != nil {
		mismatch("profileVersion", s.ProfileVersion, *e.ProfileVersion)
	}
	if e.Answers != nil {
		mismatch("answers", len(s.UserAnswersForInsight), *e.Answers)
	}
	return diffs
}

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, file := range files {
		sc, err := loadScenario(file)
		if err != nil {
			t.Fatal(err)
		}

		t.Run(sc.Name, func(t *testing.T) {
			s := Initial()
			for i, st := range sc.Steps {
				a, err := st.action()
				if err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
				s = Reduce(s, a)

				if st.Expect == nil {
					continue
				}
				if diffs := st.Expect.check(s); len(diffs) > 0 {
					t.Errorf("step %d (%s):\n  %s", i, st.Type, strings.Join(diffs, "\n  "))
				}
			}
		})
	}
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yaml")
	body := "name: bad\nsteps:\n  - type: SET_LOADING\n    bogus: 1\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadScenario(file); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}
