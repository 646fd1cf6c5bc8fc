package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func domainPath(domainID int64, suffix string) string {
	return fmt.Sprintf("/learning/domains/%d/%s", domainID, suffix)
}

// DomainsWithStatus lists all domains with the caller's in-progress flags.
func (c *Client) DomainsWithStatus(ctx context.Context) ([]Domain, error) {
	var out []Domain
	_, err := c.do(ctx, call{
		endpoint: "domains-status",
		method:   http.MethodGet,
		path:     "/learning/domains/status",
		schema:   DomainsSchema,
		out:      &out,
	})
	return out, err
}

// AssessmentQuestions fetches the placement questions for a domain.
func (c *Client) AssessmentQuestions(ctx context.Context, domainID int64) ([]AssessmentQuestion, error) {
	var out []AssessmentQuestion
	_, err := c.do(ctx, call{
		endpoint: "assessment-questions",
		method:   http.MethodGet,
		path:     domainPath(domainID, "assessment-questions"),
		schema:   AssessmentQuestionsSchema,
		out:      &out,
	})
	return out, err
}

// StartDomain submits the assessment and returns the learning path.
func (c *Client) StartDomain(ctx context.Context, sub AssessmentSubmission) (*LearningPath, error) {
	var out LearningPath
	if _, err := c.do(ctx, call{
		endpoint: "start-domain",
		method:   http.MethodPost,
		path:     "/learning/domains/start",
		body:     sub,
		schema:   LearningPathSchema,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// NextInsight returns the next insight of the current level, or nil when the
// level's insights are exhausted (204 or empty body).
func (c *Client) NextInsight(ctx context.Context, domainID int64) (*Insight, error) {
	var out Insight
	decoded, err := c.do(ctx, call{
		endpoint: "next-insight",
		method:   http.MethodGet,
		path:     domainPath(domainID, "next-insight"),
		schema:   InsightSchema,
		out:      &out,
		emptyOK:  true,
	})
	if err != nil || !decoded {
		return nil, err
	}
	return &out, nil
}

// SubmitAnswer grades one answer.
func (c *Client) SubmitAnswer(ctx context.Context, sub AnswerSubmission) (*Feedback, error) {
	var out Feedback
	if _, err := c.do(ctx, call{
		endpoint: "submit-answer",
		method:   http.MethodPost,
		path:     "/learning/insights/submit-answer",
		body:     sub,
		schema:   FeedbackSchema,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopicProgress fetches progress through the current topic level.
func (c *Client) TopicProgress(ctx context.Context, domainID int64) (*TopicProgress, error) {
	var out TopicProgress
	if _, err := c.do(ctx, call{
		endpoint: "topic-progress",
		method:   http.MethodGet,
		path:     domainPath(domainID, "progress"),
		schema:   TopicProgressSchema,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Review fetches the review checkpoint for the current level.
func (c *Client) Review(ctx context.Context, domainID int64) (*Review, error) {
	var out Review
	if _, err := c.do(ctx, call{
		endpoint: "review",
		method:   http.MethodGet,
		path:     domainPath(domainID, "review"),
		schema:   ReviewSchema,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteReview closes the review; the backend advances the level only when
// satisfactory is true.
func (c *Client) CompleteReview(ctx context.Context, domainID int64, satisfactory bool) error {
	_, err := c.do(ctx, call{
		endpoint: "complete-review",
		method:   http.MethodPost,
		path:     domainPath(domainID, "complete-review"),
		query:    url.Values{"satisfactoryPerformance": {strconv.FormatBool(satisfactory)}},
	})
	return err
}

// Overview fetches the per-topic snapshot of a domain.
func (c *Client) Overview(ctx context.Context, domainID int64) (*Overview, error) {
	var out Overview
	if _, err := c.do(ctx, call{
		endpoint: "overview",
		method:   http.MethodGet,
		path:     domainPath(domainID, "overview"),
		schema:   OverviewSchema,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectTopic makes topic idx the current topic server-side.
func (c *Client) SelectTopic(ctx context.Context, domainID int64, idx int) error {
	_, err := c.do(ctx, call{
		endpoint: "select-topic",
		method:   http.MethodPost,
		path:     domainPath(domainID, "select-topic/"+strconv.Itoa(idx)),
	})
	return err
}

// Profile fetches the signed-in user's summary.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if _, err := c.do(ctx, call{
		endpoint: "profile",
		method:   http.MethodGet,
		path:     "/auth/me",
		schema:   ProfileSchema,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token. Bad credentials come back as a
// *ServerError with status 401.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthToken, error) {
	var out AuthToken
	if _, err := c.do(ctx, call{
		endpoint:  "login",
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      creds,
		schema:    AuthTokenSchema,
		out:       &out,
		anonymous: true,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, reg Registration) (*User, error) {
	var out User
	if _, err := c.do(ctx, call{
		endpoint:  "register",
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      reg,
		schema:    UserSchema,
		out:       &out,
		anonymous: true,
		emptyOK:   true,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
