// Package apitest runs an in-process fake of the adaptive-learning backend
// for client and orchestrator tests.
package apitest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/abhisek/adaptlearn/internal/api"
)

// Call is one request observed by the fake backend.
type Call struct {
	Name          string // route name, same label the client uses
	Method        string
	Path          string
	RawQuery      string
	Body          string
	Authorization string
	RequestID     string
	TraceParent   string
}

// Gate holds back the next request to a route until released.
type Gate struct {
	Arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Release lets the held request proceed.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

type failure struct {
	status int
	body   string
}

type claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Server is a fake backend. All setters are safe for concurrent use.
type Server struct {
	srv    *httptest.Server
	secret []byte

	mu         sync.Mutex
	users      map[string]string // username -> password
	domains    []api.Domain
	questions  map[int64][]api.AssessmentQuestion
	paths      map[int64]api.LearningPath
	insights   map[int64][]api.Insight
	progress   map[int64]api.TopicProgress
	reviews    map[int64]api.Review
	overviews  map[int64]api.Overview
	profile    api.Profile
	answerKey  map[int64]string
	failures   map[string]failure
	gates      map[string][]*Gate
	calls      []Call
	submission []api.AssessmentSubmission
}

// New starts a fake backend and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:    []byte("apitest-signing-key"),
		users:     map[string]string{},
		questions: map[int64][]api.AssessmentQuestion{},
		paths:     map[int64]api.LearningPath{},
		insights:  map[int64][]api.Insight{},
		progress:  map[int64]api.TopicProgress{},
		reviews:   map[int64]api.Review{},
		overviews: map[int64]api.Overview{},
		answerKey: map[int64]string{},
		failures:  map[string]failure{},
		gates:     map[string][]*Gate{},
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(func() {
		s.releaseAll()
		s.srv.Close()
	})
	return s
}

// URL returns the API base URL, including the /api prefix.
func (s *Server) URL() string { return s.srv.URL + "/api" }

// Token signs a token for username valid for ttl (negative = already expired).
func (s *Server) Token(username string, ttl time.Duration) string {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Roles: []string{"ROLE_USER"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return signed
}

func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

func (s *Server) SetDomains(domains ...api.Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains = domains
}

func (s *Server) SetQuestions(domainID int64, qs ...api.AssessmentQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[domainID] = qs
}

func (s *Server) SetLearningPath(domainID int64, p api.LearningPath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[domainID] = p
}

// QueueInsights appends insights served one per next-insight call. An empty
// queue answers 204.
func (s *Server) QueueInsights(domainID int64, ins ...api.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[domainID] = append(s.insights[domainID], ins...)
}

func (s *Server) SetProgress(domainID int64, p api.TopicProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[domainID] = p
}

func (s *Server) SetReview(domainID int64, r api.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[domainID] = r
}

func (s *Server) SetOverview(domainID int64, o api.Overview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overviews[domainID] = o
}

func (s *Server) SetProfile(p api.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// SetAnswer sets the correct answer for a question.
func (s *Server) SetAnswer(questionID int64, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answerKey[questionID] = answer
}

// Fail makes every request to route answer with status and body until
// cleared with Fail(route, 0, "").
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = failure{status: status, body: body}
}

// Hold returns a gate that blocks the next request to route.
func (s *Server) Hold(route string) *Gate {
	g := &Gate{Arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates[route] = append(s.gates[route], g)
	return g
}

// Calls returns the requests seen so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallNames returns the route names of the requests seen so far.
func (s *Server) CallNames() []string {
	var names []string
	for _, c := range s.Calls() {
		names = append(names, c.Name)
	}
	return names
}

// Submissions returns the decoded assessment submissions.
func (s *Server) Submissions() []api.AssessmentSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.AssessmentSubmission(nil), s.submission...)
}

func (s *Server) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, gs := range s.gates {
		for _, g := range gs {
			g.Release()
		}
	}
}

func (s *Server) routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	g := r.Group("/api")
	g.POST("/auth/login", s.named("login", s.login))
	g.POST("/auth/register", s.named("register", s.register))

	authed := g.Group("", s.requireToken)
	authed.GET("/auth/me", s.named("profile", s.getProfile))
	authed.GET("/learning/domains/status", s.named("domains-status", s.getDomains))
	authed.GET("/learning/domains/:domainId/assessment-questions", s.named("assessment-questions", s.getQuestions))
	authed.POST("/learning/domains/start", s.named("start-domain", s.startDomain))
	authed.GET("/learning/domains/:domainId/next-insight", s.named("next-insight", s.nextInsight))
	authed.POST("/learning/insights/submit-answer", s.named("submit-answer", s.submitAnswer))
	authed.GET("/learning/domains/:domainId/progress", s.named("topic-progress", s.getProgress))
	authed.GET("/learning/domains/:domainId/review", s.named("review", s.getReview))
	authed.POST("/learning/domains/:domainId/complete-review", s.named("complete-review", s.completeReview))
	authed.GET("/learning/domains/:domainId/overview", s.named("overview", s.getOverview))
	authed.POST("/learning/domains/:domainId/select-topic/:topicIdx", s.named("select-topic", s.selectTopic))
	return r
}

// named records the call, applies holds and injected failures, then runs h.
func (s *Server) named(name string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Name:          name,
			Method:        c.Request.Method,
			Path:          strings.TrimPrefix(c.Request.URL.Path, "/api"),
			RawQuery:      c.Request.URL.RawQuery,
			Body:          string(body),
			Authorization: c.GetHeader("Authorization"),
			RequestID:     c.GetHeader("X-Request-ID"),
			TraceParent:   c.GetHeader("traceparent"),
		})
		var gate *Gate
		if gs := s.gates[name]; len(gs) > 0 {
			gate, s.gates[name] = gs[0], gs[1:]
		}
		f, failing := s.failures[name]
		s.mu.Unlock()

		if gate != nil {
			close(gate.Arrived)
			select {
			case <-gate.release:
			case <-c.Request.Context().Done():
				return
			}
		}

		if failing {
			c.Data(f.status, "application/json", []byte(f.body))
			return
		}
		h(c)
	}
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Full authentication is required"})
		return
	}

	tok, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "Token expired"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
		return
	}

	sub, _ := tok.Claims.GetSubject()
	c.Set("username", sub)
	c.Next()
}

func domainID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("domainId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid domain id"})
		return 0, false
	}
	return id, true
}

func (s *Server) login(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	pw, ok := s.users[creds.Username]
	s.mu.Unlock()

	if !ok || pw != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Bad credentials"})
		return
	}
	c.JSON(http.StatusOK, api.AuthToken{
		Token:    s.Token(creds.Username, time.Hour),
		Username: creds.Username,
		Roles:    []string{"ROLE_USER"},
	})
}

func (s *Server) register(c *gin.Context) {
	var reg api.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	_, taken := s.users[reg.Username]
	if !taken {
		s.users[reg.Username] = reg.Password
	}
	n := len(s.users)
	s.mu.Unlock()

	if taken {
		c.String(http.StatusBadRequest, "Username is already taken")
		return
	}
	c.JSON(http.StatusCreated, api.User{ID: int64(n), Username: reg.Username, Email: reg.Email})
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	p := s.profile
	s.mu.Unlock()
	if p.Username == "" {
		p.Username = c.GetString("username")
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getDomains(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.domains
	if out == nil {
		out = []api.Domain{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getQuestions(c *gin.Context) {
	id, ok := domainID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	qs, found := s.questions[id]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Domain not found"})
		return
	}
	c.JSON(http.StatusOK, qs)
}

func (s *Server) startDomain(c *gin.Context) {
	var sub api.AssessmentSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submission = append(s.submission, sub)
	p, found := s.paths[sub.DomainID]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Domain not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) nextInsight(c *gin.Context) {
	id, ok := domainID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.insights[id]
	if len(queue) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	s.insights[id] = queue[1:]
	c.JSON(http.StatusOK, queue[0])
}

func (s *Server) submitAnswer(c *gin.Context) {
	var sub api.AnswerSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	correct := s.answerKey[sub.QuestionID]
	s.mu.Unlock()

	fb := api.Feedback{
		QuestionID:     sub.QuestionID,
		SelectedAnswer: sub.SelectedAnswer,
		Correct:        sub.SelectedAnswer == correct,
		CorrectAnswer:  correct,
		Feedback:       "Incorrect.",
	}
	if fb.Correct {
		fb.Feedback = "Correct!"
	}
	c.JSON(http.StatusOK, fb)
}

func (s *Server) getProgress(c *gin.Context) {
	id, ok := domainID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.progress[id])
}

func (s *Server) getReview(c *gin.Context) {
	id, ok := domainID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.reviews[id])
}

func (s *Server) completeReview(c *gin.Context) {
	if _, err := strconv.ParseBool(c.Query("satisfactoryPerformance")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "satisfactoryPerformance is required"})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) getOverview(c *gin.Context) {
	id, ok := domainID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.overviews[id])
}

func (s *Server) selectTopic(c *gin.Context) {
	id, ok := domainID(c)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(c.Param("topicIdx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid topic index"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, found := s.overviews[id]
	if !found || idx < 0 || idx >= len(o.Topics) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Topic index out of range"})
		return
	}
	topics := append([]api.TopicOverview(nil), o.Topics...)
	for i := range topics {
		topics[i].Current = i == idx
	}
	o.Topics = topics
	s.overviews[id] = o
	c.Status(http.StatusOK)
}
