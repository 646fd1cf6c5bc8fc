// Package api is the HTTP adapter for the adaptive-learning backend. Every
// call is rate limited, traced, tagged with a request id, recorded in the
// local request log and validated against a JSON schema before decoding.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abhisek/adaptlearn/internal/store"
)

const tracerName = "github.com/abhisek/adaptlearn/internal/api"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// TokenSource supplies the bearer token and forgets it on a 401.
type TokenSource interface {
	Token() string
	Clear() error
}

// Recorder persists one entry per backend call. store.EventRepo satisfies it.
type Recorder interface {
	AppendAPIRequest(ctx context.Context, data store.APIRequestEventData) error
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	Tokens   TokenSource   // nil = never authenticated
	Limiter  *rate.Limiter // nil = unlimited
	Recorder Recorder      // nil = not recorded
	Logger   *zap.Logger

	// OnUnauthorized runs after a 401 has cleared the token.
	OnUnauthorized func()

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client calls the backend API.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	recorder       Recorder
	log            *zap.Logger
	tracer         trace.Tracer
	onUnauthorized func()
}

// New creates a Client. BaseURL is required; a trailing slash is trimmed.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, errors.New("api base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:        base,
		http:           hc,
		tokens:         opts.Tokens,
		limiter:        opts.Limiter,
		recorder:       opts.Recorder,
		log:            log,
		tracer:         otel.Tracer(tracerName),
		onUnauthorized: opts.OnUnauthorized,
	}, nil
}

// NewLimiter returns a token-bucket limiter allowing rps requests per second.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// call describes one backend request.
type call struct {
	endpoint string // label used in logs, spans and the request log
	method   string
	path     string
	query    url.Values
	body     any
	schema   *Schema
	out      any

	// emptyOK accepts 204 or an empty body as a successful "nothing" result.
	emptyOK bool

	// anonymous calls carry no token and bypass the 401 interception.
	anonymous bool
}

// do executes cl. It reports whether a payload was decoded into cl.out.
func (c *Client) do(ctx context.Context, cl call) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			return false, &TransportError{Err: fmt.Errorf("rate limit: %w", err)}
		}
	}

	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "api."+cl.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.path),
			attribute.String("adaptlearn.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	status, raw, err := c.roundTrip(ctx, cl, requestID)
	latency := time.Since(start)

	decoded := false
	if err == nil {
		decoded, err = c.interpret(cl, status, raw)
	}

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.record(ctx, cl, requestID, status, latency, err)

	c.log.Debug("api call",
		zap.String("endpoint", cl.endpoint),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("request_id", requestID),
		zap.Error(err),
	)

	if errors.Is(err, ErrUnauthorized) {
		c.handleUnauthorized()
	}
	return decoded, err
}

// roundTrip sends the request and reads the body. A zero status means no
// response was received.
func (c *Client) roundTrip(ctx context.Context, cl call, requestID string) (int, []byte, error) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s request: %w", cl.endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", cl.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if !cl.anonymous && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, raw, nil
}

// interpret classifies the status and decodes the payload.
func (c *Client) interpret(cl call, status int, raw []byte) (bool, error) {
	switch {
	case status == http.StatusUnauthorized && !cl.anonymous:
		return false, ErrUnauthorized
	case status < 200 || status >= 300:
		return false, newServerError(status, raw)
	}

	empty := status == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0
	if empty {
		if cl.out == nil || cl.emptyOK {
			return false, nil
		}
		return false, &ValidationError{Endpoint: cl.endpoint, Err: errors.New("empty response body")}
	}
	if cl.out == nil {
		return false, nil
	}

	if err := validatePayload(cl.endpoint, cl.schema, raw); err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, cl.out); err != nil {
		return false, &ValidationError{Endpoint: cl.endpoint, Content: raw, Err: err}
	}
	return true, nil
}

// record appends the request log entry. It outlives a cancelled request
// context; a failed append is logged, never returned.
func (c *Client) record(ctx context.Context, cl call, requestID string, status int, latency time.Duration, callErr error) {
	if c.recorder == nil {
		return
	}
	data := store.APIRequestEventData{
		RequestID: requestID,
		Endpoint:  cl.endpoint,
		Method:    cl.method,
		Path:      cl.path,
		Status:    status,
		LatencyMs: latency.Milliseconds(),
		Success:   callErr == nil,
	}
	if callErr != nil {
		data.ErrorMessage = callErr.Error()
	}
	if err := c.recorder.AppendAPIRequest(context.WithoutCancel(ctx), data); err != nil {
		c.log.Warn("record api request", zap.String("endpoint", cl.endpoint), zap.Error(err))
	}
}

func (c *Client) handleUnauthorized() {
	if c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			c.log.Warn("clear token after 401", zap.Error(err))
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
