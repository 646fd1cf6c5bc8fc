package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int       // max results (0 = unlimited)
	After    int64     // sequence > After
	Before   int64     // sequence < Before
	From     time.Time // timestamp >= From
	To       time.Time // timestamp <= To
	Endpoint string    // exact endpoint label match ("" = all)
}

// APIRequestEventData captures the data for a single backend API call.
type APIRequestEventData struct {
	RequestID    string
	Endpoint     string // operation label, e.g. "topic-progress"
	Method       string
	Path         string
	Status       int // 0 when the request never got a response
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// APIRequestEventRecord is a stored API request event.
type APIRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	APIRequestEventData
}

// EndpointUsage aggregates request events per endpoint.
type EndpointUsage struct {
	Endpoint     string
	Calls        int
	Failures     int
	AvgLatencyMs int64
	MaxLatencyMs int64
}

// EventRepo provides append and query access to API request events.
type EventRepo interface {
	// AppendAPIRequest records a backend API call.
	AppendAPIRequest(ctx context.Context, data APIRequestEventData) error

	// QueryAPIEvents returns events newest first.
	QueryAPIEvents(ctx context.Context, opts QueryOpts) ([]APIRequestEventRecord, error)

	// GetAPIEvent returns a single event by id, or nil if it does not exist.
	GetAPIEvent(ctx context.Context, id int) (*APIRequestEventRecord, error)

	// APIUsageByEndpoint aggregates call counts and latency per endpoint.
	APIUsageByEndpoint(ctx context.Context) ([]EndpointUsage, error)

	// Purge deletes all request events and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}

// StoredToken is the persisted bearer token.
type StoredToken struct {
	Token    string
	Username string
	SavedAt  time.Time
}

// TokenRepo persists the single bearer token of the signed-in user.
type TokenRepo interface {
	// Save replaces the stored token.
	Save(ctx context.Context, tok StoredToken) error

	// Load returns the stored token, or nil when signed out.
	Load(ctx context.Context) (*StoredToken, error)

	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
