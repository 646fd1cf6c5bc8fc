package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const apiEventsTable = "api_request_events"

var apiEventColumns = []string{
	"id", "sequence", "timestamp", "request_id", "endpoint", "method",
	"path", "status", "latency_ms", "success", "error_message",
}

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAPIRequest(ctx context.Context, data APIRequestEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(apiEventsTable).
		Columns("sequence", "timestamp", "request_id", "endpoint", "method",
			"path", "status", "latency_ms", "success", "error_message").
		Values(seq, time.Now().UTC(), data.RequestID, data.Endpoint, data.Method,
			data.Path, data.Status, data.LatencyMs, data.Success, data.ErrorMessage).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert api request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAPIEvents(ctx context.Context, opts QueryOpts) ([]APIRequestEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(apiEventColumns...).
		From(entsql.Table(apiEventsTable))

	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Endpoint != "" {
		sel.Where(entsql.EQ("endpoint", opts.Endpoint))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query api request events: %w", err)
	}
	defer rows.Close()

	var out []APIRequestEventRecord
	for rows.Next() {
		rec, err := scanAPIEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetAPIEvent(ctx context.Context, id int) (*APIRequestEventRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(apiEventColumns...).
		From(entsql.Table(apiEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanAPIEvent(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *eventRepo) APIUsageByEndpoint(ctx context.Context) ([]EndpointUsage, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"endpoint",
			entsql.Count("*"),
			"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
			entsql.Avg("latency_ms"),
			entsql.Max("latency_ms"),
		).
		From(entsql.Table(apiEventsTable)).
		GroupBy("endpoint").
		OrderBy("endpoint").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate api usage: %w", err)
	}
	defer rows.Close()

	var out []EndpointUsage
	for rows.Next() {
		var (
			u   EndpointUsage
			avg float64
		)
		if err := rows.Scan(&u.Endpoint, &u.Calls, &u.Failures, &avg, &u.MaxLatencyMs); err != nil {
			return nil, fmt.Errorf("scan api usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) Purge(ctx context.Context) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).Delete(apiEventsTable).Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge api request events: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIEvent(row rowScanner) (*APIRequestEventRecord, error) {
	var rec APIRequestEventRecord
	err := row.Scan(
		&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.RequestID, &rec.Endpoint,
		&rec.Method, &rec.Path, &rec.Status, &rec.LatencyMs, &rec.Success,
		&rec.ErrorMessage,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan api request event: %w", err)
	}
	return &rec, nil
}
