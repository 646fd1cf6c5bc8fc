package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"api_request_events", "auth_tokens", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.TokenRepo().Save(ctx, StoredToken{Token: "abc", Username: "ada"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	tok, err := s.TokenRepo().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok == nil || tok.Token != "abc" {
		t.Fatalf("token after reopen = %+v, want abc", tok)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestTokenSaveLoadClear(t *testing.T) {
	s := openTestStore(t)
	repo := s.TokenRepo()
	ctx := context.Background()

	tok, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load (empty): %v", err)
	}
	if tok != nil {
		t.Fatal("expected nil token when signed out")
	}

	if err := repo.Save(ctx, StoredToken{Token: "first", Username: "ada"}); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := repo.Save(ctx, StoredToken{Token: "second", Username: "grace"}); err != nil {
		t.Fatalf("save second: %v", err)
	}

	tok, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok == nil {
		t.Fatal("expected a token")
	}
	if tok.Token != "second" || tok.Username != "grace" {
		t.Errorf("token = %+v, want second/grace", tok)
	}
	if tok.SavedAt.IsZero() {
		t.Error("expected SavedAt to be set")
	}

	var rows int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM auth_tokens").Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("auth_tokens rows = %d, want 1", rows)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear (already empty): %v", err)
	}
	tok, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if tok != nil {
		t.Errorf("expected nil token after clear, got %+v", tok)
	}
}

func appendEvents(t *testing.T, repo EventRepo, events ...APIRequestEventData) {
	t.Helper()
	for _, e := range events {
		if err := repo.AppendAPIRequest(context.Background(), e); err != nil {
			t.Fatalf("append %s: %v", e.Endpoint, err)
		}
	}
}

func TestAPIEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvents(t, repo,
		APIRequestEventData{RequestID: "r1", Endpoint: "domains", Method: "GET", Path: "/domains", Status: 200, LatencyMs: 10, Success: true},
		APIRequestEventData{RequestID: "r2", Endpoint: "next-insight", Method: "GET", Path: "/insights/next", Status: 204, LatencyMs: 30, Success: true},
		APIRequestEventData{RequestID: "r3", Endpoint: "domains", Method: "GET", Path: "/domains", Status: 500, LatencyMs: 50, ErrorMessage: "boom"},
	)

	all, err := repo.QueryAPIEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	// Newest first.
	if all[0].RequestID != "r3" || all[2].RequestID != "r1" {
		t.Errorf("order = %s,%s,%s; want r3,r2,r1", all[0].RequestID, all[1].RequestID, all[2].RequestID)
	}
	if all[0].Sequence <= all[1].Sequence {
		t.Errorf("sequence not descending: %d, %d", all[0].Sequence, all[1].Sequence)
	}
	if all[0].ErrorMessage != "boom" || all[0].Success {
		t.Errorf("failed event = %+v", all[0])
	}
	if all[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	byEndpoint, err := repo.QueryAPIEvents(ctx, QueryOpts{Endpoint: "domains"})
	if err != nil {
		t.Fatalf("query by endpoint: %v", err)
	}
	if len(byEndpoint) != 2 {
		t.Errorf("domains events = %d, want 2", len(byEndpoint))
	}

	limited, err := repo.QueryAPIEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(limited) != 1 || limited[0].RequestID != "r3" {
		t.Errorf("limited = %+v, want only r3", limited)
	}

	after, err := repo.QueryAPIEvents(ctx, QueryOpts{After: all[2].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 2 {
		t.Errorf("events after first = %d, want 2", len(after))
	}

	future, err := repo.QueryAPIEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query from: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("events from the future = %d, want 0", len(future))
	}
}

func TestGetAPIEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvents(t, repo, APIRequestEventData{RequestID: "only", Endpoint: "profile", Method: "GET", Path: "/profile", Status: 200, Success: true})

	all, err := repo.QueryAPIEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	got, err := repo.GetAPIEvent(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.RequestID != "only" {
		t.Fatalf("get = %+v, want request only", got)
	}

	missing, err := repo.GetAPIEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event, got %+v", missing)
	}
}

func TestAPIUsageByEndpointAndPurge(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvents(t, repo,
		APIRequestEventData{Endpoint: "domains", LatencyMs: 10, Success: true},
		APIRequestEventData{Endpoint: "domains", LatencyMs: 30, Success: false},
		APIRequestEventData{Endpoint: "profile", LatencyMs: 5, Success: true},
	)

	usage, err := repo.APIUsageByEndpoint(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("usage rows = %d, want 2", len(usage))
	}
	d := usage[0]
	if d.Endpoint != "domains" || d.Calls != 2 || d.Failures != 1 || d.AvgLatencyMs != 20 || d.MaxLatencyMs != 30 {
		t.Errorf("domains usage = %+v", d)
	}
	if usage[1].Endpoint != "profile" || usage[1].Failures != 0 {
		t.Errorf("profile usage = %+v", usage[1])
	}

	lastSeq := int64(0)
	all, _ := repo.QueryAPIEvents(ctx, QueryOpts{Limit: 1})
	if len(all) == 1 {
		lastSeq = all[0].Sequence
	}

	n, err := repo.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 3 {
		t.Errorf("purged = %d, want 3", n)
	}

	appendEvents(t, repo, APIRequestEventData{Endpoint: "domains", Success: true})
	all, err = repo.QueryAPIEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query after purge: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("events after purge = %d, want 1", len(all))
	}
	if all[0].Sequence <= lastSeq {
		t.Errorf("sequence restarted after purge: %d <= %d", all[0].Sequence, lastSeq)
	}
}
