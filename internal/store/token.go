package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	authTokensTable = "auth_tokens"

	// Only one user is signed in at a time; the token lives in a fixed row.
	tokenRowID = 1
)

type tokenRepo struct {
	db *sql.DB
}

func (r *tokenRepo) Save(ctx context.Context, tok StoredToken) error {
	if tok.SavedAt.IsZero() {
		tok.SavedAt = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(authTokensTable).
		Columns("id", "token", "username", "saved_at").
		Values(tokenRowID, tok.Token, tok.Username, tok.SavedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *tokenRepo) Load(ctx context.Context) (*StoredToken, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("token", "username", "saved_at").
		From(entsql.Table(authTokensTable)).
		Where(entsql.EQ("id", tokenRowID)).
		Query()

	var tok StoredToken
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&tok.Token, &tok.Username, &tok.SavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if tok.Token == "" {
		return nil, nil
	}
	return &tok, nil
}

func (r *tokenRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(authTokensTable).
		Where(entsql.EQ("id", tokenRowID)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
