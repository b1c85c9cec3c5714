// Package repo is the postgres counter store behind the quota ledger
package repo

import (
	"context"
	stdsql "database/sql"
	_ "embed"
	"errors"
	"time"

	"grantwise/internal/core/quota"
	"grantwise/internal/modkit/repokit"
)

//go:embed schema.sql
var schema string

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the persistent counter store
type Storage interface {
	// Get returns the counter for id; ok is false when there is none
	Get(ctx context.Context, id string) (e quota.Entry, ok bool, err error)

	// Admit performs one fixed-window step in a single statement. Opening a
	// new window and incrementing under the limit are both row-atomic, so
	// concurrent callers across processes never exceed limit
	Admit(ctx context.Context, id string, limit int, window time.Duration, now time.Time) (quota.Decision, error)

	// Purge deletes counters whose window closed before now
	Purge(ctx context.Context, now time.Time) (int64, error)
}

// EnsureSchema creates the counter table when missing
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, schema)
	return err
}

func (s *pg) Get(ctx context.Context, id string) (quota.Entry, bool, error) {
	var e quota.Entry
	err := s.q.QueryRow(ctx, `
		SELECT count, window_start, window_end
		FROM quota_counters
		WHERE identifier = $1`, id).Scan(&e.Count, &e.WindowStart, &e.WindowEnd)
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return quota.Entry{}, false, nil
		}
		return quota.Entry{}, false, err
	}
	return e, true, nil
}

func (s *pg) Admit(ctx context.Context, id string, limit int, window time.Duration, now time.Time) (quota.Decision, error) {
	if limit <= 0 || window <= 0 {
		_, d := quota.Step(quota.Entry{}, false, limit, window, now)
		return d, nil
	}

	// The WHERE on DO UPDATE leaves a full, live window untouched and makes
	// RETURNING yield no row, which is the deny signal
	var e quota.Entry
	err := s.q.QueryRow(ctx, `
		INSERT INTO quota_counters AS q (identifier, count, window_start, window_end)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (identifier) DO UPDATE SET
			count        = CASE WHEN q.window_end < $2 THEN 1 ELSE q.count + 1 END,
			window_start = CASE WHEN q.window_end < $2 THEN EXCLUDED.window_start ELSE q.window_start END,
			window_end   = CASE WHEN q.window_end < $2 THEN EXCLUDED.window_end ELSE q.window_end END
		WHERE q.window_end < $2 OR q.count < $4
		RETURNING count, window_start, window_end`,
		id, now, now.Add(window), limit,
	).Scan(&e.Count, &e.WindowStart, &e.WindowEnd)

	switch {
	case err == nil:
		return quota.Decision{Allowed: true, Limit: limit, Remaining: max(limit-e.Count, 0), ResetAt: e.WindowEnd}, nil
	case errors.Is(err, stdsql.ErrNoRows):
		cur, ok, gerr := s.Get(ctx, id)
		if gerr != nil {
			return quota.Decision{}, gerr
		}
		d := quota.Peek(cur, ok, limit, window, now)
		d.Allowed = false
		return d, nil
	default:
		return quota.Decision{}, err
	}
}

func (s *pg) Purge(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM quota_counters WHERE window_end < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
