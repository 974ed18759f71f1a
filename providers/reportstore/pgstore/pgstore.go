// Package pgstore persists reports in PostgreSQL through pgx. The full report
// is stored as JSONB; the columns List needs are kept alongside it.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/providers/reportstore"
)

// defaultTableName is the table used when no custom name is provided.
const defaultTableName = "edaflow_reports"

// Querier abstracts the pgx query methods the store needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements reportstore.Store on PostgreSQL. Concurrency is left to
// the pgx pool.
type Store struct {
	db        Querier
	tableName string
}

var _ reportstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTableName overrides the default table name ("edaflow_reports"). The
// name is sanitized with pgx.Identifier because it is interpolated into SQL.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New creates a store on db, typically a *pgxpool.Pool.
func New(db Querier, opts ...Option) *Store {
	store := &Store{db: db, tableName: defaultTableName}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save upserts rep by run ID.
func (s *Store) Save(ctx context.Context, rep *report.Report) error {
	if err := reportstore.Check(rep); err != nil {
		return err
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("pgstore: encode report: %w", err)
	}
	entry := reportstore.EntryOf(rep)

	query := fmt.Sprintf(`INSERT INTO %s (run_id, started_at, finished_at, passed, failed_stages, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			passed = EXCLUDED.passed,
			failed_stages = EXCLUDED.failed_stages,
			body = EXCLUDED.body`, s.tableName)

	_, err = s.db.Exec(ctx, query,
		entry.RunID,
		entry.StartedAt,
		entry.FinishedAt,
		entry.Passed,
		entry.FailedStages,
		body,
	)
	if err != nil {
		return fmt.Errorf("pgstore: save %s: %w", rep.RunID, err)
	}
	return nil
}

// Load returns the report saved under runID.
func (s *Store) Load(ctx context.Context, runID string) (*report.Report, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE run_id = $1`, s.tableName)

	var body []byte
	err := s.db.QueryRow(ctx, query, runID).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", reportstore.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: load %s: %w", runID, err)
	}

	var rep report.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("pgstore: decode report %s: %w", runID, err)
	}
	return &rep, nil
}

// List returns entries newest first, ties broken by run ID.
func (s *Store) List(ctx context.Context, limit int) ([]reportstore.Entry, error) {
	query := fmt.Sprintf(`SELECT run_id, started_at, finished_at, passed, failed_stages
		FROM %s
		ORDER BY started_at DESC, run_id ASC
		LIMIT $1`, s.tableName)

	// LIMIT NULL returns every row
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := s.db.Query(ctx, query, limitArg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list: %w", err)
	}
	defer rows.Close()

	var entries []reportstore.Entry
	for rows.Next() {
		var (
			entry                 reportstore.Entry
			startedAt, finishedAt time.Time
		)
		if err := rows.Scan(&entry.RunID, &startedAt, &finishedAt, &entry.Passed, &entry.FailedStages); err != nil {
			return nil, fmt.Errorf("pgstore: scan entry: %w", err)
		}
		entry.StartedAt = startedAt.UTC()
		entry.FinishedAt = finishedAt.UTC()
		if entry.FailedStages == nil {
			entry.FailedStages = []string{}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list: %w", err)
	}
	return entries, nil
}
