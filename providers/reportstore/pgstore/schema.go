package pgstore

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    run_id        TEXT PRIMARY KEY,
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ NOT NULL,
    passed        BOOLEAN NOT NULL,
    failed_stages TEXT[] NOT NULL DEFAULT '{}',
    body          JSONB NOT NULL,
    stored_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// createStartedIndexSQL backs List.
const createStartedIndexSQL = `CREATE INDEX IF NOT EXISTS idx_%s_started_at
    ON %s (started_at DESC, run_id)`

// EnsureSchema creates the reports table and its index if missing. Meant for
// development; production deployments should manage schema with migrations.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableSQL, s.tableName)); err != nil {
		return fmt.Errorf("pgstore: create table: %w", err)
	}

	indexSQL := fmt.Sprintf(createStartedIndexSQL, indexName(s.tableName), s.tableName)
	if _, err := s.db.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("pgstore: create started_at index: %w", err)
	}
	return nil
}

// indexName derives a bare identifier from a possibly quoted table name.
func indexName(tableName string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '"':
			return -1
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		default:
			return '_'
		}
	}, tableName)
}
