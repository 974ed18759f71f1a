// Package inmemory is a process-local reportstore.Store. Reports are kept
// JSON-encoded so callers never share state with the store.
package inmemory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/providers/reportstore"
)

type record struct {
	entry   reportstore.Entry
	encoded []byte
}

// Store is a concurrency-safe in-memory report store.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
}

var _ reportstore.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[string]record)}
}

// Save stores a snapshot of rep.
func (s *Store) Save(ctx context.Context, rep *report.Report) error {
	if err := reportstore.Check(rep); err != nil {
		return err
	}
	encoded, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("inmemory: encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rep.RunID] = record{entry: reportstore.EntryOf(rep), encoded: encoded}
	return nil
}

// Load returns a fresh copy of the report saved under runID.
func (s *Store) Load(ctx context.Context, runID string) (*report.Report, error) {
	s.mu.RLock()
	stored, exists := s.records[runID]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", reportstore.ErrNotFound, runID)
	}

	var rep report.Report
	if err := json.Unmarshal(stored.encoded, &rep); err != nil {
		return nil, fmt.Errorf("inmemory: decode report %s: %w", runID, err)
	}
	return &rep, nil
}

// List returns entries newest first, ties broken by run ID.
func (s *Store) List(ctx context.Context, limit int) ([]reportstore.Entry, error) {
	s.mu.RLock()
	entries := make([]reportstore.Entry, 0, len(s.records))
	for _, stored := range s.records {
		entries = append(entries, stored.entry)
	}
	s.mu.RUnlock()

	slices.SortFunc(entries, func(a, b reportstore.Entry) int {
		if byTime := b.StartedAt.Compare(a.StartedAt); byTime != 0 {
			return byTime
		}
		return cmp.Compare(a.RunID, b.RunID)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Len returns the number of stored reports.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
