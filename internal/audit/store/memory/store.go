// Package memory is the in-memory audit store used by tests and local runs
// without a database.
package memory

import (
	"context"
	"sync"

	"nid-gateway/internal/audit"
)

// Store implements audit.Store with a mutex-guarded slice.
type Store struct {
	mu      sync.RWMutex
	records []audit.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Append stores one record.
func (s *Store) Append(_ context.Context, record audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Stats aggregates stored records.
func (s *Store) Stats(_ context.Context) (audit.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats audit.Stats
	var totalMs int64
	for _, r := range s.records {
		stats.Total++
		switch r.Outcome {
		case audit.OutcomeSuccess:
			stats.Success++
		case audit.OutcomeError:
			stats.Error++
		}
		totalMs += r.ProcessingTime.Milliseconds()
	}
	if stats.Total > 0 {
		stats.AvgProcessingMs = float64(totalMs) / float64(stats.Total)
	}
	return stats, nil
}

// Records returns a copy of everything stored, for test assertions.
func (s *Store) Records() []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Record, len(s.records))
	copy(out, s.records)
	return out
}
