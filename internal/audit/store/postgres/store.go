// Package postgres persists audit records with a single insert per record.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"nid-gateway/internal/audit"
)

// Store implements audit.Store on Postgres.
type Store struct {
	db *sql.DB
}

// New creates a Postgres audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one audit record. Snapshots are stored as JSONB so the
// read side can query into them.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	requestJSON, err := json.Marshal(record.Request)
	if err != nil {
		return fmt.Errorf("marshal request snapshot: %w", err)
	}
	responseJSON, err := json.Marshal(record.Response)
	if err != nil {
		return fmt.Errorf("marshal response snapshot: %w", err)
	}

	query := `
		INSERT INTO audit_records (
			id, client_ip, system_name, subject_id,
			request, response, outcome, error_detail,
			processing_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.ClientIP,
		record.SystemName,
		record.SubjectID,
		requestJSON,
		responseJSON,
		string(record.Outcome),
		record.ErrorDetail,
		record.ProcessingTime.Milliseconds(),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Stats aggregates stored records for the read-side endpoint.
func (s *Store) Stats(ctx context.Context) (audit.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'SUCCESS'),
			COUNT(*) FILTER (WHERE outcome = 'ERROR'),
			COALESCE(AVG(processing_ms), 0)
		FROM audit_records
	`
	var stats audit.Stats
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Success,
		&stats.Error,
		&stats.AvgProcessingMs,
	)
	if err != nil {
		return audit.Stats{}, fmt.Errorf("aggregate audit records: %w", err)
	}
	return stats, nil
}
