// Package audit captures one durable record per verification request. The
// sink persists out-of-band so callers never wait on database durability, and
// every snapshot is sanitized before it reaches storage.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the final disposition of a verification request.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeError   Outcome = "ERROR"
)

// Record is the audit row for one verification request. Created once, written
// exactly once, immutable thereafter.
type Record struct {
	// ID correlates the record with the request, result, and logs.
	ID         uuid.UUID
	ClientIP   string
	SystemName string
	// SubjectID is the national ID under verification.
	SubjectID string
	// Request snapshots the inbound identifying fields.
	Request map[string]any
	// Response snapshots the outbound payload; sanitized before persistence.
	Response    map[string]any
	Outcome     Outcome
	ErrorDetail string
	// ProcessingTime is wall-clock time from first receipt of the request to
	// the moment the outcome was finalized.
	ProcessingTime time.Duration
	CreatedAt      time.Time
}

// Stats is the read-side aggregate over stored records.
type Stats struct {
	Total           int64   `json:"total"`
	Success         int64   `json:"success"`
	Error           int64   `json:"error"`
	AvgProcessingMs float64 `json:"avgProcessingMs"`
}
