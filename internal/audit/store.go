package audit

import "context"

// Store persists audit records. Implementations return sentinel errors for
// infrastructure facts; the sink only logs failures, it never propagates
// them to callers.
type Store interface {
	// Append writes one record. A single insert; no transaction spans the
	// upstream call and this write.
	Append(ctx context.Context, record Record) error
	// Stats aggregates stored records for the read-side endpoint.
	Stats(ctx context.Context) (Stats, error)
}
