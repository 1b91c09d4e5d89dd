package allowlist

import (
	"context"

	"nid-gateway/pkg/platform/sentinel"
)

// ErrNotFound is returned when no system is registered for an IP.
var ErrNotFound = sentinel.ErrNotFound

// Store resolves client systems by source IP.
type Store interface {
	FindByIP(ctx context.Context, ip string) (System, error)
}
