package allowlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore reads the client_systems table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed allowlist store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByIP resolves the system registered for ip.
func (s *PostgresStore) FindByIP(ctx context.Context, ip string) (System, error) {
	query := `
		SELECT name, ip, COALESCE(api_key_hash, ''), active
		FROM client_systems
		WHERE ip = $1
	`
	var system System
	err := s.db.QueryRowContext(ctx, query, ip).Scan(
		&system.Name,
		&system.IP,
		&system.APIKeyHash,
		&system.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return System{}, ErrNotFound
	}
	if err != nil {
		return System{}, fmt.Errorf("find client system: %w", err)
	}
	return system, nil
}
