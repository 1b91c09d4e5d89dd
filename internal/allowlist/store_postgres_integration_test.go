//go:build integration

package allowlist_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"nid-gateway/internal/allowlist"
	"nid-gateway/internal/platform/database"
	"nid-gateway/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *allowlist.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := database.Migrate(context.Background(), s.postgres.DB, "../../migrations", logger)
	s.Require().NoError(err)

	s.store = allowlist.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "client_systems")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seed(name, ip, hash string, active bool) {
	_, err := s.postgres.DB.ExecContext(context.Background(),
		`INSERT INTO client_systems (name, ip, api_key_hash, active) VALUES ($1, $2, NULLIF($3, ''), $4)`,
		name, ip, hash, active,
	)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestFindByIP() {
	s.seed("land-office", "203.0.113.7", "hash-value", true)

	system, err := s.store.FindByIP(context.Background(), "203.0.113.7")
	s.Require().NoError(err)
	s.Equal("land-office", system.Name)
	s.Equal("203.0.113.7", system.IP)
	s.Equal("hash-value", system.APIKeyHash)
	s.True(system.Active)
}

func (s *PostgresStoreSuite) TestFindByIPNullKeyHash() {
	s.seed("land-office", "203.0.113.7", "", true)

	system, err := s.store.FindByIP(context.Background(), "203.0.113.7")
	s.Require().NoError(err)
	s.Empty(system.APIKeyHash)
}

func (s *PostgresStoreSuite) TestFindByIPUnknown() {
	_, err := s.store.FindByIP(context.Background(), "198.51.100.9")
	s.Require().ErrorIs(err, allowlist.ErrNotFound)
}
