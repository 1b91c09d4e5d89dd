//go:build integration

package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"nid-gateway/internal/audit"
	"nid-gateway/internal/audit/store/postgres"
	"nid-gateway/internal/platform/database"
	"nid-gateway/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
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
	err := database.Migrate(context.Background(), s.postgres.DB, "../../../../migrations", logger)
	s.Require().NoError(err)

	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "audit_records")
	s.Require().NoError(err)
}

func sampleRecord(outcome audit.Outcome) audit.Record {
	return audit.Record{
		ID:         uuid.New(),
		ClientIP:   "203.0.113.7",
		SystemName: "land-office",
		SubjectID:  "1234567890",
		Request: map[string]any{
			"nid":         "1234567890",
			"dateOfBirth": "1990-01-15",
			"nameEn":      "Jane Doe",
		},
		Response:       map[string]any{"verified": true},
		Outcome:        outcome,
		ProcessingTime: 120 * time.Millisecond,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestAppendAndAggregate() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, sampleRecord(audit.OutcomeSuccess)))
	s.Require().NoError(s.store.Append(ctx, sampleRecord(audit.OutcomeSuccess)))

	failed := sampleRecord(audit.OutcomeError)
	failed.Response = nil
	failed.ErrorDetail = "registry unavailable"
	s.Require().NoError(s.store.Append(ctx, failed))

	stats, err := s.store.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), stats.Total)
	s.Equal(int64(2), stats.Success)
	s.Equal(int64(1), stats.Error)
	s.InDelta(120.0, stats.AvgProcessingMs, 1.0)
}

func (s *PostgresStoreSuite) TestStatsEmptyTable() {
	stats, err := s.store.Stats(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(0), stats.Total)
	s.Equal(float64(0), stats.AvgProcessingMs)
}

func (s *PostgresStoreSuite) TestAppendStoresQueryableSnapshots() {
	ctx := context.Background()
	record := sampleRecord(audit.OutcomeSuccess)
	s.Require().NoError(s.store.Append(ctx, record))

	var subject string
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT request->>'nid' FROM audit_records WHERE id = $1`, record.ID,
	).Scan(&subject)
	s.Require().NoError(err)
	s.Equal("1234567890", subject)
}
