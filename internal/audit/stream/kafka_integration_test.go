//go:build integration

package stream_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"nid-gateway/internal/audit"
	"nid-gateway/internal/audit/stream"
	"nid-gateway/pkg/testutil/containers"
)

const testTopic = "nid-verification-audit-test"

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda  *containers.RedpandaContainer
	publisher *stream.Publisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := stream.New(context.Background(), []string{s.redpanda.Broker}, testTopic, logger)
	s.Require().NoError(err)
	s.publisher = publisher
	s.T().Cleanup(publisher.Close)
}

func (s *KafkaPublisherSuite) TestPublishRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	record := audit.Record{
		ID:         uuid.New(),
		ClientIP:   "203.0.113.7",
		SystemName: "land-office",
		SubjectID:  "1234567890",
		Request: map[string]any{
			"nid":    "1234567890",
			"nameEn": "Jane Doe",
		},
		Response:       map[string]any{"verified": true},
		Outcome:        audit.OutcomeSuccess,
		ProcessingTime: 95 * time.Millisecond,
		CreatedAt:      time.Now().UTC(),
	}
	s.Require().NoError(s.publisher.Publish(ctx, record))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().NotEmpty(records)

	got := records[len(records)-1]
	s.Equal(record.ID.String(), string(got.Key))

	var wire map[string]any
	s.Require().NoError(json.Unmarshal(got.Value, &wire))
	s.Equal(record.ID.String(), wire["id"])
	s.Equal("1234567890", wire["subjectId"])
	s.Equal("SUCCESS", wire["outcome"])
	s.Equal(float64(95), wire["processingMs"])
}

func (s *KafkaPublisherSuite) TestPublishIsIdempotentOnTopicCreation() {
	// A second publisher against the same topic must not fail on create.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	second, err := stream.New(context.Background(), []string{s.redpanda.Broker}, testTopic, logger)
	s.Require().NoError(err)
	second.Close()
}
