// Package stream mirrors sanitized audit records to a Kafka topic so
// downstream consumers (SIEM, compliance archival) see the same trail as the
// database without querying it.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"nid-gateway/internal/audit"
)

// Publisher writes audit records to Kafka. Publishing is best-effort: the
// database row is the durable copy, so delivery failures are surfaced to the
// sink's logger and nothing else.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// wireRecord is the JSON shape published to the topic.
type wireRecord struct {
	ID           string         `json:"id"`
	ClientIP     string         `json:"clientIp"`
	SystemName   string         `json:"systemName,omitempty"`
	SubjectID    string         `json:"subjectId"`
	Request      map[string]any `json:"request"`
	Response     map[string]any `json:"response,omitempty"`
	Outcome      string         `json:"outcome"`
	ErrorDetail  string         `json:"errorDetail,omitempty"`
	ProcessingMs int64          `json:"processingMs"`
	CreatedAt    string         `json:"createdAt"`
}

// New connects to the brokers and ensures the topic exists. A single
// partition is enough; ordering across requests is not required.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopics(ctx, 1, 1, nil, topic); err != nil {
		// Topic may already exist; anything else shows up on first produce.
		if !strings.Contains(err.Error(), "already exists") {
			logger.Warn("audit topic creation failed",
				"topic", topic,
				"error", err,
			)
		}
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Publish sends one record and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, record audit.Record) error {
	payload, err := json.Marshal(wireRecord{
		ID:           record.ID.String(),
		ClientIP:     record.ClientIP,
		SystemName:   record.SystemName,
		SubjectID:    record.SubjectID,
		Request:      record.Request,
		Response:     record.Response,
		Outcome:      string(record.Outcome),
		ErrorDetail:  record.ErrorDetail,
		ProcessingMs: record.ProcessingTime.Milliseconds(),
		CreatedAt:    record.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.ID.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// Close flushes and releases the Kafka client.
func (p *Publisher) Close() {
	p.client.Close()
}
