package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nid-gateway/internal/audit/metrics"
)

// writeTimeout bounds each persistence attempt. Workers use a fresh context
// because the originating request has usually completed by the time its
// record is written.
const writeTimeout = 5 * time.Second

// Streamer mirrors sanitized records to an event stream. Optional; failures
// are logged only.
type Streamer interface {
	Publish(ctx context.Context, record Record) error
}

// Sink accepts audit records without blocking the caller and persists them
// from background workers. Records are sanitized at the door so raw binary
// payloads never sit in the buffer. Write failures are logged, never
// propagated; ordering across requests is not guaranteed.
type Sink struct {
	store   Store
	stream  Streamer
	logger  *slog.Logger
	metrics *metrics.Metrics
	inbox   chan Record
	workers int
}

// SinkOption configures the Sink.
type SinkOption func(*Sink)

// WithStreamer mirrors records to an event stream after persistence.
func WithStreamer(s Streamer) SinkOption {
	return func(k *Sink) { k.stream = s }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) SinkOption {
	return func(k *Sink) { k.metrics = m }
}

// WithWorkers sets the number of persistence goroutines.
func WithWorkers(n int) SinkOption {
	return func(k *Sink) {
		if n > 0 {
			k.workers = n
		}
	}
}

// NewSink builds a sink with the given buffer capacity.
func NewSink(store Store, logger *slog.Logger, buffer int, opts ...SinkOption) *Sink {
	if buffer <= 0 {
		buffer = 1024
	}
	s := &Sink{
		store:   store,
		logger:  logger,
		inbox:   make(chan Record, buffer),
		workers: 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record accepts one audit record. It fills defaults, sanitizes both
// snapshots, and enqueues without blocking; when the buffer is full the
// record is dropped with a logged warning rather than stalling the response
// path.
func (s *Sink) Record(record Record) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.Request = Sanitize(record.Request)
	record.Response = Sanitize(record.Response)

	select {
	case s.inbox <- record:
		s.metrics.IncRecorded(string(record.Outcome))
		s.metrics.SetQueueDepth(len(s.inbox))
	default:
		s.metrics.IncDropped()
		s.logger.Warn("audit buffer full, dropping record",
			"record_id", record.ID,
			"subject_id", record.SubjectID,
		)
	}
}

// Run consumes the inbox until ctx is cancelled, then drains whatever is
// still buffered before returning.
func (s *Sink) Run(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					s.drain()
					return ctx.Err()
				case record := <-s.inbox:
					s.persist(record)
					s.metrics.SetQueueDepth(len(s.inbox))
				}
			}
		})
	}
	return g.Wait()
}

func (s *Sink) drain() {
	for {
		select {
		case record := <-s.inbox:
			s.persist(record)
		default:
			return
		}
	}
}

func (s *Sink) persist(record Record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.store.Append(ctx, record); err != nil {
		s.metrics.IncWriteFailure()
		s.logger.Error("audit write failed",
			"record_id", record.ID,
			"subject_id", record.SubjectID,
			"error", err,
		)
		return
	}

	if s.stream != nil {
		if err := s.stream.Publish(ctx, record); err != nil {
			s.logger.Warn("audit stream publish failed",
				"record_id", record.ID,
				"error", err,
			)
		}
	}
}
