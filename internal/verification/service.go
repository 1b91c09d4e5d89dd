// Package verification orchestrates one verification request: registry call,
// audit capture, and error translation for the transport layer.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nid-gateway/internal/audit"
	"nid-gateway/internal/domain"
	"nid-gateway/internal/registry"
	dErrors "nid-gateway/pkg/domain-errors"
	"nid-gateway/pkg/requestcontext"
)

// RegistryClient is the outbound verification dependency.
type RegistryClient interface {
	Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error)
}

// AuditSink observes every request/response pair without blocking.
type AuditSink interface {
	Record(record audit.Record)
}

// Service runs the verification flow. Exactly one audit record is emitted per
// request, whatever the outcome; audit capture never changes the
// caller-visible result.
type Service struct {
	registry RegistryClient
	sink     AuditSink
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New builds the verification service.
func New(registryClient RegistryClient, sink AuditSink, logger *slog.Logger) (*Service, error) {
	if registryClient == nil {
		return nil, errors.New("registry client is required")
	}
	if sink == nil {
		return nil, errors.New("audit sink is required")
	}
	return &Service{
		registry: registryClient,
		sink:     sink,
		logger:   logger,
		tracer:   otel.Tracer("nid-gateway/verification"),
	}, nil
}

// Verify submits req to the registry and returns the normalized result.
// Processing time is measured from the request's receipt timestamp to the
// moment the outcome is finalized.
func (s *Service) Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error) {
	start := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, "verification.verify",
		trace.WithAttributes(attribute.Int("nid.digits", len(req.NID))),
	)
	defer span.End()

	result, err := s.registry.Verify(ctx, req)
	elapsed := time.Since(start)

	record := audit.Record{
		ID:         correlationID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		SystemName: requestcontext.SystemName(ctx),
		SubjectID:  req.NID,
		Request: map[string]any{
			"nid":         req.NID,
			"dateOfBirth": req.DateOfBirth,
			"nameEn":      req.NameEn,
		},
		ProcessingTime: elapsed,
		CreatedAt:      start,
	}

	if err != nil {
		record.Outcome = audit.OutcomeError
		record.ErrorDetail = err.Error()
		s.sink.Record(record)

		span.RecordError(err)
		s.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"system", record.SystemName,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return domain.VerificationResult{}, translate(err)
	}

	record.Outcome = audit.OutcomeSuccess
	record.Response = responseSnapshot(result)
	s.sink.Record(record)

	span.SetAttributes(attribute.Bool("verification.verified", result.Verified))
	s.logger.InfoContext(ctx, "verification completed",
		"request_id", requestcontext.RequestID(ctx),
		"system", record.SystemName,
		"verified", result.Verified,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// correlationID reuses the request ID when it is a UUID so the audit record,
// response header, and logs all share one correlation key.
func correlationID(ctx context.Context) uuid.UUID {
	if id, err := uuid.Parse(requestcontext.RequestID(ctx)); err == nil {
		return id
	}
	return uuid.New()
}

// responseSnapshot captures the outbound payload for the audit trail. The
// sink sanitizes it; this stays a faithful copy.
func responseSnapshot(result domain.VerificationResult) map[string]any {
	snapshot := map[string]any{
		"verified": result.Verified,
		"fieldVerificationResult": map[string]any{
			"nameEn":      result.FieldMatch.NameEn,
			"dateOfBirth": result.FieldMatch.DateOfBirth,
		},
	}
	if result.PersonDetails != nil {
		snapshot["data"] = result.PersonDetails
	}
	if result.AdvisoryMessage != "" {
		snapshot["message"] = result.AdvisoryMessage
	}
	return snapshot
}

// translate maps registry errors onto the transport error vocabulary.
func translate(err error) error {
	var authErr *registry.AuthError
	if errors.As(err, &authErr) {
		return dErrors.Wrap(dErrors.CodeUnavailable, "registry authentication failed", err)
	}

	var unavailErr *registry.UnavailableError
	if errors.As(err, &unavailErr) {
		return dErrors.Wrap(dErrors.CodeUnavailable, "registry unavailable", err)
	}

	var verifErr *registry.VerificationError
	if errors.As(err, &verifErr) {
		return dErrors.Wrap(dErrors.CodeUpstream, "registry rejected the verification request", err)
	}

	return dErrors.Wrap(dErrors.CodeInternal, "verification failed", err)
}
