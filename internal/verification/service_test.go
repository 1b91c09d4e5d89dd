package verification

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nid-gateway/internal/audit"
	"nid-gateway/internal/domain"
	"nid-gateway/internal/registry"
	dErrors "nid-gateway/pkg/domain-errors"
	"nid-gateway/pkg/requestcontext"
)

type stubRegistry struct {
	result domain.VerificationResult
	err    error
}

func (s *stubRegistry) Verify(context.Context, domain.VerificationRequest) (domain.VerificationResult, error) {
	return s.result, s.err
}

type captureSink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (s *captureSink) Record(record audit.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *captureSink) all() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Record, len(s.records))
	copy(out, s.records)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRequest() domain.VerificationRequest {
	return domain.VerificationRequest{
		NID:         "1234567890",
		DateOfBirth: "1990-01-15",
		NameEn:      "Jane Doe",
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, &captureSink{}, discardLogger())
	assert.Error(t, err)

	_, err = New(&stubRegistry{}, nil, discardLogger())
	assert.Error(t, err)
}

func TestVerifySuccessEmitsAuditRecord(t *testing.T) {
	reg := &stubRegistry{result: domain.VerificationResult{
		Verified:      true,
		FieldMatch:    domain.FieldMatch{NameEn: true, DateOfBirth: true},
		PersonDetails: map[string]any{"nameEn": "Jane Doe"},
	}}
	sink := &captureSink{}
	svc, err := New(reg, sink, discardLogger())
	require.NoError(t, err)

	ctx := requestcontext.WithClientIP(context.Background(), "203.0.113.7")
	ctx = requestcontext.WithSystemName(ctx, "land-office")

	result, err := svc.Verify(ctx, sampleRequest())
	require.NoError(t, err)
	assert.True(t, result.Verified)

	records := sink.all()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, audit.OutcomeSuccess, rec.Outcome)
	assert.Equal(t, "1234567890", rec.SubjectID)
	assert.Equal(t, "203.0.113.7", rec.ClientIP)
	assert.Equal(t, "land-office", rec.SystemName)
	assert.Equal(t, "1234567890", rec.Request["nid"])
	assert.Equal(t, true, rec.Response["verified"])
	assert.Empty(t, rec.ErrorDetail)
}

func TestVerifyFailureEmitsAuditRecord(t *testing.T) {
	reg := &stubRegistry{err: &registry.VerificationError{Status: 404, Body: "no record"}}
	sink := &captureSink{}
	svc, err := New(reg, sink, discardLogger())
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), sampleRequest())
	require.Error(t, err)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, audit.OutcomeError, records[0].Outcome)
	assert.Contains(t, records[0].ErrorDetail, "no record")
	assert.Nil(t, records[0].Response)
}

func TestVerifyMeasuresProcessingTimeFromReceipt(t *testing.T) {
	reg := &stubRegistry{result: domain.VerificationResult{Verified: true}}
	sink := &captureSink{}
	svc, err := New(reg, sink, discardLogger())
	require.NoError(t, err)

	receipt := time.Now().Add(-250 * time.Millisecond)
	ctx := requestcontext.WithTime(context.Background(), receipt)

	_, err = svc.Verify(ctx, sampleRequest())
	require.NoError(t, err)

	records := sink.all()
	require.Len(t, records, 1)
	assert.GreaterOrEqual(t, records[0].ProcessingTime, 250*time.Millisecond)
	assert.Equal(t, receipt, records[0].CreatedAt)
}

func TestVerifyReusesRequestIDAsCorrelationID(t *testing.T) {
	reg := &stubRegistry{result: domain.VerificationResult{Verified: true}}
	sink := &captureSink{}
	svc, err := New(reg, sink, discardLogger())
	require.NoError(t, err)

	id := uuid.New()
	ctx := requestcontext.WithRequestID(context.Background(), id.String())

	_, err = svc.Verify(ctx, sampleRequest())
	require.NoError(t, err)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
}

func TestVerifyErrorTranslation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode dErrors.Code
	}{
		{"auth failure", &registry.AuthError{Status: 500, Body: "boom"}, dErrors.CodeUnavailable},
		{"registry down", &registry.UnavailableError{Reason: "circuit open"}, dErrors.CodeUnavailable},
		{"hard rejection", &registry.VerificationError{Status: 404, Body: "no record"}, dErrors.CodeUpstream},
		{"unknown failure", context.DeadlineExceeded, dErrors.CodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := New(&stubRegistry{err: tc.err}, &captureSink{}, discardLogger())
			require.NoError(t, err)

			_, err = svc.Verify(context.Background(), sampleRequest())
			domainErr := dErrors.From(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tc.wantCode, domainErr.Code)
		})
	}
}
