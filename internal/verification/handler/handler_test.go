package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nid-gateway/internal/audit"
	"nid-gateway/internal/domain"
	dErrors "nid-gateway/pkg/domain-errors"
)

type stubService struct {
	got    domain.VerificationRequest
	result domain.VerificationResult
	err    error
}

func (s *stubService) Verify(_ context.Context, req domain.VerificationRequest) (domain.VerificationResult, error) {
	s.got = req
	return s.result, s.err
}

type stubStats struct {
	stats audit.Stats
	err   error
}

func (s *stubStats) Stats(context.Context) (audit.Stats, error) {
	return s.stats, s.err
}

func newTestRouter(service *stubService, stats *stubStats) http.Handler {
	h := New(service, stats, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func postVerify(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/verification", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleVerifySuccess(t *testing.T) {
	service := &stubService{result: domain.VerificationResult{
		Verified:      true,
		FieldMatch:    domain.FieldMatch{NameEn: true, DateOfBirth: true},
		PersonDetails: map[string]any{"nameEn": "Jane Doe"},
	}}
	router := newTestRouter(service, &stubStats{})

	rec := postVerify(t, router, `{"nid":"1234567890","dateOfBirth":"1990-01-15","nameEn":"Jane Doe"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.Equal(t, true, resp.Fields["nameEn"])
	assert.Equal(t, "Jane Doe", resp.Data["nameEn"])
	assert.Empty(t, resp.Message)

	assert.Equal(t, "1234567890", service.got.NID)
}

func TestHandleVerifyConditionalMismatch(t *testing.T) {
	service := &stubService{result: domain.VerificationResult{
		Verified:        false,
		FieldMatch:      domain.FieldMatch{NameEn: true, DateOfBirth: false},
		AdvisoryMessage: "record found but supplied fields did not match",
	}}
	router := newTestRouter(service, &stubStats{})

	rec := postVerify(t, router, `{"nid":"1234567890","dateOfBirth":"1990-01-16","nameEn":"Jane Doe"}`)

	require.Equal(t, http.StatusOK, rec.Code, "a mismatch is a successful request")
	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Verified)
	assert.Equal(t, false, resp.Fields["dateOfBirth"])
	assert.NotEmpty(t, resp.Message)
}

func TestHandleVerifyValidationFailure(t *testing.T) {
	service := &stubService{}
	router := newTestRouter(service, &stubStats{})

	rec := postVerify(t, router, `{"nid":"12345","dateOfBirth":"1990-01-15","nameEn":"Jane Doe"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["error"])
	assert.Contains(t, body["error_description"], "10 or 17 digits")
	assert.Empty(t, service.got.NID, "service must not be called on validation failure")
}

func TestHandleVerifyMalformedBody(t *testing.T) {
	router := newTestRouter(&stubService{}, &stubStats{})

	rec := postVerify(t, router, `{"nid": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad_request", body["error"])
}

func TestHandleVerifyUnknownFieldRejected(t *testing.T) {
	router := newTestRouter(&stubService{}, &stubStats{})

	rec := postVerify(t, router, `{"nid":"1234567890","dateOfBirth":"1990-01-15","nameEn":"Jane Doe","extra":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVerifyUpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail bool
	}{
		{
			name:       "registry unavailable",
			err:        dErrors.New(dErrors.CodeUnavailable, "registry unavailable"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "service_unavailable",
			wantDetail: true,
		},
		{
			name:       "registry rejected",
			err:        dErrors.New(dErrors.CodeUpstream, "registry rejected the verification request"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_rejected",
			wantDetail: true,
		},
		{
			name:       "internal detail is hidden",
			err:        dErrors.New(dErrors.CodeInternal, "connection string leaked"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			wantDetail: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tc.err}, &stubStats{})

			rec := postVerify(t, router, `{"nid":"1234567890","dateOfBirth":"1990-01-15","nameEn":"Jane Doe"}`)

			require.Equal(t, tc.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body["error"])
			if tc.wantDetail {
				assert.NotEmpty(t, body["error_description"])
			} else {
				assert.Empty(t, body["error_description"])
			}
		})
	}
}

func TestHandleStats(t *testing.T) {
	stats := &stubStats{stats: audit.Stats{Total: 10, Success: 8, Error: 2, AvgProcessingMs: 41.5}}
	router := newTestRouter(&stubService{}, stats)

	req := httptest.NewRequest(http.MethodGet, "/verification/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got audit.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stats.stats, got)
}

func TestHandleStatsFailure(t *testing.T) {
	router := newTestRouter(&stubService{}, &stubStats{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/verification/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
