package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nid-gateway/internal/audit"
	"nid-gateway/internal/domain"
	"nid-gateway/pkg/platform/httputil"
	"nid-gateway/pkg/requestcontext"
)

// Service defines the verification operations the handler depends on.
type Service interface {
	Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error)
}

// StatsReader serves the read-side aggregate endpoint.
type StatsReader interface {
	Stats(ctx context.Context) (audit.Stats, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	stats   StatsReader
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, stats StatsReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, stats: stats, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification", h.HandleVerify)
	r.Get("/verification/stats", h.HandleStats)
}

// HandleVerify handles POST /verification requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, req.Domain())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(requestID, result))
}

// HandleStats handles GET /verification/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stats aggregation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
