// Package httpapi assembles the HTTP surface: middleware chain, verification
// endpoints, and operational routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nid-gateway/internal/allowlist"
	verificationhandler "nid-gateway/internal/verification/handler"
	"nid-gateway/pkg/platform/middleware/metadata"
	"nid-gateway/pkg/platform/middleware/requestid"
	"nid-gateway/pkg/platform/middleware/requesttime"
)

// NewRouter wires all public endpoints. The allowlist gate protects only the
// verification surface; health and metrics stay open for probes and scrapers.
func NewRouter(
	verification *verificationhandler.Handler,
	allowlistService *allowlist.Service,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(allowlist.Middleware(allowlistService, logger))
		verification.Register(r)
	})

	return r
}
