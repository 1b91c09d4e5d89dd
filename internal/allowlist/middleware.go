package allowlist

import (
	"log/slog"
	"net/http"

	"nid-gateway/pkg/platform/httputil"
	"nid-gateway/pkg/requestcontext"
)

// apiKeyHeader carries the caller's API key when its system requires one.
const apiKeyHeader = "X-API-Key"

// Middleware rejects requests from unknown client systems and records the
// resolved system name in the context for handlers and audit records.
// Requires the metadata middleware to have resolved the client IP.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			system, err := service.Authorize(ctx, ip, r.Header.Get(apiKeyHeader))
			if err != nil {
				logger.WarnContext(ctx, "client system rejected",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", ip,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithSystemName(ctx, system.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
