// Package requesttime pins a single "now" per HTTP request. Audit records and
// processing-time measurements all reference the same receipt timestamp.
package requesttime

import (
	"net/http"
	"time"

	"nid-gateway/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
