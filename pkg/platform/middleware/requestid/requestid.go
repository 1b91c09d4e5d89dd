// Package requestid assigns each request a correlation UUID. The same ID ends
// up in logs, the audit record, and the X-Request-Id response header.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"nid-gateway/pkg/requestcontext"
)

// Header is the response header carrying the correlation ID.
const Header = "X-Request-Id"

// Middleware generates a UUID per request unless the caller supplied one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
