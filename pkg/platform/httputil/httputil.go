// Package httputil holds the thin JSON helpers shared by all HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "nid-gateway/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies so a misbehaving client cannot exhaust
// memory before validation runs.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request types that validate and normalize
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto the wire error shape. Internal errors omit the
// description so infrastructure detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	dErr := dErrors.From(err)

	body := map[string]string{"error": string(dErr.Code)}
	if dErr.Safe() {
		body["error_description"] = dErr.Description
	}
	WriteJSON(w, dErr.HTTPStatus(), body)
}

// validatablePtr constrains PT to *T implementing Validatable, so request
// types can keep pointer-receiver Validate methods.
type validatablePtr[T any] interface {
	Validatable
	*T
}

// DecodeAndPrepare decodes the request body into T and runs its validation.
// On failure it writes the error response and returns ok=false; handlers
// simply return.
func DecodeAndPrepare[T any, PT validatablePtr[T]](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request decode failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}

	if err := PT(&req).Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}

	return &req, true
}
