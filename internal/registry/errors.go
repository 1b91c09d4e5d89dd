package registry

import "fmt"

// AuthError reports a failed credential exchange against the registry login
// endpoint. It carries the upstream status and body for diagnostics; the
// configured username/password never appear in it.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("registry authentication failed: status=%d body=%s", e.Status, e.Body)
}

// VerificationError reports a hard upstream rejection, i.e. any non-success
// response that is not the conditional-mismatch outcome.
type VerificationError struct {
	Status int
	Body   string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("registry rejected verification: status=%d body=%s", e.Status, e.Body)
}

// UnavailableError reports that the registry is unreachable, repeatedly
// unauthorized, or shielded by an open circuit breaker.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("registry unavailable: %s", e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
