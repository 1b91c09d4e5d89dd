// Package domain holds the core verification types shared across transport,
// registry client, and audit layers.
package domain

import "fmt"

// Channel selects the registry identification channel by NID digit count.
type Channel string

const (
	ChannelNID10 Channel = "nid10Digit"
	ChannelNID17 Channel = "nid17Digit"
)

// VerificationRequest is an already-validated inbound verification request.
// Immutable once constructed.
type VerificationRequest struct {
	// NID is the national ID, exactly 10 or 17 ASCII digits.
	NID string
	// DateOfBirth is a calendar date in YYYY-MM-DD form.
	DateOfBirth string
	// NameEn is the normalized Latin-script name.
	NameEn string
}

// Channel returns the identification channel for the request's NID. The digit
// count is a dispatch key; lengths other than 10 or 17 are never silently
// defaulted.
func (r VerificationRequest) Channel() (Channel, error) {
	switch len(r.NID) {
	case 10:
		return ChannelNID10, nil
	case 17:
		return ChannelNID17, nil
	default:
		return "", fmt.Errorf("nid must be 10 or 17 digits, got %d", len(r.NID))
	}
}

// FieldMatch reports per-field comparison flags from the registry. Absent
// registry data defaults both flags to false, never omitted.
type FieldMatch struct {
	NameEn      bool `json:"nameEn"`
	DateOfBirth bool `json:"dateOfBirth"`
}

// VerificationResult is the normalized verdict returned to callers. The
// conditional-mismatch case is a valid result with Verified=false, not an
// error.
type VerificationResult struct {
	Verified        bool           `json:"verified"`
	FieldMatch      FieldMatch     `json:"fieldVerificationResult"`
	PersonDetails   map[string]any `json:"data,omitempty"`
	AdvisoryMessage string         `json:"message,omitempty"`
}
