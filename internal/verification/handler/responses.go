package handler

import "nid-gateway/internal/domain"

// VerifyResponse is the HTTP response body for POST /verification.
type VerifyResponse struct {
	RequestID string         `json:"requestId"`
	Verified  bool           `json:"verified"`
	Fields    map[string]any `json:"fieldVerificationResult"`
	Data      map[string]any `json:"data,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// FromResult shapes the domain result for the wire.
func FromResult(requestID string, result domain.VerificationResult) VerifyResponse {
	return VerifyResponse{
		RequestID: requestID,
		Verified:  result.Verified,
		Fields: map[string]any{
			"nameEn":      result.FieldMatch.NameEn,
			"dateOfBirth": result.FieldMatch.DateOfBirth,
		},
		Data:    result.PersonDetails,
		Message: result.AdvisoryMessage,
	}
}
