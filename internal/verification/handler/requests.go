package handler

import (
	"strings"
	"time"
	"unicode"

	"github.com/asaskevich/govalidator"

	"nid-gateway/internal/domain"
	dErrors "nid-gateway/pkg/domain-errors"
)

// VerifyRequest is the HTTP request body for POST /verification.
type VerifyRequest struct {
	NID         string `json:"nid"`
	DateOfBirth string `json:"dateOfBirth"`
	NameEn      string `json:"nameEn"`
}

// Validate normalizes and validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VerifyRequest) Validate() error {
	r.NID = strings.TrimSpace(r.NID)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.NameEn = strings.Join(strings.Fields(r.NameEn), " ")

	if r.NID == "" {
		return dErrors.New(dErrors.CodeValidation, "nid is required")
	}
	if !govalidator.IsNumeric(r.NID) {
		return dErrors.New(dErrors.CodeValidation, "nid must contain only digits")
	}
	if len(r.NID) != 10 && len(r.NID) != 17 {
		return dErrors.New(dErrors.CodeValidation, "nid must be 10 or 17 digits")
	}

	if r.DateOfBirth == "" {
		return dErrors.New(dErrors.CodeValidation, "dateOfBirth is required")
	}
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		return dErrors.New(dErrors.CodeValidation, "dateOfBirth must be a YYYY-MM-DD date")
	}

	if r.NameEn == "" {
		return dErrors.New(dErrors.CodeValidation, "nameEn is required")
	}
	if len(r.NameEn) > 128 {
		return dErrors.New(dErrors.CodeValidation, "nameEn must be at most 128 characters")
	}
	for _, c := range r.NameEn {
		if c > unicode.MaxASCII || (!unicode.IsLetter(c) && !strings.ContainsRune(" .-'", c)) {
			return dErrors.New(dErrors.CodeValidation, "nameEn must be a Latin-script name")
		}
	}

	return nil
}

// Domain converts the validated request into the immutable domain form.
func (r *VerifyRequest) Domain() domain.VerificationRequest {
	return domain.VerificationRequest{
		NID:         r.NID,
		DateOfBirth: r.DateOfBirth,
		NameEn:      r.NameEn,
	}
}
