package registry

import (
	"encoding/json"
	"net/http"

	"nid-gateway/internal/domain"
)

// outcomeKind is the tagged classification of a registry verification
// response. The registry's implicit two-state protocol (status=="OK" versus a
// distinct non-200 mismatch body) is modelled explicitly rather than sniffed
// at call sites.
type outcomeKind int

const (
	outcomeMatched outcomeKind = iota
	outcomeMismatched
	outcomeUnauthorized
	outcomeRejected
)

type outcome struct {
	kind    outcomeKind
	payload verifyPayload
	status  int
	body    []byte
}

// classify maps an HTTP status and body onto a tagged outcome.
//
// The registry does not document which non-200 status carries the
// conditional-mismatch body, so the classifier keys on the body shape: any
// non-200, non-401 response whose top level carries verified or
// fieldVerificationResult is the found-but-mismatched outcome. Everything
// else is a hard rejection.
func classify(status int, body []byte) outcome {
	out := outcome{status: status, body: body}

	if status == http.StatusUnauthorized {
		out.kind = outcomeUnauthorized
		return out
	}

	if status == http.StatusOK {
		var resp verifyResponse
		if err := json.Unmarshal(body, &resp); err == nil && resp.Status == "OK" {
			out.kind = outcomeMatched
			out.payload = resp.Success
			return out
		}
		out.kind = outcomeRejected
		return out
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		_, hasVerified := probe["verified"]
		_, hasFields := probe["fieldVerificationResult"]
		if hasVerified || hasFields {
			var payload verifyPayload
			if err := json.Unmarshal(body, &payload); err == nil {
				out.kind = outcomeMismatched
				out.payload = payload
				return out
			}
		}
	}

	out.kind = outcomeRejected
	return out
}

// fieldMatch normalizes the registry's field flags. Absent data defaults both
// flags to false, never omitted.
func (o outcome) fieldMatch() domain.FieldMatch {
	var fm domain.FieldMatch
	if fr := o.payload.FieldVerificationResult; fr != nil {
		if fr.NameEn != nil {
			fm.NameEn = *fr.NameEn
		}
		if fr.DateOfBirth != nil {
			fm.DateOfBirth = *fr.DateOfBirth
		}
	}
	return fm
}
