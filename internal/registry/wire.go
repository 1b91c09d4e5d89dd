package registry

// Wire types for the registry protocol. Shapes are preserved bit-for-bit:
// login success nests the token under success.data, a matched verification
// nests its payload under success, and the conditional-mismatch body carries
// verified/data/fieldVerificationResult at the top level.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Success struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	} `json:"success"`
}

type identifyPayload struct {
	NID10 string `json:"nid10Digit,omitempty"`
	NID17 string `json:"nid17Digit,omitempty"`
}

type verifyFields struct {
	NameEn      string `json:"nameEn"`
	DateOfBirth string `json:"dateOfBirth"`
}

type verifyRequest struct {
	Identify identifyPayload `json:"identify"`
	Verify   verifyFields    `json:"verify"`
}

// fieldResult uses pointers so an absent flag is distinguishable from an
// explicit false; absent flags normalize to false either way.
type fieldResult struct {
	NameEn      *bool `json:"nameEn"`
	DateOfBirth *bool `json:"dateOfBirth"`
}

type verifyPayload struct {
	Verified                bool           `json:"verified"`
	Data                    map[string]any `json:"data"`
	FieldVerificationResult *fieldResult   `json:"fieldVerificationResult"`
}

type verifyResponse struct {
	Status  string        `json:"status"`
	Success verifyPayload `json:"success"`
}
