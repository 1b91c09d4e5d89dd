// Package allowlist decides which client systems may call the gateway. A
// system is identified by its source IP and optionally holds a bcrypt-hashed
// API key checked against the X-API-Key header.
package allowlist

// System is one whitelisted client system.
type System struct {
	Name       string `json:"name"`
	IP         string `json:"ip"`
	APIKeyHash string `json:"apiKeyHash,omitempty"`
	Active     bool   `json:"active"`
}
