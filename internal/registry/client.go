// Package registry implements the outbound client for the national identity
// registry: credential management, the verification exchange, response
// classification, and photo fold-in.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nid-gateway/internal/domain"
	"nid-gateway/internal/registry/metrics"
	"nid-gateway/pkg/platform/circuit"
)

const (
	loginPath  = "/auth/login"
	verifyPath = "/voter/demographic/verification"

	// advisoryMismatch is attached when the registry found the record but the
	// supplied fields did not match.
	advisoryMismatch = "record found but supplied fields did not match"

	// maxResponseBytes bounds how much of an upstream body is read.
	maxResponseBytes = 4 << 20
)

// photoFields lists person-detail keys that may carry a remote photo
// reference eligible for inlining.
var photoFields = []string{"photo", "photoUrl"}

// Inliner fetches a remote asset and returns a self-contained encoded copy.
// Failures are non-fatal; the client keeps the original reference.
type Inliner interface {
	Inline(ctx context.Context, url string) (string, error)
}

// Client owns the outbound registry protocol. Safe for concurrent use; the
// only shared mutable state is the credential cache, which single-flights its
// refreshes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string

	creds   *Credentials
	breaker *circuit.Breaker
	inliner Inliner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom
// transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInliner sets the photo inliner. Without one, photo references pass
// through unmodified.
func WithInliner(in Inliner) Option {
	return func(c *Client) { c.inliner = in }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithTokenTTL sets the assumed credential validity window.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Client) { c.creds = NewCredentials(c.login, ttl) }
}

// New builds a registry client. baseURL is the registry root; username and
// password feed the login exchange; timeout bounds each HTTP call.
func New(baseURL, username, password string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		breaker:    circuit.New("registry"),
		logger:     logger,
	}
	c.creds = NewCredentials(c.login, time.Hour)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials exposes the credential cache, mainly for tests and for wiring
// an explicit invalidation path.
func (c *Client) Credentials() *Credentials { return c.creds }

// Verify submits one verification request and returns the normalized result.
//
// An unauthorized response invalidates the cached credential and the whole
// flow retries exactly once with a fresh credential; a second unauthorized
// response is fatal. The conditional-mismatch outcome is a successful call
// with Verified=false.
func (c *Client) Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error) {
	var zero domain.VerificationResult

	channel, err := req.Channel()
	if err != nil {
		return zero, &VerificationError{Status: 0, Body: err.Error()}
	}

	if !c.breaker.Allow() {
		c.metrics.IncOutcome("error")
		return zero, &UnavailableError{Reason: "circuit open"}
	}

	payload := verifyRequest{
		Verify: verifyFields{NameEn: req.NameEn, DateOfBirth: req.DateOfBirth},
	}
	switch channel {
	case domain.ChannelNID10:
		payload.Identify.NID10 = req.NID
	case domain.ChannelNID17:
		payload.Identify.NID17 = req.NID
	}

	// Bounded retry: at most one re-authentication after a 401. The naive
	// recursive form is deliberately avoided so sustained failure cannot
	// recurse unboundedly.
	for attempt := 0; ; attempt++ {
		cred, err := c.creds.Get(ctx)
		if err != nil {
			c.metrics.IncOutcome("error")
			return zero, err
		}

		status, body, err := c.post(ctx, verifyPath, payload, cred.Token)
		if err != nil {
			c.recordFailure()
			c.metrics.IncOutcome("error")
			return zero, &UnavailableError{Reason: "verification call failed", Err: err}
		}
		c.recordSuccess()

		out := classify(status, body)
		switch out.kind {
		case outcomeUnauthorized:
			// 401 is authoritative proof of expiry regardless of the
			// assumed validity window.
			c.creds.Invalidate()
			if attempt == 0 {
				c.logger.WarnContext(ctx, "registry credential rejected, retrying with fresh token")
				continue
			}
			c.metrics.IncOutcome("unauthorized")
			return zero, &UnavailableError{Reason: "unauthorized after credential refresh"}

		case outcomeMatched:
			c.metrics.IncOutcome("matched")
			result := domain.VerificationResult{
				Verified:      out.payload.Verified,
				FieldMatch:    out.fieldMatch(),
				PersonDetails: out.payload.Data,
			}
			c.foldInPhoto(ctx, result.PersonDetails)
			return result, nil

		case outcomeMismatched:
			c.metrics.IncOutcome("mismatched")
			result := domain.VerificationResult{
				Verified:        false,
				FieldMatch:      out.fieldMatch(),
				PersonDetails:   out.payload.Data,
				AdvisoryMessage: advisoryMismatch,
			}
			c.foldInPhoto(ctx, result.PersonDetails)
			return result, nil

		default:
			c.metrics.IncOutcome("rejected")
			return zero, &VerificationError{Status: out.status, Body: string(out.body)}
		}
	}
}

// login performs the credential exchange. Called only through the credential
// cache's single flight.
func (c *Client) login(ctx context.Context) (string, error) {
	status, body, err := c.post(ctx, loginPath, loginRequest{
		Username: c.username,
		Password: c.password,
	}, "")
	if err != nil {
		c.recordFailure()
		c.metrics.IncTokenRefresh(true)
		return "", &AuthError{Status: 0, Body: err.Error()}
	}
	c.recordSuccess()

	var resp loginResponse
	if status != http.StatusOK || json.Unmarshal(body, &resp) != nil || resp.Status != "OK" || resp.Success.Data.AccessToken == "" {
		c.metrics.IncTokenRefresh(true)
		return "", &AuthError{Status: status, Body: string(body)}
	}

	c.metrics.IncTokenRefresh(false)
	c.logger.InfoContext(ctx, "registry credential refreshed")
	return resp.Success.Data.AccessToken, nil
}

// post sends one JSON request and reads a bounded body. The operation label
// feeds the call-latency histogram.
func (c *Client) post(ctx context.Context, path string, payload any, bearer string) (int, []byte, error) {
	start := time.Now()
	operation := "verify"
	if path == loginPath {
		operation = "login"
	}
	defer func() { c.metrics.ObserveCall(operation, time.Since(start)) }()

	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s payload: %w", operation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%s call: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read %s response: %w", operation, err)
	}
	return resp.StatusCode, body, nil
}

// foldInPhoto replaces a remote photo reference with an inlined copy. Inliner
// failure leaves the original reference untouched and never fails the
// verification.
func (c *Client) foldInPhoto(ctx context.Context, details map[string]any) {
	if c.inliner == nil || details == nil {
		return
	}
	for _, field := range photoFields {
		ref, ok := details[field].(string)
		if !ok || ref == "" || strings.HasPrefix(ref, "data:") {
			continue
		}
		encoded, err := c.inliner.Inline(ctx, ref)
		if err != nil {
			c.metrics.IncInlineFailure()
			c.logger.WarnContext(ctx, "photo inlining failed, keeping original reference",
				"field", field,
				"error", err,
			)
			continue
		}
		details[field] = encoded
	}
}

func (c *Client) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.IncCircuit("opened")
		c.logger.Warn("registry circuit opened")
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.IncCircuit("closed")
		c.logger.Info("registry circuit closed")
	}
}
