// Package circuit implements a small failure-counting circuit breaker used to
// guard outbound registry calls. While the breaker is open callers fail fast
// instead of waiting on a struggling upstream; once the cooldown elapses a
// probe request is let through to test recovery.
package circuit

import (
	"sync"
	"time"
)

// State describes the breaker position.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
	// StateHalfOpen lets probe requests through after the cooldown; their
	// outcome decides whether the breaker closes or reopens.
	StateHalfOpen State = "half-open"
)

// StateChange reports transitions so callers can log or count them.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker counts consecutive failures and opens after a threshold. An open
// breaker rejects calls until its cooldown elapses, then admits probes
// (half-open); consecutive probe successes close it, a probe failure reopens
// it for another cooldown. A success in the closed state resets the failure
// count; a failure resets the success count.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	nowFn            func() time.Time

	state     State
	failures  int
	successes int
	openUntil time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithSuccessThreshold sets how many consecutive successes close it.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) { b.successThreshold = n }
}

// WithCooldown sets how long the breaker stays open before admitting probes.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// New creates a closed breaker. Defaults: 5 failures to open, 1 success to
// close, 1 minute cooldown.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 1,
		cooldown:         time.Minute,
		nowFn:            time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the breaker's name for logs and metrics.
func (b *Breaker) Name() string { return b.name }

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsOpen reports whether the breaker is rejecting calls outright.
func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether a call may proceed. Closed and half-open admit; an
// open breaker admits nothing until the cooldown elapses, at which point it
// moves to half-open and admits probes.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return true
	}
	if b.nowFn().Before(b.openUntil) {
		return false
	}
	b.state = StateHalfOpen
	b.successes = 0
	return true
}

// RecordFailure counts a failed call. A half-open probe failure reopens the
// breaker for another cooldown. It returns whether the breaker is now open
// and whether this call transitioned it from closed.
func (b *Breaker) RecordFailure() (open bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	b.failures++

	switch b.state {
	case StateClosed:
		if b.failures >= b.failureThreshold {
			b.state = StateOpen
			b.openUntil = b.nowFn().Add(b.cooldown)
			change.Opened = true
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.openUntil = b.nowFn().Add(b.cooldown)
	}
	return b.state == StateOpen, change
}

// RecordSuccess counts a successful call. It returns whether the breaker is
// now closed and whether this call transitioned it.
func (b *Breaker) RecordSuccess() (closed bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateOpen || b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.successes = 0
			change.Closed = true
		}
	}
	return b.state == StateClosed, change
}

// Reset manually closes the breaker, clearing all counters. Operator
// escape hatch; normal recovery goes through the half-open probe.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
