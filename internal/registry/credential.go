package registry

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// refreshMargin refreshes the token slightly before the assumed expiry so a
// request never goes out with a credential about to lapse.
const refreshMargin = time.Minute

// Credential is the bearer token obtained from the registry login endpoint
// plus its assumed expiry. Replaced wholesale on refresh, never mutated.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// loginFunc performs one authentication exchange and returns the raw token.
type loginFunc func(ctx context.Context) (string, error)

// Credentials caches the process-wide registry credential. The registry does
// not report a token lifetime, so the cache assumes a configurable validity
// window; a 401 from the registry is authoritative regardless of the window
// and callers invalidate through Invalidate.
//
// Concurrent refreshes are single-flighted: the first caller performs the
// exchange and every waiter observes the same outcome.
type Credentials struct {
	login  loginFunc
	ttl    time.Duration
	margin time.Duration
	nowFn  func() time.Time
	flight singleflight.Group

	mu      sync.RWMutex
	current *Credential
}

// NewCredentials builds a credential cache around the given login exchange.
func NewCredentials(login loginFunc, ttl time.Duration) *Credentials {
	if ttl <= 0 {
		ttl = time.Hour
	}
	margin := refreshMargin
	if ttl <= 2*refreshMargin {
		// Short windows (tests, aggressive configs) keep a proportional margin.
		margin = ttl / 10
	}
	return &Credentials{
		login:  login,
		ttl:    ttl,
		margin: margin,
		nowFn:  time.Now,
	}
}

// Get returns a valid credential, performing at most one authentication
// exchange across all concurrent callers. Authentication failures surface as
// *AuthError and are never retried here; the caller decides.
func (c *Credentials) Get(ctx context.Context) (Credential, error) {
	if cred, ok := c.cached(); ok {
		return cred, nil
	}

	v, err, _ := c.flight.Do("login", func() (any, error) {
		// A waiter may arrive after the previous flight finished; re-check
		// before paying for another exchange.
		if cred, ok := c.cached(); ok {
			return cred, nil
		}

		token, err := c.login(ctx)
		if err != nil {
			return Credential{}, err
		}

		cred := Credential{
			Token:     token,
			ExpiresAt: c.nowFn().Add(c.ttl),
		}
		c.mu.Lock()
		c.current = &cred
		c.mu.Unlock()
		return cred, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

// Invalidate clears the cached credential immediately, forcing the next Get
// to re-authenticate. Called after the registry reports the credential
// invalid.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

func (c *Credentials) cached() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Credential{}, false
	}
	if !c.nowFn().Before(c.current.ExpiresAt.Add(-c.margin)) {
		return Credential{}, false
	}
	return *c.current, true
}
