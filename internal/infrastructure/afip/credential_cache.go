package afip

import (
	"context"
	"sync"
	"time"

	"github.com/webconf/checkout/internal/domain/billing"
)

// expirySkew is how long before the real expiry cached credentials are
// considered stale, so a request never goes out with a token about to
// lapse mid-flight
const expirySkew = 5 * time.Minute

// CredentialCache reuses a token/sign pair until it expires. WSAA
// rate-limits authentication, so every invoicing call must go through
// the cache instead of authenticating directly.
//
// Concurrent refreshes are allowed; whichever finishes last wins. Both
// results are valid tickets, so racing is harmless.
type CredentialCache struct {
	authority billing.TaxAuthority
	now       func() time.Time

	mu    sync.Mutex
	creds billing.TaxCredentials
}

func NewCredentialCache(authority billing.TaxAuthority) *CredentialCache {
	return &CredentialCache{
		authority: authority,
		now:       time.Now,
	}
}

// Credentials returns the cached pair, authenticating first when the
// cache is empty or stale
func (c *CredentialCache) Credentials(ctx context.Context) (billing.TaxCredentials, error) {
	c.mu.Lock()
	if c.creds.Valid(c.now().Add(expirySkew)) {
		creds := c.creds
		c.mu.Unlock()
		return creds, nil
	}
	c.mu.Unlock()

	creds, err := c.authority.Authenticate(ctx)
	if err != nil {
		return billing.TaxCredentials{}, err
	}

	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
	return creds, nil
}

// Invalidate drops the cached credentials, forcing the next call to
// authenticate again. Used when WSFE reports a token validation error.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.creds = billing.TaxCredentials{}
	c.mu.Unlock()
}
