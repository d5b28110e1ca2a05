package afip

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webconf/checkout/internal/domain/billing"
)

type countingAuthority struct {
	calls   atomic.Int32
	creds   billing.TaxCredentials
	authErr error
}

func (a *countingAuthority) Authenticate(context.Context) (billing.TaxCredentials, error) {
	a.calls.Add(1)
	if a.authErr != nil {
		return billing.TaxCredentials{}, a.authErr
	}
	return a.creds, nil
}

func (a *countingAuthority) LastAuthorizedNumber(context.Context, billing.TaxCredentials, int, int) (int64, error) {
	return 0, nil
}

func (a *countingAuthority) RequestAuthorization(context.Context, billing.TaxCredentials, *billing.TaxInvoiceRequest) (billing.TaxAuthorization, error) {
	return billing.TaxAuthorization{}, nil
}

func TestCredentialCacheReusesValidCredentials(t *testing.T) {
	authority := &countingAuthority{
		creds: billing.TaxCredentials{Token: "tok", Sign: "sig", ExpiresAt: time.Now().Add(12 * time.Hour)},
	}
	cache := NewCredentialCache(authority)

	for i := 0; i < 5; i++ {
		creds, err := cache.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok", creds.Token)
	}
	assert.Equal(t, int32(1), authority.calls.Load())
}

func TestCredentialCacheRefreshesNearExpiry(t *testing.T) {
	authority := &countingAuthority{
		// inside the skew window, treated as stale
		creds: billing.TaxCredentials{Token: "tok", Sign: "sig", ExpiresAt: time.Now().Add(time.Minute)},
	}
	cache := NewCredentialCache(authority)

	_, err := cache.Credentials(context.Background())
	require.NoError(t, err)
	_, err = cache.Credentials(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), authority.calls.Load())
}

func TestCredentialCacheDoesNotCacheFailures(t *testing.T) {
	authority := &countingAuthority{authErr: billing.ErrTaxAuthUnavailable}
	cache := NewCredentialCache(authority)

	_, err := cache.Credentials(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrTaxAuthUnavailable))

	authority.authErr = nil
	authority.creds = billing.TaxCredentials{Token: "tok", Sign: "sig", ExpiresAt: time.Now().Add(12 * time.Hour)}

	creds, err := cache.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.Token)
}

func TestCredentialCacheInvalidate(t *testing.T) {
	authority := &countingAuthority{
		creds: billing.TaxCredentials{Token: "tok", Sign: "sig", ExpiresAt: time.Now().Add(12 * time.Hour)},
	}
	cache := NewCredentialCache(authority)

	_, err := cache.Credentials(context.Background())
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), authority.calls.Load())
}
