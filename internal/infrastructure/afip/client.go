// Package afip talks to the Argentine tax authority's electronic
// invoicing services: WSAA for authentication and WSFEv1 for CAE
// authorization. Both are SOAP endpoints.
package afip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/infrastructure/config"
)

const (
	dateLayout = "20060102"

	// WSFE error codes for token validation failures
	errCodeTokenInvalid  = 600
	errCodeTokenExpired  = 601
	errCodeSignMismatch  = 602
)

// Client implements billing.TaxAuthority against the WSAA and WSFEv1
// services
type Client struct {
	cfg        config.AFIPConfig
	cuit       int64
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configured credentials and builds a client
func NewClient(cfg config.AFIPConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Certificate == "" {
		return nil, fmt.Errorf("afip: certificate not set")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("afip: private key not set")
	}
	cuitDigits := onlyDigits(cfg.CUIT)
	if cuitDigits == "" {
		return nil, fmt.Errorf("afip: CUIT not set")
	}
	cuit, err := strconv.ParseInt(cuitDigits, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("afip: invalid CUIT %q: %w", cfg.CUIT, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:        cfg,
		cuit:       cuit,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Authenticate signs a login ticket request with the configured
// certificate and exchanges it for a token/sign pair
func (c *Client) Authenticate(ctx context.Context) (billing.TaxCredentials, error) {
	cms, err := c.signLoginTicket(time.Now())
	if err != nil {
		return billing.TaxCredentials{}, fmt.Errorf("%w: %v", billing.ErrTaxAuthAuthentication, err)
	}

	creds, err := c.loginCms(ctx, cms)
	if err != nil {
		return billing.TaxCredentials{}, err
	}

	c.logger.Info("tax authority authentication succeeded",
		zap.Time("expires_at", creds.ExpiresAt))
	return creds, nil
}

// LastAuthorizedNumber asks WSFE for the highest issued invoice number
func (c *Client) LastAuthorizedNumber(ctx context.Context, creds billing.TaxCredentials, invoiceType, pointOfSale int) (int64, error) {
	return c.lastAuthorized(ctx, creds, invoiceType, pointOfSale)
}

// RequestAuthorization submits one document to WSFE and returns its CAE
func (c *Client) RequestAuthorization(ctx context.Context, creds billing.TaxCredentials, req *billing.TaxInvoiceRequest) (billing.TaxAuthorization, error) {
	auth, err := c.requestCAE(ctx, creds, req)
	if err != nil {
		return billing.TaxAuthorization{}, err
	}

	c.logger.Info("CAE authorized",
		zap.Int64("number", req.Number),
		zap.String("cae", auth.CAE),
		zap.Time("cae_expiry", auth.CAEExpiry))
	return auth, nil
}

// post sends a SOAP request and returns the raw response body.
// Transport failures and non-2xx statuses map to the retryable
// unavailable error.
func (c *Client) post(ctx context.Context, url, soapAction string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrTaxAuthUnavailable, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrTaxAuthUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrTaxAuthUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("tax authority returned non-2xx status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", billing.ErrTaxAuthUnavailable, resp.StatusCode)
	}
	return data, nil
}

func isAuthErrorCode(code int) bool {
	return code == errCodeTokenInvalid || code == errCodeTokenExpired || code == errCodeSignMismatch
}

func onlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
