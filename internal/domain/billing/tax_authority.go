package billing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrTaxAuthAuthentication covers missing or rejected credentials;
	// fatal for the current invoice attempt
	ErrTaxAuthAuthentication = errors.New("tax authority: authentication failed")
	// ErrTaxAuthUnavailable covers timeouts and non-2xx responses; retryable
	ErrTaxAuthUnavailable = errors.New("tax authority: service unavailable")
	// ErrTaxAuthRejected means the authority refused the invoice data itself
	ErrTaxAuthRejected = errors.New("tax authority: invoice rejected")
)

// TaxCredentials is an authority access token pair with its expiry. The
// authority rate-limits authentication, so credentials are cached and
// reused until they expire.
type TaxCredentials struct {
	Token     string
	Sign      string
	ExpiresAt time.Time
}

// Valid reports whether the credentials can still be used at the given time
func (c TaxCredentials) Valid(now time.Time) bool {
	return c.Token != "" && c.Sign != "" && now.Before(c.ExpiresAt)
}

// Invoice concept codes per the authority's coding
const (
	ConceptProducts            = 1
	ConceptServices            = 2
	ConceptProductsAndServices = 3
)

// TaxInvoiceLine is one itemized line on a submitted document
type TaxInvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// TaxInvoiceRequest carries everything the authority needs to authorize
// a document
type TaxInvoiceRequest struct {
	InvoiceType int
	PointOfSale int
	Number      int64
	Concept     int
	// DocumentType and DocumentNumber identify the recipient per the
	// authority's coding (CUIT, passport, DNI)
	DocumentType   int
	DocumentNumber string
	Total          decimal.Decimal
	Currency       string
	Lines          []TaxInvoiceLine
	// ServiceFrom/ServiceTo are the service period dates required for
	// service-concept documents
	ServiceFrom time.Time
	ServiceTo   time.Time
	IssuedAt    time.Time
}

// TaxAuthorization is the authority's answer to a document submission
type TaxAuthorization struct {
	CAE       string
	CAEExpiry time.Time
}

// TaxAuthority defines the port to the government invoicing service.
// The concrete adapter lives in the infrastructure layer; the pipeline
// only sees this interface.
type TaxAuthority interface {
	// Authenticate exchanges the configured certificate and key for a
	// token/sign pair
	Authenticate(ctx context.Context) (TaxCredentials, error)

	// LastAuthorizedNumber returns the highest invoice number the
	// authority has issued for the invoice type and point of sale; the
	// next document uses that number plus one
	LastAuthorizedNumber(ctx context.Context, creds TaxCredentials, invoiceType, pointOfSale int) (int64, error)

	// RequestAuthorization submits a document and returns its CAE
	RequestAuthorization(ctx context.Context, creds TaxCredentials, req *TaxInvoiceRequest) (TaxAuthorization, error)
}
