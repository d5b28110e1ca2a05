package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/infrastructure/config"
)

// CredentialSource supplies valid tax-authority credentials. The
// infrastructure credential cache satisfies it; services never talk to
// the authentication endpoint directly.
type CredentialSource interface {
	Credentials(ctx context.Context) (billing.TaxCredentials, error)
}

// IssuerConfig carries the fiscal identity documents are issued under
type IssuerConfig struct {
	CompanyName    string
	CompanyAddress string
	CUIT           string
	PointOfSale    int
	InvoiceType    int
	CreditNoteType int
	// ServiceFrom and ServiceTo bound the billed service period; zero
	// values fall back to the document's issue date
	ServiceFrom time.Time
	ServiceTo   time.Time
}

const serviceDateLayout = "2006-01-02"

// NewIssuerConfig builds the issuer identity from the AFIP configuration
// block, parsing the service period dates
func NewIssuerConfig(cfg config.AFIPConfig) (IssuerConfig, error) {
	issuer := IssuerConfig{
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		CUIT:           cfg.CUIT,
		PointOfSale:    cfg.PointOfSale,
		InvoiceType:    cfg.InvoiceType,
		CreditNoteType: cfg.CreditNoteType,
	}
	if cfg.ServiceFrom != "" {
		from, err := time.Parse(serviceDateLayout, cfg.ServiceFrom)
		if err != nil {
			return IssuerConfig{}, fmt.Errorf("invalid afip.service_from: %w", err)
		}
		issuer.ServiceFrom = from
	}
	if cfg.ServiceTo != "" {
		to, err := time.Parse(serviceDateLayout, cfg.ServiceTo)
		if err != nil {
			return IssuerConfig{}, fmt.Errorf("invalid afip.service_to: %w", err)
		}
		issuer.ServiceTo = to
	}
	return issuer, nil
}

// servicePeriod resolves the service date range for a document issued now
func (c IssuerConfig) servicePeriod(issuedAt time.Time) (time.Time, time.Time) {
	from, to := c.ServiceFrom, c.ServiceTo
	if from.IsZero() {
		from = issuedAt
	}
	if to.IsZero() {
		to = issuedAt
	}
	return from, to
}

// invoiceTypeName maps an authority document type code to the title
// printed on the rendered document
func invoiceTypeName(invoiceType int) string {
	switch invoiceType {
	case 1:
		return "FACTURA A"
	case 6:
		return "FACTURA B"
	case 11:
		return "FACTURA C"
	case 13:
		return "NOTA DE CRÉDITO C"
	default:
		return "COMPROBANTE"
	}
}

// documentLabel maps an authority recipient document type code to the
// label shown next to the document number
func documentLabel(docType int) string {
	switch docType {
	case identity.AFIPDocumentTypeCUIT:
		return "CUIT"
	case identity.AFIPDocumentTypePassport:
		return "Pasaporte"
	default:
		return "DNI"
	}
}
