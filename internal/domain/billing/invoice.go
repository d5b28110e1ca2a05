package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
)

// Invoice is the tax-authority-authorized record for a paid order,
// one-to-one with the order. It is persisted only after the authority
// has issued a CAE: an invoice row without an authorization code must
// never exist.
type Invoice struct {
	shared.BaseAggregateRoot
	OrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	// Number is the authority-assigned sequential invoice number for the
	// configured point of sale and invoice type
	Number      int64  `gorm:"not null"`
	InvoiceType int    `gorm:"not null"`
	PointOfSale int    `gorm:"not null"`
	// CAE is the authorization code issued by the tax authority
	CAE       string    `gorm:"type:varchar(20);not null"`
	CAEExpiry time.Time `gorm:"not null"`
	// Recipient data is snapshotted so the rendered document survives
	// later customer edits
	RecipientName     string          `gorm:"type:varchar(200);not null"`
	RecipientDocument string          `gorm:"type:varchar(20);not null"`
	RecipientDocType  int             `gorm:"not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCurrency     string          `gorm:"type:varchar(3);not null"`
	// DocumentKey is the object-storage key of the rendered PDF; empty
	// until rendering succeeds
	DocumentKey string `gorm:"type:varchar(300)"`
	// EmailedAt is set once the document has been delivered to the customer
	EmailedAt *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice from an issued authorization. All the
// authority-sourced fields are required.
func NewInvoice(orderID uuid.UUID, number int64, invoiceType, pointOfSale int, cae string, caeExpiry time.Time) (*Invoice, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number must be positive")
	}
	if cae == "" {
		return nil, shared.NewDomainError("INVALID_CAE", "CAE cannot be empty")
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Number:            number,
		InvoiceType:       invoiceType,
		PointOfSale:       pointOfSale,
		CAE:               cae,
		CAEExpiry:         caeExpiry,
	}

	invoice.AddDomainEvent(NewInvoiceIssuedEvent(invoice))

	return invoice, nil
}

// AttachDocument records the storage key of the rendered PDF
func (i *Invoice) AttachDocument(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document key cannot be empty")
	}
	i.DocumentKey = key
	i.UpdatedAt = time.Now()
	return nil
}

// MarkEmailed records successful delivery to the customer
func (i *Invoice) MarkEmailed() {
	now := time.Now()
	i.EmailedAt = &now
	i.UpdatedAt = now
}

// HasDocument reports whether the PDF has been rendered and stored
func (i *Invoice) HasDocument() bool {
	return i.DocumentKey != ""
}

// FormattedNumber renders the invoice number in the POS-NUMBER display
// form used on the printed document, e.g. "0001-00000042"
func (i *Invoice) FormattedNumber() string {
	return fmtInvoiceNumber(i.PointOfSale, i.Number)
}

func fmtInvoiceNumber(pointOfSale int, number int64) string {
	return fmt.Sprintf("%04d-%08d", pointOfSale, number)
}
