package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
)

// CreditNote is the tax document reversing an invoice, one-to-one with a
// cancellation. Like invoices, persisted only once the authority has
// issued its CAE.
type CreditNote struct {
	shared.BaseAggregateRoot
	CancellationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	// InvoiceID links back to the invoice this note reverses
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number      int64           `gorm:"not null"`
	InvoiceType int             `gorm:"not null"`
	PointOfSale int             `gorm:"not null"`
	CAE         string          `gorm:"type:varchar(20);not null"`
	CAEExpiry   time.Time       `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	DocumentKey string          `gorm:"type:varchar(300)"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// NewCreditNote creates a credit note from an issued authorization
func NewCreditNote(cancellationID, invoiceID uuid.UUID, number int64, invoiceType, pointOfSale int, cae string, caeExpiry time.Time, amount decimal.Decimal, currency string) (*CreditNote, error) {
	if cancellationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CANCELLATION", "Cancellation ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Credit note number must be positive")
	}
	if cae == "" {
		return nil, shared.NewDomainError("INVALID_CAE", "CAE cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note amount must be positive")
	}

	return &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CancellationID:    cancellationID,
		InvoiceID:         invoiceID,
		Number:            number,
		InvoiceType:       invoiceType,
		PointOfSale:       pointOfSale,
		CAE:               cae,
		CAEExpiry:         caeExpiry,
		Amount:            amount,
		Currency:          currency,
	}, nil
}

// AttachDocument records the storage key of the rendered PDF
func (n *CreditNote) AttachDocument(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document key cannot be empty")
	}
	n.DocumentKey = key
	n.UpdatedAt = time.Now()
	return nil
}

// FormattedNumber renders the credit note number in POS-NUMBER form
func (n *CreditNote) FormattedNumber() string {
	return fmtInvoiceNumber(n.PointOfSale, n.Number)
}
