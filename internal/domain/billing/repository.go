package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the persistence port for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Invoice, error)
	// FindPendingDocuments returns invoices authorized but not yet
	// rendered or emailed, oldest first
	FindPendingDocuments(ctx context.Context, limit int) ([]*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
}

// CancellationRepository defines the persistence port for cancellations
type CancellationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cancellation, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Cancellation, error)
	Save(ctx context.Context, cancellation *Cancellation) error
}

// CreditNoteRepository defines the persistence port for credit notes
type CreditNoteRepository interface {
	FindByCancellation(ctx context.Context, cancellationID uuid.UUID) (*CreditNote, error)
	Save(ctx context.Context, note *CreditNote) error
}

// RefundRepository defines the persistence port for refunds
type RefundRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Refund, error)
	FindByExternalID(ctx context.Context, externalID string) (*Refund, error)
	FindByCancellation(ctx context.Context, cancellationID uuid.UUID) (*Refund, error)
	Save(ctx context.Context, refund *Refund) error
}
