package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/shared"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByOrder finds the invoice issued for an order. Each order has at
// most one, the column carries a unique index.
func (r *GormInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindPendingDocuments finds invoices whose document phase has not
// finished: no rendered PDF yet, or rendered but not emailed
func (r *GormInvoiceRepository) FindPendingDocuments(ctx context.Context, limit int) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("document_key = ? OR emailed_at IS NULL", "").
		Order("created_at ASC").
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save persists the invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// GormCancellationRepository implements billing.CancellationRepository using GORM
type GormCancellationRepository struct {
	db *gorm.DB
}

// NewGormCancellationRepository creates a new GormCancellationRepository
func NewGormCancellationRepository(db *gorm.DB) *GormCancellationRepository {
	return &GormCancellationRepository{db: db}
}

// FindByID loads a cancellation with its items
func (r *GormCancellationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Cancellation, error) {
	var cancellation billing.Cancellation
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cancellation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cancellation, nil
}

// FindByOrder finds the cancellation recorded against an order
func (r *GormCancellationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*billing.Cancellation, error) {
	var cancellation billing.Cancellation
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&cancellation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cancellation, nil
}

// Save persists the cancellation with its items
func (r *GormCancellationRepository) Save(ctx context.Context, cancellation *billing.Cancellation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(cancellation).Error; err != nil {
			return err
		}
		for i := range cancellation.Items {
			cancellation.Items[i].CancellationID = cancellation.ID
			if err := tx.Save(&cancellation.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormCreditNoteRepository implements billing.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByCancellation finds the credit note issued for a cancellation
func (r *GormCreditNoteRepository) FindByCancellation(ctx context.Context, cancellationID uuid.UUID) (*billing.CreditNote, error) {
	var note billing.CreditNote
	if err := r.db.WithContext(ctx).
		Where("cancellation_id = ?", cancellationID).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Save persists the credit note
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *billing.CreditNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// GormRefundRepository implements billing.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByID finds a refund by its ID
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Refund, error) {
	var refund billing.Refund
	if err := r.db.WithContext(ctx).First(&refund, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindByExternalID finds a refund by its provider-side id
func (r *GormRefundRepository) FindByExternalID(ctx context.Context, externalID string) (*billing.Refund, error) {
	if externalID == "" {
		return nil, shared.ErrNotFound
	}
	var refund billing.Refund
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindByCancellation finds the refund opened for a cancellation
func (r *GormRefundRepository) FindByCancellation(ctx context.Context, cancellationID uuid.UUID) (*billing.Refund, error) {
	var refund billing.Refund
	if err := r.db.WithContext(ctx).
		Where("cancellation_id = ?", cancellationID).
		First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// Save persists the refund
func (r *GormRefundRepository) Save(ctx context.Context, refund *billing.Refund) error {
	return r.db.WithContext(ctx).Save(refund).Error
}
