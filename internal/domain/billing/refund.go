package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
)

// RefundStatus represents the status of a provider-driven refund
type RefundStatus string

const (
	RefundStatusCreated   RefundStatus = "CREATED"
	RefundStatusInProcess RefundStatus = "IN_PROCESS"
	RefundStatusRejected  RefundStatus = "REJECTED"
	RefundStatusApproved  RefundStatus = "APPROVED"
	RefundStatusCancelled RefundStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RefundStatus
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusCreated, RefundStatusInProcess, RefundStatusRejected,
		RefundStatusApproved, RefundStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RefundStatus
func (s RefundStatus) String() string {
	return string(s)
}

// IsOpen reports whether the provider can still resolve the refund
func (s RefundStatus) IsOpen() bool {
	return s == RefundStatusCreated || s == RefundStatusInProcess
}

// Refund tracks money returned to the payer for a cancellation. Its
// status is driven by the payment provider, mirroring the Payment
// aggregate on the forward path.
type Refund struct {
	shared.BaseAggregateRoot
	CancellationID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	// PaymentExternalID is the provider payment the refund is issued against
	PaymentExternalID string `gorm:"type:varchar(100);not null"`
	// ExternalID is the provider-side refund id, recorded when the
	// provider accepts the request
	ExternalID string          `gorm:"type:varchar(100);index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency   string          `gorm:"type:varchar(3);not null"`
	Status     RefundStatus    `gorm:"type:varchar(10);not null;default:'CREATED'"`
	ApprovedAt *time.Time
}

// TableName returns the table name for GORM
func (Refund) TableName() string {
	return "refunds"
}

// NewRefund creates a refund request for a cancellation
func NewRefund(cancellationID, orderID uuid.UUID, paymentExternalID string, amount decimal.Decimal, currency string) (*Refund, error) {
	if cancellationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CANCELLATION", "Cancellation ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if paymentExternalID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment external ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	return &Refund{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CancellationID:    cancellationID,
		OrderID:           orderID,
		PaymentExternalID: paymentExternalID,
		Amount:            amount,
		Currency:          currency,
		Status:            RefundStatusCreated,
	}, nil
}

// MarkInProcess records the provider refund id once the request is accepted
func (r *Refund) MarkInProcess(externalID string) error {
	if r.Status != RefundStatusCreated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move refund to IN_PROCESS from %s", r.Status))
	}
	if externalID == "" {
		return shared.NewDomainError("INVALID_REFUND", "Refund external ID cannot be empty")
	}
	r.Status = RefundStatusInProcess
	r.ExternalID = externalID
	r.UpdatedAt = time.Now()
	return nil
}

// Approve marks the refund settled. Applied at most once, from open
// states only.
func (r *Refund) Approve() error {
	if !r.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve refund in %s status", r.Status))
	}
	now := time.Now()
	r.Status = RefundStatusApproved
	r.ApprovedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewRefundApprovedEvent(r))

	return nil
}

// Reject moves an open refund to REJECTED
func (r *Refund) Reject() error {
	if !r.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject refund in %s status", r.Status))
	}
	r.Status = RefundStatusRejected
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel moves an open refund to CANCELLED
func (r *Refund) Cancel() error {
	if !r.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel refund in %s status", r.Status))
	}
	r.Status = RefundStatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}
