package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/webconf/checkout/internal/domain/shared"
)

// PaymentStatus represents the status of a payment attempt
type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "CREATED"
	PaymentStatusInProcess PaymentStatus = "IN_PROCESS"
	PaymentStatusRejected  PaymentStatus = "REJECTED"
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusCreated, PaymentStatusInProcess, PaymentStatusRejected,
		PaymentStatusApproved, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsOpen reports whether the payment can still be resolved by the provider
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentStatusCreated || s == PaymentStatusInProcess
}

// Payment tracks a provider payment attempt against an order. Its status
// is driven exclusively by webhook reconciliation; approval is applied at
// most once.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	ExternalID string        `gorm:"type:varchar(100);index"`
	Status     PaymentStatus `gorm:"type:varchar(10);not null;default:'CREATED'"`
	ApprovedAt *time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment attempt for an order
func NewPayment(orderID uuid.UUID) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Status:            PaymentStatusCreated,
	}, nil
}

// MarkInProcess moves the payment to IN_PROCESS
func (p *Payment) MarkInProcess() error {
	if p.Status != PaymentStatusCreated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move payment to IN_PROCESS from %s", p.Status))
	}
	p.Status = PaymentStatusInProcess
	p.UpdatedAt = time.Now()
	return nil
}

// Approve records the provider payment id and moves the payment to
// APPROVED. Only open payments (CREATED or IN_PROCESS) can be approved,
// which makes duplicate webhook delivery a no-op.
func (p *Payment) Approve(externalID string) error {
	if !p.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusApproved
	p.ExternalID = externalID
	p.ApprovedAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentApprovedEvent(p))

	return nil
}

// Reject moves an open payment to REJECTED
func (p *Payment) Reject(externalID string) error {
	if !p.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}
	p.Status = PaymentStatusRejected
	p.ExternalID = externalID
	p.UpdatedAt = time.Now()
	return nil
}

// Cancel moves an open payment to CANCELLED
func (p *Payment) Cancel() error {
	if !p.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payment in %s status", p.Status))
	}
	p.Status = PaymentStatusCancelled
	p.UpdatedAt = time.Now()
	return nil
}
