package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

// CancellationStatus represents the status of a cancellation
type CancellationStatus string

const (
	CancellationStatusRequested CancellationStatus = "REQUESTED"
	CancellationStatusCompleted CancellationStatus = "COMPLETED"
)

// IsValid checks if the status is a valid CancellationStatus
func (s CancellationStatus) IsValid() bool {
	switch s {
	case CancellationStatusRequested, CancellationStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of CancellationStatus
func (s CancellationStatus) String() string {
	return string(s)
}

// CancellationItem is a cancelled order line, with the amount being
// reversed snapshotted from the line at cancellation time
type CancellationItem struct {
	shared.BaseEntity
	CancellationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ItemName       string          `gorm:"type:varchar(200);not null"`
	Quantity       int             `gorm:"not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (CancellationItem) TableName() string {
	return "cancellation_items"
}

// Cancellation is the reversal-path mirror of an order: one-to-one with
// the order, covering a subset of its cancellable lines. Completing a
// cancellation issues the refund and the credit note.
type Cancellation struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	Reason      string             `gorm:"type:text;not null"`
	Status      CancellationStatus `gorm:"type:varchar(10);not null;default:'REQUESTED'"`
	Items       []CancellationItem `gorm:"foreignKey:CancellationID;constraint:OnDelete:CASCADE"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (Cancellation) TableName() string {
	return "cancellations"
}

// NewCancellation builds a cancellation for a subset of an order's lines.
// Every requested line must belong to the order and reference a
// cancellable catalog item; an empty selection cancels every cancellable
// line.
func NewCancellation(order *ordering.Order, reason string, orderItemIDs []uuid.UUID) (*Cancellation, error) {
	if order == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order cannot be nil")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}

	selected := make(map[uuid.UUID]bool, len(orderItemIDs))
	for _, id := range orderItemIDs {
		selected[id] = true
	}

	cancellation := &Cancellation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           order.ID,
		Reason:            reason,
		Status:            CancellationStatusRequested,
	}

	for idx := range order.Items {
		line := &order.Items[idx]
		if len(orderItemIDs) > 0 && !selected[line.ID] {
			continue
		}
		if !line.Cancellable {
			if len(orderItemIDs) == 0 {
				continue
			}
			return nil, shared.NewDomainError("NOT_CANCELLABLE", "Item "+line.ItemName+" cannot be cancelled")
		}
		cancellation.Items = append(cancellation.Items, CancellationItem{
			BaseEntity:     shared.NewBaseEntity(),
			CancellationID: cancellation.ID,
			OrderItemID:    line.ID,
			ItemName:       line.ItemName,
			Quantity:       line.Quantity,
			Amount:         line.BaseTotal().Amount(),
			Currency:       string(line.BaseTotal().Currency()),
		})
	}

	if len(cancellation.Items) == 0 {
		return nil, shared.NewDomainError("NOT_CANCELLABLE", "No cancellable items in the order")
	}

	cancellation.AddDomainEvent(NewCancellationRequestedEvent(cancellation))

	return cancellation, nil
}

// Total returns the amount covered by this cancellation
func (c *Cancellation) Total() decimal.Decimal {
	total := decimal.Zero
	for idx := range c.Items {
		total = total.Add(c.Items[idx].Amount)
	}
	return total
}

// Complete marks the cancellation done, once the refund has been
// requested and the credit note issued
func (c *Cancellation) Complete() error {
	if c.Status != CancellationStatusRequested {
		return shared.NewDomainError("INVALID_STATE", "Cancellation is already completed")
	}
	now := time.Now()
	c.Status = CancellationStatusCompleted
	c.CompletedAt = &now
	c.UpdatedAt = now
	return nil
}
