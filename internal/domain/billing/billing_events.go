package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInvoice      = "Invoice"
	AggregateTypeCancellation = "Cancellation"
	AggregateTypeRefund       = "Refund"
)

// Event type constants
const (
	EventTypeInvoiceIssued         = "InvoiceIssued"
	EventTypeCancellationRequested = "CancellationRequested"
	EventTypeRefundApproved        = "RefundApproved"
)

// InvoiceIssuedEvent is raised when the tax authority authorizes an invoice
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Number    int64     `json:"number"`
	CAE       string    `json:"cae"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		OrderID:         invoice.OrderID,
		Number:          invoice.Number,
		CAE:             invoice.CAE,
	}
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return EventTypeInvoiceIssued
}

// CancellationRequestedEvent is raised when a cancellation is opened
type CancellationRequestedEvent struct {
	shared.BaseDomainEvent
	CancellationID uuid.UUID       `json:"cancellation_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	Reason         string          `json:"reason"`
	Total          decimal.Decimal `json:"total"`
}

// NewCancellationRequestedEvent creates a new CancellationRequestedEvent
func NewCancellationRequestedEvent(cancellation *Cancellation) *CancellationRequestedEvent {
	return &CancellationRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCancellationRequested, AggregateTypeCancellation, cancellation.ID),
		CancellationID:  cancellation.ID,
		OrderID:         cancellation.OrderID,
		Reason:          cancellation.Reason,
		Total:           cancellation.Total(),
	}
}

// EventType returns the event type name
func (e *CancellationRequestedEvent) EventType() string {
	return EventTypeCancellationRequested
}

// RefundApprovedEvent is raised when the provider settles a refund
type RefundApprovedEvent struct {
	shared.BaseDomainEvent
	RefundID       uuid.UUID       `json:"refund_id"`
	CancellationID uuid.UUID       `json:"cancellation_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

// NewRefundApprovedEvent creates a new RefundApprovedEvent
func NewRefundApprovedEvent(refund *Refund) *RefundApprovedEvent {
	return &RefundApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundApproved, AggregateTypeRefund, refund.ID),
		RefundID:        refund.ID,
		CancellationID:  refund.CancellationID,
		OrderID:         refund.OrderID,
		Amount:          refund.Amount,
		Currency:        refund.Currency,
	}
}

// EventType returns the event type name
func (e *RefundApprovedEvent) EventType() string {
	return EventTypeRefundApproved
}
