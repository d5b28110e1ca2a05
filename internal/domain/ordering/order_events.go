package ordering

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeOrder   = "Order"
	AggregateTypePayment = "Payment"
)

// Event type constants
const (
	EventTypeOrderCreated    = "OrderCreated"
	EventTypeOrderInProcess  = "OrderInProcess"
	EventTypeOrderPaid       = "OrderPaid"
	EventTypeOrderCancelled  = "OrderCancelled"
	EventTypePaymentApproved = "PaymentApproved"
)

// OrderItemInfo represents line information carried on order events
type OrderItemInfo struct {
	OrderItemID uuid.UUID       `json:"order_item_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	ItemName    string          `json:"item_name"`
	ItemKind    string          `json:"item_kind"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

func orderItemInfos(order *Order) []OrderItemInfo {
	items := make([]OrderItemInfo, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemInfo{
			OrderItemID: item.ID,
			ItemID:      item.ItemID,
			ItemName:    item.ItemName,
			ItemKind:    string(item.ItemKind),
			UnitPrice:   item.PriceAmount,
			Quantity:    item.Quantity,
		}
	}
	return items
}

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderInProcessEvent is raised when a payment preference has been created
// and the order awaits payment
type OrderInProcessEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	PreferenceID string    `json:"preference_id"`
}

// NewOrderInProcessEvent creates a new OrderInProcessEvent
func NewOrderInProcessEvent(order *Order) *OrderInProcessEvent {
	return &OrderInProcessEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderInProcess, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		PreferenceID:    order.PreferenceID,
	}
}

// EventType returns the event type name
func (e *OrderInProcessEvent) EventType() string {
	return EventTypeOrderInProcess
}

// OrderPaidEvent is raised exactly once per order, when the webhook
// reconciler confirms payment. It triggers invoice generation and the
// pass-email notifications.
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	ExternalID    string          `json:"external_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalCurrency string          `json:"total_currency"`
	Items         []OrderItemInfo `json:"items"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(order *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		ExternalID:      order.ExternalID,
		TotalAmount:     order.TotalAmount,
		TotalCurrency:   order.TotalCurrency,
		Items:           orderItemInfos(order),
	}
}

// EventType returns the event type name
func (e *OrderPaidEvent) EventType() string {
	return EventTypeOrderPaid
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
	WasPaid    bool      `json:"was_paid"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, reason string, wasPaid bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		Reason:          reason,
		WasPaid:         wasPaid,
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}

// PaymentApprovedEvent is raised when a payment is approved by the provider
type PaymentApprovedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID `json:"payment_id"`
	OrderID    uuid.UUID `json:"order_id"`
	ExternalID string    `json:"external_id"`
}

// NewPaymentApprovedEvent creates a new PaymentApprovedEvent
func NewPaymentApprovedEvent(payment *Payment) *PaymentApprovedEvent {
	return &PaymentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApproved, AggregateTypePayment, payment.ID),
		PaymentID:       payment.ID,
		OrderID:         payment.OrderID,
		ExternalID:      payment.ExternalID,
	}
}

// EventType returns the event type name
func (e *PaymentApprovedEvent) EventType() string {
	return EventTypePaymentApproved
}
