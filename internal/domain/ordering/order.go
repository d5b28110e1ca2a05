package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/domain/shared/valueobject"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusInProcess OrderStatus = "IN_PROCESS"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusInProcess, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are monotonic forward; CANCELLED is reachable from any
// non-terminal state, and PAID is reachable only from IN_PROCESS.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return target == OrderStatusInProcess || target == OrderStatusCancelled
	case OrderStatusInProcess:
		return target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusCancelled
	case OrderStatusCancelled:
		return false
	}
	return false
}

// OrderItemOption is a customer-supplied value for one of the catalog
// item's required options (e.g. the attendee email for a pass).
// Unique per (order item, item option).
type OrderItemOption struct {
	shared.BaseEntity
	OrderItemID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_item_option,priority:1"`
	ItemOptionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_item_option,priority:2"`
	Name         string    `gorm:"type:varchar(50);not null"`
	Value        string    `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (OrderItemOption) TableName() string {
	return "order_item_options"
}

// OrderItem is a line in an order. The price is snapshotted from the
// catalog item at creation and never re-read, so later price changes
// cannot alter an existing order's total.
type OrderItem struct {
	shared.BaseEntity
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemName      string            `gorm:"type:varchar(200);not null"`
	ItemKind      catalog.ItemKind  `gorm:"type:varchar(10);not null"`
	Cancellable   bool              `gorm:"not null;default:true"`
	PriceAmount   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	PriceCurrency string            `gorm:"type:varchar(3);not null"`
	Quantity      int               `gorm:"not null;default:1"`
	Fulfilled     bool              `gorm:"not null;default:false"`
	Options       []OrderItemOption `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Price returns the snapshotted unit price as Money
func (i *OrderItem) Price() valueobject.Money {
	m, _ := valueobject.NewMoney(i.PriceAmount, valueobject.Currency(i.PriceCurrency))
	return m
}

// BaseTotal returns price x quantity for the line
func (i *OrderItem) BaseTotal() valueobject.Money {
	return i.Price().MultiplyByInt(int64(i.Quantity))
}

// OptionValue returns the supplied value for an item option, or "" if absent
func (i *OrderItem) OptionValue(itemOptionID uuid.UUID) string {
	for idx := range i.Options {
		if i.Options[idx].ItemOptionID == itemOptionID {
			return i.Options[idx].Value
		}
	}
	return ""
}

// OptionValueByName returns the supplied value for a named option, or ""
func (i *OrderItem) OptionValueByName(name string) string {
	for idx := range i.Options {
		if i.Options[idx].Name == name {
			return i.Options[idx].Value
		}
	}
	return ""
}

// Order is the checkout aggregate root. It owns its line items and drives
// the CREATED -> IN_PROCESS -> PAID / CANCELLED lifecycle. Only the webhook
// reconciler marks an order PAID; the creation flow owns CREATED and
// IN_PROCESS.
type Order struct {
	shared.BaseAggregateRoot
	CustomerID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	DiscountCodeID *uuid.UUID  `gorm:"type:uuid;index"`
	Notes          string      `gorm:"type:text"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	// PreferenceID is the provider checkout session created for this order
	PreferenceID string `gorm:"type:varchar(100);index"`
	// ExternalID is the provider-side id recorded when payment completes
	ExternalID    string          `gorm:"type:varchar(100);index"`
	Status        OrderStatus     `gorm:"type:varchar(10);not null;default:'CREATED'"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCurrency string          `gorm:"type:varchar(3);not null;default:'ARS'"`
	PaidAt        *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in CREATED status
func NewOrder(customerID uuid.UUID, discountCodeID *uuid.UUID, notes string) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		DiscountCodeID:    discountCodeID,
		Notes:             notes,
		Items:             make([]OrderItem, 0),
		Status:            OrderStatusCreated,
		TotalAmount:       decimal.Zero,
		TotalCurrency:     string(valueobject.DefaultCurrency),
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a line for a catalog item, snapshotting its price and name.
// Option values are matched against the item's required options: every
// option must be supplied exactly once and pass its kind/allow-list check.
// Only allowed in CREATED status.
func (o *Order) AddItem(item *catalog.Item, quantity int, optionValues map[uuid.UUID]string) (*OrderItem, error) {
	if o.Status != OrderStatusCreated {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to an order past creation")
	}
	if item == nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item cannot be nil")
	}
	if quantity < 1 {
		return nil, shared.NewValidationError("order-items", "quantity must be at least 1")
	}

	orderItem := OrderItem{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       o.ID,
		ItemID:        item.ID,
		ItemName:      item.Name,
		ItemKind:      item.Kind,
		Cancellable:   item.Cancellable,
		PriceAmount:   item.Price().Amount(),
		PriceCurrency: string(item.Price().Currency()),
		Quantity:      quantity,
	}

	for optionID, value := range optionValues {
		option := item.OptionByID(optionID)
		if option == nil {
			return nil, shared.NewValidationError("order-items", "unknown option for item "+item.Name)
		}
		if orderItem.OptionValue(optionID) != "" {
			return nil, shared.NewValidationError(option.Name, "option supplied more than once")
		}
		if err := option.ValidateValue(value); err != nil {
			return nil, err
		}
		orderItem.Options = append(orderItem.Options, OrderItemOption{
			BaseEntity:   shared.NewBaseEntity(),
			OrderItemID:  orderItem.ID,
			ItemOptionID: optionID,
			Name:         option.Name,
			Value:        value,
		})
	}

	// Completeness: every option the item declares must have a value
	for idx := range item.Options {
		if orderItem.OptionValue(item.Options[idx].ID) == "" {
			return nil, shared.NewValidationError(item.Options[idx].Name, "option value is required")
		}
	}

	o.Items = append(o.Items, orderItem)
	o.UpdatedAt = time.Now()

	return &o.Items[len(o.Items)-1], nil
}

// MarkInProcess records the provider preference and moves the order to
// IN_PROCESS. Called by the creation flow after the checkout preference
// is created with the payment provider.
func (o *Order) MarkInProcess(preferenceID string) error {
	if !o.Status.CanTransitionTo(OrderStatusInProcess) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order to IN_PROCESS from %s", o.Status))
	}
	if preferenceID == "" {
		return shared.NewDomainError("INVALID_PREFERENCE", "Preference ID cannot be empty")
	}

	o.Status = OrderStatusInProcess
	o.PreferenceID = preferenceID
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderInProcessEvent(o))

	return nil
}

// MarkPaid records the provider payment reference and moves the order to
// PAID. The guard (current status must be IN_PROCESS) makes a duplicate
// webhook delivery a no-op at the aggregate level; the repository's
// compare-and-swap persist makes it a no-op under concurrency too.
func (o *Order) MarkPaid(externalID string) error {
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark order paid from %s", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusPaid
	o.ExternalID = externalID
	o.PaidAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// Cancel moves the order to CANCELLED. Allowed from any non-terminal state;
// cancelling a PAID order is the administrative entry into the refund flow.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasPaid := o.Status == OrderStatusPaid
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason, wasPaid))

	return nil
}

// Total returns the stored total as Money
func (o *Order) Total() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalAmount, valueobject.Currency(o.TotalCurrency))
	return m
}

// ItemCount returns the number of lines in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// HasPass reports whether any line references a PASS item
func (o *Order) HasPass() bool {
	for idx := range o.Items {
		if o.Items[idx].ItemKind == catalog.ItemKindPass {
			return true
		}
	}
	return false
}

// PassItems returns the lines referencing PASS items
func (o *Order) PassItems() []OrderItem {
	var passes []OrderItem
	for idx := range o.Items {
		if o.Items[idx].ItemKind == catalog.ItemKindPass {
			passes = append(passes, o.Items[idx])
		}
	}
	return passes
}

// IsPaid returns true if the order is paid
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}
