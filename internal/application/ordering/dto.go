package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webconf/checkout/internal/domain/ordering"
)

// CreateOrderItemOptionInput supplies the value for one required item option
type CreateOrderItemOptionInput struct {
	ItemOptionID uuid.UUID `json:"item_option_id" binding:"required"`
	Value        string    `json:"value" binding:"required"`
}

// CreateOrderItemInput selects a catalog item for the order
type CreateOrderItemInput struct {
	ItemID   uuid.UUID                    `json:"item_id" binding:"required"`
	Quantity int                          `json:"quantity" binding:"required,min=1"`
	Options  []CreateOrderItemOptionInput `json:"options"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Items          []CreateOrderItemInput `json:"items"`
	DiscountCodeID *uuid.UUID             `json:"discount_code_id"`
	Notes          string                 `json:"notes" binding:"max=1000"`
}

// OrderItemOptionResponse represents a supplied option value
type OrderItemOptionResponse struct {
	ItemOptionID uuid.UUID `json:"item_option_id"`
	Name         string    `json:"name"`
	Value        string    `json:"value"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID                 `json:"id"`
	ItemID    uuid.UUID                 `json:"item_id"`
	ItemName  string                    `json:"item_name"`
	ItemKind  string                    `json:"item_kind"`
	UnitPrice decimal.Decimal           `json:"unit_price"`
	Currency  string                    `json:"currency"`
	Quantity  int                       `json:"quantity"`
	Options   []OrderItemOptionResponse `json:"options,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	CustomerID   uuid.UUID           `json:"customer_id"`
	Status       string              `json:"status"`
	Total        decimal.Decimal     `json:"total"`
	Currency     string              `json:"currency"`
	Notes        string              `json:"notes,omitempty"`
	Items        []OrderItemResponse `json:"items"`
	PreferenceID string              `json:"preference_id,omitempty"`
	// CheckoutURL is the provider-hosted page the customer pays on; set
	// only on creation responses
	CheckoutURL string     `json:"checkout_url,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToOrderResponse converts an Order to its response DTO
func ToOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		line := &order.Items[i]
		item := OrderItemResponse{
			ID:        line.ID,
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			ItemKind:  string(line.ItemKind),
			UnitPrice: line.Price().Round(2).Amount(),
			Currency:  line.PriceCurrency,
			Quantity:  line.Quantity,
		}
		for j := range line.Options {
			item.Options = append(item.Options, OrderItemOptionResponse{
				ItemOptionID: line.Options[j].ItemOptionID,
				Name:         line.Options[j].Name,
				Value:        line.Options[j].Value,
			})
		}
		items[i] = item
	}

	total := order.Total().Round(2)
	return OrderResponse{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		Status:       string(order.Status),
		Total:        total.Amount(),
		Currency:     string(total.Currency()),
		Notes:        order.Notes,
		Items:        items,
		PreferenceID: order.PreferenceID,
		PaidAt:       order.PaidAt,
		CreatedAt:    order.CreatedAt,
	}
}
