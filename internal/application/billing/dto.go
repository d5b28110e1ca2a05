package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webconf/checkout/internal/domain/billing"
)

// CancelOrderRequest asks for a (possibly partial) order cancellation.
// An empty item selection cancels every cancellable line.
type CancelOrderRequest struct {
	Reason       string      `json:"reason" binding:"required,max=1000"`
	OrderItemIDs []uuid.UUID `json:"order_item_ids"`
}

// CancelledItemResponse is one reversed order line
type CancelledItemResponse struct {
	OrderItemID uuid.UUID       `json:"order_item_id"`
	ItemName    string          `json:"item_name"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

// CancellationResponse represents a cancellation in API responses
type CancellationResponse struct {
	ID          uuid.UUID               `json:"id"`
	OrderID     uuid.UUID               `json:"order_id"`
	Reason      string                  `json:"reason"`
	Status      string                  `json:"status"`
	Total       decimal.Decimal         `json:"total"`
	Items       []CancelledItemResponse `json:"items"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// InvoiceResponse represents an issued invoice in API responses
type InvoiceResponse struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Number    string          `json:"number"`
	CAE       string          `json:"cae"`
	CAEExpiry time.Time       `json:"cae_expiry"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	IssuedAt  time.Time       `json:"issued_at"`
	Emailed   bool            `json:"emailed"`
}

// ToCancellationResponse converts a cancellation to its API representation
func ToCancellationResponse(c *billing.Cancellation) CancellationResponse {
	items := make([]CancelledItemResponse, 0, len(c.Items))
	for idx := range c.Items {
		item := &c.Items[idx]
		items = append(items, CancelledItemResponse{
			OrderItemID: item.OrderItemID,
			ItemName:    item.ItemName,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
			Currency:    item.Currency,
		})
	}
	return CancellationResponse{
		ID:          c.ID,
		OrderID:     c.OrderID,
		Reason:      c.Reason,
		Status:      c.Status.String(),
		Total:       c.Total(),
		Items:       items,
		CompletedAt: c.CompletedAt,
		CreatedAt:   c.CreatedAt,
	}
}

// ToInvoiceResponse converts an invoice to its API representation
func ToInvoiceResponse(i *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:        i.ID,
		OrderID:   i.OrderID,
		Number:    i.FormattedNumber(),
		CAE:       i.CAE,
		CAEExpiry: i.CAEExpiry,
		Total:     i.TotalAmount,
		Currency:  i.TotalCurrency,
		IssuedAt:  i.CreatedAt,
		Emailed:   i.EmailedAt != nil,
	}
}
