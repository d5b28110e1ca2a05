package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webconf/checkout/internal/domain/catalog"
)

// ItemOptionResponse represents an item option in API responses
type ItemOptionResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	AllowedValues []string  `json:"allowed_values,omitempty"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Kind        string               `json:"kind"`
	Price       decimal.Decimal      `json:"price"`
	Currency    string               `json:"currency"`
	Stock       uint                 `json:"stock"`
	Cancellable bool                 `json:"cancellable"`
	Options     []ItemOptionResponse `json:"options"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToItemResponse converts an Item to its response DTO
func ToItemResponse(item *catalog.Item) ItemResponse {
	options := make([]ItemOptionResponse, len(item.Options))
	for i := range item.Options {
		options[i] = ItemOptionResponse{
			ID:            item.Options[i].ID,
			Name:          item.Options[i].Name,
			Kind:          string(item.Options[i].Kind),
			AllowedValues: item.Options[i].AllowList(),
		}
	}
	price := item.Price().Round(2)
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Kind:        string(item.Kind),
		Price:       price.Amount(),
		Currency:    string(price.Currency()),
		Stock:       item.Stock,
		Cancellable: item.Cancellable,
		Options:     options,
		CreatedAt:   item.CreatedAt,
	}
}

// DiscountCodeResponse represents a discount code in API responses.
// Exactly one of FixedValue/Percentage is set, matching the rule variant.
type DiscountCodeResponse struct {
	ID          uuid.UUID        `json:"id"`
	Code        string           `json:"code"`
	Description string           `json:"description"`
	Scope       string           `json:"scope"`
	FixedValue  *decimal.Decimal `json:"fixed_value,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	ItemIDs     []uuid.UUID      `json:"item_ids,omitempty"`
}

// ToDiscountCodeResponse converts a DiscountCode to its response DTO
func ToDiscountCodeResponse(code *catalog.DiscountCode) DiscountCodeResponse {
	resp := DiscountCodeResponse{
		ID:          code.ID,
		Code:        code.Code,
		Description: code.Description,
		Scope:       string(code.Scope),
	}

	rule := code.Rule()
	switch rule.Kind() {
	case catalog.DiscountRuleFixed:
		amount := rule.FixedValue().Round(2).Amount()
		resp.FixedValue = &amount
		resp.Currency = string(rule.FixedValue().Currency())
	case catalog.DiscountRulePercentage:
		pct := rule.Percentage()
		resp.Percentage = &pct
	}

	for i := range code.ItemIDs {
		resp.ItemIDs = append(resp.ItemIDs, code.ItemIDs[i].ItemID)
	}

	return resp
}
