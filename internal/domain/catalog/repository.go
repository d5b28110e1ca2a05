package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/webconf/checkout/internal/domain/shared"
)

// ItemRepository provides access to catalog items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, error)
	Save(ctx context.Context, item *Item) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// DiscountCodeRepository provides access to discount codes
type DiscountCodeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DiscountCode, error)
	// FindByCode returns all codes matching the code string; codes are not
	// guaranteed unique, callers disambiguate by id
	FindByCode(ctx context.Context, code string) ([]DiscountCode, error)
	// CountRedemptions counts non-cancelled orders that redeemed the code
	CountRedemptions(ctx context.Context, id uuid.UUID) (int64, error)
	Save(ctx context.Context, code *DiscountCode) error
}
