package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

// GormDiscountCodeRepository implements catalog.DiscountCodeRepository using GORM
type GormDiscountCodeRepository struct {
	db *gorm.DB
}

// NewGormDiscountCodeRepository creates a new GormDiscountCodeRepository
func NewGormDiscountCodeRepository(db *gorm.DB) *GormDiscountCodeRepository {
	return &GormDiscountCodeRepository{db: db}
}

// FindByID finds a code with its restrictions and item links by ID
func (r *GormDiscountCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.DiscountCode, error) {
	var code catalog.DiscountCode
	if err := r.db.WithContext(ctx).
		Preload("ItemIDs").
		Preload("Restrictions").
		First(&code, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// FindByCode returns every code with the given code string. Codes are
// not unique, callers disambiguate by id.
func (r *GormDiscountCodeRepository) FindByCode(ctx context.Context, code string) ([]catalog.DiscountCode, error) {
	var codes []catalog.DiscountCode
	if err := r.db.WithContext(ctx).
		Preload("ItemIDs").
		Preload("Restrictions").
		Where("code = ?", code).
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// CountRedemptions counts non-cancelled orders that redeemed the code
func (r *GormDiscountCodeRepository) CountRedemptions(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ordering.Order{}).
		Where("discount_code_id = ? AND status <> ?", id, ordering.OrderStatusCancelled).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the code with its restrictions and item links
func (r *GormDiscountCodeRepository) Save(ctx context.Context, code *catalog.DiscountCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ItemIDs", "Restrictions").Save(code).Error; err != nil {
			return err
		}
		for i := range code.ItemIDs {
			code.ItemIDs[i].DiscountCodeID = code.ID
			if err := tx.Save(&code.ItemIDs[i]).Error; err != nil {
				return err
			}
		}
		for i := range code.Restrictions {
			code.Restrictions[i].DiscountCodeID = code.ID
			if err := tx.Save(&code.Restrictions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
