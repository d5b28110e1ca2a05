package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order together with its items and option values
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Options").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByPreferenceID locates the order a provider preference belongs to
func (r *GormOrderRepository) FindByPreferenceID(ctx context.Context, preferenceID string) (*ordering.Order, error) {
	if preferenceID == "" {
		return nil, shared.ErrNotFound
	}
	var order ordering.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Options").
		Where("preference_id = ?", preferenceID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByCustomer returns the customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ordering.Order, error) {
	var orders []*ordering.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Options").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists the order with its items and option values
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(order.Items))
		for i := range order.Items {
			currentItemIDs[i] = order.Items[i].ID
		}

		// Delete items no longer on the order
		itemQuery := tx.Where("order_id = ?", order.ID)
		if len(currentItemIDs) > 0 {
			itemQuery = itemQuery.Where("id NOT IN ?", currentItemIDs)
		}
		if err := itemQuery.Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if err := tx.Omit("Options").Save(item).Error; err != nil {
				return err
			}
			for j := range item.Options {
				item.Options[j].OrderItemID = item.ID
				if err := tx.Save(&item.Options[j]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// UpdateStatusIfCurrent atomically moves an order from one status to
// another. The conditional UPDATE is what lets concurrent webhook
// deliveries race safely: exactly one wins, the rest see false.
func (r *GormOrderRepository) UpdateStatusIfCurrent(ctx context.Context, order *ordering.Order, expected ordering.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&ordering.Order{}).
		Where("id = ? AND status = ?", order.ID, expected).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"external_id":  order.ExternalID,
			"paid_at":      order.PaidAt,
			"cancelled_at": order.CancelledAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GormPaymentRepository implements ordering.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Payment, error) {
	var payment ordering.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByExternalID finds a payment by its provider-side id
func (r *GormPaymentRepository) FindByExternalID(ctx context.Context, externalID string) (*ordering.Payment, error) {
	if externalID == "" {
		return nil, shared.ErrNotFound
	}
	var payment ordering.Payment
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByOrder returns the payment attempts recorded for an order
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*ordering.Payment, error) {
	var payments []*ordering.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save persists the payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ordering.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}
