package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the persistence port for orders
type OrderRepository interface {
	// FindByID loads an order together with its items and option values
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByPreferenceID locates the order a provider preference belongs to
	FindByPreferenceID(ctx context.Context, preferenceID string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
	// UpdateStatusIfCurrent atomically moves an order from one status to
	// another. It returns false when the stored status no longer matches
	// the expected one, which is how concurrent webhook deliveries lose
	// the race without double-applying.
	UpdateStatusIfCurrent(ctx context.Context, order *Order, expected OrderStatus) (bool, error)
}

// PaymentRepository defines the persistence port for payment records
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*Payment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}
