package identity

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository provides access to customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// FindByCredentials locates a customer by the (email, identity document)
	// pair embedded in link tokens; both comparisons are case-insensitive
	FindByCredentials(ctx context.Context, email, identityDocument string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}
