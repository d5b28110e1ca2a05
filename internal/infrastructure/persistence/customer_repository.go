package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/shared"
)

// GormCustomerRepository implements identity.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Customer, error) {
	var customer identity.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByCredentials locates a customer by the (email, identity document)
// pair embedded in link tokens. Both comparisons are case-insensitive.
func (r *GormCustomerRepository) FindByCredentials(ctx context.Context, email, identityDocument string) (*identity.Customer, error) {
	var customer identity.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND LOWER(identity_document) = ?",
			strings.ToLower(email), strings.ToLower(identityDocument)).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmail finds a customer by email, case-insensitive
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var customer identity.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Save persists the customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *identity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}
