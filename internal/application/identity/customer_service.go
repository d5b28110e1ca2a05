package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/infrastructure/auth"
)

// CustomerService handles customer registration and link-token issuance
type CustomerService struct {
	customerRepo identity.CustomerRepository
	tokenService *auth.CustomerTokenService
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo identity.CustomerRepository, tokenService *auth.CustomerTokenService, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register creates a customer and returns it with a signed link token.
// Registering an email that already exists with the same identity document
// re-issues the token instead of failing, so a lost link can be recovered
// by registering again.
func (s *CustomerService) Register(ctx context.Context, req RegisterCustomerRequest) (*RegisterCustomerResponse, error) {
	existing, err := s.customerRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var customer *identity.Customer
	if existing != nil {
		if existing.IdentityDocument != req.IdentityDocument {
			return nil, shared.NewValidationError("email", "email is already registered")
		}
		customer = existing
	} else {
		customer, err = identity.NewCustomer(
			req.Email,
			req.FirstName,
			req.LastName,
			identity.IdentityDocumentKind(req.DocumentKind),
			req.IdentityDocument,
			req.Company,
		)
		if err != nil {
			return nil, err
		}
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return nil, err
		}
		s.logger.Info("customer registered",
			zap.String("customer_id", customer.ID.String()),
			zap.String("email", customer.Email),
		)
	}

	token, err := s.tokenService.GenerateToken(customer.Email, customer.IdentityDocument)
	if err != nil {
		return nil, err
	}

	return &RegisterCustomerResponse{
		Customer: ToCustomerResponse(customer),
		Token:    token,
	}, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// Authenticate resolves a link token back to its customer. The token
// embeds (email, identity document); both must still match a stored
// customer for the token to be accepted.
func (s *CustomerService) Authenticate(ctx context.Context, token string) (*identity.Customer, error) {
	claims, err := s.tokenService.ValidateToken(token)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	customer, err := s.customerRepo.FindByCredentials(ctx, claims.Email, claims.IdentityDocument)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	return customer, nil
}
