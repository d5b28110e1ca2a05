package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/webconf/checkout/internal/domain/identity"
)

// RegisterCustomerRequest represents a request to register a customer
type RegisterCustomerRequest struct {
	Email            string `json:"email" binding:"required,email"`
	FirstName        string `json:"first_name" binding:"required,min=1,max=100"`
	LastName         string `json:"last_name" binding:"required,min=1,max=100"`
	DocumentKind     string `json:"identity_document_type" binding:"required,oneof=DNI PSP"`
	IdentityDocument string `json:"identity_document" binding:"required,min=6,max=11"`
	Company          string `json:"company"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	DocumentKind     string    `json:"identity_document_type"`
	IdentityDocument string    `json:"identity_document"`
	Company          string    `json:"company,omitempty"`
	IsCompany        bool      `json:"is_company"`
	CreatedAt        time.Time `json:"created_at"`
}

// RegisterCustomerResponse is the registration result: the customer plus
// the signed link token for passwordless access
type RegisterCustomerResponse struct {
	Customer CustomerResponse `json:"customer"`
	Token    string           `json:"token"`
}

// ToCustomerResponse converts a Customer to its response DTO
func ToCustomerResponse(customer *identity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               customer.ID,
		Email:            customer.Email,
		FirstName:        customer.FirstName,
		LastName:         customer.LastName,
		DocumentKind:     string(customer.DocumentKind),
		IdentityDocument: customer.IdentityDocument,
		Company:          customer.Company,
		IsCompany:        customer.IsCompany(),
		CreatedAt:        customer.CreatedAt,
	}
}
