package identity

import (
	"net/mail"
	"strings"

	"github.com/webconf/checkout/internal/domain/shared"
)

// IdentityDocumentKind is the kind of identity document a customer registered with
type IdentityDocumentKind string

const (
	IdentityDocumentDNI      IdentityDocumentKind = "DNI"
	IdentityDocumentPassport IdentityDocumentKind = "PSP"
)

// IsValid checks if the kind is a valid IdentityDocumentKind
func (k IdentityDocumentKind) IsValid() bool {
	switch k {
	case IdentityDocumentDNI, IdentityDocumentPassport:
		return true
	}
	return false
}

// AFIP document type codes for electronic invoicing
const (
	AFIPDocumentTypeCUIT     = 80
	AFIPDocumentTypePassport = 94
	AFIPDocumentTypeDNI      = 96
)

// The tax authority treats an 11-digit identity document as a CUIT,
// i.e. a company tax id rather than a personal document.
const cuitLength = 11

// Customer is a purchaser identity. Customers authenticate with a signed
// link token embedding their email and identity document, there are no
// passwords.
type Customer struct {
	shared.BaseAggregateRoot
	Email            string               `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName        string               `gorm:"type:varchar(100);not null"`
	LastName         string               `gorm:"type:varchar(100);not null"`
	DocumentKind     IdentityDocumentKind `gorm:"type:varchar(3);not null"`
	IdentityDocument string               `gorm:"type:varchar(50);not null"`
	Company          string               `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(email, firstName, lastName string, documentKind IdentityDocumentKind, identityDocument, company string) (*Customer, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewValidationError("email", "must be a valid email address")
	}
	if firstName == "" {
		return nil, shared.NewValidationError("first-name", "is required")
	}
	if lastName == "" {
		return nil, shared.NewValidationError("last-name", "is required")
	}
	if !documentKind.IsValid() {
		return nil, shared.NewValidationError("identity-document-type", "must be DNI or PSP")
	}
	if identityDocument == "" {
		return nil, shared.NewValidationError("identity-document", "is required")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(email),
		FirstName:         firstName,
		LastName:          lastName,
		DocumentKind:      documentKind,
		IdentityDocument:  identityDocument,
		Company:           company,
	}, nil
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsCompany reports whether the identity document is a CUIT (company tax id)
func (c *Customer) IsCompany() bool {
	return len(c.IdentityDocument) == cuitLength
}

// AFIPDocumentType maps the customer's document to the tax authority's
// numeric document-type code used on invoices
func (c *Customer) AFIPDocumentType() int {
	if c.IsCompany() {
		return AFIPDocumentTypeCUIT
	}
	if c.DocumentKind == IdentityDocumentPassport {
		return AFIPDocumentTypePassport
	}
	return AFIPDocumentTypeDNI
}
