package ordering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	// Preference creation errors
	ErrPreferenceInvalidOrderID = errors.New("preference: invalid order ID")
	ErrPreferenceNoItems        = errors.New("preference: at least one line item is required")
	ErrPreferenceInvalidAmount  = errors.New("preference: invalid line amount")
	ErrPreferenceInvalidBackURL = errors.New("preference: invalid back URL")

	// Query errors
	ErrGatewayResourceNotFound = errors.New("gateway: resource not found")

	// Refund errors
	ErrRefundInvalidPaymentID   = errors.New("refund: invalid payment ID")
	ErrRefundInvalidAmount      = errors.New("refund: invalid refund amount")
	ErrRefundAmountExceedsTotal = errors.New("refund: refund amount exceeds payment total")

	// Gateway errors
	ErrGatewayNotConfigured   = errors.New("gateway: not configured")
	ErrGatewayUnavailable     = errors.New("gateway: temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("gateway: request failed")
	ErrGatewayInvalidResponse = errors.New("gateway: invalid response")
)

// GatewayPaymentStatus represents the status reported by the payment provider
type GatewayPaymentStatus string

const (
	GatewayPaymentStatusPending    GatewayPaymentStatus = "pending"
	GatewayPaymentStatusInProcess  GatewayPaymentStatus = "in_process"
	GatewayPaymentStatusApproved   GatewayPaymentStatus = "approved"
	GatewayPaymentStatusRejected   GatewayPaymentStatus = "rejected"
	GatewayPaymentStatusCancelled  GatewayPaymentStatus = "cancelled"
	GatewayPaymentStatusRefunded   GatewayPaymentStatus = "refunded"
	GatewayPaymentStatusChargeback GatewayPaymentStatus = "charged_back"
)

// IsValid returns true if the status is one the provider can report
func (s GatewayPaymentStatus) IsValid() bool {
	switch s {
	case GatewayPaymentStatusPending, GatewayPaymentStatusInProcess, GatewayPaymentStatusApproved,
		GatewayPaymentStatusRejected, GatewayPaymentStatusCancelled, GatewayPaymentStatusRefunded,
		GatewayPaymentStatusChargeback:
		return true
	default:
		return false
	}
}

// IsApproved returns true if the provider considers the payment collected
func (s GatewayPaymentStatus) IsApproved() bool {
	return s == GatewayPaymentStatusApproved
}

// IsFinal returns true for terminal provider states
func (s GatewayPaymentStatus) IsFinal() bool {
	switch s {
	case GatewayPaymentStatusApproved, GatewayPaymentStatusRejected, GatewayPaymentStatusCancelled,
		GatewayPaymentStatusRefunded, GatewayPaymentStatusChargeback:
		return true
	default:
		return false
	}
}

// String returns the string representation of GatewayPaymentStatus
func (s GatewayPaymentStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Preference Request/Response DTOs
// ---------------------------------------------------------------------------

// PreferenceItem is a single line on a checkout preference
type PreferenceItem struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	Currency  string
}

// CreatePreferenceRequest represents a request to open a hosted checkout
// for an order
type CreatePreferenceRequest struct {
	// OrderID is our internal order ID, sent as external_reference
	OrderID uuid.UUID
	// Items are the purchasable lines shown at checkout
	Items []PreferenceItem
	// PayerEmail pre-fills the payer identity at checkout
	PayerEmail string
	// SuccessURL, FailureURL and PendingURL are the back URLs the
	// provider redirects to after the payment attempt
	SuccessURL string
	FailureURL string
	PendingURL string
	// NotificationURL receives the provider's IPN callbacks
	NotificationURL string
	// ExpiresAt is an optional preference expiry
	ExpiresAt *time.Time
}

// Validate validates the create preference request
func (r *CreatePreferenceRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return ErrPreferenceInvalidOrderID
	}
	if len(r.Items) == 0 {
		return ErrPreferenceNoItems
	}
	for _, item := range r.Items {
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return ErrPreferenceInvalidAmount
		}
	}
	if r.SuccessURL == "" {
		return ErrPreferenceInvalidBackURL
	}
	return nil
}

// CreatePreferenceResponse represents the created checkout preference
type CreatePreferenceResponse struct {
	// PreferenceID is the preference identifier in the provider
	PreferenceID string
	// InitPoint is the URL the buyer is redirected to
	InitPoint string
	// SandboxInitPoint is the test-mode checkout URL
	SandboxInitPoint string
	// RawResponse is the original provider response (JSON)
	RawResponse string
}

// ---------------------------------------------------------------------------
// Query DTOs
// ---------------------------------------------------------------------------

// GatewayPayment is a payment as reported by the provider
type GatewayPayment struct {
	// PaymentID is the payment identifier in the provider
	PaymentID string
	// Status is the provider-side payment status
	Status GatewayPaymentStatus
	// ExternalReference carries our order ID back from the provider
	ExternalReference string
	// TransactionAmount is the amount the payer was charged
	TransactionAmount decimal.Decimal
	// Currency is the payment currency
	Currency string
	// PayerEmail is the payer's account email
	PayerEmail string
	// ApprovedAt is when the provider approved the payment
	ApprovedAt *time.Time
}

// GatewayMerchantOrder groups the payments made against one preference
type GatewayMerchantOrder struct {
	// MerchantOrderID is the merchant order identifier in the provider
	MerchantOrderID string
	// PreferenceID links back to the checkout preference
	PreferenceID string
	// ExternalReference carries our order ID back from the provider
	ExternalReference string
	// PaidAmount is the total collected so far
	PaidAmount decimal.Decimal
	// TotalAmount is the amount due for the order
	TotalAmount decimal.Decimal
	// Payments are the individual payment attempts
	Payments []GatewayPayment
}

// IsFullyPaid returns true once the collected amount covers the order
func (m *GatewayMerchantOrder) IsFullyPaid() bool {
	return m.TotalAmount.GreaterThan(decimal.Zero) &&
		m.PaidAmount.GreaterThanOrEqual(m.TotalAmount)
}

// ---------------------------------------------------------------------------
// Refund DTOs
// ---------------------------------------------------------------------------

// RefundRequest represents a request to refund an approved payment
type RefundRequest struct {
	// PaymentID is the payment identifier in the provider
	PaymentID string
	// Amount is the amount to refund; nil means a full refund
	Amount *decimal.Decimal
}

// Validate validates the refund request
func (r *RefundRequest) Validate() error {
	if r.PaymentID == "" {
		return ErrRefundInvalidPaymentID
	}
	if r.Amount != nil && r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrRefundInvalidAmount
	}
	return nil
}

// RefundResponse represents the provider's answer to a refund request
type RefundResponse struct {
	// RefundID is the refund identifier in the provider
	RefundID string
	// PaymentID is the refunded payment
	PaymentID string
	// Amount is the refunded amount
	Amount decimal.Decimal
	// RawResponse is the original provider response (JSON)
	RawResponse string
}

// ---------------------------------------------------------------------------
// PaymentGateway Port Interface
// ---------------------------------------------------------------------------

// PaymentGateway defines the port interface for the external payment
// provider. The interface lives in the domain layer and the concrete
// HTTP adapter sits in the infrastructure layer.
type PaymentGateway interface {
	// CreatePreference opens a hosted checkout for an order
	CreatePreference(ctx context.Context, req *CreatePreferenceRequest) (*CreatePreferenceResponse, error)

	// GetPayment fetches one payment by its provider ID
	GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)

	// GetMerchantOrder fetches a merchant order and its payments
	GetMerchantOrder(ctx context.Context, merchantOrderID string) (*GatewayMerchantOrder, error)

	// Refund returns money to the payer for an approved payment
	Refund(ctx context.Context, req *RefundRequest) (*RefundResponse, error)
}
