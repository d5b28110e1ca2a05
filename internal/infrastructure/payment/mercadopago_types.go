package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// mpTimeLayout is the timestamp format the provider uses, RFC3339 with
// milliseconds and offset
const mpTimeLayout = "2006-01-02T15:04:05.000-07:00"

type mpPreferenceItem struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

type mpBackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type mpPayer struct {
	Email string `json:"email,omitempty"`
}

type mpPreferenceRequest struct {
	Items             []mpPreferenceItem `json:"items"`
	ExternalReference string             `json:"external_reference"`
	Payer             *mpPayer           `json:"payer,omitempty"`
	BackURLs          *mpBackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string             `json:"auto_return,omitempty"`
	NotificationURL   string             `json:"notification_url,omitempty"`
	Expires           bool               `json:"expires,omitempty"`
	ExpirationDateTo  string             `json:"expiration_date_to,omitempty"`
}

type mpPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type mpPayment struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	DateApproved      string          `json:"date_approved"`
	Payer             *mpPayer        `json:"payer,omitempty"`
}

func (p *mpPayment) approvedAt() *time.Time {
	if p.DateApproved == "" {
		return nil
	}
	t, err := time.Parse(mpTimeLayout, p.DateApproved)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, p.DateApproved); err != nil {
			return nil
		}
	}
	return &t
}

type mpMerchantOrder struct {
	ID                json.Number     `json:"id"`
	PreferenceID      string          `json:"preference_id"`
	ExternalReference string          `json:"external_reference"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Payments          []mpPayment     `json:"payments"`
}

type mpRefundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type mpRefundResponse struct {
	ID        json.Number     `json:"id"`
	PaymentID json.Number     `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type mpErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
