// Package payment holds the HTTP adapter for the MercadoPago checkout
// API, implementing the ordering.PaymentGateway port.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/infrastructure/config"
)

// MercadoPagoAdapter implements ordering.PaymentGateway against the
// MercadoPago REST API
type MercadoPagoAdapter struct {
	config     config.MercadoPagoConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMercadoPagoAdapter creates the adapter; the access token is
// mandatory, everything else has sane defaults
func NewMercadoPagoAdapter(cfg config.MercadoPagoConfig, logger *zap.Logger) (*MercadoPagoAdapter, error) {
	if cfg.AccessToken == "" {
		return nil, ordering.ErrGatewayNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mercadopago.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MercadoPagoAdapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// CreatePreference opens a hosted checkout for an order
func (a *MercadoPagoAdapter) CreatePreference(ctx context.Context, req *ordering.CreatePreferenceRequest) (*ordering.CreatePreferenceResponse, error) {
	if req.SuccessURL == "" {
		req.SuccessURL = a.config.SuccessURL
	}
	if req.FailureURL == "" {
		req.FailureURL = a.config.FailureURL
	}
	if req.PendingURL == "" {
		req.PendingURL = a.config.PendingURL
	}
	if req.NotificationURL == "" {
		req.NotificationURL = a.config.NotificationURL
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := mpPreferenceRequest{
		ExternalReference: req.OrderID.String(),
		BackURLs: &mpBackURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn:      "approved",
		NotificationURL: req.NotificationURL,
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, mpPreferenceItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: item.Currency,
		})
	}
	if req.PayerEmail != "" {
		body.Payer = &mpPayer{Email: req.PayerEmail}
	}
	if req.ExpiresAt != nil {
		body.Expires = true
		body.ExpirationDateTo = req.ExpiresAt.Format(mpTimeLayout)
	}

	raw, err := a.do(ctx, http.MethodPost, "/checkout/preferences", body)
	if err != nil {
		return nil, err
	}

	var resp mpPreferenceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayInvalidResponse, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: preference id missing", ordering.ErrGatewayInvalidResponse)
	}

	a.logger.Info("checkout preference created",
		zap.String("preference_id", resp.ID),
		zap.String("order_id", req.OrderID.String()))

	return &ordering.CreatePreferenceResponse{
		PreferenceID:     resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
		RawResponse:      string(raw),
	}, nil
}

// GetPayment fetches one payment by its provider ID
func (a *MercadoPagoAdapter) GetPayment(ctx context.Context, paymentID string) (*ordering.GatewayPayment, error) {
	raw, err := a.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}

	var resp mpPayment
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayInvalidResponse, err)
	}
	return mapPayment(&resp), nil
}

// GetMerchantOrder fetches a merchant order and its payments
func (a *MercadoPagoAdapter) GetMerchantOrder(ctx context.Context, merchantOrderID string) (*ordering.GatewayMerchantOrder, error) {
	raw, err := a.do(ctx, http.MethodGet, "/merchant_orders/"+merchantOrderID, nil)
	if err != nil {
		return nil, err
	}

	var resp mpMerchantOrder
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayInvalidResponse, err)
	}

	order := &ordering.GatewayMerchantOrder{
		MerchantOrderID:   resp.ID.String(),
		PreferenceID:      resp.PreferenceID,
		ExternalReference: resp.ExternalReference,
		PaidAmount:        resp.PaidAmount,
		TotalAmount:       resp.TotalAmount,
	}
	for i := range resp.Payments {
		order.Payments = append(order.Payments, *mapPayment(&resp.Payments[i]))
	}
	return order, nil
}

// Refund returns money to the payer for an approved payment
func (a *MercadoPagoAdapter) Refund(ctx context.Context, req *ordering.RefundRequest) (*ordering.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var body interface{}
	if req.Amount != nil {
		body = mpRefundRequest{Amount: req.Amount}
	}

	raw, err := a.do(ctx, http.MethodPost, "/v1/payments/"+req.PaymentID+"/refunds", body)
	if err != nil {
		return nil, err
	}

	var resp mpRefundResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayInvalidResponse, err)
	}

	a.logger.Info("payment refunded",
		zap.String("payment_id", req.PaymentID),
		zap.String("refund_id", resp.ID.String()))

	return &ordering.RefundResponse{
		RefundID:    resp.ID.String(),
		PaymentID:   resp.PaymentID.String(),
		Amount:      resp.Amount,
		RawResponse: string(raw),
	}, nil
}

// do executes one API call and maps transport and status failures onto
// the gateway error taxonomy
func (a *MercadoPagoAdapter) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("X-Idempotency-Key", uuid.New().String())
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ordering.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ordering.ErrGatewayResourceNotFound, method, path)
	case resp.StatusCode >= 500:
		a.logger.Warn("provider server error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ordering.ErrGatewayUnavailable, resp.StatusCode)
	default:
		var apiErr mpErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		a.logger.Warn("provider rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return nil, fmt.Errorf("%w: status %d: %s", ordering.ErrGatewayRequestFailed, resp.StatusCode, msg)
	}
}

func mapPayment(p *mpPayment) *ordering.GatewayPayment {
	payment := &ordering.GatewayPayment{
		PaymentID:         p.ID.String(),
		Status:            ordering.GatewayPaymentStatus(p.Status),
		ExternalReference: p.ExternalReference,
		TransactionAmount: p.TransactionAmount,
		Currency:          p.CurrencyID,
		ApprovedAt:        p.approvedAt(),
	}
	if p.Payer != nil {
		payment.PayerEmail = p.Payer.Email
	}
	return payment
}
