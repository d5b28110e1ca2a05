package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

// NotificationTopic identifies the provider notification family
type NotificationTopic string

const (
	TopicMerchantOrder NotificationTopic = "merchant_order"
	TopicPayment       NotificationTopic = "payment"
)

// Disposition is the internal outcome of a notification. The HTTP handler
// answers 200 regardless; the disposition exists for logging and tests.
type Disposition string

const (
	// DispositionProcessed means a state transition was applied
	DispositionProcessed Disposition = "PROCESSED"
	// DispositionSkipped covers replays, unknown topics and not-yet-paid
	// intermediate states: a deliberate no-op
	DispositionSkipped Disposition = "SKIPPED"
	// DispositionAnomaly means the notification references state we
	// cannot resolve; retrying will not help
	DispositionAnomaly Disposition = "ANOMALY"
	// DispositionError means a retryable failure before any local write
	DispositionError Disposition = "ERROR"
)

// IPNService reconciles provider webhook notifications against local
// order and payment state. Exactly-once application of the PAID
// transition rests on three layers: the aggregate status guard, the
// repository compare-and-swap, and the notification dedup ledger.
type IPNService struct {
	orderRepo      ordering.OrderRepository
	paymentRepo    ordering.PaymentRepository
	gateway        ordering.PaymentGateway
	dedup          shared.IdempotencyStore
	dedupConfig    shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewIPNService creates a new IPNService
func NewIPNService(
	orderRepo ordering.OrderRepository,
	paymentRepo ordering.PaymentRepository,
	gateway ordering.PaymentGateway,
	dedup shared.IdempotencyStore,
	dedupConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *IPNService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPNService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		dedup:       dedup,
		dedupConfig: dedupConfig,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *IPNService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// HandleNotification processes one provider notification. Topic and id
// arrive already normalized by the HTTP handler (`type`->topic,
// `data.id`->id). Errors are returned for logging only; the caller
// answers 200 to the provider in every case.
func (s *IPNService) HandleNotification(ctx context.Context, topic, externalID string) (Disposition, error) {
	if externalID == "" {
		return DispositionSkipped, nil
	}

	switch NotificationTopic(topic) {
	case TopicMerchantOrder:
		return s.handleMerchantOrder(ctx, externalID)
	case TopicPayment:
		return s.handlePayment(ctx, externalID)
	default:
		s.logger.Debug("ignoring unrecognized notification topic",
			zap.String("topic", topic),
			zap.String("id", externalID),
		)
		return DispositionSkipped, nil
	}
}

// handleMerchantOrder reconciles a merchant-order notification: fetch the
// canonical provider state, resolve the local order via the external
// reference, and apply the PAID transition if the provider reports the
// preference fully paid.
func (s *IPNService) handleMerchantOrder(ctx context.Context, merchantOrderID string) (Disposition, error) {
	dedupKey := "merchant_order:" + merchantOrderID
	if done, err := s.alreadyProcessed(ctx, dedupKey); err == nil && done {
		return DispositionSkipped, nil
	}

	merchantOrder, err := s.gateway.GetMerchantOrder(ctx, merchantOrderID)
	if err != nil {
		return DispositionError, fmt.Errorf("fetch merchant order %s: %w", merchantOrderID, err)
	}

	order, disposition, err := s.resolveOrder(ctx, merchantOrder.ExternalReference)
	if order == nil {
		return disposition, err
	}

	if order.Status != ordering.OrderStatusInProcess {
		s.logger.Info("order not in process, skipping notification",
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
		)
		return DispositionSkipped, nil
	}

	if !merchantOrder.IsFullyPaid() {
		return DispositionSkipped, nil
	}

	paymentID := approvedPaymentID(merchantOrder)
	if err := s.applyPaid(ctx, order, paymentID); err != nil {
		return DispositionError, err
	}

	s.markProcessed(ctx, dedupKey)
	return DispositionProcessed, nil
}

// handlePayment reconciles a payment notification, driving the Payment
// aggregate's status and, on approval, the owning order
func (s *IPNService) handlePayment(ctx context.Context, paymentID string) (Disposition, error) {
	dedupKey := "payment:" + paymentID
	if done, err := s.alreadyProcessed(ctx, dedupKey); err == nil && done {
		return DispositionSkipped, nil
	}

	providerPayment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return DispositionError, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	order, disposition, err := s.resolveOrder(ctx, providerPayment.ExternalReference)
	if order == nil {
		return disposition, err
	}

	payment, err := s.openPaymentFor(ctx, order.ID)
	if err != nil {
		return DispositionError, err
	}
	if payment == nil {
		// every open attempt already resolved: replay
		return DispositionSkipped, nil
	}

	switch {
	case providerPayment.Status.IsApproved():
		if err := payment.Approve(paymentID); err != nil {
			return DispositionSkipped, nil
		}
	case providerPayment.Status == ordering.GatewayPaymentStatusRejected:
		if err := payment.Reject(paymentID); err != nil {
			return DispositionSkipped, nil
		}
	case providerPayment.Status == ordering.GatewayPaymentStatusCancelled:
		if err := payment.Cancel(); err != nil {
			return DispositionSkipped, nil
		}
	default:
		// pending / in_process: nothing to record yet
		return DispositionSkipped, nil
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return DispositionError, err
	}

	if providerPayment.Status.IsApproved() && order.Status == ordering.OrderStatusInProcess {
		if err := s.applyPaid(ctx, order, paymentID); err != nil {
			return DispositionError, err
		}
	}

	s.markProcessed(ctx, dedupKey)
	return DispositionProcessed, nil
}

// applyPaid performs the guarded PAID transition: the aggregate guard
// plus the repository compare-and-swap. Losing the swap means a
// concurrent delivery won; the loser publishes nothing.
func (s *IPNService) applyPaid(ctx context.Context, order *ordering.Order, externalID string) error {
	if err := order.MarkPaid(externalID); err != nil {
		return nil
	}

	won, err := s.orderRepo.UpdateStatusIfCurrent(ctx, order, ordering.OrderStatusInProcess)
	if err != nil {
		return err
	}
	if !won {
		s.logger.Info("lost paid transition race, concurrent delivery won",
			zap.String("order_id", order.ID.String()),
		)
		order.ClearDomainEvents()
		return nil
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, order.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish order paid events",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}
	order.ClearDomainEvents()

	s.logger.Info("order marked paid",
		zap.String("order_id", order.ID.String()),
		zap.String("external_id", externalID),
	)
	return nil
}

// resolveOrder maps a provider external reference back to a local order.
// A missing or unknown reference is an anomaly the provider cannot fix,
// so it is logged and swallowed rather than surfaced as retryable.
func (s *IPNService) resolveOrder(ctx context.Context, externalReference string) (*ordering.Order, Disposition, error) {
	orderID, err := uuid.Parse(externalReference)
	if err != nil {
		s.logger.Warn("notification carries a malformed order reference",
			zap.String("external_reference", externalReference),
		)
		return nil, DispositionAnomaly, nil
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("notification references an unknown order",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, DispositionAnomaly, nil
	}
	return order, "", nil
}

// openPaymentFor finds the order's still-open payment attempt, if any
func (s *IPNService) openPaymentFor(ctx context.Context, orderID uuid.UUID) (*ordering.Payment, error) {
	payments, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, payment := range payments {
		if payment.Status.IsOpen() {
			return payment, nil
		}
	}
	return nil, nil
}

func approvedPaymentID(merchantOrder *ordering.GatewayMerchantOrder) string {
	for _, payment := range merchantOrder.Payments {
		if payment.Status.IsApproved() {
			return payment.PaymentID
		}
	}
	return merchantOrder.MerchantOrderID
}

func (s *IPNService) alreadyProcessed(ctx context.Context, key string) (bool, error) {
	if s.dedup == nil || !s.dedupConfig.Enabled {
		return false, nil
	}
	done, err := s.dedup.IsProcessed(ctx, key)
	if err != nil {
		s.logger.Warn("dedup ledger read failed, relying on status guard", zap.Error(err))
		return false, err
	}
	return done, nil
}

func (s *IPNService) markProcessed(ctx context.Context, key string) {
	if s.dedup == nil || !s.dedupConfig.Enabled {
		return
	}
	if _, err := s.dedup.MarkProcessed(ctx, key, s.dedupConfig.TTL); err != nil {
		s.logger.Warn("dedup ledger write failed", zap.Error(err))
	}
}
