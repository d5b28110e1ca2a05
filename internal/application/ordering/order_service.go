package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

// PreferenceURLs carries the redirect and notification endpoints handed
// to the payment provider on preference creation
type PreferenceURLs struct {
	Success      string
	Failure      string
	Pending      string
	Notification string
}

// OrderService handles order creation and retrieval
type OrderService struct {
	orderRepo      ordering.OrderRepository
	paymentRepo    ordering.PaymentRepository
	itemRepo       catalog.ItemRepository
	codeRepo       catalog.DiscountCodeRepository
	gateway        ordering.PaymentGateway
	urls           PreferenceURLs
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo ordering.OrderRepository,
	paymentRepo ordering.PaymentRepository,
	itemRepo catalog.ItemRepository,
	codeRepo catalog.DiscountCodeRepository,
	gateway ordering.PaymentGateway,
	urls PreferenceURLs,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		itemRepo:    itemRepo,
		codeRepo:    codeRepo,
		gateway:     gateway,
		urls:        urls,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates and prices a new order for the customer, persists it,
// opens a checkout preference with the payment provider and moves the
// order to IN_PROCESS. If the provider call fails the order stays CREATED
// and the error is surfaced; nothing is partially priced.
func (s *OrderService) Create(ctx context.Context, customer *identity.Customer, req CreateOrderRequest) (*OrderResponse, error) {
	if customer == nil {
		return nil, shared.ErrUnauthorized
	}
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("order-items", "at least one item is required")
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	hasPass := false
	for _, item := range items {
		if item.IsPass() {
			hasPass = true
			break
		}
	}
	if !hasPass {
		return nil, shared.NewValidationError("order-items", "at least one pass is required")
	}

	code, err := s.resolveDiscountCode(ctx, customer, req.DiscountCodeID)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(customer.ID, req.DiscountCodeID, req.Notes)
	if err != nil {
		return nil, err
	}

	for idx, input := range req.Items {
		optionValues := make(map[uuid.UUID]string, len(input.Options))
		for _, opt := range input.Options {
			optionValues[opt.ItemOptionID] = opt.Value
		}
		if _, err := order.AddItem(items[idx], input.Quantity, optionValues); err != nil {
			return nil, err
		}
	}

	if err := order.Price(code); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	preference, err := s.createPreference(ctx, customer, order)
	if err != nil {
		s.logger.Error("preference creation failed, order left in CREATED",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := order.MarkInProcess(preference.PreferenceID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	payment, err := ordering.NewPayment(order.ID)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("preference_id", preference.PreferenceID),
		zap.String("total", order.Total().String()),
	)

	response := ToOrderResponse(order)
	response.CheckoutURL = preference.InitPoint
	return &response, nil
}

// GetByID retrieves one of the customer's orders. The stored total is
// returned as-is; it is never re-priced against current catalog state.
func (s *OrderService) GetByID(ctx context.Context, customer *identity.Customer, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customer == nil || order.CustomerID != customer.ID {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves the customer's orders
func (s *OrderService) List(ctx context.Context, customer *identity.Customer) ([]OrderResponse, error) {
	if customer == nil {
		return nil, shared.ErrUnauthorized
	}
	orders, err := s.orderRepo.FindByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = ToOrderResponse(order)
	}
	return responses, nil
}

// resolveItems loads the referenced catalog items in request order
func (s *OrderService) resolveItems(ctx context.Context, inputs []CreateOrderItemInput) ([]*catalog.Item, error) {
	ids := make([]uuid.UUID, len(inputs))
	for i, input := range inputs {
		ids[i] = input.ItemID
	}

	found, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Item, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]*catalog.Item, len(inputs))
	for i, input := range inputs {
		item, ok := byID[input.ItemID]
		if !ok {
			return nil, shared.NewValidationError("order-items", fmt.Sprintf("unknown item %s", input.ItemID))
		}
		items[i] = item
	}
	return items, nil
}

// resolveDiscountCode loads the code and checks its restrictions against
// the redeeming customer
func (s *OrderService) resolveDiscountCode(ctx context.Context, customer *identity.Customer, codeID *uuid.UUID) (*catalog.DiscountCode, error) {
	if codeID == nil {
		return nil, nil
	}

	code, err := s.codeRepo.FindByID(ctx, *codeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("discount-code", "unknown discount code")
		}
		return nil, err
	}

	redemptions, err := s.codeRepo.CountRedemptions(ctx, code.ID)
	if err != nil {
		return nil, err
	}

	if err := code.CheckRestrictions(catalog.RestrictionContext{
		CustomerEmail:    customer.Email,
		Now:              time.Now(),
		RedemptionsSoFar: redemptions,
	}); err != nil {
		return nil, err
	}

	return code, nil
}

func (s *OrderService) createPreference(ctx context.Context, customer *identity.Customer, order *ordering.Order) (*ordering.CreatePreferenceResponse, error) {
	lines := make([]ordering.PreferenceItem, len(order.Items))
	for i := range order.Items {
		lines[i] = ordering.PreferenceItem{
			Title:     order.Items[i].ItemName,
			Quantity:  order.Items[i].Quantity,
			UnitPrice: order.Items[i].Price().Round(2).Amount(),
			Currency:  order.Items[i].PriceCurrency,
		}
	}

	req := &ordering.CreatePreferenceRequest{
		OrderID:         order.ID,
		Items:           lines,
		PayerEmail:      customer.Email,
		SuccessURL:      s.urls.Success,
		FailureURL:      s.urls.Failure,
		PendingURL:      s.urls.Pending,
		NotificationURL: s.urls.Notification,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.gateway.CreatePreference(ctx, req)
}

func (s *OrderService) publishEvents(ctx context.Context, order *ordering.Order) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
	order.ClearDomainEvents()
}
