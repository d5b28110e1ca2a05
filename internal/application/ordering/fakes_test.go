package ordering

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*ordering.Order

	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*ordering.Order)}
}

// FindByID hands out copies so concurrent callers race on the stored row,
// not on a shared pointer, the way separate gorm sessions would
func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) FindByPreferenceID(_ context.Context, preferenceID string) (*ordering.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.PreferenceID == preferenceID {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByCustomer(_ context.Context, customerID uuid.UUID) ([]*ordering.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ordering.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *ordering.Order) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

// UpdateStatusIfCurrent mirrors the SQL conditional update: the write
// only lands while the stored row still holds the expected status
func (r *fakeOrderRepo) UpdateStatusIfCurrent(_ context.Context, order *ordering.Order, expected ordering.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if stored.Status != expected {
		return false, nil
	}
	copied := *order
	r.orders[order.ID] = &copied
	return true, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*ordering.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*ordering.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

func (r *fakePaymentRepo) FindByExternalID(_ context.Context, externalID string) (*ordering.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.ExternalID == externalID {
			return payment, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePaymentRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]*ordering.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ordering.Payment
	for _, payment := range r.payments {
		if payment.OrderID == orderID {
			out = append(out, payment)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *ordering.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = payment
	return nil
}

type fakeItemRepo struct {
	items map[uuid.UUID]*catalog.Item
}

func newFakeItemRepo(items ...*catalog.Item) *fakeItemRepo {
	repo := &fakeItemRepo{items: make(map[uuid.UUID]*catalog.Item)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

type fakeCodeRepo struct {
	codes       map[uuid.UUID]*catalog.DiscountCode
	redemptions int64
}

func newFakeCodeRepo(codes ...*catalog.DiscountCode) *fakeCodeRepo {
	repo := &fakeCodeRepo{codes: make(map[uuid.UUID]*catalog.DiscountCode)}
	for _, code := range codes {
		repo.codes[code.ID] = code
	}
	return repo
}

func (r *fakeCodeRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.DiscountCode, error) {
	code, ok := r.codes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return code, nil
}

func (r *fakeCodeRepo) FindByCode(_ context.Context, codeStr string) ([]catalog.DiscountCode, error) {
	var out []catalog.DiscountCode
	for _, code := range r.codes {
		if code.Code == codeStr {
			out = append(out, *code)
		}
	}
	return out, nil
}

func (r *fakeCodeRepo) CountRedemptions(_ context.Context, _ uuid.UUID) (int64, error) {
	return r.redemptions, nil
}

func (r *fakeCodeRepo) Save(_ context.Context, code *catalog.DiscountCode) error {
	r.codes[code.ID] = code
	return nil
}

type fakeGateway struct {
	mu sync.Mutex

	preferenceErr  error
	preferences    []*ordering.CreatePreferenceRequest
	merchantOrders map[string]*ordering.GatewayMerchantOrder
	payments       map[string]*ordering.GatewayPayment
	fetchErr       error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		merchantOrders: make(map[string]*ordering.GatewayMerchantOrder),
		payments:       make(map[string]*ordering.GatewayPayment),
	}
}

func (g *fakeGateway) CreatePreference(_ context.Context, req *ordering.CreatePreferenceRequest) (*ordering.CreatePreferenceResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.preferenceErr != nil {
		return nil, g.preferenceErr
	}
	g.preferences = append(g.preferences, req)
	return &ordering.CreatePreferenceResponse{
		PreferenceID: "pref-" + req.OrderID.String()[:8],
		InitPoint:    "https://checkout.example.com/pay/" + req.OrderID.String(),
	}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, paymentID string) (*ordering.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	payment, ok := g.payments[paymentID]
	if !ok {
		return nil, ordering.ErrGatewayResourceNotFound
	}
	return payment, nil
}

func (g *fakeGateway) GetMerchantOrder(_ context.Context, merchantOrderID string) (*ordering.GatewayMerchantOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	merchantOrder, ok := g.merchantOrders[merchantOrderID]
	if !ok {
		return nil, ordering.ErrGatewayResourceNotFound
	}
	return merchantOrder, nil
}

func (g *fakeGateway) Refund(_ context.Context, req *ordering.RefundRequest) (*ordering.RefundResponse, error) {
	return &ordering.RefundResponse{RefundID: "ref-1", PaymentID: req.PaymentID}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, event := range p.events {
		if event.EventType() == eventType {
			out = append(out, event)
		}
	}
	return out
}

type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{seen: make(map[string]bool)}
}

func (d *memoryDedup) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memoryDedup) IsProcessed(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[id], nil
}

func (d *memoryDedup) Close() error { return nil }
