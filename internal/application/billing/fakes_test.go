package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*ordering.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*ordering.Order)}
}

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
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

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

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*identity.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*identity.Customer)}
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return customer, nil
}

func (r *fakeCustomerRepo) FindByCredentials(_ context.Context, email, doc string) (*identity.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*identity.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) Save(_ context.Context, customer *identity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[customer.ID] = customer
	return nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*catalog.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*catalog.Item)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*billing.Invoice

	saveErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*billing.Invoice)}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (r *fakeInvoiceRepo) FindByOrder(_ context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invoice := range r.invoices {
		if invoice.OrderID == orderID {
			copied := *invoice
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInvoiceRepo) FindPendingDocuments(_ context.Context, limit int) ([]*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := make([]*billing.Invoice, 0)
	for _, invoice := range r.invoices {
		if len(pending) == limit {
			break
		}
		if !invoice.HasDocument() || invoice.EmailedAt == nil {
			copied := *invoice
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (r *fakeInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	return nil
}

type fakeCancellationRepo struct {
	mu            sync.Mutex
	cancellations map[uuid.UUID]*billing.Cancellation
}

func newFakeCancellationRepo() *fakeCancellationRepo {
	return &fakeCancellationRepo{cancellations: make(map[uuid.UUID]*billing.Cancellation)}
}

func (r *fakeCancellationRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancellation, ok := r.cancellations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *cancellation
	return &copied, nil
}

func (r *fakeCancellationRepo) FindByOrder(_ context.Context, orderID uuid.UUID) (*billing.Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancellation := range r.cancellations {
		if cancellation.OrderID == orderID {
			copied := *cancellation
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCancellationRepo) Save(_ context.Context, cancellation *billing.Cancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cancellation
	r.cancellations[cancellation.ID] = &copied
	return nil
}

type fakeCreditNoteRepo struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*billing.CreditNote
}

func newFakeCreditNoteRepo() *fakeCreditNoteRepo {
	return &fakeCreditNoteRepo{notes: make(map[uuid.UUID]*billing.CreditNote)}
}

func (r *fakeCreditNoteRepo) FindByCancellation(_ context.Context, cancellationID uuid.UUID) (*billing.CreditNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, note := range r.notes {
		if note.CancellationID == cancellationID {
			copied := *note
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCreditNoteRepo) Save(_ context.Context, note *billing.CreditNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *note
	r.notes[note.ID] = &copied
	return nil
}

type fakeRefundRepo struct {
	mu      sync.Mutex
	refunds map[uuid.UUID]*billing.Refund
}

func newFakeRefundRepo() *fakeRefundRepo {
	return &fakeRefundRepo{refunds: make(map[uuid.UUID]*billing.Refund)}
}

func (r *fakeRefundRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refund, ok := r.refunds[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *refund
	return &copied, nil
}

func (r *fakeRefundRepo) FindByExternalID(_ context.Context, externalID string) (*billing.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, refund := range r.refunds {
		if refund.ExternalID == externalID {
			copied := *refund
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRefundRepo) FindByCancellation(_ context.Context, cancellationID uuid.UUID) (*billing.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, refund := range r.refunds {
		if refund.CancellationID == cancellationID {
			copied := *refund
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRefundRepo) Save(_ context.Context, refund *billing.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *refund
	r.refunds[refund.ID] = &copied
	return nil
}

// fakeAuthority scripts the tax authority: a fixed last-authorized
// number and a canned CAE, recording every submitted request
type fakeAuthority struct {
	mu         sync.Mutex
	lastNumber int64
	cae        string
	caeExpiry  time.Time

	lastErr    error
	requestErr error

	requests []*billing.TaxInvoiceRequest
	calls    int
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		lastNumber: 41,
		cae:        "75123456789012",
		caeExpiry:  time.Now().AddDate(0, 0, 10),
	}
}

func (a *fakeAuthority) Authenticate(_ context.Context) (billing.TaxCredentials, error) {
	return billing.TaxCredentials{
		Token:     "token",
		Sign:      "sign",
		ExpiresAt: time.Now().Add(12 * time.Hour),
	}, nil
}

func (a *fakeAuthority) LastAuthorizedNumber(_ context.Context, _ billing.TaxCredentials, _, _ int) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastErr != nil {
		return 0, a.lastErr
	}
	return a.lastNumber, nil
}

func (a *fakeAuthority) RequestAuthorization(_ context.Context, _ billing.TaxCredentials, req *billing.TaxInvoiceRequest) (billing.TaxAuthorization, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.requestErr != nil {
		return billing.TaxAuthorization{}, a.requestErr
	}
	a.calls++
	a.requests = append(a.requests, req)
	return billing.TaxAuthorization{CAE: a.cae, CAEExpiry: a.caeExpiry}, nil
}

// Credentials lets the fake double as the credential source in tests
func (a *fakeAuthority) Credentials(ctx context.Context) (billing.TaxCredentials, error) {
	return a.Authenticate(ctx)
}

// fakeGateway scripts the payment provider refund endpoint
type fakeGateway struct {
	mu        sync.Mutex
	refundErr error
	refunds   []*ordering.RefundRequest
}

func (g *fakeGateway) CreatePreference(_ context.Context, _ *ordering.CreatePreferenceRequest) (*ordering.CreatePreferenceResponse, error) {
	return nil, ordering.ErrGatewayNotConfigured
}

func (g *fakeGateway) GetPayment(_ context.Context, _ string) (*ordering.GatewayPayment, error) {
	return nil, ordering.ErrGatewayResourceNotFound
}

func (g *fakeGateway) GetMerchantOrder(_ context.Context, _ string) (*ordering.GatewayMerchantOrder, error) {
	return nil, ordering.ErrGatewayResourceNotFound
}

func (g *fakeGateway) Refund(_ context.Context, req *ordering.RefundRequest) (*ordering.RefundResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, req)
	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}
	return &ordering.RefundResponse{
		RefundID:  "refund-1",
		PaymentID: req.PaymentID,
		Amount:    amount,
	}, nil
}

// recordingPublisher captures published domain events
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
