package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/webconf/checkout/internal/application/billing"
	catalogapp "github.com/webconf/checkout/internal/application/catalog"
	identityapp "github.com/webconf/checkout/internal/application/identity"
	orderingapp "github.com/webconf/checkout/internal/application/ordering"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeItemReader struct {
	items []catalogapp.ItemResponse
	err   error
}

func (f *fakeItemReader) GetByID(_ context.Context, itemID uuid.UUID) (*catalogapp.ItemResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			return &f.items[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeItemReader) List(_ context.Context, _ shared.Filter) ([]catalogapp.ItemResponse, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.items, int64(len(f.items)), nil
}

type fakeCodeFinder struct {
	codes []catalogapp.DiscountCodeResponse
	err   error
}

func (f *fakeCodeFinder) FindByCode(_ context.Context, _ string) ([]catalogapp.DiscountCodeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.codes, nil
}

type fakeCustomerRegistry struct {
	registered *identityapp.RegisterCustomerResponse
	customer   *identityapp.CustomerResponse
	err        error
}

func (f *fakeCustomerRegistry) Register(_ context.Context, _ identityapp.RegisterCustomerRequest) (*identityapp.RegisterCustomerResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.registered, nil
}

func (f *fakeCustomerRegistry) GetByID(_ context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.customer == nil || f.customer.ID != customerID {
		return nil, shared.ErrNotFound
	}
	return f.customer, nil
}

type fakeOrderCreator struct {
	created *orderingapp.OrderResponse
	orders  []orderingapp.OrderResponse
	err     error

	createReq *orderingapp.CreateOrderRequest
}

func (f *fakeOrderCreator) Create(_ context.Context, _ *identity.Customer, req orderingapp.CreateOrderRequest) (*orderingapp.OrderResponse, error) {
	f.createReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

func (f *fakeOrderCreator) List(_ context.Context, _ *identity.Customer) ([]orderingapp.OrderResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeOrderCreator) GetByID(_ context.Context, _ *identity.Customer, orderID uuid.UUID) (*orderingapp.OrderResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			return &f.orders[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

type fakeOrderCanceller struct {
	cancellation *billingapp.CancellationResponse
	err          error

	cancelReq *billingapp.CancelOrderRequest
}

func (f *fakeOrderCanceller) Cancel(_ context.Context, _ *identity.Customer, _ uuid.UUID, req *billingapp.CancelOrderRequest) (*billingapp.CancellationResponse, error) {
	f.cancelReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.cancellation, nil
}

func (f *fakeOrderCanceller) GetByOrder(_ context.Context, _ *identity.Customer, _ uuid.UUID) (*billingapp.CancellationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cancellation == nil {
		return nil, shared.ErrNotFound
	}
	return f.cancellation, nil
}

type fakeProcessor struct {
	disposition orderingapp.Disposition
	err         error

	topics []string
	ids    []string
}

func (f *fakeProcessor) HandleNotification(_ context.Context, topic, externalID string) (orderingapp.Disposition, error) {
	f.topics = append(f.topics, topic)
	f.ids = append(f.ids, externalID)
	return f.disposition, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping() error {
	return f.err
}

var errBoom = errors.New("boom")

// authenticated wraps a handler, injecting the customer the way the
// auth middleware does
func authenticated(customer *identity.Customer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("customer", customer)
		c.Next()
	}
}

func testCustomer() *identity.Customer {
	customer, err := identity.NewCustomer("ada@example.com", "Ada", "Lovelace", identity.IdentityDocumentDNI, "12.345.678", "")
	if err != nil {
		panic(err)
	}
	return customer
}
