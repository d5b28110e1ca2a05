package ordering

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

type ipnFixture struct {
	service   *IPNService
	orderRepo *fakeOrderRepo
	payments  *fakePaymentRepo
	gateway   *fakeGateway
	publisher *recordingPublisher
	order     *ordering.Order
}

// newIPNFixture builds an IN_PROCESS order with an open payment attempt,
// the state a webhook normally finds
func newIPNFixture(t *testing.T) *ipnFixture {
	t.Helper()

	f := &ipnFixture{
		orderRepo: newFakeOrderRepo(),
		payments:  newFakePaymentRepo(),
		gateway:   newFakeGateway(),
		publisher: &recordingPublisher{},
	}

	pass := testPass(t, 1500)
	order, err := ordering.NewOrder(testCustomer(t).ID, nil, "")
	require.NoError(t, err)
	_, err = order.AddItem(pass, 1, nil)
	require.NoError(t, err)
	require.NoError(t, order.Price(nil))
	require.NoError(t, order.MarkInProcess("pref-1"))
	order.ClearDomainEvents()
	require.NoError(t, f.orderRepo.Save(context.Background(), order))
	f.order = order

	payment, err := ordering.NewPayment(order.ID)
	require.NoError(t, err)
	require.NoError(t, f.payments.Save(context.Background(), payment))

	f.service = NewIPNService(f.orderRepo, f.payments, f.gateway, newMemoryDedup(), shared.DefaultIdempotencyConfig(), nil)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *ipnFixture) paidMerchantOrder(id string) {
	f.gateway.merchantOrders[id] = &ordering.GatewayMerchantOrder{
		MerchantOrderID:   id,
		PreferenceID:      "pref-1",
		ExternalReference: f.order.ID.String(),
		PaidAmount:        decimal.NewFromInt(1500),
		TotalAmount:       decimal.NewFromInt(1500),
		Payments: []ordering.GatewayPayment{{
			PaymentID: "pay-77",
			Status:    ordering.GatewayPaymentStatusApproved,
		}},
	}
}

func (f *ipnFixture) storedOrder(t *testing.T) *ordering.Order {
	t.Helper()
	order, err := f.orderRepo.FindByID(context.Background(), f.order.ID)
	require.NoError(t, err)
	return order
}

func TestIPNMerchantOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("paid merchant order marks the order paid once", func(t *testing.T) {
		f := newIPNFixture(t)
		f.paidMerchantOrder("mo-1")

		disposition, err := f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		require.NoError(t, err)
		assert.Equal(t, DispositionProcessed, disposition)

		stored := f.storedOrder(t)
		assert.Equal(t, ordering.OrderStatusPaid, stored.Status)
		assert.Equal(t, "pay-77", stored.ExternalID)
		assert.Len(t, f.publisher.byType(ordering.EventTypeOrderPaid), 1)
	})

	t.Run("replay is a no-op with one event total", func(t *testing.T) {
		f := newIPNFixture(t)
		f.paidMerchantOrder("mo-1")

		_, err := f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		require.NoError(t, err)
		disposition, err := f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		require.NoError(t, err)

		assert.Equal(t, DispositionSkipped, disposition)
		assert.Len(t, f.publisher.byType(ordering.EventTypeOrderPaid), 1)
	})

	t.Run("not fully paid is skipped", func(t *testing.T) {
		f := newIPNFixture(t)
		f.paidMerchantOrder("mo-1")
		f.gateway.merchantOrders["mo-1"].PaidAmount = decimal.NewFromInt(100)

		disposition, err := f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		require.NoError(t, err)
		assert.Equal(t, DispositionSkipped, disposition)
		assert.Equal(t, ordering.OrderStatusInProcess, f.storedOrder(t).Status)
	})

	t.Run("provider fetch failure is retryable and mutates nothing", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.fetchErr = ordering.ErrGatewayUnavailable

		disposition, err := f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		assert.Error(t, err)
		assert.Equal(t, DispositionError, disposition)
		assert.Equal(t, ordering.OrderStatusInProcess, f.storedOrder(t).Status)

		// the ledger must not have recorded the failed attempt
		f.gateway.fetchErr = nil
		f.paidMerchantOrder("mo-1")
		disposition, err = f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		require.NoError(t, err)
		assert.Equal(t, DispositionProcessed, disposition)
	})

	t.Run("unknown correlation id is an anomaly, not an error", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.merchantOrders["mo-9"] = &ordering.GatewayMerchantOrder{
			MerchantOrderID:   "mo-9",
			ExternalReference: "not-a-uuid",
		}

		disposition, err := f.service.HandleNotification(ctx, "merchant_order", "mo-9")
		require.NoError(t, err)
		assert.Equal(t, DispositionAnomaly, disposition)
	})

	t.Run("unrecognized topic is silently skipped", func(t *testing.T) {
		f := newIPNFixture(t)

		disposition, err := f.service.HandleNotification(ctx, "chargebacks", "x-1")
		require.NoError(t, err)
		assert.Equal(t, DispositionSkipped, disposition)
	})

	t.Run("cancelled order is never marked paid", func(t *testing.T) {
		f := newIPNFixture(t)
		f.paidMerchantOrder("mo-1")

		stored := f.storedOrder(t)
		require.NoError(t, stored.Cancel("fraud review"))
		require.NoError(t, f.orderRepo.Save(ctx, stored))

		disposition, err := f.service.HandleNotification(ctx, "merchant_order", "mo-1")
		require.NoError(t, err)
		assert.Equal(t, DispositionSkipped, disposition)
		assert.Equal(t, ordering.OrderStatusCancelled, f.storedOrder(t).Status)
	})

	t.Run("concurrent duplicate deliveries fire side effects once", func(t *testing.T) {
		f := newIPNFixture(t)
		f.paidMerchantOrder("mo-1")
		// a second dedup key for the same event forces both goroutines
		// past the ledger, exercising the compare-and-swap guard
		f.gateway.merchantOrders["mo-2"] = f.gateway.merchantOrders["mo-1"]

		var wg sync.WaitGroup
		for _, id := range []string{"mo-1", "mo-2"} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, _ = f.service.HandleNotification(ctx, "merchant_order", id)
			}(id)
		}
		wg.Wait()

		assert.Equal(t, ordering.OrderStatusPaid, f.storedOrder(t).Status)
		assert.Len(t, f.publisher.byType(ordering.EventTypeOrderPaid), 1)
	})
}

func TestIPNPayment(t *testing.T) {
	ctx := context.Background()

	approvedPayment := func(f *ipnFixture, id string) {
		f.gateway.payments[id] = &ordering.GatewayPayment{
			PaymentID:         id,
			Status:            ordering.GatewayPaymentStatusApproved,
			ExternalReference: f.order.ID.String(),
			TransactionAmount: decimal.NewFromInt(1500),
			Currency:          "ARS",
		}
	}

	t.Run("approved payment resolves payment and order", func(t *testing.T) {
		f := newIPNFixture(t)
		approvedPayment(f, "pay-5")

		disposition, err := f.service.HandleNotification(ctx, "payment", "pay-5")
		require.NoError(t, err)
		assert.Equal(t, DispositionProcessed, disposition)

		payments, err := f.payments.FindByOrder(ctx, f.order.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, ordering.PaymentStatusApproved, payments[0].Status)
		assert.Equal(t, "pay-5", payments[0].ExternalID)

		assert.Equal(t, ordering.OrderStatusPaid, f.storedOrder(t).Status)
		assert.Len(t, f.publisher.byType(ordering.EventTypeOrderPaid), 1)
	})

	t.Run("rejected payment leaves the order open", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.payments["pay-5"] = &ordering.GatewayPayment{
			PaymentID:         "pay-5",
			Status:            ordering.GatewayPaymentStatusRejected,
			ExternalReference: f.order.ID.String(),
		}

		disposition, err := f.service.HandleNotification(ctx, "payment", "pay-5")
		require.NoError(t, err)
		assert.Equal(t, DispositionProcessed, disposition)

		payments, err := f.payments.FindByOrder(ctx, f.order.ID)
		require.NoError(t, err)
		assert.Equal(t, ordering.PaymentStatusRejected, payments[0].Status)
		assert.Equal(t, ordering.OrderStatusInProcess, f.storedOrder(t).Status)
	})

	t.Run("pending payment records nothing", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.payments["pay-5"] = &ordering.GatewayPayment{
			PaymentID:         "pay-5",
			Status:            ordering.GatewayPaymentStatusPending,
			ExternalReference: f.order.ID.String(),
		}

		disposition, err := f.service.HandleNotification(ctx, "payment", "pay-5")
		require.NoError(t, err)
		assert.Equal(t, DispositionSkipped, disposition)
	})

	t.Run("replay after approval is skipped", func(t *testing.T) {
		f := newIPNFixture(t)
		approvedPayment(f, "pay-5")

		_, err := f.service.HandleNotification(ctx, "payment", "pay-5")
		require.NoError(t, err)
		disposition, err := f.service.HandleNotification(ctx, "payment", "pay-5")
		require.NoError(t, err)
		assert.Equal(t, DispositionSkipped, disposition)
		assert.Len(t, f.publisher.byType(ordering.EventTypeOrderPaid), 1)
	})
}
