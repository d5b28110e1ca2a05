package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
)

func newPaidOrder(t *testing.T) *ordering.Order {
	t.Helper()
	order := newTestOrder(t, newTestCustomer(t, "ada@example.com"), newTestItem(t, "Entrada", 1500))
	require.NoError(t, order.MarkInProcess("pref-1"))
	require.NoError(t, order.MarkPaid("pay-1"))
	order.ClearDomainEvents()
	return order
}

func TestInvoiceRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	invoice, err := billing.NewInvoice(orderID, 42, 11, 1, "75123456789012", time.Now().Add(10*24*time.Hour))
	require.NoError(t, err)
	invoice.RecipientName = "Ada Lovelace"
	invoice.RecipientDocument = "12345678"
	invoice.RecipientDocType = 96
	invoice.TotalAmount = decimal.NewFromInt(1500)
	invoice.TotalCurrency = "ARS"

	require.NoError(t, repo.Save(ctx, invoice))

	found, err := repo.FindByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, found.ID)
	assert.Equal(t, "0001-00000042", found.FormattedNumber())
	assert.Equal(t, "Ada Lovelace", found.RecipientName)

	require.NoError(t, found.AttachDocument("invoices/0001-00000042.pdf"))
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, again.HasDocument())

	_, err = repo.FindByOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepositoryFindPendingDocuments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	noDocument, err := billing.NewInvoice(uuid.New(), 1, 11, 1, "75123456789012", time.Now().Add(10*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, noDocument))

	notEmailed, err := billing.NewInvoice(uuid.New(), 2, 11, 1, "75123456789013", time.Now().Add(10*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, notEmailed.AttachDocument("invoices/0001-00000002.pdf"))
	require.NoError(t, repo.Save(ctx, notEmailed))

	finished, err := billing.NewInvoice(uuid.New(), 3, 11, 1, "75123456789014", time.Now().Add(10*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, finished.AttachDocument("invoices/0001-00000003.pdf"))
	finished.MarkEmailed()
	require.NoError(t, repo.Save(ctx, finished))

	pending, err := repo.FindPendingDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	ids := []uuid.UUID{pending[0].ID, pending[1].ID}
	assert.Contains(t, ids, noDocument.ID)
	assert.Contains(t, ids, notEmailed.ID)

	limited, err := repo.FindPendingDocuments(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCancellationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCancellationRepository(db)
	ctx := context.Background()

	order := newPaidOrder(t)
	cancellation, err := billing.NewCancellation(order, "no puedo asistir", []uuid.UUID{order.Items[0].ID})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cancellation))

	found, err := repo.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, cancellation.ID, found.ID)
	assert.Equal(t, "no puedo asistir", found.Reason)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Entrada", found.Items[0].ItemName)

	require.NoError(t, found.Complete())
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByID(ctx, cancellation.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.CancellationStatusCompleted, again.Status)
	assert.NotNil(t, again.CompletedAt)
}

func TestCreditNoteRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCreditNoteRepository(db)
	ctx := context.Background()

	cancellationID := uuid.New()
	note, err := billing.NewCreditNote(cancellationID, uuid.New(), 7, 13, 1,
		"75999999999999", time.Now().Add(10*24*time.Hour), decimal.NewFromInt(1500), "ARS")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, note))

	found, err := repo.FindByCancellation(ctx, cancellationID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, found.ID)
	assert.Equal(t, "0001-00000007", found.FormattedNumber())

	_, err = repo.FindByCancellation(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRefundRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRefundRepository(db)
	ctx := context.Background()

	cancellationID := uuid.New()
	refund, err := billing.NewRefund(cancellationID, uuid.New(), "pay-1", decimal.NewFromInt(1500), "ARS")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, refund))

	require.NoError(t, refund.MarkInProcess("refund-77"))
	require.NoError(t, repo.Save(ctx, refund))

	found, err := repo.FindByExternalID(ctx, "refund-77")
	require.NoError(t, err)
	assert.Equal(t, refund.ID, found.ID)

	byCancellation, err := repo.FindByCancellation(ctx, cancellationID)
	require.NoError(t, err)
	assert.Equal(t, refund.ID, byCancellation.ID)

	require.NoError(t, found.Approve())
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByID(ctx, refund.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.RefundStatusApproved, again.Status)
	assert.NotNil(t, again.ApprovedAt)

	_, err = repo.FindByExternalID(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
