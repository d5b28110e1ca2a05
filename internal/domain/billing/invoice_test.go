package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice(t *testing.T) {
	t.Run("creates from an issued authorization", func(t *testing.T) {
		orderID := uuid.New()
		expiry := time.Now().Add(10 * 24 * time.Hour)

		invoice, err := NewInvoice(orderID, 42, 11, 1, "71234567890123", expiry)

		require.NoError(t, err)
		assert.Equal(t, orderID, invoice.OrderID)
		assert.Equal(t, int64(42), invoice.Number)
		assert.Equal(t, "71234567890123", invoice.CAE)
		assert.False(t, invoice.HasDocument())
		assert.Nil(t, invoice.EmailedAt)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceIssued, events[0].EventType())
	})

	t.Run("requires order, number and CAE", func(t *testing.T) {
		expiry := time.Now().Add(24 * time.Hour)
		_, err := NewInvoice(uuid.Nil, 42, 11, 1, "cae", expiry)
		assert.Error(t, err)

		_, err = NewInvoice(uuid.New(), 0, 11, 1, "cae", expiry)
		assert.Error(t, err)

		_, err = NewInvoice(uuid.New(), 42, 11, 1, "", expiry)
		assert.Error(t, err)
	})
}

func TestInvoiceDocumentLifecycle(t *testing.T) {
	invoice, err := NewInvoice(uuid.New(), 42, 11, 1, "71234567890123", time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Error(t, invoice.AttachDocument(""))
	require.NoError(t, invoice.AttachDocument("invoices/0001-00000042.pdf"))
	assert.True(t, invoice.HasDocument())

	invoice.MarkEmailed()
	require.NotNil(t, invoice.EmailedAt)
}

func TestInvoiceFormattedNumber(t *testing.T) {
	invoice, err := NewInvoice(uuid.New(), 42, 11, 1, "71234567890123", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "0001-00000042", invoice.FormattedNumber())
}
