package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/shared"
)

type stubInvoiceRepo struct {
	pending []*billing.Invoice
	listErr error
}

func (r *stubInvoiceRepo) FindByID(context.Context, uuid.UUID) (*billing.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (r *stubInvoiceRepo) FindByOrder(context.Context, uuid.UUID) (*billing.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (r *stubInvoiceRepo) FindPendingDocuments(_ context.Context, limit int) ([]*billing.Invoice, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *stubInvoiceRepo) Save(context.Context, *billing.Invoice) error {
	return nil
}

type stubRetrier struct {
	mu       sync.Mutex
	orderIDs []uuid.UUID
	err      error
}

func (s *stubRetrier) RetryDocument(_ context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderIDs = append(s.orderIDs, orderID)
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func (s *stubRetrier) calls() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.orderIDs...)
}

func pendingInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(uuid.New(), 7, 11, 1, "75123456789012", time.Now().AddDate(0, 0, 10))
	require.NoError(t, err)
	return invoice
}

func TestScanRetriesPendingDocuments(t *testing.T) {
	first := pendingInvoice(t)
	second := pendingInvoice(t)
	repo := &stubInvoiceRepo{pending: []*billing.Invoice{first, second}}
	retrier := &stubRetrier{}

	s := NewDocumentRetryScheduler(repo, retrier, DefaultDocumentRetryConfig(), nil)
	s.Scan(context.Background())

	assert.Equal(t, []uuid.UUID{first.OrderID, second.OrderID}, retrier.calls())
}

func TestScanKeepsGoingAfterRetryFailure(t *testing.T) {
	first := pendingInvoice(t)
	second := pendingInvoice(t)
	repo := &stubInvoiceRepo{pending: []*billing.Invoice{first, second}}
	retrier := &stubRetrier{err: errors.New("render timeout")}

	s := NewDocumentRetryScheduler(repo, retrier, DefaultDocumentRetryConfig(), nil)
	s.Scan(context.Background())

	assert.Len(t, retrier.calls(), 2)
}

func TestScanHonorsBatchSize(t *testing.T) {
	repo := &stubInvoiceRepo{pending: []*billing.Invoice{pendingInvoice(t), pendingInvoice(t), pendingInvoice(t)}}
	retrier := &stubRetrier{}

	s := NewDocumentRetryScheduler(repo, retrier, DocumentRetryConfig{Interval: time.Minute, BatchSize: 2}, nil)
	s.Scan(context.Background())

	assert.Len(t, retrier.calls(), 2)
}

func TestScanListFailureDoesNotRetry(t *testing.T) {
	repo := &stubInvoiceRepo{listErr: errors.New("db down")}
	retrier := &stubRetrier{}

	s := NewDocumentRetryScheduler(repo, retrier, DefaultDocumentRetryConfig(), nil)
	s.Scan(context.Background())

	assert.Empty(t, retrier.calls())
}

func TestStartAndStop(t *testing.T) {
	repo := &stubInvoiceRepo{pending: []*billing.Invoice{pendingInvoice(t)}}
	retrier := &stubRetrier{}

	s := NewDocumentRetryScheduler(repo, retrier, DocumentRetryConfig{Interval: 5 * time.Millisecond, BatchSize: 1}, nil)
	s.Start(context.Background())

	assert.Eventually(t, func() bool {
		return len(retrier.calls()) > 0
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	// Stop is idempotent
	s.Stop()
}
