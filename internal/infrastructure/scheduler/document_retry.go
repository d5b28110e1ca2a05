// Package scheduler runs the periodic background loops of the service.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/billing"
)

// DocumentRetrier re-runs the document phase for an already authorized
// invoice: render, store, email
type DocumentRetrier interface {
	RetryDocument(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error)
}

// DocumentRetryConfig holds configuration for the retry loop
type DocumentRetryConfig struct {
	// Interval between scans for pending documents
	Interval time.Duration
	// BatchSize is the maximum number of invoices retried per scan
	BatchSize int
}

// DefaultDocumentRetryConfig returns the default retry configuration
func DefaultDocumentRetryConfig() DocumentRetryConfig {
	return DocumentRetryConfig{
		Interval:  5 * time.Minute,
		BatchSize: 20,
	}
}

// DocumentRetryScheduler periodically picks up invoices that were
// authorized but whose PDF was not rendered or emailed, and retries
// them. A render or mail outage therefore resolves itself without
// re-contacting the tax authority.
type DocumentRetryScheduler struct {
	invoiceRepo billing.InvoiceRepository
	retrier     DocumentRetrier
	config      DocumentRetryConfig
	logger      *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewDocumentRetryScheduler creates a document retry scheduler
func NewDocumentRetryScheduler(invoiceRepo billing.InvoiceRepository, retrier DocumentRetrier, config DocumentRetryConfig, logger *zap.Logger) *DocumentRetryScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultDocumentRetryConfig().Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultDocumentRetryConfig().BatchSize
	}
	return &DocumentRetryScheduler{
		invoiceRepo: invoiceRepo,
		retrier:     retrier,
		config:      config,
		logger:      logger,
	}
}

// Start launches the retry loop
func (s *DocumentRetryScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(loopCtx)
	s.logger.Info("document retry scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
}

// Stop terminates the retry loop and waits for the current scan to finish
func (s *DocumentRetryScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.logger.Info("document retry scheduler stopped")
}

func (s *DocumentRetryScheduler) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan retries every pending invoice document once. Failures are logged
// and left for the next scan.
func (s *DocumentRetryScheduler) Scan(ctx context.Context) {
	pending, err := s.invoiceRepo.FindPendingDocuments(ctx, s.config.BatchSize)
	if err != nil {
		s.logger.Error("failed to list pending invoice documents", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	s.logger.Info("retrying pending invoice documents", zap.Int("count", len(pending)))
	for _, invoice := range pending {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.retrier.RetryDocument(ctx, invoice.OrderID); err != nil {
			s.logger.Warn("invoice document retry failed",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("order_id", invoice.OrderID.String()),
				zap.Error(err),
			)
		}
	}
}
