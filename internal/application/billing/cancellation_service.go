package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/infrastructure/printing"
	"github.com/webconf/checkout/internal/infrastructure/storage"
)

// CancellationService drives the reversal path: cancel the order, refund
// the payment through the provider and issue the credit note with the
// tax authority. Unpaid orders skip the refund and credit note legs.
type CancellationService struct {
	orderRepo        ordering.OrderRepository
	cancellationRepo billing.CancellationRepository
	refundRepo       billing.RefundRepository
	creditNoteRepo   billing.CreditNoteRepository
	invoiceRepo      billing.InvoiceRepository
	gateway          ordering.PaymentGateway
	authority        billing.TaxAuthority
	credentials      CredentialSource
	templates        *printing.TemplateEngine
	renderer         printing.PDFRenderer
	store            storage.ObjectStorage
	issuer           IssuerConfig
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewCancellationService creates the cancellation pipeline
func NewCancellationService(
	orderRepo ordering.OrderRepository,
	cancellationRepo billing.CancellationRepository,
	refundRepo billing.RefundRepository,
	creditNoteRepo billing.CreditNoteRepository,
	invoiceRepo billing.InvoiceRepository,
	gateway ordering.PaymentGateway,
	authority billing.TaxAuthority,
	credentials CredentialSource,
	templates *printing.TemplateEngine,
	renderer printing.PDFRenderer,
	store storage.ObjectStorage,
	issuer IssuerConfig,
	logger *zap.Logger,
) *CancellationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CancellationService{
		orderRepo:        orderRepo,
		cancellationRepo: cancellationRepo,
		refundRepo:       refundRepo,
		creditNoteRepo:   creditNoteRepo,
		invoiceRepo:      invoiceRepo,
		gateway:          gateway,
		authority:        authority,
		credentials:      credentials,
		templates:        templates,
		renderer:         renderer,
		store:            store,
		issuer:           issuer,
		logger:           logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CancellationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Cancel cancels the customer's order. For a paid order it also requests
// the provider refund and issues the credit note before completing the
// cancellation; either leg failing leaves the cancellation REQUESTED so
// the operation can be resumed.
func (s *CancellationService) Cancel(ctx context.Context, customer *identity.Customer, orderID uuid.UUID, req *CancelOrderRequest) (*CancellationResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customer == nil || order.CustomerID != customer.ID {
		return nil, shared.ErrNotFound
	}

	if _, err := s.cancellationRepo.FindByOrder(ctx, orderID); err == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Order already has a cancellation")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	wasPaid := order.IsPaid()

	cancellation, err := billing.NewCancellation(order, req.Reason, req.OrderItemIDs)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	if err := s.cancellationRepo.Save(ctx, cancellation); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, append(order.GetDomainEvents(), cancellation.GetDomainEvents()...))
	order.ClearDomainEvents()
	cancellation.ClearDomainEvents()

	if wasPaid {
		if err := s.requestRefund(ctx, cancellation, order); err != nil {
			return nil, err
		}
		if err := s.issueCreditNote(ctx, cancellation, order); err != nil {
			return nil, err
		}
	}

	if err := cancellation.Complete(); err != nil {
		return nil, err
	}
	if err := s.cancellationRepo.Save(ctx, cancellation); err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", orderID.String()),
		zap.String("cancellation_id", cancellation.ID.String()),
		zap.Bool("refunded", wasPaid),
	)
	response := ToCancellationResponse(cancellation)
	return &response, nil
}

// GetByOrder returns the cancellation for the customer's order
func (s *CancellationService) GetByOrder(ctx context.Context, customer *identity.Customer, orderID uuid.UUID) (*CancellationResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customer == nil || order.CustomerID != customer.ID {
		return nil, shared.ErrNotFound
	}
	cancellation, err := s.cancellationRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToCancellationResponse(cancellation)
	return &response, nil
}

// requestRefund asks the provider to return the cancelled amount. A full
// cancellation refunds the whole payment, letting the provider settle
// rounding on its side.
func (s *CancellationService) requestRefund(ctx context.Context, cancellation *billing.Cancellation, order *ordering.Order) error {
	amount := cancellation.Total()
	currency := order.TotalCurrency
	if len(cancellation.Items) > 0 {
		currency = cancellation.Items[0].Currency
	}

	refund, err := billing.NewRefund(cancellation.ID, order.ID, order.ExternalID, amount, currency)
	if err != nil {
		return err
	}
	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return err
	}

	gatewayReq := &ordering.RefundRequest{PaymentID: order.ExternalID}
	if amount.LessThan(order.TotalAmount) {
		partial := amount
		gatewayReq.Amount = &partial
	}
	resp, err := s.gateway.Refund(ctx, gatewayReq)
	if err != nil {
		s.logger.Error("provider refund failed",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_id", order.ExternalID),
			zap.Error(err),
		)
		return err
	}

	if err := refund.MarkInProcess(resp.RefundID); err != nil {
		return err
	}
	// the provider answers refund requests synchronously; an accepted
	// response means the money is on its way back
	if err := refund.Approve(); err != nil {
		return err
	}
	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return err
	}
	s.publishEvents(ctx, refund.GetDomainEvents())
	refund.ClearDomainEvents()
	return nil
}

// issueCreditNote mirrors the invoicing pipeline for the reversed amount
func (s *CancellationService) issueCreditNote(ctx context.Context, cancellation *billing.Cancellation, order *ordering.Order) error {
	invoice, err := s.invoiceRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// paid but never invoiced, nothing to credit
			s.logger.Warn("cancelled paid order has no invoice",
				zap.String("order_id", order.ID.String()),
			)
			return nil
		}
		return err
	}

	if _, err := s.creditNoteRepo.FindByCancellation(ctx, cancellation.ID); err == nil {
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return err
	}
	last, err := s.authority.LastAuthorizedNumber(ctx, creds, s.issuer.CreditNoteType, s.issuer.PointOfSale)
	if err != nil {
		return err
	}
	number := last + 1

	amount := cancellation.Total()
	issuedAt := time.Now()
	serviceFrom, serviceTo := s.issuer.servicePeriod(issuedAt)
	req := &billing.TaxInvoiceRequest{
		InvoiceType:    s.issuer.CreditNoteType,
		PointOfSale:    s.issuer.PointOfSale,
		Number:         number,
		Concept:        billing.ConceptProductsAndServices,
		DocumentType:   invoice.RecipientDocType,
		DocumentNumber: invoice.RecipientDocument,
		Total:          amount,
		Currency:       invoice.TotalCurrency,
		Lines:          creditLines(cancellation),
		ServiceFrom:    serviceFrom,
		ServiceTo:      serviceTo,
		IssuedAt:       issuedAt,
	}
	auth, err := s.authority.RequestAuthorization(ctx, creds, req)
	if err != nil {
		return err
	}

	note, err := billing.NewCreditNote(cancellation.ID, invoice.ID, number, s.issuer.CreditNoteType, s.issuer.PointOfSale, auth.CAE, auth.CAEExpiry, amount, invoice.TotalCurrency)
	if err != nil {
		return err
	}
	if err := s.creditNoteRepo.Save(ctx, note); err != nil {
		s.logger.Error("failed to persist issued credit note",
			zap.String("cancellation_id", cancellation.ID.String()),
			zap.String("cae", auth.CAE),
			zap.Int64("number", number),
			zap.Error(err),
		)
		return err
	}
	if err := s.produceDocument(ctx, note, cancellation, invoice); err != nil {
		// the authorization already went through; rendering can be
		// repeated without a new CAE
		s.logger.Error("credit note document pending retry",
			zap.String("credit_note", note.FormattedNumber()),
			zap.Error(err),
		)
	}
	return nil
}

// produceDocument renders the credit note PDF and stores it
func (s *CancellationService) produceDocument(ctx context.Context, note *billing.CreditNote, cancellation *billing.Cancellation, invoice *billing.Invoice) error {
	doc := &printing.CreditNoteDocument{
		CompanyName:       s.issuer.CompanyName,
		CompanyCUIT:       s.issuer.CUIT,
		CompanyAddr:       s.issuer.CompanyAddress,
		FormattedNumber:   note.FormattedNumber(),
		IssuedAt:          note.CreatedAt,
		CAE:               note.CAE,
		CAEExpiry:         note.CAEExpiry,
		InvoiceNumber:     invoice.FormattedNumber(),
		Reason:            cancellation.Reason,
		RecipientName:     invoice.RecipientName,
		RecipientDocLabel: documentLabel(invoice.RecipientDocType),
		RecipientDocument: invoice.RecipientDocument,
		Lines:             creditDocumentLines(cancellation),
		Total:             note.Amount,
		Currency:          note.Currency,
		BarcodeDigits:     printing.BarcodeDigits(s.issuer.CUIT, note.InvoiceType, note.PointOfSale, note.CAE, note.CAEExpiry),
	}
	html, err := s.templates.RenderCreditNoteHTML(doc)
	if err != nil {
		return err
	}
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:  html,
		Title: "Nota de crédito " + note.FormattedNumber(),
	})
	if err != nil {
		return err
	}
	key := fmt.Sprintf("credit-notes/%s.pdf", note.FormattedNumber())
	if err := s.store.Upload(ctx, key, result.PDFData, "application/pdf"); err != nil {
		return err
	}
	if err := note.AttachDocument(key); err != nil {
		return err
	}
	return s.creditNoteRepo.Save(ctx, note)
}

func (s *CancellationService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish cancellation events", zap.Error(err))
	}
}

func creditLines(cancellation *billing.Cancellation) []billing.TaxInvoiceLine {
	lines := make([]billing.TaxInvoiceLine, 0, len(cancellation.Items))
	for idx := range cancellation.Items {
		item := &cancellation.Items[idx]
		unit := item.Amount
		if item.Quantity > 0 {
			unit = item.Amount.DivRound(decimal.NewFromInt(int64(item.Quantity)), 4)
		}
		lines = append(lines, billing.TaxInvoiceLine{
			Description: item.ItemName,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
		})
	}
	return lines
}

func creditDocumentLines(cancellation *billing.Cancellation) []printing.DocumentLine {
	lines := make([]printing.DocumentLine, 0, len(cancellation.Items))
	for idx := range cancellation.Items {
		item := &cancellation.Items[idx]
		unit := item.Amount
		if item.Quantity > 0 {
			unit = item.Amount.DivRound(decimal.NewFromInt(int64(item.Quantity)), 4)
		}
		lines = append(lines, printing.DocumentLine{
			Description: item.ItemName,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			Amount:      item.Amount,
		})
	}
	return lines
}
