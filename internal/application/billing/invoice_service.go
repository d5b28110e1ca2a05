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
	"github.com/webconf/checkout/internal/infrastructure/email"
	"github.com/webconf/checkout/internal/infrastructure/printing"
	"github.com/webconf/checkout/internal/infrastructure/storage"
)

// InvoiceService runs the electronic invoicing pipeline for paid orders:
// authorize the document with the tax authority, persist it, render the
// PDF, store it and email it to the customer. It subscribes to OrderPaid
// on the event bus.
//
// The authority call and the document phase are deliberately split: the
// invoice row is persisted as soon as the CAE is issued, so a render or
// delivery failure never risks requesting a second authorization for the
// same order.
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	orderRepo    ordering.OrderRepository
	customerRepo identity.CustomerRepository
	authority    billing.TaxAuthority
	credentials  CredentialSource
	templates    *printing.TemplateEngine
	renderer     printing.PDFRenderer
	store        storage.ObjectStorage
	mailer       email.Mailer
	issuer       IssuerConfig
	logger       *zap.Logger
}

// NewInvoiceService creates the invoicing pipeline
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	orderRepo ordering.OrderRepository,
	customerRepo identity.CustomerRepository,
	authority billing.TaxAuthority,
	credentials CredentialSource,
	templates *printing.TemplateEngine,
	renderer printing.PDFRenderer,
	store storage.ObjectStorage,
	mailer email.Mailer,
	issuer IssuerConfig,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		authority:    authority,
		credentials:  credentials,
		templates:    templates,
		renderer:     renderer,
		store:        store,
		mailer:       mailer,
		issuer:       issuer,
		logger:       logger,
	}
}

// Handle reacts to OrderPaid events from the event bus
func (s *InvoiceService) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*ordering.OrderPaidEvent)
	if !ok {
		return nil
	}
	_, err := s.IssueForOrder(ctx, paid.OrderID)
	return err
}

// EventTypes returns the event types this handler subscribes to
func (s *InvoiceService) EventTypes() []string {
	return []string{ordering.EventTypeOrderPaid}
}

// IssueForOrder issues the invoice for a paid order. The operation is
// idempotent: an order that already has an invoice only re-enters the
// document phase when its PDF or email is still pending. A document-phase
// failure is logged and left for RetryDocument; the issued CAE is never
// requested twice.
func (s *InvoiceService) IssueForOrder(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid() {
		return nil, shared.NewDomainError("INVALID_STATE", "Order is not paid")
	}

	customer, err := s.customerRepo.FindByID(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	switch {
	case err == nil:
		if invoice.HasDocument() && invoice.EmailedAt != nil {
			return invoice, nil
		}
	case errors.Is(err, shared.ErrNotFound):
		invoice, err = s.authorize(ctx, order, customer)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.produceDocument(ctx, invoice, order, customer); err != nil {
		s.logger.Error("invoice document pending retry",
			zap.String("order_id", orderID.String()),
			zap.String("invoice", invoice.FormattedNumber()),
			zap.Error(err),
		)
	}
	return invoice, nil
}

// RetryDocument re-runs the render/store/email phase for an order whose
// invoice was issued but whose document never made it to the customer
func (s *InvoiceService) RetryDocument(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByID(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := s.produceDocument(ctx, invoice, order, customer); err != nil {
		return nil, err
	}
	return invoice, nil
}

// authorize requests the CAE and persists the invoice row
func (s *InvoiceService) authorize(ctx context.Context, order *ordering.Order, customer *identity.Customer) (*billing.Invoice, error) {
	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	last, err := s.authority.LastAuthorizedNumber(ctx, creds, s.issuer.InvoiceType, s.issuer.PointOfSale)
	if err != nil {
		return nil, err
	}
	number := last + 1

	issuedAt := time.Now()
	serviceFrom, serviceTo := s.issuer.servicePeriod(issuedAt)
	req := &billing.TaxInvoiceRequest{
		InvoiceType:    s.issuer.InvoiceType,
		PointOfSale:    s.issuer.PointOfSale,
		Number:         number,
		Concept:        billing.ConceptProductsAndServices,
		DocumentType:   customer.AFIPDocumentType(),
		DocumentNumber: customer.IdentityDocument,
		Total:          order.TotalAmount,
		Currency:       order.TotalCurrency,
		Lines:          taxLines(order),
		ServiceFrom:    serviceFrom,
		ServiceTo:      serviceTo,
		IssuedAt:       issuedAt,
	}

	auth, err := s.authority.RequestAuthorization(ctx, creds, req)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(order.ID, number, s.issuer.InvoiceType, s.issuer.PointOfSale, auth.CAE, auth.CAEExpiry)
	if err != nil {
		return nil, err
	}
	invoice.RecipientName = recipientName(customer)
	invoice.RecipientDocument = customer.IdentityDocument
	invoice.RecipientDocType = customer.AFIPDocumentType()
	invoice.TotalAmount = order.TotalAmount
	invoice.TotalCurrency = order.TotalCurrency

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		// the CAE is already committed on the authority side; surface
		// loudly so the row can be reconstructed by hand
		s.logger.Error("failed to persist issued invoice",
			zap.String("order_id", order.ID.String()),
			zap.String("cae", auth.CAE),
			zap.Int64("number", number),
			zap.Error(err),
		)
		return nil, err
	}
	invoice.ClearDomainEvents()

	s.logger.Info("invoice issued",
		zap.String("order_id", order.ID.String()),
		zap.String("invoice", invoice.FormattedNumber()),
		zap.String("cae", auth.CAE),
	)
	return invoice, nil
}

// produceDocument renders the invoice PDF, stores it and emails it.
// Every step is safe to repeat.
func (s *InvoiceService) produceDocument(ctx context.Context, invoice *billing.Invoice, order *ordering.Order, customer *identity.Customer) error {
	if !invoice.HasDocument() {
		html, err := s.templates.RenderInvoiceHTML(s.invoiceDocument(invoice, order))
		if err != nil {
			return err
		}
		result, err := s.renderer.Render(ctx, &printing.RenderRequest{
			HTML:  html,
			Title: "Factura " + invoice.FormattedNumber(),
		})
		if err != nil {
			return err
		}
		key := fmt.Sprintf("invoices/%s.pdf", invoice.FormattedNumber())
		if err := s.store.Upload(ctx, key, result.PDFData, "application/pdf"); err != nil {
			return err
		}
		if err := invoice.AttachDocument(key); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
	}

	if invoice.EmailedAt != nil {
		return nil
	}
	pdf, err := s.documentData(ctx, invoice.DocumentKey)
	if err != nil {
		return err
	}
	msg := &email.Message{
		To:      customer.Email,
		Subject: "Tu factura " + invoice.FormattedNumber(),
		HTML:    invoiceEmailBody(customer, invoice),
		Attachments: []email.Attachment{{
			Filename:    fmt.Sprintf("factura-%s.pdf", invoice.FormattedNumber()),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}
	invoice.MarkEmailed()
	return s.invoiceRepo.Save(ctx, invoice)
}

// documentData fetches the stored PDF back for attachment. Storage keeps
// the canonical copy so a retry after a process restart still has it.
func (s *InvoiceService) documentData(ctx context.Context, key string) ([]byte, error) {
	return s.store.Download(ctx, key)
}

func (s *InvoiceService) invoiceDocument(invoice *billing.Invoice, order *ordering.Order) *printing.InvoiceDocument {
	return &printing.InvoiceDocument{
		CompanyName:       s.issuer.CompanyName,
		CompanyCUIT:       s.issuer.CUIT,
		CompanyAddr:       s.issuer.CompanyAddress,
		FormattedNumber:   invoice.FormattedNumber(),
		InvoiceTypeName:   invoiceTypeName(invoice.InvoiceType),
		IssuedAt:          invoice.CreatedAt,
		CAE:               invoice.CAE,
		CAEExpiry:         invoice.CAEExpiry,
		RecipientName:     invoice.RecipientName,
		RecipientDocLabel: documentLabel(invoice.RecipientDocType),
		RecipientDocument: invoice.RecipientDocument,
		Lines:             documentLines(order),
		Total:             invoice.TotalAmount,
		Currency:          invoice.TotalCurrency,
		BarcodeDigits:     printing.BarcodeDigits(s.issuer.CUIT, invoice.InvoiceType, invoice.PointOfSale, invoice.CAE, invoice.CAEExpiry),
	}
}

// documentLines lists the order's lines; when a discount code lowered the
// total below the sum of the lines, a negative adjustment line keeps the
// printed document arithmetically consistent
func documentLines(order *ordering.Order) []printing.DocumentLine {
	lines := make([]printing.DocumentLine, 0, len(order.Items)+1)
	linesTotal := decimal.Zero
	for idx := range order.Items {
		item := &order.Items[idx]
		amount := item.PriceAmount.Mul(decimal.NewFromInt(int64(item.Quantity)))
		linesTotal = linesTotal.Add(amount)
		lines = append(lines, printing.DocumentLine{
			Description: item.ItemName,
			Quantity:    item.Quantity,
			UnitPrice:   item.PriceAmount,
			Amount:      amount,
		})
	}
	if order.TotalAmount.LessThan(linesTotal) {
		discount := order.TotalAmount.Sub(linesTotal)
		lines = append(lines, printing.DocumentLine{
			Description: "Descuento",
			Quantity:    1,
			UnitPrice:   discount,
			Amount:      discount,
		})
	}
	return lines
}

func taxLines(order *ordering.Order) []billing.TaxInvoiceLine {
	lines := make([]billing.TaxInvoiceLine, 0, len(order.Items))
	for idx := range order.Items {
		item := &order.Items[idx]
		lines = append(lines, billing.TaxInvoiceLine{
			Description: item.ItemName,
			Quantity:    item.Quantity,
			UnitPrice:   item.PriceAmount,
		})
	}
	return lines
}

func recipientName(customer *identity.Customer) string {
	if customer.IsCompany() && customer.Company != "" {
		return customer.Company
	}
	return customer.FullName()
}

func invoiceEmailBody(customer *identity.Customer, invoice *billing.Invoice) string {
	return fmt.Sprintf(`<p>Hola %s,</p>
<p>Adjuntamos la factura <strong>%s</strong> por tu compra.</p>
<p>CAE: %s (vencimiento %s)</p>
<p>¡Gracias!</p>`,
		customer.FirstName,
		invoice.FormattedNumber(),
		invoice.CAE,
		invoice.CAEExpiry.Format("02/01/2006"),
	)
}
