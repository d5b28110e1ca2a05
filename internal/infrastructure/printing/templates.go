package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLine is a single priced row on a fiscal document
type DocumentLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceDocument carries everything the invoice template needs
type InvoiceDocument struct {
	// Issuer
	CompanyName string
	CompanyCUIT string
	CompanyAddr string

	// Fiscal identity
	FormattedNumber string
	InvoiceTypeName string
	IssuedAt        time.Time
	CAE             string
	CAEExpiry       time.Time

	// Recipient snapshot
	RecipientName     string
	RecipientDocLabel string
	RecipientDocument string

	Lines    []DocumentLine
	Total    decimal.Decimal
	Currency string

	// BarcodeDigits is the numeric string encoded in the ITF barcode row
	BarcodeDigits string
}

// CreditNoteDocument carries everything the credit note template needs
type CreditNoteDocument struct {
	CompanyName string
	CompanyCUIT string
	CompanyAddr string

	FormattedNumber string
	IssuedAt        time.Time
	CAE             string
	CAEExpiry       time.Time

	// InvoiceNumber references the invoice being credited
	InvoiceNumber string
	Reason        string

	RecipientName     string
	RecipientDocLabel string
	RecipientDocument string

	Lines    []DocumentLine
	Total    decimal.Decimal
	Currency string

	BarcodeDigits string
}

// TemplateEngine renders fiscal document HTML from business data.
// It uses Go's html/template package with custom functions for formatting.
type TemplateEngine struct {
	invoice    *template.Template
	creditNote *template.Template
}

// NewTemplateEngine parses the built-in document templates
func NewTemplateEngine() (*TemplateEngine, error) {
	funcMap := template.FuncMap{
		"formatMoney":   formatMoney,
		"formatDate":    formatDate,
		"formatInt":     func(n int) string { return fmt.Sprintf("%d", n) },
		"upper":         strings.ToUpper,
		"barcodeDigits": spacedDigits,
	}

	invoice, err := template.New("invoice").Funcs(funcMap).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	creditNote, err := template.New("credit_note").Funcs(funcMap).Parse(creditNoteTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse credit note template: %w", err)
	}

	return &TemplateEngine{invoice: invoice, creditNote: creditNote}, nil
}

// RenderInvoiceHTML produces the HTML body for an invoice PDF
func (e *TemplateEngine) RenderInvoiceHTML(doc *InvoiceDocument) (string, error) {
	var buf bytes.Buffer
	if err := e.invoice.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", doc.FormattedNumber, err)
	}
	return buf.String(), nil
}

// RenderCreditNoteHTML produces the HTML body for a credit note PDF
func (e *TemplateEngine) RenderCreditNoteHTML(doc *CreditNoteDocument) (string, error) {
	var buf bytes.Buffer
	if err := e.creditNote.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render credit note %s: %w", doc.FormattedNumber, err)
	}
	return buf.String(), nil
}

// BarcodeDigits builds the numeric string for the fiscal ITF barcode:
// issuer CUIT, invoice type, point of sale, CAE, CAE expiry (YYYYMMDD)
// and the AFIP mod-10 check digit over the whole sequence.
func BarcodeDigits(cuit string, invoiceType, pointOfSale int, cae string, caeExpiry time.Time) string {
	digits := fmt.Sprintf("%s%02d%04d%s%s",
		onlyDigits(cuit), invoiceType, pointOfSale, onlyDigits(cae), caeExpiry.Format("20060102"))
	return digits + checkDigit(digits)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// checkDigit implements the AFIP weighting: odd-position digits sum
// times three plus even-position digits sum, then the distance to the
// next multiple of ten.
func checkDigit(digits string) string {
	odd, even := 0, 0
	for i, r := range digits {
		d := int(r - '0')
		if i%2 == 0 {
			odd += d
		} else {
			even += d
		}
	}
	total := odd*3 + even
	return fmt.Sprintf("%d", (10-total%10)%10)
}

// formatMoney renders a decimal in es-AR style: 1.234,56
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// spacedDigits groups barcode digits for the human-readable caption
func spacedDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
