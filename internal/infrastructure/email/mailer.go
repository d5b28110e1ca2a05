package email

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotConfigured = errors.New("mailer: SMTP not configured")
	ErrSendFailed    = errors.New("mailer: send failed")
)

// Attachment is a file attached to an outgoing message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outgoing email
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer sends transactional email. Implementations must be safe for
// concurrent use; the invoicing pipeline and the pass mailer share one.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
