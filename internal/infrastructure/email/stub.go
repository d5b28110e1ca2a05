package email

import (
	"context"
	"sync"
)

// RecordingMailer captures messages instead of sending them. Used in
// tests and in development environments without an SMTP relay.
type RecordingMailer struct {
	mu       sync.Mutex
	messages []Message
	failWith error
}

// NewRecordingMailer creates a new RecordingMailer
func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

// FailWith makes every subsequent Send return the given error
func (m *RecordingMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Send records the message
func (m *RecordingMailer) Send(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.messages = append(m.messages, *msg)
	return nil
}

// Messages returns a copy of everything recorded so far
func (m *RecordingMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Ensure RecordingMailer implements Mailer
var _ Mailer = (*RecordingMailer)(nil)
