package printing

import (
	"context"
	"time"
)

// RenderRequest describes one HTML-to-PDF conversion.
type RenderRequest struct {
	HTML string
	// Title ends up in the PDF document metadata
	Title string
	// Timeout overrides the renderer default when positive
	Timeout time.Duration
}

// RenderResult is the produced document plus timing for the logs.
type RenderResult struct {
	PDFData        []byte
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF bytes. Close releases the backing
// browser or process pool.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError classifies a rendering failure so callers can decide
// whether a retry is worthwhile.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// NewRenderError wraps cause with a classification code.
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
