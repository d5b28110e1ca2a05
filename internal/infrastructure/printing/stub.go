package printing

import (
	"context"
	"sync"
	"time"
)

// StubRenderer is an in-memory PDFRenderer for tests and local
// development without a Chrome binary. It returns a fixed payload
// and records every request it sees.
type StubRenderer struct {
	mu       sync.Mutex
	requests []*RenderRequest
	err      error
}

func NewStubRenderer() *StubRenderer {
	return &StubRenderer{}
}

// FailWith makes subsequent Render calls return err
func (r *StubRenderer) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *StubRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || req.HTML == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.requests = append(r.requests, req)

	return &RenderResult{
		PDFData:        []byte("%PDF-1.4 stub\n" + req.Title),
		RenderDuration: time.Millisecond,
	}, nil
}

func (r *StubRenderer) Close() error { return nil }

// Requests returns a copy of the recorded render requests
func (r *StubRenderer) Requests() []*RenderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*RenderRequest, len(r.requests))
	copy(out, r.requests)
	return out
}
