package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrDenied indicates the user rejected the authorization request.
	ErrDenied = errors.New("authorization denied")

	// ErrCancelled indicates the pending request was abandoned before the
	// provider redirected back.
	ErrCancelled = errors.New("authorization cancelled")
)

// PendingRequest is one in-flight authorization attempt. It resolves exactly
// once: Complete, Deny, and Cancel after the first resolution are no-ops.
type PendingRequest struct {
	ID string

	once   sync.Once
	result chan result
}

type result struct {
	code string
	err  error
}

// Complete resolves the request with the authorization code.
func (r *PendingRequest) Complete(code string) {
	r.resolve(result{code: code})
}

// Deny resolves the request as rejected by the user or provider.
func (r *PendingRequest) Deny(reason string) {
	r.resolve(result{err: fmt.Errorf("%w: %s", ErrDenied, reason)})
}

// Cancel resolves the request as abandoned.
func (r *PendingRequest) Cancel() {
	r.resolve(result{err: ErrCancelled})
}

func (r *PendingRequest) resolve(res result) {
	r.once.Do(func() {
		r.result <- res
		close(r.result)
	})
}

// Wait blocks until the request resolves or the context ends, returning the
// authorization code.
func (r *PendingRequest) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-r.result:
		if res.err != nil {
			return "", res.err
		}
		return res.code, nil
	case <-ctx.Done():
		r.Cancel()
		return "", ctx.Err()
	}
}

// Flow tracks at most one pending authorization request. Beginning a new
// request cancels any previous one.
type Flow struct {
	mu      sync.Mutex
	pending *PendingRequest
}

// NewFlow creates an authorization flow tracker.
func NewFlow() *Flow {
	return &Flow{}
}

// Begin opens a new pending request and returns it.
func (f *Flow) Begin() *PendingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending != nil {
		f.pending.Cancel()
	}

	f.pending = &PendingRequest{
		ID:     uuid.NewString(),
		result: make(chan result, 1),
	}
	return f.pending
}

// Current returns the pending request, or nil if none is in flight.
func (f *Flow) Current() *PendingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Clear forgets the pending request if it matches req.
func (f *Flow) Clear(req *PendingRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == req {
		f.pending = nil
	}
}
