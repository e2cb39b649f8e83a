package testutil

import (
	"context"
	"sync"

	"github.com/shopfront/backend/internal/domain/shared"
)

// RecordingPublisher is a shared.EventPublisher that keeps what it was given.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewRecordingPublisher creates an empty publisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records events.
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// SetError sets the error to return from Publish.
func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Types returns the types of the published events in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// Events returns a copy of the published events.
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.DomainEvent(nil), p.events...)
}

// PassthroughTx is a shared.TxManager that runs fn directly.
type PassthroughTx struct {
	Calls int
}

// WithinTransaction runs fn with ctx.
func (tx *PassthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.Calls++
	return fn(ctx)
}

var (
	_ shared.EventPublisher = (*RecordingPublisher)(nil)
	_ shared.TxManager      = (*PassthroughTx)(nil)
)
