package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	audit "procura/pkg/platform/audit"
)

// Publisher persists events to the store and optionally ships them to a sink
// (kafka). Sync by default; WithAsyncBuffer moves sink delivery onto a
// background goroutine so request latency does not pay for broker round
// trips.
type Publisher struct {
	store  audit.Store
	sink   audit.Sink
	logger *slog.Logger

	inbox  chan audit.Event
	wg     sync.WaitGroup
	closed chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSink attaches an external sink alongside the store.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) { p.sink = sink }
}

// WithAsyncBuffer makes sink delivery asynchronous with the given buffer
// size. Close drains the buffer before returning.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) { p.inbox = make(chan audit.Event, size) }
}

// WithLogger sets the logger for delivery failures (async mode has no caller
// to return errors to).
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records the event. The store write is always synchronous (the event
// must be queryable once the mutation commits); sink delivery follows the
// configured mode.
func (p *Publisher) Emit(ctx context.Context, e audit.Event) error {
	if err := p.store.Append(ctx, e); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	if p.sink == nil {
		return nil
	}
	if p.inbox != nil {
		select {
		case p.inbox <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}
	return p.ship(ctx, e)
}

// List exposes the store's per-entity history.
func (p *Publisher) List(ctx context.Context, entityID string) ([]audit.Event, error) {
	return p.store.ListByEntity(ctx, entityID)
}

func (p *Publisher) ship(ctx context.Context, e audit.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	if err := p.sink.Publish(ctx, []byte(e.EntityID), payload); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case e := <-p.inbox:
			if err := p.ship(context.Background(), e); err != nil {
				p.logger.Error("audit sink delivery failed",
					"action", string(e.Action),
					"entity_id", e.EntityID,
					"error", err.Error(),
				)
			}
		case <-p.closed:
			// Flush whatever is still buffered.
			for {
				select {
				case e := <-p.inbox:
					if err := p.ship(context.Background(), e); err != nil {
						p.logger.Error("audit sink delivery failed during drain",
							"action", string(e.Action),
							"error", err.Error(),
						)
					}
				default:
					return
				}
			}
		}
	}
}

// Close stops the async drainer after flushing buffered events. Safe to call
// when running synchronously.
func (p *Publisher) Close() {
	select {
	case <-p.closed:
		return
	default:
	}
	close(p.closed)
	p.wg.Wait()
}
