// CLAUDE:SUMMARY Fans out session events to every configured sink from a queue; one failing or slow sink never blocks the search.
package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hazyhaar/feedscan/feedscan/event"
)

// DefaultQueueSize bounds the events waiting for delivery.
const DefaultQueueSize = 256

type queued struct {
	ctx context.Context
	ev  event.Event
}

// Router fans out events to all configured sinks. One sink error does not
// block the others: errors are logged and the first encountered is returned.
//
// Emit queues the event and returns; a single goroutine delivers queued
// events in order. Send delivers synchronously.
type Router struct {
	sinks  []Sink
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}
}

// NewRouter creates a fan-out router delivering to all sinks.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		sinks:  sinks,
		logger: logger,
		queue:  make(chan queued, DefaultQueueSize),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Router) Send(ctx context.Context, ev event.Event) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Send(ctx, ev); err != nil {
			r.logger.Warn("sink: send event failed", "type", ev.Type, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Emit queues ev for delivery without waiting for the sinks. The event is
// dropped when the queue is full or the router is closed.
func (r *Router) Emit(ctx context.Context, ev event.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Debug("sink: router closed, event dropped", "type", ev.Type)
		return
	}
	select {
	case r.queue <- queued{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		r.logger.Warn("sink: queue full, event dropped", "type", ev.Type)
	}
}

func (r *Router) drain() {
	defer close(r.done)
	for q := range r.queue {
		_ = r.Send(q.ctx, q.ev)
	}
}

// Close delivers the events still queued, then closes every sink.
func (r *Router) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done

	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
