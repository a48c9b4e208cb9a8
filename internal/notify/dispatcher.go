package notify

import (
	"context"
	"log/slog"
	"sync"

	"askboard/internal/logctx"
	"askboard/internal/metrics"
)

type queued struct {
	ctx context.Context
	ev  Event
}

// Dispatcher delivers events from a bounded queue on a background worker.
// Emit never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	recorder *Recorder
	queue    chan queued
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the worker. Call Close to drain and stop it.
func NewDispatcher(r *Recorder, size int) *Dispatcher {
	d := &Dispatcher{
		recorder: r,
		queue:    make(chan queued, size),
		done:     make(chan struct{}),
	}
	go d.worker()
	return d
}

func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	lg := logctx.From(ctx)
	if d.closed {
		lg.Warn("notification_dropped", slog.String("type", string(ev.Kind)), slog.String("reason", "closed"))
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.ResultDropped).Inc()
		return
	}

	// The request context is cancelled once the response is written.
	item := queued{ctx: context.WithoutCancel(ctx), ev: ev}
	select {
	case d.queue <- item:
		metrics.NotifyQueueDepth.Inc()
	default:
		lg.Warn("notification_dropped", slog.String("type", string(ev.Kind)), slog.String("reason", "queue full"))
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.ResultDropped).Inc()
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for item := range d.queue {
		metrics.NotifyQueueDepth.Dec()
		if err := d.recorder.Record(item.ctx, item.ev); err != nil {
			logctx.From(item.ctx).Error("notification_failed",
				slog.String("type", string(item.ev.Kind)),
				slog.String("err", err.Error()),
			)
		}
	}
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
