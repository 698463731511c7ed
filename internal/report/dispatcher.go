package report

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diewo77/epic-events/internal/lib/sl"
)

const sendTimeout = 5 * time.Second

// Dispatcher queues events in a bounded buffer drained by one worker that
// fans each event out to every sink. A full buffer drops the event.
type Dispatcher struct {
	log   *slog.Logger
	sinks []Sink
	queue chan Event

	dropped atomic.Uint64
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
}

// NewDispatcher starts the worker. A nil logger falls back to slog.Default.
func NewDispatcher(log *slog.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		log:   log,
		sinks: sinks,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Report enqueues e without blocking.
func (d *Dispatcher) Report(_ context.Context, e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}
	select {
	case d.queue <- e:
	default:
		d.dropped.Add(1)
		d.log.Warn("report buffer full, event dropped", slog.String("event", e.Name))
	}
}

// Dropped returns the number of events discarded so far.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := s.Send(ctx, e); err != nil {
				d.log.Warn("report sink failed",
					slog.String("sink", s.Name()),
					slog.String("event", e.Name),
					sl.Err(err),
				)
			}
			cancel()
		}
	}
}

// Close stops accepting events, waits for the queue to drain or ctx to end,
// then closes every sink.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	var errs []error
	select {
	case <-d.done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
