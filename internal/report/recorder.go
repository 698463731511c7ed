package report

import (
	"context"
	"sync"
)

// Recorder keeps every reported event in memory. It is meant for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	events := r.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

// Find returns the first event called name.
func (r *Recorder) Find(name string) (Event, bool) {
	for _, e := range r.Events() {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

// Name returns "recorder" so a Recorder can also be used as a Sink.
func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) Send(ctx context.Context, e Event) error {
	r.Report(ctx, e)
	return nil
}

func (r *Recorder) Close() error { return nil }
