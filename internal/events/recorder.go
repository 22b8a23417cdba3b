package events

import (
	"context"
	"fmt"
	"sync"
)

// Recorder keeps every published transition in order. Intended for tests and
// for commands that report what they did after the fact.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Publish(_ context.Context, e *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Transitions renders the published history as "type subject: state" lines,
// one per transition.
func (r *Recorder) Transitions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.events))
	for i, e := range r.events {
		lines[i] = fmt.Sprintf("%s %s: %s", e.Type, e.Subject, e.State)
	}
	return lines
}
