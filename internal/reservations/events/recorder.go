package events

import (
	"context"
	"sync"

	"innkeep/pkg/model"
)

// Recorder keeps published events in memory. Tests and single-process
// deployments use it to observe what was emitted.
type Recorder struct {
	mu     sync.Mutex
	events []model.ReservationEvent
	// Err, when set, is returned from every Publish after recording.
	Err error
}

func (r *Recorder) Publish(_ context.Context, event model.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

func (r *Recorder) Events() []model.ReservationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ReservationEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the event types in publish order.
func (r *Recorder) Types() []model.ReservationEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ReservationEventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *Recorder) Close() error { return nil }
