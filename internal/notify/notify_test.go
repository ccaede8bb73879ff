package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stkyrillos/parish-api/internal/model"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Send(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatchFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	d := NewDispatcher(slog.Default(), a, b)

	d.Dispatch(Event{Type: EventBooked, Booking: model.Booking{ID: "b1"}})
	d.Wait()

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected both sinks to receive the event, got %d and %d", a.count(), b.count())
	}
	if a.events[0].OccurredAt.IsZero() {
		t.Fatal("expected OccurredAt to be stamped")
	}
}

func TestDispatchBestEffort(t *testing.T) {
	failing := &recordingSink{err: errors.New("smtp down")}
	healthy := &recordingSink{}
	d := NewDispatcher(slog.Default(), failing, healthy)

	// A failing sink must not affect the other sink or the caller.
	d.Dispatch(Event{Type: EventBooked, Booking: model.Booking{ID: "b1"}})
	d.Dispatch(Event{Type: EventCancelled, Booking: model.Booking{ID: "b2"}})
	d.Wait()

	if healthy.count() != 2 {
		t.Fatalf("healthy sink should receive all events, got %d", healthy.count())
	}
	if failing.count() != 2 {
		t.Fatalf("failing sink should still be attempted, got %d", failing.count())
	}
}

func TestDispatchNoSinks(t *testing.T) {
	d := NewDispatcher(slog.Default())
	d.Dispatch(Event{Type: EventBooked})
	d.Wait()
}
