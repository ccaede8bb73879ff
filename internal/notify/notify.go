// Package notify delivers post-commit booking notifications. Delivery is
// best-effort by design: the booking is already durable when an event is
// dispatched, so sink failures are logged and never surfaced to the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stkyrillos/parish-api/internal/model"
)

const (
	EventBooked    = "parish.confession.booked.v1"
	EventCancelled = "parish.confession.cancelled.v1"
)

// Event is the envelope handed to sinks after a booking state change.
// Display fields are precomputed so sinks need no scheduler configuration.
type Event struct {
	Type        string
	Booking     model.Booking
	DisplayDate string
	DisplayTime string
	ClergyName  string
	Location    string
	OccurredAt  time.Time
}

type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Dispatcher fans events out to sinks on background goroutines.
type Dispatcher struct {
	sinks   []Sink
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// Dispatch hands the event to every sink and returns immediately.
func (d *Dispatcher) Dispatch(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := s.Send(ctx, e); err != nil {
				d.logger.Warn("notification sink failed",
					"event", e.Type,
					"booking_id", e.Booking.ID,
					"err", err,
				)
			}
		}(sink)
	}
}

// Wait blocks until all in-flight deliveries finish. Used at shutdown and in
// tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
