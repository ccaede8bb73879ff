// Package storage owns booking persistence and the one invariant the whole
// scheduler exists to protect: at most one booking per slot.
package storage

import (
	"context"
	"errors"

	"github.com/stkyrillos/parish-api/internal/model"
)

var (
	// ErrSlotTaken reports that another booking already holds the slot.
	// Expected under concurrency; not a system fault.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNotFound reports a missing booking.
	ErrNotFound = errors.New("booking not found")
)

// BookingStore is the authoritative registry of reservations.
//
// Reserve must perform its availability check and insert as one atomic unit:
// of any set of concurrent calls for the same slot, exactly one succeeds and
// the rest observe ErrSlotTaken. All other methods are reads (plus Cancel)
// and may serve slightly stale snapshots.
type BookingStore interface {
	Reserve(ctx context.Context, req model.BookingRequest) (model.Booking, error)
	IsSlotAvailable(ctx context.Context, date, tm string) (bool, error)
	GetByConfirmation(ctx context.Context, code string) (model.Booking, error)
	// BookedSlotIDs returns a point-in-time snapshot of taken slot ids for
	// dates in the half-open range [startDate, endDate).
	BookedSlotIDs(ctx context.Context, startDate, endDate string) (map[string]struct{}, error)
	// Cancel removes a booking by id, reporting whether one existed.
	Cancel(ctx context.Context, id string) (model.Booking, bool, error)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
