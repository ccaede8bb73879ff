package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stkyrillos/parish-api/internal/model"
	"github.com/stkyrillos/parish-api/internal/slots"
)

func testRequest(date, tm string) model.BookingRequest {
	return model.BookingRequest{
		Date:      date,
		Time:      tm,
		FirstName: "Mina",
		LastName:  "Gerges",
		Email:     "mina@example.com",
		Phone:     "6155551234",
	}
}

func TestReserveAndLookup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	b, err := store.Reserve(ctx, testRequest("2026-02-15", "10:00"))
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if b.ID == "" || len(b.ConfirmationNumber) != slots.CodeLength {
		t.Fatalf("incomplete booking: %+v", b)
	}
	if b.SlotID != "2026-02-15-10-00" {
		t.Fatalf("unexpected slot id %q", b.SlotID)
	}
	if b.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}

	got, err := store.GetByConfirmation(ctx, b.ConfirmationNumber)
	if err != nil {
		t.Fatalf("GetByConfirmation failed: %v", err)
	}
	if got.ID != b.ID {
		t.Fatalf("lookup returned wrong booking: %+v", got)
	}

	if _, err := store.GetByConfirmation(ctx, "NOPE1234"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReserveConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Reserve(ctx, testRequest("2026-02-15", "10:00")); err != nil {
		t.Fatalf("first Reserve failed: %v", err)
	}
	if _, err := store.Reserve(ctx, testRequest("2026-02-15", "10:00")); !IsConflict(err) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	// A different time on the same day is independent.
	if _, err := store.Reserve(ctx, testRequest("2026-02-15", "10:30")); err != nil {
		t.Fatalf("adjacent slot Reserve failed: %v", err)
	}
	if free, _ := store.IsSlotAvailable(ctx, "2026-02-15", "10:00"); free {
		t.Fatal("reserved slot reported available")
	}
	if free, _ := store.IsSlotAvailable(ctx, "2026-02-22", "10:00"); !free {
		t.Fatal("open slot reported unavailable")
	}
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	const callers = 16

	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = store.Reserve(ctx, testRequest("2026-02-15", "10:00"))
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case IsConflict(err):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}
	if store.Count() != 1 {
		t.Fatalf("expected 1 stored booking, got %d", store.Count())
	}
}

func TestBookedSlotIDsRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, c := range []struct{ date, tm string }{
		{"2026-02-15", "10:00"},
		{"2026-02-15", "10:30"},
		{"2026-02-22", "10:00"},
		{"2026-03-01", "10:00"},
	} {
		if _, err := store.Reserve(ctx, testRequest(c.date, c.tm)); err != nil {
			t.Fatalf("Reserve(%s %s) failed: %v", c.date, c.tm, err)
		}
	}

	ids, err := store.BookedSlotIDs(ctx, "2026-02-15", "2026-03-01")
	if err != nil {
		t.Fatalf("BookedSlotIDs failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids in half-open range, got %d: %v", len(ids), ids)
	}
	if _, ok := ids[slots.SlotID("2026-03-01", "10:00")]; ok {
		t.Fatal("end date must be exclusive")
	}
}

func TestCancel(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	b, err := store.Reserve(ctx, testRequest("2026-02-15", "10:00"))
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	cancelled, ok, err := store.Cancel(ctx, b.ID)
	if err != nil || !ok {
		t.Fatalf("Cancel failed: ok=%v err=%v", ok, err)
	}
	if cancelled.ID != b.ID {
		t.Fatalf("cancelled wrong booking: %+v", cancelled)
	}
	if _, ok, _ := store.Cancel(ctx, b.ID); ok {
		t.Fatal("second cancel should report missing")
	}

	// The slot opens back up.
	if free, _ := store.IsSlotAvailable(ctx, "2026-02-15", "10:00"); !free {
		t.Fatal("cancelled slot should be available again")
	}
	if _, err := store.Reserve(ctx, testRequest("2026-02-15", "10:00")); err != nil {
		t.Fatalf("rebooking cancelled slot failed: %v", err)
	}
}
