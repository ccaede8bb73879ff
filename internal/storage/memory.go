package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stkyrillos/parish-api/internal/model"
	"github.com/stkyrillos/parish-api/internal/slots"
)

// codeAttempts bounds confirmation-code regeneration on collision before the
// reserve is treated as a storage fault.
const codeAttempts = 5

// MemoryStore keeps bookings in process memory. It is the reference
// implementation of BookingStore: correct under concurrency, gone on restart.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]model.Booking
	bySlot map[string]string // slot id -> booking id
	byCode map[string]string // confirmation number -> booking id
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   map[string]model.Booking{},
		bySlot: map[string]string{},
		byCode: map[string]string{},
		now:    time.Now,
	}
}

// Reserve holds the store lock across the availability check and the insert,
// so two racing calls for the same slot can never both succeed.
func (s *MemoryStore) Reserve(_ context.Context, req model.BookingRequest) (model.Booking, error) {
	slotID := slots.SlotID(req.Date, req.Time)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.bySlot[slotID]; taken {
		return model.Booking{}, ErrSlotTaken
	}

	code, err := s.uniqueCodeLocked()
	if err != nil {
		return model.Booking{}, err
	}

	booking := model.Booking{
		ID:                 uuid.NewString(),
		SlotID:             slotID,
		Date:               req.Date,
		Time:               req.Time,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		CreatedAt:          s.now().UTC(),
		ConfirmationNumber: code,
	}

	s.byID[booking.ID] = booking
	s.bySlot[slotID] = booking.ID
	s.byCode[code] = booking.ID
	return booking, nil
}

func (s *MemoryStore) uniqueCodeLocked() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := slots.ConfirmationCode()
		if _, exists := s.byCode[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("confirmation code space exhausted after %d attempts", codeAttempts)
}

func (s *MemoryStore) IsSlotAvailable(_ context.Context, date, tm string) (bool, error) {
	slotID := slots.SlotID(date, tm)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, taken := s.bySlot[slotID]
	return !taken, nil
}

func (s *MemoryStore) GetByConfirmation(_ context.Context, code string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) BookedSlotIDs(_ context.Context, startDate, endDate string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]struct{}{}
	for _, b := range s.byID {
		if b.Date >= startDate && b.Date < endDate {
			out[b.SlotID] = struct{}{}
		}
	}
	return out, nil
}

func (s *MemoryStore) Cancel(_ context.Context, id string) (model.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return model.Booking{}, false, nil
	}
	delete(s.byID, id)
	delete(s.bySlot, b.SlotID)
	delete(s.byCode, b.ConfirmationNumber)
	return b, true, nil
}

// Count reports the number of stored bookings.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

var _ BookingStore = (*MemoryStore)(nil)
