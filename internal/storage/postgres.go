package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stkyrillos/parish-api/internal/model"
	"github.com/stkyrillos/parish-api/internal/slots"
	"github.com/stkyrillos/parish-api/libs/db"
)

// PostgresStore is the durable BookingStore. The no-double-booking invariant
// is enforced by the unique index on slot_id: Reserve inserts optimistically
// and maps the unique violation to ErrSlotTaken, so the check and the write
// are one atomic statement even across processes.
type PostgresStore struct {
	pool *db.Pool
}

func NewPostgresStore(pool *db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the bookings table if missing. Dates and times are
// stored in their canonical string layouts, which order correctly as text.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS confession_bookings (
			id UUID PRIMARY KEY,
			slot_id TEXT NOT NULL,
			slot_date TEXT NOT NULL,
			slot_time TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			confirmation_number TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT confession_bookings_slot_key UNIQUE (slot_id),
			CONSTRAINT confession_bookings_code_key UNIQUE (confirmation_number)
		);
		CREATE INDEX IF NOT EXISTS confession_bookings_date_idx
			ON confession_bookings (slot_date);
	`)
	return err
}

func (s *PostgresStore) Reserve(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	slotID := slots.SlotID(req.Date, req.Time)

	for attempt := 0; attempt < codeAttempts; attempt++ {
		booking := model.Booking{
			ID:                 uuid.NewString(),
			SlotID:             slotID,
			Date:               req.Date,
			Time:               req.Time,
			FirstName:          req.FirstName,
			LastName:           req.LastName,
			Email:              req.Email,
			Phone:              req.Phone,
			ConfirmationNumber: slots.ConfirmationCode(),
		}

		var createdAt time.Time
		err := s.pool.QueryRow(ctx, `
			INSERT INTO confession_bookings
				(id, slot_id, slot_date, slot_time, first_name, last_name, email, phone, confirmation_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at
		`, booking.ID, booking.SlotID, booking.Date, booking.Time,
			booking.FirstName, booking.LastName, booking.Email, booking.Phone,
			booking.ConfirmationNumber).Scan(&createdAt)
		if err == nil {
			booking.CreatedAt = createdAt.UTC()
			return booking, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "slot") {
				return model.Booking{}, ErrSlotTaken
			}
			// Confirmation-number collision: draw a new code and retry.
			continue
		}
		return model.Booking{}, err
	}
	return model.Booking{}, fmt.Errorf("confirmation code space exhausted after %d attempts", codeAttempts)
}

func (s *PostgresStore) IsSlotAvailable(ctx context.Context, date, tm string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM confession_bookings WHERE slot_id = $1)
	`, slots.SlotID(date, tm)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *PostgresStore) GetByConfirmation(ctx context.Context, code string) (model.Booking, error) {
	var b model.Booking
	err := s.pool.QueryRow(ctx, `
		SELECT id, slot_id, slot_date, slot_time, first_name, last_name, email, phone, confirmation_number, created_at
		FROM confession_bookings
		WHERE confirmation_number = $1
	`, code).Scan(
		&b.ID, &b.SlotID, &b.Date, &b.Time,
		&b.FirstName, &b.LastName, &b.Email, &b.Phone,
		&b.ConfirmationNumber, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

func (s *PostgresStore) BookedSlotIDs(ctx context.Context, startDate, endDate string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slot_id FROM confession_bookings
		WHERE slot_date >= $1 AND slot_date < $2
	`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (s *PostgresStore) Cancel(ctx context.Context, id string) (model.Booking, bool, error) {
	var b model.Booking
	err := s.pool.QueryRow(ctx, `
		DELETE FROM confession_bookings
		WHERE id = $1
		RETURNING id, slot_id, slot_date, slot_time, first_name, last_name, email, phone, confirmation_number, created_at
	`, id).Scan(
		&b.ID, &b.SlotID, &b.Date, &b.Time,
		&b.FirstName, &b.LastName, &b.Email, &b.Phone,
		&b.ConfirmationNumber, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, false, nil
	}
	if err != nil {
		return model.Booking{}, false, err
	}
	return b, true, nil
}

var _ BookingStore = (*PostgresStore)(nil)
