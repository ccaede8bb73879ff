package model

import "time"

// Booking is a confirmed reservation of one confession slot. Immutable after
// creation; cancellation deletes it rather than editing it.
type Booking struct {
	ID                 string
	SlotID             string
	Date               string // YYYY-MM-DD in the parish timezone
	Time               string // HH:MM, 24-hour
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	CreatedAt          time.Time
	ConfirmationNumber string
}

// BookingRequest carries the already-validated fields for a reservation.
type BookingRequest struct {
	Date      string
	Time      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
