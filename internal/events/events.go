// Package events manages the parish's weekly service schedule: a small
// admin-edited list rendered on the public site, ordered by day then sort
// order within the day.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("schedule event not found")

// ValidationError marks input the client can fix, as opposed to a repository
// fault.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Field length clamps. Oversized input is truncated, not rejected, so a
// pasted description never bounces the whole form.
const (
	maxTimeLen        = 20
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxLocationLen    = 200

	defaultDurationMinutes = 60
)

// Event is one recurring weekly service. Time is free-form display text
// ("9:00 AM - 12:00 PM"), not a bookable slot.
type Event struct {
	ID              string    `json:"id"`
	DayOfWeek       int       `json:"dayOfWeek"` // 0=Sunday..6=Saturday
	Time            string    `json:"time"`
	SortOrder       int       `json:"sortOrder"`
	DurationMinutes int       `json:"durationMinutes"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Repository persists the schedule. List returns events ordered by
// (dayOfWeek, sortOrder).
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Create(ctx context.Context, e Event) (Event, error)
	Update(ctx context.Context, id string, e Event) (Event, error)
	Delete(ctx context.Context, id string) error
}

// Normalize validates the writable fields and applies length clamps and the
// duration default. ID and timestamps are ignored; the repository owns them.
func Normalize(e Event) (Event, error) {
	if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
		return Event{}, validationErrorf("dayOfWeek must be 0-6, got %d", e.DayOfWeek)
	}
	if e.Time == "" {
		return Event{}, validationErrorf("time is required")
	}
	if e.Title == "" {
		return Event{}, validationErrorf("title is required")
	}

	e.Time = clamp(e.Time, maxTimeLen)
	e.Title = clamp(e.Title, maxTitleLen)
	e.Description = clamp(e.Description, maxDescriptionLen)
	e.Location = clamp(e.Location, maxLocationLen)
	if e.DurationMinutes <= 0 {
		e.DurationMinutes = defaultDurationMinutes
	}
	return e, nil
}

func clamp(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
