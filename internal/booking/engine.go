// Package booking orchestrates confession reservations: request validation,
// the atomic reserve against the store, and post-commit notifications.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/stkyrillos/parish-api/internal/model"
	"github.com/stkyrillos/parish-api/internal/notify"
	"github.com/stkyrillos/parish-api/internal/slots"
	"github.com/stkyrillos/parish-api/internal/storage"
)

// Error codes surfaced to the client. Everything except INTERNAL_ERROR and
// SLOT_UNAVAILABLE is a problem with the submitted form.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidDay      = "INVALID_DAY"
	CodePastDate        = "PAST_DATE"
	CodeInvalidTime     = "INVALID_TIME"
	CodeSlotUnavailable = "SLOT_UNAVAILABLE"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error is a client-addressable booking failure. The code tells the UI
// whether to say "fix your form" or "pick another time".
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// IsConflict reports whether err is the expected lost-race outcome.
func IsConflict(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == CodeSlotUnavailable
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Confirmation is the client-facing result of a successful reservation.
type Confirmation struct {
	ConfirmationNumber string `json:"confirmationNumber"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	DisplayDate        string `json:"displayDate"`
	DisplayTime        string `json:"displayTime"`
	ClergyName         string `json:"clergyName"`
	Location           string `json:"location"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
}

// Engine validates booking requests and drives the store. It holds no mutable
// state of its own; all shared state lives behind the BookingStore.
type Engine struct {
	store      storage.BookingStore
	cfg        slots.Config
	clergyName string
	location   string
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewEngine(store storage.BookingStore, cfg slots.Config, clergyName, location string, dispatcher *notify.Dispatcher, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		cfg:        cfg,
		clergyName: clergyName,
		location:   location,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// GetAvailability computes the week/day/slot tree for the window starting at
// startDate (today when empty). The booked set is a single snapshot read over
// the half-open range [start, start+7*weeks).
func (e *Engine) GetAvailability(ctx context.Context, startDate string, weeks int) (slots.Availability, error) {
	now := e.now()
	if startDate == "" {
		startDate = slots.Today(now, e.cfg.Location)
	}
	start, err := slots.ParseDate(startDate, e.cfg.Location)
	if err != nil {
		return slots.Availability{}, &Error{Code: CodeValidation, Message: fmt.Sprintf("invalid start date %q, expected YYYY-MM-DD", startDate)}
	}

	weeks = slots.ClampWeeks(weeks)
	end := start.AddDate(0, 0, 7*weeks).Format(slots.DateLayout)

	booked, err := e.store.BookedSlotIDs(ctx, startDate, end)
	if err != nil {
		e.logger.Error("booked slot snapshot failed", "err", err)
		return slots.Availability{}, &Error{Code: CodeInternal, Message: "unable to load availability"}
	}

	return slots.Generate(e.cfg, start, weeks, booked, now), nil
}

// CreateBooking validates the request, reserves the slot atomically, and
// dispatches a booked event. A lost race surfaces as SLOT_UNAVAILABLE so the
// client can offer another time; validation never touches the store.
func (e *Engine) CreateBooking(ctx context.Context, req model.BookingRequest) (Confirmation, error) {
	req = trimRequest(req)
	if err := e.validate(req); err != nil {
		return Confirmation{}, err
	}

	b, err := e.store.Reserve(ctx, req)
	if err != nil {
		if storage.IsConflict(err) {
			return Confirmation{}, &Error{Code: CodeSlotUnavailable, Message: "this time slot has just been booked, please choose another time"}
		}
		e.logger.Error("reserve failed", "slot_id", slots.SlotID(req.Date, req.Time), "err", err)
		return Confirmation{}, &Error{Code: CodeInternal, Message: "unable to complete booking"}
	}

	conf := e.confirmation(b)
	e.logger.Info("booking created",
		"booking_id", b.ID,
		"slot_id", b.SlotID,
		"confirmation", b.ConfirmationNumber,
	)

	// Booking is durable; notification failures are the dispatcher's problem.
	if e.dispatcher != nil {
		e.dispatcher.Dispatch(notify.Event{
			Type:        notify.EventBooked,
			Booking:     b,
			DisplayDate: conf.DisplayDate,
			DisplayTime: conf.DisplayTime,
			ClergyName:  e.clergyName,
			Location:    e.location,
		})
	}
	return conf, nil
}

// Lookup fetches a booking by its confirmation number.
func (e *Engine) Lookup(ctx context.Context, code string) (model.Booking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.Booking{}, &Error{Code: CodeValidation, Message: "confirmation number is required"}
	}
	b, err := e.store.GetByConfirmation(ctx, code)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Booking{}, &Error{Code: CodeNotFound, Message: "no booking found for that confirmation number"}
		}
		e.logger.Error("booking lookup failed", "err", err)
		return model.Booking{}, &Error{Code: CodeInternal, Message: "unable to look up booking"}
	}
	return b, nil
}

// CancelBooking deletes a booking by id and dispatches a cancelled event. The
// slot becomes bookable again immediately.
func (e *Engine) CancelBooking(ctx context.Context, id string) (model.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return model.Booking{}, &Error{Code: CodeValidation, Message: "booking id is required"}
	}
	b, ok, err := e.store.Cancel(ctx, id)
	if err != nil {
		e.logger.Error("cancel failed", "booking_id", id, "err", err)
		return model.Booking{}, &Error{Code: CodeInternal, Message: "unable to cancel booking"}
	}
	if !ok {
		return model.Booking{}, &Error{Code: CodeNotFound, Message: "no booking found for that id"}
	}

	e.logger.Info("booking cancelled", "booking_id", b.ID, "slot_id", b.SlotID)
	if e.dispatcher != nil {
		e.dispatcher.Dispatch(notify.Event{
			Type:        notify.EventCancelled,
			Booking:     b,
			DisplayDate: slots.FullDate(b.Date, e.cfg.Location),
			DisplayTime: slots.DisplayRange(b.Time, e.cfg.DurationMinutes),
			ClergyName:  e.clergyName,
			Location:    e.location,
		})
	}
	return b, nil
}

func (e *Engine) validate(req model.BookingRequest) error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"phone", req.Phone},
		{"date", req.Date},
		{"time", req.Time},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &Error{Code: CodeValidation, Message: "missing required fields: " + strings.Join(missing, ", ")}
	}

	if !emailPattern.MatchString(req.Email) {
		return &Error{Code: CodeValidation, Message: "invalid email address"}
	}
	if n := len(digitsOf(req.Phone)); n != 10 && n != 11 {
		return &Error{Code: CodeValidation, Message: "phone number must contain 10 or 11 digits"}
	}

	if _, err := slots.ParseDate(req.Date, e.cfg.Location); err != nil {
		return &Error{Code: CodeValidation, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", req.Date)}
	}
	if !e.cfg.IsAppointmentDay(req.Date) {
		return &Error{Code: CodeInvalidDay, Message: fmt.Sprintf("confessions are not held on %ss", slots.DayName(req.Date, e.cfg.Location))}
	}
	if slots.IsPast(req.Date, e.now(), e.cfg.Location) {
		return &Error{Code: CodePastDate, Message: "cannot book an appointment in the past"}
	}
	if !e.cfg.HasTimeSlot(req.Time) {
		return &Error{Code: CodeInvalidTime, Message: fmt.Sprintf("%s is not an available time slot", req.Time)}
	}
	return nil
}

func (e *Engine) confirmation(b model.Booking) Confirmation {
	return Confirmation{
		ConfirmationNumber: b.ConfirmationNumber,
		Date:               b.Date,
		Time:               b.Time,
		DisplayDate:        slots.FullDate(b.Date, e.cfg.Location),
		DisplayTime:        slots.DisplayRange(b.Time, e.cfg.DurationMinutes),
		ClergyName:         e.clergyName,
		Location:           e.location,
		FirstName:          b.FirstName,
		LastName:           b.LastName,
		Email:              b.Email,
		Phone:              FormatPhone(b.Phone),
	}
}

func trimRequest(req model.BookingRequest) model.BookingRequest {
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	return req
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a 10-digit (or 1-prefixed 11-digit) number as
// "(615) 555-1234". Anything else is returned as given.
func FormatPhone(phone string) string {
	d := digitsOf(phone)
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
}
