package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSink mails booking confirmations and cancellation notices over
// unauthenticated SMTP (Mailpit-compatible in development).
type EmailSink struct {
	addr string
	from string
}

func NewEmailSink(host, port, from string) *EmailSink {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil
	}
	port = strings.TrimSpace(port)
	if port == "" {
		port = "25"
	}
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@stkyrillos.local"
	}
	return &EmailSink{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (s *EmailSink) Send(_ context.Context, e Event) error {
	var subject, body string
	switch e.Type {
	case EventBooked:
		subject = "Confession Appointment Confirmed - " + e.Booking.ConfirmationNumber
		body = fmt.Sprintf(
			"Dear %s %s,\n\n"+
				"Your confession appointment is confirmed.\n\n"+
				"Confirmation number: %s\n"+
				"Date: %s\n"+
				"Time: %s\n"+
				"With: %s\n"+
				"Location: %s\n\n"+
				"If you need to cancel or reschedule, please contact the church office\n"+
				"and reference your confirmation number.\n",
			e.Booking.FirstName, e.Booking.LastName,
			e.Booking.ConfirmationNumber,
			e.DisplayDate,
			e.DisplayTime,
			e.ClergyName,
			e.Location,
		)
	case EventCancelled:
		subject = "Confession Appointment Cancelled - " + e.Booking.ConfirmationNumber
		body = fmt.Sprintf(
			"Dear %s %s,\n\n"+
				"Your confession appointment on %s at %s has been cancelled.\n\n"+
				"You are welcome to book another time on the parish website.\n",
			e.Booking.FirstName, e.Booking.LastName,
			e.DisplayDate, e.DisplayTime,
		)
	default:
		return nil
	}

	msg := buildMessage(s.from, e.Booking.Email, subject, body)
	return smtp.SendMail(s.addr, nil, s.from, []string{e.Booking.Email}, []byte(msg))
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
