// Package slots holds the pure date, time, and slot-identity arithmetic for
// the confession scheduler. Nothing here touches storage or the clock; callers
// pass "now" in so everything stays deterministic under test.
package slots

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Confirmation codes avoid visually confusable characters (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const CodeLength = 8

// SlotID derives the stable fingerprint of a (date, time) slot:
// ("2026-02-15", "10:00") -> "2026-02-15-10-00". Both inputs must already be
// in canonical layout; the result is unique per distinct pair.
func SlotID(date, tm string) string {
	return date + "-" + strings.ReplaceAll(tm, ":", "-")
}

// ParseSlotID is the exact inverse of SlotID for any id it produced.
func ParseSlotID(id string) (date, tm string, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		return "", "", fmt.Errorf("malformed slot id %q", id)
	}
	date = strings.Join(parts[:3], "-")
	tm = parts[3] + ":" + parts[4]
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", "", fmt.Errorf("malformed slot id %q: %w", id, err)
	}
	if _, err := time.Parse(TimeLayout, tm); err != nil {
		return "", "", fmt.Errorf("malformed slot id %q: %w", id, err)
	}
	return date, tm, nil
}

// ParseDate parses a canonical YYYY-MM-DD date in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, loc)
}

// DisplayTime renders a 24-hour "15:04" time in 12-hour form: "14:30" -> "2:30 PM".
// Inputs are validated upstream; an unparseable value is returned unchanged.
func DisplayTime(tm string) string {
	t, err := time.Parse(TimeLayout, tm)
	if err != nil {
		return tm
	}
	return t.Format("3:04 PM")
}

// EndTime adds durationMinutes to a "15:04" start, wrapping past midnight with
// full-minute arithmetic so a slot spanning 00:00 still renders correctly.
func EndTime(tm string, durationMinutes int) string {
	t, err := time.Parse(TimeLayout, tm)
	if err != nil {
		return tm
	}
	total := (t.Hour()*60 + t.Minute() + durationMinutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// DisplayRange renders a slot's full time range: ("10:00", 20) -> "10:00 AM - 10:20 AM".
func DisplayRange(tm string, durationMinutes int) string {
	return DisplayTime(tm) + " - " + DisplayTime(EndTime(tm, durationMinutes))
}

// FullDate renders "2026-02-15" as "Sunday, February 15, 2026".
func FullDate(date string, loc *time.Location) string {
	t, err := ParseDate(date, loc)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func ShortDate(date string, loc *time.Location) string {
	t, err := ParseDate(date, loc)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

func DayName(date string, loc *time.Location) string {
	t, err := ParseDate(date, loc)
	if err != nil {
		return ""
	}
	return t.Format("Monday")
}

func DayAbbrev(date string, loc *time.Location) string {
	t, err := ParseDate(date, loc)
	if err != nil {
		return ""
	}
	return t.Format("Mon")
}

func MonthAbbrev(date string, loc *time.Location) string {
	t, err := ParseDate(date, loc)
	if err != nil {
		return ""
	}
	return t.Format("Jan")
}

func DayNumber(date string, loc *time.Location) int {
	t, err := ParseDate(date, loc)
	if err != nil {
		return 0
	}
	return t.Day()
}

// IsAppointmentDay reports whether the date falls on a configured day of week.
func (c Config) IsAppointmentDay(date string) bool {
	t, err := ParseDate(date, c.Location)
	if err != nil {
		return false
	}
	return c.AvailableDays[t.Weekday()]
}

// IsPast compares at day granularity in loc: today is never past, regardless
// of how many of its slots have already elapsed.
func IsPast(date string, now time.Time, loc *time.Location) bool {
	return date < now.In(loc).Format(DateLayout)
}

// Today returns the current date string in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// StartOfWeek returns midnight of the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// CalendarGrid returns the dates shown for a month view: every day of the
// month plus leading days back to Sunday and trailing days out to Saturday.
// The result length is always a multiple of 7.
func CalendarGrid(year int, month time.Month, loc *time.Location) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// TimezoneDisplay renders loc as e.g. "(GMT-06:00) Chicago".
func TimezoneDisplay(loc *time.Location, now time.Time) string {
	_, offset := now.In(loc).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	city := loc.String()
	if i := strings.LastIndex(city, "/"); i >= 0 {
		city = city[i+1:]
	}
	city = strings.ReplaceAll(city, "_", " ")
	return fmt.Sprintf("(GMT%s%02d:%02d) %s", sign, offset/3600, (offset%3600)/60, city)
}

// TimezoneAbbrev returns the short zone name in effect at now, e.g. "CST" or "CDT".
func TimezoneAbbrev(loc *time.Location, now time.Time) string {
	name, _ := now.In(loc).Zone()
	return name
}

// ConfirmationCode returns an 8-character code from the unambiguous alphabet.
// Uniqueness is not guaranteed here; the booking store retries on collision.
func ConfirmationCode() string {
	var b [CodeLength]byte
	_, _ = rand.Read(b[:])
	out := make([]byte, CodeLength)
	for i, v := range b {
		// len(codeAlphabet) == 32 divides 256, so no modulo bias.
		out[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}
	return string(out)
}
