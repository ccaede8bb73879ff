package slots

import (
	"fmt"
	"sort"
	"time"
)

// Config is the confession scheduler configuration. It is parsed once at
// startup and never mutated.
type Config struct {
	DurationMinutes int
	AvailableDays   map[time.Weekday]bool
	TimeSlots       []string // "15:04" start times, identical on every available day
	Location        *time.Location
	TimezoneName    string
}

// NewConfig validates and normalizes the raw scheduler settings.
// Days use 0=Sunday..6=Saturday, matching the admin UI.
func NewConfig(durationMinutes int, days []int, timeSlots []string, timezone string) (Config, error) {
	if durationMinutes <= 0 {
		return Config{}, fmt.Errorf("appointment duration must be positive (got %d)", durationMinutes)
	}
	if len(days) == 0 {
		return Config{}, fmt.Errorf("at least one available day is required")
	}
	if len(timeSlots) == 0 {
		return Config{}, fmt.Errorf("at least one time slot is required")
	}

	available := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return Config{}, fmt.Errorf("day of week out of range: %d", d)
		}
		available[time.Weekday(d)] = true
	}

	seen := make(map[string]bool, len(timeSlots))
	normalized := make([]string, 0, len(timeSlots))
	for _, ts := range timeSlots {
		t, err := time.Parse(TimeLayout, ts)
		if err != nil {
			return Config{}, fmt.Errorf("invalid time slot %q: %w", ts, err)
		}
		ts = t.Format(TimeLayout)
		if seen[ts] {
			continue
		}
		seen[ts] = true
		normalized = append(normalized, ts)
	}
	sort.Strings(normalized)

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	return Config{
		DurationMinutes: durationMinutes,
		AvailableDays:   available,
		TimeSlots:       normalized,
		Location:        loc,
		TimezoneName:    timezone,
	}, nil
}

// HasTimeSlot reports whether tm is one of the configured start times.
func (c Config) HasTimeSlot(tm string) bool {
	for _, ts := range c.TimeSlots {
		if ts == tm {
			return true
		}
	}
	return false
}
