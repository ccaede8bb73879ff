package slots

import (
	"strings"
	"testing"
	"time"
)

func TestSlotIDRoundTrip(t *testing.T) {
	cases := []struct{ date, tm string }{
		{"2026-02-15", "10:00"},
		{"2026-12-31", "23:30"},
		{"2026-01-01", "00:00"},
	}
	for _, c := range cases {
		id := SlotID(c.date, c.tm)
		date, tm, err := ParseSlotID(id)
		if err != nil {
			t.Fatalf("ParseSlotID(%q) failed: %v", id, err)
		}
		if date != c.date || tm != c.tm {
			t.Fatalf("round trip mismatch: got (%q, %q), want (%q, %q)", date, tm, c.date, c.tm)
		}
	}
}

func TestSlotIDFormat(t *testing.T) {
	if got := SlotID("2026-02-15", "10:00"); got != "2026-02-15-10-00" {
		t.Fatalf("unexpected slot id: %q", got)
	}
}

func TestParseSlotIDMalformed(t *testing.T) {
	for _, id := range []string{"", "2026-02-15", "2026-02-15-10", "not-a-slot-id-xx", "2026-13-45-99-99"} {
		if _, _, err := ParseSlotID(id); err == nil {
			t.Fatalf("expected error for %q", id)
		}
	}
}

func TestDisplayTime(t *testing.T) {
	cases := map[string]string{
		"10:00": "10:00 AM",
		"14:30": "2:30 PM",
		"00:05": "12:05 AM",
		"12:00": "12:00 PM",
	}
	for in, want := range cases {
		if got := DisplayTime(in); got != want {
			t.Fatalf("DisplayTime(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEndTime(t *testing.T) {
	if got := EndTime("10:00", 20); got != "10:20" {
		t.Fatalf("EndTime = %q, want 10:20", got)
	}
	if got := EndTime("23:50", 20); got != "00:10" {
		t.Fatalf("midnight wrap: EndTime = %q, want 00:10", got)
	}
	if got := EndTime("23:50", 10); got != "00:00" {
		t.Fatalf("exactly midnight: EndTime = %q, want 00:00", got)
	}
}

func TestDisplayRange(t *testing.T) {
	if got := DisplayRange("10:00", 20); got != "10:00 AM - 10:20 AM" {
		t.Fatalf("DisplayRange = %q", got)
	}
}

func TestIsPast(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 2, 16, 23, 30, 0, 0, loc)
	if IsPast("2026-02-16", now, loc) {
		t.Fatal("today must never be past")
	}
	if !IsPast("2026-02-15", now, loc) {
		t.Fatal("yesterday must be past")
	}
	if IsPast("2026-02-17", now, loc) {
		t.Fatal("tomorrow must not be past")
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2026-02-18 is a Wednesday; its week starts Sunday 2026-02-15.
	wed := time.Date(2026, 2, 18, 15, 4, 5, 0, time.UTC)
	got := StartOfWeek(wed)
	if got.Format(DateLayout) != "2026-02-15" {
		t.Fatalf("StartOfWeek = %s", got.Format(DateLayout))
	}
	if got.Weekday() != time.Sunday || got.Hour() != 0 {
		t.Fatalf("expected Sunday midnight, got %s", got)
	}
	// A Sunday is its own week start.
	sun := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	if StartOfWeek(sun).Format(DateLayout) != "2026-02-15" {
		t.Fatal("Sunday should be its own week start")
	}
}

func TestCalendarGrid(t *testing.T) {
	for _, tc := range []struct {
		year  int
		month time.Month
	}{
		{2026, time.February},
		{2026, time.March},
		{2024, time.February}, // leap year
		{2026, time.August},
	} {
		grid := CalendarGrid(tc.year, tc.month, time.UTC)
		if len(grid)%7 != 0 {
			t.Fatalf("%d-%d: grid length %d not divisible by 7", tc.year, tc.month, len(grid))
		}
		if grid[0].Weekday() != time.Sunday {
			t.Fatalf("%d-%d: grid starts on %s", tc.year, tc.month, grid[0].Weekday())
		}
		if grid[len(grid)-1].Weekday() != time.Saturday {
			t.Fatalf("%d-%d: grid ends on %s", tc.year, tc.month, grid[len(grid)-1].Weekday())
		}

		seen := map[int]bool{}
		for _, d := range grid {
			if d.Month() == tc.month {
				seen[d.Day()] = true
			}
		}
		last := time.Date(tc.year, tc.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
		for day := 1; day <= last.Day(); day++ {
			if !seen[day] {
				t.Fatalf("%d-%d: grid missing day %d", tc.year, tc.month, day)
			}
		}
	}
}

func TestConfirmationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := ConfirmationCode()
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		for _, banned := range "01OI" {
			if strings.ContainsRune(code, banned) {
				t.Fatalf("code %q contains ambiguous character %q", code, banned)
			}
		}
	}
}

func TestFullDate(t *testing.T) {
	if got := FullDate("2026-02-15", time.UTC); got != "Sunday, February 15, 2026" {
		t.Fatalf("FullDate = %q", got)
	}
}

func TestTimezoneDisplay(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}
	// January is CST (UTC-6).
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	if got := TimezoneDisplay(loc, now); got != "(GMT-06:00) Chicago" {
		t.Fatalf("TimezoneDisplay = %q", got)
	}
	if got := TimezoneAbbrev(loc, now); got != "CST" {
		t.Fatalf("TimezoneAbbrev = %q", got)
	}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(20, []int{0, 6}, []string{"18:30", "18:00", "18:00"}, "UTC")
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if !cfg.AvailableDays[time.Sunday] || !cfg.AvailableDays[time.Saturday] || cfg.AvailableDays[time.Monday] {
		t.Fatalf("unexpected available days: %v", cfg.AvailableDays)
	}
	if len(cfg.TimeSlots) != 2 || cfg.TimeSlots[0] != "18:00" || cfg.TimeSlots[1] != "18:30" {
		t.Fatalf("expected deduped sorted slots, got %v", cfg.TimeSlots)
	}
	if !cfg.HasTimeSlot("18:30") || cfg.HasTimeSlot("19:00") {
		t.Fatal("HasTimeSlot mismatch")
	}

	if _, err := NewConfig(0, []int{0}, []string{"10:00"}, "UTC"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := NewConfig(20, []int{7}, []string{"10:00"}, "UTC"); err == nil {
		t.Fatal("expected error for day out of range")
	}
	if _, err := NewConfig(20, []int{0}, []string{"25:00"}, "UTC"); err == nil {
		t.Fatal("expected error for invalid time slot")
	}
	if _, err := NewConfig(20, []int{0}, []string{"10:00"}, "Not/AZone"); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}
