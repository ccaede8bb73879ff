package slots

import (
	"sort"
	"time"
)

const (
	MinWeeks     = 1
	MaxWeeks     = 12
	DefaultWeeks = 8
)

// TimeSlot is one bookable start time on one day.
type TimeSlot struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	DisplayTime string `json:"displayTime"`
	Date        string `json:"date"`
	IsBooked    bool   `json:"isBooked"`
}

// Day groups the slots of a single appointment day.
type Day struct {
	Date      string     `json:"date"`
	DayOfWeek string     `json:"dayOfWeek"`
	DayAbbrev string     `json:"dayAbbrev"`
	DayNumber int        `json:"dayNumber"`
	Month     string     `json:"month"`
	Slots     []TimeSlot `json:"slots"`
}

// Week groups days starting from a Sunday.
type Week struct {
	WeekStart string `json:"weekStart"`
	Days      []Day  `json:"days"`
}

// Availability is the derived week/day/slot view. It is recomputed per
// request and never a source of truth; bookedness is enforced on reserve.
type Availability struct {
	Timezone       string   `json:"timezone"`
	TimezoneAbbrev string   `json:"timezoneAbbrev"`
	Weeks          []Week   `json:"weeks"`
	AvailableDates []string `json:"availableDates"`
}

// ClampWeeks bounds a requested window to [MinWeeks, MaxWeeks], substituting
// the default for non-positive input.
func ClampWeeks(weeks int) int {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	if weeks < MinWeeks {
		return MinWeeks
	}
	if weeks > MaxWeeks {
		return MaxWeeks
	}
	return weeks
}

// Generate walks week-by-week from the Sunday on or before startDate and
// builds the availability tree for the given number of weeks. booked is a
// point-in-time snapshot of taken slot ids; now decides which dates are past.
//
// Days in the past or outside the configured weekdays are skipped entirely,
// and weeks with no eligible days are pruned, so clients never render dead
// calendar cells.
func Generate(cfg Config, startDate time.Time, weeks int, booked map[string]struct{}, now time.Time) Availability {
	weeks = ClampWeeks(weeks)

	resp := Availability{
		Timezone:       cfg.TimezoneName,
		TimezoneAbbrev: TimezoneAbbrev(cfg.Location, now),
		Weeks:          []Week{},
		AvailableDates: []string{},
	}

	availableDates := map[string]struct{}{}
	weekStart := StartOfWeek(startDate.In(cfg.Location))

	for w := 0; w < weeks; w++ {
		var days []Day
		for d := 0; d < 7; d++ {
			day := weekStart.AddDate(0, 0, d)
			date := day.Format(DateLayout)

			if IsPast(date, now, cfg.Location) {
				continue
			}
			if !cfg.AvailableDays[day.Weekday()] {
				continue
			}

			daySlots := make([]TimeSlot, 0, len(cfg.TimeSlots))
			for _, tm := range cfg.TimeSlots {
				id := SlotID(date, tm)
				_, taken := booked[id]
				daySlots = append(daySlots, TimeSlot{
					ID:          id,
					Time:        tm,
					DisplayTime: DisplayTime(tm),
					Date:        date,
					IsBooked:    taken,
				})
				if !taken {
					availableDates[date] = struct{}{}
				}
			}

			if len(daySlots) > 0 {
				days = append(days, Day{
					Date:      date,
					DayOfWeek: day.Format("Monday"),
					DayAbbrev: day.Format("Mon"),
					DayNumber: day.Day(),
					Month:     day.Format("Jan"),
					Slots:     daySlots,
				})
			}
		}

		if len(days) > 0 {
			resp.Weeks = append(resp.Weeks, Week{
				WeekStart: weekStart.Format(DateLayout),
				Days:      days,
			})
		}
		weekStart = weekStart.AddDate(0, 0, 7)
	}

	for date := range availableDates {
		resp.AvailableDates = append(resp.AvailableDates, date)
	}
	sort.Strings(resp.AvailableDates)
	return resp
}
