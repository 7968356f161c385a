package refdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/planfab/aps-engine/internal/domain/shared"
)

// ShiftCalendar resolves the abstract "HH:MM" shift definitions into
// concrete time windows around a given instant. A shift whose end is at
// or before its start wraps past midnight; "24:00" means 00:00 of the
// next day.
type ShiftCalendar struct {
	shifts []Shift
}

// NewShiftCalendar builds a calendar over the ordered shift list
func NewShiftCalendar(shifts []Shift) *ShiftCalendar {
	return &ShiftCalendar{shifts: shifts}
}

// Empty reports whether no shifts are configured
func (c *ShiftCalendar) Empty() bool {
	return len(c.shifts) == 0
}

// parseHHMM parses "HH:MM" into minutes past midnight. "24:00" yields 1440.
func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid shift time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid shift time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid shift time %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("shift time %q out of range", s)
	}
	return h*60 + m, nil
}

// windowOn anchors a shift on the given calendar day. Returns false when
// the shift definition cannot be parsed.
func (c *ShiftCalendar) windowOn(s Shift, day time.Time) (shared.Interval, bool) {
	startMin, err := parseHHMM(s.StartTime)
	if err != nil {
		return shared.Interval{}, false
	}
	endMin, err := parseHHMM(s.EndTime)
	if err != nil {
		return shared.Interval{}, false
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	start := midnight.Add(time.Duration(startMin) * time.Minute)
	end := midnight.Add(time.Duration(endMin) * time.Minute)
	if endMin <= startMin {
		// Night shift wrapping past midnight, or "24:00"
		end = end.Add(24 * time.Hour)
	}
	return shared.NewInterval(start, end), true
}

// Containing returns the concrete window of the shift that contains t.
// Shifts anchored on t's day and the previous day are considered so night
// shifts that began yesterday still match.
func (c *ShiftCalendar) Containing(t time.Time) (Shift, shared.Interval, bool) {
	for _, day := range []time.Time{t.AddDate(0, 0, -1), t} {
		for _, s := range c.shifts {
			window, ok := c.windowOn(s, day)
			if ok && window.Contains(t) {
				return s, window, true
			}
		}
	}
	return Shift{}, shared.Interval{}, false
}

// NextStart returns the earliest shift start strictly after t. The second
// return is false when no shift definition parses.
func (c *ShiftCalendar) NextStart(t time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, day := range []time.Time{t, t.AddDate(0, 0, 1)} {
		for _, s := range c.shifts {
			window, ok := c.windowOn(s, day)
			if !ok {
				continue
			}
			if window.Start.After(t) && (!found || window.Start.Before(best)) {
				best = window.Start
				found = true
			}
		}
	}
	return best, found
}
