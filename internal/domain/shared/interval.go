package shared

import (
	"fmt"
	"time"
)

// Interval is a half-open time interval [Start, End) on the plant-local clock.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval creates an interval. End must be after Start; callers that
// cannot guarantee that should check Valid() before using the interval.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Valid reports whether the interval has positive duration
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Duration returns End - Start
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports strict overlap with another interval:
// two intervals that merely touch at an endpoint do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return !(!i.End.After(other.Start) || !other.End.After(i.Start))
}

// Contains reports whether t falls inside [Start, End)
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Shift returns the interval moved forward by d, preserving duration
func (i Interval) Shift(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(d), End: i.End.Add(d)}
}

// String provides human-readable representation
func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format("2006-01-02 15:04"), i.End.Format("2006-01-02 15:04"))
}
