package split

import (
	"sync"

	"github.com/planfab/aps-engine/internal/domain/shared"
)

// feederSchedule tracks the intervals already booked on one feeder
// machine. It is the only mutable structure the splitter shares; the
// mutex lets feeder groups be processed on independent workers.
type feederSchedule struct {
	mu     sync.Mutex
	booked []shared.Interval
}

func newFeederSchedule() *feederSchedule {
	return &feederSchedule{}
}

// book places the interval on the feeder, pushing its start past any
// conflicting bookings while preserving duration. Returns the booked
// interval and whether it had to be shifted. Conflict detection uses
// strict overlap: intervals that merely touch do not conflict.
func (f *feederSchedule) book(interval shared.Interval) (shared.Interval, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	adjusted := false
	duration := interval.Duration()
	for {
		latestEnd := interval.Start
		conflict := false
		for _, b := range f.booked {
			if interval.Overlaps(b) {
				conflict = true
				if b.End.After(latestEnd) {
					latestEnd = b.End
				}
			}
		}
		if !conflict {
			break
		}
		// Shifting past one booking can collide with a later one, so
		// re-check until the window is free
		interval = shared.NewInterval(latestEnd, latestEnd.Add(duration))
		adjusted = true
	}

	f.booked = append(f.booked, interval)
	return interval, adjusted
}
