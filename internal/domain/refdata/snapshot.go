package refdata

import (
	"sort"
	"time"
)

// Snapshot is an immutable per-run view of the four reference tables.
// It is loaded once at orchestrator entry and never mutated afterwards,
// so concurrent stage workers may read it without locking.
type Snapshot struct {
	speeds       map[speedKey][]MachineSpeed
	maintenances map[string][]MaintenancePlan
	shifts       []Shift
	relations    map[string][]MachineRelation
}

type speedKey struct {
	machine string
	article string
}

// NewSnapshot builds a snapshot from raw table rows. Maintenance windows
// are sorted by start time per machine; relations by priority per feeder.
func NewSnapshot(speeds []MachineSpeed, maintenances []MaintenancePlan, shifts []Shift, relations []MachineRelation) *Snapshot {
	s := &Snapshot{
		speeds:       make(map[speedKey][]MachineSpeed),
		maintenances: make(map[string][]MaintenancePlan),
		shifts:       shifts,
		relations:    make(map[string][]MachineRelation),
	}
	for _, sp := range speeds {
		key := speedKey{machine: sp.MachineCode, article: sp.ArticleNr}
		s.speeds[key] = append(s.speeds[key], sp)
	}
	for _, m := range maintenances {
		s.maintenances[m.MachineCode] = append(s.maintenances[m.MachineCode], m)
	}
	for code := range s.maintenances {
		windows := s.maintenances[code]
		sort.Slice(windows, func(i, j int) bool { return windows[i].StartTime.Before(windows[j].StartTime) })
		s.maintenances[code] = windows
	}
	for _, r := range relations {
		s.relations[r.FeederCode] = append(s.relations[r.FeederCode], r)
	}
	for code := range s.relations {
		rels := s.relations[code]
		sort.Slice(rels, func(i, j int) bool { return rels[i].Priority < rels[j].Priority })
		s.relations[code] = rels
	}
	return s
}

// SpeedFor looks up the speed row for (machine, article) at the given
// time. Falls back to the machine-wide default, then the product-wide
// wildcard. The second return is false when nothing matches.
func (s *Snapshot) SpeedFor(machineCode, articleNr string, at time.Time) (MachineSpeed, bool) {
	keys := []speedKey{
		{machine: machineCode, article: articleNr},
		{machine: machineCode, article: WildcardArticle},
		{machine: WildcardMachine, article: articleNr},
	}
	for _, key := range keys {
		for _, row := range s.speeds[key] {
			if row.EffectiveAt(at) {
				return row, true
			}
		}
	}
	return MachineSpeed{}, false
}

// MaintenanceFor returns the machine's maintenance windows sorted by
// start time. Nil when the machine has none.
func (s *Snapshot) MaintenanceFor(machineCode string) []MaintenancePlan {
	return s.maintenances[machineCode]
}

// Shifts returns the ordered shift list
func (s *Snapshot) Shifts() []Shift {
	return s.shifts
}

// HasRelations reports whether any machine relations were loaded;
// relation validation is skipped entirely when the table is empty
func (s *Snapshot) HasRelations() bool {
	return len(s.relations) > 0
}

// RelationExists reports whether the (feeder, maker) pair is present in
// the relation table
func (s *Snapshot) RelationExists(feederCode, makerCode string) bool {
	for _, r := range s.relations[feederCode] {
		if r.MakerCode == makerCode {
			return true
		}
	}
	return false
}

// MakersFor returns the makers a feeder may supply, preferred first
func (s *Snapshot) MakersFor(feederCode string) []string {
	rels := s.relations[feederCode]
	makers := make([]string, 0, len(rels))
	for _, r := range rels {
		makers = append(makers, r.MakerCode)
	}
	return makers
}
