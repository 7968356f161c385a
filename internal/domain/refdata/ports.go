package refdata

import (
	"context"
	"sync"
)

// ReferenceDataPort loads a per-run snapshot of the reference tables.
// Lookups against the snapshot return "not found" rather than errors;
// only the load itself can fail.
type ReferenceDataPort interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// SequencePort allocates monotonic per-kind identifier sequences for MES
// plan ids. Kinds are "HWS" and "HJB". Next must be atomically monotonic
// across concurrent pipeline runs and survive process restarts.
type SequencePort interface {
	Next(ctx context.Context, kind string) (uint64, error)
}

// InMemorySequence is a process-local SequencePort for dry runs and
// tests. Values reset on restart, so it must never feed a real MES
// export.
type InMemorySequence struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewInMemorySequence creates an empty in-memory sequence
func NewInMemorySequence() *InMemorySequence {
	return &InMemorySequence{counters: make(map[string]uint64)}
}

// Next increments and returns the counter for the given kind
func (s *InMemorySequence) Next(_ context.Context, kind string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[kind]++
	return s.counters[kind], nil
}
