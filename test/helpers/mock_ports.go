package helpers

import (
	"context"
	"fmt"

	"github.com/planfab/aps-engine/internal/domain/refdata"
)

// StaticReferenceData is a ReferenceDataPort serving a fixed snapshot
type StaticReferenceData struct {
	Snapshot *refdata.Snapshot
	Err      error
}

// NewStaticReferenceData builds a port around the given reference rows
func NewStaticReferenceData(
	speeds []refdata.MachineSpeed,
	maintenances []refdata.MaintenancePlan,
	shifts []refdata.Shift,
	relations []refdata.MachineRelation,
) *StaticReferenceData {
	return &StaticReferenceData{
		Snapshot: refdata.NewSnapshot(speeds, maintenances, shifts, relations),
	}
}

// LoadSnapshot returns the fixed snapshot or the configured error
func (s *StaticReferenceData) LoadSnapshot(ctx context.Context) (*refdata.Snapshot, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Snapshot, nil
}

// FailingSequence is a SequencePort whose allocations always fail,
// used to exercise the generator's fallback path
type FailingSequence struct{}

// Next always returns an error
func (FailingSequence) Next(ctx context.Context, kind string) (uint64, error) {
	return 0, fmt.Errorf("sequence service unavailable")
}
