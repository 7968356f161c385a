package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planfab/aps-engine/internal/domain/shared"
)

// GormSequenceRepository allocates monotonic per-kind sequence values
// backed by the sequence_counters table. Each allocation locks the
// counter row, so concurrent pipeline runs never see the same value.
type GormSequenceRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSequenceRepository creates a new GORM sequence repository
func NewGormSequenceRepository(db *gorm.DB, clock shared.Clock) *GormSequenceRepository {
	return &GormSequenceRepository{db: db, clock: clock}
}

// Next increments and returns the counter for the given kind ("HWS" or
// "HJB"). The counter row is created lazily on first use.
func (r *GormSequenceRepository) Next(ctx context.Context, kind string) (uint64, error) {
	var value uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter SequenceCounterModel
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ?", kind).
			First(&counter)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to lock sequence counter %s: %w", kind, result.Error)
			}
			counter = SequenceCounterModel{Kind: kind}
		}

		counter.Value++
		counter.UpdatedAt = r.clock.Now()
		if err := tx.Save(&counter).Error; err != nil {
			return fmt.Errorf("failed to advance sequence counter %s: %w", kind, err)
		}

		value = counter.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
