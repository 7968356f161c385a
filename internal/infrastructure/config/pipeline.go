package config

import (
	"time"

	"github.com/planfab/aps-engine/internal/application/scheduling"
)

// PipelineConfig holds the scheduling pipeline options. Stage flags let
// operators disable individual stages during data migration or debugging;
// a disabled stage passes its input through unchanged.
type PipelineConfig struct {
	MergeEnabled      bool `mapstructure:"merge_enabled"`
	SplitEnabled      bool `mapstructure:"split_enabled"`
	CorrectionEnabled bool `mapstructure:"correction_enabled"`
	ParallelEnabled   bool `mapstructure:"parallel_enabled"`

	// SpecialBrands lists article names that never merge
	SpecialBrands []string `mapstructure:"special_brands"`

	ShiftClampMaxHours       int `mapstructure:"shift_clamp_max_hours" validate:"omitempty,min=1"`
	SetupMinutesDefault      int `mapstructure:"setup_minutes_default" validate:"omitempty,min=0"`
	ChangeoverMinutesDefault int `mapstructure:"changeover_minutes_default" validate:"omitempty,min=0"`
	SpeedToleranceMinutes    int `mapstructure:"speed_tolerance_minutes" validate:"omitempty,min=0"`

	// RunDeadline bounds one whole pipeline run
	RunDeadline time.Duration `mapstructure:"run_deadline"`
}

// ToScheduling converts the infrastructure config into the application
// layer's pipeline config
func (c PipelineConfig) ToScheduling() scheduling.Config {
	return scheduling.Config{
		MergeEnabled:             c.MergeEnabled,
		SplitEnabled:             c.SplitEnabled,
		CorrectionEnabled:        c.CorrectionEnabled,
		ParallelEnabled:          c.ParallelEnabled,
		SpecialBrands:            c.SpecialBrands,
		ShiftClampMaxHours:       c.ShiftClampMaxHours,
		SetupMinutesDefault:      c.SetupMinutesDefault,
		ChangeoverMinutesDefault: c.ChangeoverMinutesDefault,
		SpeedToleranceMinutes:    c.SpeedToleranceMinutes,
		RunDeadline:              c.RunDeadline,
	}
}
