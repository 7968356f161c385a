package scheduling

import "time"

// Config holds the pipeline options. Stage flags skip individual stages;
// the generator always runs.
type Config struct {
	MergeEnabled      bool
	SplitEnabled      bool
	CorrectionEnabled bool
	ParallelEnabled   bool

	// SpecialBrands lists article codes that never merge
	SpecialBrands []string

	ShiftClampMaxHours       int
	SetupMinutesDefault      int
	ChangeoverMinutesDefault int
	SpeedToleranceMinutes    int

	// RunDeadline bounds one whole pipeline run
	RunDeadline time.Duration
}

// DefaultSpecialBrands are the article codes excluded from merging.
// Both the full-width and half-width parenthesis spellings occur in the
// source spreadsheets.
func DefaultSpecialBrands() []string {
	return []string{"利群（新版印尼）", "利群(新版印尼)"}
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		MergeEnabled:             true,
		SplitEnabled:             true,
		CorrectionEnabled:        true,
		ParallelEnabled:          true,
		SpecialBrands:            DefaultSpecialBrands(),
		ShiftClampMaxHours:       24,
		SetupMinutesDefault:      30,
		ChangeoverMinutesDefault: 15,
		SpeedToleranceMinutes:    30,
		RunDeadline:              time.Hour,
	}
}
