package config

import (
	"time"

	"github.com/planfab/aps-engine/internal/application/scheduling"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "aps"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "aps"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	// One-shot batch process: a handful of connections covers the
	// reference loads and the final persist transaction
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 5
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 30 * time.Minute
	}

	// Pipeline defaults
	if len(cfg.Pipeline.SpecialBrands) == 0 {
		cfg.Pipeline.SpecialBrands = scheduling.DefaultSpecialBrands()
	}
	if cfg.Pipeline.ShiftClampMaxHours == 0 {
		cfg.Pipeline.ShiftClampMaxHours = 24
	}
	if cfg.Pipeline.SetupMinutesDefault == 0 {
		cfg.Pipeline.SetupMinutesDefault = 30
	}
	if cfg.Pipeline.ChangeoverMinutesDefault == 0 {
		cfg.Pipeline.ChangeoverMinutesDefault = 15
	}
	if cfg.Pipeline.SpeedToleranceMinutes == 0 {
		cfg.Pipeline.SpeedToleranceMinutes = 30
	}
	if cfg.Pipeline.RunDeadline == 0 {
		cfg.Pipeline.RunDeadline = time.Hour
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
