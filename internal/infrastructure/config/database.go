package config

import "time"

// DatabaseConfig selects and parameterises the scheduling database.
// Production runs write MES orders to the plant's PostgreSQL instance;
// sqlite (file or :memory:) covers local runs and tests.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL, when set, wins over the individual postgres fields below.
	// Deployment environments inject it as DATABASE_URL.
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Path is the sqlite database file; empty means in-memory
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig bounds the postgres connection pool. A scheduling run is a
// single short-lived batch process, so the pool only needs to cover one
// run's reference loads plus the final persist transaction.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
