package journal

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported journal driver")
	ErrMissingDSN        = errors.New("journal dsn is required")
	ErrInvalidPool       = errors.New("max open connections must be >= 0")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains journal database settings
type Config struct {
	Driver string `mapstructure:"driver"`

	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `mapstructure:"dsn"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`
}

// SQLiteConfig returns a configuration for a sqlite file at path.
func SQLiteConfig(path string) Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             path,
		MaxOpenConns:    1, // sqlite serializes writers
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  10 * time.Second,
	}
}

// PostgresConfig returns a configuration for a postgres URL.
func PostgresConfig(url string) Config {
	return Config{
		Driver:          DriverPostgres,
		DSN:             url,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// Validate normalizes driver aliases and checks the settings.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite", "sqlite3":
		c.Driver = DriverSQLite
	case "postgres", "postgresql":
		c.Driver = DriverPostgres
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
	if c.DSN == "" {
		return ErrMissingDSN
	}
	if c.MaxOpenConns < 0 {
		return ErrInvalidPool
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// dsn adds the pragmas the journal relies on for sqlite.
func (c *Config) dsn() string {
	if c.Driver != DriverSQLite {
		return c.DSN
	}
	return c.DSN + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
