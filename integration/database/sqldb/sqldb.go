package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrEmptyDSN          = errors.New("empty database DSN")
	ErrFailedToOpen      = errors.New("failed to open database")
	ErrHealthcheckFailed = errors.New("database healthcheck failed")
	ErrNilDB             = errors.New("database handle cannot be nil")
)

// Config holds database/sql pool settings, loadable with config.Load.
type Config struct {
	Driver          string        `env:"SQL_DRIVER" envDefault:"pgx"`
	DSN             string        `env:"SQL_DSN,required"`
	MaxOpenConns    int           `env:"SQL_MAX_OPEN_CONNS" envDefault:"100"`
	MaxIdleConns    int           `env:"SQL_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"SQL_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"SQL_CONN_MAX_IDLE_TIME" envDefault:"10m"`
}

// Open opens a pool for a registered database/sql driver, applies the pool
// settings and pings it.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, ErrEmptyDSN
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}

	Configure(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	return db, nil
}

// Configure applies the pool settings of cfg to db.
func Configure(db *sql.DB, cfg Config) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// Healthcheck returns a function that pings db.
func Healthcheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
