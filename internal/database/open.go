package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"

	"github.com/minidebet/backend/internal/config"
	"github.com/minidebet/backend/internal/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// DSN builds the driver name and connection string for cfg.
func DSN(cfg config.DatabaseConfig) (driverName, dsn string) {
	if cfg.Driver == config.DriverSQLite {
		return "sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.Path)
	}
	return "postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// Open connects to the configured database and waits for it to answer a
// ping, backing off exponentially between attempts.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*sqlx.DB, error) {
	driverName, dsn := DSN(cfg)

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// one writer at a time; the busy timeout covers the rest
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewExponential(connectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			log.Warnw("database not ready", "driver", cfg.Driver, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Infow("database connection established", "driver", cfg.Driver)
	return db, nil
}
