// Package db handles database connection setup and schema bootstrap for the
// event store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"event-radar/internal/pkg/config"
	"event-radar/internal/resilience/retry"
)

// Open connects to PostgreSQL using the pgx stdlib driver and verifies the
// connection with a ping. Pool sizing is loaded from environment variables.
//
// Environment variables:
//   - DB_MAX_OPEN_CONNS: Max open connections (default: 10, range: 1-100)
//   - DB_MAX_IDLE_CONNS: Max idle connections (default: 5, range: 0-100)
//   - DB_CONN_MAX_LIFETIME: Connection lifetime (default: 30m)
func Open(dsn string) (*sql.DB, error) {
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	maxOpen := config.LoadEnvInt("DB_MAX_OPEN_CONNS", 10, config.IntRangeValidator(1, 100))
	maxIdle := config.LoadEnvInt("DB_MAX_IDLE_CONNS", 5, config.IntRangeValidator(0, 100))
	lifetime := config.LoadEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, config.ValidatePositiveDuration)
	for _, warnings := range [][]string{maxOpen.Warnings, maxIdle.Warnings, lifetime.Warnings} {
		for _, w := range warnings {
			slog.Warn("db config fallback", slog.String("warning", w))
		}
	}

	database.SetMaxOpenConns(maxOpen.Value.(int))
	database.SetMaxIdleConns(maxIdle.Value.(int))
	database.SetConnMaxLifetime(lifetime.Value.(time.Duration))

	if err := pingWithRetry(context.Background(), database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return database, nil
}

// pingWithRetry verifies the connection, riding out transient startup
// failures such as the database container still coming up.
func pingWithRetry(ctx context.Context, database *sql.DB) error {
	return retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		return database.PingContext(ctx)
	})
}
