// Package worker holds the scheduled-job plumbing: env-based configuration
// with fail-open fallback, the health check server, and job metrics.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"event-radar/internal/pkg/config"
)

// WorkerConfig controls the cron schedule and operational limits of the
// worker process. All fields have defaults; invalid environment values fall
// back with a warning rather than preventing the job from running.
type WorkerConfig struct {
	// CronSchedule is the five-field cron expression for the daily run.
	// Default: "0 7 * * *" (every day at 7:00).
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "America/Chicago".
	Timezone string

	// NotifyMaxConcurrent bounds concurrent digest deliveries.
	NotifyMaxConcurrent int

	// RunTimeout is the maximum duration of a single pipeline run.
	RunTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	HealthPort int
}

// DefaultConfig returns production-ready defaults: a morning run in Houston
// local time with a generous pipeline timeout.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:        "0 7 * * *",
		Timezone:            "America/Chicago",
		NotifyMaxConcurrent: 4,
		RunTimeout:          30 * time.Minute,
		HealthPort:          9091,
	}
}

// Validate checks all fields, aggregating errors.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration with a fail-open
// strategy: each invalid value falls back to its default, logs a warning,
// and bumps the fallback metrics. It never returns an error.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default "0 7 * * *")
//   - WORKER_TIMEZONE: IANA timezone (default "America/Chicago")
//   - NOTIFY_MAX_CONCURRENT: integer 1-50 (default 4)
//   - RUN_TIMEOUT: duration 1m-4h (default 30m)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, result config.LoadResult) config.LoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordConfigFallback(field)
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	cfg.CronSchedule = apply("cron_schedule",
		config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)).Value.(string)

	cfg.Timezone = apply("timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)).Value.(string)

	cfg.NotifyMaxConcurrent = apply("notify_max_concurrent",
		config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, config.IntRangeValidator(1, 50))).Value.(int)

	cfg.RunTimeout = apply("run_timeout",
		config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
			return config.ValidateDurationRange(d, time.Minute, 4*time.Hour)
		})).Value.(time.Duration)

	cfg.HealthPort = apply("health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, config.IntRangeValidator(1024, 65535))).Value.(int)

	metrics.SetConfigFallbackActive(fallbackApplied)
	metrics.RecordConfigLoad()

	return &cfg, nil
}
