package worker

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared across tests; promauto registers with the default registry and a
// second NewWorkerMetrics call would panic on duplicate registration.
var globalTestMetrics = NewWorkerMetrics()

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0 7 * * *", cfg.CronSchedule)
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, 4, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CronSchedule = "not a cron"
	cfg.Timezone = "Mars/Olympus"
	cfg.NotifyMaxConcurrent = 0
	cfg.RunTimeout = -time.Second
	cfg.HealthPort = 80

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cron schedule")
	assert.Contains(t, err.Error(), "timezone")
	assert.Contains(t, err.Error(), "health port")
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "15 6 * * 1")
	t.Setenv("WORKER_TIMEZONE", "UTC")
	t.Setenv("NOTIFY_MAX_CONCURRENT", "8")
	t.Setenv("RUN_TIMEOUT", "45m")
	t.Setenv("WORKER_HEALTH_PORT", "9191")

	cfg, err := LoadConfigFromEnv(slog.Default(), globalTestMetrics)
	require.NoError(t, err)

	assert.Equal(t, "15 6 * * 1", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 8, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 45*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 9191, cfg.HealthPort)
}

func TestLoadConfigFromEnvFallsBack(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "every tuesday")
	t.Setenv("WORKER_TIMEZONE", "Mars/Olympus")
	t.Setenv("NOTIFY_MAX_CONCURRENT", "9000")
	t.Setenv("RUN_TIMEOUT", "10h")

	cfg, err := LoadConfigFromEnv(slog.Default(), globalTestMetrics)
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.CronSchedule, cfg.CronSchedule)
	assert.Equal(t, defaults.Timezone, cfg.Timezone)
	assert.Equal(t, defaults.NotifyMaxConcurrent, cfg.NotifyMaxConcurrent)
	assert.Equal(t, defaults.RunTimeout, cfg.RunTimeout)
	assert.NoError(t, cfg.Validate())
}
