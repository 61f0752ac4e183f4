package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvString(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		assert.Equal(t, "fallback", LoadEnvString("ER_TEST_UNSET", "fallback"))
	})

	t.Run("set returns value", func(t *testing.T) {
		t.Setenv("ER_TEST_STR", "custom")
		assert.Equal(t, "custom", LoadEnvString("ER_TEST_STR", "fallback"))
	})
}

func TestLoadEnvBool(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		assert.True(t, LoadEnvBool("ER_TEST_UNSET_BOOL", true))
		assert.False(t, LoadEnvBool("ER_TEST_UNSET_BOOL", false))
	})

	t.Run("true literal", func(t *testing.T) {
		t.Setenv("ER_TEST_BOOL", "true")
		assert.True(t, LoadEnvBool("ER_TEST_BOOL", false))
	})

	t.Run("numeric one", func(t *testing.T) {
		t.Setenv("ER_TEST_BOOL", "1")
		assert.True(t, LoadEnvBool("ER_TEST_BOOL", false))
	})

	t.Run("anything else is false", func(t *testing.T) {
		t.Setenv("ER_TEST_BOOL", "yes")
		assert.False(t, LoadEnvBool("ER_TEST_BOOL", true))
	})
}

func TestLoadEnvWithFallback(t *testing.T) {
	t.Run("valid value passes validator", func(t *testing.T) {
		t.Setenv("ER_TEST_CRON", "30 5 * * *")
		result := LoadEnvWithFallback("ER_TEST_CRON", "0 6 * * *", ValidateCronSchedule)
		assert.False(t, result.FallbackApplied)
		assert.Equal(t, "30 5 * * *", result.Value.(string))
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("ER_TEST_CRON", "not a cron")
		result := LoadEnvWithFallback("ER_TEST_CRON", "0 6 * * *", ValidateCronSchedule)
		assert.True(t, result.FallbackApplied)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "0 6 * * *", result.Value.(string))
	})
}

func TestLoadEnvDuration(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		result := LoadEnvDuration("ER_TEST_UNSET_DUR", 30*time.Minute, ValidatePositiveDuration)
		assert.False(t, result.FallbackApplied)
		assert.Equal(t, 30*time.Minute, result.Value.(time.Duration))
	})

	t.Run("parse failure falls back", func(t *testing.T) {
		t.Setenv("ER_TEST_DUR", "thirty minutes")
		result := LoadEnvDuration("ER_TEST_DUR", 30*time.Minute, ValidatePositiveDuration)
		assert.True(t, result.FallbackApplied)
		assert.Equal(t, 30*time.Minute, result.Value.(time.Duration))
	})

	t.Run("negative duration rejected by validator", func(t *testing.T) {
		t.Setenv("ER_TEST_DUR", "-5m")
		result := LoadEnvDuration("ER_TEST_DUR", 30*time.Minute, ValidatePositiveDuration)
		assert.True(t, result.FallbackApplied)
	})

	t.Run("valid value used", func(t *testing.T) {
		t.Setenv("ER_TEST_DUR", "45m")
		result := LoadEnvDuration("ER_TEST_DUR", 30*time.Minute, ValidatePositiveDuration)
		assert.False(t, result.FallbackApplied)
		assert.Equal(t, 45*time.Minute, result.Value.(time.Duration))
	})
}

func TestLoadEnvInt(t *testing.T) {
	t.Run("valid in range", func(t *testing.T) {
		t.Setenv("ER_TEST_INT", "7")
		result := LoadEnvInt("ER_TEST_INT", 5, IntRangeValidator(1, 50))
		assert.False(t, result.FallbackApplied)
		assert.Equal(t, 7, result.Value.(int))
	})

	t.Run("out of range falls back", func(t *testing.T) {
		t.Setenv("ER_TEST_INT", "500")
		result := LoadEnvInt("ER_TEST_INT", 5, IntRangeValidator(1, 50))
		assert.True(t, result.FallbackApplied)
		assert.Equal(t, 5, result.Value.(int))
	})

	t.Run("garbage falls back", func(t *testing.T) {
		t.Setenv("ER_TEST_INT", "five")
		result := LoadEnvInt("ER_TEST_INT", 5, nil)
		assert.True(t, result.FallbackApplied)
	})
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("America/Chicago"))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}
