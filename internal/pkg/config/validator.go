package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a cron expression using the robfig/cron/v3
// parser, the same parser the worker scheduler uses.
//
// The expression must follow the standard five-field format:
//   - "minute hour day month weekday"
//   - Example: "30 5 * * *" (every day at 5:30)
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone validates an IANA timezone name by attempting to load it
// with time.LoadLocation ("UTC", "America/Chicago", "Asia/Tokyo").
func ValidateTimezone(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return nil
}

// ValidateIntRange returns a validator error when value is outside [min, max].
func ValidateIntRange(value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("value %d out of range [%d, %d]", value, min, max)
	}
	return nil
}

// ValidatePositiveDuration returns an error when the duration is not positive.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange returns an error when the duration is outside
// [min, max].
func ValidateDurationRange(d, min, max time.Duration) error {
	if d < min || d > max {
		return fmt.Errorf("duration %v out of range [%v, %v]", d, min, max)
	}
	return nil
}

// IntRangeValidator returns a validator closure for LoadEnvInt.
func IntRangeValidator(min, max int) func(int) error {
	return func(value int) error {
		return ValidateIntRange(value, min, max)
	}
}
