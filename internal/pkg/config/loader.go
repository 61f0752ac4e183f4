// Package config provides reusable environment-variable loaders and
// validators. Loaders follow a fail-open strategy: an invalid value falls
// back to the default and produces a warning instead of an error, so a
// mistyped variable never prevents the daily job from running.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadResult represents the result of loading a configuration value.
// Value holds the loaded value (or the default if a fallback was applied),
// and Warnings holds one message per fallback.
type LoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string value from an environment variable.
// If the environment variable is not set, the default value is returned.
// No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvBool loads a boolean flag from an environment variable.
// Only the literal string "true" enables the flag; anything else
// (including unset) returns the default for unset and false otherwise.
func LoadEnvBool(envKey string, defaultValue bool) bool {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

// LoadEnvWithFallback loads a string value with validation and automatic
// fallback to the default on validation failure.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult {
	value := os.Getenv(envKey)

	if value == "" {
		return LoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%s'",
				envKey, value, err, defaultValue)
			return LoadResult{
				Value:           defaultValue,
				Warnings:        []string{warning},
				FallbackApplied: true,
			}
		}
	}

	return LoadResult{Value: value}
}

// LoadEnvDuration loads a duration value with parsing, validation, and
// automatic fallback to the default on failure.
// The value must be parseable by time.ParseDuration ("30s", "5m", "1h30m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult {
	valueStr := os.Getenv(envKey)

	if valueStr == "" {
		return LoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
			envKey, valueStr, err, defaultValue)
		return LoadResult{
			Value:           defaultValue,
			Warnings:        []string{warning},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
				envKey, valueStr, err, defaultValue)
			return LoadResult{
				Value:           defaultValue,
				Warnings:        []string{warning},
				FallbackApplied: true,
			}
		}
	}

	return LoadResult{Value: parsed}
}

// LoadEnvInt loads an integer value with parsing, validation, and automatic
// fallback to the default on failure.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult {
	valueStr := os.Getenv(envKey)

	if valueStr == "" {
		return LoadResult{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(valueStr)
	if err != nil {
		warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%d'",
			envKey, valueStr, err, defaultValue)
		return LoadResult{
			Value:           defaultValue,
			Warnings:        []string{warning},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%d'",
				envKey, valueStr, err, defaultValue)
			return LoadResult{
				Value:           defaultValue,
				Warnings:        []string{warning},
				FallbackApplied: true,
			}
		}
	}

	return LoadResult{Value: parsed}
}
