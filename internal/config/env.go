package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult carries a loaded value plus any warnings generated
// by a fallback, so
// callers can log.Warn instead of aborting startup. Every loader in
// this file never fails outright — an invalid env var falls back to
// its default and reports why.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString reads a string env var, or defaultValue if unset. No
// validation — use LoadEnvWithFallback when a validator is needed.
func LoadEnvString(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// LoadEnvWithFallback reads a string env var, validates it if set, and
// falls back to defaultValue (with a warning) on validation failure.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				FallbackApplied: true,
				Warnings: []string{fmt.Sprintf(
					"invalid %s=%q: %v, falling back to default %q", envKey, value, err, defaultValue)},
			}
		}
	}
	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration parses a Go duration string env var, falling back to
// defaultValue (with a warning) on parse or validation failure.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings:        []string{fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, valueStr, err, defaultValue)},
		}
	}
	if validator != nil {
		if err := validator(d); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				FallbackApplied: true,
				Warnings:        []string{fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, valueStr, err, defaultValue)},
			}
		}
	}
	return ConfigLoadResult{Value: d}
}

// LoadEnvInt parses an integer env var, falling back to defaultValue
// (with a warning) on parse or validation failure.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	var n int
	if _, err := fmt.Sscanf(valueStr, "%d", &n); err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings:        []string{fmt.Sprintf("invalid %s=%q: not an integer, falling back to default %d", envKey, valueStr, defaultValue)},
		}
	}
	if validator != nil {
		if err := validator(n); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				FallbackApplied: true,
				Warnings:        []string{fmt.Sprintf("invalid %s=%q: %v, falling back to default %d", envKey, valueStr, err, defaultValue)},
			}
		}
	}
	return ConfigLoadResult{Value: n}
}

// LoadEnvBool parses a boolean env var, falling back to defaultValue
// (with a warning) if the value isn't one of Go's strconv.ParseBool
// forms.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	switch valueStr {
	case "1", "t", "T", "true", "TRUE", "True":
		return ConfigLoadResult{Value: true}
	case "0", "f", "F", "false", "FALSE", "False":
		return ConfigLoadResult{Value: false}
	default:
		return ConfigLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings:        []string{fmt.Sprintf("invalid %s=%q: expected true/false, falling back to default %t", envKey, valueStr, defaultValue)},
		}
	}
}

// ValidatePositiveDuration rejects a non-positive duration.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateIntRange rejects a value outside [min, max].
func ValidateIntRange(value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("value %d outside range [%d, %d]", value, min, max)
	}
	return nil
}
