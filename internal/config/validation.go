package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MaxTrackingDelayMs bounds the delay to something the user can still
// perceive as focus following the pointer.
const MaxTrackingDelayMs = 10_000

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidateConfig checks every section and reports all problems at once.
// The returned error is a *multierror.Error of *ValidationError.
func ValidateConfig(c *Config) error {
	var result *multierror.Error

	if c.Version < 1 || c.Version > Version {
		result = multierror.Append(result, &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	if c.Focus.TrackingDelayMs > MaxTrackingDelayMs {
		result = multierror.Append(result, &ValidationError{
			Field:   "focus.tracking_delay_ms",
			Message: fmt.Sprintf("must be at most %d, got %d", MaxTrackingDelayMs, c.Focus.TrackingDelayMs),
		})
	}

	result = multierror.Append(result, validateLogging(&c.Logging)...)
	return result.ErrorOrNil()
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", l.Level)})
	}

	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, &ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", l.Format)})
	}

	switch strings.ToLower(l.Output) {
	case "", "stdout", "stderr", "file", "both":
	default:
		errs = append(errs, &ValidationError{Field: "logging.output", Message: fmt.Sprintf("unknown output %q", l.Output)})
	}

	return errs
}
