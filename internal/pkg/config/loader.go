// Package config loads worker settings from the environment with a
// fail-open policy: a malformed or out-of-range value falls back to the
// default, produces a warning, and is counted in ConfigMetrics. Loading
// never fails.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one value.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Apply logs and counts a fallback for field and returns the value.
// logger and metrics may be nil.
func (r LoadResult[T]) Apply(logger *slog.Logger, metrics *ConfigMetrics, field string) T {
	if !r.FallbackApplied {
		return r.Value
	}
	if metrics != nil {
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
	}
	if logger != nil {
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", r.Warning))
	}
	return r.Value
}

func load[T any](envKey string, def T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[T]{Value: def}
	}

	fallback := func(err error) LoadResult[T] {
		return LoadResult[T]{
			Value:           def,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, using default %v", envKey, raw, err, def),
			FallbackApplied: true,
		}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Value: v}
}

// LoadEnvString returns envKey or def when unset. No validation.
func LoadEnvString(envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

// LoadEnvWithFallback loads a string checked by validate (nil accepts anything).
func LoadEnvWithFallback(envKey, def string, validate func(string) error) LoadResult[string] {
	return load(envKey, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration loads a Go duration string such as "90s" or "1h30m".
func LoadEnvDuration(envKey string, def time.Duration, validate func(time.Duration) error) LoadResult[time.Duration] {
	return load(envKey, def, time.ParseDuration, validate)
}

// LoadEnvInt loads a base-10 integer. Surrounding spaces are rejected.
func LoadEnvInt(envKey string, def int, validate func(int) error) LoadResult[int] {
	return load(envKey, def, strconv.Atoi, validate)
}

// LoadEnvFloat loads a floating point number.
func LoadEnvFloat(envKey string, def float64, validate func(float64) error) LoadResult[float64] {
	return load(envKey, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}, validate)
}

// LoadEnvBool accepts the spellings understood by strconv.ParseBool.
func LoadEnvBool(envKey string, def bool) LoadResult[bool] {
	return load(envKey, def, func(s string) (bool, error) {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, fmt.Errorf("expected true or false")
		}
		return b, nil
	}, nil)
}
