package config

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates planner configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *PlannerConfig) ValidationErrors {
	v.errors = nil

	v.validateAlgorithm(config)
	v.validateOutput(config)
	v.validateLogging(config)
	v.validateCache(config)
	v.validateHistory(config)
	v.validateTelemetry(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) oneOf(path, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.addError(path, fmt.Sprintf("invalid value %q (allowed: %s)", value, strings.Join(allowed, ", ")))
}

func (v *Validator) validateAlgorithm(config *PlannerConfig) {
	if config.Algorithm == "" {
		return
	}
	if _, err := search.ParseAlgorithm(config.Algorithm); err != nil {
		v.addError("algorithm", err.Error())
	}
}

func (v *Validator) validateOutput(config *PlannerConfig) {
	v.oneOf("output.format", config.Output.Format, "text", "json")
}

func (v *Validator) validateLogging(config *PlannerConfig) {
	v.oneOf("logging.level", config.Logging.Level, "trace", "debug", "info", "warn", "error")
	v.oneOf("logging.format", config.Logging.Format, "console", "json")
}

func (v *Validator) validateCache(config *PlannerConfig) {
	c := config.Cache
	v.oneOf("cache.backend", c.Backend, BackendNone, BackendMemory, BackendBadger, BackendSQLite, BackendRedis)

	if c.TTL < 0 {
		v.addError("cache.ttl", "ttl must be non-negative")
	}
	if c.MaxSize < 0 {
		v.addError("cache.max_size", "max_size must be non-negative")
	}

	switch c.Backend {
	case BackendBadger, BackendSQLite:
		if c.Dir == "" {
			v.addError("cache.dir", fmt.Sprintf("dir is required for %s backend", c.Backend))
		}
	case BackendRedis:
		if c.Redis.Address == "" {
			v.addError("cache.redis.address", "address is required for redis backend")
		}
		if c.Redis.DB < 0 {
			v.addError("cache.redis.db", "db must be non-negative")
		}
	}

	r := c.Resilience
	if r.MaxAttempts < 0 {
		v.addError("cache.resilience.max_attempts", "max_attempts must be non-negative")
	}
	if r.InitialDelay < 0 {
		v.addError("cache.resilience.initial_delay", "initial_delay must be non-negative")
	}
	if r.FailureThreshold < 0 {
		v.addError("cache.resilience.failure_threshold", "failure_threshold must be non-negative")
	}
	if r.OpenTimeout < 0 {
		v.addError("cache.resilience.open_timeout", "open_timeout must be non-negative")
	}
}

func (v *Validator) validateHistory(config *PlannerConfig) {
	h := config.History
	v.oneOf("history.backend", h.Backend, BackendNone, BackendMemory, BackendSQLite)
	if h.Backend == BackendSQLite && h.Path == "" {
		v.addError("history.path", "path is required for sqlite backend")
	}
}

func (v *Validator) validateTelemetry(config *PlannerConfig) {
	t := config.Telemetry.Tracing
	v.oneOf("telemetry.tracing.exporter", t.Exporter, ExporterNoop, ExporterStdout, ExporterOTLP)
	if t.Exporter == ExporterOTLP && t.Endpoint == "" {
		v.addError("telemetry.tracing.endpoint", "endpoint is required for otlp exporter")
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		v.addError("telemetry.tracing.sample_rate", "sample_rate must be between 0 and 1")
	}
}
