package config

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if errs := NewValidator().Validate(cfg); errs.HasErrors() {
		t.Fatalf("Default() is invalid: %v", errs)
	}
	if cfg.Algorithm != "uniform-cost" {
		t.Errorf("Algorithm = %q, want uniform-cost", cfg.Algorithm)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("Cache.Backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration() != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL.Duration())
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		mutate       func(*PlannerConfig)
		wantErrPaths []string
	}{
		{
			name:   "empty config is valid",
			mutate: func(c *PlannerConfig) { *c = PlannerConfig{} },
		},
		{
			name:         "unknown algorithm",
			mutate:       func(c *PlannerConfig) { c.Algorithm = "breadth-first" },
			wantErrPaths: []string{"algorithm"},
		},
		{
			name:         "bad output and logging",
			mutate:       func(c *PlannerConfig) { c.Output.Format = "xml"; c.Logging.Level = "loud" },
			wantErrPaths: []string{"output.format", "logging.level"},
		},
		{
			name:         "unknown backend",
			mutate:       func(c *PlannerConfig) { c.Cache.Backend = "memcached" },
			wantErrPaths: []string{"cache.backend"},
		},
		{
			name:         "badger without dir",
			mutate:       func(c *PlannerConfig) { c.Cache.Backend = BackendBadger; c.Cache.Dir = "" },
			wantErrPaths: []string{"cache.dir"},
		},
		{
			name:         "redis without address",
			mutate:       func(c *PlannerConfig) { c.Cache.Backend = BackendRedis; c.Cache.Redis.Address = "" },
			wantErrPaths: []string{"cache.redis.address"},
		},
		{
			name: "negative durations",
			mutate: func(c *PlannerConfig) {
				c.Cache.TTL = Duration(-time.Second)
				c.Cache.Resilience.OpenTimeout = Duration(-time.Second)
			},
			wantErrPaths: []string{"cache.ttl", "cache.resilience.open_timeout"},
		},
		{
			name:         "sqlite history without path",
			mutate:       func(c *PlannerConfig) { c.History.Backend = BackendSQLite; c.History.Path = "" },
			wantErrPaths: []string{"history.path"},
		},
		{
			name:         "redis history backend",
			mutate:       func(c *PlannerConfig) { c.History.Backend = BackendRedis },
			wantErrPaths: []string{"history.backend"},
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *PlannerConfig) {
				c.Telemetry.Tracing.Exporter = ExporterOTLP
				c.Telemetry.Tracing.Endpoint = ""
				c.Telemetry.Tracing.SampleRate = 2
			},
			wantErrPaths: []string{"telemetry.tracing.endpoint", "telemetry.tracing.sample_rate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			errs := NewValidator().Validate(cfg)
			assertErrorPaths(t, errs, tt.wantErrPaths)
		})
	}
}

func assertErrorPaths(t *testing.T, errs ValidationErrors, want []string) {
	t.Helper()

	if len(errs) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(want), errs)
	}
	for i, path := range want {
		if errs[i].Path != path {
			t.Errorf("error[%d].Path = %q, want %q", i, errs[i].Path, path)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	if got := (ValidationErrors{}).Error(); got != "no validation errors" {
		t.Errorf("Error() = %q", got)
	}

	one := ValidationErrors{{Path: "cache.dir", Message: "required"}}
	if got := one.Error(); got != "cache.dir: required" {
		t.Errorf("Error() = %q", got)
	}

	two := append(one, ValidationError{Message: "other"})
	if got := two.Error(); !strings.HasPrefix(got, "2 validation errors:") {
		t.Errorf("Error() = %q", got)
	}
}

func TestDuration_Encoding(t *testing.T) {
	t.Parallel()

	var fromYAML struct {
		TTL Duration `yaml:"ttl"`
	}
	if err := yaml.Unmarshal([]byte("ttl: 90s\n"), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if fromYAML.TTL.Duration() != 90*time.Second {
		t.Errorf("yaml TTL = %v, want 90s", fromYAML.TTL.Duration())
	}

	data, err := json.Marshal(Duration(1500 * time.Millisecond))
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != `"1.5s"` {
		t.Errorf("json = %s, want \"1.5s\"", data)
	}

	var d Duration
	if err := json.Unmarshal([]byte(`"bogus"`), &d); err == nil {
		t.Error("expected error for invalid duration")
	}
}
