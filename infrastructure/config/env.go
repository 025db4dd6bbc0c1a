package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	domainconfig "github.com/felixgeelhaar/gridplan/domain/config"
)

// bracePattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var bracePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}`)

// envExpander expands environment variables in configuration text.
type envExpander struct {
	// strict fails if a referenced variable is not set.
	strict bool
	// lookup resolves variables; os.LookupEnv when nil.
	lookup func(string) (string, bool)
	// missing tracks unresolved variables.
	missing []string
}

// Expand expands environment variables in the input string.
// Supported patterns:
//   - ${VAR} - expands to the value of VAR
//   - ${VAR:-default} - expands to VAR or "default" if unset or empty
//   - ${VAR:?error message} - fails if VAR is unset or empty
//
// A bare $VAR is left alone so secrets containing '$' survive.
func (e *envExpander) Expand(input string) (string, error) {
	e.missing = nil
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	result := bracePattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := bracePattern.FindStringSubmatch(match)
		name, modifier := sub[1], sub[2]
		value, exists := lookup(name)

		switch {
		case strings.HasPrefix(modifier, ":-"):
			if !exists || value == "" {
				return modifier[2:]
			}
		case strings.HasPrefix(modifier, ":?"):
			if !exists || value == "" {
				e.missing = append(e.missing, fmt.Sprintf("%s: %s", name, modifier[2:]))
				return match
			}
		default:
			if !exists && e.strict {
				e.missing = append(e.missing, name)
			}
		}
		return value
	})

	if len(e.missing) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVar, strings.Join(e.missing, ", "))
	}
	return result, nil
}

// ExpandEnv expands environment variables, substituting empty strings for unset ones.
func ExpandEnv(input string) string {
	e := &envExpander{}
	result, _ := e.Expand(input)
	return result
}

// ExpandEnvStrict expands environment variables and returns an error for missing vars.
func ExpandEnvStrict(input string) (string, error) {
	e := &envExpander{strict: true}
	return e.Expand(input)
}

// Environment variables that override file settings.
const (
	EnvAlgorithm    = "GRIDPLAN_ALGORITHM"
	EnvLogLevel     = "GRIDPLAN_LOG_LEVEL"
	EnvCacheBackend = "GRIDPLAN_CACHE_BACKEND"
	EnvRedisAddr    = "GRIDPLAN_REDIS_ADDR"
)

// ApplyEnvOverrides copies GRIDPLAN_* variables onto cfg. Empty values are ignored.
func ApplyEnvOverrides(cfg *domainconfig.PlannerConfig, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	set(EnvAlgorithm, &cfg.Algorithm)
	set(EnvLogLevel, &cfg.Logging.Level)
	set(EnvCacheBackend, &cfg.Cache.Backend)
	set(EnvRedisAddr, &cfg.Cache.Redis.Address)
}
