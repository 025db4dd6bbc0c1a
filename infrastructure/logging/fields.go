package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// RunID adds a run ID field.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("run_id", id)
	}
}

// Algorithm adds the search strategy name.
func Algorithm(a search.Algorithm) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("algorithm", string(a))
	}
}

// WorldPath adds the world file path.
func WorldPath(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("world", path)
	}
}

// Status adds a run status field.
func Status(s run.Status) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("status", string(s))
	}
}

// FromStatus adds a from_status field for transitions.
func FromStatus(s run.Status) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_status", string(s))
	}
}

// ToStatus adds a to_status field for transitions.
func ToStatus(s run.Status) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_status", string(s))
	}
}

// Generated adds the generated node count.
func Generated(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("nodes_generated", n)
	}
}

// Expanded adds the expanded node count.
func Expanded(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("nodes_expanded", n)
	}
}

// PlanLength adds the number of actions in a plan.
func PlanLength(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("plan_length", n)
	}
}

// Found adds whether a plan exists.
func Found(found bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("found", found)
	}
}

// SearchResult adds the counters and outcome of a search.
func SearchResult(r search.Result) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("found", r.Found).
			Int("plan_length", r.Cost()).
			Int("nodes_generated", r.Generated).
			Int("nodes_expanded", r.Expanded)
	}
}

// CacheKey adds a cache key field.
func CacheKey(key string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("cache_key", key)
	}
}

// Cached adds whether a result came from the cache.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// DurationNs adds a duration field in nanoseconds.
func DurationNs(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ns", d.Nanoseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
