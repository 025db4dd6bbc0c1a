package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

// testLogger creates a logger that writes JSON to a buffer.
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Config{Level: "trace", Format: "json", Output: buf}), buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	if config.Level != "warn" {
		t.Errorf("Level = %s, want warn", config.Level)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}

	prod := ProductionConfig()
	if prod.Format != "json" {
		t.Errorf("Format = %s, want json", prod.Format)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.WARN},
		{"", bolt.WARN},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"run id", RunID("run-123"), `"run_id":"run-123"`},
		{"algorithm", Algorithm(search.UniformCost), `"algorithm":"uniform-cost"`},
		{"world", WorldPath("worlds/a.txt"), `"world":"worlds/a.txt"`},
		{"status", Status(run.StatusSolved), `"status":"solved"`},
		{"from status", FromStatus(run.StatusPending), `"from_status":"pending"`},
		{"to status", ToStatus(run.StatusSearching), `"to_status":"searching"`},
		{"generated", Generated(10), `"nodes_generated":10`},
		{"expanded", Expanded(6), `"nodes_expanded":6`},
		{"plan length", PlanLength(5), `"plan_length":5`},
		{"found", Found(true), `"found":true`},
		{"cache key", CacheKey("uniform-cost:abc"), `"cache_key":"uniform-cost:abc"`},
		{"cached", Cached(false), `"cached":false`},
		{"duration", Duration(100 * time.Millisecond), `"duration_ms":100`},
		{"duration ns", DurationNs(time.Microsecond), `"duration_ns":1000`},
		{"error", ErrorField(errors.New("boom")), `"error":"boom"`},
		{"component", Component("planner"), `"component":"planner"`},
		{"operation", Operation("search"), `"operation":"search"`},
		{"str", Str("custom_key", "custom_value"), `"custom_key":"custom_value"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := testLogger()
			tt.field(logger.Info()).Msg("test")

			if !bytes.Contains(buf.Bytes(), []byte(tt.want)) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestSearchResultField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	r := search.Result{Plan: []grid.Action{grid.East, grid.Vacuum}, Found: true, Generated: 7, Expanded: 4}
	SearchResult(r)(logger.Info()).Msg("test")

	for _, want := range []string{`"found":true`, `"plan_length":2`, `"nodes_generated":7`, `"nodes_expanded":4`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("expected %s in output: %s", want, buf.String())
		}
	}
}

func TestErrorField_Nil(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	ErrorField(nil)(logger.Info()).Msg("test")

	if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
		t.Errorf("unexpected error field in output: %s", buf.String())
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := New(Config{Level: "error", Format: "json", Output: buf})
	logger.Info().Msg("hidden")
	logger.Error().Msg("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Errorf("info message logged at error level: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Errorf("error message missing: %s", buf.String())
	}
}

func TestLogEvent(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	NewEvent(logger.Info()).Add(RunID("run-1")).Add(Algorithm(search.DepthFirst)).Msg("test")
	if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"run-1"`)) {
		t.Errorf("expected run_id field in output: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"algorithm":"depth-first"`)) {
		t.Errorf("expected algorithm field in output: %s", buf.String())
	}

	buf.Reset()
	NewEvent(logger.Info()).Add(RunID("run-2")).Send()
	if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"run-2"`)) {
		t.Errorf("expected run_id field in output: %s", buf.String())
	}
}

func TestGet(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get() returned nil")
	}
	SetLevel("error")
	for _, event := range []*LogEvent{Trace(), Debug(), Info(), Warn(), Error()} {
		if event == nil {
			t.Fatal("level helper returned nil")
		}
	}
}

func TestPrintfLogger(t *testing.T) {
	t.Parallel()

	if got := line("opened %d tables\n", []interface{}{3}); got != "opened 3 tables" {
		t.Errorf("line() = %q, want %q", got, "opened 3 tables")
	}

	// Filtered levels must not panic.
	l := NewPrintfLogger("badger")
	l.Debugf("replaying %s", "vlog")
	l.Infof("compaction done")
}
