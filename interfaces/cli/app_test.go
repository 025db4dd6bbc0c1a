package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainconfig "github.com/felixgeelhaar/gridplan/domain/config"
	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

const (
	lineWorld   = "3\n1\n*@*\n"
	walledWorld = "3\n3\n@__\n__#\n_#*\n"
)

// newTestApp returns an app isolated from the process environment.
func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)
	app.lookup = func(string) (string, bool) { return "", false }
	return app, &stdout, &stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeConfig writes a config file so tests never pick up a user config.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	return writeFile(t, dir, "gridplan.yaml", content)
}

func TestApp_Version(t *testing.T) {
	app, stdout, _ := newTestApp()

	cfg := writeConfig(t, t.TempDir(), "algorithm: uniform-cost\n")
	if err := app.ExecuteWithArgs(context.Background(), []string{"version", "-c", cfg}); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !strings.Contains(stdout.String(), "gridplan version "+Version) {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestApp_Help(t *testing.T) {
	app, stdout, _ := newTestApp()

	if err := app.ExecuteWithArgs(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"vacuum agent", "plan", "validate", "watch", "history"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestApp_Algorithms(t *testing.T) {
	app, stdout, _ := newTestApp()

	cfg := writeConfig(t, t.TempDir(), "algorithm: uniform-cost\n")
	if err := app.ExecuteWithArgs(context.Background(), []string{"algorithms", "-c", cfg}); err != nil {
		t.Fatalf("algorithms command failed: %v", err)
	}

	if got, want := stdout.String(), "uniform-cost\ndepth-first\n"; got != want {
		t.Errorf("algorithms output = %q, want %q", got, want)
	}
}

func TestApp_PlanPositional(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "algorithm: uniform-cost\n")
	line := writeFile(t, dir, "line.txt", lineWorld)
	walled := writeFile(t, dir, "walled.txt", walledWorld)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "uniform cost",
			args: []string{"uniform-cost", line},
			want: "E\nV\nW\nW\nV\n11 nodes generated\n10 nodes expanded\n",
		},
		{
			name: "depth first",
			args: []string{"depth-first", line},
			want: "E\nV\nW\nW\nV\n10 nodes generated\n6 nodes expanded\n",
		},
		{
			name: "no plan prints counters only",
			args: []string{"uniform-cost", walled},
			want: "6 nodes generated\n6 nodes expanded\n",
		},
		{
			name: "no plan depth first",
			args: []string{"depth-first", walled},
			want: "13 nodes generated\n6 nodes expanded\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, stdout, _ := newTestApp()
			if err := app.ExecuteWithArgs(context.Background(), append(tt.args, "-c", cfg)); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := stdout.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApp_PlanErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "algorithm: uniform-cost\n")
	line := writeFile(t, dir, "line.txt", lineWorld)
	bad := writeFile(t, dir, "bad.txt", "3\n1\n*@\n")

	t.Run("unknown algorithm", func(t *testing.T) {
		app, stdout, _ := newTestApp()
		err := app.ExecuteWithArgs(context.Background(), []string{"breadth-first", line, "-c", cfg})
		want := `unknown algorithm "breadth-first" (use uniform-cost or depth-first)`
		if err == nil || err.Error() != want {
			t.Errorf("error = %v, want %q", err, want)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})

	t.Run("missing world file", func(t *testing.T) {
		app, _, _ := newTestApp()
		err := app.ExecuteWithArgs(context.Background(), []string{"uniform-cost", filepath.Join(dir, "nope.txt"), "-c", cfg})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("malformed world", func(t *testing.T) {
		app, _, _ := newTestApp()
		err := app.ExecuteWithArgs(context.Background(), []string{"depth-first", bad, "-c", cfg})
		if !errors.Is(err, grid.ErrRowLength) {
			t.Errorf("error = %v, want ErrRowLength", err)
		}
	})

	t.Run("one argument", func(t *testing.T) {
		app, _, _ := newTestApp()
		if err := app.ExecuteWithArgs(context.Background(), []string{"uniform-cost", "-c", cfg}); err == nil {
			t.Error("expected an error for a missing world file argument")
		}
	})
}

func TestApp_PlanCommand(t *testing.T) {
	dir := t.TempDir()
	line := writeFile(t, dir, "line.txt", lineWorld)

	t.Run("configured default algorithm", func(t *testing.T) {
		cfg := writeConfig(t, t.TempDir(), "algorithm: depth-first\n")
		app, stdout, _ := newTestApp()
		if err := app.ExecuteWithArgs(context.Background(), []string{"plan", line, "-c", cfg}); err != nil {
			t.Fatalf("plan failed: %v", err)
		}
		if !strings.HasSuffix(stdout.String(), "10 nodes generated\n6 nodes expanded\n") {
			t.Errorf("output = %q, want depth-first counters", stdout.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		cfg := writeConfig(t, t.TempDir(), "algorithm: depth-first\n")
		app, stdout, _ := newTestApp()
		args := []string{"plan", "-a", "uniform-cost", "--json", line, "-c", cfg}
		if err := app.ExecuteWithArgs(context.Background(), args); err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		var out planOutput
		if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
		}
		if out.Algorithm != "uniform-cost" || out.Status != "solved" || !out.Found {
			t.Errorf("output = %+v", out)
		}
		if strings.Join(out.Plan, "") != "EVWWV" || out.Cost != 5 {
			t.Errorf("plan = %v cost %d", out.Plan, out.Cost)
		}
		if out.Generated != 11 || out.Expanded != 10 || out.World != line || out.RunID == "" {
			t.Errorf("output = %+v", out)
		}
	})

	t.Run("json from config", func(t *testing.T) {
		cfg := writeConfig(t, t.TempDir(), "output:\n  format: json\n")
		app, stdout, _ := newTestApp()
		if err := app.ExecuteWithArgs(context.Background(), []string{"plan", line, "-c", cfg}); err != nil {
			t.Fatalf("plan failed: %v", err)
		}
		if !json.Valid(stdout.Bytes()) {
			t.Errorf("output is not JSON: %q", stdout.String())
		}
	})

	t.Run("verify", func(t *testing.T) {
		cfg := writeConfig(t, t.TempDir(), "algorithm: uniform-cost\n")
		app, _, stderr := newTestApp()
		if err := app.ExecuteWithArgs(context.Background(), []string{"plan", "--verify", line, "-c", cfg}); err != nil {
			t.Fatalf("plan failed: %v", err)
		}
		if !strings.Contains(stderr.String(), "plan verified: 5 actions") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}

func TestApp_InvalidCacheFlag(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "algorithm: uniform-cost\n")
	line := writeFile(t, dir, "line.txt", lineWorld)

	app, _, _ := newTestApp()
	err := app.ExecuteWithArgs(context.Background(), []string{"uniform-cost", line, "-c", cfg, "--cache", "memcached"})
	if !errors.Is(err, domainconfig.ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}
}

func TestApp_CacheAndHistory(t *testing.T) {
	dir := t.TempDir()
	line := writeFile(t, dir, "line.txt", lineWorld)
	cfg := writeConfig(t, dir, `algorithm: uniform-cost
cache:
  backend: sqlite
  dir: `+filepath.Join(dir, "cache")+`
history:
  backend: sqlite
  path: `+filepath.Join(dir, "history", "runs.db")+`
`)
	ctx := context.Background()

	for i := range 2 {
		app, stdout, _ := newTestApp()
		if err := app.ExecuteWithArgs(ctx, []string{"uniform-cost", line, "-c", cfg}); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		if !strings.HasSuffix(stdout.String(), "11 nodes generated\n10 nodes expanded\n") {
			t.Errorf("run %d output = %q", i, stdout.String())
		}
	}

	app, stdout, _ := newTestApp()
	if err := app.ExecuteWithArgs(ctx, []string{"history", "list", "-c", cfg}); err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if got := strings.Count(stdout.String(), "uniform-cost"); got != 2 {
		t.Errorf("history list shows %d runs, want 2:\n%s", got, stdout.String())
	}

	app, stdout, _ = newTestApp()
	if err := app.ExecuteWithArgs(ctx, []string{"history", "summary", "-c", cfg}); err != nil {
		t.Fatalf("history summary failed: %v", err)
	}
	for _, want := range []string{"Runs: 2", "Solved: 2", "Served from cache: 1", "Average nodes expanded: 10.0"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, stdout.String())
		}
	}

	app, stdout, _ = newTestApp()
	if err := app.ExecuteWithArgs(ctx, []string{"cache", "stats", "-c", cfg}); err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Entries: 1") {
		t.Errorf("cache stats = %q", stdout.String())
	}

	app, _, _ = newTestApp()
	if err := app.ExecuteWithArgs(ctx, []string{"cache", "clear", "-c", cfg}); err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	app, stdout, _ = newTestApp()
	if err := app.ExecuteWithArgs(ctx, []string{"cache", "stats", "-c", cfg}); err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Entries: 0") {
		t.Errorf("cache stats after clear = %q", stdout.String())
	}
}

func TestApp_HistoryAndCacheDisabled(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "algorithm: uniform-cost\n")

	app, _, _ := newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"history", "list", "-c", cfg}); !errors.Is(err, ErrHistoryDisabled) {
		t.Errorf("history list error = %v, want ErrHistoryDisabled", err)
	}

	app, _, _ = newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"cache", "clear", "-c", cfg}); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("cache clear error = %v, want ErrCacheDisabled", err)
	}
}

func TestApp_Validate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "algorithm: depth-first\n")
	good := writeFile(t, dir, "good.txt", walledWorld)
	bad := writeFile(t, dir, "bad.txt", "3\n1\n@@_\n")

	app, stdout, _ := newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"validate", good, "-c", cfg}); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	for _, want := range []string{"is valid", "3 rows x 3 columns", "Dirty cells: 1", "Blocked cells: 2"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("validate output missing %q:\n%s", want, stdout.String())
		}
	}

	app, stdout, _ = newTestApp()
	err := app.ExecuteWithArgs(context.Background(), []string{"validate", good, bad, "-c", cfg})
	if !errors.Is(err, grid.ErrMultipleStarts) {
		t.Errorf("validate error = %v, want ErrMultipleStarts", err)
	}
	if !strings.Contains(stdout.String(), "✗ "+bad) {
		t.Errorf("validate output missing failure line:\n%s", stdout.String())
	}

	app, stdout, _ = newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"validate", "-c", cfg}); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Algorithm: depth-first") {
		t.Errorf("config summary = %q", stdout.String())
	}
}

func TestApp_Schema(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "algorithm: uniform-cost\n")

	app, stdout, _ := newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"schema", "-c", cfg}); err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Gridplan Configuration") {
		t.Errorf("schema output = %q", stdout.String())
	}

	out := filepath.Join(dir, "schema.json")
	app, _, _ = newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"schema", "-o", out, "-c", cfg}); err != nil {
		t.Fatalf("schema -o failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !json.Valid(data) {
		t.Error("exported schema is not valid JSON")
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeText(&buf, search.Result{Generated: 3, Expanded: 2}); err != nil {
		t.Fatalf("writeText() error = %v", err)
	}
	if got, want := buf.String(), "3 nodes generated\n2 nodes expanded\n"; got != want {
		t.Errorf("writeText() = %q, want %q", got, want)
	}
}

func TestApp_Batch(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "algorithm: uniform-cost\n")
	line := writeFile(t, dir, "line.txt", lineWorld)
	walled := writeFile(t, dir, "walled.txt", walledWorld)
	bad := writeFile(t, dir, "bad.txt", "3\n1\n*@\n")

	app, stdout, _ := newTestApp()
	if err := app.ExecuteWithArgs(context.Background(), []string{"batch", "-j", "2", line, walled, "-c", cfg}); err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	want := "== " + line + "\nE\nV\nW\nW\nV\n11 nodes generated\n10 nodes expanded\n\n" +
		"== " + walled + "\n6 nodes generated\n6 nodes expanded\n"
	if got := stdout.String(); got != want {
		t.Errorf("batch output = %q, want %q", got, want)
	}

	app, stdout, _ = newTestApp()
	err := app.ExecuteWithArgs(context.Background(), []string{"batch", "--json", line, bad, "-c", cfg})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 worlds failed") {
		t.Errorf("batch error = %v, want 1 of 2 failed", err)
	}
	var out []batchOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
	}
	if len(out) != 2 || out[0].Result == nil || out[0].Result.Expanded != 10 || out[1].Error == "" {
		t.Errorf("batch JSON = %+v", out)
	}
}
