package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
	"github.com/felixgeelhaar/gridplan/infrastructure/storage/memory"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func finishedRun(id string, alg search.Algorithm, offset time.Duration, status run.Status, expanded int) *run.Run {
	r := run.NewRun(id, alg, baseTime.Add(offset))
	r.Fingerprint = "fp-" + string(alg)
	r.Result = search.Result{Found: status == run.StatusSolved, Generated: expanded + 1, Expanded: expanded}
	if status == run.StatusSolved {
		r.Result.Plan = []grid.Action{grid.Vacuum}
	}
	r.TransitionTo(status, r.StartTime.Add(time.Millisecond))
	return r
}

func seededStore(t *testing.T) *memory.RunStore {
	t.Helper()

	store := memory.NewRunStore()
	ctx := context.Background()
	runs := []*run.Run{
		finishedRun("run-1", search.UniformCost, 0, run.StatusSolved, 10),
		finishedRun("run-2", search.DepthFirst, time.Minute, run.StatusSolved, 6),
		finishedRun("run-3", search.UniformCost, 2*time.Minute, run.StatusUnsolved, 2),
		finishedRun("run-4", search.DepthFirst, 3*time.Minute, run.StatusFailed, 0),
	}
	runs[1].Cached = true
	for _, r := range runs {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s) error = %v", r.ID, err)
		}
	}
	return store
}

func TestRunStore_SaveAndGet(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx := context.Background()
	r := finishedRun("run-1", search.UniformCost, 0, run.StatusSolved, 4)

	if err := store.Save(ctx, r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != run.StatusSolved || got.Result.Expanded != 4 || len(got.Result.Plan) != 1 {
		t.Errorf("Get() = %+v", got)
	}
	if !got.StartTime.Equal(r.StartTime) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, r.StartTime)
	}

	got.Status = run.StatusFailed
	again, _ := store.Get(ctx, "run-1")
	if again.Status != run.StatusSolved {
		t.Error("Get() should return an independent copy")
	}
}

func TestRunStore_Errors(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx := context.Background()
	r := finishedRun("run-1", search.UniformCost, 0, run.StatusSolved, 1)
	_ = store.Save(ctx, r)

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"save duplicate", func() error { return store.Save(ctx, r) }, run.ErrRunExists},
		{"save empty id", func() error { return store.Save(ctx, &run.Run{}) }, run.ErrInvalidRunID},
		{"save nil", func() error { return store.Save(ctx, nil) }, run.ErrInvalidRunID},
		{"get missing", func() error { _, err := store.Get(ctx, "nope"); return err }, run.ErrRunNotFound},
		{"get empty id", func() error { _, err := store.Get(ctx, ""); return err }, run.ErrInvalidRunID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunStore_List(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter run.ListFilter
		want   []string
	}{
		{"all ascending", run.ListFilter{}, []string{"run-1", "run-2", "run-3", "run-4"}},
		{"descending", run.ListFilter{Descending: true}, []string{"run-4", "run-3", "run-2", "run-1"}},
		{"by status", run.ListFilter{Status: []run.Status{run.StatusSolved}}, []string{"run-1", "run-2"}},
		{"by algorithm", run.ListFilter{Algorithms: []search.Algorithm{search.DepthFirst}}, []string{"run-2", "run-4"}},
		{"by fingerprint", run.ListFilter{Fingerprint: "fp-uniform-cost"}, []string{"run-1", "run-3"}},
		{"from time", run.ListFilter{FromTime: baseTime.Add(2 * time.Minute)}, []string{"run-3", "run-4"}},
		{"limit", run.ListFilter{Limit: 2, Descending: true}, []string{"run-4", "run-3"}},
		{"offset", run.ListFilter{Offset: 3}, []string{"run-4"}},
		{"offset past end", run.ListFilter{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runs, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(runs) != len(tt.want) {
				t.Fatalf("List() returned %d runs, want %d", len(runs), len(tt.want))
			}
			for i, r := range runs {
				if r.ID != tt.want[i] {
					t.Errorf("List()[%d] = %s, want %s", i, r.ID, tt.want[i])
				}
			}

			count, err := store.Count(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if tt.filter.Limit == 0 && tt.filter.Offset == 0 && count != int64(len(tt.want)) {
				t.Errorf("Count() = %d, want %d", count, len(tt.want))
			}
		})
	}
}

func TestRunStore_Summary(t *testing.T) {
	t.Parallel()

	store := seededStore(t)

	summary, err := store.Summary(context.Background(), run.ListFilter{})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	want := run.Summary{
		TotalRuns:       4,
		SolvedRuns:      2,
		UnsolvedRuns:    1,
		FailedRuns:      1,
		CachedRuns:      1,
		AverageExpanded: 6,
	}
	if summary != want {
		t.Errorf("Summary() = %+v, want %+v", summary, want)
	}
}

func TestRunStore_CancelledContext(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.List(ctx, run.ListFilter{}); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}
