package cache

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/grid"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

func TestKey(t *testing.T) {
	t.Parallel()

	if got := Key(search.UniformCost, "abc"); got != "uniform-cost:abc" {
		t.Errorf("Key() = %q, want %q", got, "uniform-cost:abc")
	}
}

func TestEntry_EncodeDecode(t *testing.T) {
	t.Parallel()

	e := Entry{
		Algorithm:   search.DepthFirst,
		Fingerprint: "f00",
		Result: search.Result{
			Plan:      []grid.Action{grid.East, grid.Vacuum},
			Found:     true,
			Generated: 4,
			Expanded:  3,
		},
		StoredAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := DecodeEntry(data, search.DepthFirst, "f00")
	if err != nil {
		t.Fatalf("DecodeEntry() error = %v", err)
	}
	if !slices.Equal(got.Result.Plan, e.Result.Plan) || got.Result.Generated != 4 || got.Result.Expanded != 3 {
		t.Errorf("DecodeEntry() = %+v, want %+v", got.Result, e.Result)
	}
}

func TestDecodeEntry_Errors(t *testing.T) {
	t.Parallel()

	valid, err := Entry{Algorithm: search.UniformCost, Fingerprint: "a"}.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name string
		data []byte
		alg  search.Algorithm
		fp   string
	}{
		{"garbage", []byte("{not json"), search.UniformCost, "a"},
		{"unknown action", []byte(`{"algorithm":"uniform-cost","fingerprint":"a","result":{"plan":["X"]}}`), search.UniformCost, "a"},
		{"other algorithm", valid, search.DepthFirst, "a"},
		{"other world", valid, search.UniformCost, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeEntry(tt.data, tt.alg, tt.fp); !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("DecodeEntry() error = %v, want ErrInvalidEntry", err)
			}
		})
	}
}
