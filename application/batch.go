package application

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

// BatchItem is the outcome of planning one world file.
type BatchItem struct {
	Path string
	Run  *run.Run
	Err  error
}

// PlanFiles plans every file with up to concurrency searches in flight.
// Results keep the order of paths. A failing file does not stop the others.
// Concurrency below one uses GOMAXPROCS.
func (s *Service) PlanFiles(ctx context.Context, paths []string, alg search.Algorithm, concurrency int) ([]BatchItem, error) {
	if _, err := s.registry.Lookup(alg); err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	items := make([]BatchItem, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			r, err := s.PlanFile(gCtx, path, alg)
			items[i] = BatchItem{Path: path, Run: r, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}
