package frontend

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/wren/pkg/classfinder"
)

// Job is one application to resolve.
type Job struct {
	Name    string
	Finder  classfinder.ClassFinder
	Options Options
}

// ResolveAll resolves independent applications concurrently, each with its
// own walker and summary. Results are returned in job order. The first
// failure cancels jobs that have not started yet.
//
// Finders shared between jobs must be safe for concurrent use; the finders
// in this module are.
func ResolveAll(ctx context.Context, jobs []Job, workers int) ([]*Dependencies, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Dependencies, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			deps, err := Resolve(job.Finder, job.Options)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", job.Name, err)
			}
			results[i] = deps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
