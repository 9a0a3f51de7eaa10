// Package worker fans independent jobs out over a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/draftrange/pkg/logger"
	"github.com/okian/draftrange/pkg/metrics"
)

// Result is the outcome of one job. Index is the job's position in the input.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool bounds how many jobs run at once. It holds no goroutines between
// calls and is safe for concurrent use.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool running at most size jobs at once. A size below one
// uses runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:   size,
		name:   "worker-pool",
		logger: logger.Get(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return p.size }

// Map runs fn over every item and returns one result per item in input order.
// A failing job does not stop the others; its error is kept on its result.
// Jobs not yet started when ctx is cancelled fail with ctx.Err(), and Map
// returns that error alongside the partial results.
func Map[In, Out any](ctx context.Context, p *Pool, items []In, fn func(context.Context, In) (Out, error)) ([]Result[Out], error) {
	start := time.Now()
	results := make([]Result[Out], len(items))

	var g errgroup.Group
	g.SetLimit(p.size)
	for i := range items {
		results[i].Index = i
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			metrics.AddWorkerActive(1)
			defer metrics.AddWorkerActive(-1)
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = run(ctx, fn, items[i])
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}
	p.logger.Debug(ctx, "batch finished",
		logger.Int("jobs", len(items)),
		logger.Int("failed", failed),
		logger.Int("workers", p.size),
		logger.Float64("elapsed_ms", float64(time.Since(start).Microseconds())/1000),
	)
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

// run invokes fn and turns a panic into an error on the job's result.
func run[In, Out any](ctx context.Context, fn func(context.Context, In) (Out, error), in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("worker", "panic")
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return fn(ctx, in)
}
