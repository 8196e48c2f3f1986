// Package batch runs acquisitions over many items with a bounded
// worker pool. One item's failure never aborts its siblings.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/model"
	"github.com/ytget/mediagrab/internal/progress"
)

// DefaultConcurrency caps in-flight acquisitions when the caller does
// not choose one.
const DefaultConcurrency = 4

// Acquirer is the per-item pipeline the runner drives. Satisfied by
// *engine.Engine.
type Acquirer interface {
	Acquire(ctx context.Context, item model.MediaItem, onProgress progress.Func) (string, error)
}

// Runner executes a batch of items with at most C workers in flight.
type Runner struct {
	acq         Acquirer
	concurrency int
	log         zerolog.Logger
}

// New creates a runner. concurrency values below 1 fall back to
// DefaultConcurrency.
func New(acq Acquirer, concurrency int, log zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Runner{acq: acq, concurrency: concurrency, log: log}
}

// Run processes items FIFO and returns one result per item, keyed by
// submission index regardless of completion order. onProgress (may be
// nil) receives batch-level progress, terminated items over total,
// recomputed as each item settles, with one terminal event after all
// items settle. Per-item panics are captured as that item's failure.
func (r *Runner) Run(ctx context.Context, items []model.MediaItem, onProgress progress.Func) []model.BatchResult {
	if onProgress == nil {
		onProgress = progress.Discard
	}
	results := make([]model.BatchResult, len(items))
	if len(items) == 0 {
		onProgress(progress.Event{Fraction: 1.0, Terminal: true})
		return results
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		terminated int
	)
	sem := make(chan struct{}, r.concurrency)

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(index int, item model.MediaItem) {
			defer wg.Done()
			defer func() { <-sem }()

			path, err := r.runOne(ctx, item)
			if err != nil {
				r.log.Error().Err(err).Int("index", index).Str("url", item.URL).Msg("item failed")
			}
			results[index] = model.BatchResult{Index: index, OutputPath: path, Err: err}

			mu.Lock()
			terminated++
			fraction := float64(terminated) / float64(len(items))
			mu.Unlock()
			onProgress(progress.Event{Fraction: fraction})
		}(i, items[i])
	}
	wg.Wait()

	onProgress(progress.Event{Fraction: 1.0, Terminal: true})
	return results
}

// runOne shields the batch from a panicking pipeline.
func (r *Runner) runOne(ctx context.Context, item model.MediaItem) (path string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in acquisition: %v", rec)
		}
	}()
	return r.acq.Acquire(ctx, item, nil)
}
