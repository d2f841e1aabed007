// Package batch drives many seed requests through a job runner, persisting
// progress after every seed so an interrupted run can be resumed without
// repeating finished work.
package batch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/packforge/packforge/internal/state"
)

// JobRunner generates one seed's full character pack and returns where the
// draft was written. Implementations must be safe for concurrent use.
type JobRunner interface {
	RunSeed(ctx context.Context, seed string, index int) (string, error)
}

// Options control one batch invocation. They are captured into the batch
// state's config snapshot by the caller, so resume replays the same values.
type Options struct {
	InputSource     string
	Config          state.ConfigSnapshot
	Concurrency     int
	MinInterval     time.Duration
	Sequential      bool
	ContinueOnError bool
}

// Engine executes batches against a JobRunner with per-seed persistence.
// The engine is the sole mutator of a running batch's state; recordSuccess
// and recordFailure serialize mutation under mu so parallel workers never
// race on the snapshot.
type Engine struct {
	store  *state.Store
	runner JobRunner
	mu     sync.Mutex
}

// New creates a batch engine.
func New(store *state.Store, runner JobRunner) *Engine {
	return &Engine{store: store, runner: runner}
}

// Run executes a fresh batch over seeds. The returned state reflects the
// final outcome even when individual seeds failed; the error is reserved for
// faults that prevented the batch from running at all.
func (e *Engine) Run(ctx context.Context, seeds []string, opts Options) (*state.BatchState, error) {
	bs := &state.BatchState{
		ID:          uuid.New().String(),
		StartTimeMs: time.Now().UnixMilli(),
		TotalSeeds:  len(seeds),
		InputSource: opts.InputSource,
		Config:      opts.Config,
		Completed:   []state.SeedResult{},
		Failed:      []state.SeedFailure{},
		Status:      state.StatusRunning,
	}
	if err := e.store.SaveBatch(ctx, bs); err != nil {
		return nil, fmt.Errorf("failed to persist initial batch state: %w", err)
	}

	log.Printf("[Batch] Starting batch %s: %d seeds", bs.ID, len(seeds))
	return e.execute(ctx, bs, seeds, opts)
}

// Resume continues an interrupted or cancelled batch. The original seed list
// is reloaded from the recorded input source and already-attempted seeds are
// skipped by exact string match. Generation parameters come from the
// persisted config snapshot, never from current flags.
func (e *Engine) Resume(ctx context.Context, bs *state.BatchState) (*state.BatchState, error) {
	original, err := LoadSeeds(bs.InputSource)
	if err != nil {
		return nil, fmt.Errorf("input source %q is no longer reachable: %w", bs.InputSource, err)
	}

	remaining := bs.Remaining(original)
	log.Printf("[Batch] Resuming batch %s: %d of %d seeds remaining", bs.ID, len(remaining), bs.TotalSeeds)

	bs.Status = state.StatusRunning
	if err := e.store.SaveBatch(ctx, bs); err != nil {
		return nil, fmt.Errorf("failed to persist resumed batch state: %w", err)
	}

	opts := Options{
		InputSource:     bs.InputSource,
		Config:          bs.Config,
		Concurrency:     bs.Config.Concurrency,
		MinInterval:     time.Duration(bs.Config.MinIntervalMs) * time.Millisecond,
		Sequential:      bs.Config.Sequential,
		ContinueOnError: bs.Config.ContinueOnError,
	}
	return e.execute(ctx, bs, remaining, opts)
}

func (e *Engine) execute(ctx context.Context, bs *state.BatchState, seeds []string, opts Options) (*state.BatchState, error) {
	if opts.Sequential {
		e.runSequential(ctx, bs, seeds, opts)
	} else {
		e.runParallel(ctx, bs, seeds, opts)
	}
	return e.finalize(ctx, bs)
}

// runSequential attempts seeds one at a time. On failure the batch is
// cancelled unless continue-on-error is set; unattempted seeds stay pending
// for a later resume.
func (e *Engine) runSequential(ctx context.Context, bs *state.BatchState, seeds []string, opts Options) {
	base := bs.CurrentIndex
	for i, seed := range seeds {
		location, err := e.runner.RunSeed(ctx, seed, base+i)
		if err != nil {
			e.recordFailure(ctx, bs, seed, err)
			if !opts.ContinueOnError {
				bs.Status = state.StatusCancelled
				return
			}
			continue
		}
		e.recordSuccess(ctx, bs, seed, location)
	}
}

// runParallel attempts seeds on up to Concurrency workers. Admission goes
// through a semaphore and then the shared limiter, so dispatch respects the
// minimum interval even when many workers are free. Failures are collected;
// parallel batches never cancel early.
func (e *Engine) runParallel(ctx context.Context, bs *state.BatchState, seeds []string, opts Options) {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	limiter := NewLimiter(opts.MinInterval)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	base := bs.CurrentIndex
	for i, seed := range seeds {
		wg.Add(1)
		sem <- struct{}{}

		go func(index int, seed string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				e.recordFailure(ctx, bs, seed, err)
				return
			}

			location, err := e.runner.RunSeed(ctx, seed, index)
			if err != nil {
				e.recordFailure(ctx, bs, seed, err)
				return
			}
			e.recordSuccess(ctx, bs, seed, location)
		}(base+i, seed)
	}

	wg.Wait()
}

// finalize stamps the terminal status and persists it. A batch that finished
// with zero failures has no further recovery value, so its snapshot is
// deleted outright.
func (e *Engine) finalize(ctx context.Context, bs *state.BatchState) (*state.BatchState, error) {
	if bs.Status != state.StatusCancelled {
		bs.Status = state.StatusCompleted
	}
	if err := e.store.SaveBatch(ctx, bs); err != nil {
		return bs, fmt.Errorf("failed to persist final batch state: %w", err)
	}

	if bs.Status == state.StatusCompleted && len(bs.Failed) == 0 {
		if err := e.store.DeleteBatch(ctx, bs.ID); err != nil {
			log.Printf("[Batch] Warning: failed to delete completed batch state %s: %v", bs.ID, err)
		}
	}

	log.Printf("[Batch] Batch %s finished: %d completed, %d failed, status=%s",
		bs.ID, len(bs.Completed), len(bs.Failed), bs.Status)
	return bs, nil
}

func (e *Engine) recordSuccess(ctx context.Context, bs *state.BatchState, seed, location string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bs.Completed = append(bs.Completed, state.SeedResult{Seed: seed, OutputLocation: location})
	bs.CurrentIndex++
	e.persist(ctx, bs)
}

func (e *Engine) recordFailure(ctx context.Context, bs *state.BatchState, seed string, err error) {
	log.Printf("[Batch] Seed failed in batch %s: %v", bs.ID, err)
	e.mu.Lock()
	defer e.mu.Unlock()
	bs.Failed = append(bs.Failed, state.SeedFailure{Seed: seed, Error: err.Error()})
	bs.CurrentIndex++
	e.persist(ctx, bs)
}

// persist writes the snapshot mid-run. A failed write must not discard the
// generation work already done, so it is logged and the batch carries on;
// the next per-seed write retries the full snapshot anyway.
func (e *Engine) persist(ctx context.Context, bs *state.BatchState) {
	if err := e.store.SaveBatch(ctx, bs); err != nil {
		log.Printf("[Batch] Warning: failed to persist batch state %s: %v", bs.ID, err)
	}
}
