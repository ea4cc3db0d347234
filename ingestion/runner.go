package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Runner ingests many items concurrently over a shared worker pool.
// Different items never contend on the same records, so concurrent runs are
// safe; the same item id should not be submitted twice in one batch.
type Runner struct {
	pipeline *Pipeline
	pool     *ants.Pool
	logger   *slog.Logger

	mu       sync.Mutex
	released bool
}

// RunReport is the outcome of one item's ingestion within a batch.
type RunReport struct {
	ItemID string
	Result *IngestResult
	Err    error
}

// NewRunner creates a runner over the given pipeline.
// poolSize < 1 defaults to runtime.NumCPU() / 2, with a minimum of 1.
func NewRunner(pipeline *Pipeline, poolSize int) (*Runner, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if poolSize < 1 {
		poolSize = runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Runner{
		pipeline: pipeline,
		pool:     pool,
		logger:   slog.Default(),
	}, nil
}

// IngestAll runs the pipeline for every item id and waits for the batch to
// finish. Reports come back in the order the ids were given; per-item
// failures are recorded in the report, not returned.
func (r *Runner) IngestAll(ctx context.Context, itemIDs []string, opts *IngestOptions) ([]*RunReport, error) {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return nil, ErrRunnerReleased
	}
	r.mu.Unlock()

	reports := make([]*RunReport, len(itemIDs))
	var wg sync.WaitGroup

	for i, itemID := range itemIDs {
		reports[i] = &RunReport{ItemID: itemID}
		report := reports[i]

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			report.Result, report.Err = r.pipeline.Ingest(ctx, report.ItemID, opts)
			if report.Err != nil {
				r.logger.Error("batch ingestion item failed", "item", report.ItemID, "err", report.Err)
			}
		})
		if err != nil {
			wg.Done()
			report.Err = err
		}
	}

	wg.Wait()
	return reports, nil
}

// Release shuts down the worker pool.
// The runner should not be used after calling Release.
func (r *Runner) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.pool.Release()
}
