package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

// Runner dispatches a fixed number of requests across a bounded pool of
// workers and aggregates their outcomes.
type Runner struct {
	opt Options
}

// New validates opts and builds a Runner. Concurrency is capped at the
// total request count.
func New(opt Options) (*Runner, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	opt.normalize()
	return &Runner{opt: opt}, nil
}

// Collector exposes the outcome sink so callers can poll live counts
// while Run is in flight.
func (r *Runner) Collector() *metrics.Collector {
	return r.opt.Collector
}

// Run executes the configured load and blocks until every worker has
// drained. Cancelling ctx stops workers from claiming new attempts;
// requests already in flight run to completion (or until their own
// timeout fires) and are still counted. The summary reflects exactly
// the outcomes that landed.
func (r *Runner) Run(ctx context.Context) metrics.Summary {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	// Workers race on a shared counter to claim attempt numbers.
	// A worker that draws a number past the total is done.
	var next int64
	total := int64(r.opt.Total)

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				attempt := atomic.AddInt64(&next, 1) - 1
				if attempt >= total {
					return
				}
				r.opt.Collector.Record(r.dispatch(ctx, int(attempt)))
			}
		}()
	}
	wg.Wait()

	return r.opt.Collector.Summarize(r.opt.Total, time.Since(start))
}

// dispatch builds and executes one attempt. A spec source failure
// becomes an outcome rather than aborting the run: one bad attempt
// should not sink the other N-1.
func (r *Runner) dispatch(ctx context.Context, attempt int) metrics.Outcome {
	begin := time.Now()
	spec, err := r.opt.Source(ctx, attempt)
	if err != nil {
		return metrics.Outcome{
			Elapsed:       time.Since(begin),
			BytesReceived: -1,
			Kind:          metrics.ErrorOther,
			Detail:        fmt.Sprintf("build request %d: %v", attempt, err),
		}
	}
	return r.opt.Transport.Execute(ctx, spec)
}
