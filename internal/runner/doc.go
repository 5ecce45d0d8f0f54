// Package runner provides the load dispatch engine for pressr.
//
// A Runner fans a fixed number of request attempts out over a bounded
// pool of workers. Workers claim attempt numbers from a shared counter,
// build each request through a [SpecSource], execute it through a
// [Transport], and record the resulting outcome in a metrics collector.
//
// # Basic Usage
//
//	r, err := runner.New(runner.Options{
//		Total:       1000,
//		Concurrency: 50,
//		Transport:   transport,
//		Source:      source,
//	})
//	if err != nil {
//		return err
//	}
//	summary := r.Run(ctx)
//
// Run blocks until every attempt has either completed or been skipped
// due to cancellation, then returns the aggregated [metrics.Summary].
// At most Concurrency requests are ever in flight; there is no pacing
// between them, so the load is closed-loop.
//
// # Middleware
//
// [WithLogging] wraps a Transport so failed outcomes are reported as
// they happen instead of only in the final summary.
package runner
