// Package metrics provides thread-safe outcome aggregation for load test runs.
//
// The central [Collector] type folds every request [Outcome] into running
// counts, per-status and per-error tallies, and an HDR histogram of
// latencies (1µs to 60s at 3 significant figures, so percentile error is
// bounded well under 1% across the full range):
//
//	collector := metrics.NewCollector()
//
//	// From any number of workers:
//	collector.Record(metrics.Outcome{Status: 200, Elapsed: latency, BytesReceived: n})
//
//	// Once, after the run completes:
//	summary := collector.Summarize(requested, elapsed)
//
// A present Status counts as a success regardless of its numeric range;
// only a transport-level [ErrorKind] marks an attempt as failed. HTTP
// error codes such as 500 show up in Summary.StatusCounts and can be
// reclassified by the reporting or threshold layer.
package metrics
