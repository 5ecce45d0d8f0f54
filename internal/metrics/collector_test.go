package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

func TestCollectorLatencyStats(t *testing.T) {
	c := metrics.NewCollector()

	// Record deterministic latencies.
	for _, ms := range []int{10, 20, 30, 40, 50} {
		c.Record(metrics.Outcome{Status: 200, Elapsed: time.Duration(ms) * time.Millisecond, BytesReceived: 100})
	}

	s := c.Summarize(5, 0)

	if s.Total != 5 {
		t.Errorf("expected total 5, got %d", s.Total)
	}
	if s.Successes != 5 {
		t.Errorf("expected successes 5, got %d", s.Successes)
	}
	if s.Failures != 0 {
		t.Errorf("expected failures 0, got %d", s.Failures)
	}
	if s.MinLatency != 10*time.Millisecond {
		t.Errorf("expected min 10ms, got %s", s.MinLatency)
	}
	if s.MaxLatency != 50*time.Millisecond {
		t.Errorf("expected max 50ms, got %s", s.MaxLatency)
	}
	if s.MeanLatency != 30*time.Millisecond {
		t.Errorf("expected mean 30ms, got %s", s.MeanLatency)
	}
	if s.TotalBytes != 500 {
		t.Errorf("expected total bytes 500, got %d", s.TotalBytes)
	}
	if !s.BytesKnown {
		t.Error("expected bytes known when every outcome reported a size")
	}
}

func TestPercentileCalculations(t *testing.T) {
	c := metrics.NewCollector()

	// 100 samples: 1ms, 2ms, ..., 100ms.
	for i := 1; i <= 100; i++ {
		c.Record(metrics.Outcome{Status: 200, Elapsed: time.Duration(i) * time.Millisecond, BytesReceived: -1})
	}

	s := c.Summarize(100, 0)

	if s.P50Latency < 49*time.Millisecond || s.P50Latency > 51*time.Millisecond {
		t.Errorf("expected P50 ~50ms, got %s", s.P50Latency)
	}
	if s.P90Latency < 89*time.Millisecond || s.P90Latency > 91*time.Millisecond {
		t.Errorf("expected P90 ~90ms, got %s", s.P90Latency)
	}
	if s.P95Latency < 94*time.Millisecond || s.P95Latency > 96*time.Millisecond {
		t.Errorf("expected P95 ~95ms, got %s", s.P95Latency)
	}
	if s.P99Latency < 98*time.Millisecond || s.P99Latency > 100*time.Millisecond {
		t.Errorf("expected P99 ~99ms, got %s", s.P99Latency)
	}
	if s.MinLatency != time.Millisecond {
		t.Errorf("expected min 1ms, got %s", s.MinLatency)
	}
	if s.MaxLatency != 100*time.Millisecond {
		t.Errorf("expected max 100ms, got %s", s.MaxLatency)
	}
	expectedMean := 50500 * time.Microsecond
	if s.MeanLatency != expectedMean {
		t.Errorf("expected mean 50.5ms, got %s", s.MeanLatency)
	}
}

func TestPercentilesBoundedByExtremes(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Outcome{Status: 200, Elapsed: 37 * time.Millisecond, BytesReceived: -1})

	s := c.Summarize(1, 0)

	for name, p := range map[string]time.Duration{
		"p50": s.P50Latency,
		"p90": s.P90Latency,
		"p95": s.P95Latency,
		"p99": s.P99Latency,
	} {
		if p < s.MinLatency || p > s.MaxLatency {
			t.Errorf("%s = %s outside [min=%s, max=%s]", name, p, s.MinLatency, s.MaxLatency)
		}
		if p != 37*time.Millisecond {
			t.Errorf("single sample: expected %s = 37ms, got %s", name, p)
		}
	}
}

func TestStatusAndErrorTallies(t *testing.T) {
	c := metrics.NewCollector()

	c.Record(metrics.Outcome{Status: 200, Elapsed: time.Millisecond, BytesReceived: 10})
	c.Record(metrics.Outcome{Status: 200, Elapsed: time.Millisecond, BytesReceived: 10})
	c.Record(metrics.Outcome{Status: 503, Elapsed: time.Millisecond, BytesReceived: 5})
	c.Record(metrics.Outcome{Elapsed: time.Millisecond, BytesReceived: -1, Kind: metrics.ErrorConnectionFailed, Detail: "dial tcp: connection refused"})
	c.Record(metrics.Outcome{Elapsed: time.Millisecond, BytesReceived: -1, Kind: metrics.ErrorTimeout, Detail: "context deadline exceeded"})

	s := c.Summarize(5, 0)

	// A 503 still carries a status, so it counts as a dispatch success.
	if s.Successes != 3 {
		t.Errorf("expected 3 successes, got %d", s.Successes)
	}
	if s.Failures != 2 {
		t.Errorf("expected 2 failures, got %d", s.Failures)
	}
	if s.Successes+s.Failures != s.Total {
		t.Errorf("successes+failures=%d does not equal total=%d", s.Successes+s.Failures, s.Total)
	}
	if s.StatusCounts[200] != 2 || s.StatusCounts[503] != 1 {
		t.Errorf("unexpected status counts: %v", s.StatusCounts)
	}
	if s.ErrorCounts[metrics.ErrorConnectionFailed] != 1 || s.ErrorCounts[metrics.ErrorTimeout] != 1 {
		t.Errorf("unexpected error counts: %v", s.ErrorCounts)
	}
	if s.ErrorSamples[metrics.ErrorConnectionFailed] != "dial tcp: connection refused" {
		t.Errorf("unexpected error sample: %q", s.ErrorSamples[metrics.ErrorConnectionFailed])
	}
	if s.BytesKnown {
		t.Error("expected bytes incomplete when some outcomes had unknown sizes")
	}
}

func TestConcurrentRecordNoLostUpdates(t *testing.T) {
	c := metrics.NewCollector()

	const workers = 16
	const perWorker = 500

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if i%2 == 0 {
					c.Record(metrics.Outcome{Status: 200, Elapsed: 5 * time.Millisecond, BytesReceived: 1})
				} else {
					c.Record(metrics.Outcome{Elapsed: 2 * time.Millisecond, BytesReceived: -1, Kind: metrics.ErrorConnectionFailed})
				}
			}
		}(w)
	}
	wg.Wait()

	s := c.Summarize(workers*perWorker, time.Second)

	want := int64(workers * perWorker)
	if s.Total != want {
		t.Fatalf("expected total %d, got %d", want, s.Total)
	}
	if s.Successes != want/2 {
		t.Errorf("expected %d successes, got %d", want/2, s.Successes)
	}
	if s.Failures != want/2 {
		t.Errorf("expected %d failures, got %d", want/2, s.Failures)
	}
	if s.ErrorCounts[metrics.ErrorConnectionFailed] != want/2 {
		t.Errorf("expected %d connection failures, got %d", want/2, s.ErrorCounts[metrics.ErrorConnectionFailed])
	}
	if s.TotalBytes != want/2 {
		t.Errorf("expected %d total bytes, got %d", want/2, s.TotalBytes)
	}
}

func TestSummarizeEmptyCollector(t *testing.T) {
	c := metrics.NewCollector()
	s := c.Summarize(0, time.Second)

	if s.Total != 0 || s.Successes != 0 || s.Failures != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if s.MeanLatency != 0 || s.SuccessRate != 0 || s.RequestsPerSec != 0 {
		t.Errorf("expected zero derived stats, got mean=%s rate=%f rps=%f", s.MeanLatency, s.SuccessRate, s.RequestsPerSec)
	}
}
