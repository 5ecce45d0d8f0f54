package metrics_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

func TestSummaryRatesAndThroughput(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 40; i++ {
		c.Record(metrics.Outcome{Status: 200, Elapsed: 10 * time.Millisecond, BytesReceived: 50})
	}
	for i := 0; i < 10; i++ {
		c.Record(metrics.Outcome{Elapsed: 10 * time.Millisecond, BytesReceived: -1, Kind: metrics.ErrorTimeout})
	}

	s := c.Summarize(50, time.Second)

	if s.RequestsPerSec != 50 {
		t.Errorf("expected 50 req/s, got %f", s.RequestsPerSec)
	}
	if math.Abs(s.SuccessRate-0.8) > 1e-9 {
		t.Errorf("expected success rate 0.8, got %f", s.SuccessRate)
	}
	if s.Interrupted {
		t.Error("complete run must not be marked interrupted")
	}
	if s.TransferRate != 0 {
		t.Errorf("transfer rate must be absent when sizes are incomplete, got %f", s.TransferRate)
	}
}

func TestSummaryTransferRate(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 10; i++ {
		c.Record(metrics.Outcome{Status: 200, Elapsed: time.Millisecond, BytesReceived: 1000})
	}

	s := c.Summarize(10, 2*time.Second)

	if !s.BytesKnown {
		t.Fatal("expected bytes known")
	}
	if s.TransferRate != 5000 {
		t.Errorf("expected 5000 bytes/s, got %f", s.TransferRate)
	}
}

func TestSummaryStdDev(t *testing.T) {
	c := metrics.NewCollector()
	// Samples 10ms, 20ms, 30ms, 40ms: sample std dev is sqrt(500/3) ms.
	for _, ms := range []int{10, 20, 30, 40} {
		c.Record(metrics.Outcome{Status: 200, Elapsed: time.Duration(ms) * time.Millisecond, BytesReceived: -1})
	}

	s := c.Summarize(4, 0)

	want := math.Sqrt(500.0 / 3.0)
	if math.Abs(s.StdDevLatencyMs-want) > 0.01 {
		t.Errorf("expected std dev %.4fms, got %.4fms", want, s.StdDevLatencyMs)
	}
}

func TestSummaryInterrupted(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 7; i++ {
		c.Record(metrics.Outcome{Status: 200, Elapsed: time.Millisecond, BytesReceived: -1})
	}

	s := c.Summarize(20, time.Second)

	if !s.Interrupted {
		t.Error("expected summary marked interrupted when total < requested")
	}
	if s.Total != 7 || s.Requested != 20 {
		t.Errorf("expected total=7 requested=20, got total=%d requested=%d", s.Total, s.Requested)
	}
}

func TestSummaryJSONFields(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Outcome{Status: 500, Elapsed: 12 * time.Millisecond, BytesReceived: 64})

	s := c.Summarize(1, 100*time.Millisecond)

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	for _, key := range []string{"requested", "total", "successes", "failures", "success_rate", "requests_per_sec", "p99_latency_ms", "duration_ms", "status_counts", "total_bytes"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected JSON field %q, got %s", key, raw)
		}
	}
}
