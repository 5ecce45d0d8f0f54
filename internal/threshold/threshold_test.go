package threshold

import (
	"strings"
	"testing"
	"time"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "p95 latency",
			input: "latency:p95 < 500",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p95",
				Operator:  "<",
				Value:     500,
				Raw:       "latency:p95 < 500",
			},
		},
		{
			name:  "failure rate",
			input: "failed:rate < 0.01",
			want: Threshold{
				Metric:    "failed",
				Aggregate: "rate",
				Operator:  "<",
				Value:     0.01,
				Raw:       "failed:rate < 0.01",
			},
		},
		{
			name:  "throughput floor",
			input: "requests:rate >= 100",
			want: Threshold{
				Metric:    "requests",
				Aggregate: "rate",
				Operator:  ">=",
				Value:     100,
				Raw:       "requests:rate >= 100",
			},
		},
		{
			name:  "zero failures",
			input: "failed:count == 0",
			want: Threshold{
				Metric:    "failed",
				Aggregate: "count",
				Operator:  "==",
				Value:     0,
				Raw:       "failed:count == 0",
			},
		},
		{
			name:  "transfer rate",
			input: "bytes:rate > 50000",
			want: Threshold{
				Metric:    "bytes",
				Aggregate: "rate",
				Operator:  ">",
				Value:     50000,
				Raw:       "bytes:rate > 50000",
			},
		},
		{name: "empty", input: "", wantError: true},
		{name: "missing aggregate", input: "latency < 500", wantError: true},
		{name: "unknown metric", input: "cpu:avg < 50", wantError: true},
		{name: "wrong aggregate for metric", input: "failed:p95 < 10", wantError: true},
		{name: "bad operator", input: "latency:p95 ! 500", wantError: true},
		{name: "not a number", input: "latency:p95 < fast", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultipleCollectsErrors(t *testing.T) {
	_, err := ParseMultiple([]string{"latency:p95 < 500", "bogus", "also:bad < 1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "threshold[1]") || !strings.Contains(err.Error(), "threshold[2]") {
		t.Errorf("expected both errors reported, got %v", err)
	}
}

func sampleSummary() metrics.Summary {
	s := metrics.Summary{
		Requested:      100,
		Total:          100,
		Successes:      98,
		Failures:       2,
		SuccessRate:    0.98,
		MinLatency:     5 * time.Millisecond,
		MaxLatency:     900 * time.Millisecond,
		MeanLatency:    120 * time.Millisecond,
		P50Latency:     100 * time.Millisecond,
		P90Latency:     300 * time.Millisecond,
		P95Latency:     450 * time.Millisecond,
		P99Latency:     800 * time.Millisecond,
		Duration:       2 * time.Second,
		RequestsPerSec: 50,
		TotalBytes:     200000,
		BytesKnown:     true,
		TransferRate:   100000,
	}
	return s
}

func mustParse(t *testing.T, s string) Threshold {
	t.Helper()
	th, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return th
}

func TestEvaluate(t *testing.T) {
	summary := sampleSummary()
	summary.MinLatencyMs = 5
	summary.MaxLatencyMs = 900
	summary.MeanLatencyMs = 120
	summary.P50LatencyMs = 100
	summary.P90LatencyMs = 300
	summary.P95LatencyMs = 450
	summary.P99LatencyMs = 800

	tests := []struct {
		spec string
		pass bool
	}{
		{"latency:p95 < 500", true},
		{"latency:p95 < 400", false},
		{"latency:avg <= 120", true},
		{"latency:max < 1000", true},
		{"failed:rate < 0.05", true},
		{"failed:rate < 0.01", false},
		{"failed:count == 2", true},
		{"requests:rate >= 50", true},
		{"requests:count == 100", true},
		{"bytes:total > 100000", true},
		{"bytes:rate > 200000", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			ev := NewEvaluator([]Threshold{mustParse(t, tt.spec)})
			results := ev.Evaluate(summary)
			if len(results) != 1 {
				t.Fatalf("expected one result, got %d", len(results))
			}
			if results[0].Pass != tt.pass {
				t.Errorf("%s: pass = %v, want %v (%s)", tt.spec, results[0].Pass, tt.pass, results[0].Message)
			}
		})
	}
}

func TestEvaluateBytesUnknown(t *testing.T) {
	summary := sampleSummary()
	summary.BytesKnown = false

	ev := NewEvaluator([]Threshold{mustParse(t, "bytes:total > 1")})
	results := ev.Evaluate(summary)
	if results[0].Pass {
		t.Error("byte threshold must fail when sizes were not all reported")
	}
	if !strings.Contains(results[0].Message, "error:") {
		t.Errorf("expected error message, got %q", results[0].Message)
	}
}

func TestEvaluateEmptyRun(t *testing.T) {
	ev := NewEvaluator([]Threshold{mustParse(t, "latency:avg < 100")})
	results := ev.Evaluate(metrics.Summary{})
	if results[0].Pass {
		t.Error("latency threshold over an empty run must fail, not vacuously pass")
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed(nil) {
		t.Error("no thresholds should pass")
	}
	if AllPassed([]Result{{Pass: true}, {Pass: false}}) {
		t.Error("any failure should fail the set")
	}
	if !AllPassed([]Result{{Pass: true}, {Pass: true}}) {
		t.Error("all passing should pass")
	}
}
