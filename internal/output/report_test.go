package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nikpietanze/Pressr/internal/metrics"
	"github.com/nikpietanze/Pressr/internal/threshold"
)

func sampleSummary() metrics.Summary {
	return metrics.Summary{
		Requested:      100,
		Total:          100,
		Successes:      97,
		Failures:       3,
		SuccessRate:    0.97,
		MinLatency:     2 * time.Millisecond,
		MaxLatency:     450 * time.Millisecond,
		MeanLatency:    80 * time.Millisecond,
		StdDevLatency:  30 * time.Millisecond,
		P50Latency:     70 * time.Millisecond,
		P90Latency:     200 * time.Millisecond,
		P95Latency:     300 * time.Millisecond,
		P99Latency:     440 * time.Millisecond,
		Duration:       4 * time.Second,
		RequestsPerSec: 25,
		StatusCounts:   map[int]int64{200: 95, 503: 2},
		ErrorCounts:    map[metrics.ErrorKind]int64{metrics.ErrorTimeout: 3},
		ErrorSamples:   map[metrics.ErrorKind]string{metrics.ErrorTimeout: "context deadline exceeded"},
		TotalBytes:     1 << 20,
		BytesKnown:     true,
		TransferRate:   262144,
	}
}

func sampleMetadata() ReportMetadata {
	return ReportMetadata{
		RunID:       NewRunID(time.Now()),
		TargetURL:   "https://example.com/api",
		Method:      "GET",
		Requested:   100,
		Concurrency: 10,
		StartedAt:   time.Now(),
	}
}

func TestPrintReportSections(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleSummary(), nil)
	out := buf.String()

	for _, want := range []string{
		"SUMMARY",
		"TIMING",
		"STATUS CODES",
		"ERRORS",
		"Successful:      97 (97.0%)",
		"200: 95",
		"503: 2",
		"timeout: 3",
		"context deadline exceeded",
		"1.00 MiB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "THRESHOLDS") {
		t.Error("threshold section must be absent without thresholds")
	}
}

func TestPrintReportInterrupted(t *testing.T) {
	summary := sampleSummary()
	summary.Total = 40
	summary.Interrupted = true

	var buf bytes.Buffer
	PrintReport(&buf, summary, nil)
	if !strings.Contains(buf.String(), "(interrupted, 100 requested)") {
		t.Errorf("expected interruption note:\n%s", buf.String())
	}
}

func TestPrintReportThresholds(t *testing.T) {
	results := []threshold.Result{
		{Pass: true, Message: "PASS latency:p95 < 500 (actual 300.00 < 500.00)"},
		{Pass: false, Message: "FAIL failed:count == 0 (actual 3.00 == 0.00)"},
	}

	var buf bytes.Buffer
	PrintReport(&buf, sampleSummary(), results)
	out := buf.String()
	if !strings.Contains(out, "THRESHOLDS") || !strings.Contains(out, "FAIL failed:count == 0") {
		t.Errorf("expected threshold section:\n%s", out)
	}
}

func TestPrintJSONReport(t *testing.T) {
	th, err := threshold.Parse("latency:p95 < 500")
	if err != nil {
		t.Fatalf("parse threshold: %v", err)
	}
	results := []threshold.Result{{Threshold: th, Actual: 300, Pass: true, Message: "PASS"}}

	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleSummary(), results, sampleMetadata()); err != nil {
		t.Fatalf("print json: %v", err)
	}

	var decoded struct {
		Metadata struct {
			RunID  string `json:"run_id"`
			Method string `json:"method"`
		} `json:"metadata"`
		Summary struct {
			Total       int64   `json:"total"`
			SuccessRate float64 `json:"success_rate"`
		} `json:"summary"`
		Thresholds []struct {
			Threshold string `json:"threshold"`
			Pass      bool   `json:"pass"`
		} `json:"thresholds"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if decoded.Metadata.RunID == "" || decoded.Metadata.Method != "GET" {
		t.Errorf("metadata not serialized: %+v", decoded.Metadata)
	}
	if decoded.Summary.Total != 100 {
		t.Errorf("expected total 100, got %d", decoded.Summary.Total)
	}
	if len(decoded.Thresholds) != 1 || !decoded.Thresholds[0].Pass {
		t.Errorf("thresholds not serialized: %+v", decoded.Thresholds)
	}
}

func TestNewRunIDSortable(t *testing.T) {
	early := NewRunID(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	late := NewRunID(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if len(early) != 26 || len(late) != 26 {
		t.Fatalf("unexpected id lengths %d/%d", len(early), len(late))
	}
	if early >= late {
		t.Errorf("ids must sort by time: %s >= %s", early, late)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KiB"},
		{3 << 20, "3.00 MiB"},
		{5 << 30, "5.00 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
