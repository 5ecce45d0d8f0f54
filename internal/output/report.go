package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nikpietanze/Pressr/internal/metrics"
	"github.com/nikpietanze/Pressr/internal/threshold"
)

// ReportMetadata identifies the run a report describes.
type ReportMetadata struct {
	RunID       string    `json:"run_id"`
	TargetURL   string    `json:"target_url"`
	Method      string    `json:"method"`
	Requested   int       `json:"requested"`
	Concurrency int       `json:"concurrency"`
	StartedAt   time.Time `json:"started_at"`
}

// NewRunID returns a lexically sortable run identifier.
func NewRunID(now time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// PrintReport writes the human-readable summary.
func PrintReport(w io.Writer, summary metrics.Summary, results []threshold.Result) {
	fmt.Fprintln(w, "\nSUMMARY")
	fmt.Fprintf(w, "  Requests:        %d", summary.Total)
	if summary.Interrupted {
		fmt.Fprintf(w, " (interrupted, %d requested)", summary.Requested)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Successful:      %d (%.1f%%)\n", summary.Successes, summary.SuccessRate*100)
	fmt.Fprintf(w, "  Failed:          %d\n", summary.Failures)
	fmt.Fprintf(w, "  Duration:        %s\n", summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Requests/sec:    %.2f\n", summary.RequestsPerSec)
	if summary.BytesKnown {
		fmt.Fprintf(w, "  Data received:   %s (%s/s)\n", formatBytes(summary.TotalBytes), formatBytes(int64(summary.TransferRate)))
	}

	if summary.Total > 0 {
		fmt.Fprintln(w, "\nTIMING")
		fmt.Fprintf(w, "  Min:             %s\n", formatLatency(summary.MinLatency))
		fmt.Fprintf(w, "  Max:             %s\n", formatLatency(summary.MaxLatency))
		fmt.Fprintf(w, "  Mean:            %s\n", formatLatency(summary.MeanLatency))
		fmt.Fprintf(w, "  Std Dev:         %s\n", formatLatency(summary.StdDevLatency))
		fmt.Fprintf(w, "  P50:             %s\n", formatLatency(summary.P50Latency))
		fmt.Fprintf(w, "  P90:             %s\n", formatLatency(summary.P90Latency))
		fmt.Fprintf(w, "  P95:             %s\n", formatLatency(summary.P95Latency))
		fmt.Fprintf(w, "  P99:             %s\n", formatLatency(summary.P99Latency))
	}

	if len(summary.StatusCounts) > 0 {
		fmt.Fprintln(w, "\nSTATUS CODES")
		for _, code := range sortedStatusCodes(summary.StatusCounts) {
			fmt.Fprintf(w, "  %d: %d\n", code, summary.StatusCounts[code])
		}
	}

	if len(summary.ErrorCounts) > 0 {
		fmt.Fprintln(w, "\nERRORS")
		for _, kind := range sortedErrorKinds(summary.ErrorCounts) {
			fmt.Fprintf(w, "  %s: %d\n", kind, summary.ErrorCounts[kind])
			if sample := summary.ErrorSamples[kind]; sample != "" {
				fmt.Fprintf(w, "    e.g. %s\n", sample)
			}
		}
	}

	if len(results) > 0 {
		fmt.Fprintln(w, "\nTHRESHOLDS")
		for _, r := range results {
			fmt.Fprintf(w, "  %s\n", r.Message)
		}
	}
}

// jsonReport is the envelope for machine-readable output.
type jsonReport struct {
	Metadata   ReportMetadata        `json:"metadata"`
	Summary    metrics.Summary       `json:"summary"`
	Thresholds []thresholdResultJSON `json:"thresholds,omitempty"`
}

type thresholdResultJSON struct {
	Threshold string  `json:"threshold"`
	Actual    float64 `json:"actual"`
	Expected  float64 `json:"expected"`
	Pass      bool    `json:"pass"`
	Message   string  `json:"message"`
}

// PrintJSONReport writes the summary as indented JSON.
func PrintJSONReport(w io.Writer, summary metrics.Summary, results []threshold.Result, metadata ReportMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Metadata:   metadata,
		Summary:    summary,
		Thresholds: thresholdResults(results),
	})
}

func thresholdResults(results []threshold.Result) []thresholdResultJSON {
	if len(results) == 0 {
		return nil
	}
	out := make([]thresholdResultJSON, len(results))
	for i, r := range results {
		out[i] = thresholdResultJSON{
			Threshold: r.Threshold.Raw,
			Actual:    r.Actual,
			Expected:  r.Threshold.Value,
			Pass:      r.Pass,
			Message:   r.Message,
		}
	}
	return out
}

func sortedStatusCodes(counts map[int]int64) []int {
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

func sortedErrorKinds(counts map[metrics.ErrorKind]int64) []metrics.ErrorKind {
	kinds := make([]metrics.ErrorKind, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func formatLatency(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func formatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GiB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MiB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KiB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
