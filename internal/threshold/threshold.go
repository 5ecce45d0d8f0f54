package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

// Threshold is a pass/fail assertion over a run summary.
type Threshold struct {
	Metric    string  // "latency", "failed", "requests", "bytes"
	Aggregate string  // "p95", "avg", "max", "rate", "count", ...
	Operator  string  // "<", "<=", ">", ">=", "=="
	Value     float64 // value to compare against
	Raw       string  // original threshold string for display
}

// Result is the outcome of evaluating one threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator checks thresholds against a finished run.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every threshold against the summary.
func (e *Evaluator) Evaluate(summary metrics.Summary) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, summary))
	}
	return results
}

// AllPassed reports whether no result failed. An empty slice passes.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, summary metrics.Summary) Result {
	actual, err := metricValue(t, summary)
	if err != nil {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compare(actual, t.Operator, t.Value)
	status := "PASS"
	if !pass {
		status = "FAIL"
	}

	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s (actual %.2f %s %.2f)", status, t.Raw, actual, t.Operator, t.Value),
	}
}

// Parse parses a threshold string of the form "metric:aggregate op value".
// Supported forms:
//   - "latency:p95 < 500"      (latency percentile in ms; also p50, p90, p99)
//   - "latency:avg < 200"      (mean latency in ms; min and max work too)
//   - "failed:rate < 0.01"     (failure rate as a decimal)
//   - "failed:count == 0"      (absolute failure count)
//   - "requests:rate > 100"    (throughput in requests per second)
//   - "bytes:total > 1000000"  (total bytes received)
//   - "bytes:rate > 50000"     (transfer rate in bytes per second)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected metric:aggregate operator value, e.g. 'latency:p95 < 500')", s)
	}

	metric := matches[1]
	aggregate := matches[2]
	operator := matches[3]

	value, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", matches[4], err)
	}

	aggs, ok := validAggregates[metric]
	if !ok {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: latency, failed, requests, bytes)", metric)
	}
	if !contains(aggs, aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate %q for %s (supported: %s)", aggregate, metric, strings.Join(aggs, ", "))
	}
	if !contains(validOperators, operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses a list of threshold strings, collecting every
// parse error rather than stopping at the first.
func ParseMultiple(specs []string) ([]Threshold, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(specs))
	var problems []string

	for i, s := range specs {
		t, err := Parse(s)
		if err != nil {
			problems = append(problems, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(problems, "; "))
	}
	return result, nil
}

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

var validAggregates = map[string][]string{
	"latency":  {"avg", "min", "max", "p50", "p90", "p95", "p99"},
	"failed":   {"rate", "count"},
	"requests": {"rate", "count"},
	"bytes":    {"total", "rate"},
}

var validOperators = []string{"<", "<=", ">", ">=", "=="}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func metricValue(t Threshold, summary metrics.Summary) (float64, error) {
	switch t.Metric {
	case "latency":
		return latencyValue(t.Aggregate, summary)
	case "failed":
		switch t.Aggregate {
		case "count":
			return float64(summary.Failures), nil
		case "rate":
			if summary.Total == 0 {
				return 0, nil
			}
			return float64(summary.Failures) / float64(summary.Total), nil
		}
	case "requests":
		switch t.Aggregate {
		case "count":
			return float64(summary.Total), nil
		case "rate":
			return summary.RequestsPerSec, nil
		}
	case "bytes":
		if !summary.BytesKnown {
			return 0, fmt.Errorf("byte counts unavailable: not every response reported a size")
		}
		switch t.Aggregate {
		case "total":
			return float64(summary.TotalBytes), nil
		case "rate":
			return summary.TransferRate, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %s:%s", t.Metric, t.Aggregate)
}

func latencyValue(aggregate string, summary metrics.Summary) (float64, error) {
	if summary.Total == 0 {
		return 0, fmt.Errorf("no outcomes recorded")
	}
	switch aggregate {
	case "avg":
		return summary.MeanLatencyMs, nil
	case "min":
		return summary.MinLatencyMs, nil
	case "max":
		return summary.MaxLatencyMs, nil
	case "p50":
		return summary.P50LatencyMs, nil
	case "p90":
		return summary.P90LatencyMs, nil
	case "p95":
		return summary.P95LatencyMs, nil
	case "p99":
		return summary.P99LatencyMs, nil
	}
	return 0, fmt.Errorf("unsupported aggregate %q for latency", aggregate)
}

func compare(actual float64, operator string, expected float64) bool {
	const epsilon = 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	}
	return false
}
