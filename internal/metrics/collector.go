package metrics

import (
	"math"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector accumulates request outcomes in a thread-safe manner.
// All mutation goes through Record; the final numbers come out once
// through Summarize.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	sumSquaredMs float64
	statusCounts map[int]int64
	errorCounts  map[ErrorKind]int64
	errorSamples map[ErrorKind]string
	totalBytes   int64
	unsized      int64
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:         h,
		statusCounts: make(map[int]int64),
		errorCounts:  make(map[ErrorKind]int64),
		errorSamples: make(map[ErrorKind]string),
	}
}

// Record folds a single outcome into the running aggregate. Safe to call
// concurrently from any number of workers; the critical section is a
// handful of counter updates plus one histogram bucket increment.
func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if o.Elapsed > 0 {
		us := o.Elapsed.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	} else {
		_ = c.hist.RecordValue(c.hist.LowestTrackableValue())
	}
	c.sumLatency += o.Elapsed
	ms := float64(o.Elapsed) / float64(time.Millisecond)
	c.sumSquaredMs += ms * ms

	count := c.successes + c.failures
	if count == 0 || o.Elapsed < c.minLatency {
		c.minLatency = o.Elapsed
	}
	if o.Elapsed > c.maxLatency {
		c.maxLatency = o.Elapsed
	}

	if o.Failed() {
		c.failures++
		c.errorCounts[o.Kind]++
		if _, ok := c.errorSamples[o.Kind]; !ok && o.Detail != "" {
			c.errorSamples[o.Kind] = o.Detail
		}
	} else {
		c.successes++
		c.statusCounts[o.Status]++
	}

	if o.BytesReceived >= 0 {
		c.totalBytes += o.BytesReceived
	} else {
		c.unsized++
	}
}

// Counts returns the running totals. Used by progress reporting; the
// authoritative numbers come from Summarize after the run ends.
func (c *Collector) Counts() (total, successes, failures int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successes + c.failures, c.successes, c.failures
}

// Summarize converts the accumulated state into an immutable Summary.
// requested is the number of attempts the run was configured to make;
// elapsed is the dispatcher's wall-clock run duration. Call once, after
// all outcomes have been recorded.
func (c *Collector) Summarize(requested int, elapsed time.Duration) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	s := Summary{
		Requested:    int64(requested),
		Total:        total,
		Successes:    c.successes,
		Failures:     c.failures,
		Interrupted:  total < int64(requested),
		MinLatency:   c.minLatency,
		MaxLatency:   c.maxLatency,
		Duration:     elapsed,
		TotalBytes:   c.totalBytes,
		BytesKnown:   c.unsized == 0 && total > 0,
		StatusCounts: copyIntMap(c.statusCounts),
		ErrorCounts:  copyKindMap(c.errorCounts),
		ErrorSamples: copyStringMap(c.errorSamples),
	}

	if total > 0 {
		s.MeanLatency = time.Duration(int64(c.sumLatency) / total)
		s.SuccessRate = float64(c.successes) / float64(total)
	}
	if total > 1 {
		meanMs := float64(c.sumLatency) / float64(time.Millisecond) / float64(total)
		variance := (c.sumSquaredMs - float64(total)*meanMs*meanMs) / float64(total-1)
		if variance > 0 {
			s.StdDevLatency = time.Duration(math.Sqrt(variance) * float64(time.Millisecond))
		}
	}

	if c.hist.TotalCount() > 0 {
		s.P50Latency = c.quantile(50)
		s.P90Latency = c.quantile(90)
		s.P95Latency = c.quantile(95)
		s.P99Latency = c.quantile(99)
	}

	if elapsed > 0 && total > 0 {
		s.RequestsPerSec = float64(total) / elapsed.Seconds()
		if s.BytesKnown {
			s.TransferRate = float64(c.totalBytes) / elapsed.Seconds()
		}
	}

	s.fillMillis()
	return s
}

// quantile reads a percentile from the histogram, clamped into the
// observed [min, max] range so bucket rounding can never push a
// percentile outside the recorded extremes.
func (c *Collector) quantile(q float64) time.Duration {
	v := time.Duration(c.hist.ValueAtQuantile(q)) * time.Microsecond
	if v < c.minLatency {
		v = c.minLatency
	}
	if v > c.maxLatency {
		v = c.maxLatency
	}
	return v
}

func copyIntMap(m map[int]int64) map[int]int64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[int]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyKindMap(m map[ErrorKind]int64) map[ErrorKind]int64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[ErrorKind]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[ErrorKind]string) map[ErrorKind]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[ErrorKind]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
