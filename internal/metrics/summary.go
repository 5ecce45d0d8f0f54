package metrics

import "time"

// Summary is the finalized, immutable result of one dispatch run. It is
// derived data only: safe to share and read concurrently by report
// renderers, never mutated after Summarize produces it.
type Summary struct {
	Requested   int64   `json:"requested"`
	Total       int64   `json:"total"`
	Successes   int64   `json:"successes"`
	Failures    int64   `json:"failures"`
	SuccessRate float64 `json:"success_rate"`

	// Interrupted is true when the run was cancelled before every
	// requested attempt was dispatched (Total < Requested).
	Interrupted bool `json:"interrupted,omitempty"`

	MinLatency    time.Duration `json:"-"`
	MaxLatency    time.Duration `json:"-"`
	MeanLatency   time.Duration `json:"-"`
	StdDevLatency time.Duration `json:"-"`
	P50Latency    time.Duration `json:"-"`
	P90Latency    time.Duration `json:"-"`
	P95Latency    time.Duration `json:"-"`
	P99Latency    time.Duration `json:"-"`
	Duration      time.Duration `json:"-"`

	RequestsPerSec float64 `json:"requests_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs    float64 `json:"min_latency_ms"`
	MaxLatencyMs    float64 `json:"max_latency_ms"`
	MeanLatencyMs   float64 `json:"mean_latency_ms"`
	StdDevLatencyMs float64 `json:"std_dev_latency_ms"`
	P50LatencyMs    float64 `json:"p50_latency_ms"`
	P90LatencyMs    float64 `json:"p90_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms"`
	P99LatencyMs    float64 `json:"p99_latency_ms"`
	DurationMs      float64 `json:"duration_ms"`

	StatusCounts map[int]int64        `json:"status_counts,omitempty"`
	ErrorCounts  map[ErrorKind]int64  `json:"error_counts,omitempty"`
	ErrorSamples map[ErrorKind]string `json:"error_samples,omitempty"`

	TotalBytes int64 `json:"total_bytes"`
	// BytesKnown is true when every recorded outcome reported its body
	// size, making TotalBytes and TransferRate exact rather than partial.
	BytesKnown   bool    `json:"bytes_known"`
	TransferRate float64 `json:"transfer_rate_bytes_per_sec,omitempty"`
}

func (s *Summary) fillMillis() {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	s.MinLatencyMs = ms(s.MinLatency)
	s.MaxLatencyMs = ms(s.MaxLatency)
	s.MeanLatencyMs = ms(s.MeanLatency)
	s.StdDevLatencyMs = ms(s.StdDevLatency)
	s.P50LatencyMs = ms(s.P50Latency)
	s.P90LatencyMs = ms(s.P90Latency)
	s.P95LatencyMs = ms(s.P95Latency)
	s.P99LatencyMs = ms(s.P99Latency)
	s.DurationMs = ms(s.Duration)
}
