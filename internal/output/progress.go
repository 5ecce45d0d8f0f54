package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

// ProgressReporter prints live progress while a run is in flight.
type ProgressReporter struct {
	collector *metrics.Collector
	requested int
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a reporter that rewrites one status line
// at the given interval.
func NewProgressReporter(collector *metrics.Collector, requested int, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		requested: requested,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins printing updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts updates and clears the status line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			total, successes, failures := p.collector.Counts()
			elapsed := time.Since(p.start).Seconds()
			rps := 0.0
			if elapsed > 0 {
				rps = float64(total) / elapsed
			}
			pct := 0.0
			if p.requested > 0 {
				pct = float64(total) / float64(p.requested) * 100
			}
			fmt.Fprintf(p.writer, "\r%d/%d (%.0f%%) | ok: %d | failed: %d | %.1f req/s",
				total, p.requested, pct, successes, failures, rps)
		case <-p.done:
			fmt.Fprint(p.writer, "\r\033[K")
			return
		}
	}
}
