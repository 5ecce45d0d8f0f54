package runner

import (
	"context"
	"errors"

	"github.com/nikpietanze/Pressr/internal/httpclient"
	"github.com/nikpietanze/Pressr/internal/metrics"
)

// Transport executes a single request spec and reports what happened.
// Implementations never return an error: failures are classified into
// the Outcome and counted downstream.
type Transport interface {
	Execute(ctx context.Context, spec httpclient.Spec) metrics.Outcome
}

// SpecSource produces the spec for a given attempt number. Attempts are
// zero-based and claimed in order, though completion order is not
// guaranteed under concurrency.
type SpecSource func(ctx context.Context, attempt int) (httpclient.Spec, error)

// Options configure the Runner.
type Options struct {
	Total       int                // total requests to dispatch (required, >= 1)
	Concurrency int                // maximum in-flight requests (required, >= 1)
	Transport   Transport          // request executor (required)
	Source      SpecSource         // per-attempt spec producer (required)
	Collector   *metrics.Collector // outcome sink; nil allocates a fresh one
}

func (o *Options) validate() error {
	if o.Total < 1 {
		return errors.New("runner: total requests must be at least 1")
	}
	if o.Concurrency < 1 {
		return errors.New("runner: concurrency must be at least 1")
	}
	if o.Transport == nil {
		return errors.New("runner: transport is required")
	}
	if o.Source == nil {
		return errors.New("runner: spec source is required")
	}
	return nil
}

func (o *Options) normalize() {
	// More workers than requests would sit idle forever.
	if o.Concurrency > o.Total {
		o.Concurrency = o.Total
	}
	if o.Collector == nil {
		o.Collector = metrics.NewCollector()
	}
}
