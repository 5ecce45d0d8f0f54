package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nikpietanze/Pressr/internal/extractor"
	"github.com/nikpietanze/Pressr/internal/metrics"
	"github.com/nikpietanze/Pressr/internal/tracing"
	"github.com/nikpietanze/Pressr/internal/variables"
)

// NewClient builds an *http.Client tuned for high-concurrency load
// generation. timeout is a whole-request backstop; the per-spec timeout
// is applied separately via context.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// TransportOptions configure a Transport.
type TransportOptions struct {
	Client     *http.Client
	Extractors []extractor.Extractor
	Store      *variables.Store
	Logger     extractor.Logger
	Tracer     trace.Tracer
	Propagate  bool
}

// Transport sends one Spec per Execute call and classifies the result
// into an Outcome. Safe for concurrent use; connection pooling is the
// underlying http.Client's concern.
type Transport struct {
	client     *http.Client
	extractors []extractor.Extractor
	store      *variables.Store
	logger     extractor.Logger
	tracer     trace.Tracer
	propagate  bool
}

// NewTransport creates a Transport. A nil Client falls back to a tuned
// default with no backstop timeout.
func NewTransport(opts TransportOptions) *Transport {
	client := opts.Client
	if client == nil {
		client = NewClient(0)
	}
	return &Transport{
		client:     client,
		extractors: opts.Extractors,
		store:      opts.Store,
		logger:     opts.Logger,
		tracer:     opts.Tracer,
		propagate:  opts.Propagate,
	}
}

// Execute sends the request described by spec and returns exactly one
// Outcome. It never returns an error: transport failures are classified
// into the outcome and become statistics downstream.
func (t *Transport) Execute(ctx context.Context, spec Spec) metrics.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	var span trace.Span
	if t.tracer != nil {
		ctx, span = tracing.StartAttemptSpan(ctx, t.tracer, spec.Method, spec.URL)
	}

	outcome := t.roundTrip(ctx, spec)

	if span != nil {
		tracing.EndAttemptSpan(span, outcome)
	}
	return outcome
}

func (t *Transport) roundTrip(ctx context.Context, spec Spec) metrics.Outcome {
	start := time.Now()

	var bodyReader io.Reader
	if len(spec.Body) > 0 {
		bodyReader = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, bodyReader)
	if err != nil {
		return metrics.Outcome{
			Elapsed:       time.Since(start),
			BytesReceived: -1,
			Kind:          metrics.ErrorOther,
			Detail:        fmt.Sprintf("build request: %v", err),
		}
	}
	if spec.Headers != nil {
		req.Header = spec.Headers.Clone()
	}
	if len(spec.Body) > 0 {
		req.ContentLength = int64(len(spec.Body))
		body := spec.Body
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	if t.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		kind, detail := Classify(err)
		return metrics.Outcome{
			Elapsed:       time.Since(start),
			BytesReceived: -1,
			Kind:          kind,
			Detail:        detail,
		}
	}
	defer resp.Body.Close()

	// The body is counted and discarded; it is only buffered when
	// extraction rules need to look at it.
	var received int64
	var body []byte
	if len(t.extractors) > 0 {
		body, err = io.ReadAll(resp.Body)
		received = int64(len(body))
	} else {
		received, err = io.Copy(io.Discard, resp.Body)
	}
	elapsed := time.Since(start)
	if err != nil {
		return metrics.Outcome{
			Elapsed:       elapsed,
			BytesReceived: -1,
			Kind:          metrics.ErrorInvalidResponse,
			Detail:        fmt.Sprintf("read response body (status %d): %v", resp.StatusCode, err),
		}
	}

	if len(t.extractors) > 0 && t.store != nil {
		t.store.SetAll(extractor.ExtractAll(body, resp.StatusCode, t.extractors, t.logger))
	}

	return metrics.Outcome{
		Status:        resp.StatusCode,
		Elapsed:       elapsed,
		BytesReceived: received,
	}
}
