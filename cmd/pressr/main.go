package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nikpietanze/Pressr/internal/config"
	"github.com/nikpietanze/Pressr/internal/data"
	"github.com/nikpietanze/Pressr/internal/extractor"
	"github.com/nikpietanze/Pressr/internal/httpclient"
	"github.com/nikpietanze/Pressr/internal/metrics"
	"github.com/nikpietanze/Pressr/internal/output"
	"github.com/nikpietanze/Pressr/internal/runner"
	"github.com/nikpietanze/Pressr/internal/threshold"
	"github.com/nikpietanze/Pressr/internal/tracing"
	"github.com/nikpietanze/Pressr/internal/variables"
)

const progressInterval = time.Second

var errThresholdsFailed = errors.New("one or more thresholds failed")

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(out metrics.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[pressr] request failed (%s): %s\n", out.Kind, out.Detail)
}

type stderrWarnLogger struct {
	mu sync.Mutex
}

func (l *stderrWarnLogger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[pressr] "+format+"\n", args...)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errThresholdsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	var requestData *data.RequestData
	if cfg.DataFile != "" {
		requestData, err = data.Load(cfg.DataFile)
		if err != nil {
			return err
		}
	}

	store := variables.NewStore()

	builder, err := httpclient.NewSpecBuilder(cfg, requestData, store)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "[pressr] tracing shutdown: %v\n", err)
		}
	}()

	collector := metrics.NewCollector()
	warnLogger := &stderrWarnLogger{}

	// Per-attempt spans only get created when an exporter is up.
	var tracer trace.Tracer
	if provider.Enabled() {
		tracer = provider.Tracer()
	}

	var transport runner.Transport = httpclient.NewTransport(httpclient.TransportOptions{
		Client:     httpclient.NewClient(0),
		Extractors: toExtractors(cfg.Extractors),
		Store:      store,
		Logger:     warnLogger,
		Tracer:     tracer,
		Propagate:  provider.ShouldPropagate(),
	})
	if cfg.LogErrors {
		transport = runner.WithLogging(transport, &stderrFailureLogger{})
	}

	r, err := runner.New(runner.Options{
		Total:       cfg.Requests,
		Concurrency: cfg.Concurrency,
		Transport:   transport,
		Source: func(ctx context.Context, attempt int) (httpclient.Spec, error) {
			return builder.Build(attempt)
		},
		Collector: collector,
	})
	if err != nil {
		return err
	}

	metadata := output.ReportMetadata{
		RunID:       output.NewRunID(time.Now()),
		TargetURL:   cfg.TargetURL,
		Method:      cfg.Method,
		Requested:   cfg.Requests,
		Concurrency: cfg.Concurrency,
		StartedAt:   time.Now(),
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(collector, cfg.Requests, progressInterval, os.Stdout)
		progress.Start()
	}

	runCtx, runSpan := tracing.StartRunSpan(ctx, provider.Tracer(), cfg.Requests, cfg.Concurrency)
	summary := r.Run(runCtx)
	tracing.EndRunSpan(runSpan, summary)

	if progress != nil {
		progress.Stop()
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(summary)

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, summary, results, metadata); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, summary, results)
	}

	if cfg.HTMLOutput != "" {
		if err := output.WriteHTMLReport(cfg.HTMLOutput, summary, results, metadata); err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "\nHTML report written to %s\n", cfg.HTMLOutput)
		}
	}

	if !threshold.AllPassed(results) {
		return errThresholdsFailed
	}
	return nil
}

func toExtractors(rules []config.ExtractorConfig) []extractor.Extractor {
	if len(rules) == 0 {
		return nil
	}
	out := make([]extractor.Extractor, len(rules))
	for i, r := range rules {
		out[i] = extractor.Extractor{
			Name:     r.Name,
			JSONPath: r.JSONPath,
			Regex:    r.Regex,
			OnError:  r.OnError,
		}
	}
	return out
}
