package runner

import (
	"context"

	"github.com/nikpietanze/Pressr/internal/httpclient"
	"github.com/nikpietanze/Pressr/internal/metrics"
)

// FailureLogger logs failed outcomes.
type FailureLogger interface {
	LogFailure(out metrics.Outcome)
}

// loggingTransport wraps a Transport with failure logging.
type loggingTransport struct {
	inner  Transport
	logger FailureLogger
}

// WithLogging wraps a Transport so every failed outcome reaches the
// logger. Successful responses, whatever their status code, pass
// through silently.
func WithLogging(t Transport, logger FailureLogger) Transport {
	if logger == nil {
		return t
	}
	return &loggingTransport{inner: t, logger: logger}
}

func (l *loggingTransport) Execute(ctx context.Context, spec httpclient.Spec) metrics.Outcome {
	out := l.inner.Execute(ctx, spec)
	if out.Failed() {
		l.logger.LogFailure(out)
	}
	return out
}
