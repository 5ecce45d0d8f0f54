package httpclient

import (
	"context"
	"errors"
	"net"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

// Classify maps a transport error onto the closed ErrorKind set.
// Timeout detection runs first: a deadline blown mid-dial would
// otherwise look like a connection failure.
func Classify(err error) (metrics.ErrorKind, string) {
	if err == nil {
		return "", ""
	}
	detail := err.Error()

	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.ErrorTimeout, detail
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return metrics.ErrorTimeout, detail
	}

	if errors.Is(err, context.Canceled) {
		return metrics.ErrorOther, "request cancelled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return metrics.ErrorConnectionFailed, detail
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return metrics.ErrorConnectionFailed, detail
	}

	return metrics.ErrorOther, detail
}
