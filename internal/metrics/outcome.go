package metrics

import "time"

// ErrorKind classifies a transport-level request failure.
type ErrorKind string

const (
	ErrorTimeout          ErrorKind = "timeout"
	ErrorConnectionFailed ErrorKind = "connection_failed"
	ErrorInvalidResponse  ErrorKind = "invalid_response"
	ErrorOther            ErrorKind = "other"
)

// Outcome is the result of one dispatched request attempt.
//
// Status and Kind are mutually exclusive: a request either completed with
// an HTTP status code (any code, including 4xx/5xx) or failed at the
// transport level before a usable response was received.
type Outcome struct {
	// Status is the HTTP status code, or 0 when the request failed
	// before a response was available.
	Status int

	// Elapsed is the wall-clock time measured around the transport call.
	Elapsed time.Duration

	// BytesReceived is the response body size in bytes, or -1 when unknown.
	BytesReceived int64

	// Kind classifies the failure. Empty on success.
	Kind ErrorKind

	// Detail carries a human-readable failure description. Empty on success.
	Detail string
}

// Failed reports whether the attempt ended in a transport-level failure.
func (o Outcome) Failed() bool {
	return o.Kind != ""
}
