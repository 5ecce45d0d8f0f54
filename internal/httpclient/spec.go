package httpclient

import (
	"net/http"
	"time"
)

// Spec is an immutable description of a single HTTP request: everything
// the transport needs to send it. Built once per attempt and borrowed
// read-only by the dispatcher.
type Spec struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	Timeout time.Duration
}
