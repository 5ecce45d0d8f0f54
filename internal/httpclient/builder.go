package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/nikpietanze/Pressr/internal/config"
	"github.com/nikpietanze/Pressr/internal/data"
	"github.com/nikpietanze/Pressr/internal/placeholders"
	"github.com/nikpietanze/Pressr/internal/variables"
)

// SpecBuilder produces the Spec for each attempt: static configuration
// merged with per-attempt placeholder substitution and randomized data
// draws. Safe for concurrent use by all workers.
type SpecBuilder struct {
	method  string
	target  string
	headers http.Header
	body    []byte
	timeout time.Duration
	data    *data.RequestData
	store   *variables.Store
}

// NewSpecBuilder validates the static request parts once so per-attempt
// Build calls only do substitution.
func NewSpecBuilder(cfg *config.Config, rd *data.RequestData, store *variables.Store) (*SpecBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.TargetURL)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}

	headers := http.Header{}
	merge := func(src map[string]string) error {
		for key, value := range src {
			trimmedKey := strings.TrimSpace(key)
			if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
				return fmt.Errorf("invalid header key %q", key)
			}
			if strings.ContainsAny(value, "\r\n") {
				return fmt.Errorf("invalid header value for %s", trimmedKey)
			}
			headers.Set(http.CanonicalHeaderKey(trimmedKey), value)
		}
		return nil
	}
	if err := merge(cfg.Headers); err != nil {
		return nil, err
	}
	if rd != nil {
		// Data file headers override config headers on key collision.
		if err := merge(rd.Headers); err != nil {
			return nil, err
		}
	}

	body, err := resolveBody(cfg, rd, method)
	if err != nil {
		return nil, err
	}
	if body != nil && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", "application/json")
	}

	return &SpecBuilder{
		method:  method,
		target:  target,
		headers: headers,
		body:    body,
		timeout: cfg.Timeout,
		data:    rd,
		store:   store,
	}, nil
}

// bodyMethods are the methods a request body is attached for.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

func resolveBody(cfg *config.Config, rd *data.RequestData, method string) ([]byte, error) {
	if !bodyMethods[method] {
		return nil, nil
	}
	if cfg.Body != "" {
		return []byte(cfg.Body), nil
	}
	if cfg.BodyFile != "" {
		raw, err := os.ReadFile(cfg.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("read body file %s: %w", cfg.BodyFile, err)
		}
		return raw, nil
	}
	if rd != nil {
		return rd.BodyBytes()
	}
	return nil, nil
}

// Build produces the Spec for one attempt. The attempt index is accepted
// for interface symmetry; randomization comes from fresh data draws, not
// the index.
func (b *SpecBuilder) Build(attempt int) (Spec, error) {
	if b == nil {
		return Spec{}, errors.New("builder cannot be nil")
	}
	_ = attempt

	record := b.data.Record()

	target := placeholders.Apply(b.target, record, b.store)
	target, err := appendParams(target, b.data, record, b.store)
	if err != nil {
		return Spec{}, err
	}

	headers := make(http.Header, len(b.headers))
	for key, values := range b.headers {
		for _, value := range values {
			headers.Add(key, placeholders.Apply(value, record, b.store))
		}
	}

	body := b.body
	if len(body) > 0 && (len(record) > 0 || b.store != nil) {
		body = []byte(placeholders.Apply(string(body), record, b.store))
	}

	return Spec{
		Method:  b.method,
		URL:     target,
		Headers: headers,
		Body:    body,
		Timeout: b.timeout,
	}, nil
}

// appendParams adds the data file's query parameters to the target URL.
func appendParams(target string, rd *data.RequestData, record map[string]string, store *variables.Store) (string, error) {
	if rd == nil || len(rd.Params) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target URL %q: %w", target, err)
	}

	query := u.Query()
	for key, value := range rd.Params {
		query.Set(key, placeholders.Apply(value, record, store))
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
