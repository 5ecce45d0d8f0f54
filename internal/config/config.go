package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds everything a load test run needs. Values come from
// defaults, then an optional config file, then CLI flag overrides.
type Config struct {
	TargetURL   string            `mapstructure:"url"`
	Method      string            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	BodyFile    string            `mapstructure:"body_file"`
	DataFile    string            `mapstructure:"data_file"`
	Requests    int               `mapstructure:"requests"`
	Concurrency int               `mapstructure:"concurrency"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	JSONOutput  bool              `mapstructure:"json_output"`
	HTMLOutput  string            `mapstructure:"html_output"`
	LogErrors   bool              `mapstructure:"log_errors"`
	Thresholds  []string          `mapstructure:"thresholds"`
	Extractors  []ExtractorConfig `mapstructure:"extractors"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	ConfigFile  string            `mapstructure:"-"`
}

// ExtractorConfig declares one response capture rule.
type ExtractorConfig struct {
	Name     string `mapstructure:"name"`
	JSONPath string `mapstructure:"json_path"`
	Regex    string `mapstructure:"regex"`
	OnError  bool   `mapstructure:"on_error"`
}

// TracingConfig configures the optional OpenTelemetry exporter.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether an exporter endpoint is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers go out with requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// ValidationError aggregates every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual problems behind the error.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// Validate checks the configuration before any dispatch happens.
// Invalid requests/concurrency are configuration errors, never a
// degenerate zero-result run.
func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "url is required (use --help for usage information)")
	} else if u, err := url.Parse(target); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("url %q is not an absolute http(s) URL", target))
	}

	if method := strings.ToUpper(strings.TrimSpace(c.Method)); method != "" && !allowedMethods[method] {
		issues = append(issues, fmt.Sprintf("unsupported method %q", c.Method))
	}

	if c.Requests < 1 {
		issues = append(issues, fmt.Sprintf("requests must be at least 1, got %d", c.Requests))
	}
	if c.Concurrency < 1 {
		issues = append(issues, fmt.Sprintf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Timeout < 0 {
		issues = append(issues, fmt.Sprintf("timeout must not be negative, got %s", c.Timeout))
	}

	if c.Body != "" && c.BodyFile != "" {
		issues = append(issues, "body and body_file are mutually exclusive")
	}

	for i, ex := range c.Extractors {
		if strings.TrimSpace(ex.Name) == "" {
			issues = append(issues, fmt.Sprintf("extractor %d: name is required", i))
		}
		if ex.JSONPath == "" && ex.Regex == "" {
			issues = append(issues, fmt.Sprintf("extractor %d: one of json_path or regex is required", i))
		}
		if ex.JSONPath != "" && ex.Regex != "" {
			issues = append(issues, fmt.Sprintf("extractor %d: json_path and regex are mutually exclusive", i))
		}
	}

	if c.Tracing.Enabled() {
		switch strings.ToLower(c.Tracing.Protocol) {
		case "", "grpc", "http":
		default:
			issues = append(issues, fmt.Sprintf("tracing protocol %q is not supported (use grpc or http)", c.Tracing.Protocol))
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
