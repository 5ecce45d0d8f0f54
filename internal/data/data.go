// Package data loads request data files: bodies, headers, query
// parameters, path variables, and randomized variable sets used for
// per-attempt substitution.
package data

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RequestData describes the variable parts of the requests in a run.
// Loaded once, read concurrently by every worker; all fields are
// treated as immutable after Load.
type RequestData struct {
	// Body is an arbitrary JSON document sent for POST/PUT/PATCH.
	Body any `json:"body" yaml:"body"`

	// Headers are merged into every request.
	Headers map[string]string `json:"headers" yaml:"headers"`

	// Params are appended to the URL as query parameters.
	Params map[string]string `json:"params" yaml:"params"`

	// PathVariables resolve {{name}} tokens in the URL path.
	PathVariables map[string]string `json:"path_variables" yaml:"path_variables"`

	// Variables are named value sets; each attempt draws one value per
	// set at random.
	Variables map[string][]string `json:"variables" yaml:"variables"`
}

// Load reads a request data file. The format follows the extension:
// .json, .yaml/.yml, or .csv (header row names variable sets, columns
// hold their values).
func Load(path string) (*RequestData, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file %s: %w", path, err)
	}

	d := &RequestData{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, d); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, d); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported data file extension %q (use .json, .yaml, .yml or .csv)", filepath.Ext(path))
	}
	return d, nil
}

// RandomVariable draws a uniformly random value from the named variable
// set. Returns ("", false) when the set is missing or empty. Safe for
// concurrent use.
func (d *RequestData) RandomVariable(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	values := d.Variables[name]
	if len(values) == 0 {
		return "", false
	}
	return values[rand.Intn(len(values))], true
}

// Record produces the substitution record for one attempt: all path
// variables plus one fresh random draw per variable set. Each call
// re-draws, so successive attempts see different values.
func (d *RequestData) Record() map[string]string {
	if d == nil {
		return nil
	}
	if len(d.PathVariables) == 0 && len(d.Variables) == 0 {
		return nil
	}
	record := make(map[string]string, len(d.PathVariables)+len(d.Variables))
	for key, value := range d.PathVariables {
		record[key] = value
	}
	for name := range d.Variables {
		if value, ok := d.RandomVariable(name); ok {
			record[name] = value
		}
	}
	return record
}

// BodyBytes returns the JSON encoding of the body document, or nil when
// no body is configured.
func (d *RequestData) BodyBytes() ([]byte, error) {
	if d == nil || d.Body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d.Body)
	if err != nil {
		return nil, fmt.Errorf("encode data body: %w", err)
	}
	return raw, nil
}
