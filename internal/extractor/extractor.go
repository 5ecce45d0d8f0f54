// Package extractor pulls named values out of HTTP response bodies so
// later requests in the same run can reference them as placeholders.
package extractor

// Logger receives warnings about extraction misses. May be nil.
type Logger interface {
	Warn(format string, args ...interface{})
}

// Extractor defines one capture rule for a response body.
type Extractor struct {
	// Name is the variable name the captured value is stored under.
	Name string

	// JSONPath is a JSON path expression (e.g., "$.user.id", "user.id").
	JSONPath string

	// Regex is a regex pattern; the first capture group wins, otherwise
	// the whole match.
	Regex string

	// OnError, if true, captures even from 4xx/5xx responses.
	OnError bool
}

// ExtractAll applies every rule to the body and returns the captured
// key-value pairs. status is the HTTP status of the response the body
// came from; rules without OnError are skipped for error statuses.
// Misses are logged as warnings and produce no entry.
func ExtractAll(body []byte, status int, rules []Extractor, logger Logger) map[string]string {
	if len(rules) == 0 {
		return nil
	}

	result := make(map[string]string, len(rules))
	for _, rule := range rules {
		if status >= 400 && !rule.OnError {
			continue
		}

		var value string
		var ok bool
		switch {
		case rule.JSONPath != "":
			value, ok = findJSONPath(body, rule.JSONPath, logger)
		case rule.Regex != "":
			value, ok = findRegex(body, rule.Regex, logger)
		}
		if ok {
			result[rule.Name] = value
		}
	}
	return result
}
