package extractor

import (
	"regexp"
)

// findRegex extracts a value from text using a regex pattern. The first
// capture group wins when one exists, otherwise the full match is used.
func findRegex(body []byte, pattern string, logger Logger) (string, bool) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		if logger != nil {
			logger.Warn("Invalid regex pattern: %s (error: %v)", pattern, err)
		}
		return "", false
	}

	match := regex.FindSubmatch(body)
	if match == nil {
		if logger != nil {
			logger.Warn("Regex pattern not found: %s", pattern)
		}
		return "", false
	}

	if len(match) > 1 {
		return string(match[1]), true
	}
	return string(match[0]), true
}
