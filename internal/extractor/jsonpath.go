package extractor

import (
	"github.com/tidwall/gjson"
)

// findJSONPath extracts a value from JSON using gjson with support for
// $.field and bare field syntax.
func findJSONPath(body []byte, path string, logger Logger) (string, bool) {
	// Strip a leading $. if present; bare "$" means the entire document.
	if len(path) > 0 && path[0] == '$' {
		if len(path) > 1 && path[1] == '.' {
			path = path[2:]
		} else if len(path) == 1 {
			path = "@this"
		}
	}

	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		if logger != nil {
			logger.Warn("JSONPath not found: %s", path)
		}
		return "", false
	}
	return result.String(), true
}
