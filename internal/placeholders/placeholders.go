// Package placeholders substitutes {{name}} tokens in request templates.
package placeholders

import (
	"regexp"

	"github.com/nikpietanze/Pressr/internal/variables"
)

// Placeholders use {{key}} or {{key|default}} syntax. The optional
// default is used when neither the record nor the store resolves the key.
var placeholderRegex = regexp.MustCompile(`\{\{([^}|]+)(?:\|([^}]*))?\}\}`)

// Apply substitutes placeholders in template. Resolution order:
//  1. the per-attempt record (path variables and randomized data draws)
//  2. the captured-variable store
//  3. the inline default, when one is given
//
// Tokens that resolve nowhere are left intact so a missing data row is
// visible in the outgoing request rather than silently blanked.
func Apply(template string, record map[string]string, store *variables.Store) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		parts := placeholderRegex.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		key := parts[1]

		if value, ok := record[key]; ok {
			return value
		}
		if store != nil {
			if value, ok := store.Get(key); ok {
				return value
			}
		}
		if hasDefault(match) {
			return parts[2]
		}
		return match
	})
}

// ApplyToMap substitutes placeholders in every value of the given map.
func ApplyToMap(values map[string]string, record map[string]string, store *variables.Store) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = Apply(value, record, store)
	}
	return out
}

// hasDefault distinguishes {{key|}} (empty default) from {{key}} (none).
func hasDefault(match string) bool {
	for i := 0; i < len(match); i++ {
		if match[i] == '|' {
			return true
		}
	}
	return false
}
