// Package template substitutes {{field}} placeholders in action configuration
// against trigger data.
//
// It is deliberately not text/template: a placeholder whose key is absent must
// survive verbatim so workflow authors notice unresolved tokens, and a
// substituted value is never re-scanned for further tokens.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Interpolate replaces every {{identifier}} token with the stringified value
// of data[identifier]. Tokens with no matching key are left untouched. A bare
// "{{" with no closing braces is not a token and passes through as-is.
func Interpolate(templateStr string, data map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(templateStr, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]

		value, ok := data[key]
		if !ok {
			return match
		}

		return Stringify(value)
	})
}

// InterpolateConfig returns a copy of the config map with Interpolate applied
// to every string value, descending into nested maps and slices.
func InterpolateConfig(config map[string]any, data map[string]any) map[string]any {
	result := make(map[string]any, len(config))
	for key, value := range config {
		result[key] = interpolateValue(value, data)
	}

	return result
}

func interpolateValue(value any, data map[string]any) any {
	switch v := value.(type) {
	case string:
		return Interpolate(v, data)
	case map[string]any:
		return InterpolateConfig(v, data)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = interpolateValue(item, data)
		}

		return items
	default:
		return value
	}
}

// Stringify renders a data value the way it should appear inside interpolated
// text. Whole-number floats (the usual result of JSON decoding) print without
// a trailing ".0".
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetString reads a string-typed config key, interpolated against data.
func GetString(config map[string]any, key string, data map[string]any) string {
	raw, ok := config[key].(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(Interpolate(raw, data))
}
