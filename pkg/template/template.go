// Package template resolves {{field}} placeholders in action configuration
// strings against the triggering event's data payload.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vendura/automation/pkg/condition"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// ErrUnresolvedField marks a placeholder whose dot-path is absent from the
// event data. The executor classifies it as a permanent failure.
type ErrUnresolvedField struct {
	Field string
}

func (e *ErrUnresolvedField) Error() string {
	return fmt.Sprintf("template field %q not present in event data", e.Field)
}

// Resolve substitutes every {{field}} placeholder with the value found at
// that dot-path in data. A placeholder with no matching field fails the
// whole resolution.
func Resolve(input string, data map[string]any) (string, error) {
	var missing *ErrUnresolvedField

	resolved := placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		field := placeholderPattern.FindStringSubmatch(match)[1]

		value, found := condition.Lookup(data, field)
		if !found {
			if missing == nil {
				missing = &ErrUnresolvedField{Field: field}
			}

			return match
		}

		return stringify(value)
	})

	if missing != nil {
		return "", missing
	}

	return resolved, nil
}

// ResolveMap resolves placeholders in every value of a string map, returning
// a new map.
func ResolveMap(input map[string]string, data map[string]any) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}

	resolved := make(map[string]string, len(input))

	for key, value := range input {
		out, err := Resolve(value, data)
		if err != nil {
			return nil, err
		}

		resolved[key] = out
	}

	return resolved, nil
}

// Fields lists the distinct placeholder dot-paths referenced by input.
func Fields(input string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(input, -1)

	seen := make(map[string]bool, len(matches))
	fields := make([]string, 0, len(matches))

	for _, match := range matches {
		if !seen[match[1]] {
			seen[match[1]] = true

			fields = append(fields, match[1])
		}
	}

	return fields
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		// Render integral floats without the trailing ".0" JSON decoding adds.
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}

		return fmt.Sprintf("%v", typed)
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(raw)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", typed))
	}
}
