// Package condition evaluates condition node configurations against event
// payloads.
package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vendura/automation/pkg/models"
)

// Outcome is the result of evaluating one condition. Warning is set for
// non-fatal degradations (missing field, failed numeric coercion); the
// engine records it on the step without failing the execution.
type Outcome struct {
	Result  bool
	Warning string
}

// Evaluate applies a condition to an event's data payload. It never returns
// an error: a missing field evaluates to false, except under neq and
// not_contains where absence reads as "not equal" / "does not contain" and
// evaluates to true. A failed numeric coercion evaluates to false with a
// warning.
func Evaluate(config *models.ConditionConfig, data map[string]any) Outcome {
	value, found := Lookup(data, config.Field)

	if !found {
		if config.Operator == models.OperatorNeq || config.Operator == models.OperatorNotContains {
			return Outcome{Result: true}
		}

		return Outcome{Result: false}
	}

	if config.Operator.IsNumeric() {
		return evaluateNumeric(config.Operator, value, config.Value)
	}

	switch config.Operator {
	case models.OperatorEq:
		return Outcome{Result: looseEqual(value, config.Value)}
	case models.OperatorNeq:
		return Outcome{Result: !looseEqual(value, config.Value)}
	case models.OperatorContains:
		return evaluateContains(value, config.Value, false)
	case models.OperatorNotContains:
		return evaluateContains(value, config.Value, true)
	default:
		return Outcome{Result: false, Warning: fmt.Sprintf("unknown operator %q", config.Operator)}
	}
}

// Lookup resolves a dot-path like "customer.email" or "items.length" in the
// payload. The "length" leaf on a slice or string resolves to its length.
func Lookup(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = data

	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}

			current = next
		case []any:
			if part == "length" {
				current = len(typed)

				continue
			}

			return nil, false
		case string:
			if part == "length" {
				current = len(typed)

				continue
			}

			return nil, false
		default:
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}

	return current, true
}

func evaluateNumeric(op models.ConditionOperator, left, right any) Outcome {
	leftNum, ok := coerceNumber(left)
	if !ok {
		return Outcome{Result: false, Warning: fmt.Sprintf("cannot compare non-numeric value %v with %s", left, op)}
	}

	rightNum, ok := coerceNumber(right)
	if !ok {
		return Outcome{Result: false, Warning: fmt.Sprintf("cannot compare against non-numeric value %v with %s", right, op)}
	}

	switch op {
	case models.OperatorGt:
		return Outcome{Result: leftNum > rightNum}
	case models.OperatorGte:
		return Outcome{Result: leftNum >= rightNum}
	case models.OperatorLt:
		return Outcome{Result: leftNum < rightNum}
	case models.OperatorLte:
		return Outcome{Result: leftNum <= rightNum}
	default:
		return Outcome{Result: false}
	}
}

func evaluateContains(value, needle any, negate bool) Outcome {
	haystack, ok := value.(string)
	if !ok {
		return Outcome{Result: negate, Warning: fmt.Sprintf("contains requires a string field, got %T", value)}
	}

	needleStr, ok := needle.(string)
	if !ok {
		needleStr = fmt.Sprintf("%v", needle)
	}

	contains := strings.Contains(haystack, needleStr)
	if negate {
		return Outcome{Result: !contains}
	}

	return Outcome{Result: contains}
}

// coerceNumber converts numeric types and numeric strings to float64.
func coerceNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		if err != nil {
			return 0, false
		}

		return parsed, true
	default:
		return 0, false
	}
}

// looseEqual compares scalars with numeric coercion so 10 == 10.0 whichever
// side came from JSON.
func looseEqual(left, right any) bool {
	if leftNum, ok := coerceNumber(left); ok {
		if rightNum, ok := coerceNumber(right); ok {
			return leftNum == rightNum
		}
	}

	if leftBool, ok := left.(bool); ok {
		if rightBool, ok := right.(bool); ok {
			return leftBool == rightBool
		}
	}

	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}
