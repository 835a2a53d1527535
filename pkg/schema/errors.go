package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	return errors.As(err, target)
}

// jsonName returns the json tag name of the failing field. NewValidator
// registers a TagNameFunc, so Field() already resolves through json tags.
func jsonName(fe validator.FieldError) string {
	return fe.Field()
}

// fieldPath converts a validator namespace like "Workflow.nodes[0].label"
// into the path reported to callers, dropping the root struct name.
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()

	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}

	return namespace
}

// fieldMessage renders a human-readable message for one failed rule.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}

		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}

		return fmt.Sprintf("must have at most %s entries", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "graphid":
		return "must match [A-Za-z0-9-_]+"
	case "url":
		return "must be a valid URL"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// payloadFieldErrors runs struct-tag validation over a config payload and
// renders "field: message" strings.
func payloadFieldErrors(v *Validator, payload any) []string {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !asValidationErrors(err, &invalid) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		msgs = append(msgs, jsonName(fe)+": "+fieldMessage(fe))
	}

	return msgs
}
