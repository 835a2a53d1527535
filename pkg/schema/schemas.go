package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/vendura/automation/pkg/models"
)

// triggerSchemas holds the JSON Schema for each trigger type's configuration.
// The graph editor validates a single node against these without submitting
// the entire workflow.
var triggerSchemas = map[models.TriggerType]map[string]any{
	models.TriggerOrderPlaced: {
		"type": "object",
		"properties": map[string]any{
			"type":      map[string]any{"const": string(models.TriggerOrderPlaced)},
			"minAmount": map[string]any{"type": "number", "minimum": 0},
			"maxAmount": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerInventoryLowStock: {
		"type": "object",
		"properties": map[string]any{
			"type":      map[string]any{"const": string(models.TriggerInventoryLowStock)},
			"threshold": map[string]any{"type": "integer", "minimum": 1},
		},
		"required":             []string{"threshold"},
		"additionalProperties": false,
	},
	models.TriggerCustomerSignedUp: {
		"type": "object",
		"properties": map[string]any{
			"type": map[string]any{"const": string(models.TriggerCustomerSignedUp)},
		},
		"additionalProperties": false,
	},
	models.TriggerProductUpdated: {
		"type": "object",
		"properties": map[string]any{
			"type":      map[string]any{"const": string(models.TriggerProductUpdated)},
			"productId": map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	},
	models.TriggerCartAbandoned: {
		"type": "object",
		"properties": map[string]any{
			"type":     map[string]any{"const": string(models.TriggerCartAbandoned)},
			"minValue": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	},
	models.TriggerManual: {
		"type": "object",
		"properties": map[string]any{
			"type": map[string]any{"const": string(models.TriggerManual)},
		},
		"additionalProperties": false,
	},
}

// actionSchemas holds the JSON Schema for each action type's configuration.
var actionSchemas = map[models.ActionType]map[string]any{
	models.ActionSendEmail: {
		"type": "object",
		"properties": map[string]any{
			"type":           map[string]any{"const": string(models.ActionSendEmail)},
			"template":       map[string]any{"type": "string", "minLength": 1},
			"subject":        map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			"body":           map[string]any{"type": "string"},
			"recipientField": map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []string{"template", "subject", "recipientField"},
		"additionalProperties": false,
	},
	models.ActionTagCustomer:  tagActionSchema(models.ActionTagCustomer),
	models.ActionTagOrder:     tagActionSchema(models.ActionTagOrder),
	models.ActionTagProduct:   tagActionSchema(models.ActionTagProduct),
	models.ActionWebhook: {
		"type": "object",
		"properties": map[string]any{
			"type":   map[string]any{"const": string(models.ActionWebhook)},
			"url":    map[string]any{"type": "string", "format": "uri", "pattern": "^https?://"},
			"method": map[string]any{"type": "string", "enum": []string{"GET", "POST", "PUT", "PATCH", "DELETE"}},
			"headers": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"body": map[string]any{"type": "string"},
		},
		"required":             []string{"url", "method"},
		"additionalProperties": false,
	},
	models.ActionUpdateProductStatus: {
		"type": "object",
		"properties": map[string]any{
			"type":   map[string]any{"const": string(models.ActionUpdateProductStatus)},
			"status": map[string]any{"type": "string", "minLength": 1, "maxLength": 50},
		},
		"required":             []string{"status"},
		"additionalProperties": false,
	},
	models.ActionCreateNotification: {
		"type": "object",
		"properties": map[string]any{
			"type":     map[string]any{"const": string(models.ActionCreateNotification)},
			"message":  map[string]any{"type": "string", "minLength": 1, "maxLength": 500},
			"priority": map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
		},
		"required":             []string{"message", "priority"},
		"additionalProperties": false,
	},
}

func tagActionSchema(t models.ActionType) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type": map[string]any{"const": string(t)},
			"tag":  map[string]any{"type": "string", "minLength": 1, "maxLength": 50},
		},
		"required":             []string{"tag"},
		"additionalProperties": false,
	}
}

// ValidateTriggerConfig validates a raw trigger configuration against the
// schema for its type, without revalidating a whole workflow. An unknown
// type is reported as an error naming the type.
func ValidateTriggerConfig(triggerType models.TriggerType, config map[string]any) []string {
	triggerSchema, ok := triggerSchemas[triggerType]
	if !ok {
		return []string{fmt.Sprintf("unknown trigger type %q", triggerType)}
	}

	return validateAgainstSchema(triggerSchema, config)
}

// ValidateActionConfig validates a raw action configuration against the
// schema for its type, without revalidating a whole workflow.
func ValidateActionConfig(actionType models.ActionType, config map[string]any) []string {
	actionSchema, ok := actionSchemas[actionType]
	if !ok {
		return []string{fmt.Sprintf("unknown action type %q", actionType)}
	}

	return validateAgainstSchema(actionSchema, config)
}

func validateAgainstSchema(schemaDoc map[string]any, config map[string]any) []string {
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaDoc)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return []string{"schema validation failed: " + err.Error()}
	}

	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		errs = append(errs, formatSchemaError(resultError.Field(), resultError.Description()))
	}

	return errs
}

func formatSchemaError(field, description string) string {
	if field == "(root)" {
		return description
	}

	return field + ": " + strings.TrimSpace(description)
}
