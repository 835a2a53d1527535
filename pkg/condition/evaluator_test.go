package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendura/automation/pkg/models"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"totalAmount": 120.0,
		"status":      "paid",
		"email":       "anna@example.com",
		"customer": map[string]any{
			"email": "anna@example.com",
			"vip":   true,
		},
		"items":      []any{"sku-1", "sku-2", "sku-3"},
		"stockLevel": "4",
	}

	tests := []struct {
		name     string
		field    string
		operator models.ConditionOperator
		value    any
		want     bool
	}{
		{"eq string match", "status", models.OperatorEq, "paid", true},
		{"eq string mismatch", "status", models.OperatorEq, "refunded", false},
		{"eq numeric coercion", "totalAmount", models.OperatorEq, "120", true},
		{"eq bool", "customer.vip", models.OperatorEq, true, true},
		{"neq", "status", models.OperatorNeq, "refunded", true},
		{"gt true", "totalAmount", models.OperatorGt, 100, true},
		{"gt false", "totalAmount", models.OperatorGt, 120, false},
		{"gte boundary", "totalAmount", models.OperatorGte, 120, true},
		{"lt numeric string payload", "stockLevel", models.OperatorLt, 5, true},
		{"lte boundary", "stockLevel", models.OperatorLte, 4, true},
		{"contains substring", "email", models.OperatorContains, "@example.com", true},
		{"contains case sensitive", "email", models.OperatorContains, "@Example.com", false},
		{"not_contains", "email", models.OperatorNotContains, "@shop.com", true},
		{"nested path", "customer.email", models.OperatorEq, "anna@example.com", true},
		{"length of slice", "items.length", models.OperatorGte, 3, true},
		{"length of string", "status.length", models.OperatorEq, 4, true},
		{"missing field eq", "coupon", models.OperatorEq, "SAVE10", false},
		{"missing field neq", "coupon", models.OperatorNeq, "SAVE10", true},
		{"missing field not_contains", "coupon", models.OperatorNotContains, "SAVE", true},
		{"missing nested path", "customer.address.city", models.OperatorEq, "Lisbon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcome := Evaluate(&models.ConditionConfig{
				Field:    tt.field,
				Operator: tt.operator,
				Value:    tt.value,
			}, data)

			assert.Equal(t, tt.want, outcome.Result)
		})
	}
}

func TestEvaluateCoercionFailure(t *testing.T) {
	t.Parallel()

	data := map[string]any{"totalAmount": "not-a-number"}

	outcome := Evaluate(&models.ConditionConfig{
		Field:    "totalAmount",
		Operator: models.OperatorGt,
		Value:    100,
	}, data)

	assert.False(t, outcome.Result)
	assert.NotEmpty(t, outcome.Warning)
}

func TestEvaluateNonNumericComparisonValue(t *testing.T) {
	t.Parallel()

	data := map[string]any{"totalAmount": 50.0}

	outcome := Evaluate(&models.ConditionConfig{
		Field:    "totalAmount",
		Operator: models.OperatorLt,
		Value:    "cheap",
	}, data)

	assert.False(t, outcome.Result)
	assert.NotEmpty(t, outcome.Warning)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"order": map[string]any{
			"lines": []any{1, 2},
		},
	}

	value, found := Lookup(data, "order.lines.length")
	assert.True(t, found)
	assert.Equal(t, 2, value)

	_, found = Lookup(data, "order.lines.first")
	assert.False(t, found)

	_, found = Lookup(data, "")
	assert.False(t, found)
}
