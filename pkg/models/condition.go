package models

// ConditionOperator enumerates the comparison operators a condition node
// may apply to an event field.
type ConditionOperator string

const (
	OperatorEq          ConditionOperator = "eq"
	OperatorNeq         ConditionOperator = "neq"
	OperatorGt          ConditionOperator = "gt"
	OperatorGte         ConditionOperator = "gte"
	OperatorLt          ConditionOperator = "lt"
	OperatorLte         ConditionOperator = "lte"
	OperatorContains    ConditionOperator = "contains"
	OperatorNotContains ConditionOperator = "not_contains"
)

// ValidConditionOperators lists every supported operator.
var ValidConditionOperators = []ConditionOperator{
	OperatorEq,
	OperatorNeq,
	OperatorGt,
	OperatorGte,
	OperatorLt,
	OperatorLte,
	OperatorContains,
	OperatorNotContains,
}

// IsNumeric reports whether op compares numerically. Numeric
// operators coerce both operands to float64 at evaluation time.
func (op ConditionOperator) IsNumeric() bool {
	switch op {
	case OperatorGt, OperatorGte, OperatorLt, OperatorLte:
		return true
	default:
		return false
	}
}

// ConditionConfig describes one binary decision: look Field up in the
// triggering event's data and compare it to Value with Operator. Field is a
// dot-path, e.g. "totalAmount" or "customer.email".
type ConditionConfig struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required,oneof=eq neq gt gte lt lte contains not_contains"`
	Value    any               `json:"value"`
}
