package models

// Operator is a condition comparison operator.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not_equals"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "not_contains"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorIsEmpty     Operator = "is_empty"
	OperatorIsNotEmpty  Operator = "is_not_empty"
)

// Logic combines a condition with the accumulated result of the conditions
// before it.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is one field/operator/value clause of a workflow's condition list.
// Logic describes how this condition combines with the result accumulated so
// far; it is ignored on the first condition. An empty Logic inherits the most
// recently seen combinator (see pkg/conditions for the exact fold).
type Condition struct {
	Field    string   `json:"field"    validate:"required"`
	Operator Operator `json:"operator" validate:"required"`
	// Value may contain dynamic tokens such as "today".
	Value string `json:"value"`
	Logic Logic  `json:"logic,omitempty" validate:"omitempty,oneof=AND OR"`
}
