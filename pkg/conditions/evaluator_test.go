package conditions_test

import (
	"testing"

	"github.com/crewline/automation/pkg/conditions"
	"github.com/crewline/automation/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate_EmptyListMatchesEverything(t *testing.T) {
	t.Parallel()

	assert.True(t, conditions.Evaluate(nil, map[string]any{"anything": "at all"}))
	assert.True(t, conditions.Evaluate([]models.Condition{}, nil))
}

func TestEvaluate_Operators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cond     models.Condition
		data     map[string]any
		expected bool
	}{
		{
			name:     "equals matches after coercion",
			cond:     models.Condition{Field: "source", Operator: models.OperatorEquals, Value: "web_form"},
			data:     map[string]any{"source": "web_form"},
			expected: true,
		},
		{
			name:     "equals coerces numbers to strings",
			cond:     models.Condition{Field: "count", Operator: models.OperatorEquals, Value: "3"},
			data:     map[string]any{"count": 3},
			expected: true,
		},
		{
			name:     "equals mismatch",
			cond:     models.Condition{Field: "source", Operator: models.OperatorEquals, Value: "referral"},
			data:     map[string]any{"source": "web_form"},
			expected: false,
		},
		{
			name:     "not_equals",
			cond:     models.Condition{Field: "source", Operator: models.OperatorNotEquals, Value: "referral"},
			data:     map[string]any{"source": "web_form"},
			expected: true,
		},
		{
			name:     "contains is case-insensitive",
			cond:     models.Condition{Field: "service_needed", Operator: models.OperatorContains, Value: "plumb"},
			data:     map[string]any{"service_needed": "Emergency Plumbing"},
			expected: true,
		},
		{
			name:     "not_contains",
			cond:     models.Condition{Field: "service_needed", Operator: models.OperatorNotContains, Value: "roofing"},
			data:     map[string]any{"service_needed": "Emergency Plumbing"},
			expected: true,
		},
		{
			name:     "greater_than numeric",
			cond:     models.Condition{Field: "estimated_value", Operator: models.OperatorGreaterThan, Value: "1000"},
			data:     map[string]any{"estimated_value": 2500.0},
			expected: true,
		},
		{
			name:     "greater_than non-numeric field is false",
			cond:     models.Condition{Field: "estimated_value", Operator: models.OperatorGreaterThan, Value: "1000"},
			data:     map[string]any{"estimated_value": "a lot"},
			expected: false,
		},
		{
			name:     "less_than non-numeric value is false",
			cond:     models.Condition{Field: "estimated_value", Operator: models.OperatorLessThan, Value: "cheap"},
			data:     map[string]any{"estimated_value": 10},
			expected: false,
		},
		{
			name:     "unknown operator fails closed",
			cond:     models.Condition{Field: "source", Operator: "matches_regex", Value: ".*"},
			data:     map[string]any{"source": "web_form"},
			expected: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := conditions.Evaluate([]models.Condition{testCase.cond}, testCase.data)
			assert.Equal(t, testCase.expected, got)
		})
	}
}

func TestEvaluate_IsEmptyTreatsAbsentNilAndBlankIdentically(t *testing.T) {
	t.Parallel()

	cond := []models.Condition{{Field: "phone", Operator: models.OperatorIsEmpty}}

	assert.True(t, conditions.Evaluate(cond, map[string]any{}), "absent key")
	assert.True(t, conditions.Evaluate(cond, map[string]any{"phone": nil}), "nil value")
	assert.True(t, conditions.Evaluate(cond, map[string]any{"phone": ""}), "empty string")
	assert.True(t, conditions.Evaluate(cond, map[string]any{"phone": "   "}), "whitespace only")
	assert.False(t, conditions.Evaluate(cond, map[string]any{"phone": "555-0101"}))

	notEmpty := []models.Condition{{Field: "phone", Operator: models.OperatorIsNotEmpty}}
	assert.False(t, conditions.Evaluate(notEmpty, map[string]any{"phone": nil}))
	assert.True(t, conditions.Evaluate(notEmpty, map[string]any{"phone": "555-0101"}))
}

// A condition's own Logic combines it with the accumulated result, and the
// first condition's Logic is never used for combining. [A false, B(OR) true]
// therefore evaluates to true. Do not "fix" this to grouped boolean logic:
// authored workflows depend on it.
func TestEvaluate_LogicAttachesToTheConditionFollowingTheBoundary(t *testing.T) {
	t.Parallel()

	conds := []models.Condition{
		{Field: "source", Operator: models.OperatorEquals, Value: "referral", Logic: models.LogicAnd},
		{Field: "status", Operator: models.OperatorEquals, Value: "new", Logic: models.LogicOr},
	}
	data := map[string]any{"source": "web_form", "status": "new"}

	assert.True(t, conditions.Evaluate(conds, data))
}

// A condition with no Logic of its own inherits the most recently seen
// combinator. That carried state is the observable remnant of the legacy
// engine's mutable "current logic" accumulator.
func TestEvaluate_EmptyLogicInheritsCarriedCombinator(t *testing.T) {
	t.Parallel()

	conds := []models.Condition{
		{Field: "source", Operator: models.OperatorEquals, Value: "referral", Logic: models.LogicOr},
		{Field: "status", Operator: models.OperatorEquals, Value: "new"},
	}

	// First condition false, second true, combined with the carried OR.
	data := map[string]any{"source": "web_form", "status": "new"}
	assert.True(t, conditions.Evaluate(conds, data))

	// Both false under OR.
	data = map[string]any{"source": "web_form", "status": "won"}
	assert.False(t, conditions.Evaluate(conds, data))
}

func TestEvaluate_ThreeConditionChain(t *testing.T) {
	t.Parallel()

	conds := []models.Condition{
		{Field: "source", Operator: models.OperatorEquals, Value: "web_form"},
		{Field: "status", Operator: models.OperatorEquals, Value: "new", Logic: models.LogicAnd},
		{Field: "priority", Operator: models.OperatorEquals, Value: "urgent", Logic: models.LogicOr},
	}

	// true AND false -> false, then false OR true -> true.
	data := map[string]any{"source": "web_form", "status": "won", "priority": "urgent"}
	assert.True(t, conditions.Evaluate(conds, data))

	// true AND true -> true, then true OR false -> true.
	data = map[string]any{"source": "web_form", "status": "new", "priority": "low"}
	assert.True(t, conditions.Evaluate(conds, data))
}
