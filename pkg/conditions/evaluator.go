// Package conditions evaluates workflow condition lists against trigger data.
//
// Evaluation is strictly left-to-right. The combinator for each condition is
// its own Logic field when set; a condition with an empty Logic inherits the
// most recently seen combinator, defaulting to AND. The first condition's
// Logic never participates in combining (there is nothing to combine with yet)
// but is still adopted as the carried combinator. This reproduces the
// behaviour of the legacy engine's mutable accumulator as an explicit fold;
// multi-condition rules should treat Logic as attached to the condition
// following the boundary it describes.
package conditions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/crewline/automation/pkg/models"
)

// Evaluate reports whether the condition list matches the given data. An empty
// list matches everything: "run for everything" is the safe default.
func Evaluate(conds []models.Condition, data map[string]any) bool {
	if len(conds) == 0 {
		return true
	}

	result := true
	combinator := models.LogicAnd

	for i, cond := range conds {
		if cond.Logic != "" {
			combinator = cond.Logic
		}

		met := conditionMet(cond, data)

		if i == 0 {
			result = met

			continue
		}

		switch combinator {
		case models.LogicOr:
			result = result || met
		default:
			result = result && met
		}
	}

	return result
}

func conditionMet(cond models.Condition, data map[string]any) bool {
	fieldValue := data[cond.Field]
	expected := resolveDynamicValue(cond.Value)

	switch cond.Operator {
	case models.OperatorEquals:
		return stringify(fieldValue) == expected
	case models.OperatorNotEquals:
		return stringify(fieldValue) != expected
	case models.OperatorContains:
		return strings.Contains(strings.ToLower(stringify(fieldValue)), strings.ToLower(expected))
	case models.OperatorNotContains:
		return !strings.Contains(strings.ToLower(stringify(fieldValue)), strings.ToLower(expected))
	case models.OperatorGreaterThan:
		actual, expectedNum, ok := numericPair(fieldValue, expected)

		return ok && actual > expectedNum
	case models.OperatorLessThan:
		actual, expectedNum, ok := numericPair(fieldValue, expected)

		return ok && actual < expectedNum
	case models.OperatorIsEmpty:
		return isEmpty(fieldValue)
	case models.OperatorIsNotEmpty:
		return !isEmpty(fieldValue)
	default:
		// Unknown operators fail closed.
		return false
	}
}

// resolveDynamicValue expands dynamic tokens authored in condition values.
func resolveDynamicValue(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return time.Now().Format("2006-01-02")
	default:
		return value
	}
}

func stringify(value any) string {
	if value == nil {
		return ""
	}

	return fmt.Sprintf("%v", value)
}

// numericPair coerces both sides to float64. Non-numeric input makes the
// comparison false rather than erroring.
func numericPair(fieldValue any, expected string) (float64, float64, bool) {
	actual, err := strconv.ParseFloat(strings.TrimSpace(stringify(fieldValue)), 64)
	if err != nil {
		return 0, 0, false
	}

	expectedNum, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return 0, 0, false
	}

	return actual, expectedNum, true
}

// isEmpty treats nil, absent and whitespace-only values identically.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	return strings.TrimSpace(stringify(value)) == ""
}
