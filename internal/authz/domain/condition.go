package domain

import "slices"

// Operator identifies the comparison a condition performs against a context value.
type Operator string

const (
	// OperatorEquals requires type-aware equality with the comparison value.
	OperatorEquals Operator = "equals"

	// OperatorNotEquals requires type-aware inequality with the comparison value.
	OperatorNotEquals Operator = "not_equals"

	// OperatorIn requires the context value to be a member of the comparison set.
	OperatorIn Operator = "in"

	// OperatorMatches requires the context value to match a dot-segmented wildcard
	// pattern (same grammar as rule resource patterns, see MatchPattern).
	OperatorMatches Operator = "matches"

	// OperatorGreaterThan requires a numeric context value greater than the comparison value.
	OperatorGreaterThan Operator = "greater_than"

	// OperatorLessThan requires a numeric context value less than the comparison value.
	OperatorLessThan Operator = "less_than"

	// OperatorExists requires the context key to be present, regardless of value.
	OperatorExists Operator = "exists"
)

// Valid reports whether the operator is one of the supported comparison operators.
func (o Operator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorIn, OperatorMatches,
		OperatorGreaterThan, OperatorLessThan, OperatorExists:
		return true
	}
	return false
}

// Context maps request attribute keys to typed scalar or set values.
// Supported value types are string, bool, any Go integer or float type, and
// []string (set of strings). Values of other types never satisfy a condition.
type Context map[string]any

// Condition is a single predicate over request context that narrows when a rule
// applies. The comparison value is operator-dependent: a scalar for Equals/NotEquals
// and the numeric operators, a set of strings for In, a pattern string for Matches,
// and ignored for Exists.
type Condition struct {
	Key      string
	Operator Operator
	Value    any
}

// Satisfied checks the condition against the supplied request context.
// A missing context key, a type mismatch, or an unknown operator all evaluate to
// false (fail closed) rather than raising an error: per-request evaluation must be
// total on the security-critical path.
func (c Condition) Satisfied(reqCtx Context) bool {
	value, exists := reqCtx[c.Key]

	if c.Operator == OperatorExists {
		return exists
	}

	if !exists {
		return false
	}

	switch c.Operator {
	case OperatorEquals:
		equal, ok := typedEqual(value, c.Value)
		return ok && equal

	case OperatorNotEquals:
		equal, ok := typedEqual(value, c.Value)
		return ok && !equal

	case OperatorIn:
		return memberOf(value, c.Value)

	case OperatorMatches:
		candidate, candidateOK := value.(string)
		pattern, patternOK := c.Value.(string)
		return candidateOK && patternOK && MatchPattern(pattern, candidate)

	case OperatorGreaterThan:
		left, leftOK := toFloat(value)
		right, rightOK := toFloat(c.Value)
		return leftOK && rightOK && left > right

	case OperatorLessThan:
		left, leftOK := toFloat(value)
		right, rightOK := toFloat(c.Value)
		return leftOK && rightOK && left < right
	}

	return false
}

// typedEqual compares two context values with type awareness. The second return
// value reports whether the values were comparable at all; a type mismatch makes
// both Equals and NotEquals evaluate to false.
func typedEqual(a, b any) (equal, ok bool) {
	// Numbers compare numerically regardless of the concrete Go type,
	// so a JSON-decoded float64(5) equals an int(5) from code.
	if aNum, aOK := toFloat(a); aOK {
		bNum, bOK := toFloat(b)
		return aNum == bNum, bOK
	}

	switch aVal := a.(type) {
	case string:
		bVal, ok := b.(string)
		return aVal == bVal, ok
	case bool:
		bVal, ok := b.(bool)
		return aVal == bVal, ok
	case []string:
		bVal, ok := b.([]string)
		return ok && slices.Equal(aVal, bVal), ok
	}

	return false, false
}

// memberOf checks if the scalar value is a member of the comparison set.
// The set may be a []string or a []any of scalars (the JSON decoding shape).
func memberOf(value, set any) bool {
	switch members := set.(type) {
	case []string:
		strValue, ok := value.(string)
		if !ok {
			return false
		}
		return slices.Contains(members, strValue)
	case []any:
		for _, member := range members {
			if equal, ok := typedEqual(value, member); ok && equal {
				return true
			}
		}
	}
	return false
}

// toFloat normalizes any Go numeric type to float64 for comparison.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
