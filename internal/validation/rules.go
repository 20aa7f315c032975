// Package validation provides custom validation rules for policy and capability
// documents.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/capgate/capgate/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Pattern validates dot-segmented wildcard patterns as used by rule principal,
// resource, and action fields: segments are separated by ".", every segment is
// either "*" or a non-empty literal, and "*" may not be embedded inside a literal
// segment. Rejecting embedded wildcards at load time keeps a typo like "fs.re*d"
// from silently becoming an exact-match literal.
var Pattern = validation.NewStringRuleWithError(
	validPattern,
	validation.NewError(
		"validation_pattern",
		"must be a dot-segmented pattern with `*` only as a whole segment",
	),
)

// CapabilityName validates hierarchical dotted capability names: non-empty
// segments with no wildcards.
var CapabilityName = validation.NewStringRuleWithError(
	func(s string) bool {
		return validPattern(s) && !strings.Contains(s, "*")
	},
	validation.NewError(
		"validation_capability_name",
		"must be a dotted name with non-empty segments and no wildcards",
	),
)

func validPattern(s string) bool {
	if s == "" {
		return false
	}
	for _, segment := range strings.Split(s, ".") {
		if segment == "" {
			return false
		}
		if segment != "*" && strings.Contains(segment, "*") {
			return false
		}
	}
	return true
}
