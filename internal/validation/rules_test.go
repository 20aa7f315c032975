package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/capgate/capgate/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("non-nil error", func(t *testing.T) {
		err := WrapValidationError(apperrors.New("field is required"))
		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "field is required")
	})
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
	assert.Error(t, NotBlank.Validate("\t\n"))
}

func TestPattern(t *testing.T) {
	valid := []string{
		"filesystem.read",
		"filesystem.*",
		"*",
		"*.read",
		"network.*.get",
		"execute",
	}
	for _, pattern := range valid {
		assert.NoError(t, Pattern.Validate(pattern), "pattern %q should be valid", pattern)
	}

	invalid := []string{
		"",
		".",
		"filesystem.",
		".read",
		"filesystem..read",
		"fs.re*d",
		"**.read",
	}
	for _, pattern := range invalid {
		assert.Error(t, Pattern.Validate(pattern), "pattern %q should be invalid", pattern)
	}
}

func TestCapabilityName(t *testing.T) {
	assert.NoError(t, CapabilityName.Validate("filesystem.read"))
	assert.NoError(t, CapabilityName.Validate("shell"))

	assert.Error(t, CapabilityName.Validate(""))
	assert.Error(t, CapabilityName.Validate("filesystem.*"))
	assert.Error(t, CapabilityName.Validate("*"))
	assert.Error(t, CapabilityName.Validate("filesystem..read"))
}
