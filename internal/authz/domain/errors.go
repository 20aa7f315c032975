package domain

import (
	"github.com/capgate/capgate/internal/errors"
)

// Capability registration and policy loading errors.
var (
	// ErrDuplicateCapability indicates a capability name collision at registration time.
	// Fatal to startup; never occurs during request handling.
	ErrDuplicateCapability = errors.Wrap(errors.ErrConflict, "capability already registered")

	// ErrCapabilityNotFound indicates a capability with the specified name is not registered.
	ErrCapabilityNotFound = errors.Wrap(errors.ErrNotFound, "capability not found")

	// ErrInvalidPolicy indicates a structurally malformed policy document. Policy
	// loading must fail before activation: an invalid rule silently ignored would be
	// a security regression.
	ErrInvalidPolicy = errors.Wrap(errors.ErrInvalidInput, "invalid policy")
)
