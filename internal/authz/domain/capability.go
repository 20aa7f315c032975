// Package domain defines the capability authorization data model and decision logic.
//
// It provides the vocabulary the policy evaluator operates on: capabilities, rules,
// effects, conditions, and decisions. All values are treated as immutable once
// constructed; hot reload replaces whole snapshots instead of mutating members.
package domain

// CapabilityParam describes a single declared parameter of a capability.
type CapabilityParam struct {
	Name     string
	Type     string // Semantic type (e.g., "string", "path", "url")
	Required bool   // Whether callers must supply the parameter
}

// Capability represents a registered, privileged operation kind exposed by the host
// system (e.g., "filesystem.read"). Capabilities are registered once at startup and
// are read-only thereafter. A disabled capability stays in the registry but every
// request for it is denied before policy is consulted.
type Capability struct {
	Name        string            // Hierarchical dotted name, unique within a registry
	Description string            // Human-readable description for introspection/audit tooling
	Enabled     bool              // Whether the capability can currently be authorized
	Parameters  []CapabilityParam // Ordered declared parameter specs
}

// NewCapability creates an enabled capability with the given name and description.
func NewCapability(name, description string) Capability {
	return Capability{
		Name:        name,
		Description: description,
		Enabled:     true,
	}
}

// WithParams returns a copy of the capability with the given parameter specs.
func (c Capability) WithParams(params ...CapabilityParam) Capability {
	c.Parameters = params
	return c
}

// Disabled returns a copy of the capability marked as disabled.
func (c Capability) Disabled() Capability {
	c.Enabled = false
	return c
}
