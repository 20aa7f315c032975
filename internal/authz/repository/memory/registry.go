// Package memory provides in-memory storage for capability registrations and
// policy snapshots. Both follow a two-phase lifecycle: a single-writer
// initialization phase followed by an immutable, freely-shared read phase.
package memory

import (
	"sort"

	"github.com/capgate/capgate/internal/authz/domain"
	"github.com/capgate/capgate/internal/errors"
)

// Registry is the catalogue of capabilities the host system is willing to expose
// at all, independent of policy. Registration is expected to complete before any
// authorization traffic begins; after that point the registry is read-only and
// safe for unsynchronized concurrent reads.
type Registry struct {
	capabilities map[string]domain.Capability
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]domain.Capability),
	}
}

// Register adds a capability to the registry. Returns ErrDuplicateCapability if a
// capability with the same name is already registered; registration errors are
// fatal to startup and never occur during request handling.
func (r *Registry) Register(capability domain.Capability) error {
	if capability.Name == "" {
		return errors.Wrap(errors.ErrInvalidInput, "capability name is required")
	}
	if _, exists := r.capabilities[capability.Name]; exists {
		return errors.Wrapf(domain.ErrDuplicateCapability, "name %q", capability.Name)
	}

	r.capabilities[capability.Name] = capability
	return nil
}

// Lookup retrieves a capability by name. Returns ErrCapabilityNotFound if absent.
func (r *Registry) Lookup(name string) (*domain.Capability, error) {
	capability, exists := r.capabilities[name]
	if !exists {
		return nil, errors.Wrapf(domain.ErrCapabilityNotFound, "name %q", name)
	}
	return &capability, nil
}

// List returns all registered capabilities sorted by name, for introspection and
// audit tooling.
func (r *Registry) List() []domain.Capability {
	capabilities := make([]domain.Capability, 0, len(r.capabilities))
	for _, capability := range r.capabilities {
		capabilities = append(capabilities, capability)
	}

	sort.Slice(capabilities, func(i, j int) bool {
		return capabilities[i].Name < capabilities[j].Name
	})

	return capabilities
}
