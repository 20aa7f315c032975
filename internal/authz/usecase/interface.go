// Package usecase implements the authorization decision logic: rule matching and
// combining (deny-overrides) and the capability gate that ties registry lookup to
// policy evaluation.
package usecase

import (
	"context"

	"github.com/capgate/capgate/internal/authz/domain"
)

// CapabilityRegistry defines read access to the catalogue of registered capabilities.
// Implementations must be safe for unsynchronized concurrent reads once
// initialization has completed.
type CapabilityRegistry interface {
	// Lookup retrieves a capability by name. Returns ErrCapabilityNotFound if absent.
	Lookup(name string) (*domain.Capability, error)

	// List returns all registered capabilities sorted by name.
	List() []domain.Capability
}

// SnapshotSource provides atomic access to the active capability registry and
// policy set. A single call returns one coherent pair: hot reload publishes a
// whole new snapshot, so an authorization decision never observes a half-updated
// configuration.
type SnapshotSource interface {
	Current() (CapabilityRegistry, []domain.Policy)
}

// AuditEmitter receives audit events for every authorization decision. Emission is
// best-effort: the gate logs and discards emitter errors, and the authorization
// outcome is never affected by the audit path.
type AuditEmitter interface {
	Emit(ctx context.Context, event *domain.AuditEvent) error
}

// CapabilityGate is the public authorization boundary. Every request yields a
// decision, never an error: unknown capabilities, disabled capabilities, and
// unmatched requests all surface as deny decisions with an auditable reason.
type CapabilityGate interface {
	// Authorize decides whether the principal may perform the action on the named
	// capability under the supplied request context.
	Authorize(ctx context.Context, capabilityName, principal, action string, reqCtx domain.Context) domain.Decision

	// Check is a boolean convenience wrapper over Authorize for callers that only
	// need allowed/denied.
	Check(ctx context.Context, capabilityName, principal, action string, reqCtx domain.Context) bool
}
