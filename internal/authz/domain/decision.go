package domain

import (
	"time"

	"github.com/google/uuid"
)

// Denial reasons used by the evaluator and the capability gate. Reasons are part
// of the audit trail: every denied request cites why it was refused.
const (
	// ReasonDefaultDeny is cited when no rule matched the request.
	ReasonDefaultDeny = "no matching rule: deny by default"

	// ReasonUnknownCapability is cited when the requested capability is not registered.
	ReasonUnknownCapability = "unknown capability"

	// ReasonCapabilityDisabled is cited when the capability is registered but disabled.
	ReasonCapabilityDisabled = "capability disabled"
)

// Decision is the output of policy evaluation. Decisions are values and are never
// mutated after creation; callers persist them if they need a record.
type Decision struct {
	Outcome    Effect // EffectAllow or EffectDeny
	Rule       *Rule  // Determining rule, nil for default deny and registry denials
	PolicyName string // Name of the policy contributing the determining rule, "" if none
	Reason     string // Human-readable reason for audit
}

// Allowed reports whether the decision permits the requested operation.
func (d Decision) Allowed() bool {
	return d.Outcome == EffectAllow
}

// AuditEvent records a single authorization decision for compliance and security
// monitoring. Emission is best-effort: an audit failure never changes the
// authorization outcome.
type AuditEvent struct {
	ID         uuid.UUID
	Capability string
	Principal  string
	Action     string
	Outcome    Effect
	Reason     string
	PolicyName string // Policy containing the determining rule, "" for default deny
	CreatedAt  time.Time
}
