package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/capgate/capgate/internal/authz/domain"
)

// gate implements CapabilityGate. It validates the capability against the active
// registry before consulting policy: an unregistered or disabled capability can
// never be authorized, regardless of policy content.
type gate struct {
	snapshots SnapshotSource
	evaluator *Evaluator
	audit     AuditEmitter
	logger    *slog.Logger
}

// NewGate creates the capability gate. The audit emitter is optional; pass nil to
// disable audit emission.
func NewGate(
	snapshots SnapshotSource,
	evaluator *Evaluator,
	audit AuditEmitter,
	logger *slog.Logger,
) CapabilityGate {
	return &gate{
		snapshots: snapshots,
		evaluator: evaluator,
		audit:     audit,
		logger:    logger,
	}
}

// Authorize decides whether the principal may perform the action on the named
// capability. The capability name doubles as the resource during policy
// evaluation. Every call terminates in a decision; per-request evaluation never
// fails.
func (g *gate) Authorize(
	ctx context.Context,
	capabilityName, principal, action string,
	reqCtx domain.Context,
) domain.Decision {
	registry, policies := g.snapshots.Current()

	var decision domain.Decision

	capability, err := registry.Lookup(capabilityName)
	switch {
	case err != nil:
		// First deny-by-default checkpoint, independent of the evaluator.
		decision = domain.Decision{
			Outcome: domain.EffectDeny,
			Reason:  domain.ReasonUnknownCapability,
		}
	case !capability.Enabled:
		decision = domain.Decision{
			Outcome: domain.EffectDeny,
			Reason:  domain.ReasonCapabilityDisabled,
		}
	default:
		decision = g.evaluator.Evaluate(policies, principal, capabilityName, action, reqCtx)
	}

	g.emitAudit(ctx, capabilityName, principal, action, decision)

	return decision
}

// Check reports whether the request would be allowed.
func (g *gate) Check(
	ctx context.Context,
	capabilityName, principal, action string,
	reqCtx domain.Context,
) bool {
	return g.Authorize(ctx, capabilityName, principal, action, reqCtx).Allowed()
}

// emitAudit pushes an audit event for the decision. Best-effort: emitter errors
// are logged and discarded so the audit path can never change the authorization
// outcome.
func (g *gate) emitAudit(
	ctx context.Context,
	capabilityName, principal, action string,
	decision domain.Decision,
) {
	if g.audit == nil {
		return
	}

	event := &domain.AuditEvent{
		ID:         uuid.Must(uuid.NewV7()),
		Capability: capabilityName,
		Principal:  principal,
		Action:     action,
		Outcome:    decision.Outcome,
		Reason:     decision.Reason,
		PolicyName: decision.PolicyName,
		CreatedAt:  time.Now().UTC(),
	}

	if err := g.audit.Emit(ctx, event); err != nil {
		g.logger.Warn("audit emission failed",
			slog.String("capability", capabilityName),
			slog.String("principal", principal),
			slog.Any("error", err))
	}
}
