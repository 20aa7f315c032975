package usecase

import (
	"context"
	"time"

	"github.com/capgate/capgate/internal/authz/domain"
	"github.com/capgate/capgate/internal/metrics"
)

// gateWithMetrics decorates CapabilityGate with metrics instrumentation.
type gateWithMetrics struct {
	next    CapabilityGate
	metrics metrics.BusinessMetrics
}

// NewGateWithMetrics wraps a CapabilityGate with decision metrics recording.
func NewGateWithMetrics(gate CapabilityGate, m metrics.BusinessMetrics) CapabilityGate {
	return &gateWithMetrics{
		next:    gate,
		metrics: m,
	}
}

// Authorize records metrics for authorization decisions, labeled by outcome.
func (g *gateWithMetrics) Authorize(
	ctx context.Context,
	capabilityName, principal, action string,
	reqCtx domain.Context,
) domain.Decision {
	start := time.Now()
	decision := g.next.Authorize(ctx, capabilityName, principal, action, reqCtx)

	outcome := string(decision.Outcome)
	g.metrics.RecordOperation(ctx, "authz", "authorize", outcome)
	g.metrics.RecordDuration(ctx, "authz", "authorize", time.Since(start), outcome)

	return decision
}

// Check records metrics for boolean authorization checks, labeled by outcome.
func (g *gateWithMetrics) Check(
	ctx context.Context,
	capabilityName, principal, action string,
	reqCtx domain.Context,
) bool {
	start := time.Now()
	allowed := g.next.Check(ctx, capabilityName, principal, action, reqCtx)

	outcome := string(domain.EffectDeny)
	if allowed {
		outcome = string(domain.EffectAllow)
	}
	g.metrics.RecordOperation(ctx, "authz", "check", outcome)
	g.metrics.RecordDuration(ctx, "authz", "check", time.Since(start), outcome)

	return allowed
}
