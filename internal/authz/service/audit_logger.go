// Package service provides supporting services for the authorization core.
package service

import (
	"context"
	"log/slog"

	"github.com/capgate/capgate/internal/authz/domain"
)

// auditLogger emits audit events as structured log records. It is the default
// audit sink: deployments that need durable audit storage plug in their own
// emitter behind the same interface.
type auditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a slog-backed audit emitter.
func NewAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With(slog.String("component", "audit")),
	}
}

// Emit writes one structured record per authorization decision. Never returns an
// error: slog handlers absorb their own failures, and the audit path is
// best-effort by contract.
func (a *auditLogger) Emit(ctx context.Context, event *domain.AuditEvent) error {
	a.logger.InfoContext(ctx, "authorization decision",
		slog.String("audit_id", event.ID.String()),
		slog.String("capability", event.Capability),
		slog.String("principal", event.Principal),
		slog.String("action", event.Action),
		slog.String("outcome", string(event.Outcome)),
		slog.String("reason", event.Reason),
		slog.String("policy", event.PolicyName),
		slog.Time("created_at", event.CreatedAt),
	)
	return nil
}
