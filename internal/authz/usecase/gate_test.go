package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capgate/capgate/internal/authz/domain"
	apperrors "github.com/capgate/capgate/internal/errors"
)

// fakeRegistry implements CapabilityRegistry over a plain map.
type fakeRegistry struct {
	capabilities map[string]domain.Capability
}

func (f *fakeRegistry) Lookup(name string) (*domain.Capability, error) {
	capability, exists := f.capabilities[name]
	if !exists {
		return nil, domain.ErrCapabilityNotFound
	}
	return &capability, nil
}

func (f *fakeRegistry) List() []domain.Capability {
	capabilities := make([]domain.Capability, 0, len(f.capabilities))
	for _, capability := range f.capabilities {
		capabilities = append(capabilities, capability)
	}
	return capabilities
}

// fakeSnapshotSource returns a fixed registry and policy set.
type fakeSnapshotSource struct {
	registry CapabilityRegistry
	policies []domain.Policy
}

func (f *fakeSnapshotSource) Current() (CapabilityRegistry, []domain.Policy) {
	return f.registry, f.policies
}

// recordingEmitter captures audit events and optionally fails.
type recordingEmitter struct {
	events []*domain.AuditEvent
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, event *domain.AuditEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGate(
	capabilities map[string]domain.Capability,
	policies []domain.Policy,
	audit AuditEmitter,
) CapabilityGate {
	return NewGate(
		&fakeSnapshotSource{
			registry: &fakeRegistry{capabilities: capabilities},
			policies: policies,
		},
		NewEvaluator(),
		audit,
		testLogger(),
	)
}

func TestGate_Authorize_RegisteredCapabilityAllowed(t *testing.T) {
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("filesystem.read")),
		},
		nil,
	)

	decision := gate.Authorize(context.Background(), "filesystem.read", "agent1", "execute", domain.Context{})

	assert.Equal(t, domain.EffectAllow, decision.Outcome)
	assert.True(t, decision.Allowed())
	require.NotNil(t, decision.Rule)
	assert.Equal(t, "default", decision.PolicyName)
}

func TestGate_Authorize_UnknownCapability(t *testing.T) {
	// Policy would allow filesystem.write, but the capability is not registered:
	// an unregistered capability can never be authorized, regardless of policy.
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("*.*")),
		},
		nil,
	)

	decision := gate.Authorize(context.Background(), "filesystem.write", "agent1", "execute", domain.Context{})

	assert.Equal(t, domain.EffectDeny, decision.Outcome)
	assert.Equal(t, domain.ReasonUnknownCapability, decision.Reason)
	assert.Nil(t, decision.Rule)
}

func TestGate_Authorize_DisabledCapability(t *testing.T) {
	gate := newTestGate(
		map[string]domain.Capability{
			"shell.exec": domain.NewCapability("shell.exec", "Run shell commands").Disabled(),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("shell.exec")),
		},
		nil,
	)

	decision := gate.Authorize(context.Background(), "shell.exec", "agent1", "execute", domain.Context{})

	assert.Equal(t, domain.EffectDeny, decision.Outcome)
	assert.Equal(t, domain.ReasonCapabilityDisabled, decision.Reason)
}

func TestGate_Authorize_EmptyPolicySetDeniesByDefault(t *testing.T) {
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		nil,
		nil,
	)

	decision := gate.Authorize(context.Background(), "filesystem.read", "agent1", "execute", domain.Context{})

	assert.Equal(t, domain.EffectDeny, decision.Outcome)
	assert.Equal(t, domain.ReasonDefaultDeny, decision.Reason)
}

func TestGate_Authorize_EmitsAuditEvents(t *testing.T) {
	emitter := &recordingEmitter{}
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("filesystem.read")),
		},
		emitter,
	)

	gate.Authorize(context.Background(), "filesystem.read", "agent1", "execute", domain.Context{})
	gate.Authorize(context.Background(), "filesystem.write", "agent1", "execute", domain.Context{})

	require.Len(t, emitter.events, 2)

	allowed := emitter.events[0]
	assert.Equal(t, "filesystem.read", allowed.Capability)
	assert.Equal(t, "agent1", allowed.Principal)
	assert.Equal(t, "execute", allowed.Action)
	assert.Equal(t, domain.EffectAllow, allowed.Outcome)
	assert.Equal(t, "default", allowed.PolicyName)
	assert.NotEmpty(t, allowed.ID)
	assert.False(t, allowed.CreatedAt.IsZero())

	denied := emitter.events[1]
	assert.Equal(t, domain.EffectDeny, denied.Outcome)
	assert.Equal(t, domain.ReasonUnknownCapability, denied.Reason)
}

func TestGate_Authorize_AuditFailureNeverChangesOutcome(t *testing.T) {
	emitter := &recordingEmitter{err: apperrors.New("audit sink unavailable")}
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("filesystem.read")),
		},
		emitter,
	)

	decision := gate.Authorize(context.Background(), "filesystem.read", "agent1", "execute", domain.Context{})

	assert.Equal(t, domain.EffectAllow, decision.Outcome)
	assert.Len(t, emitter.events, 1)
}

func TestGate_Check(t *testing.T) {
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("filesystem.read")),
		},
		nil,
	)

	assert.True(t, gate.Check(context.Background(), "filesystem.read", "agent1", "execute", nil))
	assert.False(t, gate.Check(context.Background(), "filesystem.write", "agent1", "execute", nil))
}
