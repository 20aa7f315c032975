package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capgate/capgate/internal/authz/domain"
)

// recordingMetrics captures metric calls for assertions.
type recordingMetrics struct {
	operations []string
	durations  []string
}

func (r *recordingMetrics) RecordOperation(_ context.Context, component, operation, outcome string) {
	r.operations = append(r.operations, component+"/"+operation+"/"+outcome)
}

func (r *recordingMetrics) RecordDuration(
	_ context.Context,
	component, operation string,
	_ time.Duration,
	outcome string,
) {
	r.durations = append(r.durations, component+"/"+operation+"/"+outcome)
}

func newInstrumentedGate(m *recordingMetrics) CapabilityGate {
	gate := newTestGate(
		map[string]domain.Capability{
			"filesystem.read": domain.NewCapability("filesystem.read", "Read files"),
		},
		[]domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("filesystem.read")),
		},
		nil,
	)
	return NewGateWithMetrics(gate, m)
}

func TestGateWithMetrics_Authorize(t *testing.T) {
	m := &recordingMetrics{}
	gate := newInstrumentedGate(m)

	decision := gate.Authorize(context.Background(), "filesystem.read", "agent1", "execute", nil)
	assert.Equal(t, domain.EffectAllow, decision.Outcome)

	decision = gate.Authorize(context.Background(), "filesystem.write", "agent1", "execute", nil)
	assert.Equal(t, domain.EffectDeny, decision.Outcome)

	require.Equal(t, []string{"authz/authorize/allow", "authz/authorize/deny"}, m.operations)
	require.Equal(t, []string{"authz/authorize/allow", "authz/authorize/deny"}, m.durations)
}

func TestGateWithMetrics_Check(t *testing.T) {
	m := &recordingMetrics{}
	gate := newInstrumentedGate(m)

	assert.True(t, gate.Check(context.Background(), "filesystem.read", "agent1", "execute", nil))
	assert.False(t, gate.Check(context.Background(), "shell.exec", "agent1", "execute", nil))

	require.Equal(t, []string{"authz/check/allow", "authz/check/deny"}, m.operations)
}
