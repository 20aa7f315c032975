package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capgate/capgate/internal/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:       "localhost",
		ServerPort:       8080,
		LogLevel:         "error",
		AuditEnabled:     true,
		MetricsEnabled:   true,
		MetricsNamespace: "capgate_test",
		MetricsPort:      8081,
	}
}

func writeSnapshotFiles(t *testing.T, capabilities, policies string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	capabilityFile := filepath.Join(dir, "capabilities.json")
	policyFile := filepath.Join(dir, "policies.json")
	require.NoError(t, os.WriteFile(capabilityFile, []byte(capabilities), 0o600))
	require.NoError(t, os.WriteFile(policyFile, []byte(policies), 0o600))
	return capabilityFile, policyFile
}

func TestContainer_Logger(t *testing.T) {
	container := NewContainer(testConfig())

	logger := container.Logger()
	require.NotNil(t, logger)

	// Same instance on repeated access
	assert.Same(t, logger, container.Logger())
}

func TestContainer_Gate(t *testing.T) {
	container := NewContainer(testConfig())

	gate, err := container.Gate()
	require.NoError(t, err)
	require.NotNil(t, gate)

	// Empty snapshot: every request is denied
	decision := gate.Authorize(context.Background(), "fs.read", "agent.build", "execute", nil)
	assert.False(t, decision.Allowed())
}

func TestContainer_SnapshotFromFiles(t *testing.T) {
	capabilityFile, policyFile := writeSnapshotFiles(t,
		`{"capabilities": [{"name": "fs.read"}]}`,
		`{
			"policies": [
				{
					"name": "workspace",
					"version": "1",
					"rules": [
						{"effect": "allow", "principal": "*", "resource": "fs.read", "action": "execute"}
					]
				}
			]
		}`,
	)

	cfg := testConfig()
	cfg.CapabilityFile = capabilityFile
	cfg.PolicyFile = policyFile

	container := NewContainer(cfg)

	gate, err := container.Gate()
	require.NoError(t, err)

	decision := gate.Authorize(context.Background(), "fs.read", "agent.build", "execute", nil)
	assert.True(t, decision.Allowed())
}

func TestContainer_SnapshotLoadFailureIsFatal(t *testing.T) {
	capabilityFile, policyFile := writeSnapshotFiles(t,
		`{"capabilities": [{"name": "fs.*"}]}`,
		`{"policies": []}`,
	)

	cfg := testConfig()
	cfg.CapabilityFile = capabilityFile
	cfg.PolicyFile = policyFile

	container := NewContainer(cfg)

	_, err := container.SnapshotStore()
	require.Error(t, err)
}

func TestContainer_Reloader(t *testing.T) {
	t.Run("NilWithoutFiles", func(t *testing.T) {
		container := NewContainer(testConfig())

		reloader, err := container.Reloader()
		require.NoError(t, err)
		assert.Nil(t, reloader)
	})

	t.Run("SwapsSnapshot", func(t *testing.T) {
		capabilityFile, policyFile := writeSnapshotFiles(t,
			`{"capabilities": [{"name": "fs.read"}]}`,
			`{"policies": []}`,
		)

		cfg := testConfig()
		cfg.CapabilityFile = capabilityFile
		cfg.PolicyFile = policyFile

		container := NewContainer(cfg)

		gate, err := container.Gate()
		require.NoError(t, err)
		assert.False(t, gate.Check(context.Background(), "fs.read", "agent.build", "execute", nil))

		// Add an allow rule and reload
		policies := `{
			"policies": [
				{
					"name": "workspace",
					"version": "2",
					"rules": [
						{"effect": "allow", "principal": "*", "resource": "fs.read", "action": "execute"}
					]
				}
			]
		}`
		require.NoError(t, os.WriteFile(policyFile, []byte(policies), 0o600))

		reloader, err := container.Reloader()
		require.NoError(t, err)
		require.NotNil(t, reloader)
		require.NoError(t, reloader.Reload(context.Background()))

		assert.True(t, gate.Check(context.Background(), "fs.read", "agent.build", "execute", nil))
	})

	t.Run("FailedReloadKeepsPreviousSnapshot", func(t *testing.T) {
		capabilityFile, policyFile := writeSnapshotFiles(t,
			`{"capabilities": [{"name": "fs.read"}]}`,
			`{
				"policies": [
					{
						"name": "workspace",
						"version": "1",
						"rules": [
							{"effect": "allow", "principal": "*", "resource": "fs.read", "action": "execute"}
						]
					}
				]
			}`,
		)

		cfg := testConfig()
		cfg.CapabilityFile = capabilityFile
		cfg.PolicyFile = policyFile

		container := NewContainer(cfg)

		gate, err := container.Gate()
		require.NoError(t, err)
		require.True(t, gate.Check(context.Background(), "fs.read", "agent.build", "execute", nil))

		// Corrupt the policy file and reload
		require.NoError(t, os.WriteFile(policyFile, []byte(`{"policies": [`), 0o600))

		reloader, err := container.Reloader()
		require.NoError(t, err)
		require.Error(t, reloader.Reload(context.Background()))

		assert.True(t, gate.Check(context.Background(), "fs.read", "agent.build", "execute", nil))
	})
}

func TestContainer_HTTPServer(t *testing.T) {
	container := NewContainer(testConfig())

	server, err := container.HTTPServer()
	require.NoError(t, err)

	body := `{"capability": "fs.read", "principal": "agent.build", "action": "execute"}`
	request := httptest.NewRequest(http.MethodPost, "/v1/authorize", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, false, response["allowed"])
	assert.Equal(t, "unknown capability", response["reason"])
}

func TestContainer_MetricsServer(t *testing.T) {
	container := NewContainer(testConfig())

	server, err := container.MetricsServer()
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestContainer_Shutdown(t *testing.T) {
	container := NewContainer(testConfig())

	_, err := container.HTTPServer()
	require.NoError(t, err)
	_, err = container.MetricsServer()
	require.NoError(t, err)

	assert.NoError(t, container.Shutdown(context.Background()))
}
