package handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/platform/gcloud/fake"
)

// origCheckTools is the real tool check, captured before any test swaps it.
var origCheckTools = checkTools

// testEnv swaps the package factories for an in-memory gcloud and captured
// output. Tests using it must not run in parallel.
type testEnv struct {
	sim  *fake.Gcloud
	out  *bytes.Buffer
	logs *bytes.Buffer
	path string
	g    Globals
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	env := &testEnv{
		sim:  fake.New(),
		out:  &bytes.Buffer{},
		logs: &bytes.Buffer{},
		path: filepath.Join(t.TempDir(), config.DefaultConfigFilename),
	}
	env.g = Globals{ConfigPath: env.path}
	require.NoError(t, config.Save(cfg, env.path))

	origExecutor, origTTY, origConfirm, origCheck := newExecutor, isInteractiveTTY, confirmDestroy, checkTools
	origStdout, origStderr := stdout, stderr
	t.Cleanup(func() {
		newExecutor, isInteractiveTTY, confirmDestroy, checkTools = origExecutor, origTTY, origConfirm, origCheck
		stdout, stderr = origStdout, origStderr
	})

	newExecutor = func(_ *config.Timeouts) gcloud.Executor {
		return gcloud.NewRetryingExecutor(env.sim, gcloud.RetryOptions{MaxRetries: 0})
	}
	isInteractiveTTY = func() bool { return false }
	checkTools = func() error { return nil }
	confirmDestroy = func(context.Context, *config.Config) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}
	stdout = env.out
	stderr = env.logs
	return env
}

func (env *testEnv) load(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(env.path)
	require.NoError(t, err)
	return cfg
}

func baseConfig() config.Config {
	return config.Config{
		ProjectID:    "my-project",
		Region:       "us-central1",
		ServiceName:  "web",
		CustomDomain: "app.example.com",
	}
}

func seedDomainMapping(sim *fake.Gcloud) {
	sim.Seed(fake.GroupDomainMappings, "app.example.com", map[string]any{
		"metadata": map[string]any{"name": "app.example.com"},
		"status": map[string]any{
			"resourceRecords": []any{map[string]any{"type": "CNAME", "rrdata": "ghs.googlehosted.com."}},
		},
	})
}

func TestNewObserver(t *testing.T) {
	for _, format := range []string{"", LogFormatText, LogFormatJSON} {
		o, err := newObserver(Globals{LogFormat: format})
		require.NoError(t, err, format)
		require.NotNil(t, o)
	}

	_, err := newObserver(Globals{LogFormat: "xml"})
	require.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDomainSetup_MissingGcloud(t *testing.T) {
	env := newTestEnv(t, baseConfig())
	t.Setenv("RUNWAY_GCLOUD_BIN", "nonexistent-gcloud-xyz123")
	checkTools = origCheckTools

	err := DomainSetup(context.Background(), env.g, DomainSetupOptions{})

	require.ErrorContains(t, err, "missing required tools: nonexistent-gcloud-xyz123")
	assert.Empty(t, env.sim.Calls(""))
}

func TestWriteMetrics(t *testing.T) {
	env := newTestEnv(t, baseConfig())
	env.g.MetricsFile = filepath.Join(t.TempDir(), "runway.prom")

	require.NoError(t, DomainSetup(context.Background(), env.g, DomainSetupOptions{}))

	data, err := os.ReadFile(env.g.MetricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "runway_gcloud_commands_total")
}
