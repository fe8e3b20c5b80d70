package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/platform/gcloud/fake"
	"github.com/imamik/runway/internal/provisioning/status"
	"github.com/imamik/runway/internal/ui/tui"
)

func TestStatus_OneShot(t *testing.T) {
	env := provisionedEnv(t)

	require.NoError(t, Status(context.Background(), env.g, StatusOptions{}))

	out := env.out.String()
	assert.Contains(t, out, "IP:      34.120.0.1")
	assert.Regexp(t, `ssl-certificate\s+web-ssl-cert\s+PROVISIONING`, out)
	assert.Regexp(t, `load-balancer\s+web-https-rule\s+ACTIVE`, out)
	assert.Empty(t, env.sim.Calls(gcloud.VerbCreate))
}

func TestStatus_OneShotQueryError(t *testing.T) {
	env := provisionedEnv(t)
	env.sim.Remove(fake.GroupSSLCerts, "web-ssl-cert")

	require.NoError(t, Status(context.Background(), env.g, StatusOptions{}))

	assert.Regexp(t, `ssl-certificate\s+web-ssl-cert\s+error:`, env.out.String())
}

func TestStatus_WaitReady(t *testing.T) {
	env := provisionedEnv(t)
	env.sim.SetField(fake.GroupSSLCerts, "web-ssl-cert", "managed", map[string]any{"status": "ACTIVE"})

	require.NoError(t, Status(context.Background(), env.g, StatusOptions{Wait: true, Timeout: time.Minute}))

	assert.Contains(t, env.out.String(), "https://app.example.com is ready")
}

func TestStatus_WaitTimeoutIsNotAnError(t *testing.T) {
	env := provisionedEnv(t)

	// A budget this short allows a single check.
	require.NoError(t, Status(context.Background(), env.g, StatusOptions{Wait: true, Timeout: time.Nanosecond}))

	assert.Contains(t, env.out.String(), "is not ready yet")
}

func TestStatus_WatchUsesTUI(t *testing.T) {
	env := provisionedEnv(t)
	isInteractiveTTY = func() bool { return true }
	orig := runWatch
	t.Cleanup(func() { runWatch = orig })
	var got tui.Model
	runWatch = func(_ context.Context, _ *status.Inspector, m tui.Model) (bool, error) {
		got = m
		return true, nil
	}

	require.NoError(t, Status(context.Background(), env.g, StatusOptions{Watch: true, Timeout: time.Minute}))

	require.Len(t, got.Targets, 2)
	assert.Equal(t, "web-ssl-cert", got.Targets[0].Name)
	assert.Equal(t, "web-https-rule", got.Targets[1].Name)
	assert.Contains(t, env.out.String(), "is ready")
}

func TestStatus_RequiresResources(t *testing.T) {
	env := newTestEnv(t, baseConfig())

	err := Status(context.Background(), env.g, StatusOptions{})

	require.ErrorContains(t, err, "run 'runway domain setup' first")
}
