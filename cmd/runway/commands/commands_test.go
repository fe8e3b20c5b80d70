package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "runway", cmd.Use)
	assert.Equal(t, "HTTPS load balancer and custom domains for Cloud Run", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range []string{"domain", "destroy", "migrate", "status", "version"} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), 5)
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)
	assert.Empty(t, config.DefValue)

	logFormat := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, logFormat)
	assert.Equal(t, "text", logFormat.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("metrics-file"))
}

func TestDomainSetup_Flags(t *testing.T) {
	cmd, _, err := Root().Find([]string{"domain", "setup"})
	require.NoError(t, err)
	assert.Equal(t, "setup", cmd.Name())

	require.NoError(t, cmd.ParseFlags([]string{"--wait", "--wait-timeout=5m"}))
	wait, err := cmd.Flags().GetBool("wait")
	require.NoError(t, err)
	assert.True(t, wait)
	timeout, err := cmd.Flags().GetDuration("wait-timeout")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, timeout)
}

func TestDestroy_Flags(t *testing.T) {
	cmd := Destroy(nil)

	yes := cmd.Flags().Lookup("yes")
	require.NotNil(t, yes)
	assert.Equal(t, "y", yes.Shorthand)
	assert.Equal(t, "false", yes.DefValue)
}

func TestMigrate_Flags(t *testing.T) {
	cmd := Migrate(nil)

	dryRun := cmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)
}

func TestStatus_WaitAndWatchExclusive(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"status", "--wait", "--watch"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "runway 1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
	assert.Contains(t, out.String(), "built:  2026-01-01")
}
