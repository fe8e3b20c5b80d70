package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/platform/gcloud/fake"
)

// provisionedEnv returns an environment where domain setup already ran.
func provisionedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, baseConfig())
	require.NoError(t, DomainSetup(context.Background(), env.g, DomainSetupOptions{}))
	env.sim.ResetCalls()
	env.out.Reset()
	return env
}

func TestDestroy_WithYes(t *testing.T) {
	env := provisionedEnv(t)

	require.NoError(t, Destroy(context.Background(), env.g, DestroyOptions{Yes: true}))

	assert.Zero(t, env.sim.Count())
	assert.Len(t, env.sim.Calls(gcloud.VerbDelete), 7)
	cfg := env.load(t)
	assert.False(t, cfg.HasLoadBalancerResources())
	assert.Contains(t, env.out.String(), "destroyed")
}

func TestDestroy_NonInteractiveRequiresYes(t *testing.T) {
	env := provisionedEnv(t)

	err := Destroy(context.Background(), env.g, DestroyOptions{})

	require.ErrorContains(t, err, "pass --yes")
	assert.Empty(t, env.sim.Calls(gcloud.VerbDelete))
}

func TestDestroy_Confirmation(t *testing.T) {
	tests := []struct {
		name        string
		answer      bool
		answerErr   error
		wantErr     bool
		wantDeletes bool
	}{
		{name: "confirmed", answer: true, wantDeletes: true},
		{name: "cancelled"},
		{name: "prompt aborted", answerErr: errors.New("user aborted"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := provisionedEnv(t)
			isInteractiveTTY = func() bool { return true }
			prompted := false
			confirmDestroy = func(_ context.Context, cfg *config.Config) (bool, error) {
				prompted = true
				assert.Equal(t, "web", cfg.ServiceName)
				return tt.answer, tt.answerErr
			}

			err := Destroy(context.Background(), env.g, DestroyOptions{})

			assert.True(t, prompted)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantDeletes, len(env.sim.Calls(gcloud.VerbDelete)) > 0)
		})
	}
}

func TestDestroy_PartialFailureKeepsRecord(t *testing.T) {
	env := provisionedEnv(t)
	env.sim.FailOn(gcloud.VerbDelete, fake.GroupBackends, "", fake.Error("resource is in use by another resource"))

	err := Destroy(context.Background(), env.g, DestroyOptions{Yes: true})

	require.ErrorContains(t, err, "teardown finished with 1 error(s)")
	assert.True(t, env.load(t).HasLoadBalancerResources())
	assert.Len(t, env.sim.Calls(gcloud.VerbDelete), 7)
}

func TestDestroy_NothingRecorded(t *testing.T) {
	env := newTestEnv(t, baseConfig())

	require.NoError(t, Destroy(context.Background(), env.g, DestroyOptions{Yes: true}))

	assert.Contains(t, env.out.String(), "nothing to destroy")
	assert.Empty(t, env.sim.Calls(""))
}
