package infrastructure

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/platform/gcloud/fake"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/util/naming"
)

func baseConfig() config.ProvisioningConfig {
	return config.ProvisioningConfig{
		ProjectID:    "my-project",
		Region:       "us-central1",
		ServiceName:  "web",
		CustomDomain: "app.example.com",
	}
}

func outboundConfig() config.ProvisioningConfig {
	cfg := baseConfig()
	cfg.UseStaticOutboundIP = true
	return cfg
}

func newTestProvisioner(t *testing.T) (*Provisioner, *fake.Gcloud, *bytes.Buffer) {
	t.Helper()
	sim := fake.New()
	var logs bytes.Buffer
	p := NewProvisioner(gcloud.NewClient(sim, "my-project"), provisioning.NewConsoleObserverTo(&logs))
	return p, sim, &logs
}

var coreCreates = []string{
	fake.GroupAddresses + "/web-ip",
	fake.GroupSSLCerts + "/web-ssl-cert",
	fake.GroupNEGs + "/web-neg",
	fake.GroupBackends + "/web-backend",
	fake.GroupURLMaps + "/web-url-map",
	fake.GroupProxies + "/web-https-proxy",
	fake.GroupForwarding + "/web-https-rule",
}

func TestProvision_FreshCustomDomain(t *testing.T) {
	t.Parallel()
	p, sim, logs := newTestProvisioner(t)

	desc, err := p.Provision(context.Background(), baseConfig())

	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "34.120.0.1", desc.IPAddress)
	assert.Equal(t, naming.Resources("web"), desc.Names)
	assert.True(t, desc.IsComplete())
	assert.Empty(t, desc.NATIPAddress)
	assert.Empty(t, desc.VPCConnectorName)
	assert.Empty(t, desc.Network)

	assert.Equal(t, coreCreates, sim.Targets(gcloud.VerbCreate))
	assert.Len(t, sim.Calls(gcloud.VerbAddBackend), 1)
	assert.Equal(t, "34.120.0.1", sim.Field(fake.GroupForwarding, "web-https-rule", "IPAddress"))
	assert.Contains(t, logs.String(), "resource.created [static-ip] resource=web-ip")
}

func TestProvision_Idempotent(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.ProvisioningConfig{baseConfig(), outboundConfig()} {
		p, sim, logs := newTestProvisioner(t)
		sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)

		first, err := p.Provision(context.Background(), cfg)
		require.NoError(t, err)
		sim.ResetCalls()
		logs.Reset()

		second, err := p.Provision(context.Background(), cfg)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Empty(t, sim.Calls(gcloud.VerbCreate), "second run must not create anything")
		assert.Empty(t, sim.Calls(gcloud.VerbAddBackend))
		assert.Empty(t, sim.Calls(gcloud.VerbDelete))
		assert.NotContains(t, logs.String(), "resource.created")
	}
}

func TestProvision_NEGAttachment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(sim *fake.Gcloud)
		wantAdd int
		wantLog string
	}{
		{
			name:    "attached NEG is left alone",
			prepare: func(*fake.Gcloud) {},
			wantLog: "NEG web-neg already attached to web-backend",
		},
		{
			name: "detached NEG is attached again",
			prepare: func(sim *fake.Gcloud) {
				sim.SetField(fake.GroupBackends, "web-backend", "backends", []any{})
			},
			wantAdd: 1,
			wantLog: "Attaching NEG web-neg to web-backend",
		},
		{
			name: "attach racing another run is success",
			prepare: func(sim *fake.Gcloud) {
				sim.SetField(fake.GroupBackends, "web-backend", "backends", []any{})
				sim.FailOn(gcloud.VerbAddBackend, fake.GroupBackends, "web-backend", fake.Error(
					"ERROR: (gcloud.compute.backend-services.add-backend) Backend [web-neg] in service [web-backend] already exists"))
			},
			wantAdd: 1,
			wantLog: "Attaching NEG web-neg to web-backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, sim, logs := newTestProvisioner(t)
			_, err := p.Provision(context.Background(), baseConfig())
			require.NoError(t, err)
			sim.ResetCalls()
			logs.Reset()
			tt.prepare(sim)

			_, err = p.Provision(context.Background(), baseConfig())

			require.NoError(t, err)
			assert.Len(t, sim.Calls(gcloud.VerbAddBackend), tt.wantAdd)
			assert.Empty(t, sim.Calls(gcloud.VerbCreate))
			assert.Contains(t, logs.String(), tt.wantLog)
		})
	}
}

func TestProvision_AddBackendFailurePropagates(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.FailOn(gcloud.VerbAddBackend, fake.GroupBackends, "", fake.Error(
		"ERROR: (gcloud.compute.backend-services.add-backend) Permission denied"))

	_, err := p.Provision(context.Background(), baseConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to attach NEG web-neg to backend service web-backend")
}

func TestProvision_OutboundIP(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)

	state, err := p.Run(context.Background(), outboundConfig())

	require.NoError(t, err)
	desc := state.Descriptor()
	assert.Equal(t, "34.120.0.1", desc.IPAddress)
	assert.Equal(t, "35.190.0.2", desc.NATIPAddress)
	assert.Equal(t, "web-connector", desc.VPCConnectorName)
	assert.Equal(t, naming.DefaultNetwork, desc.Network)

	for _, rule := range []string{"default-allow-internal", "default-allow-ssh", "default-allow-https"} {
		assert.True(t, sim.Exists(fake.GroupFirewallRules, rule), rule)
		assert.Equal(t, "default", sim.Field(fake.GroupFirewallRules, rule, "network"))
	}
	assert.Equal(t, "default", sim.Field(fake.GroupRouters, "web-router", "network"))
	assert.Equal(t, "web-router", sim.Field(fake.GroupNATs, "web-nat", "router"))

	creates := sim.Targets(gcloud.VerbCreate)
	// Firewall rules run concurrently; everything else is ordered.
	assert.Equal(t, fake.GroupAddresses+"/web-ip", creates[0])
	assert.ElementsMatch(t, []string{
		fake.GroupFirewallRules + "/default-allow-internal",
		fake.GroupFirewallRules + "/default-allow-ssh",
		fake.GroupFirewallRules + "/default-allow-https",
	}, creates[1:4])
	assert.Equal(t, []string{
		fake.GroupAddresses + "/web-nat-ip",
		fake.GroupRouters + "/web-router",
		fake.GroupNATs + "/web-nat",
		fake.GroupConnectors + "/web-connector",
	}, creates[4:8])
	assert.Equal(t, coreCreates[1:], creates[8:])

	natCreate := sim.Calls(gcloud.VerbCreate)[6]
	assert.Equal(t, "web-nat-ip", natCreate.Flags["nat-external-ip-pool"])
	assert.Contains(t, natCreate.Flags, "nat-all-subnet-ip-ranges")
}

func TestProvision_StageFailureNamesStage(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.FailOn(gcloud.VerbCreate, fake.GroupURLMaps, "", fake.Error("Invalid value for field 'resource.defaultService'"))

	state, err := p.Run(context.Background(), baseConfig())

	require.Error(t, err)
	var perr *provisioning.ProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageURLMap, perr.Stage)
	assert.Contains(t, err.Error(), "failed to create URL map web-url-map")

	assert.False(t, sim.Exists(fake.GroupProxies, "web-https-proxy"), "later stages must not run")
	assert.Len(t, state.Created, 4)

	desc, err := p.Provision(context.Background(), baseConfig())
	require.Error(t, err)
	assert.Nil(t, desc, "a failed run returns no descriptor")
}

func TestProvision_DescribeErrorPropagates(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.FailOn(gcloud.VerbDescribe, fake.GroupAddresses, "web-ip", fake.Error("PERMISSION_DENIED: Required 'compute.addresses.get' permission"))

	_, err := p.Provision(context.Background(), baseConfig())

	var perr *provisioning.ProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageStaticIP, perr.Stage)
	assert.Empty(t, sim.Calls(gcloud.VerbCreate))
}

func TestProvision_AlreadyExistsRaceIsSuccess(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	// Another invocation created the NEG between our describe and create.
	sim.Seed(fake.GroupNEGs, "web-neg", nil)
	sim.FailTimes(1, gcloud.VerbDescribe, fake.GroupNEGs, "web-neg",
		fake.NotFound(fake.Call{Group: fake.GroupNEGs, Verb: gcloud.VerbDescribe, Name: "web-neg"}))

	state, err := p.Run(context.Background(), baseConfig())

	require.NoError(t, err)
	assert.NotContains(t, state.Created, gcloud.Regional(gcloud.KindNEG, "web-neg", "us-central1"),
		"a resource created by someone else is not ours to roll back")
	assert.Len(t, state.Created, 6)
}

func TestProvision_Validation(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	cfg := baseConfig()
	cfg.CustomDomain = ""

	_, err := p.Provision(context.Background(), cfg)

	var perr *provisioning.ProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageValidate, perr.Stage)
	assert.Contains(t, err.Error(), "custom domain is required")
	assert.Empty(t, sim.Calls(""))
}

func TestProvisioner_Phases(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestProvisioner(t)

	names := func(cfg config.ProvisioningConfig) []string {
		var out []string
		for _, ph := range p.Phases(cfg) {
			out = append(out, ph.Name())
		}
		return out
	}

	assert.Equal(t, []string{
		StageStaticIP, StageSSLCertificate, StageNEG, StageBackendService,
		StageURLMap, StageHTTPSProxy, StageForwardingRule, StageDescriptor,
	}, names(baseConfig()))
	assert.Equal(t, StageOutbound, names(outboundConfig())[1])
}
