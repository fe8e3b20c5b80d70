package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/platform/gcloud/fake"
	"github.com/imamik/runway/internal/util/naming"
)

func TestResolveNetwork_FallsBackToServiceNetwork(t *testing.T) {
	t.Parallel()
	p, sim, logs := newTestProvisioner(t)

	desc, err := p.Provision(context.Background(), outboundConfig())

	require.NoError(t, err)
	assert.Equal(t, "web-network", desc.Network)
	assert.True(t, sim.Exists(fake.GroupNetworks, "web-network"))
	assert.Equal(t, "web-network", sim.Field(fake.GroupRouters, "web-router", "network"))
	assert.True(t, sim.Exists(fake.GroupFirewallRules, "web-network-allow-https"))
	assert.Contains(t, logs.String(), "Network default not found, using web-network")
}

func TestResolveNetwork_ServiceNetworkRace(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.Seed(fake.GroupNetworks, "web-network", nil)
	sim.FailTimes(1, gcloud.VerbDescribe, fake.GroupNetworks, "web-network",
		fake.NotFound(fake.Call{Group: fake.GroupNetworks, Verb: gcloud.VerbDescribe, Name: "web-network"}))

	desc, err := p.Provision(context.Background(), outboundConfig())

	require.NoError(t, err)
	assert.Equal(t, "web-network", desc.Network)
}

func TestResolveNetwork_Override(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)
	cfg := outboundConfig()
	cfg.Network = "shared-vpc"

	desc, err := p.Provision(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "shared-vpc", desc.Network)
	assert.True(t, sim.Exists(fake.GroupNetworks, "shared-vpc"))
	assert.Equal(t, "shared-vpc", sim.Field(fake.GroupConnectors, "web-connector", "network"))
}

func TestResolveNetwork_DescribeErrorFails(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.FailOn(gcloud.VerbDescribe, fake.GroupNetworks, naming.DefaultNetwork, fake.Error("Internal error"))

	_, err := p.Provision(context.Background(), outboundConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbound-network stage failed")
	assert.Contains(t, err.Error(), "failed to get network default")
}

func TestFirewallRules(t *testing.T) {
	t.Parallel()

	rules := firewallRules("default")

	require.Len(t, rules, 3)
	assert.Equal(t, "default-allow-internal", rules[0].name)
	assert.Contains(t, rules[0].flags, "--source-ranges=10.128.0.0/9")
	assert.Equal(t, "default-allow-ssh", rules[1].name)
	assert.Contains(t, rules[1].flags, "--allow=tcp:22")
	assert.Equal(t, "default-allow-https", rules[2].name)
	assert.Contains(t, rules[2].flags, "--allow=tcp:443")
}

func TestFirewallRules_OneFailureFailsStage(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)
	sim.FailOn(gcloud.VerbCreate, fake.GroupFirewallRules, "default-allow-ssh", fake.Error("Invalid value for field 'resource.sourceRanges'"))

	state, err := p.Run(context.Background(), outboundConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "default-allow-ssh")
	assert.False(t, sim.Exists(fake.GroupAddresses, "web-nat-ip"), "stage aborts before the NAT IP")
	assert.Empty(t, state.NATIPAddress)
}

func TestEnsureConnector_States(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		seedState   string
		wantDeletes int
		wantCreates int
		wantLog     string
	}{
		{name: "missing is created", seedState: "", wantCreates: 1},
		{name: "ready is reused", seedState: "READY"},
		{name: "error is recreated", seedState: "ERROR", wantDeletes: 1, wantCreates: 1, wantLog: "is in ERROR state, recreating"},
		{name: "creating is left alone", seedState: "CREATING", wantLog: "is CREATING, continuing without waiting"},
		{name: "deleting is left alone", seedState: "DELETING", wantLog: "is DELETING, continuing without waiting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, sim, logs := newTestProvisioner(t)
			sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)
			if tt.seedState != "" {
				sim.Seed(fake.GroupConnectors, "web-connector", map[string]any{"state": tt.seedState})
			}

			state, err := p.Run(context.Background(), outboundConfig())

			require.NoError(t, err)
			assert.Equal(t, "web-connector", state.VPCConnectorName)

			var deletes, creates int
			for _, c := range sim.Calls("") {
				if c.Group != fake.GroupConnectors {
					continue
				}
				switch c.Verb {
				case gcloud.VerbDelete:
					deletes++
				case gcloud.VerbCreate:
					creates++
					assert.Equal(t, connectorRange, c.Flags["range"])
					assert.Contains(t, c.Flags, "async")
				}
			}
			assert.Equal(t, tt.wantDeletes, deletes)
			assert.Equal(t, tt.wantCreates, creates)
			if tt.wantLog != "" {
				assert.Contains(t, logs.String(), tt.wantLog)
			}
			assert.Equal(t, tt.wantCreates == 1,
				containsRef(state.Created, gcloud.Regional(gcloud.KindVPCConnector, "web-connector", "us-central1")))
		})
	}
}

func TestEnsureConnector_NotYetDescribableAfterCreate(t *testing.T) {
	t.Parallel()
	p, sim, logs := newTestProvisioner(t)
	sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)
	missing := fake.NotFound(fake.Call{Verb: gcloud.VerbDescribe, Group: fake.GroupConnectors, Name: "web-connector"})
	sim.FailOn(gcloud.VerbDescribe, fake.GroupConnectors, "web-connector", missing)

	state, err := p.Run(context.Background(), outboundConfig())

	require.NoError(t, err)
	assert.Equal(t, "web-connector", state.VPCConnectorName)
	assert.True(t, sim.Exists(fake.GroupConnectors, "web-connector"))
	assert.Contains(t, logs.String(), "is CREATING, continuing without waiting")
	assert.True(t, containsRef(state.Created, gcloud.Regional(gcloud.KindVPCConnector, "web-connector", "us-central1")))
}

func TestEnsureConnector_ConcurrentCreateIsReused(t *testing.T) {
	t.Parallel()
	p, sim, _ := newTestProvisioner(t)
	sim.Seed(fake.GroupNetworks, naming.DefaultNetwork, nil)
	sim.FailOn(gcloud.VerbCreate, fake.GroupConnectors, "web-connector",
		fake.AlreadyExists(fake.Call{Verb: gcloud.VerbCreate, Group: fake.GroupConnectors, Name: "web-connector"}))

	state, err := p.Run(context.Background(), outboundConfig())

	require.NoError(t, err)
	assert.Equal(t, "web-connector", state.VPCConnectorName)
	assert.False(t, containsRef(state.Created, gcloud.Regional(gcloud.KindVPCConnector, "web-connector", "us-central1")))
}

func containsRef(refs []gcloud.Ref, ref gcloud.Ref) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
