package destroy

import (
	"context"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
)

// Stage is the phase name teardown events are logged under.
const Stage = "destroy"

// Provisioner handles load balancer teardown.
type Provisioner struct {
	cloud    gcloud.API
	observer provisioning.Observer
}

// NewProvisioner creates a new destroy provisioner. A nil observer logs to
// the console.
func NewProvisioner(cloud gcloud.API, observer provisioning.Observer) *Provisioner {
	if observer == nil {
		observer = provisioning.NewConsoleObserver()
	}
	return &Provisioner{cloud: cloud, observer: observer}
}

// Name implements provisioning.Phase.
func (*Provisioner) Name() string { return Stage }

// Provision tears down the resources of the context's state. It implements
// provisioning.Phase so a teardown can be chained after other phases, and
// fails when any deletion failed.
func (*Provisioner) Provision(ctx *provisioning.Context) error {
	p := NewProvisioner(ctx.Cloud, ctx.Observer)
	if n := p.Teardown(ctx, ctx.Config, ctx.State.Descriptor()); n > 0 {
		return &TeardownError{Failures: n}
	}
	return nil
}

// Steps returns the resources desc names, in deletion order. Resources with
// an empty name are left out, as are the NAT resources when desc has no
// outbound IP and the connector when desc records none. A SharedRouter is
// never deleted.
func Steps(cfg config.ProvisioningConfig, desc *config.ResourceDescriptor) []gcloud.Ref {
	if desc == nil {
		return nil
	}
	names := desc.Names
	region := cfg.Region

	var steps []gcloud.Ref
	add := func(ref gcloud.Ref) {
		if ref.Name != "" {
			steps = append(steps, ref)
		}
	}

	add(gcloud.Global(gcloud.KindForwardingRule, names.ForwardingRule))
	add(gcloud.Global(gcloud.KindTargetHTTPSProxy, names.TargetProxy))
	add(gcloud.Global(gcloud.KindURLMap, names.URLMap))
	add(gcloud.Global(gcloud.KindBackendService, names.BackendService))
	add(gcloud.Regional(gcloud.KindNEG, names.NEG, region))
	add(gcloud.Global(gcloud.KindSSLCertificate, names.SSLCert))

	if desc.HasOutboundIP() && names.NAT != "" && names.Router != "" {
		add(gcloud.NAT(names.NAT, names.Router, region))
	}
	if desc.VPCConnectorName != "" {
		add(gcloud.Regional(gcloud.KindVPCConnector, desc.VPCConnectorName, region))
	}
	if desc.HasOutboundIP() {
		if !desc.SharedRouter {
			add(gcloud.Regional(gcloud.KindRouter, names.Router, region))
		}
		add(gcloud.Regional(gcloud.KindAddress, names.NATIP, region))
	}

	add(gcloud.Global(gcloud.KindAddress, names.StaticIP))
	return steps
}

// Teardown deletes every resource desc names and returns how many deletions
// failed. It never stops early and never returns an error.
func (p *Provisioner) Teardown(ctx context.Context, cfg config.ProvisioningConfig, desc *config.ResourceDescriptor) int {
	observer := p.observer.WithFields(map[string]string{"service": cfg.ServiceName})

	steps := Steps(cfg, desc)
	if len(steps) == 0 {
		observer.Printf("[%s] Nothing to delete for %s", Stage, cfg.ServiceName)
		return 0
	}

	observer.Printf("[%s] Deleting %d resources for %s...", Stage, len(steps), cfg.ServiceName)
	failures := 0
	for i, ref := range steps {
		observer.Progress(Stage, i+1, len(steps))
		if err := p.delete(ctx, observer, ref); err != nil {
			failures++
		}
	}

	if failures > 0 {
		observer.Printf("[%s] Teardown of %s finished with %d error(s)", Stage, cfg.ServiceName, failures)
	} else {
		observer.Printf("[%s] Teardown of %s complete", Stage, cfg.ServiceName)
	}
	return failures
}

func (p *Provisioner) delete(ctx context.Context, observer provisioning.Observer, ref gcloud.Ref) error {
	kind := string(ref.Kind)
	provisioning.LogResourceDeleting(observer, Stage, kind, ref.Name)

	deleted, err := gcloud.Delete(ctx, p.cloud, ref)
	switch {
	case err != nil:
		provisioning.LogResourceFailed(observer, Stage, kind, ref.Name, err)
		return err
	case !deleted:
		provisioning.LogResourceSkipped(observer, Stage, kind, ref.Name, "not found")
	default:
		provisioning.LogResourceDeleted(observer, Stage, kind, ref.Name)
	}
	return nil
}
