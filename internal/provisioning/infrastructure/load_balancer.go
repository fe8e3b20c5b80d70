package infrastructure

import (
	"fmt"
	"slices"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
)

type sslCertificatePhase struct{}

func (*sslCertificatePhase) Name() string { return StageSSLCertificate }

// Provision ensures the Google-managed certificate for the custom domain.
// Certificates are immutable, so a reused certificate for other domains is
// only reported.
func (*sslCertificatePhase) Provision(ctx *provisioning.Context) error {
	domain := ctx.Config.CustomDomain
	ref := gcloud.Global(gcloud.KindSSLCertificate, ctx.State.Names.SSLCert)
	ctx.Observer.Printf("[%s] Reconciling managed certificate %s for %s...", StageSSLCertificate, ref.Name, domain)

	res, err := ensure(ctx, StageSSLCertificate, ref, certificateStatus, "--domains="+domain)
	if err != nil {
		return err
	}
	if res.Managed != nil && len(res.Managed.Domains) > 0 && !slices.Contains(res.Managed.Domains, domain) {
		ctx.Observer.Printf("[%s] Warning: certificate %s covers %v, not %s", StageSSLCertificate, ref.Name, res.Managed.Domains, domain)
	}
	return nil
}

func certificateStatus(r *gcloud.Resource) string {
	if r.Managed == nil {
		return ""
	}
	return r.Managed.Status
}

type negPhase struct{}

func (*negPhase) Name() string { return StageNEG }

// Provision ensures the serverless NEG pointing at the Cloud Run service.
func (*negPhase) Provision(ctx *provisioning.Context) error {
	ref := gcloud.Regional(gcloud.KindNEG, ctx.State.Names.NEG, ctx.Config.Region)
	_, err := ensure(ctx, StageNEG, ref, nil,
		"--network-endpoint-type=serverless",
		"--cloud-run-service="+ctx.Config.ServiceName,
	)
	return err
}

type backendServicePhase struct{}

func (*backendServicePhase) Name() string { return StageBackendService }

// Provision ensures the backend service and that the NEG is one of its
// backends. Attachment is checked on every run, so a NEG recreated out of
// band is attached again.
func (*backendServicePhase) Provision(ctx *provisioning.Context) error {
	names := ctx.State.Names
	backend := gcloud.Global(gcloud.KindBackendService, names.BackendService)
	neg := gcloud.Regional(gcloud.KindNEG, names.NEG, ctx.Config.Region)

	res, err := ensure(ctx, StageBackendService, backend, nil,
		"--load-balancing-scheme=EXTERNAL_MANAGED",
		"--protocol=HTTP",
	)
	if err != nil {
		return err
	}

	if res.HasBackendGroup(neg.Name) {
		ctx.Observer.Printf("[%s] NEG %s already attached to %s", StageBackendService, neg.Name, backend.Name)
		return nil
	}

	ctx.Observer.Printf("[%s] Attaching NEG %s to %s", StageBackendService, neg.Name, backend.Name)
	if err := ctx.Cloud.AddBackend(ctx, backend, neg); err != nil && !gcloud.IsAlreadyExists(err) {
		return fmt.Errorf("failed to attach NEG %s to backend service %s: %w", neg.Name, backend.Name, err)
	}
	return nil
}

type urlMapPhase struct{}

func (*urlMapPhase) Name() string { return StageURLMap }

// Provision ensures the URL map routing everything to the backend service.
func (*urlMapPhase) Provision(ctx *provisioning.Context) error {
	names := ctx.State.Names
	_, err := ensure(ctx, StageURLMap, gcloud.Global(gcloud.KindURLMap, names.URLMap), nil,
		"--default-service="+names.BackendService,
	)
	return err
}

type httpsProxyPhase struct{}

func (*httpsProxyPhase) Name() string { return StageHTTPSProxy }

// Provision ensures the HTTPS proxy terminating TLS with the certificate.
func (*httpsProxyPhase) Provision(ctx *provisioning.Context) error {
	names := ctx.State.Names
	_, err := ensure(ctx, StageHTTPSProxy, gcloud.Global(gcloud.KindTargetHTTPSProxy, names.TargetProxy), nil,
		"--url-map="+names.URLMap,
		"--ssl-certificates="+names.SSLCert,
	)
	return err
}

type forwardingRulePhase struct{}

func (*forwardingRulePhase) Name() string { return StageForwardingRule }

// Provision binds the static IP on port 443 to the HTTPS proxy.
func (*forwardingRulePhase) Provision(ctx *provisioning.Context) error {
	names := ctx.State.Names
	_, err := ensure(ctx, StageForwardingRule, gcloud.Global(gcloud.KindForwardingRule, names.ForwardingRule),
		func(r *gcloud.Resource) string { return r.IPAddress },
		"--load-balancing-scheme=EXTERNAL_MANAGED",
		"--address="+names.StaticIP,
		"--target-https-proxy="+names.TargetProxy,
		"--ports=443",
	)
	return err
}

type descriptorPhase struct{}

func (*descriptorPhase) Name() string { return StageDescriptor }

// Provision refreshes the outbound IP, which may have been reserved by an
// earlier run, before the descriptor is assembled.
func (*descriptorPhase) Provision(ctx *provisioning.Context) error {
	if !ctx.Config.UseStaticOutboundIP {
		return nil
	}
	ref := gcloud.Regional(gcloud.KindAddress, ctx.State.Names.NATIP, ctx.Config.Region)
	res, err := ctx.Cloud.Describe(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to read outbound IP %s: %w", ref.Name, err)
	}
	if res.Address == "" {
		return fmt.Errorf("outbound IP %s has no address", ref.Name)
	}
	ctx.State.NATIPAddress = res.Address
	return nil
}
