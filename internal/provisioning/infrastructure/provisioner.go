package infrastructure

import (
	"context"
	"errors"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
)

// Stage names, in execution order.
const (
	StageValidate       = "validate"
	StageStaticIP       = "static-ip"
	StageOutbound       = "outbound-network"
	StageSSLCertificate = "ssl-certificate"
	StageNEG            = "neg"
	StageBackendService = "backend-service"
	StageURLMap         = "url-map"
	StageHTTPSProxy     = "https-proxy"
	StageForwardingRule = "forwarding-rule"
	StageDescriptor     = "descriptor"
)

// Provisioner builds the load balancer resource chain.
type Provisioner struct {
	cloud    gcloud.API
	observer provisioning.Observer
	timeouts *config.Timeouts
}

// NewProvisioner creates a provisioner. A nil observer logs to the console.
func NewProvisioner(cloud gcloud.API, observer provisioning.Observer) *Provisioner {
	if observer == nil {
		observer = provisioning.NewConsoleObserver()
	}
	return &Provisioner{cloud: cloud, observer: observer, timeouts: config.LoadTimeouts()}
}

// Phases returns the stages that run for cfg.
func (p *Provisioner) Phases(cfg config.ProvisioningConfig) []provisioning.Phase {
	phases := []provisioning.Phase{&staticIPPhase{}}
	if cfg.UseStaticOutboundIP {
		phases = append(phases, &outboundPhase{})
	}
	return append(phases,
		&sslCertificatePhase{},
		&negPhase{},
		&backendServicePhase{},
		&urlMapPhase{},
		&httpsProxyPhase{},
		&forwardingRulePhase{},
		&descriptorPhase{},
	)
}

// Run provisions every stage and returns the accumulated state, including
// the resources this call created. On failure the returned state shows how
// far provisioning got and the error is a *provisioning.ProvisioningError.
func (p *Provisioner) Run(ctx context.Context, cfg config.ProvisioningConfig) (*provisioning.State, error) {
	pctx := provisioning.NewContext(ctx, cfg, p.cloud).WithObserver(p.observer.WithFields(map[string]string{
		"service": cfg.ServiceName,
	}))
	pctx.Timeouts = p.timeouts

	if err := validate(cfg); err != nil {
		return pctx.State, &provisioning.ProvisioningError{Stage: StageValidate, Err: err}
	}

	if err := provisioning.NewPipeline(p.Phases(cfg)...).Run(pctx); err != nil {
		return pctx.State, err
	}
	return pctx.State, nil
}

// Provision creates or reuses the resource chain and returns the descriptor
// to persist.
func (p *Provisioner) Provision(ctx context.Context, cfg config.ProvisioningConfig) (*config.ResourceDescriptor, error) {
	state, err := p.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return state.Descriptor(), nil
}

func validate(cfg config.ProvisioningConfig) error {
	var errs []error
	if cfg.ProjectID == "" {
		errs = append(errs, errors.New("project ID is required"))
	}
	if cfg.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if cfg.ServiceName == "" {
		errs = append(errs, errors.New("service name is required"))
	}
	if cfg.CustomDomain == "" {
		errs = append(errs, errors.New("custom domain is required for a managed certificate"))
	}
	return errors.Join(errs...)
}
