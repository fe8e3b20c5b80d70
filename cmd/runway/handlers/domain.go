package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/provisioning/infrastructure"
	"github.com/imamik/runway/internal/provisioning/migration"
	"github.com/imamik/runway/internal/provisioning/status"
	"github.com/imamik/runway/internal/ui/instructions"
)

// DomainSetupOptions are the flags of 'domain setup'.
type DomainSetupOptions struct {
	// Wait blocks until the managed certificate is ACTIVE or WaitTimeout passes.
	Wait        bool
	WaitTimeout time.Duration
}

// errLegacyMapping stops setup while a domain mapping still serves the domain.
var errLegacyMapping = errors.New("custom domain is served by a Cloud Run domain mapping")

// DomainSetup handles the domain setup command.
//
// It provisions the load balancer for the configured custom domain, or
// migrates the domain off a legacy domain mapping when one exists and
// migration is enabled. The resulting descriptor is saved to runway.yaml and
// DNS instructions are printed.
func DomainSetup(ctx context.Context, g Globals, opts DomainSetupOptions) error {
	defer writeMetrics(g)

	cfg, path, err := loadConfig(g.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.CustomDomain == "" {
		return fmt.Errorf("customDomain must be set in %s to set up a domain", path)
	}

	observer, err := newObserver(g)
	if err != nil {
		return err
	}
	cloud, err := newCloud(cfg)
	if err != nil {
		return err
	}
	out := instructions.New(stdout)

	var next config.Config
	migrator := migration.New(cloud, observer, stdout)
	decision := migrator.DetectMigrationNeeded(ctx, *cfg)
	if decision.Needed {
		if !migration.CheckMigrationConfig(*cfg, decision) {
			out.Warn("%s is served by a Cloud Run domain mapping.", cfg.CustomDomain)
			out.Warn("Set 'enableLoadBalancerMigration: true' in %s to move it to the load balancer.", path)
			return fmt.Errorf("%w: %s", errLegacyMapping, cfg.CustomDomain)
		}
		result := migrator.PerformMigration(ctx, *cfg)
		if !result.Success {
			if result.RollbackPerformed {
				return fmt.Errorf("migration failed and was rolled back: %w", result.Error)
			}
			return fmt.Errorf("migration failed: %w", result.Error)
		}
		next = cfg.WithLoadBalancer(*result.ResourceDescriptor)
	} else {
		if cfg.HasLoadBalancerResources() {
			log.Printf("Load balancer recorded for %s, re-verifying resources...", cfg.ServiceName)
		}
		desc, err := infrastructure.NewProvisioner(cloud, observer).Provision(ctx, cfg.ProvisioningConfig())
		if err != nil {
			return fmt.Errorf("domain setup failed: %w\nRerun to resume, or run 'runway destroy' to remove what was created", err)
		}
		next = cfg.WithLoadBalancer(*desc)

		out.DNS(cfg.CustomDomain, desc.IPAddress)
		if desc.HasOutboundIP() {
			out.OutboundIP(desc.NATIPAddress)
		}
	}

	if err := config.Save(next, path); err != nil {
		return err
	}
	log.Printf("Saved load balancer resources to %s", path)

	if opts.Wait {
		waitForCertificate(ctx, cloud, observer, next, opts.WaitTimeout)
	}
	return nil
}

func waitForCertificate(ctx context.Context, cloud gcloud.ResourceReader, observer provisioning.Observer, cfg config.Config, timeout time.Duration) {
	if timeout <= 0 {
		timeout = config.LoadTimeouts().CertificateWait
	}
	inspector := status.NewInspector(cloud, observer)
	name := cfg.LoadBalancerResources.Names.SSLCert
	if inspector.WaitForReady(ctx, status.SSLCertificate, name, timeout) {
		fmt.Fprintf(stdout, "\nCertificate %s is ACTIVE. https://%s is live.\n", name, cfg.CustomDomain)
		return
	}
	fmt.Fprintf(stdout, "\nCertificate %s is not active yet. Check again with 'runway status --wait'.\n", name)
}
