package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/provisioning/migration"
	"github.com/imamik/runway/internal/util/naming"
)

// MigrateOptions are the flags of 'migrate'.
type MigrateOptions struct {
	// DryRun prints the decision and the resources that would be created.
	DryRun bool
}

// Migrate handles the migrate command.
//
// It moves the custom domain from a legacy Cloud Run domain mapping to the
// load balancer when runway.yaml allows it:
//  1. Detects the domain mapping
//  2. Checks the migration flags
//  3. Provisions the load balancer
//  4. Deletes the domain mapping, rolling back on failure
func Migrate(ctx context.Context, g Globals, opts MigrateOptions) error {
	defer writeMetrics(g)

	cfg, path, err := loadConfig(g.ConfigPath)
	if err != nil {
		return err
	}
	observer, err := newObserver(g)
	if err != nil {
		return err
	}
	cloud, err := newCloud(cfg)
	if err != nil {
		return err
	}
	migrator := migration.New(cloud, observer, stdout)

	if opts.DryRun {
		decision := migrator.DetectMigrationNeeded(ctx, *cfg)
		printMigrationPlan(cfg, decision)
		return nil
	}

	log.Printf("Checking %s for a domain mapping...", cfg.ServiceName)
	next := migrator.MigrateDomainMapping(ctx, *cfg)

	switch {
	case migrator.State() == migration.StateFailed:
		return fmt.Errorf("migration of %s failed, the domain mapping was left in place", cfg.CustomDomain)
	case next.HasLoadBalancerResources() && !cfg.HasLoadBalancerResources():
		if err := config.Save(next, path); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nMigration complete. Load balancer resources saved to %s.\n", path)
	default:
		fmt.Fprintln(stdout, "No migration performed.")
	}
	return nil
}

// printMigrationPlan displays what a migration would do.
func printMigrationPlan(cfg *config.Config, decision migration.MigrationDecision) {
	fmt.Fprintln(stdout, "\n=== Migration Plan (dry-run) ===")
	fmt.Fprintf(stdout, "Service: %s\n", cfg.ServiceName)
	fmt.Fprintf(stdout, "Domain:  %s\n", valueOr(cfg.CustomDomain, "(none)"))
	fmt.Fprintf(stdout, "Decision: needed=%t reason=%s\n", decision.Needed, decision.Reason)

	if !decision.Needed {
		fmt.Fprintln(stdout, "\nNothing to migrate.")
		return
	}
	if !migration.CheckMigrationConfig(*cfg, decision) {
		fmt.Fprintln(stdout, "\nMigration is disabled. Set 'enableLoadBalancerMigration: true' to allow it.")
		return
	}

	names := naming.Resources(cfg.ServiceName)
	fmt.Fprintln(stdout, "\nResources to create:")
	for _, name := range []string{names.StaticIP, names.SSLCert, names.NEG, names.BackendService, names.URLMap, names.TargetProxy, names.ForwardingRule} {
		fmt.Fprintf(stdout, "  %s\n", name)
	}
	if cfg.UseStaticIP {
		fmt.Fprintf(stdout, "  %s, %s, %s, %s\n", names.NATIP, names.Router, names.NAT, names.VPCConnector)
	}
	fmt.Fprintf(stdout, "\nThen the domain mapping for %s is deleted.\n", cfg.CustomDomain)
	fmt.Fprintln(stdout, "\nRun without --dry-run to perform the migration.")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
