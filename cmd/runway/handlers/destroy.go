package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/charmbracelet/huh"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/provisioning/destroy"
)

// DestroyOptions are the flags of 'destroy'.
type DestroyOptions struct {
	// Yes skips the confirmation prompt.
	Yes bool
}

// confirmDestroy asks the operator to confirm. It can be replaced in tests.
var confirmDestroy = func(ctx context.Context, cfg *config.Config) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Destroy the load balancer of %s?", cfg.ServiceName)).
				Description(fmt.Sprintf("%s stops being served at %s.", cfg.CustomDomain, cfg.LoadBalancerResources.IPAddress)).
				Affirmative("Destroy").
				Negative("Cancel").
				Value(&confirmed),
		).Title("Destroy"),
	).RunWithContext(ctx)
	return confirmed, err
}

// Destroy handles the destroy command.
//
// It deletes every resource recorded in runway.yaml in reverse dependency
// order. The record is removed from runway.yaml only when every deletion
// succeeded, so a partial teardown can be retried.
func Destroy(ctx context.Context, g Globals, opts DestroyOptions) error {
	defer writeMetrics(g)

	cfg, path, err := loadConfig(g.ConfigPath)
	if err != nil {
		return err
	}
	if !cfg.HasLoadBalancerResources() {
		fmt.Fprintf(stdout, "No load balancer recorded in %s, nothing to destroy.\n", path)
		return nil
	}

	if !opts.Yes {
		if !isInteractiveTTY() {
			return errors.New("refusing to destroy without confirmation, pass --yes in non-interactive mode")
		}
		confirmed, err := confirmDestroy(ctx, cfg)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(stdout, "Destroy cancelled.")
			return nil
		}
	}

	observer, err := newObserver(g)
	if err != nil {
		return err
	}

	cloud, err := newCloud(cfg)
	if err != nil {
		return err
	}

	log.Printf("Destroying load balancer of %s...", cfg.ServiceName)
	failures := destroy.NewProvisioner(cloud, observer).
		Teardown(ctx, cfg.ProvisioningConfig(), cfg.LoadBalancerResources)
	if failures > 0 {
		return fmt.Errorf("teardown finished with %d error(s), resources stay recorded in %s: rerun 'runway destroy' to retry", failures, path)
	}

	if err := config.Save(cfg.WithoutLoadBalancer(), path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Load balancer of %s destroyed. Remove the DNS record for %s.\n", cfg.ServiceName, cfg.CustomDomain)
	return nil
}
