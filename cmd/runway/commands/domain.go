package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/runway/cmd/runway/handlers"
)

// Domain returns the domain command group.
func Domain(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage the custom domain of the service",
	}
	cmd.AddCommand(DomainSetup(g))
	return cmd
}

// DomainSetup returns the domain setup command.
func DomainSetup(g *handlers.Globals) *cobra.Command {
	var opts handlers.DomainSetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the load balancer for the custom domain",
		Long: `Provision an HTTPS load balancer in front of the Cloud Run service.

This command creates or reuses, in order:
  - Global static IP
  - Static outbound IP, router, Cloud NAT and VPC connector (useStaticIP only)
  - Google-managed SSL certificate
  - Serverless network endpoint group
  - Backend service, URL map, HTTPS proxy and forwarding rule

Existing resources are reused, so the command is safe to rerun after a
failure. When the domain is still served by a Cloud Run domain mapping and
enableLoadBalancerMigration is set, the domain is migrated instead.

Examples:
  runway domain setup
  runway domain setup --wait`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DomainSetup(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait for the managed certificate to become ACTIVE")
	cmd.Flags().DurationVar(&opts.WaitTimeout, "wait-timeout", 0, "How long --wait waits (default: RUNWAY_TIMEOUT_CERTIFICATE or 15m)")

	return cmd
}
