package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/runway/cmd/runway/handlers"
)

// Migrate returns the command that moves a custom domain from a Cloud Run
// domain mapping to the load balancer.
//
// Optional flags:
//
//	--dry-run: Show the decision and the resources to create without changes
func Migrate(g *handlers.Globals) *cobra.Command {
	var opts handlers.MigrateOptions

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a domain mapping to the load balancer",
		Long: `Move the custom domain from a Cloud Run domain mapping to the load balancer.

This command:
  1. Checks whether a domain mapping serves the custom domain
  2. Requires enableLoadBalancerMigration (or useLoadBalancer without
     recorded resources) in runway.yaml; it never prompts
  3. Provisions the load balancer
  4. Deletes the domain mapping

If deleting the domain mapping fails, the resources created in step 3 are
deleted again and the domain mapping stays in place.

Examples:
  runway migrate --dry-run
  runway migrate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Migrate(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be migrated without making changes")

	return cmd
}
