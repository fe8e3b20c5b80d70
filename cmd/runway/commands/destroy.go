package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/runway/cmd/runway/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command removes the load balancer resources recorded in
// runway.yaml in reverse dependency order.
func Destroy(g *handlers.Globals) *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the load balancer and outbound IP resources",
		Long: `Destroy removes the resources recorded in runway.yaml, in this order:
  - Forwarding rule, HTTPS proxy, URL map
  - Backend service, network endpoint group, SSL certificate
  - Cloud NAT, VPC connector, router and outbound IP (if present)
  - Global static IP

Missing resources are skipped. Failed deletions are counted and the
remaining resources are still deleted. The record is removed from
runway.yaml only when everything was deleted.

Example:
  runway destroy --yes

WARNING: The custom domain stops being served.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
