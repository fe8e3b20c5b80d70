package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/runway/cmd/runway/handlers"
)

// Status returns the status command.
func Status(g *handlers.Globals) *cobra.Command {
	var opts handlers.StatusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show certificate and load balancer readiness",
		Long: `Show the status of the managed SSL certificate and the forwarding rule.

With --wait the command polls every RUNWAY_STATUS_POLL_INTERVAL (30s) until
both are ACTIVE or --timeout passes. --watch shows the same wait in a live
terminal view.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait until the certificate and load balancer are ready")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Wait with a live terminal view")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Maximum wait (default: RUNWAY_TIMEOUT_CERTIFICATE or 15m)")
	cmd.MarkFlagsMutuallyExclusive("wait", "watch")

	return cmd
}
