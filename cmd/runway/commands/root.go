// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/runway/cmd/runway/handlers"
)

// Root returns the root command for the runway CLI.
//
// The root command owns the flags every subcommand shares: the config file,
// the log format and the metrics file.
func Root() *cobra.Command {
	g := &handlers.Globals{}

	cmd := &cobra.Command{
		Use:           "runway",
		Short:         "HTTPS load balancer and custom domains for Cloud Run",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Path to configuration file (default: runway.yaml in this or a parent directory)")
	cmd.PersistentFlags().StringVar(&g.LogFormat, "log-format", handlers.LogFormatText, "Log format: text or json")
	cmd.PersistentFlags().StringVar(&g.MetricsFile, "metrics-file", "", "Write gcloud command metrics in Prometheus text format to this file")

	cmd.AddCommand(Domain(g))
	cmd.AddCommand(Destroy(g))
	cmd.AddCommand(Migrate(g))
	cmd.AddCommand(Status(g))
	cmd.AddCommand(Version())

	return cmd
}
