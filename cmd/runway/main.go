// Package main is the entry point for the runway CLI.
//
// runway puts an HTTPS load balancer with a managed certificate in front of a
// Cloud Run service, optionally with a static outbound IP, by driving the
// gcloud CLI. It migrates custom domains served by legacy Cloud Run domain
// mappings and tears everything down again in reverse dependency order.
//
// Commands: domain setup, destroy, migrate, status, version.
//
// For detailed usage information, run:
//
//	runway --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/runway/cmd/runway/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
