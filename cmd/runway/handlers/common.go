// Package handlers implements the runway commands: it loads runway.yaml,
// builds the gcloud client, calls the provisioning packages and persists the
// resulting configuration.
package handlers

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/util/prerequisites"
)

// Log formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Globals are the flags shared by every command.
type Globals struct {
	ConfigPath  string
	LogFormat   string
	MetricsFile string
}

// Factory function variables - can be replaced in tests.
var (
	// newExecutor builds the gcloud executor with retries for transient failures.
	newExecutor = func(t *config.Timeouts) gcloud.Executor {
		return gcloud.NewRetryingExecutor(
			gcloud.NewCLIExecutor(config.GcloudBinary(), t.Command),
			gcloud.RetryOptions{
				MaxRetries:  t.RetryMaxAttempts,
				BaseDelay:   t.RetryInitialDelay,
				MaxDelay:    t.RetryMaxDelay,
				Exponential: true,
				Jitter:      t.RetryJitter,
			},
		)
	}

	// isInteractiveTTY reports whether stdout is a terminal.
	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	// checkTools fails when the gcloud binary is not installed.
	checkTools = func() error {
		return prerequisites.Check(prerequisites.DefaultTools(config.GcloudBinary())).Error()
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadConfig resolves and loads runway.yaml. It returns the path it loaded so
// the caller can save back to the same file.
func loadConfig(configPath string) (*config.Config, string, error) {
	path, err := config.ResolvePath(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("no config file found: %w\nCreate %s or pass --config", err, config.DefaultConfigFilename)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	log.Printf("Using config: %s", path)
	return cfg, path, nil
}

func newCloud(cfg *config.Config) (gcloud.API, error) {
	if err := checkTools(); err != nil {
		return nil, err
	}
	return gcloud.NewClient(newExecutor(config.LoadTimeouts()), cfg.ProjectID), nil
}

// newObserver returns the observer for --log-format.
func newObserver(g Globals) (provisioning.Observer, error) {
	switch g.LogFormat {
	case "", LogFormatText:
		return provisioning.NewConsoleObserverTo(stderr), nil
	case LogFormatJSON:
		return provisioning.NewJSONObserver(stderr), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected %s or %s)", g.LogFormat, LogFormatText, LogFormatJSON)
	}
}

// writeMetrics writes the gcloud command metrics when --metrics-file is set.
// Failing to write them never fails the command.
func writeMetrics(g Globals) {
	if g.MetricsFile == "" {
		return
	}
	if err := gcloud.WriteMetrics(g.MetricsFile); err != nil {
		log.Printf("Warning: failed to write metrics to %s: %v", g.MetricsFile, err)
	}
}
