package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/provisioning/status"
	"github.com/imamik/runway/internal/ui/tui"
)

// StatusOptions are the flags of 'status'.
type StatusOptions struct {
	// Wait polls until the certificate and the load balancer are ready.
	Wait bool
	// Watch shows the wait in a live terminal UI.
	Watch   bool
	Timeout time.Duration
}

// runWatch runs the live status view. It can be replaced in tests.
var runWatch = func(ctx context.Context, inspector *status.Inspector, m tui.Model) (bool, error) {
	return tui.RunWatch(ctx, inspector, m, tea.WithAltScreen(), tea.WithContext(ctx))
}

// Status handles the status command.
//
// Without flags it prints the current certificate and load balancer status
// once. With --wait or --watch it polls until both are ACTIVE or the timeout
// passes. Not becoming ready in time is reported, not returned as an error.
func Status(ctx context.Context, g Globals, opts StatusOptions) error {
	defer writeMetrics(g)

	cfg, _, err := loadConfig(g.ConfigPath)
	if err != nil {
		return err
	}
	if !cfg.HasLoadBalancerResources() {
		return fmt.Errorf("no load balancer recorded for %s, run 'runway domain setup' first", cfg.ServiceName)
	}
	names := cfg.LoadBalancerResources.Names

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.LoadTimeouts().CertificateWait
	}

	cloud, err := newCloud(cfg)
	if err != nil {
		return err
	}

	if opts.Watch && isInteractiveTTY() {
		// The TUI owns the terminal, so poll events are not logged.
		inspector := status.NewInspector(cloud, provisioning.NewConsoleObserverTo(io.Discard))
		m := tui.NewWatchModel(cfg.ServiceName, cfg.CustomDomain, names.SSLCert, names.ForwardingRule, timeout)
		ready, err := runWatch(ctx, inspector, m)
		if err != nil {
			return err
		}
		printReadiness(cfg, ready)
		return nil
	}

	observer, err := newObserver(g)
	if err != nil {
		return err
	}
	inspector := status.NewInspector(cloud, observer)

	if opts.Wait || opts.Watch {
		deadline := time.Now().Add(timeout)
		ready := inspector.WaitForReady(ctx, status.SSLCertificate, names.SSLCert, timeout) &&
			inspector.WaitForReady(ctx, status.LoadBalancer, names.ForwardingRule, max(time.Until(deadline), 0))
		printReadiness(cfg, ready)
		return nil
	}

	fmt.Fprintf(stdout, "Service: %s\n", cfg.ServiceName)
	fmt.Fprintf(stdout, "Domain:  %s\n", cfg.CustomDomain)
	fmt.Fprintf(stdout, "IP:      %s\n", cfg.LoadBalancerResources.IPAddress)
	if cfg.LoadBalancerResources.HasOutboundIP() {
		fmt.Fprintf(stdout, "Outbound IP: %s\n", cfg.LoadBalancerResources.NATIPAddress)
	}
	fmt.Fprintln(stdout)
	for _, target := range []struct {
		kind status.ResourceType
		name string
	}{
		{status.SSLCertificate, names.SSLCert},
		{status.LoadBalancer, names.ForwardingRule},
	} {
		st, err := inspector.Check(ctx, target.kind, target.name)
		if err != nil {
			fmt.Fprintf(stdout, "  %-16s %-24s error: %v\n", target.kind, target.name, err)
			continue
		}
		value := st.Value
		if value == "" {
			value = "UNKNOWN"
		}
		fmt.Fprintf(stdout, "  %-16s %-24s %s\n", target.kind, target.name, value)
		if st.Detail != "" {
			fmt.Fprintf(stdout, "  %-16s %-24s %s\n", "", "", st.Detail)
		}
	}
	return nil
}

func printReadiness(cfg *config.Config, ready bool) {
	if ready {
		fmt.Fprintf(stdout, "\nhttps://%s is ready.\n", cfg.CustomDomain)
		return
	}
	fmt.Fprintf(stdout, "\n%s is not ready yet. Certificates can take up to 60 minutes after DNS resolves.\n", cfg.CustomDomain)
}
