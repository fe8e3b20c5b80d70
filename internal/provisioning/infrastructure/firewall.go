package infrastructure

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/util/naming"
)

// Source ranges of the firewall rules.
const (
	internalSourceRange = "10.128.0.0/9"
	iapSourceRange      = "35.235.240.0/20"
	anySourceRange      = "0.0.0.0/0"
)

type firewallRule struct {
	name  string
	flags []string
}

func firewallRules(network string) []firewallRule {
	internal, ssh, https := naming.FirewallRules(network)
	return []firewallRule{
		{name: internal, flags: []string{"--allow=tcp,udp,icmp", "--source-ranges=" + internalSourceRange}},
		{name: ssh, flags: []string{"--allow=tcp:22", "--source-ranges=" + iapSourceRange}},
		{name: https, flags: []string{"--allow=tcp:443", "--source-ranges=" + anySourceRange}},
	}
}

// ensureFirewallRules ensures the internal, SSH and HTTPS rules concurrently.
// The rules are independent, so their order is not observable.
func ensureFirewallRules(ctx *provisioning.Context, network string) error {
	ctx.Observer.Printf("[%s] Reconciling firewall rules on network %s...", StageOutbound, network)

	rules := firewallRules(network)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, rule := range rules {
		g.Go(func() error {
			ref := gcloud.Global(gcloud.KindFirewallRule, rule.name)
			flags := append([]string{"--network=" + network, "--direction=INGRESS"}, rule.flags...)

			sub := *ctx
			sub.Context = gctx
			sub.State = &provisioning.State{}
			if _, err := ensure(&sub, StageOutbound, ref, nil, flags...); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, created := range sub.State.Created {
				ctx.State.RecordCreated(created)
			}
			return nil
		})
	}
	return g.Wait()
}
