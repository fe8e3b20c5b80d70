package infrastructure

import (
	"fmt"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
)

type staticIPPhase struct{}

func (*staticIPPhase) Name() string { return StageStaticIP }

// Provision reserves the global inbound IP the domain will point at.
func (*staticIPPhase) Provision(ctx *provisioning.Context) error {
	ref := gcloud.Global(gcloud.KindAddress, ctx.State.Names.StaticIP)
	ctx.Observer.Printf("[%s] Reconciling static IP %s...", StageStaticIP, ref.Name)

	res, err := ensure(ctx, StageStaticIP, ref, address, "--ip-version=IPV4")
	if err != nil {
		return err
	}
	if res.Address == "" {
		return fmt.Errorf("static IP %s has no address", ref.Name)
	}
	ctx.State.IPAddress = res.Address
	return nil
}
