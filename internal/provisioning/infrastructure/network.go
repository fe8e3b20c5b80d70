package infrastructure

import (
	"fmt"

	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/util/naming"
)

// Connector states reported by Serverless VPC Access.
const (
	connectorReady    = "READY"
	connectorError    = "ERROR"
	connectorCreating = "CREATING"
)

// connectorRange is the /28 the connector allocates from the network.
const connectorRange = "10.8.0.0/28"

type outboundPhase struct{}

func (*outboundPhase) Name() string { return StageOutbound }

// Provision sets up a static outbound IP: network, firewall rules, NAT IP,
// router, Cloud NAT and the VPC connector Cloud Run egresses through.
func (*outboundPhase) Provision(ctx *provisioning.Context) error {
	network, err := resolveNetwork(ctx)
	if err != nil {
		return err
	}
	ctx.State.Network = network

	if err := ensureFirewallRules(ctx, network); err != nil {
		return err
	}

	names := ctx.State.Names
	region := ctx.Config.Region

	natIP, err := ensure(ctx, StageOutbound, gcloud.Regional(gcloud.KindAddress, names.NATIP, region), address)
	if err != nil {
		return err
	}
	ctx.State.NATIPAddress = natIP.Address

	if _, err := ensure(ctx, StageOutbound, gcloud.Regional(gcloud.KindRouter, names.Router, region), nil,
		"--network="+network); err != nil {
		return err
	}

	if _, err := ensure(ctx, StageOutbound, gcloud.NAT(names.NAT, names.Router, region), nil,
		"--nat-external-ip-pool="+names.NATIP,
		"--nat-all-subnet-ip-ranges",
	); err != nil {
		return err
	}

	return ensureConnector(ctx, network)
}

// resolveNetwork returns the network to attach NAT and the connector to: the
// configured override, else the default network, else a per-service network.
func resolveNetwork(ctx *provisioning.Context) (string, error) {
	if override := ctx.Config.Network; override != "" {
		ctx.Observer.Printf("[%s] Using configured network %s", StageOutbound, override)
		if _, err := ensure(ctx, StageOutbound, gcloud.Global(gcloud.KindNetwork, override), nil, "--subnet-mode=auto"); err != nil {
			return "", err
		}
		return override, nil
	}

	_, err := ctx.Cloud.Describe(ctx, gcloud.Global(gcloud.KindNetwork, naming.DefaultNetwork))
	switch {
	case err == nil:
		provisioning.LogResourceExists(ctx.Observer, StageOutbound, string(gcloud.KindNetwork), naming.DefaultNetwork, "")
		return naming.DefaultNetwork, nil
	case !gcloud.IsNotFound(err):
		return "", fmt.Errorf("failed to get network %s: %w", naming.DefaultNetwork, err)
	}

	fallback := naming.ServiceNetwork(ctx.Config.ServiceName)
	ctx.Observer.Printf("[%s] Network %s not found, using %s", StageOutbound, naming.DefaultNetwork, fallback)
	if _, err := ensure(ctx, StageOutbound, gcloud.Global(gcloud.KindNetwork, fallback), nil, "--subnet-mode=auto"); err != nil {
		return "", err
	}
	return fallback, nil
}

// ensureConnector applies the connector state machine: ERROR is deleted and
// recreated, READY is reused, anything else is logged and left to settle.
func ensureConnector(ctx *provisioning.Context, network string) error {
	name := ctx.State.Names.VPCConnector
	ref := gcloud.Regional(gcloud.KindVPCConnector, name, ctx.Config.Region)
	createFlags := []string{"--network=" + network, "--range=" + connectorRange, "--async"}

	existing, err := ctx.Cloud.Describe(ctx, ref)
	switch {
	case err != nil && !gcloud.IsNotFound(err):
		return fmt.Errorf("failed to get VPC connector %s: %w", name, err)

	case err == nil && existing.State == connectorError:
		ctx.Observer.Printf("[%s] VPC connector %s is in ERROR state, recreating", StageOutbound, name)
		provisioning.LogResourceDeleting(ctx.Observer, StageOutbound, string(ref.Kind), name)
		if _, err := gcloud.Delete(ctx, ctx.Cloud, ref); err != nil {
			return err
		}
		provisioning.LogResourceDeleted(ctx.Observer, StageOutbound, string(ref.Kind), name)
		if _, err := createConnector(ctx, ref, createFlags); err != nil {
			return err
		}

	case err == nil && existing.State == connectorReady:
		provisioning.LogResourceExists(ctx.Observer, StageOutbound, string(ref.Kind), name, existing.State)

	case err == nil:
		provisioning.LogResourceExists(ctx.Observer, StageOutbound, string(ref.Kind), name, existing.State)
		ctx.Observer.Printf("[%s] VPC connector %s is %s, continuing without waiting", StageOutbound, name, existing.State)

	default:
		st, err := createConnector(ctx, ref, createFlags)
		if err != nil {
			return err
		}
		if st != connectorReady {
			ctx.Observer.Printf("[%s] VPC connector %s is %s, continuing without waiting", StageOutbound, name, st)
		}
	}

	ctx.State.VPCConnectorName = name
	return nil
}

// createConnector issues the async create and reports the connector state.
// An async create may not be describable yet; that reads as CREATING.
func createConnector(ctx *provisioning.Context, ref gcloud.Ref, flags []string) (string, error) {
	provisioning.LogResourceCreating(ctx.Observer, StageOutbound, string(ref.Kind), ref.Name)
	err := ctx.Cloud.Create(ctx, ref, flags...)
	created := err == nil
	if err != nil && !gcloud.IsAlreadyExists(err) {
		provisioning.LogResourceFailed(ctx.Observer, StageOutbound, string(ref.Kind), ref.Name, err)
		return "", fmt.Errorf("failed to create VPC connector %s: %w", ref.Name, err)
	}

	st := connectorCreating
	res, err := ctx.Cloud.Describe(ctx, ref)
	switch {
	case err == nil:
		st = res.State
	case !gcloud.IsNotFound(err):
		provisioning.LogResourceFailed(ctx.Observer, StageOutbound, string(ref.Kind), ref.Name, err)
		return "", fmt.Errorf("failed to get VPC connector %s: %w", ref.Name, err)
	}

	if created {
		ctx.State.RecordCreated(ref)
		provisioning.LogResourceCreated(ctx.Observer, StageOutbound, string(ref.Kind), ref.Name, st)
	} else {
		provisioning.LogResourceExists(ctx.Observer, StageOutbound, string(ref.Kind), ref.Name, st)
	}
	return st, nil
}
