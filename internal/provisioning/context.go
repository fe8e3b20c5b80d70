package provisioning

import (
	"context"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/util/naming"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	Names naming.ResourceNameSet

	// Inbound results
	IPAddress string

	// Outbound results (only with a static outbound IP)
	Network          string
	NATIPAddress     string
	VPCConnectorName string

	// Created lists the resources this run created, in creation order.
	// Reused resources are not listed.
	Created []gcloud.Ref
}

// NewState creates an empty provisioning state for the given names.
func NewState(names naming.ResourceNameSet) *State {
	return &State{Names: names}
}

// RecordCreated appends a resource created by this run.
func (s *State) RecordCreated(ref gcloud.Ref) {
	s.Created = append(s.Created, ref)
}

// Descriptor assembles the persisted record. It returns nil until the
// inbound IP is known, so a partial state can never be persisted as complete.
func (s *State) Descriptor() *config.ResourceDescriptor {
	if s.IPAddress == "" {
		return nil
	}
	return &config.ResourceDescriptor{
		Names:            s.Names,
		IPAddress:        s.IPAddress,
		NATIPAddress:     s.NATIPAddress,
		VPCConnectorName: s.VPCConnectorName,
		Network:          s.Network,
	}
}

// CreatedDescriptor describes only the resources this run created, for
// rollback. Names of reused resources are left empty, except a reused router
// whose NAT was created: it is named so the NAT can be addressed, and marked
// SharedRouter. Networks and firewall rules are shared and never part of it.
func (s *State) CreatedDescriptor() *config.ResourceDescriptor {
	desc := &config.ResourceDescriptor{Network: s.Network}
	routerCreated := false
	for _, ref := range s.Created {
		switch {
		case ref.Kind == gcloud.KindAddress && ref.Region == "":
			desc.Names.StaticIP = ref.Name
			desc.IPAddress = s.IPAddress
		case ref.Kind == gcloud.KindAddress:
			desc.Names.NATIP = ref.Name
		case ref.Kind == gcloud.KindSSLCertificate:
			desc.Names.SSLCert = ref.Name
		case ref.Kind == gcloud.KindNEG:
			desc.Names.NEG = ref.Name
		case ref.Kind == gcloud.KindBackendService:
			desc.Names.BackendService = ref.Name
		case ref.Kind == gcloud.KindURLMap:
			desc.Names.URLMap = ref.Name
		case ref.Kind == gcloud.KindTargetHTTPSProxy:
			desc.Names.TargetProxy = ref.Name
		case ref.Kind == gcloud.KindForwardingRule:
			desc.Names.ForwardingRule = ref.Name
		case ref.Kind == gcloud.KindRouter:
			desc.Names.Router = ref.Name
			routerCreated = true
		case ref.Kind == gcloud.KindRouterNAT:
			desc.Names.NAT = ref.Name
			desc.Names.Router = ref.Router
		case ref.Kind == gcloud.KindVPCConnector:
			desc.Names.VPCConnector = ref.Name
			desc.VPCConnectorName = ref.Name
		}
	}
	desc.SharedRouter = desc.Names.Router != "" && !routerCreated
	if desc.Names.NATIP != "" || desc.Names.Router != "" || desc.Names.NAT != "" {
		desc.NATIPAddress = s.NATIPAddress
	}
	return desc
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   config.ProvisioningConfig
	State    *State
	Cloud    gcloud.API
	Observer Observer

	// Timeouts bounds each phase run by a Pipeline. Nil means unbounded.
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg config.ProvisioningConfig, cloud gcloud.API) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(naming.Resources(cfg.ServiceName)),
		Cloud:    cloud,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}

// WithObserver replaces the observer.
func (c *Context) WithObserver(o Observer) *Context {
	c.Observer = o
	return c
}

// withStageTimeout returns a copy of c whose context expires after the
// configured stage timeout. The copy shares State with c.
func (c *Context) withStageTimeout() (*Context, context.CancelFunc) {
	if c.Timeouts == nil || c.Timeouts.Stage <= 0 {
		return c, func() {}
	}
	inner, cancel := context.WithTimeout(c.Context, c.Timeouts.Stage)
	scoped := *c
	scoped.Context = inner
	return &scoped, cancel
}
