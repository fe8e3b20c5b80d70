package config

import "github.com/imamik/runway/internal/util/naming"

// Config is the persisted deployment configuration of one application.
type Config struct {
	// ProjectID is the Google Cloud project that owns every resource.
	ProjectID string `yaml:"projectId" validate:"required,gcpproject"`

	// Region is where the Cloud Run service, NEG, NAT and connector live.
	Region string `yaml:"region" validate:"required,gcpregion"`

	// ServiceName is the Cloud Run service and the root of all resource names.
	ServiceName string `yaml:"serviceName" validate:"required,max=63"`

	// CustomDomain is served through the load balancer when set.
	CustomDomain string `yaml:"customDomain,omitempty" validate:"omitempty,fqdn"`

	UseLoadBalancer bool `yaml:"useLoadBalancer,omitempty"`
	UseManagedSSL   bool `yaml:"useManagedSSL,omitempty"`

	// UseStaticIP requests a static outbound IP (VPC + Cloud NAT + connector).
	UseStaticIP bool `yaml:"useStaticIP,omitempty"`

	// EnableLoadBalancerMigration opts in to replacing a legacy domain mapping.
	EnableLoadBalancerMigration bool `yaml:"enableLoadBalancerMigration,omitempty"`

	// Network overrides the VPC network used for outbound NAT.
	Network string `yaml:"network,omitempty" validate:"omitempty,max=63"`

	// LoadBalancerResources records what was provisioned. Present only once
	// provisioning completed.
	LoadBalancerResources *ResourceDescriptor `yaml:"loadBalancerResources,omitempty"`
}

// ProvisioningConfig is the immutable input of one provisioning call.
type ProvisioningConfig struct {
	ProjectID           string
	Region              string
	ServiceName         string
	CustomDomain        string
	UseStaticOutboundIP bool
	Network             string
}

// ResourceDescriptor is the persisted record of everything provisioned for one
// service's custom-domain setup.
type ResourceDescriptor struct {
	Names naming.ResourceNameSet `yaml:"names"`

	// IPAddress is the inbound global static IP the domain must point at.
	IPAddress string `yaml:"ipAddress"`

	// NATIPAddress is the outbound IP, set only with a static outbound IP.
	NATIPAddress string `yaml:"natIpAddress,omitempty"`

	// VPCConnectorName is set when a connector was created for egress.
	VPCConnectorName string `yaml:"vpcConnectorName,omitempty"`

	// Network is the VPC network the NAT and connector were attached to.
	Network string `yaml:"network,omitempty"`

	// SharedRouter marks Names.Router as the parent of the NAT only: the NAT
	// is deleted with the descriptor, the router is not. Set on rollback
	// descriptors when the router predates the run.
	SharedRouter bool `yaml:"-"`
}

// ProvisioningConfig derives the provisioning input from the persisted config.
func (c Config) ProvisioningConfig() ProvisioningConfig {
	return ProvisioningConfig{
		ProjectID:           c.ProjectID,
		Region:              c.Region,
		ServiceName:         c.ServiceName,
		CustomDomain:        c.CustomDomain,
		UseStaticOutboundIP: c.UseStaticIP,
		Network:             c.Network,
	}
}

// HasLoadBalancerResources reports whether a complete descriptor is persisted.
func (c Config) HasLoadBalancerResources() bool {
	return c.LoadBalancerResources.IsComplete()
}

// WithLoadBalancer returns a copy of c that records desc and turns on the
// load balancer flags. c itself is not modified.
func (c Config) WithLoadBalancer(desc ResourceDescriptor) Config {
	next := c
	d := desc
	next.LoadBalancerResources = &d
	next.UseLoadBalancer = true
	next.UseManagedSSL = true
	if desc.NATIPAddress != "" {
		next.UseStaticIP = true
	}
	return next
}

// WithoutLoadBalancer returns a copy of c with the descriptor removed.
func (c Config) WithoutLoadBalancer() Config {
	next := c
	next.LoadBalancerResources = nil
	return next
}

// IsComplete reports whether d holds at least the inbound IP and the name set.
func (d *ResourceDescriptor) IsComplete() bool {
	return d != nil && d.IPAddress != "" && d.Names.StaticIP != "" && d.Names.ForwardingRule != ""
}

// HasOutboundIP reports whether the NAT resources belong to this descriptor.
func (d *ResourceDescriptor) HasOutboundIP() bool {
	return d != nil && d.NATIPAddress != ""
}
