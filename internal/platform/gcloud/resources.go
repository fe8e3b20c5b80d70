package gcloud

import "strings"

// Kind identifies a gcloud resource type.
type Kind string

// Resource kinds used by the load balancer and outbound networking setup.
const (
	KindAddress          Kind = "address"
	KindNetwork          Kind = "network"
	KindFirewallRule     Kind = "firewall rule"
	KindRouter           Kind = "router"
	KindRouterNAT        Kind = "NAT gateway"
	KindVPCConnector     Kind = "VPC connector"
	KindSSLCertificate   Kind = "SSL certificate"
	KindNEG              Kind = "network endpoint group"
	KindBackendService   Kind = "backend service"
	KindURLMap           Kind = "URL map"
	KindTargetHTTPSProxy Kind = "target HTTPS proxy"
	KindForwardingRule   Kind = "forwarding rule"
)

// Command verbs.
const (
	VerbDescribe   = "describe"
	VerbCreate     = "create"
	VerbDelete     = "delete"
	VerbAddBackend = "add-backend"
)

var verbs = map[string]bool{
	VerbDescribe:   true,
	VerbCreate:     true,
	VerbDelete:     true,
	VerbAddBackend: true,
}

type kindSpec struct {
	group []string
	// global kinds take --global when the reference has no region.
	global bool
}

var kindSpecs = map[Kind]kindSpec{
	KindAddress:          {group: []string{"compute", "addresses"}, global: true},
	KindNetwork:          {group: []string{"compute", "networks"}},
	KindFirewallRule:     {group: []string{"compute", "firewall-rules"}},
	KindRouter:           {group: []string{"compute", "routers"}},
	KindRouterNAT:        {group: []string{"compute", "routers", "nats"}},
	KindVPCConnector:     {group: []string{"compute", "networks", "vpc-access", "connectors"}},
	KindSSLCertificate:   {group: []string{"compute", "ssl-certificates"}, global: true},
	KindNEG:              {group: []string{"compute", "network-endpoint-groups"}},
	KindBackendService:   {group: []string{"compute", "backend-services"}, global: true},
	KindURLMap:           {group: []string{"compute", "url-maps"}, global: true},
	KindTargetHTTPSProxy: {group: []string{"compute", "target-https-proxies"}, global: true},
	KindForwardingRule:   {group: []string{"compute", "forwarding-rules"}, global: true},
}

// Ref names one resource. An empty Region means a global resource.
type Ref struct {
	Kind   Kind
	Name   string
	Region string

	// Router is the parent router of a NAT gateway.
	Router string
}

// Global references a global resource.
func Global(kind Kind, name string) Ref {
	return Ref{Kind: kind, Name: name}
}

// Regional references a resource in region.
func Regional(kind Kind, name, region string) Ref {
	return Ref{Kind: kind, Name: name, Region: region}
}

// NAT references a Cloud NAT gateway on router.
func NAT(name, router, region string) Ref {
	return Ref{Kind: KindRouterNAT, Name: name, Region: region, Router: router}
}

func (r Ref) String() string {
	if r.Region != "" {
		return string(r.Kind) + " " + r.Name + " (" + r.Region + ")"
	}
	return string(r.Kind) + " " + r.Name
}

// args builds "<group> <verb> <name> [scope flags]".
func (r Ref) args(verb string) []string {
	spec := kindSpecs[r.Kind]
	args := make([]string, 0, len(spec.group)+5)
	args = append(args, spec.group...)
	args = append(args, verb, r.Name)
	if r.Router != "" {
		args = append(args, "--router="+r.Router)
	}
	switch {
	case r.Region != "":
		args = append(args, "--region="+r.Region)
	case spec.global:
		args = append(args, "--global")
	}
	return args
}

// Resource is the subset of gcloud's JSON resource representation the
// provisioning core reads.
type Resource struct {
	Name     string `json:"name"`
	SelfLink string `json:"selfLink,omitempty"`

	// Address is set on addresses.
	Address string `json:"address,omitempty"`

	// IPAddress is set on forwarding rules.
	IPAddress string `json:"IPAddress,omitempty"`

	// Status is set on addresses, forwarding rules and networks.
	Status string `json:"status,omitempty"`

	// State is set on VPC connectors.
	State string `json:"state,omitempty"`

	Managed  *ManagedCertificate `json:"managed,omitempty"`
	Backends []Backend           `json:"backends,omitempty"`
}

// ManagedCertificate is the managed section of an SSL certificate.
type ManagedCertificate struct {
	Domains      []string          `json:"domains,omitempty"`
	Status       string            `json:"status,omitempty"`
	DomainStatus map[string]string `json:"domainStatus,omitempty"`
}

// Backend is one backend of a backend service.
type Backend struct {
	Group string `json:"group"`
}

// HasBackendGroup reports whether a backend points at the named group.
// gcloud reports groups as full resource URLs.
func (r *Resource) HasBackendGroup(name string) bool {
	for _, b := range r.Backends {
		if b.Group == name || strings.HasSuffix(b.Group, "/"+name) {
			return true
		}
	}
	return false
}

// DomainMapping is a Cloud Run domain mapping.
type DomainMapping struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Spec struct {
		RouteName string `json:"routeName"`
	} `json:"spec"`
	Status struct {
		ResourceRecords []ResourceRecord `json:"resourceRecords,omitempty"`
	} `json:"status"`
}

// ResourceRecord is a DNS record a domain mapping asks the operator to create.
type ResourceRecord struct {
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`
	RRData string `json:"rrdata"`
}
