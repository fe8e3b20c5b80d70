package naming

import (
	"regexp"
	"strings"
)

const (
	// MaxNameLength is the Compute Engine limit for resource names.
	MaxNameLength = 63

	// MaxConnectorNameLength is the Serverless VPC Access connector name limit.
	MaxConnectorNameLength = 25

	// DefaultNetwork is the network tried before creating a per-service one.
	DefaultNetwork = "default"

	fallbackName = "app"
)

// Suffixes appended to the sanitized service name.
const (
	SuffixStaticIP       = "ip"
	SuffixSSLCert        = "ssl-cert"
	SuffixNEG            = "neg"
	SuffixBackendService = "backend"
	SuffixURLMap         = "url-map"
	SuffixTargetProxy    = "https-proxy"
	SuffixForwardingRule = "https-rule"
	SuffixNATIP          = "nat-ip"
	SuffixRouter         = "router"
	SuffixNAT            = "nat"
	SuffixConnector      = "connector"
	SuffixNetwork        = "network"
)

// longestSuffix bounds how long a sanitized base may be so every derived name fits MaxNameLength.
var longestSuffix = len("-" + SuffixTargetProxy)

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	leadingNonAlpha = regexp.MustCompile(`^[^a-z]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// ResourceNameSet is the full set of resource names derived from one service name.
type ResourceNameSet struct {
	StaticIP       string `yaml:"staticIp" json:"staticIp"`
	SSLCert        string `yaml:"sslCert" json:"sslCert"`
	NEG            string `yaml:"neg" json:"neg"`
	BackendService string `yaml:"backendService" json:"backendService"`
	URLMap         string `yaml:"urlMap" json:"urlMap"`
	TargetProxy    string `yaml:"targetProxy" json:"targetProxy"`
	ForwardingRule string `yaml:"forwardingRule" json:"forwardingRule"`
	NATIP          string `yaml:"natIp" json:"natIp"`
	Router         string `yaml:"router" json:"router"`
	NAT            string `yaml:"nat" json:"nat"`
	VPCConnector   string `yaml:"vpcConnector" json:"vpcConnector"`
}

// Resources derives the ResourceNameSet for a logical service name.
func Resources(service string) ResourceNameSet {
	base := truncate(Sanitize(service), MaxNameLength-longestSuffix)
	return ResourceNameSet{
		StaticIP:       join(base, SuffixStaticIP),
		SSLCert:        join(base, SuffixSSLCert),
		NEG:            join(base, SuffixNEG),
		BackendService: join(base, SuffixBackendService),
		URLMap:         join(base, SuffixURLMap),
		TargetProxy:    join(base, SuffixTargetProxy),
		ForwardingRule: join(base, SuffixForwardingRule),
		NATIP:          join(base, SuffixNATIP),
		Router:         join(base, SuffixRouter),
		NAT:            join(base, SuffixNAT),
		VPCConnector:   Connector(service),
	}
}

// Connector returns the VPC connector name, {service}-connector cut to the connector limit.
func Connector(service string) string {
	base := truncate(Sanitize(service), MaxConnectorNameLength-len(SuffixConnector)-1)
	return join(base, SuffixConnector)
}

// ServiceNetwork is the network created when the default network is unavailable.
func ServiceNetwork(service string) string {
	return join(truncate(Sanitize(service), MaxNameLength-len(SuffixNetwork)-1), SuffixNetwork)
}

// FirewallRules returns the internal, SSH and HTTPS rule names for a network.
func FirewallRules(network string) (internal, ssh, https string) {
	base := truncate(Sanitize(network), MaxNameLength-len("-allow-internal"))
	return base + "-allow-internal", base + "-allow-ssh", base + "-allow-https"
}

// Sanitize turns an arbitrary service name into a valid resource name prefix:
// lowercase, invalid characters replaced by hyphens, leading non-letters stripped,
// repeated hyphens collapsed and the result cut to MaxNameLength.
func Sanitize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "-")
	s = leadingNonAlpha.ReplaceAllString(s, "")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	s = truncate(s, MaxNameLength)
	if s == "" {
		return fallbackName
	}
	return s
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		s = s[:limit]
	}
	return strings.TrimRight(s, "-")
}

func join(base, suffix string) string {
	return base + "-" + suffix
}
