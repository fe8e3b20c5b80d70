// Package fake provides an in-memory gcloud simulator for tests.
//
// Gcloud implements gcloud.Executor. It understands the describe, create,
// delete and add-backend commands the provisioning core issues, keeps the
// resulting resources in memory, records every invocation and lets tests
// inject failures per command.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/imamik/runway/internal/platform/gcloud"
)

// Command groups as they appear on the gcloud command line.
const (
	GroupAddresses      = "compute addresses"
	GroupNetworks       = "compute networks"
	GroupFirewallRules  = "compute firewall-rules"
	GroupRouters        = "compute routers"
	GroupNATs           = "compute routers nats"
	GroupConnectors     = "compute networks vpc-access connectors"
	GroupSSLCerts       = "compute ssl-certificates"
	GroupNEGs           = "compute network-endpoint-groups"
	GroupBackends       = "compute backend-services"
	GroupURLMaps        = "compute url-maps"
	GroupProxies        = "compute target-https-proxies"
	GroupForwarding     = "compute forwarding-rules"
	GroupDomainMappings = "beta run domain-mappings"
)

// Call is one recorded invocation.
type Call struct {
	Args  []string
	Group string
	Verb  string
	Name  string
	Flags map[string]string
}

type failure struct {
	verb, group, name string
	err               error
	remaining         int // < 0 means every matching call fails
}

// Gcloud simulates the gcloud CLI in memory.
type Gcloud struct {
	mu        sync.Mutex
	resources map[string]map[string]any
	calls     []Call
	failures  []*failure
	ips       int

	// CertificateStatus is the managed status given to new certificates.
	CertificateStatus string
	// ConnectorState is the state given to new VPC connectors.
	ConnectorState string
}

var _ gcloud.Executor = (*Gcloud)(nil)

// New returns an empty project.
func New() *Gcloud {
	return &Gcloud{
		resources:         make(map[string]map[string]any),
		CertificateStatus: "PROVISIONING",
		ConnectorState:    "READY",
	}
}

// Run executes one simulated command.
func (g *Gcloud) Run(_ context.Context, args ...string) (*gcloud.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	call := parse(args)
	g.calls = append(g.calls, call)

	if err := g.injected(call); err != nil {
		return &gcloud.Result{ExitCode: 1}, err
	}

	switch call.Verb {
	case gcloud.VerbDescribe:
		return g.describe(call)
	case gcloud.VerbCreate:
		return g.create(call)
	case gcloud.VerbDelete:
		return g.delete(call)
	case gcloud.VerbAddBackend:
		return g.addBackend(call)
	}
	return nil, commandError(call, 2, fmt.Sprintf("ERROR: (gcloud) Invalid choice: '%s'.", strings.Join(args, " ")))
}

// FailOn makes every matching call fail with err. Empty verb, group or name
// match anything.
func (g *Gcloud) FailOn(verb, group, name string, err error) {
	g.FailTimes(-1, verb, group, name, err)
}

// FailTimes makes the next n matching calls fail with err.
func (g *Gcloud) FailTimes(n int, verb, group, name string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = append(g.failures, &failure{verb: verb, group: group, name: name, err: err, remaining: n})
}

// Seed stores a resource as if it had been created earlier.
func (g *Gcloud) Seed(group, name string, fields map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	obj := map[string]any{"name": name}
	for k, v := range fields {
		obj[k] = v
	}
	g.resources[key(group, name)] = obj
}

// Exists reports whether a resource is present.
func (g *Gcloud) Exists(group, name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.resources[key(group, name)]
	return ok
}

// Field returns a top-level field of a stored resource.
func (g *Gcloud) Field(group, name, field string) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	if obj, ok := g.resources[key(group, name)]; ok {
		return obj[field]
	}
	return nil
}

// SetField changes a top-level field of a stored resource.
func (g *Gcloud) SetField(group, name, field string, value any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if obj, ok := g.resources[key(group, name)]; ok {
		obj[field] = value
	}
}

// Remove deletes a resource behind the core's back.
func (g *Gcloud) Remove(group, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.resources, key(group, name))
}

// Count returns how many resources are stored.
func (g *Gcloud) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.resources)
}

// Calls returns every recorded call, optionally filtered by verb.
func (g *Gcloud) Calls(verb string) []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Call
	for _, c := range g.calls {
		if verb == "" || c.Verb == verb {
			out = append(out, c)
		}
	}
	return out
}

// Targets returns "<group>/<name>" for every call with verb, in order.
func (g *Gcloud) Targets(verb string) []string {
	calls := g.Calls(verb)
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = key(c.Group, c.Name)
	}
	return out
}

// ResetCalls forgets recorded calls but keeps resources.
func (g *Gcloud) ResetCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

func (g *Gcloud) injected(call Call) error {
	for _, f := range g.failures {
		if f.remaining == 0 {
			continue
		}
		if (f.verb == "" || f.verb == call.Verb) &&
			(f.group == "" || f.group == call.Group) &&
			(f.name == "" || f.name == call.Name) {
			if f.remaining > 0 {
				f.remaining--
			}
			return f.err
		}
	}
	return nil
}

func (g *Gcloud) describe(call Call) (*gcloud.Result, error) {
	obj, ok := g.resources[key(call.Group, call.Name)]
	if !ok {
		return nil, NotFound(call)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return &gcloud.Result{Stdout: string(data)}, nil
}

func (g *Gcloud) create(call Call) (*gcloud.Result, error) {
	k := key(call.Group, call.Name)
	if _, ok := g.resources[k]; ok {
		return nil, AlreadyExists(call)
	}

	obj := map[string]any{"name": call.Name}
	switch call.Group {
	case GroupAddresses:
		g.ips++
		if _, global := call.Flags["global"]; global {
			obj["address"] = fmt.Sprintf("34.120.0.%d", g.ips)
		} else {
			obj["address"] = fmt.Sprintf("35.190.0.%d", g.ips)
		}
		obj["status"] = "RESERVED"
	case GroupSSLCerts:
		obj["managed"] = map[string]any{
			"domains": strings.Split(call.Flags["domains"], ","),
			"status":  g.CertificateStatus,
		}
	case GroupConnectors:
		obj["state"] = g.ConnectorState
	case GroupBackends:
		obj["backends"] = []any{}
	case GroupForwarding:
		ip := call.Flags["address"]
		if addr, ok := g.resources[key(GroupAddresses, ip)]; ok {
			ip, _ = addr["address"].(string)
		}
		obj["IPAddress"] = ip
	}
	for _, f := range []string{"network", "router", "region"} {
		if v, ok := call.Flags[f]; ok {
			obj[f] = v
		}
	}
	g.resources[k] = obj
	return &gcloud.Result{}, nil
}

func (g *Gcloud) delete(call Call) (*gcloud.Result, error) {
	k := key(call.Group, call.Name)
	if _, ok := g.resources[k]; !ok {
		return nil, NotFound(call)
	}
	delete(g.resources, k)
	return &gcloud.Result{}, nil
}

func (g *Gcloud) addBackend(call Call) (*gcloud.Result, error) {
	obj, ok := g.resources[key(call.Group, call.Name)]
	if !ok {
		return nil, NotFound(call)
	}
	group := fmt.Sprintf("https://www.googleapis.com/compute/v1/projects/%s/regions/%s/networkEndpointGroups/%s",
		call.Flags["project"], call.Flags["network-endpoint-group-region"], call.Flags["network-endpoint-group"])
	backends, _ := obj["backends"].([]any)
	for _, b := range backends {
		if m, ok := b.(map[string]any); ok && m["group"] == group {
			return nil, commandError(call, 1, "ERROR: (gcloud.compute.backend-services.add-backend) Backend ["+group+"] in service ["+call.Name+"] already exists")
		}
	}
	obj["backends"] = append(backends, map[string]any{"group": group})
	return &gcloud.Result{}, nil
}

// NotFound builds the error gcloud prints for a missing resource. The
// wording differs per command group.
func NotFound(call Call) error {
	prefix := fmt.Sprintf("ERROR: (gcloud.%s.%s)", dotted(call.Group), call.Verb)
	switch call.Group {
	case GroupNATs:
		return commandError(call, 1, fmt.Sprintf("%s NAT `%s` not found\n", prefix, call.Name))
	case GroupDomainMappings:
		return commandError(call, 1, fmt.Sprintf("%s Cannot find domain mapping for domain name [%s].\n", prefix, call.Name))
	}
	return commandError(call, 1, fmt.Sprintf(
		"%s Could not fetch resource:\n - The resource '%s' was not found\n", prefix, call.Name))
}

// AlreadyExists builds the error gcloud prints when creating a duplicate.
func AlreadyExists(call Call) error {
	return commandError(call, 1, fmt.Sprintf(
		"ERROR: (gcloud.%s.%s) Could not fetch resource:\n - The resource '%s' already exists\n",
		dotted(call.Group), call.Verb, call.Name))
}

// Error returns a generic command failure with stderr.
func Error(stderr string) error {
	return &gcloud.CommandError{ExitCode: 1, Stderr: stderr}
}

func commandError(call Call, exit int, stderr string) error {
	return &gcloud.CommandError{Args: call.Args, ExitCode: exit, Stderr: stderr}
}

func parse(args []string) Call {
	call := Call{Args: args, Flags: map[string]string{}}
	var group []string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "--"):
			k, v, _ := strings.Cut(strings.TrimPrefix(a, "--"), "=")
			call.Flags[k] = v
		case call.Verb == "" && isVerb(a):
			call.Verb = a
		case call.Verb == "":
			group = append(group, a)
		case call.Name == "":
			call.Name = a
		}
	}
	call.Group = strings.Join(group, " ")
	if call.Name == "" {
		call.Name = call.Flags["domain"]
	}
	return call
}

func isVerb(s string) bool {
	switch s {
	case gcloud.VerbDescribe, gcloud.VerbCreate, gcloud.VerbDelete, gcloud.VerbAddBackend:
		return true
	}
	return false
}

func key(group, name string) string {
	return group + "/" + name
}

func dotted(group string) string {
	return strings.ReplaceAll(group, " ", ".")
}
