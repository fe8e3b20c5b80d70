package status

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
)

// ResourceType is a kind of resource whose readiness can be inspected.
type ResourceType string

// Inspectable resource types.
const (
	SSLCertificate ResourceType = "ssl-certificate"
	LoadBalancer   ResourceType = "load-balancer"
)

// Active is the status value that means ready.
const Active = "ACTIVE"

// Phase is the name status events are logged under.
const Phase = "status"

// ParseResourceType converts a command-line value to a ResourceType.
func ParseResourceType(s string) (ResourceType, error) {
	switch t := ResourceType(s); t {
	case SSLCertificate, LoadBalancer:
		return t, nil
	}
	return "", fmt.Errorf("unknown resource type %q (expected %s or %s)", s, SSLCertificate, LoadBalancer)
}

// Status is one observation of a resource.
type Status struct {
	Type  ResourceType
	Name  string
	Value string
	Ready bool

	// Detail carries per-domain certificate states or the forwarding rule IP.
	Detail string
}

// Poll is reported to OnPoll after every query.
type Poll struct {
	Attempt int
	Elapsed time.Duration
	Status  Status
	Err     error
}

// Inspector queries resource readiness.
type Inspector struct {
	cloud    gcloud.ResourceReader
	observer provisioning.Observer

	// Interval is the fixed delay between polls.
	Interval time.Duration
	// Now and Sleep are the clock. Sleep returns early with the context's
	// error when it is cancelled.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	// OnPoll, when set, is called after every poll.
	OnPoll func(Poll)
}

// NewInspector creates an inspector polling at the configured status
// interval. A nil observer logs to the console.
func NewInspector(cloud gcloud.ResourceReader, observer provisioning.Observer) *Inspector {
	if observer == nil {
		observer = provisioning.NewConsoleObserver()
	}
	return &Inspector{
		cloud:    cloud,
		observer: observer,
		Interval: config.LoadTimeouts().StatusPollInterval,
		Now:      time.Now,
		Sleep:    sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Check queries the current status of one resource.
func (i *Inspector) Check(ctx context.Context, kind ResourceType, name string) (Status, error) {
	st := Status{Type: kind, Name: name}
	switch kind {
	case SSLCertificate:
		res, err := i.cloud.Describe(ctx, gcloud.Global(gcloud.KindSSLCertificate, name))
		if err != nil {
			return st, err
		}
		if res.Managed != nil {
			st.Value = res.Managed.Status
			st.Detail = domainStatus(res.Managed.DomainStatus)
		}

	case LoadBalancer:
		res, err := i.cloud.Describe(ctx, gcloud.Global(gcloud.KindForwardingRule, name))
		if err != nil {
			return st, err
		}
		st.Value = res.Status
		if st.Value == "" && res.IPAddress != "" {
			st.Value = Active
		}
		st.Detail = res.IPAddress

	default:
		return st, fmt.Errorf("unknown resource type %q", kind)
	}

	st.Ready = st.Value == Active
	return st, nil
}

func domainStatus(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, d := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, d+"="+m[d])
	}
	return strings.Join(parts, ", ")
}

// WaitForReady polls until the resource is ACTIVE and reports true, or
// reports false once maxWait has elapsed or ctx is cancelled. Query errors
// are logged and count as not ready.
func (i *Inspector) WaitForReady(ctx context.Context, kind ResourceType, name string, maxWait time.Duration) bool {
	if _, err := ParseResourceType(string(kind)); err != nil {
		i.observer.Printf("[%s] %v", Phase, err)
		return false
	}

	start := i.Now()
	i.observer.Printf("[%s] Waiting up to %v for %s %s to become %s...", Phase, maxWait, kind, name, Active)

	for attempt := 1; ; attempt++ {
		st, err := i.Check(ctx, kind, name)
		elapsed := i.Now().Sub(start)
		i.report(Poll{Attempt: attempt, Elapsed: elapsed, Status: st, Err: err})

		if err == nil && st.Ready {
			i.observer.Printf("[%s] %s %s is %s after %v", Phase, kind, name, Active, elapsed.Round(time.Second))
			return true
		}

		remaining := maxWait - elapsed
		if remaining <= 0 {
			i.observer.Printf("[%s] %s %s not ready after %v", Phase, kind, name, maxWait)
			return false
		}
		if err := i.Sleep(ctx, min(i.Interval, remaining)); err != nil {
			i.observer.Printf("[%s] Stopped waiting for %s %s: %v", Phase, kind, name, err)
			return false
		}
	}
}

func (i *Inspector) report(p Poll) {
	fields := map[string]string{
		"type":    string(p.Status.Type),
		"attempt": fmt.Sprintf("%d", p.Attempt),
		"elapsed": p.Elapsed.Round(time.Second).String(),
	}
	msg := fmt.Sprintf("status %s", valueOr(p.Status.Value, "UNKNOWN"))
	switch {
	case p.Err != nil && gcloud.IsTransient(p.Err):
		msg = fmt.Sprintf("transient error, retrying: %v", p.Err)
	case p.Err != nil:
		msg = fmt.Sprintf("query failed: %v", p.Err)
	case p.Status.Detail != "":
		fields["detail"] = p.Status.Detail
	}

	i.observer.Event(provisioning.Event{
		Type:     provisioning.EventStatusPoll,
		Phase:    Phase,
		Resource: p.Status.Name,
		Message:  msg,
		Fields:   fields,
	})
	if i.OnPoll != nil {
		i.OnPoll(p)
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
