package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/imamik/runway/internal/config"
	"github.com/imamik/runway/internal/platform/gcloud"
	"github.com/imamik/runway/internal/provisioning"
	"github.com/imamik/runway/internal/provisioning/destroy"
	"github.com/imamik/runway/internal/provisioning/infrastructure"
	"github.com/imamik/runway/internal/ui/instructions"
)

// Phase is the name migration events are logged under.
const Phase = "migration"

// ProvisionFunc builds the load balancer and returns the provisioning state,
// including what the call created.
type ProvisionFunc func(ctx context.Context, cfg config.ProvisioningConfig) (*provisioning.State, error)

// TeardownFunc deletes the resources in desc and returns the failure count.
type TeardownFunc func(ctx context.Context, cfg config.ProvisioningConfig, desc *config.ResourceDescriptor) int

// Orchestrator runs the domain mapping to load balancer migration.
type Orchestrator struct {
	mappings gcloud.DomainMappingManager
	observer provisioning.Observer
	out      *instructions.Printer

	// Provision and Teardown default to the provisioning and teardown
	// engines. Tests replace them.
	Provision ProvisionFunc
	Teardown  TeardownFunc

	mu     sync.Mutex
	states []State
}

// New creates an orchestrator that prints operator instructions to out. A
// nil observer logs to the console and a nil out prints to stdout.
func New(cloud gcloud.API, observer provisioning.Observer, out io.Writer) *Orchestrator {
	if observer == nil {
		observer = provisioning.NewConsoleObserver()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Orchestrator{
		mappings:  cloud,
		observer:  observer,
		out:       instructions.New(out),
		Provision: infrastructure.NewProvisioner(cloud, observer).Run,
		Teardown:  destroy.NewProvisioner(cloud, observer).Teardown,
	}
}

// State returns the most recent state, or "" before any run.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.states) == 0 {
		return ""
	}
	return o.states[len(o.states)-1]
}

// History returns every state entered so far, in order.
func (o *Orchestrator) History() []State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]State(nil), o.states...)
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	prev := State("")
	if len(o.states) > 0 {
		prev = o.states[len(o.states)-1]
	}
	o.states = append(o.states, next)
	o.mu.Unlock()

	fields := map[string]string{"state": string(next)}
	if prev != "" {
		fields["from"] = string(prev)
	}
	o.observer.Event(provisioning.Event{
		Type:    provisioning.EventMigrationState,
		Phase:   Phase,
		Message: fmt.Sprintf("migration %s", next),
		Fields:  fields,
	})
}

// DetectMigrationNeeded decides whether cfg's domain is still served by a
// legacy domain mapping. The provider is queried only when a custom domain is
// configured and no load balancer is recorded yet. A failed query means no
// migration.
func (o *Orchestrator) DetectMigrationNeeded(ctx context.Context, cfg config.Config) MigrationDecision {
	if cfg.CustomDomain == "" {
		o.transition(StateNotNeeded)
		return MigrationDecision{Reason: ReasonNoCustomDomain}
	}
	if cfg.HasLoadBalancerResources() {
		o.transition(StateNotNeeded)
		return MigrationDecision{Reason: ReasonAlreadyUsingLoadBalancer}
	}

	_, err := o.mappings.DescribeDomainMapping(ctx, cfg.CustomDomain, cfg.Region)
	switch {
	case err == nil:
		o.observer.Printf("[%s] Found domain mapping for %s", Phase, cfg.CustomDomain)
		o.transition(StateDetected)
		return MigrationDecision{Needed: true, Reason: ReasonHasDomainMapping}
	case gcloud.IsNotFound(err):
		o.transition(StateNotNeeded)
		return MigrationDecision{Reason: ReasonNoExistingDomainMapping}
	default:
		o.observer.Printf("[%s] Could not check domain mapping for %s, skipping migration: %v", Phase, cfg.CustomDomain, err)
		o.transition(StateNotNeeded)
		return MigrationDecision{Reason: ReasonCheckFailed}
	}
}

// PerformMigration provisions the load balancer, then deletes the legacy
// domain mapping. If a step after provisioning fails, the resources created
// by this run are torn down and the result reports the rollback.
func (o *Orchestrator) PerformMigration(ctx context.Context, cfg config.Config) MigrationResult {
	o.transition(StateMigrating)
	pcfg := cfg.ProvisioningConfig()

	o.observer.Printf("[%s] Step 1/3: Inspecting domain mapping for %s...", Phase, cfg.CustomDomain)
	oldTarget := o.legacyTarget(ctx, cfg)

	o.observer.Printf("[%s] Step 2/3: Provisioning load balancer...", Phase)
	state, err := o.Provision(ctx, pcfg)
	if err != nil {
		o.observer.Printf("[%s] Provisioning failed, domain mapping left in place: %v", Phase, err)
		o.transition(StateFailed)
		return MigrationResult{Error: fmt.Errorf("failed to provision load balancer: %w", err)}
	}
	desc := state.Descriptor()
	if desc == nil {
		return o.rollback(ctx, pcfg, state, errors.New("provisioning returned no inbound IP"))
	}

	o.observer.Printf("[%s] Step 3/3: Deleting domain mapping for %s...", Phase, cfg.CustomDomain)
	if err := o.mappings.DeleteDomainMapping(ctx, cfg.CustomDomain, cfg.Region); err != nil {
		if !gcloud.IsNotFound(err) {
			return o.rollback(ctx, pcfg, state, fmt.Errorf("failed to delete domain mapping %s: %w", cfg.CustomDomain, err))
		}
		o.observer.Printf("[%s] Domain mapping for %s already gone", Phase, cfg.CustomDomain)
	}

	o.out.MigrationDNS(cfg.CustomDomain, oldTarget, desc.IPAddress)
	if desc.HasOutboundIP() {
		o.out.OutboundIP(desc.NATIPAddress)
	}

	o.transition(StateSucceeded)
	o.observer.Printf("[%s] %s now served by the load balancer at %s", Phase, cfg.CustomDomain, desc.IPAddress)
	return MigrationResult{Success: true, ResourceDescriptor: desc}
}

// rollback tears down what state records as created by this run.
func (o *Orchestrator) rollback(ctx context.Context, cfg config.ProvisioningConfig, state *provisioning.State, cause error) MigrationResult {
	o.transition(StateRollingBack)
	o.observer.Printf("[%s] Migration failed, rolling back %d created resources: %v", Phase, len(state.Created), cause)

	failures := o.Teardown(ctx, cfg, state.CreatedDescriptor())
	if failures > 0 {
		o.observer.Printf("[%s] Rollback finished with %d error(s), clean up the remaining resources with 'runway destroy'", Phase, failures)
	} else {
		o.observer.Printf("[%s] Rollback complete, domain mapping left in place", Phase)
	}

	o.transition(StateFailed)
	return MigrationResult{
		Error:             cause,
		RollbackPerformed: true,
		RollbackFailures:  failures,
	}
}

// legacyTarget returns the record data the domain mapping asked for. It is
// informational only, so errors are logged and ignored.
func (o *Orchestrator) legacyTarget(ctx context.Context, cfg config.Config) string {
	mapping, err := o.mappings.DescribeDomainMapping(ctx, cfg.CustomDomain, cfg.Region)
	if err != nil {
		o.observer.Printf("[%s] Could not read domain mapping details: %v", Phase, err)
		return ""
	}
	for _, r := range mapping.Status.ResourceRecords {
		if r.RRData != "" {
			o.observer.Printf("[%s] Domain mapping routes %s via %s record %s", Phase, mapping.Spec.RouteName, r.Type, r.RRData)
			return r.RRData
		}
	}
	return ""
}

// MigrateDomainMapping runs detection, the configuration gate and the
// migration. It returns cfg with the load balancer recorded on success and
// cfg unchanged otherwise. Persisting the result is up to the caller.
func (o *Orchestrator) MigrateDomainMapping(ctx context.Context, cfg config.Config) config.Config {
	decision := o.DetectMigrationNeeded(ctx, cfg)
	if !decision.Needed {
		return cfg
	}

	o.transition(StateConfigCheck)
	if !CheckMigrationConfig(cfg, decision) {
		o.guidance(cfg)
		o.transition(StateNotNeeded)
		return cfg
	}

	result := o.PerformMigration(ctx, cfg)
	if !result.Success {
		return cfg
	}
	return cfg.WithLoadBalancer(*result.ResourceDescriptor)
}

func (o *Orchestrator) guidance(cfg config.Config) {
	o.out.Warn("%s is served by a Cloud Run domain mapping.", cfg.CustomDomain)
	o.out.Warn("Set 'enableLoadBalancerMigration: true' in %s and rerun to move it to the load balancer.", config.DefaultConfigFilename)
}
