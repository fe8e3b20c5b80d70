package migration

import "github.com/imamik/runway/internal/config"

// State is a step of the migration state machine.
type State string

// Migration states. A run moves NotNeeded or Detected, ConfigCheck,
// Migrating, then Succeeded or RollingBack and Failed.
const (
	StateNotNeeded   State = "NOT_NEEDED"
	StateDetected    State = "DETECTED"
	StateConfigCheck State = "CONFIG_CHECK"
	StateMigrating   State = "MIGRATING"
	StateSucceeded   State = "SUCCEEDED"
	StateRollingBack State = "ROLLING_BACK"
	StateFailed      State = "FAILED"
)

// Reason explains a MigrationDecision.
type Reason string

// Decision reasons.
const (
	ReasonNoCustomDomain           Reason = "no_custom_domain"
	ReasonAlreadyUsingLoadBalancer Reason = "already_using_load_balancer"
	ReasonHasDomainMapping         Reason = "has_domain_mapping"
	ReasonNoExistingDomainMapping  Reason = "no_existing_domain_mapping"
	ReasonCheckFailed              Reason = "check_failed"
)

// MigrationDecision is computed fresh on every run and never persisted.
type MigrationDecision struct {
	Needed bool
	Reason Reason
}

// MigrationResult is the outcome of PerformMigration.
type MigrationResult struct {
	Success            bool
	ResourceDescriptor *config.ResourceDescriptor
	Error              error
	RollbackPerformed  bool

	// RollbackFailures counts teardown steps that failed during rollback.
	RollbackFailures int
}

// CheckMigrationConfig reports whether a needed migration may proceed:
// either migration is explicitly enabled, or the load balancer is requested
// and nothing was provisioned for it yet.
func CheckMigrationConfig(cfg config.Config, decision MigrationDecision) bool {
	if !decision.Needed {
		return false
	}
	return cfg.EnableLoadBalancerMigration || (cfg.UseLoadBalancer && !cfg.HasLoadBalancerResources())
}
