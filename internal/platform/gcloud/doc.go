// Package gcloud drives Google Cloud through the gcloud CLI with retry,
// timeout and error classification.
//
// # Architecture
//
//   - executor.go: the Executor primitive, the os/exec implementation and the retrying wrapper
//   - errors.go: enumerated error signatures and the classification predicates
//   - resources.go: resource kinds and references, mapped to gcloud command groups
//   - client.go: describe/create/delete calls parsed from --format=json
//   - operations.go: generic Ensure and Delete operations
//   - metrics.go: Prometheus counters for every gcloud invocation
//
// # Generic Operations
//
// EnsureOperation provides check-then-create semantics:
//   - Describe → reuse the resource when it exists
//   - Not found → create it, then describe the result
//   - Already exists on create (a concurrent run won the race) → describe and reuse
//
// DeleteOperation provides idempotent deletion: a resource that is already
// gone counts as deleted.
//
// # Retry and Timeout Configuration
//
// Retries and timeouts are configured through environment variables read by
// the config package:
//
//   - RUNWAY_TIMEOUT_COMMAND: upper bound for one gcloud invocation (default: 10m)
//   - RUNWAY_RETRY_MAX_ATTEMPTS: retries for transient failures (default: 5)
//   - RUNWAY_RETRY_INITIAL_DELAY: first backoff delay (default: 2s)
//   - RUNWAY_GCLOUD_BIN: gcloud executable (default: gcloud)
package gcloud
