// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, maximum delay, multiplier and jitter. Errors wrapped with
// [Fatal] stop the loop immediately, and a [WithRetryIf] predicate can restrict
// retries to a known set of transient failures. It backs the retrying gcloud
// executor.
package retry
