package gcloud

import (
	"errors"
	"slices"
	"strings"
)

// Signature tables used by the classification predicates. Matching is a
// case-insensitive substring test against gcloud's error output.
var (
	// gcloud words this per command group: compute resources say "was not
	// found", NAT gateways "NAT `x` not found", domain mappings "Cannot find
	// domain mapping".
	notFoundSignatures = []string{
		"was not found",
		"could not be found",
		"not_found",
		"notfound",
		"does not exist",
		"resource not found",
		"` not found",
		"' not found",
		"] not found",
		"cannot find",
	}

	alreadyExistsSignatures = []string{
		"already exists",
		"already_exists",
		"alreadyexists",
	}

	permissionSignatures = []string{
		"permission_denied",
		"permission denied",
		"does not have permission",
		"forbidden",
		"httperror 403",
		"required '",
	}

	// permanentSignatures win over transientSignatures.
	permanentSignatures = []string{
		"invalid value",
		"invalid argument",
		"invalid_argument",
		"badrequest",
		"httperror 400",
		"quota '",
		"billing account",
		"has not been used in project",
		"is not a valid name",
	}

	transientSignatures = []string{
		"timed out",
		"timeout",
		"deadline exceeded",
		"deadline_exceeded",
		"rate limit",
		"ratelimitexceeded",
		"too many requests",
		"httperror 429",
		"per minute",
		"unavailable",
		"internal error",
		"internal server error",
		"backenderror",
		"httperror 500",
		"httperror 502",
		"httperror 503",
		"httperror 504",
		"bad gateway",
		"gateway timeout",
		"is not ready",
		"resourcenotready",
		"concurrent modification",
		"operation in progress",
		"another operation",
		"fingerprint",
		"connection reset",
		"connection refused",
		"try again",
	}

	// transientExitCodes: 124 is a command killed by its timeout,
	// 75 is EX_TEMPFAIL.
	transientExitCodes = []int{124, 75}
)

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return matches(err, notFoundSignatures)
}

// IsAlreadyExists reports whether err means a create lost a race or repeated
// earlier work.
func IsAlreadyExists(err error) bool {
	return matches(err, alreadyExistsSignatures)
}

// IsPermissionDenied reports whether err is an authorization failure.
// These are never retried.
func IsPermissionDenied(err error) bool {
	return matches(err, permissionSignatures)
}

// IsTransient reports whether err is worth retrying: a known transient
// signature or exit code, and no permanent signature.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsNotFound(err) || IsAlreadyExists(err) || IsPermissionDenied(err) || matches(err, permanentSignatures) {
		return false
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && slices.Contains(transientExitCodes, cmdErr.ExitCode) {
		return true
	}
	return matches(err, transientSignatures)
}

func matches(err error, signatures []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(errorText(err))
	for _, sig := range signatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// errorText prefers gcloud's stderr over the wrapped error chain text.
func errorText(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Stderr + "\n" + cmdErr.Stdout
	}
	return err.Error()
}
