// Package status reports whether the managed certificate and the load
// balancer of a service are ready.
//
// WaitForReady polls at a fixed interval until the resource is ACTIVE or the
// wait budget is spent. Running out of time is a normal outcome reported as
// false, and a failed query only counts as "not ready yet".
package status
