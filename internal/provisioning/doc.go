// Package provisioning provides shared types, interfaces, and orchestration for
// the load balancer front door of a Cloud Run service.
//
// # Subpackages
//
//   - infrastructure/: static IPs, outbound NAT networking, certificate, NEG, backend, URL map, proxy, forwarding rule
//   - destroy/: reverse-order teardown
//   - migration/: domain mapping to load balancer cut-over with rollback
//   - status/: readiness polling for certificates and forwarding rules
//
// # Core Types
//
// Context carries the provisioning input, state, gcloud client, and observer.
// Phase defines a provisioning step with Name() and Provision() methods.
// State accumulates what each phase created or reused and turns into the
// persisted ResourceDescriptor once every phase succeeded.
package provisioning
