// Package migration moves a custom domain from a legacy Cloud Run domain
// mapping to the load balancer.
//
// The cut-over creates the load balancer first, then deletes the domain
// mapping. When any step after provisioning fails, exactly the resources the
// run created are torn down again. Migration is gated on configuration flags
// only and never prompts, so it can run unattended.
package migration
