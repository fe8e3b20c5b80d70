// Package infrastructure provisions the HTTPS load balancer front door of a
// Cloud Run service.
//
// It creates or reuses, in dependency order, a global static IP, optional
// outbound networking (VPC network, firewall rules, NAT IP, Cloud Router,
// Cloud NAT and a Serverless VPC Access connector), a managed SSL
// certificate, a serverless NEG, a backend service, a URL map, an HTTPS proxy
// and a forwarding rule. Every stage is check-then-create, so running the
// provisioner again is safe and performs no redundant creates.
package infrastructure
