// Package destroy tears down the load balancer resources of one service.
//
// Resources are deleted in strict reverse dependency order: forwarding rule,
// target proxy, URL map, backend service, NEG and certificate, then the
// outbound NAT, VPC connector, router and NAT IP when present, and finally
// the inbound static IP. A missing resource is not a failure. Any other
// failure is counted and teardown continues with the next resource.
package destroy
