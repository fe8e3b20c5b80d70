// Package naming derives the Google Cloud resource names used for a service.
//
// Every load balancer resource follows the pattern {service}-{suffix} where
// {service} is the sanitized logical service name. Names must stay stable
// across releases: they are how an existing deployment is found again.
package naming
