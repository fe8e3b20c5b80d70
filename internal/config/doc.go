// Package config defines the persisted deployment configuration (runway.yaml)
// and the values derived from it.
//
// [Config] is what the CLI reads and writes. The provisioning core never
// mutates it: it consumes a [ProvisioningConfig] derived from it and hands
// back a [ResourceDescriptor], which the caller merges with
// [Config.WithLoadBalancer] and persists.
package config
