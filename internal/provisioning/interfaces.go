package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the stage name reported in ProvisioningError.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Logger is the minimal printf-style logger used across provisioning.
type Logger interface {
	Printf(format string, v ...any)
}
