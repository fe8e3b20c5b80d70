package provisioning

import "fmt"

// ProvisioningError names the stage that failed.
type ProvisioningError struct {
	Stage string
	Err   error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
