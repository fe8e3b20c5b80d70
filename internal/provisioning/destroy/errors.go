package destroy

import "fmt"

// TeardownError reports how many deletions failed.
type TeardownError struct {
	Failures int
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("teardown finished with %d error(s)", e.Failures)
}
