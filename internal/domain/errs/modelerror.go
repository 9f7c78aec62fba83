package errs

import "fmt"

// ModelError indicates the reasoning-model provider call itself failed
// (network, auth, provider outage). It is fatal to a run; retries are the
// caller's decision.
type ModelError struct {
	message string
}

func (v *ModelError) Error() string {
	return v.message
}

func ModelErrorf(format string, args ...any) *ModelError {
	return &ModelError{
		message: fmt.Sprintf(format, args...),
	}
}

var _ error = &ModelError{}
