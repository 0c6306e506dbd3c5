package llm

import "fmt"

// ServiceError reports that the completion service itself failed: unreachable,
// timed out, or the requested model does not exist. It is a different failure
// class from a malformed-but-present response, which never raises an error.
type ServiceError struct {
	Op    string
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("llm: %s (model %s): %v", e.Op, e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
