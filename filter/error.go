package filter

import (
	"fmt"
)

// ErrFailed is the failure state of a filter. It is created when the filter's
// Process returns an error (or MarkFailed is called) and is delivered to the
// nearest error handler up the parent chain.
type ErrFailed struct {
	Filter *Filter
	Err    error

	// HandledBy is the error handler the failure was delivered to; it is nil
	// if nobody up to the root had an error handler.
	HandledBy *Filter
}

func (e *ErrFailed) Error() string {
	return fmt.Sprintf("filter '%s' failed: %v", e.Filter, e.Err)
}

func (e *ErrFailed) Unwrap() error {
	return e.Err
}

func (e *ErrFailed) IsHandled() bool {
	return e.HandledBy != nil
}

type ErrNotSupportedCommand struct {
	Type CommandType
}

func (e ErrNotSupportedCommand) Error() string {
	return fmt.Sprintf("command '%s' is not supported", e.Type)
}

type ErrInitFailed struct {
	Name string
	Err  error
}

func (e ErrInitFailed) Error() string {
	return fmt.Sprintf("unable to initialize filter '%s': %v", e.Name, e.Err)
}

func (e ErrInitFailed) Unwrap() error {
	return e.Err
}

type ErrDestroyed struct {
	Name string
}

func (e ErrDestroyed) Error() string {
	return fmt.Sprintf("filter '%s' is already destroyed", e.Name)
}
