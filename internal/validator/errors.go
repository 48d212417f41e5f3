package validator

import (
	"errors"
	"fmt"
)

// Sentinel errors for the validator package.
var (
	// ErrValidatorLaunch indicates the validator process could not be started.
	ErrValidatorLaunch = errors.New("validator launch failed")

	// ErrValidatorTimeout indicates the validator exceeded its timeout.
	ErrValidatorTimeout = errors.New("validator timeout")

	// ErrValidatorPathInvalid indicates the configured validator does not
	// resolve to an executable file, directly or through PATH.
	ErrValidatorPathInvalid = errors.New("validator path invalid")

	// ErrNoUnits indicates Run was called without any shader units.
	ErrNoUnits = errors.New("no shader units to validate")
)

// LaunchError wraps a failure to run the validator with context.
//
// Thread Safety: Immutable after creation.
type LaunchError struct {
	// Command is the validator executable that was invoked.
	Command string

	// Err is the underlying sentinel or OS error.
	Err error

	// Output contains any stderr output from the validator.
	Output string
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// NewLaunchError creates a LaunchError for command.
func NewLaunchError(command string, err error) *LaunchError {
	return &LaunchError{
		Command: command,
		Err:     err,
	}
}

// WithOutput returns a copy of the error with stderr output attached.
func (e *LaunchError) WithOutput(output string) *LaunchError {
	return &LaunchError{
		Command: e.Command,
		Err:     e.Err,
		Output:  output,
	}
}
