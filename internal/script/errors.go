package script

import (
	"errors"
	"fmt"
)

// Errors returned while loading or running scenarios.
var (
	// ErrInvalidStep indicates a step with no operation or more than one.
	ErrInvalidStep = errors.New("invalid step")

	// ErrUnknownFormat indicates a file extension the runner cannot replay.
	ErrUnknownFormat = errors.New("unknown scenario format")

	// ErrExpectationFailed is matched by every StepError.
	ErrExpectationFailed = errors.New("expectation failed")
)

// StepError describes one failed expectation.
type StepError struct {
	// Scenario is the scenario name.
	Scenario string
	// Step is the 1-based index of the operation that preceded the check.
	Step int
	// Op is that operation, e.g. `down "K"`.
	Op string
	// Field is the checked property, or "expect" for Lua expectations.
	Field string
	// Got is the observed value.
	Got any
	// Want is the expected value, or the message for Lua expectations.
	Want any
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Field == "expect" {
		return fmt.Sprintf("%s: step %d (%s): %v", e.Scenario, e.Step, e.Op, e.Want)
	}
	return fmt.Sprintf("%s: step %d (%s): %s = %v, want %v",
		e.Scenario, e.Step, e.Op, e.Field, e.Got, e.Want)
}

// Is reports ErrExpectationFailed as the sentinel for all step errors.
func (e *StepError) Is(target error) bool {
	return target == ErrExpectationFailed
}
