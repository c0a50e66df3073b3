package keplrflow

import "fmt"

// StepError reports the browser step an operation failed at.
type StepError struct {
	// Step is the name of the failed step, e.g. "wait for account created"
	Step string
	// Target is the locator or text the step acted on
	Target string
	Err    error
}

func (e *StepError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Target, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
