package command

import (
	"fmt"
	"time"
)

// CommandError is returned when a command exhausts its attempts.
type CommandError struct {
	Package  string
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: %q exited with code %d: %v", e.Package, e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s: %q failed: %v", e.Package, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// TimeoutError is returned when a command runs past the engine timeout.
type TimeoutError struct {
	Package string
	Command string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %q timed out after %s", e.Package, e.Command, e.After)
}
