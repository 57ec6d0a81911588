package exec

import (
	"fmt"
	"strings"
)

// ExecError represents an error that occurred during command execution.
// It includes the exit code, the command that was run, and any captured output.
type ExecError struct {
	// Command is the full command that was executed (including arguments)
	Command []string

	// ExitCode is the exit code returned by the command
	ExitCode int

	// Stdout is the captured standard output
	Stdout string

	// Stderr is the captured standard error
	Stderr string

	// Err is the underlying error from the execution
	Err error
}

// Error implements the error interface. The first line of stderr is included
// because git reports the useful part of its failures there.
func (e *ExecError) Error() string {
	msg := fmt.Sprintf("command %v failed with exit code %d", e.Command, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if line, _, _ := strings.Cut(strings.TrimSpace(e.Stderr), "\n"); line != "" {
		msg += ": " + line
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}
