package exec

import (
	"context"
	"time"
)

// Executor is the interface for executing commands.
// It provides a fluent API for configuring and running commands.
type Executor interface {
	// WithEnv sets environment variables for the next run.
	WithEnv(env map[string]string) Executor

	// WithDir sets the working directory for the next run.
	WithDir(dir string) Executor

	// WithContext sets the context for the next run.
	// The command is killed if the context is canceled.
	WithContext(ctx context.Context) Executor

	// WithDisableColors sets NO_COLOR=1, TERM=dumb and related variables.
	WithDisableColors() Executor

	// WithTimeout bounds the next run. A zero duration disables the bound.
	WithTimeout(timeout time.Duration) Executor

	// WithInheritEnv inherits environment variables from the parent process.
	WithInheritEnv() Executor

	// Run executes the command with the given arguments.
	// The Result is returned even when the command fails.
	Run(args ...string) (*Result, error)

	// Clone creates a copy of the executor with the same configuration.
	Clone() Executor
}

// Result represents the result of a command execution.
type Result struct {
	// Stdout is the captured standard output
	Stdout string

	// Stderr is the captured standard error
	Stderr string

	// ExitCode is the exit code returned by the command, or -1 if it never ran
	ExitCode int
}

// Option is a function that configures a Command with global settings.
type Option func(*Command)

// WithEnv returns an Option that sets global environment variables.
func WithEnv(env map[string]string) Option {
	return func(c *Command) {
		for k, v := range env {
			c.config.globalEnv[k] = v
		}
	}
}

// WithDir returns an Option that sets the global working directory.
func WithDir(dir string) Option {
	return func(c *Command) {
		c.config.globalDir = dir
	}
}

// WithContext returns an Option that sets the default context.
func WithContext(ctx context.Context) Option {
	return func(c *Command) {
		c.baseCtx = ctx
	}
}

// WithDisableColors returns an Option that globally disables color output.
func WithDisableColors() Option {
	return func(c *Command) {
		c.config.globalDisableColors = true
	}
}

// WithTimeout returns an Option that sets a global timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Command) {
		c.config.globalTimeout = timeout
	}
}

// WithInheritEnv returns an Option that globally enables environment inheritance.
func WithInheritEnv() Option {
	return func(c *Command) {
		c.config.globalInheritEnv = true
	}
}
