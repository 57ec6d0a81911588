package exec

import (
	"context"
	"time"
)

// CommandWrapper wraps an Executor and prepends a command name to every Run,
// which suits tools that are called repeatedly with different arguments (git).
// CommandWrapper implements Executor itself.
type CommandWrapper struct {
	executor Executor
	cmd      string
}

// NewWrapper creates a new CommandWrapper that prepends cmd to all Run() calls.
// The executor can be any Executor implementation, including test fakes.
func NewWrapper(executor Executor, cmd string) *CommandWrapper {
	return &CommandWrapper{
		executor: executor,
		cmd:      cmd,
	}
}

// Name returns the wrapped command name.
func (w *CommandWrapper) Name() string {
	return w.cmd
}

func (w *CommandWrapper) WithEnv(env map[string]string) Executor {
	w.executor = w.executor.WithEnv(env)
	return w
}

func (w *CommandWrapper) WithDir(dir string) Executor {
	w.executor = w.executor.WithDir(dir)
	return w
}

func (w *CommandWrapper) WithContext(ctx context.Context) Executor {
	w.executor = w.executor.WithContext(ctx)
	return w
}

func (w *CommandWrapper) WithDisableColors() Executor {
	w.executor = w.executor.WithDisableColors()
	return w
}

func (w *CommandWrapper) WithTimeout(timeout time.Duration) Executor {
	w.executor = w.executor.WithTimeout(timeout)
	return w
}

func (w *CommandWrapper) WithInheritEnv() Executor {
	w.executor = w.executor.WithInheritEnv()
	return w
}

// Run executes the wrapped command with the given arguments.
func (w *CommandWrapper) Run(args ...string) (*Result, error) {
	fullArgs := append([]string{w.cmd}, args...)
	return w.executor.Run(fullArgs...)
}

func (w *CommandWrapper) Clone() Executor {
	return &CommandWrapper{
		executor: w.executor.Clone(),
		cmd:      w.cmd,
	}
}
