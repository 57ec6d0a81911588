package exec

import (
	"bytes"
	"context"
	"os"
	osexec "os/exec"
	"time"
)

// Command is the concrete implementation of the Executor interface.
type Command struct {
	config  *config
	baseCtx context.Context
	ctx     context.Context
}

// New creates a new Command with the given options.
// Options set global defaults that can be overridden by local settings.
func New(opts ...Option) *Command {
	cmd := &Command{
		config:  newConfig(),
		baseCtx: context.Background(),
	}

	for _, opt := range opts {
		opt(cmd)
	}

	return cmd
}

func (c *Command) WithEnv(env map[string]string) Executor {
	for k, v := range env {
		c.config.localEnv[k] = v
	}
	return c
}

func (c *Command) WithDir(dir string) Executor {
	c.config.localDir = dir
	return c
}

func (c *Command) WithContext(ctx context.Context) Executor {
	c.ctx = ctx
	return c
}

func (c *Command) WithDisableColors() Executor {
	val := true
	c.config.localDisableColors = &val
	return c
}

func (c *Command) WithTimeout(timeout time.Duration) Executor {
	c.config.localTimeout = &timeout
	return c
}

func (c *Command) WithInheritEnv() Executor {
	val := true
	c.config.localInheritEnv = &val
	return c
}

// Run executes the command with the given arguments.
// Local settings are cleared afterwards whatever the outcome.
func (c *Command) Run(args ...string) (*Result, error) {
	defer c.reset()

	if len(args) == 0 {
		return nil, &ExecError{
			Command:  args,
			ExitCode: -1,
			Err:      osexec.ErrNotFound,
		}
	}

	ctx := c.baseCtx
	if c.ctx != nil {
		ctx = c.ctx
	}
	if timeout := c.config.effectiveTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, args[0], args[1:]...)

	if dir := c.config.effectiveDir(); dir != "" {
		cmd.Dir = dir
	}

	if c.config.effectiveInheritEnv() {
		cmd.Env = os.Environ()
	}
	for k, v := range c.config.effectiveEnv() {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return result, &ExecError{
			Command:  args,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}

	return result, nil
}

// Clone creates a copy of the executor with the same configuration.
func (c *Command) Clone() Executor {
	return &Command{
		config:  c.config.clone(),
		baseCtx: c.baseCtx,
		ctx:     c.ctx,
	}
}

func (c *Command) reset() {
	c.config.resetLocal()
	c.ctx = nil
}
