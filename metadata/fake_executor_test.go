package metadata

import (
	"context"
	"strings"
	"time"

	"github.com/jmgilman/gitver/exec"
)

// fakeResponse is the canned outcome of one git invocation.
type fakeResponse struct {
	stdout   string
	stderr   string
	exitCode int
}

// fakeExecutor answers Run calls from a table keyed by the joined arguments
// and records every call with the directory it was run in.
type fakeExecutor struct {
	responses map[string]fakeResponse
	calls     []string
	dirs      []string
	dir       string
	ctx       context.Context
}

func newFakeExecutor(responses map[string]fakeResponse) *fakeExecutor {
	return &fakeExecutor{responses: responses}
}

func (f *fakeExecutor) WithEnv(map[string]string) exec.Executor { return f }
func (f *fakeExecutor) WithDisableColors() exec.Executor { return f }
func (f *fakeExecutor) WithTimeout(time.Duration) exec.Executor { return f }
func (f *fakeExecutor) WithInheritEnv() exec.Executor { return f }
func (f *fakeExecutor) Clone() exec.Executor { return f }

func (f *fakeExecutor) WithDir(dir string) exec.Executor {
	f.dir = dir
	return f
}

func (f *fakeExecutor) WithContext(ctx context.Context) exec.Executor {
	f.ctx = ctx
	return f
}

func (f *fakeExecutor) Run(args ...string) (*exec.Result, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	f.dirs = append(f.dirs, f.dir)

	resp, ok := f.responses[key]
	if !ok {
		resp = fakeResponse{stderr: "fatal: unexpected command " + key, exitCode: 128}
	}

	result := &exec.Result{Stdout: resp.stdout, Stderr: resp.stderr, ExitCode: resp.exitCode}
	if resp.exitCode != 0 {
		return result, &exec.ExecError{
			Command:  args,
			ExitCode: resp.exitCode,
			Stdout:   resp.stdout,
			Stderr:   resp.stderr,
		}
	}
	return result, nil
}
