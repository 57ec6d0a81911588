// Package exec runs external commands behind a small, mockable interface.
//
// It wraps os/exec so callers depend on the Executor interface rather than
// on process creation, which lets the git CLI metadata backend be tested
// with a fake executor. Output is always captured; nothing is streamed to
// the parent's stdout, which gitver reserves for the version string.
//
// # Basic Usage
//
//	cmd := exec.New()
//	result, err := cmd.Run("git", "rev-parse", "--short=7", "HEAD")
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.Stdout)
//
// # Configuration
//
// Global settings are applied with options at creation time; local settings
// apply to the next Run only and override the global ones:
//
//	cmd := exec.New(
//		exec.WithInheritEnv(),
//		exec.WithDisableColors(),
//	)
//
//	result, err := cmd.
//		WithDir("/path/to/repo").
//		WithContext(ctx).
//		Run("git", "status", "--porcelain")
//
// # Command Wrappers
//
// NewWrapper prepends a fixed command name to every Run:
//
//	git := exec.NewWrapper(exec.New(), "git")
//	result, err := git.WithDir("/repo").Run("describe", "--tags", "--long")
package exec
