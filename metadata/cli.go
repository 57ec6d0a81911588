package metadata

import (
	"context"
	"strconv"
	"strings"

	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/exec"
	"github.com/jmgilman/gitver/internal/logger"
)

// CLISource reads metadata by running the git binary.
type CLISource struct {
	git  exec.Executor
	dir  string
	opts Options
}

// NewCLISource returns a Source running git inside repoPath. Nothing is
// executed until Head or Describe is called.
func NewCLISource(repoPath string, opts Options) *CLISource {
	executor := opts.Executor
	if executor == nil {
		executor = exec.New(
			exec.WithInheritEnv(),
			exec.WithDisableColors(),
			exec.WithEnv(map[string]string{"LC_ALL": "C", "GIT_TERMINAL_PROMPT": "0"}),
		)
	}

	return &CLISource{
		git:  exec.NewWrapper(executor, "git"),
		dir:  repoPath,
		opts: opts,
	}
}

// Head implements Source.
func (s *CLISource) Head(ctx context.Context) (Head, error) {
	out, err := s.run(ctx, "rev-parse", "--short="+strconv.Itoa(s.opts.abbrev()), "HEAD")
	if err != nil {
		return Head{}, repositoryError(err, "failed to read HEAD in %q", s.dir)
	}

	head := Head{CommitID: out}
	if s.opts.DetectDirty {
		args, err := s.statusArgs(ctx)
		if err != nil {
			return Head{}, err
		}
		status, err := s.run(ctx, args...)
		if err != nil {
			return Head{}, repositoryError(err, "failed to read working tree status")
		}
		head.Dirty = status != ""
	}

	return head, nil
}

// statusArgs builds the status query. Ignored paths become exclude
// pathspecs next to ":/", the whole working tree, which needs one more query
// to locate the top of the tree.
func (s *CLISource) statusArgs(ctx context.Context) ([]string, error) {
	args := []string{"status", "--porcelain"}
	if len(s.opts.IgnorePaths) == 0 {
		return args, nil
	}

	top, err := s.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, repositoryError(err, "failed to locate the working tree of %q", s.dir)
	}

	ignore := worktreePaths(top, s.opts.IgnorePaths)
	if len(ignore) == 0 {
		return args, nil
	}

	args = append(args, "--", ":/")
	for _, p := range ignore {
		args = append(args, ":(top,exclude)"+p)
	}
	return args, nil
}

// Describe implements Source.
func (s *CLISource) Describe(ctx context.Context) (*RawMetadata, error) {
	head, err := s.Head(ctx)
	if err != nil {
		return nil, err
	}

	raw := &RawMetadata{CommitID: head.CommitID, Dirty: head.Dirty}

	args := []string{"describe", "--tags", "--long", "--first-parent", "--abbrev=" + strconv.Itoa(s.opts.abbrev())}
	switch {
	case s.opts.TagMatch != "":
		args = append(args, "--match", s.opts.TagMatch)
	case s.opts.TagPrefix != "":
		args = append(args, "--match", s.opts.TagPrefix+"*")
	}
	args = append(args, "HEAD")

	out, err := s.run(ctx, args...)
	switch {
	case err == nil:
		name, distance, err := parseDescribe(out)
		if err != nil {
			return nil, err
		}
		raw.TagName = name
		raw.Tag = strings.TrimPrefix(name, s.opts.TagPrefix)
		raw.Distance = distance
		logger.DebugKV(ctx, "git describe", "output", out)
		return raw, nil
	case !noTagsFound(err):
		return nil, repositoryError(err, "git describe failed in %q", s.dir)
	}

	out, err = s.run(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		return nil, repositoryError(err, "failed to count commits in %q", s.dir)
	}
	count, err := strconv.Atoi(out)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeRepository, "unexpected rev-list output %q", out)
	}
	raw.Distance = count
	logger.DebugKV(ctx, "no tag reachable", "commits", count, "commit", head.CommitID)

	return raw, nil
}

func (s *CLISource) run(ctx context.Context, args ...string) (string, error) {
	res, err := s.git.WithDir(s.dir).WithContext(ctx).Run(args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// parseDescribe splits `<tag>-<distance>-g<hash>` output. Tags may contain
// dashes, so the string is split from the right.
func parseDescribe(out string) (string, int, error) {
	i := strings.LastIndex(out, "-g")
	if i <= 0 {
		return "", 0, platformerrors.Newf(platformerrors.CodeRepository, "unexpected describe output %q", out)
	}

	rest := out[:i]
	j := strings.LastIndex(rest, "-")
	if j <= 0 {
		return "", 0, platformerrors.Newf(platformerrors.CodeRepository, "unexpected describe output %q", out)
	}

	distance, err := strconv.Atoi(rest[j+1:])
	if err != nil {
		return "", 0, platformerrors.Wrapf(err, platformerrors.CodeRepository, "unexpected describe output %q", out)
	}

	return rest[:j], distance, nil
}

// noTagsFound reports whether describe failed only because nothing matched.
func noTagsFound(err error) bool {
	var execErr *exec.ExecError
	if !platformerrors.As(err, &execErr) {
		return false
	}
	stderr := execErr.Stderr
	return strings.Contains(stderr, "No names found") ||
		strings.Contains(stderr, "No tags can describe") ||
		strings.Contains(stderr, "cannot describe")
}
