package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/exec"
)

// Backend names accepted by New.
const (
	BackendGoGit = "go-git"
	BackendCLI   = "git"
)

// DefaultAbbrev is the width of the commit id when Options.Abbrev is unset.
const DefaultAbbrev = 7

// Source reads version metadata from one repository.
type Source interface {
	// Head returns the abbreviated HEAD commit id and, when dirty detection
	// is enabled, the working tree state. It is the cheap query used to
	// validate cache entries.
	Head(ctx context.Context) (Head, error)

	// Describe returns the nearest reachable tag and the distance to it.
	Describe(ctx context.Context) (*RawMetadata, error)
}

// Head identifies the state a version was computed for.
type Head struct {
	CommitID string
	Dirty    bool
}

// RawMetadata is the unformatted result of describing HEAD.
type RawMetadata struct {
	// Tag is the nearest tag with any configured prefix removed. Empty when
	// no tag is reachable.
	Tag string
	// TagName is the full tag name as it appears in the repository.
	TagName string
	// Distance counts first-parent commits between Tag and HEAD. Without a
	// tag it is the number of commits in HEAD's history.
	Distance int
	CommitID string
	Dirty    bool
}

// HasTag reports whether a tag was found.
func (m *RawMetadata) HasTag() bool {
	return m.TagName != ""
}

// Options configures a Source.
type Options struct {
	// Backend selects the implementation: BackendGoGit (default) or BackendCLI.
	Backend string
	// Abbrev is the commit id width. Zero means DefaultAbbrev.
	Abbrev int
	// TagPrefix restricts tags to names starting with it. The prefix is
	// removed before the tag is reported.
	TagPrefix string
	// TagMatch is a glob the full tag name must match, as with git describe
	// --match. It must start with TagPrefix when both are set.
	TagMatch string
	// DetectDirty enables working tree inspection.
	DetectDirty bool
	// IgnorePaths are left out of dirty detection, typically the cache
	// directory. Relative paths are resolved against the working directory;
	// paths outside the working tree are dropped.
	IgnorePaths []string

	// Executor runs git for BackendCLI. Nil uses exec.New.
	Executor exec.Executor
	// Filesystem holds the repository for BackendGoGit. Nil reads the local
	// filesystem.
	Filesystem billy.Filesystem
}

func (o Options) abbrev() int {
	if o.Abbrev <= 0 {
		return DefaultAbbrev
	}
	return o.Abbrev
}

// New returns the Source selected by opts.Backend for the repository at repoPath.
//
// An unknown backend yields INVALID_CONFIGURATION. A path that is not a
// readable repository yields REPOSITORY_ERROR.
func New(repoPath string, opts Options) (Source, error) {
	if opts.TagMatch != "" && !strings.HasPrefix(opts.TagMatch, opts.TagPrefix) {
		return nil, platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"tag pattern %q does not start with tag prefix %q", opts.TagMatch, opts.TagPrefix)
	}
	if _, err := newTagFilter(opts.TagPrefix, opts.TagMatch); err != nil {
		return nil, err
	}

	switch opts.Backend {
	case "", BackendGoGit:
		return NewGoGitSource(repoPath, opts)
	case BackendCLI:
		return NewCLISource(repoPath, opts), nil
	default:
		return nil, platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"unknown metadata backend %q (want %q or %q)", opts.Backend, BackendGoGit, BackendCLI)
	}
}

// repositoryError makes sure err reports REPOSITORY_ERROR.
func repositoryError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if platformerrors.GetCode(err) == platformerrors.CodeRepository {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return platformerrors.Wrapf(err, platformerrors.CodeRepository, format, args...)
}
