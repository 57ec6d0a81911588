package metadata

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/gitver/git"
	"github.com/jmgilman/gitver/internal/logger"
)

// GoGitSource reads metadata in process with go-git.
type GoGitSource struct {
	repo   *git.Repository
	opts   Options
	filter tagFilter
	ignore []string
}

// NewGoGitSource opens the repository at repoPath.
func NewGoGitSource(repoPath string, opts Options) (*GoGitSource, error) {
	filter, err := newTagFilter(opts.TagPrefix, opts.TagMatch)
	if err != nil {
		return nil, err
	}

	var repoOpts []git.RepositoryOption
	if opts.Filesystem != nil {
		repoOpts = append(repoOpts, git.WithFilesystem(opts.Filesystem))
	}

	repo, err := git.Open(repoPath, repoOpts...)
	if err != nil {
		return nil, repositoryError(err, "%q is not a git repository", repoPath)
	}

	return &GoGitSource{
		repo:   repo,
		opts:   opts,
		filter: filter,
		ignore: worktreePaths(repo.Root(), opts.IgnorePaths),
	}, nil
}

// Head implements Source.
func (s *GoGitSource) Head(ctx context.Context) (Head, error) {
	if err := ctx.Err(); err != nil {
		return Head{}, err
	}

	commit, err := s.repo.Head()
	if err != nil {
		return Head{}, repositoryError(err, "failed to read HEAD")
	}

	head := Head{CommitID: commit.ShortHash(s.opts.abbrev())}
	if s.opts.DetectDirty {
		dirty, err := s.repo.IsDirty(s.ignore...)
		if err != nil {
			return Head{}, repositoryError(err, "failed to read working tree status")
		}
		head.Dirty = dirty
	}

	return head, nil
}

// Describe implements Source. It walks the first-parent chain from HEAD and
// stops at the first commit carrying a tag.
func (s *GoGitSource) Describe(ctx context.Context) (*RawMetadata, error) {
	head, err := s.Head(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.repo.TagsByCommit()
	if err != nil {
		return nil, repositoryError(err, "failed to list tags")
	}

	raw := &RawMetadata{CommitID: head.CommitID, Dirty: head.Dirty}

	distance := 0
	for commit, err := range s.repo.FirstParents("HEAD") {
		if err != nil {
			return nil, repositoryError(err, "failed to walk history")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if name, ok := selectTag(tags[plumbing.NewHash(commit.Hash)], s.filter); ok {
			raw.TagName = name
			raw.Tag = strings.TrimPrefix(name, s.opts.TagPrefix)
			raw.Distance = distance
			logger.DebugKV(ctx, "found tag", "tag", name, "distance", distance, "commit", head.CommitID)
			return raw, nil
		}
		distance++
	}

	count, err := s.repo.CountCommits("HEAD")
	if err != nil {
		return nil, repositoryError(err, "failed to count commits")
	}
	raw.Distance = count
	logger.DebugKV(ctx, "no tag reachable", "commits", count, "commit", head.CommitID)

	return raw, nil
}
