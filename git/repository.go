package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	platformerrors "github.com/jmgilman/gitver/errors"
)

// Init creates a new Git repository at the specified path.
//
// By default, Init creates a standard (non-bare) repository on the local
// filesystem. WithFilesystem initializes it inside a billy filesystem
// instead, which is how tests build in-memory repositories.
//
// Examples:
//
//	// Create a standard repository
//	repo, err := git.Init("/path/to/repo")
//
//	// Create repository with custom filesystem (for testing)
//	repo, err := git.Init("/repo", git.WithFilesystem(memfs.New()))
func Init(path string, opts ...RepositoryOption) (*Repository, error) {
	options := &repositoryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.fs == nil {
		repo, err := gogit.PlainInit(path, options.bare)
		if err != nil {
			return nil, wrapError(err, "failed to initialize repository")
		}
		return &Repository{path: path, repo: repo, fs: osfs.New(path)}, nil
	}

	if err := options.fs.MkdirAll(path, 0o755); err != nil {
		return nil, wrapError(err, "failed to create repository directory")
	}

	scopedFs, err := options.fs.Chroot(path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	// Bare repositories keep their storage in the root.
	if options.bare {
		storage := filesystem.NewStorage(scopedFs, cache.NewObjectLRUDefault())
		repo, err := gogit.Init(storage, nil)
		if err != nil {
			return nil, wrapError(err, "failed to initialize bare repository")
		}
		return &Repository{path: path, repo: repo, fs: scopedFs}, nil
	}

	dotGitFs, err := scopedFs.Chroot(".git")
	if err != nil {
		return nil, wrapError(err, "failed to create .git filesystem")
	}

	storage := filesystem.NewStorage(dotGitFs, cache.NewObjectLRUDefault())
	repo, err := gogit.Init(storage, scopedFs)
	if err != nil {
		return nil, wrapError(err, "failed to initialize repository")
	}

	return &Repository{path: path, repo: repo, fs: scopedFs}, nil
}

// Open opens an existing Git repository at the specified path.
//
// Without options, the path is opened from the local filesystem and may point
// anywhere inside a working tree: parent directories are searched for .git,
// and linked worktrees share the common directory of their main repository.
// With WithFilesystem, the path must be the repository root inside that
// filesystem (standard layout with .git, or bare).
//
// A path that holds no repository yields a REPOSITORY_ERROR.
//
// Examples:
//
//	repo, err := git.Open("/path/to/repo")
//	repo, err := git.Open("/repo", git.WithFilesystem(fs))
func Open(path string, opts ...RepositoryOption) (*Repository, error) {
	options := &repositoryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.fs == nil {
		return openPlain(path)
	}

	scopedFs, err := options.fs.Chroot(path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	var repo *gogit.Repository
	if stat, statErr := scopedFs.Stat(".git"); statErr == nil && stat.IsDir() {
		dotGitFs, err := scopedFs.Chroot(".git")
		if err != nil {
			return nil, wrapError(err, "failed to scope filesystem to .git")
		}
		storage := filesystem.NewStorage(dotGitFs, cache.NewObjectLRUDefault())
		repo, err = gogit.Open(storage, scopedFs)
		if err != nil {
			return nil, wrapError(err, fmt.Sprintf("failed to open repository at %q", path))
		}
	} else {
		storage := filesystem.NewStorage(scopedFs, cache.NewObjectLRUDefault())
		repo, err = gogit.Open(storage, nil)
		if err != nil {
			return nil, wrapError(err, fmt.Sprintf("failed to open repository at %q", path))
		}
	}

	return &Repository{path: path, repo: repo, fs: scopedFs}, nil
}

func openPlain(path string) (*Repository, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeRepository, "cannot access %q", path)
	}
	if !info.IsDir() {
		return nil, platformerrors.Newf(platformerrors.CodeRepository, "%q is not a directory", path)
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to open repository at %q", path))
	}

	var fs billy.Filesystem
	if wt, err := repo.Worktree(); err == nil {
		fs = wt.Filesystem
	} else {
		fs = osfs.New(path)
	}

	return &Repository{path: path, repo: repo, fs: fs}, nil
}

// Path returns the path the repository was opened or initialized with.
func (r *Repository) Path() string {
	return r.path
}

// Underlying returns the underlying go-git Repository for advanced operations
// not covered by this wrapper.
func (r *Repository) Underlying() *gogit.Repository {
	return r.repo
}

// Filesystem returns the billy.Filesystem associated with this repository:
// the working tree for standard repositories, the repository directory for
// bare ones.
func (r *Repository) Filesystem() billy.Filesystem {
	return r.fs
}
