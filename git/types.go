package git

import (
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository wraps a go-git repository with platform conventions.
// It stores both the underlying go-git repository and a billy filesystem
// for all I/O operations, providing escape hatches for advanced use cases.
type Repository struct {
	path string
	repo *gogit.Repository
	fs   billy.Filesystem
}

// Commit is a value type containing formatted commit information.
// It includes an escape hatch to the underlying go-git commit object
// for advanced operations.
type Commit struct {
	Hash      string
	Author    string
	Email     string
	Message   string
	Timestamp time.Time
	Parents   int
	raw       *object.Commit
}

// Tag is a simple value type representing a Git tag.
type Tag struct {
	Name string
	// Hash is the hash the tag reference points at: the commit for
	// lightweight tags, the tag object for annotated tags.
	Hash plumbing.Hash
	// Target is the commit the tag resolves to after peeling.
	Target  plumbing.Hash
	Message string // Empty for lightweight tags
}

// Annotated reports whether the tag is an annotated tag object.
func (t Tag) Annotated() bool {
	return t.Hash != t.Target
}

// CommitOptions configures commit creation.
type CommitOptions struct {
	Author     string
	Email      string
	Message    string
	When       time.Time // Zero means now
	AllowEmpty bool
}

// RepositoryOption configures repository creation operations (Init, Open).
type RepositoryOption func(*repositoryOptions)

// repositoryOptions holds the configuration for repository creation.
type repositoryOptions struct {
	fs   billy.Filesystem
	bare bool
}

// WithFilesystem sets the billy filesystem to use for repository operations.
// The repository path is resolved inside this filesystem. If not provided,
// the repository is opened from the local OS filesystem.
//
// Example:
//
//	repo, err := git.Init("/repo", git.WithFilesystem(memfs.New()))
func WithFilesystem(fs billy.Filesystem) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.fs = fs
	}
}

// WithBare creates a bare repository (no working tree).
// Only applicable to Init operations.
func WithBare() RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.bare = true
	}
}
