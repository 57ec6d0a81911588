// Package testutil provides in-memory testing utilities for the git package.
// It includes helpers for creating in-memory repositories and histories,
// enabling tests to run quickly without external dependencies.
package testutil

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/jmgilman/gitver/git"
)

// NewMemoryRepo creates a new in-memory Git repository for testing.
// It uses billy's memory filesystem (memfs) to provide a fully functional
// repository without touching the actual filesystem.
//
// The returned filesystem can be used to create files and directories
// within the repository's working tree.
//
// Example:
//
//	repo, fs, err := testutil.NewMemoryRepo()
//	if err != nil {
//	    t.Fatal(err)
//	}
func NewMemoryRepo() (*git.Repository, billy.Filesystem, error) {
	fs := memfs.New()

	repo, err := git.Init("/", git.WithFilesystem(fs))
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return nil, nil, err
	}

	return repo, fs, nil
}

// CreateTestCommit creates an empty commit with the standard test author
// and the provided message.
//
// Example:
//
//	hash, err := testutil.CreateTestCommit(repo, "Initial commit")
func CreateTestCommit(repo *git.Repository, message string) (string, error) {
	//nolint:wrapcheck // Test utility - errors from git package are already wrapped
	return repo.CreateCommit(git.CommitOptions{
		Author:     TestAuthor,
		Email:      TestEmail,
		Message:    message,
		AllowEmpty: true,
	})
}

// CreateTestCommitWithTimestamp creates an empty commit authored at timestamp.
func CreateTestCommitWithTimestamp(repo *git.Repository, message string, timestamp time.Time) (string, error) {
	//nolint:wrapcheck // Test utility - errors from git package are already wrapped
	return repo.CreateCommit(git.CommitOptions{
		Author:     TestAuthor,
		Email:      TestEmail,
		Message:    message,
		When:       timestamp,
		AllowEmpty: true,
	})
}

// CreateLinearHistory appends n empty commits to HEAD and returns their
// hashes, oldest first.
//
// Example:
//
//	// 0.2.11 tagged, then 44 more commits
//	_ = testutil.CreateTestTag(repo, "0.2.11", tagged, "")
//	hashes, err := testutil.CreateLinearHistory(repo, 44)
func CreateLinearHistory(repo *git.Repository, n int) ([]string, error) {
	hashes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		hash, err := CreateTestCommit(repo, fmt.Sprintf("%s %d", TestCommitMessage, i))
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

// CreateTestFile creates a file with the specified content in the given filesystem.
// If the file already exists, it will be truncated and overwritten.
//
// Example:
//
//	err := testutil.CreateTestFile(fs, "README.md", "# Test Repository")
func CreateTestFile(fs billy.Filesystem, path, content string) error {
	file, err := fs.Create(path)
	if err != nil {
		//nolint:wrapcheck // Test utility - simple file operation error
		return err
	}
	defer func() {
		_ = file.Close() // Ignore close error in test utility
	}()

	_, err = file.Write([]byte(content))
	//nolint:wrapcheck // Test utility - simple file operation error
	return err
}

// CreateTestTag creates a tag pointing to the specified commit: annotated
// when message is set, lightweight otherwise.
//
// Example:
//
//	err := testutil.CreateTestTag(repo, "v1.0.0", commitHash, "Release 1.0.0")
func CreateTestTag(repo *git.Repository, name, commitHash, message string) error {
	if message == "" {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return repo.CreateLightweightTag(name, commitHash)
	}
	//nolint:wrapcheck // Test utility - errors from git package are already wrapped
	return repo.CreateTag(name, commitHash, message)
}

// CreateSideCommit stores a commit whose only parent is parent without moving
// any branch. Use it with CreateMergeCommit to build non-linear histories.
func CreateSideCommit(repo *git.Repository, message, parent string) (string, error) {
	return writeCommit(repo, message, parent)
}

// CreateMergeCommit stores a commit with the given parents, first parent
// first, and advances the branch HEAD points at to it.
//
// Example:
//
//	side, _ := testutil.CreateSideCommit(repo, "feature work", base)
//	merge, err := testutil.CreateMergeCommit(repo, testutil.TestMergeCommit, mainTip, side)
func CreateMergeCommit(repo *git.Repository, message string, parents ...string) (string, error) {
	if len(parents) < 2 {
		return "", fmt.Errorf("merge commit needs at least two parents, got %d", len(parents))
	}

	hash, err := writeCommit(repo, message, parents...)
	if err != nil {
		return "", err
	}

	storer := repo.Underlying().Storer
	head, err := storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	if err := storer.SetReference(plumbing.NewHashReference(name, plumbing.NewHash(hash))); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", name, err)
	}

	return hash, nil
}

func writeCommit(repo *git.Repository, message string, parents ...string) (string, error) {
	if len(parents) == 0 {
		return "", fmt.Errorf("at least one parent is required")
	}

	base, err := repo.GetCommit(parents[0])
	if err != nil {
		return "", err
	}

	hashes := make([]plumbing.Hash, 0, len(parents))
	for _, p := range parents {
		hashes = append(hashes, plumbing.NewHash(p))
	}

	sig := object.Signature{Name: TestAuthor, Email: TestEmail, When: time.Now()}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     base.Underlying().TreeHash,
		ParentHashes: hashes,
	}

	storer := repo.Underlying().Storer
	obj := storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return "", fmt.Errorf("failed to encode commit: %w", err)
	}

	hash, err := storer.SetEncodedObject(obj)
	if err != nil {
		return "", fmt.Errorf("failed to store commit: %w", err)
	}

	return hash.String(), nil
}
