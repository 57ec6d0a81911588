// Package git provides a thin wrapper around go-git for reading the history
// a version is derived from.
//
// The package uses go-billy for filesystem access, wraps go-git types with
// small value types while providing escape hatches, and keeps each concern in
// its own file (repository, commit, tag, status).
//
// # Core Types
//
// Repository wraps go-git and exposes the operations needed to describe HEAD:
// resolving HEAD, walking history, listing tags and checking the working tree.
//
// Commit and Tag are value types. Tag carries both the reference hash and the
// peeled commit (Target), so annotated and lightweight tags can be matched
// against history the same way.
//
// # Factory Functions
//
// Init initializes a new Git repository at the specified path.
//
// Open opens an existing repository. Without options it reads the local
// filesystem and accepts any directory inside a working tree. WithFilesystem
// opens a repository rooted inside a billy filesystem instead.
//
// # History
//
//	head, err := repo.Head()                 // ErrNoCommits on an unborn HEAD
//	for c, err := range repo.FirstParents("HEAD") { ... }
//	n, err := repo.CountCommits("HEAD")      // git rev-list --count HEAD
//	tags, err := repo.TagsByCommit()         // peeled commit -> tags
//	dirty, err := repo.IsDirty()
//
// # Escape Hatches
//
//	gogitRepo := repo.Underlying()
//	fs := repo.Filesystem()
//	gogitCommit := commit.Underlying()
//
// # Error Handling
//
// go-git errors are wrapped with platform error types from the errors
// package. A missing repository maps to REPOSITORY_ERROR, missing references
// and objects to NOT_FOUND. ErrNoCommits is a REPOSITORY_ERROR.
//
// # Testing
//
// The testutil sub-package builds in-memory repositories:
//
//	repo, fs, err := testutil.NewMemoryRepo()
//	hash, err := testutil.CreateTestCommit(repo, "Test commit")
//	hashes, err := testutil.CreateLinearHistory(repo, 44)
package git
