package git

import (
	"errors"
	"fmt"
	"iter"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CreateCommit creates a new commit on the current HEAD with the specified options.
//
// By default, CreateCommit fails if there are no changes to commit. Use
// AllowEmpty to create commits without changes, which is what tests use to
// build histories quickly.
//
// Returns the commit hash as a string.
//
// Example:
//
//	hash, err := repo.CreateCommit(git.CommitOptions{
//	    Author:     "Bot",
//	    Email:      "bot@example.com",
//	    Message:    "Trigger rebuild",
//	    AllowEmpty: true,
//	})
func (r *Repository) CreateCommit(opts CommitOptions) (string, error) {
	if opts.Author == "" {
		return "", wrapError(fmt.Errorf("author is required"), "failed to create commit")
	}
	if opts.Email == "" {
		return "", wrapError(fmt.Errorf("email is required"), "failed to create commit")
	}
	if opts.Message == "" {
		return "", wrapError(fmt.Errorf("message is required"), "failed to create commit")
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return "", wrapError(err, "failed to get worktree")
	}

	when := opts.When
	if when.IsZero() {
		when = time.Now()
	}

	hash, err := wt.Commit(opts.Message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  when,
		},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return "", wrapError(err, "failed to create commit")
	}

	return hash.String(), nil
}

// Head returns the commit HEAD points at.
//
// Returns ErrNoCommits when HEAD is unborn (a freshly initialized repository).
func (r *Repository) Head() (*Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, wrapError(err, "failed to resolve HEAD")
	}

	obj, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, wrapError(err, "failed to get HEAD commit")
	}

	return newCommit(obj), nil
}

// GetCommit retrieves a single commit by reference.
//
// The ref parameter can be a commit hash, a branch name, a tag name or "HEAD".
// Returns a NOT_FOUND error if the reference doesn't exist.
//
// Example:
//
//	commit, err := repo.GetCommit("v1.0.0")
func (r *Repository) GetCommit(ref string) (*Commit, error) {
	obj, err := r.resolveCommit(ref)
	if err != nil {
		return nil, err
	}
	return newCommit(obj), nil
}

// WalkCommits yields every commit reachable from ref, newest first, each
// commit exactly once. Merge commits contribute all of their parents.
//
// Break out of the loop to stop early.
//
// Example:
//
//	for commit, err := range repo.WalkCommits("HEAD") {
//	    if err != nil { return err }
//	    fmt.Println(commit.Hash[:7], commit.Message)
//	}
func (r *Repository) WalkCommits(ref string) iter.Seq2[Commit, error] {
	return func(yield func(Commit, error) bool) {
		start, err := r.resolveCommit(ref)
		if err != nil {
			yield(Commit{}, err)
			return
		}

		commits := object.NewCommitPreorderIter(start, nil, nil)
		defer commits.Close()

		err = commits.ForEach(func(c *object.Commit) error {
			if !yield(*newCommit(c), nil) {
				return storer.ErrStop
			}
			return nil
		})
		if err != nil {
			yield(Commit{}, wrapError(err, "failed to iterate commits"))
		}
	}
}

// FirstParents yields ref's commit and then its first-parent ancestors,
// following the mainline of merges the way `git log --first-parent` does.
func (r *Repository) FirstParents(ref string) iter.Seq2[Commit, error] {
	return func(yield func(Commit, error) bool) {
		current, err := r.resolveCommit(ref)
		if err != nil {
			yield(Commit{}, err)
			return
		}

		for {
			if !yield(*newCommit(current), nil) {
				return
			}
			if current.NumParents() == 0 {
				return
			}

			current, err = current.Parent(0)
			if err != nil {
				yield(Commit{}, wrapError(err, "failed to get first parent"))
				return
			}
		}
	}
}

// CountCommits returns the number of commits reachable from ref, the value
// `git rev-list --count <ref>` reports.
func (r *Repository) CountCommits(ref string) (int, error) {
	count := 0
	for _, err := range r.WalkCommits(ref) {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// Underlying returns the underlying go-git commit object.
func (c *Commit) Underlying() *object.Commit {
	return c.raw
}

// ShortHash returns the first n characters of the commit hash.
func (c *Commit) ShortHash(n int) string {
	return ShortHash(c.Hash, n)
}

// ShortHash abbreviates a full hex hash to n characters. Values of n outside
// 1..len(hash) return the hash unchanged.
func ShortHash(hash string, n int) string {
	if n <= 0 || n >= len(hash) {
		return hash
	}
	return hash[:n]
}

func (r *Repository) resolveCommit(ref string) (*object.Commit, error) {
	if ref == "" {
		return nil, wrapError(fmt.Errorf("reference is required"), "failed to resolve commit")
	}

	if ref == "HEAD" {
		if _, err := r.repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to resolve reference %q", ref))
	}

	obj, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to get commit for %q", ref))
	}

	return obj, nil
}

func newCommit(c *object.Commit) *Commit {
	return &Commit{
		Hash:      c.Hash.String(),
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Message:   c.Message,
		Timestamp: c.Author.When,
		Parents:   c.NumParents(),
		raw:       c,
	}
}
