package git

import (
	"errors"
	"path"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// IsDirty reports whether the working tree has uncommitted changes,
// including untracked files. Changes at or below any of the ignored paths
// are not counted; ignored paths are slash-separated and relative to the
// working tree root. Bare repositories are never dirty.
func (r *Repository) IsDirty(ignore ...string) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return false, nil
		}
		return false, wrapError(err, "failed to get worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return false, wrapError(err, "failed to get worktree status")
	}

	for file, s := range status {
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}
		if isIgnored(file, ignore) {
			continue
		}
		return true, nil
	}

	return false, nil
}

// Root returns the root of the repository filesystem: the working tree for
// standard repositories, the repository directory for bare ones.
func (r *Repository) Root() string {
	return r.fs.Root()
}

func isIgnored(file string, ignore []string) bool {
	for _, dir := range ignore {
		dir = path.Clean(dir)
		if dir == "." || dir == "" {
			continue
		}
		if file == dir || strings.HasPrefix(file, dir+"/") {
			return true
		}
	}
	return false
}
