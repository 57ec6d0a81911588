package metadata

import (
	"path/filepath"
	"strings"
)

// worktreePaths returns the paths lying strictly inside root, relative to it
// and slash-separated. Symlinks are resolved where the path exists so that
// root and paths compare in the same namespace.
func worktreePaths(root string, paths []string) []string {
	if root == "" || len(paths) == 0 {
		return nil
	}
	root = resolvePath(root)

	var rel []string
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		r, err := filepath.Rel(root, resolvePath(p))
		if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			continue
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel
}

func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	// The directory may not exist yet; resolve its nearest existing parent.
	dir, base := filepath.Split(abs)
	if dir = filepath.Clean(dir); dir != abs {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, base)
		}
	}
	return abs
}
