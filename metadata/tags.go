package metadata

import (
	"slices"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/gobwas/glob"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/git"
)

// tagFilter decides which tag names may describe a commit.
type tagFilter struct {
	prefix string
	match  glob.Glob
}

// newTagFilter compiles pattern, a glob over the full tag name in the style
// of git describe --match. An empty pattern matches every name.
func newTagFilter(prefix, pattern string) (tagFilter, error) {
	f := tagFilter{prefix: prefix}
	if pattern == "" {
		return f, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return tagFilter{}, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "invalid tag pattern %q", pattern)
	}
	f.match = g
	return f, nil
}

func (f tagFilter) allows(name string) bool {
	if !strings.HasPrefix(name, f.prefix) {
		return false
	}
	return f.match == nil || f.match.Match(name)
}

type candidate struct {
	name    string
	version semver.Version
	valid   bool
}

// selectTag picks the tag describing a commit that carries tags. Names that
// parse as a release version win over others, the highest version first,
// then name order. Tags the filter rejects are ignored.
func selectTag(tags []git.Tag, filter tagFilter) (string, bool) {
	candidates := make([]candidate, 0, len(tags))
	for _, tag := range tags {
		if !filter.allows(tag.Name) {
			continue
		}
		v, ok := releaseVersion(strings.TrimPrefix(tag.Name, filter.prefix))
		candidates = append(candidates, candidate{name: tag.Name, version: v, valid: ok})
	}
	if len(candidates) == 0 {
		return "", false
	}

	best := slices.MinFunc(candidates, compareCandidates)
	return best.name, true
}

func compareCandidates(a, b candidate) int {
	if a.valid != b.valid {
		if a.valid {
			return -1
		}
		return 1
	}
	if a.valid {
		if c := b.version.Compare(a.version); c != 0 {
			return c
		}
	}
	return strings.Compare(a.name, b.name)
}

// releaseVersion parses M.m.p with an optional leading v.
func releaseVersion(name string) (semver.Version, bool) {
	v, err := semver.Parse(strings.TrimPrefix(name, "v"))
	if err != nil || len(v.Pre) > 0 || len(v.Build) > 0 {
		return semver.Version{}, false
	}
	return v, true
}
