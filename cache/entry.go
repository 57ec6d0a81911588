package cache

import (
	"strings"

	"github.com/jmgilman/gitver/metadata"
	"github.com/jmgilman/gitver/version"
)

// SchemaVersion is bumped whenever Entry changes incompatibly.
const SchemaVersion = 2

const dirtySuffix = ".dirty"

// Selection holds the settings that decide which tag describes HEAD. An
// entry written under another selection is a miss.
type Selection struct {
	Backend   string `yaml:"backend"`
	TagPrefix string `yaml:"tag-prefix"`
	TagMatch  string `yaml:"tag-match"`
}

// Entry is the on-disk form of a cached version.
type Entry struct {
	Schema     int       `yaml:"schema"`
	Repository string    `yaml:"repository"`
	Selection  Selection `yaml:",inline"`
	Commit     string    `yaml:"commit"`
	Dirty      bool      `yaml:"dirty"`
	Version    string    `yaml:"version"`
	Major      uint64    `yaml:"major"`
	Minor      uint64    `yaml:"minor"`
	Patch      uint64    `yaml:"patch"`
	Distance   int       `yaml:"distance"`
	Tagged     bool      `yaml:"tagged"`
}

func newEntry(repository string, sel Selection, v *version.ResolvedVersion, head metadata.Head) Entry {
	return Entry{
		Schema:     SchemaVersion,
		Repository: repository,
		Selection:  sel,
		Commit:     head.CommitID,
		Dirty:      head.Dirty,
		Version:    v.Short(),
		Major:      v.Major,
		Minor:      v.Minor,
		Patch:      v.Patch,
		Distance:   v.Distance,
		Tagged:     v.Tagged,
	}
}

// resolved rebuilds the version an entry describes. The second result is
// false when the stored version string does not re-render from the fields.
func (e Entry) resolved() (*version.ResolvedVersion, bool) {
	if e.Distance < 0 {
		return nil, false
	}

	v := &version.ResolvedVersion{
		Major:    e.Major,
		Minor:    e.Minor,
		Patch:    e.Patch,
		Distance: e.Distance,
		CommitID: e.Commit,
		Tagged:   e.Tagged,
		Cached:   true,
	}
	v.Release = e.Tagged && e.Distance == 0 && e.Version == v.Core()
	v.Dirty = e.Dirty && strings.HasSuffix(e.Version, dirtySuffix)

	return v, v.Short() == e.Version
}
