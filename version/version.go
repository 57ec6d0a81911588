package version

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/metadata"
)

// TimestampLayout renders the +timestamp build suffix (UTC).
const TimestampLayout = "20060102150405"

// DefaultCore is the version used when no tag is reachable.
const DefaultCore = "0.0.0"

var commitIDPattern = regexp.MustCompile(`^[0-9a-f]{4,40}$`)

// ResolvedVersion is a formatted version and the parts it was built from.
type ResolvedVersion struct {
	Major uint64
	Minor uint64
	Patch uint64

	Distance int
	CommitID string

	// Tagged is false when the core came from the default version.
	Tagged bool
	// Dirty renders a .dirty marker after the commit id.
	Dirty bool
	// Release renders the bare core, without the distance suffix.
	Release bool

	// Timestamp is zero unless freshly computed with IncludeTimestamp.
	Timestamp time.Time
	// Cached reports that the value was served from the cache.
	Cached bool
}

// Core returns major.minor.patch.
func (v *ResolvedVersion) Core() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Short returns the version without the timestamp. This is the form stored
// in the cache.
func (v *ResolvedVersion) Short() string {
	if v.Release {
		return v.Core()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s-%d.%s", v.Core(), v.Distance, v.CommitID)
	if v.Dirty {
		b.WriteString(".dirty")
	}
	return b.String()
}

// String returns the canonical version, including +timestamp when set.
func (v *ResolvedVersion) String() string {
	if v.Timestamp.IsZero() {
		return v.Short()
	}
	return v.Short() + "+" + v.Timestamp.UTC().Format(TimestampLayout)
}

// Semver returns the core as a semver.Version.
func (v *ResolvedVersion) Semver() semver.Version {
	return semver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// Metadata rebuilds the raw metadata the version describes. An untagged
// version yields no tag so the current default applies when re-resolved.
func (v *ResolvedVersion) Metadata() *metadata.RawMetadata {
	raw := &metadata.RawMetadata{
		Distance: v.Distance,
		CommitID: v.CommitID,
		Dirty:    v.Dirty,
	}
	if v.Tagged {
		raw.Tag = v.Core()
		raw.TagName = raw.Tag
	}
	return raw
}

// Options controls formatting.
type Options struct {
	// IncludeTimestamp appends +<UTC yyyymmddHHMMSS>.
	IncludeTimestamp bool
	// Now supplies the timestamp. Nil means time.Now.
	Now func() time.Time
	// Default is the core used when no tag is reachable. Empty means 0.0.0.
	Default string
	// ShortRelease renders a clean, exactly tagged HEAD as the bare core.
	ShortRelease bool
	// MarkDirty appends .dirty after the commit id for dirty trees.
	MarkDirty bool
}

// Resolve formats raw according to opts.
//
// A malformed tag, commit id or negative distance yields VERSION_PARSE_ERROR.
// An invalid Default yields INVALID_CONFIGURATION.
func Resolve(raw *metadata.RawMetadata, opts Options) (*ResolvedVersion, error) {
	if raw == nil {
		return nil, platformerrors.New(platformerrors.CodeInternal, "no metadata to resolve")
	}
	if raw.Distance < 0 {
		return nil, platformerrors.Newf(platformerrors.CodeVersionParse, "negative commit distance %d", raw.Distance)
	}
	if !commitIDPattern.MatchString(raw.CommitID) {
		return nil, platformerrors.Newf(platformerrors.CodeVersionParse, "malformed commit id %q", raw.CommitID)
	}

	tagged := raw.Tag != "" || raw.TagName != ""

	var (
		core semver.Version
		err  error
	)
	if tagged {
		core, err = ParseTag(raw.Tag)
	} else {
		core, err = ParseDefault(opts.Default)
	}
	if err != nil {
		return nil, err
	}

	v := &ResolvedVersion{
		Major:    core.Major,
		Minor:    core.Minor,
		Patch:    core.Patch,
		Distance: raw.Distance,
		CommitID: raw.CommitID,
		Tagged:   tagged,
		Dirty:    raw.Dirty && opts.MarkDirty,
		Release:  opts.ShortRelease && tagged && raw.Distance == 0 && !raw.Dirty,
	}

	if opts.IncludeTimestamp {
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		v.Timestamp = now().UTC()
	}

	return v, nil
}

// ParseTag parses a tag name as major.minor.patch. A leading v is accepted;
// pre-release and build parts are not.
func ParseTag(tag string) (semver.Version, error) {
	v, err := parseCore(tag)
	if err != nil {
		return semver.Version{}, platformerrors.Wrapf(err, platformerrors.CodeVersionParse,
			"tag %q is not a major.minor.patch version", tag)
	}
	return v, nil
}

// ParseDefault parses the configured default core. Empty means DefaultCore.
func ParseDefault(s string) (semver.Version, error) {
	if s == "" {
		s = DefaultCore
	}
	v, err := parseCore(s)
	if err != nil {
		return semver.Version{}, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig,
			"default version %q is not a major.minor.patch version", s)
	}
	return v, nil
}

func parseCore(s string) (semver.Version, error) {
	v, err := semver.Parse(strings.TrimPrefix(s, "v"))
	if err != nil {
		return semver.Version{}, err
	}
	if len(v.Pre) > 0 || len(v.Build) > 0 {
		return semver.Version{}, fmt.Errorf("unexpected suffix in %q", s)
	}
	return v, nil
}
