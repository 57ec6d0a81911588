package version

import (
	"testing"
	"time"

	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 17, 9, 30, 5, 0, time.UTC)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  *metadata.RawMetadata
		opts Options
		want string
	}{
		{
			name: "tag with distance",
			raw:  &metadata.RawMetadata{Tag: "0.2.11", Distance: 44, CommitID: "630dcd2"},
			want: "0.2.11-44.630dcd2",
		},
		{
			name: "timestamp",
			raw:  &metadata.RawMetadata{Tag: "0.2.11", Distance: 44, CommitID: "630dcd2"},
			opts: Options{IncludeTimestamp: true, Now: func() time.Time { return fixedNow }},
			want: "0.2.11-44.630dcd2+20240517093005",
		},
		{
			name: "timestamp is rendered in UTC",
			raw:  &metadata.RawMetadata{Tag: "1.0.0", Distance: 1, CommitID: "abc1234"},
			opts: Options{IncludeTimestamp: true, Now: func() time.Time {
				return time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600))
			}},
			want: "1.0.0-1.abc1234+20240101000000",
		},
		{
			name: "exact tag keeps the suffix by default",
			raw:  &metadata.RawMetadata{Tag: "1.0.0", Distance: 0, CommitID: "abc1234"},
			want: "1.0.0-0.abc1234",
		},
		{
			name: "short release on exact tag",
			raw:  &metadata.RawMetadata{Tag: "1.0.0", Distance: 0, CommitID: "abc1234"},
			opts: Options{ShortRelease: true},
			want: "1.0.0",
		},
		{
			name: "short release does not apply past the tag",
			raw:  &metadata.RawMetadata{Tag: "1.0.0", Distance: 2, CommitID: "abc1234"},
			opts: Options{ShortRelease: true},
			want: "1.0.0-2.abc1234",
		},
		{
			name: "short release does not apply to dirty trees",
			raw:  &metadata.RawMetadata{Tag: "1.0.0", Distance: 0, CommitID: "abc1234", Dirty: true},
			opts: Options{ShortRelease: true},
			want: "1.0.0-0.abc1234",
		},
		{
			name: "short release does not apply without a tag",
			raw:  &metadata.RawMetadata{Distance: 0, CommitID: "abc1234"},
			opts: Options{ShortRelease: true},
			want: "0.0.0-0.abc1234",
		},
		{
			name: "leading v is accepted",
			raw:  &metadata.RawMetadata{Tag: "v2.3.4", Distance: 7, CommitID: "deadbee"},
			want: "2.3.4-7.deadbee",
		},
		{
			name: "no tag uses the default core",
			raw:  &metadata.RawMetadata{Distance: 12, CommitID: "abc1234"},
			want: "0.0.0-12.abc1234",
		},
		{
			name: "configured default",
			raw:  &metadata.RawMetadata{Distance: 3, CommitID: "abc1234"},
			opts: Options{Default: "0.1.0"},
			want: "0.1.0-3.abc1234",
		},
		{
			name: "dirty marker",
			raw:  &metadata.RawMetadata{Tag: "0.2.11", Distance: 44, CommitID: "630dcd2", Dirty: true},
			opts: Options{MarkDirty: true},
			want: "0.2.11-44.630dcd2.dirty",
		},
		{
			name: "dirty without marking",
			raw:  &metadata.RawMetadata{Tag: "0.2.11", Distance: 44, CommitID: "630dcd2", Dirty: true},
			want: "0.2.11-44.630dcd2",
		},
		{
			name: "dirty marker before timestamp",
			raw:  &metadata.RawMetadata{Tag: "0.2.11", Distance: 44, CommitID: "630dcd2", Dirty: true},
			opts: Options{MarkDirty: true, IncludeTimestamp: true, Now: func() time.Time { return fixedNow }},
			want: "0.2.11-44.630dcd2.dirty+20240517093005",
		},
		{
			name: "full length commit id",
			raw:  &metadata.RawMetadata{Tag: "1.0.0", Distance: 1, CommitID: "630dcd2a1b7c9e0f630dcd2a1b7c9e0f630dcd2a"},
			want: "1.0.0-1.630dcd2a1b7c9e0f630dcd2a1b7c9e0f630dcd2a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.raw, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.False(t, got.Cached)
		})
	}
}

func TestResolve_Fields(t *testing.T) {
	raw := &metadata.RawMetadata{Tag: "0.2.11", TagName: "0.2.11", Distance: 44, CommitID: "630dcd2"}

	v, err := Resolve(raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), v.Major)
	assert.Equal(t, uint64(2), v.Minor)
	assert.Equal(t, uint64(11), v.Patch)
	assert.Equal(t, 44, v.Distance)
	assert.Equal(t, "630dcd2", v.CommitID)
	assert.True(t, v.Tagged)
	assert.True(t, v.Timestamp.IsZero())
	assert.Equal(t, "0.2.11", v.Core())
	assert.Equal(t, "0.2.11", v.Semver().String())
	assert.Equal(t, v.Short(), v.String())
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		raw      *metadata.RawMetadata
		opts     Options
		wantCode platformerrors.ErrorCode
	}{
		{
			name:     "two-part tag",
			raw:      &metadata.RawMetadata{Tag: "v1.2", Distance: 1, CommitID: "abc1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "non-numeric tag",
			raw:      &metadata.RawMetadata{Tag: "latest", Distance: 1, CommitID: "abc1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "prerelease tag",
			raw:      &metadata.RawMetadata{Tag: "1.2.3-rc1", Distance: 1, CommitID: "abc1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "build metadata tag",
			raw:      &metadata.RawMetadata{Tag: "1.2.3+build", Distance: 1, CommitID: "abc1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "tag reduced to nothing by a prefix",
			raw:      &metadata.RawMetadata{TagName: "release", Distance: 1, CommitID: "abc1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "negative distance",
			raw:      &metadata.RawMetadata{Tag: "1.0.0", Distance: -1, CommitID: "abc1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "uppercase commit id",
			raw:      &metadata.RawMetadata{Tag: "1.0.0", Distance: 1, CommitID: "ABC1234"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "short commit id",
			raw:      &metadata.RawMetadata{Tag: "1.0.0", Distance: 1, CommitID: "abc"},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "empty commit id",
			raw:      &metadata.RawMetadata{Tag: "1.0.0", Distance: 1},
			wantCode: platformerrors.CodeVersionParse,
		},
		{
			name:     "invalid default",
			raw:      &metadata.RawMetadata{Distance: 1, CommitID: "abc1234"},
			opts:     Options{Default: "one"},
			wantCode: platformerrors.CodeInvalidConfig,
		},
		{
			name:     "nil metadata",
			wantCode: platformerrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Resolve(tt.raw, tt.opts)
			require.Error(t, err)
			assert.Nil(t, v)
			assert.Equal(t, tt.wantCode, platformerrors.GetCode(err))
		})
	}
}

func TestResolve_MalformedTagExitCode(t *testing.T) {
	_, err := Resolve(&metadata.RawMetadata{Tag: "v1.2", Distance: 0, CommitID: "630dcd2"}, Options{})
	require.Error(t, err)

	assert.True(t, platformerrors.IsVersionParseError(err))
	assert.Equal(t, platformerrors.ExitVersionParse, platformerrors.ExitCode(err))
	assert.Contains(t, err.Error(), `"v1.2"`)
}

func TestParseTag(t *testing.T) {
	v, err := ParseTag("v10.20.30")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v.Major)
	assert.Equal(t, uint64(20), v.Minor)
	assert.Equal(t, uint64(30), v.Patch)

	for _, bad := range []string{"", "v", "1", "1.2", "1.2.3.4", "a.b.c", "-1.0.0", "1.02.3"} {
		_, err := ParseTag(bad)
		assert.True(t, platformerrors.IsVersionParseError(err), "tag %q", bad)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	tagged := &ResolvedVersion{Major: 1, Minor: 2, Patch: 3, Distance: 4, CommitID: "abc1234", Tagged: true}
	raw := tagged.Metadata()
	assert.Equal(t, "1.2.3", raw.Tag)
	assert.Equal(t, 4, raw.Distance)

	again, err := Resolve(raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, tagged.Short(), again.Short())

	untagged := &ResolvedVersion{Distance: 9, CommitID: "abc1234"}
	assert.False(t, untagged.Metadata().HasTag())
	assert.Empty(t, untagged.Metadata().Tag)
}
