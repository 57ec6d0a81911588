// Package config holds the settings of a gitver invocation and loads them
// from flags, GITVER_ environment variables and an optional YAML file.
package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jmgilman/gitver/cache"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/internal/logger"
	"github.com/jmgilman/gitver/metadata"
	"github.com/jmgilman/gitver/version"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. GITVER_CACHE.
	EnvPrefix = "GITVER"

	// DefaultFilename is read from the working directory when no config
	// file is given explicitly.
	DefaultFilename = ".gitver.yaml"

	// DefaultLogLevel keeps stderr quiet unless something fails.
	DefaultLogLevel = "error"

	minAbbrev = 4
	maxAbbrev = 40
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyGitDir         = "git-dir"
	KeyTimestamp      = "timestamp"
	KeyCache          = "cache"
	KeyCacheDir       = "cache-dir"
	KeyBackend        = "backend"
	KeyDefaultVersion = "default-version"
	KeyShortRelease   = "short-release"
	KeyDirty          = "dirty"
	KeyTagPrefix      = "tag-prefix"
	KeyTagMatch       = "tag-match"
	KeyAbbrev         = "abbrev"
	KeyLogLevel       = "log-level"
)

// Config is the complete set of options for one invocation.
type Config struct {
	// GitDir is the repository to version.
	GitDir string `mapstructure:"git-dir" yaml:"git-dir"`
	// Timestamp appends +<UTC timestamp> to freshly computed versions.
	Timestamp bool `mapstructure:"timestamp" yaml:"timestamp"`
	// Cache enables cache reads and writes.
	Cache bool `mapstructure:"cache" yaml:"cache"`
	// CacheDir holds the cache entries.
	CacheDir string `mapstructure:"cache-dir" yaml:"cache-dir"`
	// Backend selects how git metadata is read: go-git or git.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// DefaultVersion is the core used when no tag is reachable.
	DefaultVersion string `mapstructure:"default-version" yaml:"default-version"`
	// ShortRelease prints the bare core for a clean, exactly tagged HEAD.
	ShortRelease bool `mapstructure:"short-release" yaml:"short-release"`
	// Dirty detects uncommitted changes and marks the version .dirty.
	Dirty bool `mapstructure:"dirty" yaml:"dirty"`
	// TagPrefix restricts tags to those starting with it.
	TagPrefix string `mapstructure:"tag-prefix" yaml:"tag-prefix"`
	// TagMatch restricts tags to those matching a glob, like git describe --match.
	TagMatch string `mapstructure:"tag-match" yaml:"tag-match"`
	// Abbrev is the commit id length.
	Abbrev int `mapstructure:"abbrev" yaml:"abbrev"`
	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		CacheDir:       cache.DefaultDir,
		Backend:        metadata.BackendGoGit,
		DefaultVersion: version.DefaultCore,
		Abbrev:         metadata.DefaultAbbrev,
		LogLevel:       DefaultLogLevel,
	}
}

// SetDefaults registers every key with its default value. Keys must be known
// to viper for environment variables to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyGitDir, d.GitDir)
	v.SetDefault(KeyTimestamp, d.Timestamp)
	v.SetDefault(KeyCache, d.Cache)
	v.SetDefault(KeyCacheDir, d.CacheDir)
	v.SetDefault(KeyBackend, d.Backend)
	v.SetDefault(KeyDefaultVersion, d.DefaultVersion)
	v.SetDefault(KeyShortRelease, d.ShortRelease)
	v.SetDefault(KeyDirty, d.Dirty)
	v.SetDefault(KeyTagPrefix, d.TagPrefix)
	v.SetDefault(KeyTagMatch, d.TagMatch)
	v.SetDefault(KeyAbbrev, d.Abbrev)
	v.SetDefault(KeyLogLevel, d.LogLevel)
}

// Load reads the configuration from v. Flags must already be bound to v.
//
// When path is empty, DefaultFilename is read if it exists in the working
// directory. The file is checked against the config schema before use.
// Precedence is flags, then environment, then file, then defaults. The merged
// result is not validated; see Validate.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path == "" && isFile(DefaultFilename) {
		path = DefaultFilename
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to read config file %q", path)
		}
		if err := ValidateFile(path, data); err != nil {
			return nil, err
		}

		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to parse config file %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "failed to decode configuration")
	}

	return &cfg, nil
}

// Validate checks every setting except GitDir, which only some commands
// need. See RequireGitDir.
func (c *Config) Validate() error {
	switch c.Backend {
	case metadata.BackendGoGit, metadata.BackendCLI:
	default:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"unknown backend %q (want %q or %q)", c.Backend, metadata.BackendGoGit, metadata.BackendCLI)
	}

	if c.Abbrev < minAbbrev || c.Abbrev > maxAbbrev {
		return platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"abbrev must be between %d and %d, got %d", minAbbrev, maxAbbrev, c.Abbrev)
	}

	if _, err := version.ParseDefault(c.DefaultVersion); err != nil {
		return err
	}

	if c.TagMatch != "" {
		if _, err := glob.Compile(c.TagMatch); err != nil {
			return platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "invalid tag pattern %q", c.TagMatch)
		}
		if !strings.HasPrefix(c.TagMatch, c.TagPrefix) {
			return platformerrors.Newf(platformerrors.CodeInvalidConfig,
				"tag pattern %q must start with tag prefix %q", c.TagMatch, c.TagPrefix)
		}
	}

	if _, ok := logger.ParseLogLevel(c.LogLevel); !ok {
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "unknown log level %q", c.LogLevel)
	}

	if c.Cache && c.CacheDir == "" {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "cache directory must be set when the cache is enabled")
	}

	return nil
}

// RequireGitDir reports a configuration error when no repository is set.
func (c *Config) RequireGitDir() error {
	if strings.TrimSpace(c.GitDir) == "" {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "a repository path is required (-g, --git-dir)")
	}
	return nil
}

// VersionOptions returns the formatting options.
func (c *Config) VersionOptions() version.Options {
	return version.Options{
		IncludeTimestamp: c.Timestamp,
		Default:          c.DefaultVersion,
		ShortRelease:     c.ShortRelease,
		MarkDirty:        c.Dirty,
	}
}

// MetadataOptions returns the metadata source options.
func (c *Config) MetadataOptions() metadata.Options {
	return metadata.Options{
		Backend:     c.Backend,
		Abbrev:      c.Abbrev,
		TagPrefix:   c.TagPrefix,
		TagMatch:    c.TagMatch,
		DetectDirty: c.Dirty || c.ShortRelease,
		IgnorePaths: []string{c.CacheDir},
	}
}

// CacheSelection returns the tag settings cache entries are keyed on.
func (c *Config) CacheSelection() cache.Selection {
	return cache.Selection{
		Backend:   c.Backend,
		TagPrefix: c.TagPrefix,
		TagMatch:  c.TagMatch,
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
