package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/internal/logger"
	"github.com/jmgilman/gitver/metadata"
	"github.com/jmgilman/gitver/version"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultDir is the cache directory used when none is configured, relative
// to the working directory.
const DefaultDir = ".gitver"

const (
	entryExt   = ".yaml"
	tempMarker = ".tmp-"
	keyLength  = 16
)

// Store reads and writes cache entries inside one directory.
type Store struct {
	dir       string
	fs        billy.Filesystem
	log       *zap.SugaredLogger
	selection Selection
}

// Option configures a Store.
type Option func(*Store)

// WithFilesystem sets the billy filesystem holding the cache directory.
// Without it the local filesystem is used.
//
// Example:
//
//	store := cache.New("/cache", cache.WithFilesystem(memfs.New()))
func WithFilesystem(fs billy.Filesystem) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithSelection sets the tag settings entries are written with and must
// match to be loaded.
func WithSelection(sel Selection) Option {
	return func(s *Store) {
		s.selection = sel
	}
}

// WithLogger sets the logger used for miss and fault reporting.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New returns a Store keeping entries in dir. The directory is created on
// the first Store call.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = DefaultDir
	}

	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		if abs, err := filepath.Abs(dir); err == nil {
			s.dir = abs
		}
		s.fs = osfs.New("/")
	}

	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the entry path for the repository at repoPath.
func (s *Store) Path(repoPath string) string {
	sum := sha256.Sum256([]byte(absPath(repoPath)))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])[:keyLength]+entryExt)
}

// TryLoad returns the cached version for repoPath when the entry matches
// head. Any fault is reported as a miss.
func (s *Store) TryLoad(repoPath string, head metadata.Head) (*version.ResolvedVersion, bool) {
	path := s.Path(repoPath)
	log := s.logger().With("path", path)

	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugw("no cache entry")
		} else {
			log.Debugw("cache entry unreadable", "error", err)
		}
		return nil, false
	}

	var entry Entry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		log.Debugw("cache entry corrupt", "error", err)
		return nil, false
	}

	switch {
	case entry.Schema != SchemaVersion:
		log.Debugw("cache entry has another schema", "schema", entry.Schema)
		return nil, false
	case entry.Repository != absPath(repoPath):
		log.Debugw("cache entry belongs to another repository", "repository", entry.Repository)
		return nil, false
	case entry.Selection != s.selection:
		log.Debugw("cache entry was written with other tag settings",
			"backend", entry.Selection.Backend, "tag-prefix", entry.Selection.TagPrefix, "tag-match", entry.Selection.TagMatch)
		return nil, false
	case entry.Commit != head.CommitID:
		log.Debugw("cache entry is stale", "cached", entry.Commit, "head", head.CommitID)
		return nil, false
	case entry.Dirty != head.Dirty:
		log.Debugw("cache entry has another working tree state", "dirty", entry.Dirty)
		return nil, false
	}

	v, ok := entry.resolved()
	if !ok {
		log.Debugw("cache entry is inconsistent", "version", entry.Version)
		return nil, false
	}

	return v, true
}

// Store writes the entry for repoPath. The entry is written to a temporary
// file which is renamed into place; the temporary file is removed when any
// step fails.
func (s *Store) Store(repoPath string, v *version.ResolvedVersion, head metadata.Head) error {
	if v == nil {
		return platformerrors.New(platformerrors.CodeCache, "no version to store")
	}

	data, err := yaml.Marshal(newEntry(absPath(repoPath), s.selection, v, head))
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeCache, "failed to encode cache entry")
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeCache, "failed to create cache directory %q", s.dir)
	}

	path := s.Path(repoPath)
	tmp, err := util.TempFile(s.fs, s.dir, filepath.Base(path)+tempMarker)
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeCache, "failed to create temporary cache file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return platformerrors.Wrap(err, platformerrors.CodeCache, "failed to write temporary cache file")
	}

	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return platformerrors.Wrap(err, platformerrors.CodeCache, "failed to close temporary cache file")
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return platformerrors.Wrapf(err, platformerrors.CodeCache, "failed to move cache entry into %q", path)
	}

	s.logger().Debugw("cache entry written", "path", path, "version", v.Short())
	return nil
}

// Clear removes the entry for repoPath. A missing entry is not an error.
func (s *Store) Clear(repoPath string) error {
	path := s.Path(repoPath)
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return platformerrors.Wrapf(err, platformerrors.CodeCache, "failed to remove cache entry %q", path)
	}
	return nil
}

// ClearAll removes every entry and leftover temporary file in the cache
// directory and returns how many files were removed. Other files are kept.
func (s *Store) ClearAll() (int, error) {
	infos, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, platformerrors.Wrapf(err, platformerrors.CodeCache, "failed to list cache directory %q", s.dir)
	}

	removed := 0
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !(strings.HasSuffix(name, entryExt) || strings.Contains(name, entryExt+tempMarker)) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, platformerrors.Wrapf(err, platformerrors.CodeCache, "failed to remove %q", name)
		}
		removed++
	}

	return removed, nil
}

func (s *Store) logger() *zap.SugaredLogger {
	if s.log != nil {
		return s.log
	}
	return logger.Logger()
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
