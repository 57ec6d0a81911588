package version

import (
	"context"

	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/internal/logger"
	"github.com/jmgilman/gitver/metadata"
)

// SourceFactory opens the metadata source for a repository path.
type SourceFactory func(repoPath string) (metadata.Source, error)

// Cache stores resolved versions keyed by repository and HEAD state.
// Implementations never fail a lookup: every fault is a miss.
type Cache interface {
	TryLoad(repoPath string, head metadata.Head) (*ResolvedVersion, bool)
	Store(repoPath string, v *ResolvedVersion, head metadata.Head) error
}

// Resolver resolves the version of a repository, consulting a cache first
// when one is configured.
type Resolver struct {
	open    SourceFactory
	cache   Cache
	options Options
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache enables cache reads and writes.
func WithCache(c Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = c
	}
}

// NewResolver returns a Resolver reading metadata through open.
func NewResolver(open SourceFactory, opts Options, resolverOpts ...ResolverOption) *Resolver {
	r := &Resolver{open: open, options: opts}
	for _, opt := range resolverOpts {
		opt(r)
	}
	return r
}

// Resolve returns the version of the repository at repoPath.
//
// HEAD is read first. On a cache hit the describe query is skipped and the
// result carries no timestamp. On a miss the version is computed, and stored
// when a cache is configured. Cache write failures are logged and ignored.
// Source errors carry the repository path in their context.
func (r *Resolver) Resolve(ctx context.Context, repoPath string) (*ResolvedVersion, error) {
	ctx = logger.WithKV(ctx, "repository", repoPath)

	src, err := r.open(repoPath)
	if err != nil {
		return nil, platformerrors.WithContext(err, "repository", repoPath)
	}

	head, err := src.Head(ctx)
	if err != nil {
		return nil, platformerrors.WithContext(err, "repository", repoPath)
	}

	if r.cache != nil {
		if v, ok := r.fromCache(ctx, repoPath, head); ok {
			return v, nil
		}
		logger.DebugKV(ctx, "cache miss", "commit", head.CommitID)
	}

	raw, err := src.Describe(ctx)
	if err != nil {
		return nil, platformerrors.WithContext(err, "repository", repoPath)
	}
	logger.DebugKV(ctx, "described HEAD", "tag", raw.TagName, "distance", raw.Distance, "commit", raw.CommitID)

	v, err := Resolve(raw, r.options)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		// Key on what was described, in case HEAD moved since the lookup.
		described := metadata.Head{CommitID: raw.CommitID, Dirty: raw.Dirty}
		if err := r.cache.Store(repoPath, v, described); err != nil {
			if platformerrors.IsRecoverable(err) {
				logger.DebugKV(ctx, "cache store failed", "error", err)
			} else {
				logger.WarnKV(ctx, "cache store failed", "error", err)
			}
		}
	}

	return v, nil
}

// fromCache re-renders a cached entry with the current options so formatting
// flags apply to cached values too.
func (r *Resolver) fromCache(ctx context.Context, repoPath string, head metadata.Head) (*ResolvedVersion, bool) {
	cached, ok := r.cache.TryLoad(repoPath, head)
	if !ok {
		return nil, false
	}

	raw := cached.Metadata()
	raw.Dirty = head.Dirty

	opts := r.options
	opts.IncludeTimestamp = false

	v, err := Resolve(raw, opts)
	if err != nil {
		logger.DebugKV(ctx, "cached entry unusable", "error", err)
		return nil, false
	}
	v.Cached = true

	logger.DebugKV(ctx, "cache hit", "version", v.Short())
	return v, true
}
