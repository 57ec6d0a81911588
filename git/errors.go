package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/gitver/errors"
)

// ErrNoCommits is returned when HEAD does not resolve to a commit yet.
var ErrNoCommits = platformerrors.New(platformerrors.CodeRepository, "repository has no commits")

// wrapError wraps an error with context, classifying it as a platform error type.
// It preserves the original error chain for errors.Is/errors.As compatibility.
// If err is nil, returns nil.
func wrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", context, classifyError(err))
}

// classifyError maps go-git errors to platform error types.
// Unknown errors are passed through unchanged to preserve their original information.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var platformErr platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return err
	}

	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		return platformerrors.Wrap(err, platformerrors.CodeRepository, "repository does not exist")
	case errors.Is(err, gogit.ErrRepositoryAlreadyExists):
		return platformerrors.Wrap(err, platformerrors.CodeAlreadyExists, "repository already exists")
	case errors.Is(err, gogit.ErrIsBareRepository):
		return platformerrors.Wrap(err, platformerrors.CodeConflict, "repository is bare")
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "reference not found")
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "object not found")
	case errors.Is(err, gogit.ErrMissingAuthor):
		return platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "author is required")
	case errors.Is(err, gogit.ErrEmptyCommit):
		return platformerrors.Wrap(err, platformerrors.CodeConflict, "cannot create empty commit: working tree is clean")
	}

	return err
}
