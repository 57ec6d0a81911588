package errors

import (
	"fmt"
	"maps"
)

// Wrap wraps an error with a code and message while preserving the original error.
// The wrapped error is accessible via Unwrap() and compatible with errors.Is and errors.As.
//
// The classification always follows the new code: wrapping a cache fault as a
// repository error makes it fatal, and the outermost code decides how callers react.
//
// Returns nil if err is nil.
//
// Example:
//
//	repo, err := git.Open(path)
//	if err != nil {
//	    return errors.Wrap(err, errors.CodeRepository, "failed to open repository")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}

	return &platformError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps an error with a formatted message while preserving the original error.
//
// Returns nil if err is nil.
//
// Example:
//
//	if _, err := semver.Parse(name); err != nil {
//	    return errors.Wrapf(err, errors.CodeVersionParse, "invalid tag %q", name)
//	}
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}

	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps an error and attaches context metadata in a single operation.
// The context map is copied to prevent external mutation.
//
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeRepository, "describe failed", map[string]interface{}{
//	    "repository": path,
//	    "backend":    "git",
//	})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	var contextCopy map[string]interface{}
	if ctx != nil {
		contextCopy = maps.Clone(ctx)
	}

	return &platformError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
		context:        contextCopy,
		cause:          err,
	}
}
