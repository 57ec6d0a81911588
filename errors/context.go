package errors

import (
	"errors"
	"maps"
)

// asPlatformError returns err as a PlatformError, converting plain errors
// into CodeUnknown platform errors that wrap the original.
func asPlatformError(err error) PlatformError {
	var platformErr PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}
	return &platformError{
		code:           CodeUnknown,
		classification: ClassificationFatal,
		message:        err.Error(),
		cause:          err,
	}
}

// WithContext adds a single context field to an error.
// Returns a new PlatformError with the context field added.
// Existing context fields are preserved.
//
// If err is not a PlatformError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "repository", path)
//	err = errors.WithContext(err, "tag", tag)
func WithContext(err error, key string, value interface{}) PlatformError {
	if err == nil {
		return nil
	}

	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap adds multiple context fields to an error.
// Existing context fields are preserved; new fields override existing ones with the same key.
//
// If err is not a PlatformError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	platformErr := asPlatformError(err)

	newContext := make(map[string]interface{}, len(ctx))
	if existing := platformErr.Context(); existing != nil {
		maps.Copy(newContext, existing)
	}
	maps.Copy(newContext, ctx)

	return &platformError{
		code:           platformErr.Code(),
		classification: platformErr.Classification(),
		message:        platformErr.Message(),
		context:        newContext,
		cause:          platformErr.Unwrap(),
	}
}

// WithClassification overrides the classification of an error.
//
// If err is not a PlatformError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	// A cache directory that cannot be created is not worth failing the build for.
//	err = errors.WithClassification(err, errors.ClassificationRecoverable)
func WithClassification(err error, classification ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}

	platformErr := asPlatformError(err)

	return &platformError{
		code:           platformErr.Code(),
		classification: classification,
		message:        platformErr.Message(),
		context:        platformErr.Context(),
		cause:          platformErr.Unwrap(),
	}
}
