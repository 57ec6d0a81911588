package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Returns CodeUnknown if the error is nil or not a PlatformError.
//
// The code is taken from the outermost PlatformError in the chain.
//
// Example:
//
//	if errors.GetCode(err) == errors.CodeVersionParse {
//	    // the tag is malformed
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Code()
	}

	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if platformErr, ok := err.(PlatformError); ok && platformErr.Code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetClassification extracts the ErrorClassification from an error.
// Returns ClassificationFatal if the error is nil or not a PlatformError.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationFatal
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Classification()
	}

	return ClassificationFatal
}

// IsRecoverable returns true if the error is classified as recoverable.
// Returns false if the error is nil or not a PlatformError.
func IsRecoverable(err error) bool {
	return GetClassification(err).IsRecoverable()
}

// IsRepositoryError reports whether err is, at its outermost level, a repository error.
func IsRepositoryError(err error) bool {
	return GetCode(err) == CodeRepository
}

// IsVersionParseError reports whether err is, at its outermost level, a version parse error.
func IsVersionParseError(err error) bool {
	return GetCode(err) == CodeVersionParse
}
