package errors

import (
	"fmt"
	"maps"
)

// platformError is the concrete implementation of PlatformError.
// It is private to enforce construction through package functions.
type platformError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error returns the string representation of the error.
// Format: "[CODE] message" or "[CODE] message: cause" if cause is present.
func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode {
	return e.code
}

func (e *platformError) Classification() ErrorClassification {
	return e.classification
}

func (e *platformError) Message() string {
	return e.message
}

// Context returns a copy of the context map, or nil if none was attached.
func (e *platformError) Context() map[string]interface{} {
	if e.context == nil {
		return nil
	}
	return maps.Clone(e.context)
}

func (e *platformError) Unwrap() error {
	return e.cause
}
