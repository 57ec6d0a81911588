package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability.
type ErrorCode string

const (
	// Domain errors.

	// CodeRepository indicates the target path is not a usable repository:
	// it does not exist, is not a git repository, or has no commits.
	CodeRepository ErrorCode = "REPOSITORY_ERROR"

	// CodeVersionParse indicates repository metadata could not be turned into
	// a version: a malformed tag, commit identifier or distance.
	CodeVersionParse ErrorCode = "VERSION_PARSE_ERROR"

	// CodeCache indicates a cache entry could not be read or written.
	CodeCache ErrorCode = "CACHE_ERROR"

	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeConflict indicates a resource state conflict that prevents the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Execution errors.

	// CodeExecutionFailed indicates an external command failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeTimeout indicates an operation exceeded its time limit or was canceled.
	CodeTimeout ErrorCode = "TIMEOUT"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
