// Package errors provides the structured errors used throughout gitver.
//
// Every failure that crosses a package boundary is a PlatformError carrying an
// ErrorCode and an ErrorClassification. The code names what went wrong
// (REPOSITORY_ERROR, VERSION_PARSE_ERROR, ...); the classification tells the
// caller whether the failure must abort version resolution (fatal) or may be
// bypassed by recomputing (recoverable, used for cache faults).
//
// The package stays compatible with the standard library errors package
// (errors.Is, errors.As, errors.Unwrap).
//
// # Quick Start
//
// Creating errors:
//
//	err := errors.New(errors.CodeRepository, "repository has no commits")
//	err := errors.Newf(errors.CodeVersionParse, "tag %q is not major.minor.patch", tag)
//
// Wrapping errors:
//
//	repo, err := git.Open(path)
//	if err != nil {
//	    return errors.Wrap(err, errors.CodeRepository, "failed to open repository")
//	}
//
// Adding context:
//
//	err = errors.WithContext(err, "repository", path)
//
// Deciding what to do with a failure:
//
//	if errors.IsRecoverable(err) {
//	    // fall back to a fresh computation
//	}
//
//	os.Exit(errors.ExitCode(err))
//
// # Error Codes
//
//   - Domain errors: CodeRepository, CodeVersionParse, CodeCache
//   - Resource errors: CodeNotFound, CodeAlreadyExists, CodeConflict
//   - Validation errors: CodeInvalidInput, CodeInvalidConfig
//   - Execution errors: CodeExecutionFailed, CodeTimeout
//   - System errors: CodeInternal, CodeUnknown
//
// # Exit Codes
//
// ExitCode maps the outermost code of an error chain to a process exit status:
// 0 for nil, 1 for repository errors, 2 for version parse errors and 3 for
// everything else.
package errors
