package errors

// ErrorClassification indicates whether an error must abort version resolution.
type ErrorClassification string

const (
	// ClassificationRecoverable indicates a failure that can be bypassed by
	// recomputing the value, such as a missing or corrupt cache entry.
	ClassificationRecoverable ErrorClassification = "RECOVERABLE"

	// ClassificationFatal indicates a failure that aborts resolution.
	ClassificationFatal ErrorClassification = "FATAL"
)

// IsRecoverable returns true if the classification allows resolution to continue.
func (c ErrorClassification) IsRecoverable() bool {
	return c == ClassificationRecoverable
}

// defaultClassifications maps error codes to their default classification.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeCache: ClassificationRecoverable,

	CodeRepository:      ClassificationFatal,
	CodeNotFound:        ClassificationFatal,
	CodeVersionParse:    ClassificationFatal,
	CodeAlreadyExists:   ClassificationFatal,
	CodeConflict:        ClassificationFatal,
	CodeInvalidInput:    ClassificationFatal,
	CodeInvalidConfig:   ClassificationFatal,
	CodeExecutionFailed: ClassificationFatal,
	CodeTimeout:         ClassificationFatal,
	CodeInternal:        ClassificationFatal,
	CodeUnknown:         ClassificationFatal,
}

// getDefaultClassification returns the default classification for an error code.
// Unknown codes are fatal.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationFatal
}
