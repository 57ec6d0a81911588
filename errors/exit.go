package errors

// Process exit statuses returned by ExitCode.
const (
	ExitOK           = 0
	ExitRepository   = 1
	ExitVersionParse = 2
	ExitOther        = 3
)

// ExitCode maps an error to the process exit status reported by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch GetCode(err) {
	case CodeRepository:
		return ExitRepository
	case CodeVersionParse:
		return ExitVersionParse
	default:
		return ExitOther
	}
}
