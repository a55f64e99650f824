package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction errors. Always fatal to pipeline construction.
const (
	// ErrCodeUnknownPipe indicates an identifier with no registered factory.
	ErrCodeUnknownPipe ErrorCode = "UNKNOWN_PIPE"
	// ErrCodeInvalidParameter indicates a parameter map rejected by a pipe schema.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	// ErrCodeIllegalLink indicates two consecutive categories with no link rule.
	ErrCodeIllegalLink ErrorCode = "ILLEGAL_LINK"
	// ErrCodeInvalidEntry indicates a first stage that is not an entry category.
	ErrCodeInvalidEntry ErrorCode = "INVALID_ENTRY"
	// ErrCodeEmptyPipeline indicates a definition without stages.
	ErrCodeEmptyPipeline ErrorCode = "EMPTY_PIPELINE"
	// ErrCodeDuplicateName indicates two stages sharing a pipe_name.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_PIPE_NAME"
	// ErrCodeInvalidOptions indicates unusable runtime options.
	ErrCodeInvalidOptions ErrorCode = "INVALID_OPTIONS"
)

// Run-time errors
const (
	// ErrCodeProcessFailed indicates a pipe failed on a single window.
	ErrCodeProcessFailed ErrorCode = "PROCESS_FAILED"
	// ErrCodeSourceFailed indicates the source could not produce the next window.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
	// ErrCodeStorage indicates a cache, record or log I/O failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeInvalidState indicates an operation not allowed in the current run state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Generic errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates a struct failed tag validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage: true,
}

var constructionCodes = map[ErrorCode]bool{
	ErrCodeUnknownPipe:      true,
	ErrCodeInvalidParameter: true,
	ErrCodeIllegalLink:      true,
	ErrCodeInvalidEntry:     true,
	ErrCodeEmptyPipeline:    true,
	ErrCodeDuplicateName:    true,
	ErrCodeInvalidOptions:   true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsConstructionCode reports whether code belongs to the construction taxonomy.
func IsConstructionCode(code ErrorCode) bool {
	return constructionCodes[code]
}
