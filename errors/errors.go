package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status reported by the status API.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Construction errors ---

// UnknownPipe reports an identifier at position with no registered factory.
func UnknownPipe(id string, position int) *AppError {
	return &AppError{
		Code: ErrCodeUnknownPipe, Message: fmt.Sprintf("unknown pipe identifier %q at position %d", id, position),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"id": id, "position": position},
	}
}

// InvalidParameter reports a parameter map rejected by the named pipe.
func InvalidParameter(pipe string, position int, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidParameter, Message: fmt.Sprintf("invalid parameters for %s at position %d: %s", pipe, position, reason),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"pipe": pipe, "position": position},
	}
}

// IllegalLink reports that the stage at position cannot feed the stage at position+1.
func IllegalLink(from, to string, position int) *AppError {
	return &AppError{
		Code: ErrCodeIllegalLink,
		Message: fmt.Sprintf("cannot link %s (position %d) to %s (position %d)",
			from, position, to, position+1),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"from": from, "to": to,
			"from_position": position, "to_position": position + 1,
		},
	}
}

// InvalidEntry reports a first stage whose category cannot start a pipeline.
func InvalidEntry(category string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("pipeline cannot start with a %s pipe", category),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"category": category, "position": 0},
	}
}

// EmptyPipeline reports a definition with no stages.
func EmptyPipeline() *AppError {
	return &AppError{
		Code: ErrCodeEmptyPipeline, Message: "pipeline definition is empty",
		HTTPStatus: http.StatusBadRequest,
	}
}

// DuplicateName reports two stages sharing the same pipe_name.
func DuplicateName(name string, first, second int) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateName, Message: fmt.Sprintf("pipe_name %q used at positions %d and %d", name, first, second),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"pipe_name": name, "positions": []int{first, second}},
	}
}

// InvalidOptions reports unusable runtime options.
func InvalidOptions(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidOptions, Message: fmt.Sprintf("invalid runtime options: %s", reason),
		HTTPStatus: http.StatusBadRequest,
	}
}

// --- Run-time errors ---

// ProcessFailed reports a pipe failure on a single window.
func ProcessFailed(pipe string, position, window int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProcessFailed, Message: fmt.Sprintf("%s failed on window %d", pipe, window),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"pipe": pipe, "position": position, "window": window},
		Cause:      cause,
	}
}

// SourceFailed reports a source that could not produce its next window.
func SourceFailed(pipe string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSourceFailed, Message: fmt.Sprintf("source %s failed", pipe),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"pipe": pipe},
		Cause:      cause,
	}
}

// Storage reports an I/O failure on a stored object.
func Storage(op, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("%s %s failed", op, path),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"operation": op, "path": path},
		Cause:   cause,
	}
}

// InvalidState reports an operation attempted in the wrong run state.
func InvalidState(op, state string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidState, Message: fmt.Sprintf("cannot %s while %s", op, state),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"operation": op, "state": state},
	}
}

// --- Generic errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Validation creates a new AppError for struct validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
