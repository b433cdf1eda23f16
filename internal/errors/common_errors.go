package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeInput marks a fatal input failure: missing, unreadable or undecodable file.
	ErrTypeInput ErrorType = "INPUT"
	// ErrTypeLine marks a single malformed log line. Never fatal.
	ErrTypeLine ErrorType = "LINE"
	// ErrTypeMonthGap marks a requested month with no punches. Never fatal.
	ErrTypeMonthGap ErrorType = "MONTH_GAP"
	// ErrTypeOutput marks a report destination that could not be written.
	ErrTypeOutput     ErrorType = "OUTPUT"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeCanceled   ErrorType = "CANCELED"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewInputError creates a fatal input error for the given path.
func NewInputError(path, message string, cause error) *AppError {
	return NewAppError(ErrTypeInput, message, cause).WithContext("path", path)
}

// NewLineError creates a recoverable error for one log line.
func NewLineError(line int, raw, reason string) *AppError {
	return NewAppError(ErrTypeLine, reason, nil).
		WithContext("line", line).
		WithContext("raw_line", raw)
}

// NewMonthGapError records a requested month that has no punches in the data.
func NewMonthGapError(month string) *AppError {
	return NewAppError(ErrTypeMonthGap, "requested month has no punches", nil).
		WithContext("month", month)
}

// NewOutputError creates an output error naming the destination and the
// sections already written before the failure.
func NewOutputError(path string, written []string, cause error) *AppError {
	return NewAppError(ErrTypeOutput, "failed to write report output", cause).
		WithContext("path", path).
		WithContext("written", written)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewCanceledError wraps a context cancellation observed between stages.
func NewCanceledError(stage string, cause error) *AppError {
	return NewAppError(ErrTypeCanceled, "run canceled", cause).WithContext("stage", stage)
}

// As is a convenience wrapper returning the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err's chain carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

// Path returns the "path" context value of an AppError, if any.
func Path(err error) string {
	appErr, ok := As(err)
	if !ok {
		return ""
	}
	if p, ok := appErr.Context["path"].(string); ok {
		return p
	}
	return ""
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	appErr, ok := As(err)
	if !ok {
		return 1
	}
	switch appErr.Type {
	case ErrTypeConfig, ErrTypeValidation:
		return 2
	case ErrTypeLine, ErrTypeMonthGap:
		return 0
	default:
		return 1
	}
}
