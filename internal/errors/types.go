package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeTarget   ErrorType = "target"
	ErrorTypeBuild    ErrorType = "build"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeConfigMissingField = "ERR_CONFIG_MISSING_FIELD"
	ErrCodeUnknownTarget      = "ERR_UNKNOWN_TARGET"
	ErrCodeModuleNotFound     = "ERR_MODULE_NOT_FOUND"
	ErrCodeBuildFailed        = "ERR_BUILD_FAILED"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// Error is a structured error type with context.
type Error struct {
	Type     ErrorType
	Code     string
	Message  string
	Field    string
	Cause    error
	Context  map[string]interface{}
	Bundle   string
	Messages []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Bundle != "" {
		parts = append(parts, "bundle:"+e.Bundle)
	}

	if e.Field != "" {
		parts = append(parts, e.Field+":")
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if len(e.Messages) > 0 {
		result += "\n" + strings.Join(e.Messages, "\n")
	}

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithBundle records the bundle the error was raised for.
func (e *Error) WithBundle(bundle string) *Error {
	e.Bundle = bundle

	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrConfigInvalid      = &Error{Type: ErrorTypeConfig, Code: ErrCodeConfigInvalid}
	ErrConfigMissingField = &Error{Type: ErrorTypeConfig, Code: ErrCodeConfigMissingField}
	ErrUnknownTarget      = &Error{Type: ErrorTypeTarget, Code: ErrCodeUnknownTarget}
	ErrModuleNotFound     = &Error{Type: ErrorTypeBuild, Code: ErrCodeModuleNotFound}
	ErrBuildFailed        = &Error{Type: ErrorTypeBuild, Code: ErrCodeBuildFailed}
)

// Error creation functions

// NewConfigurationError creates an error for an invalid configuration value.
func NewConfigurationError(field, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Field:   field,
		Message: message,
	}
}

// NewMissingFieldError creates an error for a required field that is absent
// and has no default.
func NewMissingFieldError(field, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigMissingField,
		Field:   field,
		Message: message,
	}
}

// NewUnknownTargetError creates an error for a target selector that is not
// one of the enumerated build targets.
func NewUnknownTargetError(value string, valid []string) *Error {
	return &Error{
		Type:    ErrorTypeTarget,
		Code:    ErrCodeUnknownTarget,
		Message: fmt.Sprintf("unknown build target %q (valid: %s)", value, strings.Join(valid, ", ")),
		Context: map[string]interface{}{"value": value, "valid": valid},
	}
}

// NewBuildError creates a build error carrying the bundler's own messages.
func NewBuildError(code, message string, messages []string) *Error {
	return &Error{
		Type:     ErrorTypeBuild,
		Code:     code,
		Message:  message,
		Messages: messages,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigurationError checks if an error is configuration-related.
func IsConfigurationError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrorTypeConfig
	}

	return false
}

// IsUnknownTarget checks if an error reports an unknown build target.
func IsUnknownTarget(err error) bool {
	return errors.Is(err, ErrUnknownTarget)
}

// IsModuleNotFound checks if a build failed because a module could not be
// resolved.
func IsModuleNotFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound)
}

// IsBuildError checks if an error is build-related.
func IsBuildError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrorTypeBuild
	}

	return false
}

// Handler provides centralized error reporting for commands.
type Handler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewHandler creates a new error handler.
func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs an error at a level matching its type.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch e.Type {
	case ErrorTypeConfig, ErrorTypeTarget:
		h.logger.Error(ctx, err, "Configuration rejected",
			"type", e.Type,
			"code", e.Code,
			"field", e.Field)
	case ErrorTypeBuild:
		h.logger.Warn(ctx, err, "Build error occurred",
			"type", e.Type,
			"code", e.Code,
			"bundle", e.Bundle)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", e.Type,
			"code", e.Code)
	}
}
