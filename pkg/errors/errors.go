// Package errors provides the unified error type and factory functions for
// the docrisk platform.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent HTTP responses, logging, and metrics.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting above the
// internal factory frames, with standard-library noise trimmed.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the single structured error type used throughout docrisk.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.CodeNoDataSource, "backing source exhausted and no snapshot loaded")
//	return errors.Wrap(repoErr, errors.CodeDatabaseError, "failed to upsert score")
type AppError struct {
	// Code uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description, suitable for API
	// responses returned to callers.
	Message string

	// Detail carries supplementary context (query parameters, entity IDs)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error, enabling errors.Is / errors.As
	// traversal of the full chain.
	Cause error

	// Stack is the formatted call stack captured at creation.  It is not
	// part of Error() output; structured-logging middleware reads it
	// directly when needed.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code_name>(<code_int>)] <message>: <detail>", detail omitted
// when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s(%d)] %s: %s", e.Code.String(), int(e.Code), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s(%d)] %s", e.Code.String(), int(e.Code), e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.  If err is nil,
// Wrap returns nil so it can be used inline on repository calls.  When err
// is already an *AppError and code is CodeUnknown, the original code is
// preserved so cross-layer propagation never loses the domain classification.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsTransient reports whether the first AppError in err's chain carries a
// transient (retryable) code.  Errors with no AppError in the chain are
// treated as transient: an unclassified transport failure is exactly the
// case the retry budget exists for.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code.IsTransient()
	}
	return true
}

// IsNotFound reports whether any error in err's chain carries CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsValidation reports whether any error in err's chain carries
// CodeValidation or CodeInvalidConfig.
func IsValidation(err error) bool {
	return IsCode(err, CodeValidation) || IsCode(err, CodeInvalidConfig)
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain,
// or CodeUnknown when none is present.  Logging and metrics layers use this
// to emit a single code label without coupling to specific domain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeValidation AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.  Use for unexpected
// server-side failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}
