// Package errors provides structured error handling for Quasar
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal engine errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid parameters or inputs
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeLookup represents a table or row reference that cannot be resolved
	ErrorTypeLookup ErrorType = "lookup"
	// ErrorTypeRecursionLimit represents a traversal that exceeded the maximum
	// sub-table nesting depth
	ErrorTypeRecursionLimit ErrorType = "recursion_limit"
	// ErrorTypeConversion represents input data that cannot be losslessly
	// interpreted as tabular rows
	ErrorTypeConversion ErrorType = "conversion"
	// ErrorTypeUnserialization represents a stored blob that failed to decode
	ErrorTypeUnserialization ErrorType = "unserialization"
	// ErrorTypeUnknownRow represents an operation on a row id that does not exist
	ErrorTypeUnknownRow ErrorType = "unknown_row"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsLookup reports whether the error is a failed table or row reference
func IsLookup(err error) bool {
	return IsType(err, ErrorTypeLookup)
}

// IsRecursionLimit reports whether the error is a nesting depth violation
func IsRecursionLimit(err error) bool {
	return IsType(err, ErrorTypeRecursionLimit)
}

// IsConversion reports whether the error is a tabular conversion failure
func IsConversion(err error) bool {
	return IsType(err, ErrorTypeConversion)
}

// IsUnserialization reports whether the error is a blob decode failure
func IsUnserialization(err error) bool {
	return IsType(err, ErrorTypeUnserialization)
}

// IsUnknownRow reports whether the error refers to a nonexistent row id
func IsUnknownRow(err error) bool {
	return IsType(err, ErrorTypeUnknownRow)
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
