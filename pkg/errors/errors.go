// Package errors provides structured error handling for salescan.
// It implements errors with codes, context, and stack traces.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Sizing errors (1xx): the input could not be measured or opened.
	CodeFileNotFound   Code = "E101"
	CodeFilePermission Code = "E102"
	CodeSizeUnknown    Code = "E103"

	// Stream errors (2xx): failures after streaming has begun.
	CodeParseFailed  Code = "E201"
	CodeDecodeFailed Code = "E202"
	CodeReadFailed   Code = "E203"

	// System errors (4xx)
	CodeContextCanceled Code = "E401"

	// Unknown
	CodeUnknown Code = "E999"
)

// SalescanError is the base error type for all salescan errors.
type SalescanError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *SalescanError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *SalescanError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error.
func (e *SalescanError) Is(target error) bool {
	if t, ok := target.(*SalescanError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *SalescanError) WithContext(key string, value interface{}) *SalescanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new SalescanError.
func New(code Code, message string) *SalescanError {
	return &SalescanError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *SalescanError {
	if err == nil {
		return nil
	}

	return &SalescanError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// --- Convenience constructors ---

// SizeUnknown creates an error for an input whose size cannot be read.
func SizeUnknown(path string, err error) *SalescanError {
	return Wrap(err, CodeSizeUnknown, "cannot determine file size").
		WithContext("path", path)
}

// ParseError creates a parsing error with record location.
func ParseError(record int, err error) *SalescanError {
	return Wrap(err, CodeParseFailed, "parse error").
		WithContext("record", record)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var sErr *SalescanError
	if errors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var sErr *SalescanError
	if errors.As(err, &sErr) {
		return sErr.Code
	}
	return CodeUnknown
}

// IsSizing returns true for errors raised before streaming began.
func IsSizing(err error) bool {
	switch GetCode(err) {
	case CodeFileNotFound, CodeFilePermission, CodeSizeUnknown:
		return true
	default:
		return false
	}
}

// IsStream returns true for errors raised after streaming began.
func IsStream(err error) bool {
	switch GetCode(err) {
	case CodeParseFailed, CodeDecodeFailed, CodeReadFailed:
		return true
	default:
		return false
	}
}
