// Package errors provides standardized domain errors with codes for the lecture server.
//
// Usage:
//
//	// In pipeline components - return typed errors
//	if len(text) < minChars {
//	    return errors.ContentTooShort("extracted text below minimum length")
//	}
//
//	// At the orchestrator boundary - classify with errors.Is
//	if errors.Is(err, errors.ErrSynthesisEmpty) {
//	    summary.RecordScriptFailure(lessonID, err)
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeInvalidSource    Code = "INVALID_SOURCE"
	CodeContentTooShort  Code = "CONTENT_TOO_SHORT"
	CodeSynthesisEmpty   Code = "SYNTHESIS_EMPTY"
	CodeNoAudioGenerated Code = "NO_AUDIO_GENERATED"
	CodeAudioCombine     Code = "AUDIO_COMBINE"
	CodeUpload           Code = "UPLOAD"
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidSource, CodeValidation:
		return http.StatusBadRequest
	case CodeContentTooShort:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeSynthesisEmpty, CodeNoAudioGenerated, CodeAudioCombine:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidSource    = &Error{Code: CodeInvalidSource, Message: "invalid source document"}
	ErrContentTooShort  = &Error{Code: CodeContentTooShort, Message: "content too short"}
	ErrSynthesisEmpty   = &Error{Code: CodeSynthesisEmpty, Message: "synthesis returned nothing"}
	ErrNoAudioGenerated = &Error{Code: CodeNoAudioGenerated, Message: "no audio generated"}
	ErrAudioCombine     = &Error{Code: CodeAudioCombine, Message: "no audio buffers to combine"}
	ErrUpload           = &Error{Code: CodeUpload, Message: "upload failed"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// InvalidSource creates an invalid source error.
func InvalidSource(msg string) *Error {
	return &Error{Code: CodeInvalidSource, Message: msg}
}

// InvalidSourcef creates an invalid source error with formatted message.
func InvalidSourcef(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidSource, Message: fmt.Sprintf(format, args...)}
}

// ContentTooShort creates a content too short error.
func ContentTooShort(msg string) *Error {
	return &Error{Code: CodeContentTooShort, Message: msg}
}

// SynthesisEmpty creates a synthesis empty error.
func SynthesisEmpty(msg string) *Error {
	return &Error{Code: CodeSynthesisEmpty, Message: msg}
}

// NoAudioGenerated creates a no audio generated error.
func NoAudioGenerated(msg string) *Error {
	return &Error{Code: CodeNoAudioGenerated, Message: msg}
}

// AudioCombine creates an audio combine error.
func AudioCombine(msg string) *Error {
	return &Error{Code: CodeAudioCombine, Message: msg}
}

// Upload creates an upload error.
func Upload(msg string) *Error {
	return &Error{Code: CodeUpload, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
