// Package status defines the error kinds shared by every Quillcast
// component and a small error type that carries them.
//
// The pipeline communicates failures through ordinary error returns; the
// [Code] attached to an error tells the caller how to react (retry a
// transient IOError, abort on ConfigurationError, report InvalidOperation
// to the control surface). [CodeOf] recovers the code from any error,
// mapping unanticipated failures to [Unknown] at the outermost boundary
// rather than propagating foreign type information.
package status

import (
	"errors"
	"fmt"
)

// Code classifies a failure. The zero value is Success.
type Code int

const (
	// Success indicates the absence of a failure. It is never carried by an
	// [Error]; CodeOf returns it only for a nil error.
	Success Code = iota

	// InsufficientMemory indicates an allocation could not be satisfied.
	InsufficientMemory

	// IOError indicates a device or stream failure (audio source start,
	// stop, or read). Single occurrences are treated as transient by the
	// stage loops.
	IOError

	// InvalidArgument indicates a caller-supplied value was unusable, such
	// as a zero-length segment size or a mismatched embedding dimension.
	InvalidArgument

	// ConfigurationError indicates the loaded configuration is incoherent.
	// Always fatal at setup, never retried.
	ConfigurationError

	// RuntimeError indicates a collaborator (filter chain, analysis
	// backend) failed while processing.
	RuntimeError

	// OutOfRange indicates an index or value outside its permitted range.
	OutOfRange

	// TryAgain indicates a resource is momentarily unavailable and the
	// operation may be retried as-is.
	TryAgain

	// InvalidOperation indicates a state-machine violation, such as
	// enabling a feature while the engine is running or re-enabling a
	// one-shot flag.
	InvalidOperation

	// Unknown is the mapping for failures that carry no status code.
	Unknown
)

// String returns the canonical name of the code.
func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case InsufficientMemory:
		return "INSUFFICIENT_MEMORY"
	case IOError:
		return "IO_ERROR"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case ConfigurationError:
		return "CONFIGURATION_ERROR"
	case RuntimeError:
		return "RUNTIME_ERROR"
	case OutOfRange:
		return "OUT_OF_RANGE"
	case TryAgain:
		return "TRY_AGAIN"
	case InvalidOperation:
		return "INVALID_OPERATION"
	default:
		return "UNKNOWN"
	}
}

// Error is an error tagged with a [Code]. It optionally wraps a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates an Error with a formatted message. The format verbs follow
// [fmt.Errorf], including %w for wrapping a cause.
func Errorf(code Code, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Code: code, Message: wrapped.Error(), Err: errors.Unwrap(wrapped)}
}

// Wrap creates an Error carrying code and message around an existing cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, status.New(status.IOError, "")) matches by kind.
func (e *Error) Is(target error) bool {
	var se *Error
	if errors.As(target, &se) {
		return se.Code == e.Code
	}
	return false
}

// CodeOf extracts the status code from err. A nil error maps to [Success];
// an error chain containing an [*Error] yields its code; anything else maps
// to [Unknown].
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Unknown
}
