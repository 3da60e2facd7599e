// Package errors defines the typed error model shared across the
// cognitive core. Every engine returns *Error (or wraps one) instead of
// ad-hoc strings so callers can branch on Kind without parsing messages.
package errors

import "fmt"

// Kind enumerates the error taxonomy from the error-handling design.
type Kind int

const (
	// Unknown is the zero value; never returned deliberately.
	Unknown Kind = iota
	LifecycleViolation
	InvalidInput
	BackendFailure
	ReasoningExhausted
	Cancelled
	DeadlineExceeded
	CapacityExceeded
	NotFound
)

func (k Kind) String() string {
	switch k {
	case LifecycleViolation:
		return "LifecycleViolation"
	case InvalidInput:
		return "InvalidInput"
	case BackendFailure:
		return "BackendFailure"
	case ReasoningExhausted:
		return "ReasoningExhausted"
	case Cancelled:
		return "Cancelled"
	case DeadlineExceeded:
		return "DeadlineExceeded"
	case CapacityExceeded:
		return "CapacityExceeded"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned across every public boundary.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// Wrap builds an *Error wrapping a lower-level cause.
func Wrap(op string, kind Kind, message string, err error) *Error {
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
