package operation

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies operation failures. The set is closed.
type Code uint8

const (
	// CodeInvalidArgument means the inputs were rejected by the operation.
	CodeInvalidArgument Code = iota + 1
	// CodeFailedPrecondition means the inputs were well-formed but the
	// operation could not run with them (e.g. missing upstream data).
	CodeFailedPrecondition
	// CodeCanceled means the run context ended while the operation ran.
	CodeCanceled
	// CodeInternal covers every other failure.
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeFailedPrecondition:
		return "failed_precondition"
	case CodeCanceled:
		return "canceled"
	case CodeInternal:
		return "internal"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// Error is the failure type returned by operations.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument reports inputs the operation refuses.
func InvalidArgument(format string, args ...any) error {
	return &Error{Code: CodeInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// FailedPrecondition reports inputs the operation cannot work with yet.
func FailedPrecondition(format string, args ...any) error {
	return &Error{Code: CodeFailedPrecondition, Err: fmt.Errorf(format, args...)}
}

// Internal wraps an unexpected failure.
func Internal(err error) error {
	return &Error{Code: CodeInternal, Err: err}
}

// CodeOf classifies err. Errors that are not *Error are internal unless
// they come from context cancellation.
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}
	return CodeInternal
}
