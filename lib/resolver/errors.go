package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOption is returned when an override names an option the
	// baseline does not recognize.
	ErrUnknownOption = errors.New("unknown option")

	// ErrUnsatisfiedDependency is returned when a dependency constraint does
	// not hold in the merged configuration.
	ErrUnsatisfiedDependency = errors.New("unsatisfied dependency")

	// ErrConflictingType is returned when the override and the baseline give
	// the same option values of different kinds.
	ErrConflictingType = errors.New("conflicting option type")

	// ErrEmptyBaseline is returned when the baseline layer has no options.
	ErrEmptyBaseline = errors.New("empty baseline")
)

// Error is a single resolution failure. Kind is one of the Err* sentinels
// and matches with errors.Is.
type Error struct {
	Kind   error
	Option string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Option != "" {
		msg += " " + e.Option
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, name, format string, args ...any) *Error {
	return &Error{Kind: kind, Option: name, Detail: fmt.Sprintf(format, args...)}
}
