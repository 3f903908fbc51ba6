package work

import (
	"errors"
	"fmt"
)

// Kind classifies the recoverable failures a Service reports.
type Kind int

const (
	// KindUnknown marks errors that did not originate as validation or lookup failures.
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a tagged service error. Anything not wrapped in an Error is fatal.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func validationErrorf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

func validation(err error) error {
	return &Error{Kind: KindValidation, Err: err}
}

func notFoundErrorf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first Error in err's chain.
func KindOf(err error) Kind {
	var workErr *Error
	if errors.As(err, &workErr) {
		return workErr.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
