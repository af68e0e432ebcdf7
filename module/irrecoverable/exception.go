package irrecoverable

import (
	"errors"
	"fmt"
)

// exception represents an unexpected error. An unexpected error is any error returned
// by a function, other than the error specifically documented as expected in that
// function's interface.
//
// It wraps an unexpected error, which allows error handling logic to distinguish
// between benign, documented errors and corrupted, unexpected states, such as a
// failed storage write or an undecodable database value.
type exception struct {
	err error
}

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() error {
	return e.err
}

// NewException wraps the input error as an exception, stripping any sentinel error
// information from the error stack.
func NewException(err error) error {
	return exception{
		err: err,
	}
}

// NewExceptionf is NewException with the ability to add formatting and context to the error.
// The argument err MUST be the last argument of the format string.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException returns whether err is an exception anywhere in its chain.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}
