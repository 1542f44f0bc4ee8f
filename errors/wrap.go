package errors

import (
	goerrors "errors"
)

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return goerrors.Unwrap(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return goerrors.Join(errs...)
}

// Code returns the code of the first *Error in err's chain, or 0.
func Code(err error) int {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Code
	}
	return 0
}
