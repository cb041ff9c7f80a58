package orchestrators

import "errors"

// InputError marks a failure caused by what the caller sent rather than by
// the system. The wrapped error stays matchable with errors.Is.
type InputError struct {
	Err error
}

func (e InputError) Error() string { return e.Err.Error() }

func (e InputError) Unwrap() error { return e.Err }

// IsInputError reports whether err, or anything it wraps, is an InputError.
func IsInputError(err error) bool {
	var ie InputError
	return errors.As(err, &ie)
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return InputError{Err: err}
}
