package narrative

import "errors"

// TransientError is a provider failure that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }
func (e *TransientError) Unwrap() error { return e.err }

// FatalError is a provider failure that must not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }
func (e *FatalError) Unwrap() error { return e.err }

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsFatal reports whether err must not be retried.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// ErrMissingKey is returned by a client that has no API key configured.
var ErrMissingKey = errors.New("narrative: api key is missing")
