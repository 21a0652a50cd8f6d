package option

import "errors"

var (
	// ErrInvalidName is returned for option names that are empty, not
	// namespaced, or contain characters outside [a-z0-9_.].
	ErrInvalidName = errors.New("invalid option name")

	// ErrInvalidSymbol is returned for symbol values that are not C identifiers.
	ErrInvalidSymbol = errors.New("invalid symbol value")
)
