package script

import "errors"

var (
	// ErrTruncatedInput means a fixed-width read ran past the end of the data.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrMalformedHeader means a structural invariant of the map table is violated.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrSizeMismatch means a slice length disagrees with a declared entry count.
	ErrSizeMismatch = errors.New("size mismatch")
)
