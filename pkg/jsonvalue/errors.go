package jsonvalue

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched (via errors.Is) by every error reporting that
// an input cannot be represented as a Value: cyclic references, functions,
// channels, non-finite numbers, undecodable documents.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError describes where and why an input was rejected.
type MalformedInputError struct {
	// Path locates the offending node, e.g. "$.items[2].owner".
	Path   string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("%s at %s: %s", ErrMalformedInput, e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *MalformedInputError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedInput) succeed.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func malformed(path, reason string, err error) error {
	return &MalformedInputError{Path: path, Reason: reason, Err: err}
}
