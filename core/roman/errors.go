package roman

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure kinds.
var (
	// ErrOutOfRange indicates a number that has no Roman representation.
	ErrOutOfRange = errors.New("number out of range")
	// ErrInvalidNumeral indicates a string that is not a canonical Roman numeral.
	ErrInvalidNumeral = errors.New("invalid roman numeral")
)

// Reasons carried by NumeralError.
const (
	ReasonInvalidCharacter = "invalid character"
	ReasonNoMatchingToken  = "no matching token"
	ReasonNonCanonical     = "non-canonical numeral"
)

// RangeError is returned by Encode for negative input and by EncodeMax for
// input above its limit.
type RangeError struct {
	Number int
	Max    int // Limit that was exceeded, 0 for negative input
}

func (e *RangeError) Error() string {
	if e.Number > e.Max && e.Max > 0 {
		return fmt.Sprintf("cannot encode %d: input exceeds maximum of %d", e.Number, e.Max)
	}
	return fmt.Sprintf("cannot encode %d: input cannot be below zero", e.Number)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// NumeralError is returned by Decode for any malformed input.
type NumeralError struct {
	Input  string // Offending input
	Pos    int    // Byte offset where decoding stopped, -1 if not positional
	Reason string // One of the Reason* constants
}

func (e *NumeralError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("invalid roman numeral %q: %s at position %d", e.Input, e.Reason, e.Pos)
	}
	return fmt.Sprintf("invalid roman numeral %q: %s", e.Input, e.Reason)
}

func (e *NumeralError) Unwrap() error {
	return ErrInvalidNumeral
}
