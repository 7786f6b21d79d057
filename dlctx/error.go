// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlctx

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrUnsupportedFundingInput indicates a funding input of a variant
	// other than FundingInputV0.
	ErrUnsupportedFundingInput ErrorCode = iota

	// ErrInvalidFundingInput indicates a funding input whose prior
	// transaction does not hold the referenced output.
	ErrInvalidFundingInput

	// ErrInvalidKey indicates a funding public key that does not parse.
	ErrInvalidKey

	// ErrInvalidScript indicates a payout or change script of the wrong
	// form.
	ErrInvalidScript

	// ErrInsufficientFunds indicates a party whose inputs do not cover
	// its collateral and fees.
	ErrInsufficientFunds

	// ErrNegativeChange indicates a change value that would be below
	// zero.
	ErrNegativeChange

	// ErrOverflow indicates a weight, fee or value computation that does
	// not fit in 64 bits.
	ErrOverflow
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrUnsupportedFundingInput: "ErrUnsupportedFundingInput",
	ErrInvalidFundingInput:     "ErrInvalidFundingInput",
	ErrInvalidKey:              "ErrInvalidKey",
	ErrInvalidScript:           "ErrInvalidScript",
	ErrInsufficientFunds:       "ErrInsufficientFunds",
	ErrNegativeChange:          "ErrNegativeChange",
	ErrOverflow:                "ErrOverflow",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// IsArithmetic reports whether the code describes amounts that cannot be
// computed or do not add up, as opposed to inputs that failed validation.
func (e ErrorCode) IsArithmetic() bool {
	return e >= ErrInsufficientFunds
}

// Error provides a single type for errors that can happen while computing
// fees or building the funding transaction.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// txError creates an Error given a set of arguments.
func txError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether err is an Error with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}

// IsArithmeticError returns whether err was caused by amounts that cannot
// be computed.
func IsArithmeticError(err error) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode.IsArithmetic()
}

// IsValidationError returns whether err was caused by an input that is not
// acceptable to the builder.
func IsValidationError(err error) bool {
	var e Error
	return errors.As(err, &e) && !e.ErrorCode.IsArithmetic()
}
