// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrShortRead indicates the input ended before a field could be
	// read completely.
	ErrShortRead ErrorCode = iota

	// ErrNonCanonical indicates a BigSize value was not encoded in its
	// minimal form.
	ErrNonCanonical

	// ErrUnknownType indicates a message type that is not registered.
	ErrUnknownType

	// ErrTypeMismatch indicates a message began with a type other than
	// the one the decoder expected.
	ErrTypeMismatch

	// ErrTrailingData indicates a TLV record or top-level message was
	// not consumed entirely by its decoder.
	ErrTrailingData

	// ErrFieldTooLarge indicates a value cannot be represented in the
	// width its field prefix allows.
	ErrFieldTooLarge

	// ErrInvalidTx indicates a prior transaction that does not decode as
	// a bitcoin transaction.
	ErrInvalidTx

	// ErrInvalidField indicates a well formed message whose field holds
	// a value the protocol does not allow.
	ErrInvalidField

	// ErrCollateralMismatch indicates collateral or payout amounts that
	// do not agree with the negotiated total collateral.
	ErrCollateralMismatch

	// ErrDigitMismatch indicates a numeric contract whose digit count
	// does not agree with its oracle event.
	ErrDigitMismatch

	// ErrIncompatibleOracle indicates a contract descriptor paired with
	// an oracle event of the wrong kind.
	ErrIncompatibleOracle

	// ErrInvalidKey indicates a public key or nonce that is not a valid
	// secp256k1 point.
	ErrInvalidKey

	// ErrInvalidScript indicates a script that is not of the expected
	// standard form.
	ErrInvalidScript

	// ErrUnknownChain indicates a chain hash that does not match any
	// known network.
	ErrUnknownChain
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrShortRead:          "ErrShortRead",
	ErrNonCanonical:       "ErrNonCanonical",
	ErrUnknownType:        "ErrUnknownType",
	ErrTypeMismatch:       "ErrTypeMismatch",
	ErrTrailingData:       "ErrTrailingData",
	ErrFieldTooLarge:      "ErrFieldTooLarge",
	ErrInvalidTx:          "ErrInvalidTx",
	ErrInvalidField:       "ErrInvalidField",
	ErrCollateralMismatch: "ErrCollateralMismatch",
	ErrDigitMismatch:      "ErrDigitMismatch",
	ErrIncompatibleOracle: "ErrIncompatibleOracle",
	ErrInvalidKey:         "ErrInvalidKey",
	ErrInvalidScript:      "ErrInvalidScript",
	ErrUnknownChain:       "ErrUnknownChain",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// IsFormat reports whether the code describes malformed bytes, as opposed
// to a well formed but semantically invalid message.
func (e ErrorCode) IsFormat() bool {
	return e <= ErrInvalidTx
}

// Error provides a single type for errors that can happen while decoding
// or validating DLC messages.  Codes for which IsFormat is true are only
// returned by decoders; the remaining codes are only returned by Validate.
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

// messageError creates an Error given a set of arguments.
func messageError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// invalidf creates an ErrInvalidField error from a format string.
func invalidf(format string, args ...interface{}) Error {
	return messageError(ErrInvalidField, fmt.Sprintf(format, args...), nil)
}

// IsError returns whether err is an Error with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}

// IsFormatError returns whether err was caused by malformed bytes.
func IsFormatError(err error) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode.IsFormat()
}

// IsValidationError returns whether err was caused by a well formed
// message that failed validation.
func IsValidationError(err error) bool {
	var e Error
	return errors.As(err, &e) && !e.ErrorCode.IsFormat()
}
