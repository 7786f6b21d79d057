// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"math"
	"math/bits"
)

// MaxOutcome returns the largest outcome expressible with numDigits digits
// in the given base.
func MaxOutcome(base uint64, numDigits int) (uint64, error) {
	if base < 2 {
		return 0, invalidf("digit base %d is below 2", base)
	}
	if numDigits < 1 {
		return 0, messageError(ErrDigitMismatch,
			"outcome needs at least one digit", nil)
	}
	max := uint64(1)
	for i := 0; i < numDigits; i++ {
		hi, lo := bits.Mul64(max, base)
		if hi != 0 {
			// base^numDigits overflows, so every uint64 fits.
			return math.MaxUint64, nil
		}
		max = lo
	}
	return max - 1, nil
}

// DecomposeOutcome splits value into exactly numDigits digits in the given
// base, most significant first, the form in which an oracle attests to a
// numeric outcome.
func DecomposeOutcome(value, base uint64, numDigits int) ([]uint64, error) {
	max, err := MaxOutcome(base, numDigits)
	if err != nil {
		return nil, err
	}
	if value > max {
		return nil, invalidf("outcome %d does not fit in %d base %d "+
			"digits", value, numDigits, base)
	}
	digits := make([]uint64, numDigits)
	for i := numDigits - 1; i >= 0; i-- {
		digits[i] = value % base
		value /= base
	}
	return digits, nil
}

// ComposeOutcome is the inverse of DecomposeOutcome.
func ComposeOutcome(digits []uint64, base uint64) (uint64, error) {
	if _, err := MaxOutcome(base, len(digits)); err != nil {
		return 0, err
	}
	var value uint64
	for i, d := range digits {
		if d >= base {
			return 0, invalidf("digit %d is %d, not below base %d",
				i, d, base)
		}
		hi, lo := bits.Mul64(value, base)
		sum, carry := bits.Add64(lo, d, 0)
		if hi != 0 || carry != 0 {
			return 0, invalidf("digits overflow a 64-bit outcome")
		}
		value = sum
	}
	return value, nil
}
