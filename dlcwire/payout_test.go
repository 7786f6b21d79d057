// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func polynomial(points ...PayoutPoint) *PayoutFunction {
	f := &PayoutFunction{Endpoint0: points[0]}
	f.Pieces = []PayoutFunctionPiece{{
		Curve: &PolynomialPayoutCurvePiece{
			Points: points[1 : len(points)-1],
		},
		Endpoint: points[len(points)-1],
	}}
	if len(points) == 2 {
		f.Pieces[0].Curve = &PolynomialPayoutCurvePiece{}
	}
	return f
}

func pt(outcome, payout uint64) PayoutPoint {
	return PayoutPoint{EventOutcome: outcome, OutcomePayout: payout}
}

// TestPolynomialPayout evaluates linear and quadratic pieces.
func TestPolynomialPayout(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		f       *PayoutFunction
		outcome uint64
		payout  uint64
	}{
		{"linear start", polynomial(pt(0, 0), pt(100, 1000)), 0, 0},
		{"linear end", polynomial(pt(0, 0), pt(100, 1000)), 100, 1000},
		{"linear middle", polynomial(pt(0, 0), pt(100, 1000)), 33, 330},
		{"decreasing", polynomial(pt(0, 1000), pt(100, 0)), 25, 750},
		{"quadratic", polynomial(pt(0, 0), pt(5, 25), pt(10, 100)), 3, 9},
		{"rounds half up", polynomial(pt(0, 0), pt(2, 1)), 1, 1},
		{"rounds down", polynomial(pt(0, 0), pt(3, 1)), 1, 0},
		{
			"extra precision",
			polynomial(pt(0, 0), PayoutPoint{
				EventOutcome: 1, OutcomePayout: 2,
				ExtraPrecision: 1 << 15,
			}),
			1, 3,
		},
	}

	for _, tc := range testCases {
		require.NoError(t, tc.f.Validate(), tc.name)
		payout, err := tc.f.PayoutAt(tc.outcome)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.payout, payout, tc.name)
	}
}

// TestMultiPiecePayout checks that each outcome is evaluated on the piece
// that contains it.
func TestMultiPiecePayout(t *testing.T) {
	t.Parallel()

	f := &PayoutFunction{
		Endpoint0: pt(0, 0),
		Pieces: []PayoutFunctionPiece{
			{Curve: &PolynomialPayoutCurvePiece{}, Endpoint: pt(10, 100)},
			{Curve: &PolynomialPayoutCurvePiece{}, Endpoint: pt(20, 100)},
		},
	}
	require.NoError(t, f.Validate())
	require.Equal(t, uint64(0), f.MinOutcome())
	require.Equal(t, uint64(20), f.MaxOutcome())

	for outcome, want := range map[uint64]uint64{
		0: 0, 5: 50, 10: 100, 15: 100, 20: 100,
	} {
		payout, err := f.PayoutAt(outcome)
		require.NoError(t, err)
		require.Equal(t, want, payout, "outcome %d", outcome)
	}

	_, err := f.PayoutAt(21)
	require.True(t, IsError(err, ErrInvalidField))
}

// TestHyperbolaPayout evaluates y = 1000/x on its positive branch.
func TestHyperbolaPayout(t *testing.T) {
	t.Parallel()

	piece := &HyperbolaPayoutCurvePiece{
		UsePositivePiece: true,
		TranslateOutcome: PrecisionNumber{Positive: true},
		TranslatePayout:  PrecisionNumber{Positive: true},
		A:                PrecisionNumber{Positive: true, Whole: 1},
		B:                PrecisionNumber{Positive: true},
		C:                PrecisionNumber{Positive: true},
		D:                PrecisionNumber{Positive: true, Whole: 1000},
	}
	f := &PayoutFunction{
		Endpoint0: pt(1, 1000),
		Pieces: []PayoutFunctionPiece{
			{Curve: piece, Endpoint: pt(100, 10)},
		},
	}
	require.NoError(t, f.Validate())

	for outcome, want := range map[uint64]uint64{
		1: 1000, 3: 333, 8: 125, 10: 100, 100: 10,
	} {
		payout, err := f.PayoutAt(outcome)
		require.NoError(t, err)
		require.Equal(t, want, payout, "outcome %d", outcome)
	}

	// The branch has a pole at zero.
	f.Endpoint0 = pt(0, 0)
	require.True(t, IsError(f.Validate(), ErrInvalidField))

	piece.A = PrecisionNumber{Positive: true}
	require.True(t, IsError(piece.Validate(), ErrInvalidField))
}

// TestPayoutFunctionValidate checks the structural rules.
func TestPayoutFunctionValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		f    *PayoutFunction
	}{
		{"no pieces", &PayoutFunction{Endpoint0: pt(0, 0)}},
		{"equal endpoints", polynomial(pt(5, 0), pt(5, 10))},
		{"decreasing endpoints", polynomial(pt(5, 0), pt(4, 10))},
		{"interior point on endpoint", polynomial(pt(0, 0), pt(0, 3), pt(10, 10))},
		{"interior point past end", polynomial(pt(0, 0), pt(11, 3), pt(10, 10))},
		{
			"interior points out of order",
			polynomial(pt(0, 0), pt(6, 3), pt(4, 3), pt(10, 10)),
		},
	}

	for _, tc := range testCases {
		err := tc.f.Validate()
		require.True(t, IsError(err, ErrInvalidField), "%s: %v", tc.name, err)
	}
}

// TestRoundingIntervals checks interval lookup, rounding and validation.
func TestRoundingIntervals(t *testing.T) {
	t.Parallel()

	r := &RoundingIntervals{Intervals: []RoundingInterval{
		{BeginInterval: 0, RoundingMod: 1},
		{BeginInterval: 100, RoundingMod: 10},
		{BeginInterval: 1000, RoundingMod: 1000},
	}}
	require.NoError(t, r.Validate())

	testCases := []struct {
		outcome, payout, want uint64
	}{
		{50, 57, 57},
		{150, 1234, 1230},
		{150, 1235, 1240},
		{999, 1239, 1240},
		{5000, 1499, 1000},
		{5000, 1500, 2000},
		{5000, math.MaxUint64, math.MaxUint64 - math.MaxUint64%1000},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, r.Round(tc.outcome, tc.payout),
			"outcome %d payout %d", tc.outcome, tc.payout)
	}

	invalid := []RoundingIntervals{
		{},
		{Intervals: []RoundingInterval{{BeginInterval: 1, RoundingMod: 1}}},
		{Intervals: []RoundingInterval{{BeginInterval: 0, RoundingMod: 0}}},
		{Intervals: []RoundingInterval{
			{BeginInterval: 0, RoundingMod: 1},
			{BeginInterval: 0, RoundingMod: 2},
		}},
	}
	for i := range invalid {
		require.True(t, IsError(invalid[i].Validate(), ErrInvalidField),
			"case %d", i)
	}
}

// TestRoundedPayoutAt combines curve evaluation and rounding.
func TestRoundedPayoutAt(t *testing.T) {
	t.Parallel()

	d := numericDescriptor(10, 1023000, 1000)
	require.NoError(t, d.Validate())

	payout, err := d.RoundedPayoutAt(511)
	require.NoError(t, err)
	require.Equal(t, uint64(511000), payout)

	d.RoundingIntervals.Intervals[0].RoundingMod = 10000
	payout, err = d.RoundedPayoutAt(511)
	require.NoError(t, err)
	require.Equal(t, uint64(510000), payout)
}

// TestDigitDecomposition checks the mapping between outcomes and oracle
// digits.
func TestDigitDecomposition(t *testing.T) {
	t.Parallel()

	digits, err := DecomposeOutcome(5, 2, 4)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 0, 1}, digits)

	value, err := ComposeOutcome(digits, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(5), value)

	digits, err = DecomposeOutcome(987, 10, 5)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 0, 9, 8, 7}, digits)

	max, err := MaxOutcome(10, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(999), max)

	max, err = MaxOutcome(2, 64)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), max)

	max, err = MaxOutcome(2, 80)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), max)

	_, err = DecomposeOutcome(8, 2, 3)
	require.True(t, IsError(err, ErrInvalidField))

	_, err = ComposeOutcome([]uint64{1, 2}, 2)
	require.True(t, IsError(err, ErrInvalidField))

	_, err = MaxOutcome(1, 3)
	require.True(t, IsError(err, ErrInvalidField))

	_, err = MaxOutcome(2, 0)
	require.True(t, IsError(err, ErrDigitMismatch))
}

// TestEncodeMissingCurve checks that a piece without a curve is rejected
// when encoding instead of being dereferenced.
func TestEncodeMissingCurve(t *testing.T) {
	t.Parallel()

	f := polynomial(pt(0, 0), pt(10, 100))
	f.Pieces[0].Curve = nil

	_, err := Serialize(f)
	require.True(t, IsError(err, ErrInvalidField), "%v", err)
	require.True(t, IsError(f.Validate(), ErrInvalidField))
}
