// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlctx

import (
	"bytes"
	"math"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcdlc/dlcwire"
	"github.com/stretchr/testify/require"
)

// fakeFundingInput is a funding input of a variant the builder does not
// know how to spend.
type fakeFundingInput struct{}

func (fakeFundingInput) MsgType() dlcwire.MessageType {
	return 0xfffe
}

func (fakeFundingInput) Decode(*dlcwire.Cursor) error {
	return nil
}

func (fakeFundingInput) Encode(*dlcwire.Writer) error {
	return nil
}

func (fakeFundingInput) Validate() error {
	return nil
}

func (fakeFundingInput) InputSerialID() uint64 {
	return 1
}

func p2wpkh() []byte {
	return append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0xaa}, 20)...)
}

func party(inputs ...dlcwire.FundingInput) Party {
	return Party{
		FundingInputs: inputs,
		PayoutSPK:     p2wpkh(),
		ChangeSPK:     p2wpkh(),
	}
}

// TestFinalizerVectorFees checks the fees of the canonical offer and
// accept.
func TestFinalizerVectorFees(t *testing.T) {
	t.Parallel()

	offer, accept := vectorMessages(t)
	f, err := NewFinalizer(OfferParty(offer), AcceptParty(accept),
		offer.FeeRatePerVb)
	require.NoError(t, err)

	want := PartyFees{FundingFee: 126, FutureFee: 85}
	require.Equal(t, want, f.OfferFees())
	require.Equal(t, want, f.AcceptFees())
	require.Equal(t, btcutil.Amount(211), f.OfferFees().Total())
	require.Equal(t, btcutil.Amount(85), f.OfferFutureFee())
	require.Equal(t, btcutil.Amount(85), f.AcceptFutureFee())
	require.Equal(t, btcutil.Amount(252), f.TotalFundingFee())
	require.Equal(t, uint64(1), f.FeeRate())
}

// TestFinalizerWeights checks the weight formula for native and nested
// segwit inputs and the rounding of weight to virtual bytes.
func TestFinalizerWeights(t *testing.T) {
	t.Parallel()

	native := &dlcwire.FundingInputV0{MaxWitnessLen: 107}
	nested := &dlcwire.FundingInputV0{
		MaxWitnessLen: 107,
		RedeemScript:  p2wpkh(),
	}

	testCases := []struct {
		name    string
		party   Party
		feeRate uint64
		want    PartyFees
	}{{
		// 107 + 36 + 88 + 164 + 107 = 502 -> 126 vB
		// 249 + 88 = 337 -> 85 vB
		name:    "one native input",
		party:   party(native),
		feeRate: 1,
		want:    PartyFees{FundingFee: 126, FutureFee: 85},
	}, {
		name:    "one native input at 10 sat/vB",
		party:   party(native),
		feeRate: 10,
		want:    PartyFees{FundingFee: 1260, FutureFee: 850},
	}, {
		// 502 + 4*23 = 594 -> 149 vB
		name:    "one nested input",
		party:   party(nested),
		feeRate: 1,
		want:    PartyFees{FundingFee: 149, FutureFee: 85},
	}, {
		// 502 + 164 + 4*23 + 107 = 865 -> 217 vB
		name:    "native and nested inputs",
		party:   party(native, nested),
		feeRate: 1,
		want:    PartyFees{FundingFee: 217, FutureFee: 85},
	}, {
		// 107 + 36 + 88 = 231 -> 58 vB
		name:    "no inputs",
		party:   party(),
		feeRate: 1,
		want:    PartyFees{FundingFee: 58, FutureFee: 85},
	}, {
		name: "long payout script",
		party: Party{
			PayoutSPK: make([]byte, 34),
			ChangeSPK: p2wpkh(),
		},
		feeRate: 2,
		// 249 + 136 = 385 -> 97 vB
		want: PartyFees{FundingFee: 116, FutureFee: 194},
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f, err := NewFinalizer(tc.party, party(native), tc.feeRate)
			require.NoError(t, err)
			require.Equal(t, tc.want, f.OfferFees())
			require.Equal(t, tc.want.FundingFee+f.AcceptFees().FundingFee,
				f.TotalFundingFee())
		})
	}
}

// TestFinalizerRejects checks the error kinds of the fee computation.
func TestFinalizerRejects(t *testing.T) {
	t.Parallel()

	native := &dlcwire.FundingInputV0{MaxWitnessLen: 107}

	_, err := NewFinalizer(party(native), party(fakeFundingInput{}), 1)
	require.True(t, IsError(err, ErrUnsupportedFundingInput), "%v", err)
	require.True(t, IsValidationError(err))

	_, err = NewFinalizer(party(native), party(native), math.MaxUint64)
	require.True(t, IsError(err, ErrOverflow), "%v", err)
	require.True(t, IsArithmeticError(err))

	// The largest rate whose fees still fit is accepted.
	_, err = NewFinalizer(party(native), party(native), 1<<40)
	require.NoError(t, err)
}

// TestBuilderRejectsFakeInput checks that the builder refuses funding
// inputs it cannot size.
func TestBuilderRejectsFakeInput(t *testing.T) {
	t.Parallel()

	offer, accept := vectorMessages(t)
	accept.FundingInputs = append(accept.FundingInputs, fakeFundingInput{})

	_, err := NewBuilder(offer, accept)
	require.True(t, IsError(err, ErrUnsupportedFundingInput), "%v", err)
}
