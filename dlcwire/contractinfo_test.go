// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// testOracleKey and testNonce are valid x-only keys.
	testOracleKey = mustXOnly("da078bbb1d34e7729e38e2ae34236e776da121af44" +
		"2626fa31e31ae55a279a0b")
	testNonce = mustXOnly("3cfba011378411b20a5ab773cb95daab93e9bcd1e4cc" +
		"e44986a7dda84e01841b")
)

func mustXOnly(s string) XOnlyKey {
	var k XOnlyKey
	b := mustDecodeHex(s)
	copy(k[:], b)
	return k
}

// digitAnnouncement returns an announcement of a base 2 event with
// nbDigits digits and a matching number of nonces.
func digitAnnouncement(nbDigits int) OracleAnnouncement {
	nonces := make([]XOnlyKey, nbDigits)
	for i := range nonces {
		nonces[i] = testNonce
	}
	return OracleAnnouncement{
		OraclePubKey: testOracleKey,
		Event: OracleEvent{
			Nonces:             nonces,
			EventMaturityEpoch: 1700000000,
			EventDescriptor: &DigitDecompositionEventDescriptor{
				Base:      2,
				Unit:      "btcusd",
				Precision: 0,
				NbDigits:  uint16(nbDigits),
			},
			EventID: "btcusd-1700000000",
		},
	}
}

// numericDescriptor returns a linear payout from zero to total over the
// whole outcome range of numDigits binary digits.
func numericDescriptor(numDigits int, total, roundingMod uint64) *NumericContractDescriptor {
	max, err := MaxOutcome(2, numDigits)
	if err != nil {
		panic(err)
	}
	return &NumericContractDescriptor{
		NumDigits: uint16(numDigits),
		PayoutFunction: PayoutFunction{
			Endpoint0: PayoutPoint{},
			Pieces: []PayoutFunctionPiece{{
				Curve: &PolynomialPayoutCurvePiece{},
				Endpoint: PayoutPoint{
					EventOutcome:  max,
					OutcomePayout: total,
				},
			}},
		},
		RoundingIntervals: RoundingIntervals{
			Intervals: []RoundingInterval{{
				BeginInterval: 0,
				RoundingMod:   roundingMod,
			}},
		},
	}
}

func numericContractInfo(total uint64, numDigits, nbDigits int,
	roundingMod uint64) *SingleContractInfo {

	oracle := &SingleOracleInfo{Announcement: digitAnnouncement(nbDigits)}
	return &SingleContractInfo{
		TotalCollateralSatoshis: total,
		ContractOraclePair: ContractOraclePair{
			Descriptor: numericDescriptor(numDigits, total, roundingMod),
			Oracle:     oracle,
		},
	}
}

// TestRoundingModAgainstCollateral checks that a rounding modulus may not
// exceed the total collateral.
func TestRoundingModAgainstCollateral(t *testing.T) {
	t.Parallel()

	const total = 100000

	testCases := []struct {
		name string
		mod  uint64
		code *ErrorCode
	}{
		{"well below", 1000, nil},
		{"equal", total, nil},
		{"above", total + 1, codePtr(ErrCollateralMismatch)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ci := numericContractInfo(total, 10, 10, tc.mod)
			err := ci.Validate()
			if tc.code == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, IsError(err, *tc.code), "%v", err)
			require.True(t, IsValidationError(err))
		})
	}
}

// TestDigitCountAgainstEvent checks that the contract and its oracle event
// must agree on the digit count.
func TestDigitCountAgainstEvent(t *testing.T) {
	t.Parallel()

	require.NoError(t, numericContractInfo(100000, 10, 10, 1000).Validate())

	err := numericContractInfo(100000, 10, 11, 1000).Validate()
	require.True(t, IsError(err, ErrDigitMismatch), "%v", err)

	// The event commits to one nonce fewer than it has digits.
	ci := numericContractInfo(100000, 10, 10, 1000)
	ann := &ci.Oracle.(*SingleOracleInfo).Announcement
	ann.Event.Nonces = ann.Event.Nonces[:9]
	err = ci.Validate()
	require.True(t, IsError(err, ErrDigitMismatch), "%v", err)
}

// TestDisjointValidatesEveryPair checks that the rules applied to a single
// contract are applied to every pair of a disjoint contract.
func TestDisjointValidatesEveryPair(t *testing.T) {
	t.Parallel()

	good := numericContractInfo(100000, 10, 10, 1000).ContractOraclePair
	badDigits := numericContractInfo(100000, 10, 12, 1000).ContractOraclePair
	badMod := numericContractInfo(100000, 10, 10, 100001).ContractOraclePair

	ci := &DisjointContractInfo{
		TotalCollateralSatoshis: 100000,
		ContractOraclePairs:     []ContractOraclePair{good, good},
	}
	require.NoError(t, ci.Validate())
	require.Len(t, ci.Pairs(), 2)

	ci.ContractOraclePairs[1] = badDigits
	err := ci.Validate()
	require.True(t, IsError(err, ErrDigitMismatch), "%v", err)

	ci.ContractOraclePairs[1] = badMod
	err = ci.Validate()
	require.True(t, IsError(err, ErrCollateralMismatch), "%v", err)

	ci.ContractOraclePairs = nil
	require.True(t, IsError(ci.Validate(), ErrInvalidField))
}

// TestIncompatibleOracle checks that descriptors are only paired with
// oracle events of the matching kind.
func TestIncompatibleOracle(t *testing.T) {
	t.Parallel()

	enumAnnouncement := OracleAnnouncement{
		OraclePubKey: testOracleKey,
		Event: OracleEvent{
			Nonces: []XOnlyKey{testNonce},
			EventDescriptor: &EnumEventDescriptor{
				Outcomes: []string{"yes", "no"},
			},
			EventID: "vote",
		},
	}

	numeric := numericContractInfo(100000, 10, 10, 1000)
	numeric.Oracle = &SingleOracleInfo{Announcement: enumAnnouncement}
	err := numeric.Validate()
	require.True(t, IsError(err, ErrIncompatibleOracle), "%v", err)

	enumerated := &SingleContractInfo{
		TotalCollateralSatoshis: 100000,
		ContractOraclePair: ContractOraclePair{
			Descriptor: &EnumeratedContractDescriptor{
				Outcomes: []EnumeratedOutcome{
					{Outcome: [32]byte{1}, Payout: 100000},
					{Outcome: [32]byte{2}, Payout: 0},
				},
			},
			Oracle: &SingleOracleInfo{
				Announcement: digitAnnouncement(10),
			},
		},
	}
	err = enumerated.Validate()
	require.True(t, IsError(err, ErrIncompatibleOracle), "%v", err)

	enumerated.Oracle = &SingleOracleInfo{Announcement: enumAnnouncement}
	require.NoError(t, enumerated.Validate())

	desc := enumerated.Descriptor.(*EnumeratedContractDescriptor)
	desc.Outcomes[0].Payout = 100001
	err = enumerated.Validate()
	require.True(t, IsError(err, ErrCollateralMismatch), "%v", err)

	desc.Outcomes[0].Payout = 0
	desc.Outcomes[1].Outcome = desc.Outcomes[0].Outcome
	require.True(t, IsError(enumerated.Validate(), ErrInvalidField))
}

// TestMultiOracle checks the threshold rules and that the digit rule is
// applied to every oracle.
func TestMultiOracle(t *testing.T) {
	t.Parallel()

	multi := &MultiOracleInfo{
		OracleThreshold: 2,
		Oracles: []OracleAnnouncement{
			digitAnnouncement(10), digitAnnouncement(10),
			digitAnnouncement(10),
		},
	}
	ci := numericContractInfo(100000, 10, 10, 1000)
	ci.Oracle = multi
	require.NoError(t, ci.Validate())
	require.Equal(t, 2, ci.Oracle.Threshold())
	require.Len(t, ci.Oracle.Announcements(), 3)

	multi.Oracles[2] = digitAnnouncement(11)
	require.True(t, IsError(ci.Validate(), ErrDigitMismatch))

	multi.Oracles[2] = digitAnnouncement(10)
	multi.OracleThreshold = 4
	require.True(t, IsError(ci.Validate(), ErrInvalidField))

	multi.OracleThreshold = 0
	require.True(t, IsError(ci.Validate(), ErrInvalidField))
}

// TestConstructedRoundTrip serializes hand built messages of every kind
// and checks they decode to the same value.
func TestConstructedRoundTrip(t *testing.T) {
	t.Parallel()

	hyperbola := &HyperbolaPayoutCurvePiece{
		UsePositivePiece: true,
		TranslateOutcome: PrecisionNumber{Positive: true},
		TranslatePayout:  PrecisionNumber{Positive: false, Whole: 7, ExtraPrecision: 300},
		A:                PrecisionNumber{Positive: true, Whole: 1},
		B:                PrecisionNumber{Positive: true},
		C:                PrecisionNumber{Positive: true},
		D:                PrecisionNumber{Positive: true, Whole: 1000},
	}
	numeric := numericContractInfo(100000, 10, 10, 1000)
	desc := numeric.Descriptor.(*NumericContractDescriptor)
	desc.PayoutFunction.Pieces = append(desc.PayoutFunction.Pieces,
		PayoutFunctionPiece{
			Curve:    hyperbola,
			Endpoint: PayoutPoint{EventOutcome: 2000, OutcomePayout: 1},
		})
	desc.PayoutFunction.Pieces[0].Curve = &PolynomialPayoutCurvePiece{
		Points: []PayoutPoint{{EventOutcome: 3, OutcomePayout: 5, ExtraPrecision: 9}},
	}

	multi := numericContractInfo(100000, 10, 10, 1000)
	multi.Oracle = &MultiOracleInfo{
		OracleThreshold: 1,
		Oracles:         []OracleAnnouncement{digitAnnouncement(10)},
	}

	testCases := []Message{
		numeric,
		&DisjointContractInfo{
			TotalCollateralSatoshis: 5,
			ContractOraclePairs: []ContractOraclePair{
				numeric.ContractOraclePair, multi.ContractOraclePair,
			},
		},
		&NegotiationFieldsV1{RoundingIntervals: RoundingIntervals{
			Intervals: []RoundingInterval{{0, 1}, {5000, 100}},
		}},
		&DigitDecompositionEventDescriptor{
			Base: 10, IsSigned: true, Unit: "usd", Precision: -2,
			NbDigits: 6,
		},
		&FundingSignatures{WitnessStacks: []WitnessStack{
			{{Witness: []byte{1, 2}}, {Witness: nil}},
		}},
	}

	for _, msg := range testCases {
		b, err := Serialize(msg)
		require.NoError(t, err)

		decoded, err := Decode(b)
		require.NoError(t, err, msg.MsgType().String())
		require.Equal(t, msg, decoded)
	}
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func codePtr(c ErrorCode) *ErrorCode {
	return &c
}

// TestSignedDigitEvent checks that a signed event commits to one nonce per
// digit, the same as an unsigned one.
func TestSignedDigitEvent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		nonces int
		code   *ErrorCode
	}{
		{"one nonce per digit", 10, nil},
		{"extra sign nonce", 11, codePtr(ErrDigitMismatch)},
		{"missing nonce", 9, codePtr(ErrDigitMismatch)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ci := numericContractInfo(100000, 10, 10, 1000)
			ann := &ci.Oracle.(*SingleOracleInfo).Announcement
			desc := ann.Event.EventDescriptor.(*DigitDecompositionEventDescriptor)
			desc.IsSigned = true
			ann.Event.Nonces = make([]XOnlyKey, tc.nonces)
			for i := range ann.Event.Nonces {
				ann.Event.Nonces[i] = testNonce
			}
			require.Equal(t, 10, desc.NonceCount())

			err := ci.Validate()
			if tc.code == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, IsError(err, *tc.code), "%v", err)
		})
	}
}

// TestEmptyWitnessCanonical checks that an empty witness element built
// from a non-nil slice encodes like nil and decodes as nil.
func TestEmptyWitnessCanonical(t *testing.T) {
	t.Parallel()

	empty := &FundingSignatures{WitnessStacks: []WitnessStack{
		{{Witness: []byte{}}},
	}}
	canonical := &FundingSignatures{WitnessStacks: []WitnessStack{
		{{Witness: nil}},
	}}

	b, err := Serialize(empty)
	require.NoError(t, err)
	want, err := Serialize(canonical)
	require.NoError(t, err)
	require.Equal(t, want, b)

	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, canonical, decoded)

	again, err := Serialize(decoded)
	require.NoError(t, err)
	require.Equal(t, b, again)
}
