// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcdlc/internal/dlcvectors"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestVectorsRoundTrip decodes the canonical messages through the generic
// dispatcher and checks that they serialize back to the same bytes.
func TestVectorsRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		raw     []byte
		msgType MessageType
	}{
		{"offer", dlcvectors.Offer(), MsgOffer},
		{"accept", dlcvectors.Accept(), MsgAccept},
		{"sign", dlcvectors.Sign(), MsgSign},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			msg, err := Decode(tc.raw)
			require.NoError(t, err)
			require.Equal(t, tc.msgType, msg.MsgType())
			require.NoError(t, msg.Validate(), spew.Sdump(msg))

			b, err := Serialize(msg)
			require.NoError(t, err)
			require.Equal(t, hex.EncodeToString(tc.raw),
				hex.EncodeToString(b))

			again, err := Decode(b)
			require.NoError(t, err)
			require.Equal(t, msg, again)
		})
	}
}

// TestOfferVectorFields checks the decoded contents of the offer vector.
func TestOfferVectorFields(t *testing.T) {
	t.Parallel()

	offer, err := DeserializeOffer(dlcvectors.Offer())
	require.NoError(t, err)

	params, err := offer.ChainParams()
	require.NoError(t, err)
	require.Equal(t, chaincfg.RegressionNetParams.Name, params.Name)

	tempID, err := offer.TemporaryContractID()
	require.NoError(t, err)
	require.Equal(t, "5ee80bf145f31d2b05da8f629967ef54efb5c0aabdcec7bff0"+
		"91bdd5313b1345", hex.EncodeToString(tempID[:]))

	ci, ok := offer.ContractInfo.(*SingleContractInfo)
	require.True(t, ok)
	require.Equal(t, uint64(200000000), ci.TotalCollateral())

	desc, ok := ci.Descriptor.(*EnumeratedContractDescriptor)
	require.True(t, ok)
	require.Len(t, desc.Outcomes, 3)
	payouts := []uint64{
		desc.Outcomes[0].Payout, desc.Outcomes[1].Payout,
		desc.Outcomes[2].Payout,
	}
	require.Equal(t, []uint64{0, 153314211, 200000000}, payouts)

	oracle, ok := ci.Oracle.(*SingleOracleInfo)
	require.True(t, ok)
	event := oracle.Announcement.Event
	require.Equal(t, "dummy", event.EventID)
	require.Len(t, event.Nonces, 1)
	enum, ok := event.EventDescriptor.(*EnumEventDescriptor)
	require.True(t, ok)
	require.Equal(t, []string{"dummy1", "dummy2"}, enum.Outcomes)

	require.Equal(t, uint64(100000000), offer.OfferCollateral)
	require.Equal(t, uint64(1), offer.FeeRatePerVb)
	require.Equal(t, uint32(100), offer.ContractMaturityBound)
	require.Equal(t, uint32(200), offer.ContractTimeout)

	require.Len(t, offer.FundingInputs, 1)
	in, ok := offer.FundingInputs[0].(*FundingInputV0)
	require.True(t, ok)
	require.Equal(t, uint64(0xfa51), in.SerialID)
	require.Equal(t, uint32(0xffffffff), in.Sequence)
	require.Equal(t, uint16(107), in.MaxWitnessLen)
	require.Nil(t, in.RedeemScript)
	require.Zero(t, in.ScriptSigLen())

	op, txOut, err := in.PrevOutput()
	require.NoError(t, err)
	require.Equal(t, "86240aee87010c4399d4dd168d18096858a7c5834257c1a3f6"+
		"27eeff0e0ee14d", op.Hash.String())
	require.Equal(t, uint32(0), op.Index)
	require.Equal(t, btcutil.Amount(200000000), btcutil.Amount(txOut.Value))
}

// TestAcceptVectorFields checks the decoded contents of the accept vector
// and the conversion to and from its unsigned form.
func TestAcceptVectorFields(t *testing.T) {
	t.Parallel()

	accept, err := DeserializeAccept(dlcvectors.Accept())
	require.NoError(t, err)

	require.Equal(t, "960fb5f7960382ac7e76f3e24eb6b00059b1e68632a946843c"+
		"22e1f65fdf216a", hex.EncodeToString(accept.TemporaryContractID[:]))
	require.Equal(t, uint64(100000000), accept.AcceptCollateral)
	require.Len(t, accept.FundingInputs, 1)
	require.Equal(t, uint64(0xdae8), accept.FundingInputs[0].InputSerialID())
	require.Len(t, accept.CetAdaptorSignatures.Signatures, 3)
	require.IsType(t, &NegotiationFieldsV0{}, accept.NegotiationFields)

	aws := accept.WithoutSigs()
	again := aws.WithSigs(accept.CetAdaptorSignatures,
		accept.RefundSignature)
	require.Equal(t, accept, again)

	// Dropping the optional negotiation fields drops the trailing
	// record and nothing else.
	aws.NegotiationFields = nil
	stripped := aws.WithSigs(accept.CetAdaptorSignatures,
		accept.RefundSignature)
	b, err := Serialize(stripped)
	require.NoError(t, err)
	raw := dlcvectors.Accept()
	require.Equal(t, raw[:len(raw)-4], b)
}

// TestSignVectorFields checks the decoded contents of the sign vector.
func TestSignVectorFields(t *testing.T) {
	t.Parallel()

	sign, err := DeserializeSign(dlcvectors.Sign())
	require.NoError(t, err)

	require.Equal(t, "c1c79e1e9e2fa2840b2514902ea244f39eb3001a4037a52ea4"+
		"3c797d4f841269", hex.EncodeToString(sign.ContractID[:]))
	require.Len(t, sign.CetAdaptorSignatures.Signatures, 3)

	witnesses := sign.FundingSignatures.Witnesses()
	require.Len(t, witnesses, 1)
	require.Len(t, witnesses[0], 2)
	require.Len(t, witnesses[0][0], 71)
	require.Len(t, witnesses[0][1], 33)

	require.Equal(t, &sign.FundingSignatures,
		NewFundingSignatures(witnesses))
}

// TestAcceptValidateAgainst checks the cross-message rules between an
// accept and the offer it answers.
func TestAcceptValidateAgainst(t *testing.T) {
	t.Parallel()

	offer, err := DeserializeOffer(dlcvectors.Offer())
	require.NoError(t, err)
	tempID, err := offer.TemporaryContractID()
	require.NoError(t, err)

	fresh := func() *Accept {
		a, err := DeserializeAccept(dlcvectors.Accept())
		require.NoError(t, err)
		a.TemporaryContractID = tempID
		return a
	}

	// The vector's temporary id was not derived from the vector offer.
	vector, err := DeserializeAccept(dlcvectors.Accept())
	require.NoError(t, err)
	require.True(t, IsError(vector.ValidateAgainst(offer), ErrInvalidField))

	require.NoError(t, fresh().ValidateAgainst(offer))

	a := fresh()
	a.AcceptCollateral--
	require.True(t, IsError(a.ValidateAgainst(offer), ErrCollateralMismatch))

	a = fresh()
	a.CetAdaptorSignatures.Signatures = a.CetAdaptorSignatures.Signatures[:2]
	require.True(t, IsError(a.ValidateAgainst(offer), ErrInvalidField))

	a = fresh()
	a.FundingInputs[0].(*FundingInputV0).SerialID =
		offer.FundingInputs[0].InputSerialID()
	require.True(t, IsError(a.ValidateAgainst(offer), ErrInvalidField))
}

// TestTruncatedMessages checks that every strict prefix of a message is a
// format error and that the target message is left untouched.
func TestTruncatedMessages(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  []byte
		msg  func() Message
	}{
		{"offer", dlcvectors.Offer(), func() Message { return &Offer{} }},
		{"sign", dlcvectors.Sign(), func() Message { return &Sign{} }},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for n := 0; n < len(tc.raw); n++ {
				msg := tc.msg()
				c := NewCursor(tc.raw[:n])
				err := msg.Decode(c)
				require.Error(t, err, "prefix %d", n)
				require.True(t, IsFormatError(err),
					"prefix %d: %v", n, err)
				require.Zero(t, c.Pos())
				require.Equal(t, tc.msg(), msg)
			}
		})
	}
}

// TestAcceptOptionalTail checks that an accept ending right after its
// refund signature is complete while a partial trailing record is not.
func TestAcceptOptionalTail(t *testing.T) {
	t.Parallel()

	raw := dlcvectors.Accept()

	accept, err := DeserializeAccept(raw[:len(raw)-4])
	require.NoError(t, err)
	require.Nil(t, accept.NegotiationFields)

	for cut := 1; cut < 4; cut++ {
		_, err := DeserializeAccept(raw[:len(raw)-cut])
		require.True(t, IsFormatError(err), "cut %d: %v", cut, err)
	}
}

// TestDispatchErrors checks unknown tags, mismatched tags and trailing
// bytes.
func TestDispatchErrors(t *testing.T) {
	t.Parallel()

	_, err := Decode(hexToBytes(t, "fd123400"))
	require.True(t, IsError(err, ErrUnknownType), "%v", err)

	_, err = DeserializeOffer(dlcvectors.Accept())
	require.True(t, IsError(err, ErrTypeMismatch), "%v", err)

	_, err = Decode(append(dlcvectors.Offer(), 0x00))
	require.True(t, IsError(err, ErrTrailingData), "%v", err)

	// A valid record of the wrong family inside a union field.
	var ci SingleContractInfo
	var w Writer
	err = encodeTLV(&w, MsgSingleContractInfo, func(b *Writer) error {
		b.WriteUint64(1)
		return (&NegotiationFieldsV0{}).Encode(b)
	})
	require.NoError(t, err)
	err = ci.Decode(NewCursor(w.Bytes()))
	require.True(t, IsError(err, ErrTypeMismatch), "%v", err)

	// Unread bytes inside a record.
	w = Writer{}
	err = encodeTLV(&w, MsgNegotiationFields, func(b *Writer) error {
		b.WriteUint8(0)
		return nil
	})
	require.NoError(t, err)
	_, err = Decode(w.Bytes())
	require.True(t, IsError(err, ErrTrailingData), "%v", err)
}

// TestPeekType checks that both framings are recognised without consuming
// input.
func TestPeekType(t *testing.T) {
	t.Parallel()

	c := NewCursor(dlcvectors.Offer())
	typ, err := PeekType(c)
	require.NoError(t, err)
	require.Equal(t, MsgOffer, typ)
	require.Zero(t, c.Pos())

	b, err := Serialize(&NegotiationFieldsV0{})
	require.NoError(t, err)
	typ, err = PeekType(NewCursor(b))
	require.NoError(t, err)
	require.Equal(t, MsgNegotiationFields, typ)

	require.Len(t, RegisteredTypes(), 22)
	for _, typ := range RegisteredTypes() {
		msg, err := makeEmptyMessage(typ)
		require.NoError(t, err)
		require.Equal(t, typ, msg.MsgType())
	}
}

// TestTraceHook checks that the diagnostic hook sees every record with
// its absolute offset.
func TestTraceHook(t *testing.T) {
	t.Parallel()

	type record struct {
		typ    MessageType
		offset int
	}
	var seen []record
	trace := WithTrace(func(typ MessageType, offset, _ int) {
		seen = append(seen, record{typ, offset})
	})

	raw := dlcvectors.Offer()
	_, err := Decode(raw, trace)
	require.NoError(t, err)

	require.Equal(t, record{MsgOffer, 0}, seen[0])
	// Flags and chain hash precede the contract info.
	require.Equal(t, record{MsgSingleContractInfo, 2 + 1 + 32}, seen[1])

	types := make(map[MessageType]bool)
	for _, r := range seen {
		types[r.typ] = true
		require.Equal(t, r.typ, mustPeek(t, raw[r.offset:], r.typ))
	}
	for _, typ := range []MessageType{
		MsgEnumeratedContractDescriptor, MsgSingleOracleInfo,
		MsgOracleAnnouncement, MsgOracleEvent, MsgEnumEventDescriptor,
		MsgFundingInput,
	} {
		require.True(t, types[typ], "%v not traced", typ)
	}
}

func mustPeek(t *testing.T, b []byte, want MessageType) MessageType {
	t.Helper()

	if want.IsTopLevel() {
		typ, err := PeekType(NewCursor(b))
		require.NoError(t, err)
		return typ
	}
	v, err := NewCursor(b).PeekBigSize()
	require.NoError(t, err)
	return MessageType(v)
}

// TestJSONProjection checks that the diagnostic JSON names union variants
// and hex encodes binary fields.
func TestJSONProjection(t *testing.T) {
	t.Parallel()

	offer, err := DeserializeOffer(dlcvectors.Offer())
	require.NoError(t, err)

	b, err := json.Marshal(offer)
	require.NoError(t, err)

	var out struct {
		Network      string `json:"network"`
		ContractInfo struct {
			Type  string `json:"type"`
			Value struct {
				TotalCollateral uint64 `json:"totalCollateral"`
			} `json:"value"`
		} `json:"contractInfo"`
		FundingPubKey string `json:"fundingPubKey"`
		FundingInputs []struct {
			PrevTxID string `json:"prevTxId"`
		} `json:"fundingInputs"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, chaincfg.RegressionNetParams.Name, out.Network)
	require.Equal(t, "SingleContractInfo", out.ContractInfo.Type)
	require.Equal(t, uint64(200000000), out.ContractInfo.Value.TotalCollateral)
	require.Equal(t, hex.EncodeToString(offer.FundingPubKey[:]),
		out.FundingPubKey)
	require.Len(t, out.FundingInputs, 1)
	require.Equal(t, "86240aee87010c4399d4dd168d18096858a7c5834257c1a3f6"+
		"27eeff0e0ee14d", out.FundingInputs[0].PrevTxID)

	for _, raw := range [][]byte{dlcvectors.Accept(), dlcvectors.Sign()} {
		msg, err := Decode(raw)
		require.NoError(t, err)
		_, err = json.Marshal(msg)
		require.NoError(t, err)
	}
}
