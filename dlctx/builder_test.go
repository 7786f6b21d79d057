// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlctx

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcdlc/dlcwire"
	"github.com/btcsuite/btcdlc/internal/dlcvectors"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

const (
	offerPrevTxID  = "86240aee87010c4399d4dd168d18096858a7c5834257c1a3f627eeff0e0ee14d"
	acceptPrevTxID = "a2f72a6d2c0111ba4aca0ac68777a7e114ab416c0a8c1d3d1e82f221b367a4a0"

	offerChangeSPK  = "0014afa16f949f3055f38bd3a73312bed00b61558884"
	acceptChangeSPK = "0014074c82dbe058212905bacc61814456b7415012ed"

	offerFundingKey  = "0327efea09ff4dfb13230e887cbab8821d5cc249c7ff28668c6633ff9f4b4c08e3"
	acceptFundingKey = "026d8bec9093f96ccc42de166cb9a6c576c95fc24ee16b10e87c3baaa4e49684d9"

	fundingTxID = "7757d13921de488c16ee1834f4e1a09b5ab15f72fa4ab6562eed5c12026e7857"
	contractID  = "e15864ceb7ddca206898ebd6ba57109b0300b9f4c8e3f0d212cfbde45db1593d"
)

// vectorMessages decodes the canonical offer and accept.
func vectorMessages(t *testing.T) (*dlcwire.Offer, *dlcwire.AcceptWithoutSigs) {
	t.Helper()

	offer, err := dlcwire.DeserializeOffer(dlcvectors.Offer())
	require.NoError(t, err)
	require.NoError(t, offer.Validate())

	// The accept's temporary id was not derived from this offer, so the
	// messages are only validated on their own.
	accept, err := dlcwire.DeserializeAccept(dlcvectors.Accept())
	require.NoError(t, err)
	require.NoError(t, accept.Validate())

	return offer, accept.WithoutSigs()
}

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// TestBuildVector builds the funding transaction of the canonical offer
// and accept and checks every field of the result.
func TestBuildVector(t *testing.T) {
	t.Parallel()

	offer, accept := vectorMessages(t)
	b, err := NewBuilder(offer, accept)
	require.NoError(t, err)

	tx, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, int32(2), tx.Version)
	require.Zero(t, tx.LockTime)

	require.Len(t, tx.TxIn, 2, spew.Sdump(tx))
	require.Equal(t, offerPrevTxID, tx.TxIn[0].PreviousOutPoint.Hash.String())
	require.Equal(t, acceptPrevTxID, tx.TxIn[1].PreviousOutPoint.Hash.String())
	for _, txIn := range tx.TxIn {
		require.Zero(t, txIn.PreviousOutPoint.Index)
		require.Equal(t, uint32(wire.MaxTxInSequenceNum), txIn.Sequence)
		require.Empty(t, txIn.SignatureScript)
		require.Empty(t, txIn.Witness)
	}

	require.Len(t, tx.TxOut, 3)
	funding := tx.TxOut[FundingOutputIndex]
	require.Equal(t, int64(200000170), funding.Value)
	scriptHash := sha256.Sum256(b.FundingScript())
	require.Equal(t, append([]byte{txscript.OP_0, txscript.OP_DATA_32},
		scriptHash[:]...), funding.PkScript)

	require.Equal(t, int64(99999789), tx.TxOut[1].Value)
	require.Equal(t, hexBytes(t, offerChangeSPK), tx.TxOut[1].PkScript)
	require.Equal(t, int64(99999789), tx.TxOut[2].Value)
	require.Equal(t, hexBytes(t, acceptChangeSPK), tx.TxOut[2].PkScript)

	require.Equal(t, fundingTxID, tx.TxHash().String())

	id, err := b.ContractID()
	require.NoError(t, err)
	require.Equal(t, contractID, hex.EncodeToString(id[:]))
}

// TestValueConservation checks that the inputs pay for the outputs and
// exactly the funding fee both parties owe.
func TestValueConservation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		feeRate uint64
	}{
		{"minimum", 1},
		{"typical", 25},
		{"high", 1000},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			offer, accept := vectorMessages(t)
			offer.FeeRatePerVb = tc.feeRate

			b, err := NewBuilder(offer, accept)
			require.NoError(t, err)
			tx, err := b.Build()
			require.NoError(t, err)

			var in, out int64
			for _, txIn := range tx.TxIn {
				in += valueSpent(t, offer, accept, txIn.PreviousOutPoint)
			}
			for _, txOut := range tx.TxOut {
				out += txOut.Value
			}

			f := b.Finalizer()
			require.Equal(t, btcutil.Amount(in-out), f.TotalFundingFee())

			wantFunding := int64(offer.OfferCollateral+
				accept.AcceptCollateral) +
				int64(f.OfferFutureFee()+f.AcceptFutureFee())
			require.Equal(t, wantFunding, tx.TxOut[FundingOutputIndex].Value)
		})
	}
}

func valueSpent(t *testing.T, offer *dlcwire.Offer,
	accept *dlcwire.AcceptWithoutSigs, op wire.OutPoint) int64 {

	t.Helper()

	inputs := append(offer.FundingInputs[:len(offer.FundingInputs):len(offer.FundingInputs)],
		accept.FundingInputs...)
	for _, in := range inputs {
		got, prevOut, err := in.(*dlcwire.FundingInputV0).PrevOutput()
		require.NoError(t, err)
		if got == op {
			return prevOut.Value
		}
	}
	t.Fatalf("no funding input spends %v", op)
	return 0
}

// TestFundingScript checks that the funding keys appear in lexicographic
// order whichever party holds the smaller key.
func TestFundingScript(t *testing.T) {
	t.Parallel()

	offer, accept := vectorMessages(t)
	b, err := NewBuilder(offer, accept)
	require.NoError(t, err)

	want := []byte{txscript.OP_2, txscript.OP_DATA_33}
	want = append(want, hexBytes(t, acceptFundingKey)...)
	want = append(want, txscript.OP_DATA_33)
	want = append(want, hexBytes(t, offerFundingKey)...)
	want = append(want, txscript.OP_2, txscript.OP_CHECKMULTISIG)
	require.Equal(t, want, b.FundingScript())

	// Swapping the keys between the parties yields the same script.
	offer.FundingPubKey, accept.FundingPubKey =
		accept.FundingPubKey, offer.FundingPubKey
	swapped, err := NewBuilder(offer, accept)
	require.NoError(t, err)
	require.Equal(t, want, swapped.FundingScript())

	accept.FundingPubKey[0] = 0x05
	_, err = NewBuilder(offer, accept)
	require.True(t, IsError(err, ErrInvalidKey), "%v", err)
}

// TestBuildRejectsUnpayable checks that parties who cannot cover their
// collateral and fees produce an error instead of a clamped transaction.
func TestBuildRejectsUnpayable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		collateral uint64
		code       ErrorCode
	}{
		{"collateral above inputs", 300000000, ErrInsufficientFunds},
		{"fees above remainder", 200000000, ErrNegativeChange},
		{"one satoshi short", 200000000 - 210, ErrNegativeChange},
		{"above money supply", uint64(btcutil.MaxSatoshi) + 1, ErrOverflow},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			offer, accept := vectorMessages(t)
			offer.OfferCollateral = tc.collateral

			b, err := NewBuilder(offer, accept)
			require.NoError(t, err)
			_, err = b.Build()
			require.True(t, IsError(err, tc.code), "%v", err)
			require.True(t, IsArithmeticError(err))
		})
	}

	// Exactly enough leaves a zero value change output.
	offer, accept := vectorMessages(t)
	offer.OfferCollateral = 200000000 - 211
	b, err := NewBuilder(offer, accept)
	require.NoError(t, err)
	tx, err := b.Build()
	require.NoError(t, err)
	require.Zero(t, tx.TxOut[1].Value)
}

// TestBuildRejectsChangeScript checks that change must pay to a P2WPKH
// script.
func TestBuildRejectsChangeScript(t *testing.T) {
	t.Parallel()

	offer, accept := vectorMessages(t)
	accept.ChangeSPK = append([]byte{txscript.OP_0, txscript.OP_DATA_32},
		bytes.Repeat([]byte{1}, 32)...)

	b, err := NewBuilder(offer, accept)
	require.NoError(t, err)
	_, err = b.Build()
	require.True(t, IsError(err, ErrInvalidScript), "%v", err)
	require.True(t, IsValidationError(err))
}

// TestBuildPacket checks the PSBT form of the funding transaction.
func TestBuildPacket(t *testing.T) {
	t.Parallel()

	offer, accept := vectorMessages(t)
	b, err := NewBuilder(offer, accept)
	require.NoError(t, err)

	packet, err := b.BuildPacket()
	require.NoError(t, err)
	require.Equal(t, fundingTxID, packet.UnsignedTx.TxHash().String())

	require.Len(t, packet.Inputs, 2)
	for _, in := range packet.Inputs {
		require.NotNil(t, in.WitnessUtxo)
		require.Equal(t, int64(200000000), in.WitnessUtxo.Value)
		require.Empty(t, in.RedeemScript)
	}
	require.Equal(t, b.FundingScript(),
		packet.Outputs[FundingOutputIndex].WitnessScript)

	var buf bytes.Buffer
	require.NoError(t, packet.Serialize(&buf))
	parsed, err := psbt.NewFromRawBytes(&buf, false)
	require.NoError(t, err)
	require.Equal(t, packet.UnsignedTx.TxHash(), parsed.UnsignedTx.TxHash())
}

// TestContractID checks the xor of the funding txid, output index and
// temporary id.
func TestContractID(t *testing.T) {
	t.Parallel()

	var txid chainhash.Hash
	txid[0] = 0x01
	txid[31] = 0xff

	var temp [32]byte
	temp[0] = 0x0f
	temp[31] = 0x01

	id := ContractID(txid, 0x0102, temp)

	// The txid is taken in display order, so its last internal byte
	// lands first.
	require.Equal(t, byte(0xff^0x0f), id[0])
	require.Equal(t, byte(0x01), id[30])
	require.Equal(t, byte(0x01^0x01^0x02), id[31])
	for i := 1; i < 30; i++ {
		require.Zero(t, id[i], "byte %d", i)
	}
}
