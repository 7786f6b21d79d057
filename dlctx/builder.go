// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlctx

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcdlc/dlcwire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
)

const (
	// FundingOutputIndex is the index of the 2-of-2 output in every
	// funding transaction.
	FundingOutputIndex = 0

	// fundingTxVersion is the version of the funding transaction.
	fundingTxVersion = 2

	// fundingTxLockTime is the lock time of the funding transaction.
	fundingTxLockTime = 0
)

// Builder assembles the funding transaction of an offer and its accept.
type Builder struct {
	offer     *dlcwire.Offer
	accept    *dlcwire.AcceptWithoutSigs
	params    *chaincfg.Params
	finalizer *Finalizer

	fundingScript []byte
}

// NewBuilder prepares a funding transaction for offer and accept.  The
// messages are expected to have passed Validate and ValidateAgainst; the
// builder only repeats the checks its own arithmetic depends on.
func NewBuilder(offer *dlcwire.Offer,
	accept *dlcwire.AcceptWithoutSigs) (*Builder, error) {

	params, err := offer.ChainParams()
	if err != nil {
		return nil, err
	}

	finalizer, err := NewFinalizer(OfferParty(offer), AcceptParty(accept),
		offer.FeeRatePerVb)
	if err != nil {
		return nil, err
	}

	script, err := fundingScript(offer.FundingPubKey, accept.FundingPubKey,
		params)
	if err != nil {
		return nil, err
	}

	return &Builder{
		offer:         offer,
		accept:        accept,
		params:        params,
		finalizer:     finalizer,
		fundingScript: script,
	}, nil
}

// Finalizer returns the fee split the builder uses.
func (b *Builder) Finalizer() *Finalizer {
	return b.finalizer
}

// FundingScript returns the 2-of-2 witness script locked by the funding
// output.
func (b *Builder) FundingScript() []byte {
	return b.fundingScript
}

// fundingScript returns the 2-of-2 multisig script over both funding keys,
// sorted lexicographically by their compressed encoding.
func fundingScript(offerKey, acceptKey [33]byte,
	params *chaincfg.Params) ([]byte, error) {

	keys := [][]byte{offerKey[:], acceptKey[:]}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})

	addrs := make([]*btcutil.AddressPubKey, 0, len(keys))
	for _, k := range keys {
		if _, err := btcec.ParsePubKey(k); err != nil {
			return nil, txError(ErrInvalidKey, fmt.Sprintf(
				"funding key %x", k), err)
		}
		addr, err := btcutil.NewAddressPubKey(k, params)
		if err != nil {
			return nil, txError(ErrInvalidKey, fmt.Sprintf(
				"funding key %x", k), err)
		}
		addrs = append(addrs, addr)
	}

	return txscript.MultiSigScript(addrs, len(addrs))
}

// fundingInput is one input of the funding transaction together with the
// output it spends.
type fundingInput struct {
	input    *dlcwire.FundingInputV0
	outPoint wire.OutPoint
	prevOut  *wire.TxOut
}

// collectInputs resolves the outputs spent by a party's funding inputs and
// returns their total value.
func collectInputs(role string,
	inputs []dlcwire.FundingInput) ([]fundingInput, btcutil.Amount, error) {

	resolved := make([]fundingInput, 0, len(inputs))
	var total btcutil.Amount
	for i, in := range inputs {
		v0, ok := in.(*dlcwire.FundingInputV0)
		if !ok {
			return nil, 0, txError(ErrUnsupportedFundingInput,
				fmt.Sprintf("%s funding input %d has unsupported "+
					"type %v", role, i, in.MsgType()), nil)
		}
		op, prevOut, err := v0.PrevOutput()
		if err != nil {
			return nil, 0, txError(ErrInvalidFundingInput,
				fmt.Sprintf("%s funding input %d", role, i), err)
		}
		if prevOut.Value < 0 {
			return nil, 0, txError(ErrInvalidFundingInput,
				fmt.Sprintf("%s funding input %d spends a "+
					"negative value", role, i), nil)
		}
		total, err = addAmounts(total, btcutil.Amount(prevOut.Value))
		if err != nil {
			return nil, 0, err
		}
		resolved = append(resolved, fundingInput{
			input:    v0,
			outPoint: op,
			prevOut:  prevOut,
		})
	}
	return resolved, total, nil
}

// changeValue returns total less collateral and fees.
func changeValue(role string, total btcutil.Amount, collateral uint64,
	fees PartyFees) (btcutil.Amount, error) {

	if collateral > uint64(btcutil.MaxSatoshi) {
		return 0, txError(ErrOverflow, fmt.Sprintf("%s collateral %d "+
			"exceeds the money supply", role, collateral), nil)
	}
	c := btcutil.Amount(collateral)
	if total < c {
		return 0, txError(ErrInsufficientFunds, fmt.Sprintf("%s inputs "+
			"total %v, collateral is %v", role, total, c), nil)
	}
	change := total - c - fees.Total()
	if change < 0 {
		return 0, txError(ErrNegativeChange, fmt.Sprintf("%s inputs "+
			"total %v, collateral %v and fees %v leave %v change",
			role, total, c, fees.Total(), change), nil)
	}
	return change, nil
}

// changeScript returns the P2WPKH script paying to spk, which must already
// be of that form.
func (b *Builder) changeScript(role string, spk []byte) ([]byte, error) {
	if !txscript.IsPayToWitnessPubKeyHash(spk) {
		return nil, txError(ErrInvalidScript, fmt.Sprintf("%s change "+
			"script %x is not P2WPKH", role, spk), nil)
	}
	addr, err := btcutil.NewAddressWitnessPubKeyHash(spk[2:], b.params)
	if err != nil {
		return nil, txError(ErrInvalidScript, fmt.Sprintf("%s change "+
			"script %x", role, spk), err)
	}
	return txscript.PayToAddrScript(addr)
}

// Build returns the unsigned funding transaction.
func (b *Builder) Build() (*wire.MsgTx, error) {
	tx, _, err := b.build()
	return tx, err
}

func (b *Builder) build() (*wire.MsgTx, []fundingInput, error) {
	offerIns, offerTotal, err := collectInputs("offer",
		b.offer.FundingInputs)
	if err != nil {
		return nil, nil, err
	}
	acceptIns, acceptTotal, err := collectInputs("accept",
		b.accept.FundingInputs)
	if err != nil {
		return nil, nil, err
	}

	offerFees := b.finalizer.OfferFees()
	acceptFees := b.finalizer.AcceptFees()

	offerChange, err := changeValue("offer", offerTotal,
		b.offer.OfferCollateral, offerFees)
	if err != nil {
		return nil, nil, err
	}
	acceptChange, err := changeValue("accept", acceptTotal,
		b.accept.AcceptCollateral, acceptFees)
	if err != nil {
		return nil, nil, err
	}

	fundingValue, err := addAmounts(
		btcutil.Amount(b.offer.OfferCollateral),
		btcutil.Amount(b.accept.AcceptCollateral),
		offerFees.FutureFee, acceptFees.FutureFee,
	)
	if err != nil {
		return nil, nil, err
	}

	fundingPkScript, err := witnessScriptHash(b.fundingScript, b.params)
	if err != nil {
		return nil, nil, err
	}
	offerChangeScript, err := b.changeScript("offer", b.offer.ChangeSPK)
	if err != nil {
		return nil, nil, err
	}
	acceptChangeScript, err := b.changeScript("accept", b.accept.ChangeSPK)
	if err != nil {
		return nil, nil, err
	}

	tx := wire.NewMsgTx(fundingTxVersion)
	tx.LockTime = fundingTxLockTime

	inputs := append(offerIns[:len(offerIns):len(offerIns)], acceptIns...)
	for _, in := range inputs {
		sigScript, err := in.input.SignatureScript()
		if err != nil {
			return nil, nil, txError(ErrInvalidScript,
				"signature script", err)
		}
		txIn := wire.NewTxIn(&in.outPoint, sigScript, nil)
		txIn.Sequence = wire.MaxTxInSequenceNum
		tx.AddTxIn(txIn)
	}

	tx.AddTxOut(wire.NewTxOut(int64(fundingValue), fundingPkScript))
	tx.AddTxOut(wire.NewTxOut(int64(offerChange), offerChangeScript))
	tx.AddTxOut(wire.NewTxOut(int64(acceptChange), acceptChangeScript))

	for i, out := range tx.TxOut[FundingOutputIndex+1:] {
		if txrules.IsDustOutput(out, txrules.DefaultRelayFeePerKb) {
			log.Warnf("Funding transaction change output %d of %v "+
				"is dust", i+1, btcutil.Amount(out.Value))
		}
	}

	log.Infof("Built funding transaction %v spending %d %s, funding "+
		"output %v, fee %v", tx.TxHash(), len(tx.TxIn),
		pickNoun(len(tx.TxIn), "input", "inputs"), fundingValue,
		b.finalizer.TotalFundingFee())
	log.Tracef("Funding transaction: %v", spewTx(tx))

	return tx, inputs, nil
}

// BuildPacket returns the funding transaction as a PSBT carrying the
// spent output of every input and the funding witness script.
func (b *Builder) BuildPacket() (*psbt.Packet, error) {
	tx, inputs, err := b.build()
	if err != nil {
		return nil, err
	}

	// A PSBT carries signature scripts in its inputs, not in the
	// unsigned transaction.
	unsigned := tx.Copy()
	for _, txIn := range unsigned.TxIn {
		txIn.SignatureScript = nil
	}

	packet, err := psbt.NewFromUnsignedTx(unsigned)
	if err != nil {
		return nil, err
	}
	for i, in := range inputs {
		packet.Inputs[i].WitnessUtxo = in.prevOut
		packet.Inputs[i].SighashType = txscript.SigHashAll
		if len(in.input.RedeemScript) != 0 {
			packet.Inputs[i].RedeemScript = in.input.RedeemScript
		}
	}
	packet.Outputs[FundingOutputIndex].WitnessScript = b.fundingScript

	return packet, nil
}

// ContractID returns the id of the contract funded by tempID's funding
// transaction.  It is the funding txid in display byte order xor the
// temporary id, with the output index xored into the last two bytes.
func ContractID(fundTxID chainhash.Hash, outputIndex uint16,
	tempID [32]byte) [32]byte {

	var id [32]byte
	for i := range id {
		id[i] = fundTxID[chainhash.HashSize-1-i] ^ tempID[i]
	}
	id[30] ^= byte(outputIndex >> 8)
	id[31] ^= byte(outputIndex)
	return id
}

// ContractID builds the funding transaction and returns the id of the
// contract it funds.
func (b *Builder) ContractID() ([32]byte, error) {
	tx, err := b.Build()
	if err != nil {
		return [32]byte{}, err
	}
	return ContractID(tx.TxHash(), FundingOutputIndex,
		b.accept.TemporaryContractID), nil
}

func witnessScriptHash(script []byte, params *chaincfg.Params) ([]byte, error) {
	h := sha256.Sum256(script)
	addr, err := btcutil.NewAddressWitnessScriptHash(h[:], params)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}
