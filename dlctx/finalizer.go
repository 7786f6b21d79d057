// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlctx

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcdlc/dlcwire"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
)

const (
	// futureBaseWeight is each party's share of the settlement
	// transaction weight, excluding its payout script.  It covers half
	// of the transaction overhead, the shared funding input and its
	// 2-of-2 witness, and the party's payout output without its script.
	futureBaseWeight = 249

	// fundingBaseWeight is each party's share of the funding transaction
	// overhead and funding output.
	fundingBaseWeight = 107

	// changeBaseWeight is the weight of a change output without its
	// script: 8 value bytes and a one byte script length.
	changeBaseWeight = (8 + 1) * blockchain.WitnessScaleFactor

	// inputBaseWeight is the weight of a segwit input with an empty
	// signature script and no witness.
	inputBaseWeight = txsizes.RedeemP2WPKHInputSize * blockchain.WitnessScaleFactor
)

// Party holds the part of an offer or accept the fee computation depends
// on.
type Party struct {
	FundingInputs []dlcwire.FundingInput
	PayoutSPK     []byte
	ChangeSPK     []byte
}

// OfferParty extracts the fee relevant fields of an offer.
func OfferParty(o *dlcwire.Offer) Party {
	return Party{
		FundingInputs: o.FundingInputs,
		PayoutSPK:     o.PayoutSPK,
		ChangeSPK:     o.ChangeSPK,
	}
}

// AcceptParty extracts the fee relevant fields of an accept.
func AcceptParty(a *dlcwire.AcceptWithoutSigs) Party {
	return Party{
		FundingInputs: a.FundingInputs,
		PayoutSPK:     a.PayoutSPK,
		ChangeSPK:     a.ChangeSPK,
	}
}

// PartyFees is what one party contributes to the funding transaction fee
// and to the future settlement transaction fee.
type PartyFees struct {
	FundingFee btcutil.Amount
	FutureFee  btcutil.Amount
}

// Total returns the sum of both fees.
func (f PartyFees) Total() btcutil.Amount {
	return f.FundingFee + f.FutureFee
}

// Finalizer holds the fee split of a dual funded contract.  It is
// immutable once constructed.
type Finalizer struct {
	feeRate uint64
	offer   PartyFees
	accept  PartyFees
}

// NewFinalizer computes both parties' fees at feeRate satoshis per virtual
// byte.
func NewFinalizer(offer, accept Party, feeRate uint64) (*Finalizer, error) {
	offerFees, err := partyFees("offer", offer, feeRate)
	if err != nil {
		return nil, err
	}
	acceptFees, err := partyFees("accept", accept, feeRate)
	if err != nil {
		return nil, err
	}
	if _, err := addAmounts(offerFees.FundingFee, acceptFees.FundingFee); err != nil {
		return nil, err
	}

	log.Debugf("Fees at %d sat/vB: offer funding %v future %v, accept "+
		"funding %v future %v", feeRate, offerFees.FundingFee,
		offerFees.FutureFee, acceptFees.FundingFee, acceptFees.FutureFee)

	return &Finalizer{
		feeRate: feeRate,
		offer:   offerFees,
		accept:  acceptFees,
	}, nil
}

// FeeRate returns the fee rate in satoshis per virtual byte.
func (f *Finalizer) FeeRate() uint64 {
	return f.feeRate
}

// OfferFees returns the offering party's fees.
func (f *Finalizer) OfferFees() PartyFees {
	return f.offer
}

// AcceptFees returns the accepting party's fees.
func (f *Finalizer) AcceptFees() PartyFees {
	return f.accept
}

// OfferFutureFee returns the offering party's share of the settlement fee.
func (f *Finalizer) OfferFutureFee() btcutil.Amount {
	return f.offer.FutureFee
}

// AcceptFutureFee returns the accepting party's share of the settlement
// fee.
func (f *Finalizer) AcceptFutureFee() btcutil.Amount {
	return f.accept.FutureFee
}

// TotalFundingFee returns the miner fee paid by the funding transaction.
func (f *Finalizer) TotalFundingFee() btcutil.Amount {
	return f.offer.FundingFee + f.accept.FundingFee
}

func partyFees(role string, p Party, feeRate uint64) (PartyFees, error) {
	futureWeight, err := weightOf(futureBaseWeight,
		blockchain.WitnessScaleFactor, uint64(len(p.PayoutSPK)))
	if err != nil {
		return PartyFees{}, err
	}

	fundingWeight, err := weightOf(fundingBaseWeight+changeBaseWeight,
		blockchain.WitnessScaleFactor, uint64(len(p.ChangeSPK)))
	if err != nil {
		return PartyFees{}, err
	}
	for i, in := range p.FundingInputs {
		v0, ok := in.(*dlcwire.FundingInputV0)
		if !ok {
			return PartyFees{}, txError(ErrUnsupportedFundingInput,
				fmt.Sprintf("%s funding input %d has unsupported "+
					"type %v", role, i, in.MsgType()), nil)
		}
		w, err := weightOf(inputBaseWeight,
			blockchain.WitnessScaleFactor, uint64(v0.ScriptSigLen()))
		if err != nil {
			return PartyFees{}, err
		}
		w, carry := bits.Add64(w, uint64(v0.MaxWitnessLen), 0)
		if carry != 0 {
			return PartyFees{}, overflowErr("input weight")
		}
		fundingWeight, carry = bits.Add64(fundingWeight, w, 0)
		if carry != 0 {
			return PartyFees{}, overflowErr("funding weight")
		}
	}

	futureFee, err := feeFor(futureWeight, feeRate)
	if err != nil {
		return PartyFees{}, err
	}
	fundingFee, err := feeFor(fundingWeight, feeRate)
	if err != nil {
		return PartyFees{}, err
	}
	if _, err := addAmounts(futureFee, fundingFee); err != nil {
		return PartyFees{}, err
	}
	return PartyFees{FundingFee: fundingFee, FutureFee: futureFee}, nil
}

// weightOf returns base + scale*n.
func weightOf(base, scale, n uint64) (uint64, error) {
	hi, lo := bits.Mul64(scale, n)
	if hi != 0 {
		return 0, overflowErr("weight")
	}
	w, carry := bits.Add64(base, lo, 0)
	if carry != 0 {
		return 0, overflowErr("weight")
	}
	return w, nil
}

// feeFor converts weight to virtual bytes, rounding up, and prices them at
// feeRate.
func feeFor(weight, feeRate uint64) (btcutil.Amount, error) {
	vbytes := weight / blockchain.WitnessScaleFactor
	if weight%blockchain.WitnessScaleFactor != 0 {
		vbytes++
	}
	hi, fee := bits.Mul64(vbytes, feeRate)
	if hi != 0 || fee > math.MaxInt64 {
		return 0, overflowErr("fee")
	}
	return btcutil.Amount(fee), nil
}

// addAmounts sums non-negative amounts, failing on overflow.
func addAmounts(amounts ...btcutil.Amount) (btcutil.Amount, error) {
	var sum uint64
	for _, a := range amounts {
		var carry uint64
		sum, carry = bits.Add64(sum, uint64(a), 0)
		if carry != 0 || sum > math.MaxInt64 {
			return 0, overflowErr("amount")
		}
	}
	return btcutil.Amount(sum), nil
}

func overflowErr(what string) Error {
	return txError(ErrOverflow, what+" overflows 64 bits", nil)
}
