// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// knownNetworks are the networks a chain hash is resolved against.
var knownNetworks = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SimNetParams,
	&chaincfg.SigNetParams,
}

// Offer opens a contract negotiation.  It carries the contract and
// everything the offering party contributes to the funding transaction.
type Offer struct {
	ContractFlags         uint8
	ChainHash             chainhash.Hash
	ContractInfo          ContractInfo
	FundingPubKey         [33]byte
	PayoutSPK             []byte
	OfferCollateral       uint64
	FundingInputs         []FundingInput
	ChangeSPK             []byte
	FeeRatePerVb          uint64
	ContractMaturityBound uint32
	ContractTimeout       uint32
}

// A compile-time check to ensure Offer implements Message.
var _ Message = (*Offer)(nil)

// DeserializeOffer decodes an offer that occupies all of b.
func DeserializeOffer(b []byte, opts ...CursorOption) (*Offer, error) {
	var o Offer
	if err := deserialize(b, &o, opts...); err != nil {
		return nil, err
	}
	return &o, nil
}

// MsgType returns the message type.
func (o *Offer) MsgType() MessageType {
	return MsgOffer
}

// Decode reads an offer message.
func (o *Offer) Decode(c *Cursor) error {
	var decoded Offer
	err := decodeMessage(c, MsgOffer, func(b *Cursor) error {
		var err error
		if decoded.ContractFlags, err = b.ReadUint8(); err != nil {
			return err
		}
		if err := b.ReadFull(decoded.ChainHash[:]); err != nil {
			return err
		}
		if decoded.ContractInfo, err = decodeContractInfo(b); err != nil {
			return err
		}
		if err := b.ReadFull(decoded.FundingPubKey[:]); err != nil {
			return err
		}
		if decoded.PayoutSPK, err = b.ReadVarBytes16(); err != nil {
			return err
		}
		if decoded.OfferCollateral, err = b.ReadUint64(); err != nil {
			return err
		}
		if decoded.FundingInputs, err = decodeFundingInputs(b); err != nil {
			return err
		}
		if decoded.ChangeSPK, err = b.ReadVarBytes16(); err != nil {
			return err
		}
		if decoded.FeeRatePerVb, err = b.ReadUint64(); err != nil {
			return err
		}
		if decoded.ContractMaturityBound, err = b.ReadUint32(); err != nil {
			return err
		}
		decoded.ContractTimeout, err = b.ReadUint32()
		return err
	})
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

// Encode writes the offer message.
func (o *Offer) Encode(w *Writer) error {
	if o.ContractInfo == nil {
		return invalidf("offer has no contract info")
	}
	return encodeMessage(w, MsgOffer, func(b *Writer) error {
		b.WriteUint8(o.ContractFlags)
		b.WriteBytes(o.ChainHash[:])
		if err := o.ContractInfo.Encode(b); err != nil {
			return err
		}
		b.WriteBytes(o.FundingPubKey[:])
		if err := b.WriteVarBytes16("payout script", o.PayoutSPK); err != nil {
			return err
		}
		b.WriteUint64(o.OfferCollateral)
		if err := encodeFundingInputs(b, o.FundingInputs); err != nil {
			return err
		}
		if err := b.WriteVarBytes16("change script", o.ChangeSPK); err != nil {
			return err
		}
		b.WriteUint64(o.FeeRatePerVb)
		b.WriteUint32(o.ContractMaturityBound)
		b.WriteUint32(o.ContractTimeout)
		return nil
	})
}

// Validate checks the offer on its own: the network, the contract, the
// offering party's keys, scripts and inputs, its collateral and the
// contract timing.
func (o *Offer) Validate() error {
	if _, err := o.ChainParams(); err != nil {
		return err
	}
	if o.ContractInfo == nil {
		return invalidf("offer has no contract info")
	}
	if err := o.ContractInfo.Validate(); err != nil {
		return err
	}
	err := validateParty("offer", o.FundingPubKey, o.PayoutSPK,
		o.ChangeSPK, o.FundingInputs)
	if err != nil {
		return err
	}
	if total := o.ContractInfo.TotalCollateral(); o.OfferCollateral > total {
		return messageError(ErrCollateralMismatch, fmt.Sprintf(
			"offer collateral %d exceeds total collateral %d",
			o.OfferCollateral, total), nil)
	}
	if o.FeeRatePerVb == 0 {
		return invalidf("offer fee rate is zero")
	}
	if o.ContractMaturityBound >= o.ContractTimeout {
		return invalidf("contract maturity %d is not before timeout %d",
			o.ContractMaturityBound, o.ContractTimeout)
	}
	return nil
}

// ChainParams returns the network the offer's chain hash names.
func (o *Offer) ChainParams() (*chaincfg.Params, error) {
	for _, params := range knownNetworks {
		if *params.GenesisHash == o.ChainHash {
			return params, nil
		}
	}
	return nil, messageError(ErrUnknownChain, fmt.Sprintf(
		"chain hash %v matches no known network", o.ChainHash), nil)
}

// TemporaryContractID returns the SHA-256 of the serialized offer, the id
// under which the offer is known until the funding transaction exists.
func (o *Offer) TemporaryContractID() ([32]byte, error) {
	b, err := Serialize(o)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// TotalCollateral returns the total collateral of the offered contract.
func (o *Offer) TotalCollateral() uint64 {
	if o.ContractInfo == nil {
		return 0
	}
	return o.ContractInfo.TotalCollateral()
}

func decodeFundingInputs(c *Cursor) ([]FundingInput, error) {
	n, err := c.ReadUint16()
	if err != nil {
		return nil, err
	}
	inputs := make([]FundingInput, 0, n)
	for i := 0; i < int(n); i++ {
		in, err := decodeFundingInput(c)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func encodeFundingInputs(w *Writer, inputs []FundingInput) error {
	if err := w.WriteCount16("funding inputs", len(inputs)); err != nil {
		return err
	}
	for _, in := range inputs {
		if err := in.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// validateParty checks the fields both the offering and the accepting
// party contribute.
func validateParty(role string, pubKey [33]byte, payoutSPK, changeSPK []byte,
	inputs []FundingInput) error {

	if _, err := btcec.ParsePubKey(pubKey[:]); err != nil {
		return messageError(ErrInvalidKey, fmt.Sprintf(
			"%s funding pubkey %x", role, pubKey[:]), err)
	}
	if txscript.GetScriptClass(payoutSPK) == txscript.NonStandardTy {
		return messageError(ErrInvalidScript, fmt.Sprintf(
			"%s payout script %x is not standard", role, payoutSPK),
			nil)
	}
	if !txscript.IsPayToWitnessPubKeyHash(changeSPK) {
		return messageError(ErrInvalidScript, fmt.Sprintf(
			"%s change script %x is not P2WPKH", role, changeSPK),
			nil)
	}
	if len(inputs) == 0 {
		return invalidf("%s has no funding inputs", role)
	}
	seen := make(map[uint64]struct{}, len(inputs))
	for _, in := range inputs {
		id := in.InputSerialID()
		if _, ok := seen[id]; ok {
			return invalidf("%s funding input serial id %d is "+
				"duplicated", role, id)
		}
		seen[id] = struct{}{}
		if err := in.Validate(); err != nil {
			return err
		}
	}
	return nil
}
