// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"fmt"
	"math/bits"
)

// AcceptWithoutSigs is an accept message before the accepting party has
// produced its CET adaptor signatures and refund signature.  It has no
// wire form of its own; it is what the funding transaction is built from.
type AcceptWithoutSigs struct {
	TemporaryContractID [32]byte
	AcceptCollateral    uint64
	FundingPubKey       [33]byte
	PayoutSPK           []byte
	FundingInputs       []FundingInput
	ChangeSPK           []byte

	// NegotiationFields is nil when the accepting party proposes no
	// changes and omitted the record.
	NegotiationFields NegotiationFields
}

// WithSigs attaches the accepting party's signatures.
func (a *AcceptWithoutSigs) WithSigs(cetSigs CetAdaptorSignatures,
	refundSig [64]byte) *Accept {

	return &Accept{
		AcceptWithoutSigs:    *a,
		CetAdaptorSignatures: cetSigs,
		RefundSignature:      refundSig,
	}
}

// Validate checks the accepting party's keys, scripts and inputs and any
// proposed negotiation fields.
func (a *AcceptWithoutSigs) Validate() error {
	err := validateParty("accept", a.FundingPubKey, a.PayoutSPK,
		a.ChangeSPK, a.FundingInputs)
	if err != nil {
		return err
	}
	if a.NegotiationFields != nil {
		return a.NegotiationFields.Validate()
	}
	return nil
}

// ValidateAgainst checks that the accept answers offer: it references the
// offer's temporary id, the collaterals add up to the total collateral
// and neither party reuses the other's funding input serial ids.
func (a *AcceptWithoutSigs) ValidateAgainst(offer *Offer) error {
	tempID, err := offer.TemporaryContractID()
	if err != nil {
		return err
	}
	if tempID != a.TemporaryContractID {
		return invalidf("accept references temporary contract id %x, "+
			"offer is %x", a.TemporaryContractID[:], tempID[:])
	}

	total := offer.TotalCollateral()
	sum, carry := bits.Add64(offer.OfferCollateral, a.AcceptCollateral, 0)
	if carry != 0 || sum != total {
		return messageError(ErrCollateralMismatch, fmt.Sprintf(
			"offer collateral %d and accept collateral %d do not "+
				"add up to total collateral %d",
			offer.OfferCollateral, a.AcceptCollateral, total), nil)
	}

	offered := make(map[uint64]struct{}, len(offer.FundingInputs))
	for _, in := range offer.FundingInputs {
		offered[in.InputSerialID()] = struct{}{}
	}
	for _, in := range a.FundingInputs {
		if _, ok := offered[in.InputSerialID()]; ok {
			return invalidf("accept funding input serial id %d is "+
				"also used by the offer", in.InputSerialID())
		}
	}
	return nil
}

// Accept answers an offer with the accepting party's funding contribution
// and its signatures.
type Accept struct {
	AcceptWithoutSigs

	CetAdaptorSignatures CetAdaptorSignatures
	RefundSignature      [64]byte
}

// A compile-time check to ensure Accept implements Message.
var _ Message = (*Accept)(nil)

// DeserializeAccept decodes an accept that occupies all of b.
func DeserializeAccept(b []byte, opts ...CursorOption) (*Accept, error) {
	var a Accept
	if err := deserialize(b, &a, opts...); err != nil {
		return nil, err
	}
	return &a, nil
}

// MsgType returns the message type.
func (a *Accept) MsgType() MessageType {
	return MsgAccept
}

// WithoutSigs returns a copy of the accept stripped of its signatures.
func (a *Accept) WithoutSigs() *AcceptWithoutSigs {
	aws := a.AcceptWithoutSigs
	return &aws
}

// Decode reads an accept message.  The negotiation fields record is
// optional and, when present, ends the message.
func (a *Accept) Decode(c *Cursor) error {
	var decoded Accept
	err := decodeMessage(c, MsgAccept, func(b *Cursor) error {
		var err error
		if err := b.ReadFull(decoded.TemporaryContractID[:]); err != nil {
			return err
		}
		if decoded.AcceptCollateral, err = b.ReadUint64(); err != nil {
			return err
		}
		if err := b.ReadFull(decoded.FundingPubKey[:]); err != nil {
			return err
		}
		if decoded.PayoutSPK, err = b.ReadVarBytes16(); err != nil {
			return err
		}
		if decoded.FundingInputs, err = decodeFundingInputs(b); err != nil {
			return err
		}
		if decoded.ChangeSPK, err = b.ReadVarBytes16(); err != nil {
			return err
		}
		if err := decoded.CetAdaptorSignatures.Decode(b); err != nil {
			return err
		}
		if err := b.ReadFull(decoded.RefundSignature[:]); err != nil {
			return err
		}
		if b.Len() == 0 {
			return nil
		}
		decoded.NegotiationFields, err = decodeNegotiationFields(b)
		return err
	})
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// Encode writes the accept message.
func (a *Accept) Encode(w *Writer) error {
	return encodeMessage(w, MsgAccept, func(b *Writer) error {
		b.WriteBytes(a.TemporaryContractID[:])
		b.WriteUint64(a.AcceptCollateral)
		b.WriteBytes(a.FundingPubKey[:])
		if err := b.WriteVarBytes16("payout script", a.PayoutSPK); err != nil {
			return err
		}
		if err := encodeFundingInputs(b, a.FundingInputs); err != nil {
			return err
		}
		if err := b.WriteVarBytes16("change script", a.ChangeSPK); err != nil {
			return err
		}
		if err := a.CetAdaptorSignatures.Encode(b); err != nil {
			return err
		}
		b.WriteBytes(a.RefundSignature[:])
		if a.NegotiationFields == nil {
			return nil
		}
		return a.NegotiationFields.Encode(b)
	})
}

// Validate checks the accept on its own, signatures included.
func (a *Accept) Validate() error {
	if err := a.AcceptWithoutSigs.Validate(); err != nil {
		return err
	}
	return a.CetAdaptorSignatures.Validate()
}

// ValidateAgainst extends AcceptWithoutSigs.ValidateAgainst with a check
// that an enumerated contract receives one adaptor signature per outcome.
func (a *Accept) ValidateAgainst(offer *Offer) error {
	if err := a.AcceptWithoutSigs.ValidateAgainst(offer); err != nil {
		return err
	}
	if offer.ContractInfo == nil {
		return invalidf("offer has no contract info")
	}
	want, ok := enumeratedOutcomeCount(offer.ContractInfo)
	if ok && len(a.CetAdaptorSignatures.Signatures) != want {
		return invalidf("accept carries %d CET adaptor signatures for "+
			"%d outcomes", len(a.CetAdaptorSignatures.Signatures), want)
	}
	return nil
}
