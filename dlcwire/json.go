// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
)

// The JSON forms below are diagnostic projections for humans.  They hex
// encode binary fields and name the variant of every tagged union, and are
// not meant to be decoded back into messages.

// typedMessage names the variant of a message nested in a union field.
type typedMessage struct {
	Type  string  `json:"type"`
	Value Message `json:"value"`
}

func typed(m Message) *typedMessage {
	if m == nil {
		return nil
	}
	return &typedMessage{Type: m.MsgType().String(), Value: m}
}

// MarshalText encodes the key as hex.
func (k XOnlyKey) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(k[:])), nil
}

// MarshalJSON implements json.Marshaler.
func (o EnumeratedOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Outcome string `json:"outcome"`
		Payout  uint64 `json:"payout"`
	}{hex.EncodeToString(o.Outcome[:]), o.Payout})
}

// MarshalJSON implements json.Marshaler.
func (p PayoutFunctionPiece) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Curve    *typedMessage `json:"curve"`
		Endpoint PayoutPoint   `json:"endpoint"`
	}{typed(p.Curve), p.Endpoint})
}

// MarshalJSON implements json.Marshaler.
func (a OracleAnnouncement) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Signature    string      `json:"signature"`
		OraclePubKey XOnlyKey    `json:"oraclePubKey"`
		Event        OracleEvent `json:"event"`
	}{hex.EncodeToString(a.Signature[:]), a.OraclePubKey, a.Event})
}

// MarshalJSON implements json.Marshaler.
func (e OracleEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nonces             []XOnlyKey    `json:"nonces"`
		EventMaturityEpoch uint32        `json:"eventMaturityEpoch"`
		EventDescriptor    *typedMessage `json:"eventDescriptor"`
		EventID            string        `json:"eventId"`
	}{e.Nonces, e.EventMaturityEpoch, typed(e.EventDescriptor), e.EventID})
}

// MarshalJSON implements json.Marshaler.
func (p ContractOraclePair) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ContractDescriptor *typedMessage `json:"contractDescriptor"`
		OracleInfo         *typedMessage `json:"oracleInfo"`
	}{typed(p.Descriptor), typed(p.Oracle)})
}

// MarshalJSON implements json.Marshaler.  It is required so that the
// embedded pair's method is not promoted.
func (ci *SingleContractInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalCollateral uint64             `json:"totalCollateral"`
		Pair            ContractOraclePair `json:"contractOraclePair"`
	}{ci.TotalCollateralSatoshis, ci.ContractOraclePair})
}

// MarshalJSON implements json.Marshaler.
func (f *FundingInputV0) MarshalJSON() ([]byte, error) {
	var prev bytes.Buffer
	var txid string
	if f.PrevTx != nil {
		if err := f.PrevTx.Serialize(&prev); err != nil {
			return nil, err
		}
		txid = f.PrevTx.TxHash().String()
	}
	return json.Marshal(struct {
		InputSerialID uint64 `json:"inputSerialId"`
		PrevTxID      string `json:"prevTxId"`
		PrevTx        string `json:"prevTx"`
		PrevTxVout    uint32 `json:"prevTxVout"`
		Sequence      uint32 `json:"sequence"`
		MaxWitnessLen uint16 `json:"maxWitnessLen"`
		RedeemScript  string `json:"redeemScript"`
	}{
		f.SerialID, txid, hex.EncodeToString(prev.Bytes()),
		f.PrevTxVout, f.Sequence, f.MaxWitnessLen,
		hex.EncodeToString(f.RedeemScript),
	})
}

// MarshalJSON implements json.Marshaler.
func (s CetAdaptorSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EncryptedSig string `json:"encryptedSig"`
		DleqProof    string `json:"dleqProof"`
	}{hex.EncodeToString(s.EncryptedSig[:]), hex.EncodeToString(s.DleqProof[:])})
}

// MarshalJSON implements json.Marshaler.
func (w ScriptWitness) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(w.Witness))
}

// MarshalJSON implements json.Marshaler.
func (o *Offer) MarshalJSON() ([]byte, error) {
	network := ""
	if params, err := o.ChainParams(); err == nil {
		network = params.Name
	}
	return json.Marshal(struct {
		ContractFlags         uint8          `json:"contractFlags"`
		ChainHash             string         `json:"chainHash"`
		Network               string         `json:"network,omitempty"`
		ContractInfo          *typedMessage  `json:"contractInfo"`
		FundingPubKey         string         `json:"fundingPubKey"`
		PayoutSPK             string         `json:"payoutSpk"`
		OfferCollateral       uint64         `json:"offerCollateral"`
		FundingInputs         []FundingInput `json:"fundingInputs"`
		ChangeSPK             string         `json:"changeSpk"`
		FeeRatePerVb          uint64         `json:"feeRatePerVb"`
		ContractMaturityBound uint32         `json:"contractMaturityBound"`
		ContractTimeout       uint32         `json:"contractTimeout"`
	}{
		o.ContractFlags, o.ChainHash.String(), network,
		typed(o.ContractInfo), hex.EncodeToString(o.FundingPubKey[:]),
		hex.EncodeToString(o.PayoutSPK), o.OfferCollateral,
		o.FundingInputs, hex.EncodeToString(o.ChangeSPK),
		o.FeeRatePerVb, o.ContractMaturityBound, o.ContractTimeout,
	})
}

// MarshalJSON implements json.Marshaler.
func (a *AcceptWithoutSigs) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.projection())
}

type acceptJSON struct {
	TemporaryContractID string         `json:"temporaryContractId"`
	AcceptCollateral    uint64         `json:"acceptCollateral"`
	FundingPubKey       string         `json:"fundingPubKey"`
	PayoutSPK           string         `json:"payoutSpk"`
	FundingInputs       []FundingInput `json:"fundingInputs"`
	ChangeSPK           string         `json:"changeSpk"`
	NegotiationFields   *typedMessage  `json:"negotiationFields,omitempty"`
}

func (a *AcceptWithoutSigs) projection() acceptJSON {
	return acceptJSON{
		TemporaryContractID: hex.EncodeToString(a.TemporaryContractID[:]),
		AcceptCollateral:    a.AcceptCollateral,
		FundingPubKey:       hex.EncodeToString(a.FundingPubKey[:]),
		PayoutSPK:           hex.EncodeToString(a.PayoutSPK),
		FundingInputs:       a.FundingInputs,
		ChangeSPK:           hex.EncodeToString(a.ChangeSPK),
		NegotiationFields:   typed(a.NegotiationFields),
	}
}

// MarshalJSON implements json.Marshaler.
func (a *Accept) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		acceptJSON
		CetAdaptorSignatures []CetAdaptorSignature `json:"cetAdaptorSignatures"`
		RefundSignature      string                `json:"refundSignature"`
	}{
		a.AcceptWithoutSigs.projection(),
		a.CetAdaptorSignatures.Signatures,
		hex.EncodeToString(a.RefundSignature[:]),
	})
}

// MarshalJSON implements json.Marshaler.
func (s *Sign) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ContractID           string                `json:"contractId"`
		CetAdaptorSignatures []CetAdaptorSignature `json:"cetAdaptorSignatures"`
		RefundSignature      string                `json:"refundSignature"`
		FundingSignatures    []WitnessStack        `json:"fundingSignatures"`
	}{
		hex.EncodeToString(s.ContractID[:]),
		s.CetAdaptorSignatures.Signatures,
		hex.EncodeToString(s.RefundSignature[:]),
		s.FundingSignatures.WitnessStacks,
	})
}
