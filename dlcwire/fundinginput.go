// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// FundingInput is an input a party contributes to the funding
// transaction.  FundingInputV0 is the only variant the protocol defines.
type FundingInput interface {
	Message

	// InputSerialID returns the id that orders the input within the
	// funding transaction.
	InputSerialID() uint64
}

func decodeFundingInput(c *Cursor) (FundingInput, error) {
	return decodeVariant[FundingInput](c, "funding input", MsgFundingInput)
}

// FundingInputV0 spends output PrevTxVout of the embedded prior
// transaction.
type FundingInputV0 struct {
	SerialID      uint64
	PrevTx        *wire.MsgTx
	PrevTxVout    uint32
	Sequence      uint32
	MaxWitnessLen uint16
	RedeemScript  []byte
}

// A compile-time check to ensure FundingInputV0 implements FundingInput.
var _ FundingInput = (*FundingInputV0)(nil)

// MsgType returns the message type.
func (f *FundingInputV0) MsgType() MessageType {
	return MsgFundingInput
}

// InputSerialID returns the input's serial id.
func (f *FundingInputV0) InputSerialID() uint64 {
	return f.SerialID
}

// parsePrevTx decodes a raw prior transaction.  The witness encoding is
// tried first; a transaction without inputs is ambiguous with the witness
// marker and only decodes in the legacy encoding.  Either way the whole
// field must be consumed and must re-serialize to the same bytes.
func parsePrevTx(raw []byte) (*wire.MsgTx, error) {
	decode := func(legacy bool) (*wire.MsgTx, error) {
		tx := new(wire.MsgTx)
		r := bytes.NewReader(raw)
		var err error
		if legacy {
			err = tx.DeserializeNoWitness(r)
		} else {
			err = tx.Deserialize(r)
		}
		if err != nil {
			return nil, err
		}
		if r.Len() != 0 {
			return nil, fmt.Errorf("%d trailing bytes", r.Len())
		}
		return tx, nil
	}

	tx, err := decode(false)
	if err != nil {
		tx, err = decode(true)
	}
	if err != nil {
		return nil, messageError(ErrInvalidTx, fmt.Sprintf(
			"prior transaction of %d bytes", len(raw)), err)
	}

	var buf bytes.Buffer
	buf.Grow(len(raw))
	if err := tx.Serialize(&buf); err != nil {
		return nil, messageError(ErrInvalidTx, "prior transaction", err)
	}
	if !bytes.Equal(buf.Bytes(), raw) {
		return nil, messageError(ErrInvalidTx,
			"prior transaction is not canonically encoded", nil)
	}
	return tx, nil
}

// Decode reads a funding input record.
func (f *FundingInputV0) Decode(c *Cursor) error {
	var decoded FundingInputV0
	err := decodeTLV(c, MsgFundingInput, func(b *Cursor) error {
		var err error
		if decoded.SerialID, err = b.ReadUint64(); err != nil {
			return err
		}
		raw, err := b.ReadVarBytes16()
		if err != nil {
			return err
		}
		if decoded.PrevTx, err = parsePrevTx(raw); err != nil {
			return err
		}
		if decoded.PrevTxVout, err = b.ReadUint32(); err != nil {
			return err
		}
		if decoded.Sequence, err = b.ReadUint32(); err != nil {
			return err
		}
		if decoded.MaxWitnessLen, err = b.ReadUint16(); err != nil {
			return err
		}
		decoded.RedeemScript, err = b.ReadVarBytes16()
		return err
	})
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}

// Encode writes the funding input record.
func (f *FundingInputV0) Encode(w *Writer) error {
	if f.PrevTx == nil {
		return invalidf("funding input %d has no prior transaction",
			f.SerialID)
	}
	var prev bytes.Buffer
	if err := f.PrevTx.Serialize(&prev); err != nil {
		return messageError(ErrInvalidTx, "prior transaction", err)
	}
	return encodeTLV(w, MsgFundingInput, func(b *Writer) error {
		b.WriteUint64(f.SerialID)
		if err := b.WriteVarBytes16("prior transaction", prev.Bytes()); err != nil {
			return err
		}
		b.WriteUint32(f.PrevTxVout)
		b.WriteUint32(f.Sequence)
		b.WriteUint16(f.MaxWitnessLen)
		return b.WriteVarBytes16("redeem script", f.RedeemScript)
	})
}

// Validate checks that the referenced output exists and can be spent by a
// segwit input of the declared kind.
func (f *FundingInputV0) Validate() error {
	txOut, err := f.spentOutput()
	if err != nil {
		return err
	}
	if f.MaxWitnessLen == 0 {
		return invalidf("funding input %d has zero max witness length",
			f.SerialID)
	}
	switch {
	case len(f.RedeemScript) == 0:
		if !txscript.IsWitnessProgram(txOut.PkScript) {
			return messageError(ErrInvalidScript, fmt.Sprintf(
				"funding input %d spends a non-witness output "+
					"without a redeem script", f.SerialID), nil)
		}

	default:
		if !txscript.IsWitnessProgram(f.RedeemScript) {
			return messageError(ErrInvalidScript, fmt.Sprintf(
				"funding input %d redeem script is not a "+
					"witness program", f.SerialID), nil)
		}
		if !txscript.IsPayToScriptHash(txOut.PkScript) {
			return messageError(ErrInvalidScript, fmt.Sprintf(
				"funding input %d has a redeem script but "+
					"spends a non-P2SH output", f.SerialID), nil)
		}
	}
	return nil
}

func (f *FundingInputV0) spentOutput() (*wire.TxOut, error) {
	if f.PrevTx == nil {
		return nil, invalidf("funding input %d has no prior "+
			"transaction", f.SerialID)
	}
	if int(f.PrevTxVout) >= len(f.PrevTx.TxOut) {
		return nil, invalidf("funding input %d spends output %d of a "+
			"transaction with %d outputs", f.SerialID, f.PrevTxVout,
			len(f.PrevTx.TxOut))
	}
	return f.PrevTx.TxOut[f.PrevTxVout], nil
}

// PrevOutput returns the outpoint the input spends and the output found
// there.
func (f *FundingInputV0) PrevOutput() (wire.OutPoint, *wire.TxOut, error) {
	txOut, err := f.spentOutput()
	if err != nil {
		return wire.OutPoint{}, nil, err
	}
	op := wire.OutPoint{Hash: f.PrevTx.TxHash(), Index: f.PrevTxVout}
	return op, txOut, nil
}

// ScriptSigLen returns the size of the input's signature script: empty for
// native segwit, a single push of the redeem script for nested segwit.
func (f *FundingInputV0) ScriptSigLen() int {
	if len(f.RedeemScript) == 0 {
		return 0
	}
	return 1 + len(f.RedeemScript)
}

// SignatureScript returns the signature script the input carries once
// signed.
func (f *FundingInputV0) SignatureScript() ([]byte, error) {
	if len(f.RedeemScript) == 0 {
		return nil, nil
	}
	return txscript.NewScriptBuilder().AddData(f.RedeemScript).Script()
}
