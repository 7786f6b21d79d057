// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// XOnlyKey is a 32-byte BIP-340 public key, as used for oracle keys and
// oracle nonces.
type XOnlyKey [32]byte

// PubKey parses the key as a point on secp256k1.
func (k XOnlyKey) PubKey() (*btcec.PublicKey, error) {
	pub, err := schnorr.ParsePubKey(k[:])
	if err != nil {
		return nil, messageError(ErrInvalidKey, fmt.Sprintf(
			"x-only key %x", k[:]), err)
	}
	return pub, nil
}

// EventDescriptor describes the outcome space an oracle attests to.
type EventDescriptor interface {
	Message

	// NonceCount returns the number of nonces an event with this
	// descriptor must commit to.
	NonceCount() int
}

func decodeEventDescriptor(c *Cursor) (EventDescriptor, error) {
	return decodeVariant[EventDescriptor](c, "event descriptor",
		MsgEnumEventDescriptor, MsgDigitDecompositionEventDescriptor)
}

// EnumEventDescriptor is an event whose outcome is one of a fixed set of
// strings.
type EnumEventDescriptor struct {
	Outcomes []string
}

// A compile-time check to ensure EnumEventDescriptor implements
// EventDescriptor.
var _ EventDescriptor = (*EnumEventDescriptor)(nil)

// MsgType returns the message type.
func (e *EnumEventDescriptor) MsgType() MessageType {
	return MsgEnumEventDescriptor
}

// Decode reads an enum event descriptor record.
func (e *EnumEventDescriptor) Decode(c *Cursor) error {
	var decoded EnumEventDescriptor
	err := decodeTLV(c, MsgEnumEventDescriptor, func(b *Cursor) error {
		n, err := b.ReadUint16()
		if err != nil {
			return err
		}
		decoded.Outcomes = make([]string, 0, n)
		for i := 0; i < int(n); i++ {
			s, err := b.ReadString()
			if err != nil {
				return err
			}
			decoded.Outcomes = append(decoded.Outcomes, s)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Encode writes the enum event descriptor record.
func (e *EnumEventDescriptor) Encode(w *Writer) error {
	return encodeTLV(w, MsgEnumEventDescriptor, func(b *Writer) error {
		if err := b.WriteCount16("enum outcomes", len(e.Outcomes)); err != nil {
			return err
		}
		for _, s := range e.Outcomes {
			b.WriteString(s)
		}
		return nil
	})
}

// Validate checks that the event has at least one outcome and no
// outcome repeats.
func (e *EnumEventDescriptor) Validate() error {
	if len(e.Outcomes) == 0 {
		return invalidf("enum event has no outcomes")
	}
	seen := make(map[string]struct{}, len(e.Outcomes))
	for _, s := range e.Outcomes {
		if _, ok := seen[s]; ok {
			return invalidf("enum event outcome %q is duplicated", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// NonceCount returns 1: an enum outcome is attested with one signature.
func (e *EnumEventDescriptor) NonceCount() int {
	return 1
}

// DigitDecompositionEventDescriptor is a numeric event attested digit by
// digit.
type DigitDecompositionEventDescriptor struct {
	Base      uint64
	IsSigned  bool
	Unit      string
	Precision int32
	NbDigits  uint16
}

// A compile-time check to ensure DigitDecompositionEventDescriptor
// implements EventDescriptor.
var _ EventDescriptor = (*DigitDecompositionEventDescriptor)(nil)

// MsgType returns the message type.
func (e *DigitDecompositionEventDescriptor) MsgType() MessageType {
	return MsgDigitDecompositionEventDescriptor
}

// Decode reads a digit decomposition event descriptor record.
func (e *DigitDecompositionEventDescriptor) Decode(c *Cursor) error {
	var decoded DigitDecompositionEventDescriptor
	err := decodeTLV(c, MsgDigitDecompositionEventDescriptor, func(b *Cursor) error {
		var err error
		if decoded.Base, err = b.ReadBigSize(); err != nil {
			return err
		}
		if decoded.IsSigned, err = b.ReadBool(); err != nil {
			return err
		}
		if decoded.Unit, err = b.ReadString(); err != nil {
			return err
		}
		if decoded.Precision, err = b.ReadInt32(); err != nil {
			return err
		}
		decoded.NbDigits, err = b.ReadUint16()
		return err
	})
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Encode writes the digit decomposition event descriptor record.
func (e *DigitDecompositionEventDescriptor) Encode(w *Writer) error {
	return encodeTLV(w, MsgDigitDecompositionEventDescriptor, func(b *Writer) error {
		b.WriteBigSize(e.Base)
		b.WriteBool(e.IsSigned)
		b.WriteString(e.Unit)
		b.WriteInt32(e.Precision)
		b.WriteUint16(e.NbDigits)
		return nil
	})
}

// Validate checks the base and digit count.
func (e *DigitDecompositionEventDescriptor) Validate() error {
	if e.Base < 2 {
		return invalidf("digit decomposition base %d is below 2", e.Base)
	}
	if e.NbDigits == 0 {
		return messageError(ErrDigitMismatch,
			"digit decomposition event has zero digits", nil)
	}
	return nil
}

// NonceCount returns one nonce per digit.  A signed event carries its sign
// among the digits, so it needs no extra nonce.
func (e *DigitDecompositionEventDescriptor) NonceCount() int {
	return int(e.NbDigits)
}

// OracleEvent is the event an oracle announces it will attest to.
type OracleEvent struct {
	Nonces             []XOnlyKey
	EventMaturityEpoch uint32
	EventDescriptor    EventDescriptor
	EventID            string
}

// A compile-time check to ensure OracleEvent implements Message.
var _ Message = (*OracleEvent)(nil)

// MsgType returns the message type.
func (e *OracleEvent) MsgType() MessageType {
	return MsgOracleEvent
}

// Decode reads an oracle event record.
func (e *OracleEvent) Decode(c *Cursor) error {
	var decoded OracleEvent
	err := decodeTLV(c, MsgOracleEvent, func(b *Cursor) error {
		n, err := b.ReadUint16()
		if err != nil {
			return err
		}
		if int(n)*32 > b.Len() {
			return b.shortRead(int(n) * 32)
		}
		decoded.Nonces = make([]XOnlyKey, n)
		for i := range decoded.Nonces {
			if err := b.ReadFull(decoded.Nonces[i][:]); err != nil {
				return err
			}
		}
		if decoded.EventMaturityEpoch, err = b.ReadUint32(); err != nil {
			return err
		}
		if decoded.EventDescriptor, err = decodeEventDescriptor(b); err != nil {
			return err
		}
		decoded.EventID, err = b.ReadString()
		return err
	})
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Encode writes the oracle event record.
func (e *OracleEvent) Encode(w *Writer) error {
	if e.EventDescriptor == nil {
		return invalidf("oracle event has no descriptor")
	}
	return encodeTLV(w, MsgOracleEvent, func(b *Writer) error {
		if err := b.WriteCount16("oracle nonces", len(e.Nonces)); err != nil {
			return err
		}
		for _, nonce := range e.Nonces {
			b.WriteBytes(nonce[:])
		}
		b.WriteUint32(e.EventMaturityEpoch)
		if err := e.EventDescriptor.Encode(b); err != nil {
			return err
		}
		b.WriteString(e.EventID)
		return nil
	})
}

// Validate checks the event id, the descriptor, and that every nonce is a
// valid key and their number matches the descriptor.
func (e *OracleEvent) Validate() error {
	if e.EventID == "" {
		return invalidf("oracle event id is empty")
	}
	if e.EventDescriptor == nil {
		return invalidf("oracle event has no descriptor")
	}
	if err := e.EventDescriptor.Validate(); err != nil {
		return err
	}
	if want := e.EventDescriptor.NonceCount(); len(e.Nonces) != want {
		return messageError(ErrDigitMismatch, fmt.Sprintf(
			"oracle event %q has %d nonces, %v needs %d", e.EventID,
			len(e.Nonces), e.EventDescriptor.MsgType(), want), nil)
	}
	for _, nonce := range e.Nonces {
		if _, err := nonce.PubKey(); err != nil {
			return err
		}
	}
	return nil
}
