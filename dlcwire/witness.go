// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"github.com/btcsuite/btcd/wire"
)

// ScriptWitness is one element of a witness stack.  It is encoded without
// a type, as a u16 length prefixed byte string.
type ScriptWitness struct {
	Witness []byte
}

// WitnessStack is the witness of a single input.
type WitnessStack []ScriptWitness

// FundingSignatures carries the witness of every funding input a party
// contributed, in the order the inputs were offered.
type FundingSignatures struct {
	WitnessStacks []WitnessStack
}

// A compile-time check to ensure FundingSignatures implements Message.
var _ Message = (*FundingSignatures)(nil)

// NewFundingSignatures converts transaction witnesses into their wire
// form.
func NewFundingSignatures(witnesses []wire.TxWitness) *FundingSignatures {
	fs := &FundingSignatures{
		WitnessStacks: make([]WitnessStack, len(witnesses)),
	}
	for i, w := range witnesses {
		stack := make(WitnessStack, len(w))
		for j, elem := range w {
			stack[j] = ScriptWitness{Witness: elem}
		}
		fs.WitnessStacks[i] = stack
	}
	return fs
}

// MsgType returns the message type.
func (fs *FundingSignatures) MsgType() MessageType {
	return MsgFundingSignatures
}

// Decode reads a funding signatures record.
func (fs *FundingSignatures) Decode(c *Cursor) error {
	var decoded FundingSignatures
	err := decodeTLV(c, MsgFundingSignatures, func(b *Cursor) error {
		n, err := b.ReadUint16()
		if err != nil {
			return err
		}
		decoded.WitnessStacks = make([]WitnessStack, 0, n)
		for i := 0; i < int(n); i++ {
			elems, err := b.ReadUint16()
			if err != nil {
				return err
			}
			stack := make(WitnessStack, 0, elems)
			for j := 0; j < int(elems); j++ {
				w, err := b.ReadVarBytes16()
				if err != nil {
					return err
				}
				stack = append(stack, ScriptWitness{Witness: w})
			}
			decoded.WitnessStacks = append(decoded.WitnessStacks, stack)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*fs = decoded
	return nil
}

// Encode writes the funding signatures record.
func (fs *FundingSignatures) Encode(w *Writer) error {
	return encodeTLV(w, MsgFundingSignatures, func(b *Writer) error {
		if err := b.WriteCount16("witness stacks", len(fs.WitnessStacks)); err != nil {
			return err
		}
		for _, stack := range fs.WitnessStacks {
			if err := b.WriteCount16("witness elements", len(stack)); err != nil {
				return err
			}
			for _, elem := range stack {
				if err := b.WriteVarBytes16("witness element", elem.Witness); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Validate checks that at least one input is signed and that no witness
// stack is empty.
func (fs *FundingSignatures) Validate() error {
	if len(fs.WitnessStacks) == 0 {
		return invalidf("funding signatures carry no witnesses")
	}
	for i, stack := range fs.WitnessStacks {
		if len(stack) == 0 {
			return invalidf("witness stack %d is empty", i)
		}
	}
	return nil
}

// Witnesses converts the stacks into transaction witnesses ready to be
// attached to the funding inputs.
func (fs *FundingSignatures) Witnesses() []wire.TxWitness {
	out := make([]wire.TxWitness, len(fs.WitnessStacks))
	for i, stack := range fs.WitnessStacks {
		w := make(wire.TxWitness, len(stack))
		for j, elem := range stack {
			w[j] = elem.Witness
		}
		out[i] = w
	}
	return out
}
