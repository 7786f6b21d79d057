// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

// ContractDescriptor describes the payouts of a contract: either one per
// enumerated outcome or a payout curve over a numeric outcome.
type ContractDescriptor interface {
	Message

	// contractDescriptor seals the family to this package.
	contractDescriptor()
}

func decodeContractDescriptor(c *Cursor) (ContractDescriptor, error) {
	return decodeVariant[ContractDescriptor](c, "contract descriptor",
		MsgEnumeratedContractDescriptor, MsgNumericContractDescriptor)
}

// EnumeratedOutcome is the offer party's payout when the oracle attests to
// the outcome with the given hash.
type EnumeratedOutcome struct {
	Outcome [32]byte
	Payout  uint64
}

// EnumeratedContractDescriptor lists a payout per enumerated outcome.
type EnumeratedContractDescriptor struct {
	Outcomes []EnumeratedOutcome
}

// A compile-time check to ensure EnumeratedContractDescriptor implements
// ContractDescriptor.
var _ ContractDescriptor = (*EnumeratedContractDescriptor)(nil)

func (*EnumeratedContractDescriptor) contractDescriptor() {}

// MsgType returns the message type.
func (d *EnumeratedContractDescriptor) MsgType() MessageType {
	return MsgEnumeratedContractDescriptor
}

// Decode reads an enumerated descriptor record.
func (d *EnumeratedContractDescriptor) Decode(c *Cursor) error {
	var decoded EnumeratedContractDescriptor
	err := decodeTLV(c, MsgEnumeratedContractDescriptor, func(b *Cursor) error {
		n, err := b.ReadCount(32 + 8)
		if err != nil {
			return err
		}
		decoded.Outcomes = make([]EnumeratedOutcome, n)
		for i := range decoded.Outcomes {
			o := &decoded.Outcomes[i]
			if err := b.ReadFull(o.Outcome[:]); err != nil {
				return err
			}
			if o.Payout, err = b.ReadUint64(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// Encode writes the enumerated descriptor record.
func (d *EnumeratedContractDescriptor) Encode(w *Writer) error {
	return encodeTLV(w, MsgEnumeratedContractDescriptor, func(b *Writer) error {
		b.WriteBigSize(uint64(len(d.Outcomes)))
		for _, o := range d.Outcomes {
			b.WriteBytes(o.Outcome[:])
			b.WriteUint64(o.Payout)
		}
		return nil
	})
}

// Validate checks that at least one outcome is listed and that no outcome
// hash repeats.
func (d *EnumeratedContractDescriptor) Validate() error {
	if len(d.Outcomes) == 0 {
		return invalidf("enumerated descriptor has no outcomes")
	}
	seen := make(map[[32]byte]struct{}, len(d.Outcomes))
	for i, o := range d.Outcomes {
		if _, ok := seen[o.Outcome]; ok {
			return invalidf("enumerated outcome %d (%x) is "+
				"duplicated", i, o.Outcome[:])
		}
		seen[o.Outcome] = struct{}{}
	}
	return nil
}

// MaxPayout returns the largest payout of any outcome.
func (d *EnumeratedContractDescriptor) MaxPayout() uint64 {
	var max uint64
	for _, o := range d.Outcomes {
		if o.Payout > max {
			max = o.Payout
		}
	}
	return max
}

// NumericContractDescriptor describes payouts over a numeric outcome
// decomposed into NumDigits oracle digits.
type NumericContractDescriptor struct {
	NumDigits         uint16
	PayoutFunction    PayoutFunction
	RoundingIntervals RoundingIntervals
}

// A compile-time check to ensure NumericContractDescriptor implements
// ContractDescriptor.
var _ ContractDescriptor = (*NumericContractDescriptor)(nil)

func (*NumericContractDescriptor) contractDescriptor() {}

// MsgType returns the message type.
func (d *NumericContractDescriptor) MsgType() MessageType {
	return MsgNumericContractDescriptor
}

// Decode reads a numeric descriptor record.
func (d *NumericContractDescriptor) Decode(c *Cursor) error {
	var decoded NumericContractDescriptor
	err := decodeTLV(c, MsgNumericContractDescriptor, func(b *Cursor) error {
		var err error
		if decoded.NumDigits, err = b.ReadUint16(); err != nil {
			return err
		}
		if err := decoded.PayoutFunction.Decode(b); err != nil {
			return err
		}
		return decoded.RoundingIntervals.Decode(b)
	})
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// Encode writes the numeric descriptor record.
func (d *NumericContractDescriptor) Encode(w *Writer) error {
	return encodeTLV(w, MsgNumericContractDescriptor, func(b *Writer) error {
		b.WriteUint16(d.NumDigits)
		if err := d.PayoutFunction.Encode(b); err != nil {
			return err
		}
		return d.RoundingIntervals.Encode(b)
	})
}

// Validate checks the digit count, the payout function and the rounding
// intervals.
func (d *NumericContractDescriptor) Validate() error {
	if d.NumDigits == 0 {
		return messageError(ErrDigitMismatch,
			"numeric descriptor has zero digits", nil)
	}
	if err := d.PayoutFunction.Validate(); err != nil {
		return err
	}
	return d.RoundingIntervals.Validate()
}

// RoundedPayoutAt evaluates the payout function at outcome and applies the
// rounding interval that contains it.
func (d *NumericContractDescriptor) RoundedPayoutAt(outcome uint64) (uint64, error) {
	payout, err := d.PayoutFunction.PayoutAt(outcome)
	if err != nil {
		return 0, err
	}
	return d.RoundingIntervals.Round(outcome, payout), nil
}
