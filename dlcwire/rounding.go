// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

// RoundingInterval applies RoundingMod to every outcome from BeginInterval
// up to the start of the next interval.
type RoundingInterval struct {
	BeginInterval uint64
	RoundingMod   uint64
}

// RoundingIntervals describes how payouts of a numeric contract are rounded
// so that neighbouring outcomes can share a contract execution transaction.
type RoundingIntervals struct {
	Intervals []RoundingInterval
}

// A compile-time check to ensure RoundingIntervals implements Message.
var _ Message = (*RoundingIntervals)(nil)

// MsgType returns the message type.
func (r *RoundingIntervals) MsgType() MessageType {
	return MsgRoundingIntervals
}

// Decode reads a rounding intervals record.
func (r *RoundingIntervals) Decode(c *Cursor) error {
	var decoded RoundingIntervals
	err := decodeTLV(c, MsgRoundingIntervals, func(b *Cursor) error {
		n, err := b.ReadUint16()
		if err != nil {
			return err
		}
		decoded.Intervals = make([]RoundingInterval, 0, n)
		for i := 0; i < int(n); i++ {
			var iv RoundingInterval
			if iv.BeginInterval, err = b.ReadBigSize(); err != nil {
				return err
			}
			if iv.RoundingMod, err = b.ReadBigSize(); err != nil {
				return err
			}
			decoded.Intervals = append(decoded.Intervals, iv)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// Encode writes the rounding intervals record.
func (r *RoundingIntervals) Encode(w *Writer) error {
	return encodeTLV(w, MsgRoundingIntervals, func(b *Writer) error {
		if err := b.WriteCount16("rounding intervals", len(r.Intervals)); err != nil {
			return err
		}
		for _, iv := range r.Intervals {
			b.WriteBigSize(iv.BeginInterval)
			b.WriteBigSize(iv.RoundingMod)
		}
		return nil
	})
}

// Validate checks that the intervals start at outcome zero, are strictly
// increasing and carry a non-zero modulus.
func (r *RoundingIntervals) Validate() error {
	if len(r.Intervals) == 0 {
		return invalidf("rounding intervals are empty")
	}
	if r.Intervals[0].BeginInterval != 0 {
		return invalidf("first rounding interval begins at %d, "+
			"must begin at 0", r.Intervals[0].BeginInterval)
	}
	for i, iv := range r.Intervals {
		if iv.RoundingMod == 0 {
			return invalidf("rounding interval %d has zero "+
				"modulus", i)
		}
		if i > 0 && iv.BeginInterval <= r.Intervals[i-1].BeginInterval {
			return invalidf("rounding interval %d begins at %d, "+
				"not after %d", i, iv.BeginInterval,
				r.Intervals[i-1].BeginInterval)
		}
	}
	return nil
}

// ModFor returns the rounding modulus that applies to outcome.  An outcome
// before the first interval, which Validate rules out, rounds to 1.
func (r *RoundingIntervals) ModFor(outcome uint64) uint64 {
	mod := uint64(1)
	for _, iv := range r.Intervals {
		if iv.BeginInterval > outcome {
			break
		}
		mod = iv.RoundingMod
	}
	return mod
}

// Round rounds payout to the nearest multiple of the modulus in effect at
// outcome, rounding halves up.
func (r *RoundingIntervals) Round(outcome, payout uint64) uint64 {
	mod := r.ModFor(outcome)
	if mod <= 1 {
		return payout
	}
	rem := payout % mod
	down := payout - rem
	if rem >= mod-rem {
		// Saturate instead of wrapping at the top of the range.
		if down > ^uint64(0)-mod {
			return down
		}
		return down + mod
	}
	return down
}
