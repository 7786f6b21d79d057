// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"fmt"
)

// ContractOraclePair couples a contract descriptor with the oracles that
// settle it.
type ContractOraclePair struct {
	Descriptor ContractDescriptor
	Oracle     OracleInfo
}

func (p *ContractOraclePair) decode(c *Cursor) error {
	descriptor, err := decodeContractDescriptor(c)
	if err != nil {
		return err
	}
	oracle, err := decodeOracleInfo(c)
	if err != nil {
		return err
	}
	p.Descriptor, p.Oracle = descriptor, oracle
	return nil
}

func (p *ContractOraclePair) encode(w *Writer) error {
	if p.Descriptor == nil || p.Oracle == nil {
		return invalidf("contract oracle pair is incomplete")
	}
	if err := p.Descriptor.Encode(w); err != nil {
		return err
	}
	return p.Oracle.Encode(w)
}

// validate applies every rule that relates the descriptor, the oracles
// and the total collateral of the contract.
func (p *ContractOraclePair) validate(totalCollateral uint64) error {
	if p.Descriptor == nil || p.Oracle == nil {
		return invalidf("contract oracle pair is incomplete")
	}
	if err := p.Oracle.Validate(); err != nil {
		return err
	}
	if err := p.Descriptor.Validate(); err != nil {
		return err
	}

	switch d := p.Descriptor.(type) {
	case *EnumeratedContractDescriptor:
		for i, o := range d.Outcomes {
			if o.Payout > totalCollateral {
				return messageError(ErrCollateralMismatch,
					fmt.Sprintf("outcome %d pays %d, above "+
						"total collateral %d", i, o.Payout,
						totalCollateral), nil)
			}
		}
		for _, a := range p.Oracle.Announcements() {
			if _, ok := a.Event.EventDescriptor.(*EnumEventDescriptor); !ok {
				return messageError(ErrIncompatibleOracle,
					fmt.Sprintf("enumerated contract "+
						"paired with a %v event",
						a.Event.EventDescriptor.MsgType()),
					nil)
			}
		}

	case *NumericContractDescriptor:
		for i, iv := range d.RoundingIntervals.Intervals {
			if iv.RoundingMod > totalCollateral {
				return messageError(ErrCollateralMismatch,
					fmt.Sprintf("rounding interval %d "+
						"modulus %d exceeds total "+
						"collateral %d", i, iv.RoundingMod,
						totalCollateral), nil)
			}
		}
		for _, a := range p.Oracle.Announcements() {
			if err := checkDigits(d, &a.Event); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDigits checks that a numeric descriptor and an oracle event agree
// on the number of digits and nonces.
func checkDigits(d *NumericContractDescriptor, event *OracleEvent) error {
	digits, ok := event.EventDescriptor.(*DigitDecompositionEventDescriptor)
	if !ok {
		return messageError(ErrIncompatibleOracle, fmt.Sprintf(
			"numeric contract paired with a %v event",
			event.EventDescriptor.MsgType()), nil)
	}
	if digits.NbDigits != d.NumDigits {
		return messageError(ErrDigitMismatch, fmt.Sprintf(
			"oracle event %q has %d digits, contract has %d",
			event.EventID, digits.NbDigits, d.NumDigits), nil)
	}
	if len(event.Nonces) != int(d.NumDigits) {
		return messageError(ErrDigitMismatch, fmt.Sprintf(
			"oracle event %q has %d nonces for %d digits",
			event.EventID, len(event.Nonces), d.NumDigits), nil)
	}
	return nil
}

// ContractInfo is the negotiated contract: its total collateral and one
// or more descriptor and oracle pairs.
type ContractInfo interface {
	Message

	// TotalCollateral returns the sum of both parties' collateral.
	TotalCollateral() uint64

	// Pairs returns every descriptor and oracle pair.
	Pairs() []ContractOraclePair
}

func decodeContractInfo(c *Cursor) (ContractInfo, error) {
	return decodeVariant[ContractInfo](c, "contract info",
		MsgSingleContractInfo, MsgDisjointContractInfo)
}

// SingleContractInfo is a contract with one descriptor and oracle pair.
type SingleContractInfo struct {
	TotalCollateralSatoshis uint64
	ContractOraclePair
}

// A compile-time check to ensure SingleContractInfo implements
// ContractInfo.
var _ ContractInfo = (*SingleContractInfo)(nil)

// MsgType returns the message type.
func (ci *SingleContractInfo) MsgType() MessageType {
	return MsgSingleContractInfo
}

// Decode reads a single contract info record.
func (ci *SingleContractInfo) Decode(c *Cursor) error {
	var decoded SingleContractInfo
	err := decodeTLV(c, MsgSingleContractInfo, func(b *Cursor) error {
		var err error
		if decoded.TotalCollateralSatoshis, err = b.ReadUint64(); err != nil {
			return err
		}
		return decoded.ContractOraclePair.decode(b)
	})
	if err != nil {
		return err
	}
	*ci = decoded
	return nil
}

// Encode writes the single contract info record.
func (ci *SingleContractInfo) Encode(w *Writer) error {
	return encodeTLV(w, MsgSingleContractInfo, func(b *Writer) error {
		b.WriteUint64(ci.TotalCollateralSatoshis)
		return ci.ContractOraclePair.encode(b)
	})
}

// Validate checks the pair against the total collateral.
func (ci *SingleContractInfo) Validate() error {
	return ci.ContractOraclePair.validate(ci.TotalCollateralSatoshis)
}

// TotalCollateral returns the sum of both parties' collateral.
func (ci *SingleContractInfo) TotalCollateral() uint64 {
	return ci.TotalCollateralSatoshis
}

// Pairs returns the single pair.
func (ci *SingleContractInfo) Pairs() []ContractOraclePair {
	return []ContractOraclePair{ci.ContractOraclePair}
}

// DisjointContractInfo is a contract made of several independent
// descriptor and oracle pairs sharing one collateral.
type DisjointContractInfo struct {
	TotalCollateralSatoshis uint64
	ContractOraclePairs     []ContractOraclePair
}

// A compile-time check to ensure DisjointContractInfo implements
// ContractInfo.
var _ ContractInfo = (*DisjointContractInfo)(nil)

// MsgType returns the message type.
func (ci *DisjointContractInfo) MsgType() MessageType {
	return MsgDisjointContractInfo
}

// Decode reads a disjoint contract info record.
func (ci *DisjointContractInfo) Decode(c *Cursor) error {
	var decoded DisjointContractInfo
	err := decodeTLV(c, MsgDisjointContractInfo, func(b *Cursor) error {
		var err error
		if decoded.TotalCollateralSatoshis, err = b.ReadUint64(); err != nil {
			return err
		}
		// Each pair holds at least two TLV headers.
		n, err := b.ReadCount(4)
		if err != nil {
			return err
		}
		decoded.ContractOraclePairs = make([]ContractOraclePair, n)
		for i := range decoded.ContractOraclePairs {
			if err := decoded.ContractOraclePairs[i].decode(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*ci = decoded
	return nil
}

// Encode writes the disjoint contract info record.
func (ci *DisjointContractInfo) Encode(w *Writer) error {
	return encodeTLV(w, MsgDisjointContractInfo, func(b *Writer) error {
		b.WriteUint64(ci.TotalCollateralSatoshis)
		b.WriteBigSize(uint64(len(ci.ContractOraclePairs)))
		for i := range ci.ContractOraclePairs {
			if err := ci.ContractOraclePairs[i].encode(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// Validate checks that there is at least one pair and validates every
// pair against the total collateral exactly as a single contract would.
func (ci *DisjointContractInfo) Validate() error {
	if len(ci.ContractOraclePairs) == 0 {
		return invalidf("disjoint contract info has no pairs")
	}
	for i := range ci.ContractOraclePairs {
		err := ci.ContractOraclePairs[i].validate(ci.TotalCollateralSatoshis)
		if err != nil {
			return fmt.Errorf("contract pair %d: %w", i, err)
		}
	}
	return nil
}

// TotalCollateral returns the sum of both parties' collateral.
func (ci *DisjointContractInfo) TotalCollateral() uint64 {
	return ci.TotalCollateralSatoshis
}

// Pairs returns every pair.
func (ci *DisjointContractInfo) Pairs() []ContractOraclePair {
	return ci.ContractOraclePairs
}

// enumeratedOutcomeCount returns the number of outcomes across the
// contract when every pair is enumerated and settled by one oracle, the
// case in which one adaptor signature per outcome is exchanged.
func enumeratedOutcomeCount(ci ContractInfo) (int, bool) {
	n := 0
	for _, p := range ci.Pairs() {
		d, ok := p.Descriptor.(*EnumeratedContractDescriptor)
		if !ok || p.Oracle == nil || p.Oracle.Threshold() != 1 ||
			len(p.Oracle.Announcements()) != 1 {

			return 0, false
		}
		n += len(d.Outcomes)
	}
	return n, true
}
