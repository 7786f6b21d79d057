// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"fmt"
)

// OracleAnnouncement is an oracle's signed commitment to attest to an
// event.  The signature covers the serialized event but is carried
// verbatim; checking it belongs to attestation handling.
type OracleAnnouncement struct {
	Signature    [64]byte
	OraclePubKey XOnlyKey
	Event        OracleEvent
}

// A compile-time check to ensure OracleAnnouncement implements Message.
var _ Message = (*OracleAnnouncement)(nil)

// MsgType returns the message type.
func (a *OracleAnnouncement) MsgType() MessageType {
	return MsgOracleAnnouncement
}

// Decode reads an oracle announcement record.
func (a *OracleAnnouncement) Decode(c *Cursor) error {
	var decoded OracleAnnouncement
	err := decodeTLV(c, MsgOracleAnnouncement, func(b *Cursor) error {
		if err := b.ReadFull(decoded.Signature[:]); err != nil {
			return err
		}
		if err := b.ReadFull(decoded.OraclePubKey[:]); err != nil {
			return err
		}
		return decoded.Event.Decode(b)
	})
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// Encode writes the oracle announcement record.
func (a *OracleAnnouncement) Encode(w *Writer) error {
	return encodeTLV(w, MsgOracleAnnouncement, func(b *Writer) error {
		b.WriteBytes(a.Signature[:])
		b.WriteBytes(a.OraclePubKey[:])
		return a.Event.Encode(b)
	})
}

// Validate checks the oracle key and the announced event.
func (a *OracleAnnouncement) Validate() error {
	if _, err := a.OraclePubKey.PubKey(); err != nil {
		return err
	}
	return a.Event.Validate()
}

// OracleInfo names the oracles whose attestations settle a contract.
type OracleInfo interface {
	Message

	// Announcements returns the announcement of every oracle.
	Announcements() []*OracleAnnouncement

	// Threshold returns the number of oracles that must attest.
	Threshold() int
}

func decodeOracleInfo(c *Cursor) (OracleInfo, error) {
	return decodeVariant[OracleInfo](c, "oracle info",
		MsgSingleOracleInfo, MsgMultiOracleInfo)
}

// SingleOracleInfo is a contract settled by one oracle.
type SingleOracleInfo struct {
	Announcement OracleAnnouncement
}

// A compile-time check to ensure SingleOracleInfo implements OracleInfo.
var _ OracleInfo = (*SingleOracleInfo)(nil)

// MsgType returns the message type.
func (o *SingleOracleInfo) MsgType() MessageType {
	return MsgSingleOracleInfo
}

// Decode reads a single oracle info record.
func (o *SingleOracleInfo) Decode(c *Cursor) error {
	var decoded SingleOracleInfo
	err := decodeTLV(c, MsgSingleOracleInfo, func(b *Cursor) error {
		return decoded.Announcement.Decode(b)
	})
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

// Encode writes the single oracle info record.
func (o *SingleOracleInfo) Encode(w *Writer) error {
	return encodeTLV(w, MsgSingleOracleInfo, func(b *Writer) error {
		return o.Announcement.Encode(b)
	})
}

// Validate validates the announcement.
func (o *SingleOracleInfo) Validate() error {
	return o.Announcement.Validate()
}

// Announcements returns the single announcement.
func (o *SingleOracleInfo) Announcements() []*OracleAnnouncement {
	return []*OracleAnnouncement{&o.Announcement}
}

// Threshold returns 1.
func (o *SingleOracleInfo) Threshold() int {
	return 1
}

// MultiOracleInfo is a contract settled by a threshold of oracles.
type MultiOracleInfo struct {
	OracleThreshold uint16
	Oracles         []OracleAnnouncement
}

// A compile-time check to ensure MultiOracleInfo implements OracleInfo.
var _ OracleInfo = (*MultiOracleInfo)(nil)

// MsgType returns the message type.
func (o *MultiOracleInfo) MsgType() MessageType {
	return MsgMultiOracleInfo
}

// Decode reads a multi oracle info record.
func (o *MultiOracleInfo) Decode(c *Cursor) error {
	var decoded MultiOracleInfo
	err := decodeTLV(c, MsgMultiOracleInfo, func(b *Cursor) error {
		var err error
		if decoded.OracleThreshold, err = b.ReadUint16(); err != nil {
			return err
		}
		// An announcement is at least a signature and a key.
		n, err := b.ReadCount(64 + 32)
		if err != nil {
			return err
		}
		decoded.Oracles = make([]OracleAnnouncement, n)
		for i := range decoded.Oracles {
			if err := decoded.Oracles[i].Decode(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

// Encode writes the multi oracle info record.
func (o *MultiOracleInfo) Encode(w *Writer) error {
	return encodeTLV(w, MsgMultiOracleInfo, func(b *Writer) error {
		b.WriteUint16(o.OracleThreshold)
		b.WriteBigSize(uint64(len(o.Oracles)))
		for i := range o.Oracles {
			if err := o.Oracles[i].Encode(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// Validate checks the threshold against the number of oracles, every
// announcement, and that all oracles announce the same kind of event.
func (o *MultiOracleInfo) Validate() error {
	if o.OracleThreshold == 0 || int(o.OracleThreshold) > len(o.Oracles) {
		return invalidf("oracle threshold %d out of range for %d "+
			"oracles", o.OracleThreshold, len(o.Oracles))
	}
	var kind MessageType
	for i := range o.Oracles {
		a := &o.Oracles[i]
		if err := a.Validate(); err != nil {
			return err
		}
		t := a.Event.EventDescriptor.MsgType()
		if i == 0 {
			kind = t
			continue
		}
		if t != kind {
			return messageError(ErrIncompatibleOracle, fmt.Sprintf(
				"oracle %d announces a %v, oracle 0 a %v", i, t,
				kind), nil)
		}
	}
	return nil
}

// Announcements returns every oracle's announcement.
func (o *MultiOracleInfo) Announcements() []*OracleAnnouncement {
	out := make([]*OracleAnnouncement, len(o.Oracles))
	for i := range o.Oracles {
		out[i] = &o.Oracles[i]
	}
	return out
}

// Threshold returns the number of oracles that must attest.
func (o *MultiOracleInfo) Threshold() int {
	return int(o.OracleThreshold)
}
