// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

// NegotiationFields lets the accepting party propose changes to the
// offered contract.
type NegotiationFields interface {
	Message

	// negotiationFields seals the family to this package.
	negotiationFields()
}

func decodeNegotiationFields(c *Cursor) (NegotiationFields, error) {
	return decodeVariant[NegotiationFields](c, "negotiation fields",
		MsgNegotiationFields, MsgRoundingNegotiationFields)
}

// NegotiationFieldsV0 proposes no changes.
type NegotiationFieldsV0 struct{}

// A compile-time check to ensure NegotiationFieldsV0 implements
// NegotiationFields.
var _ NegotiationFields = (*NegotiationFieldsV0)(nil)

func (*NegotiationFieldsV0) negotiationFields() {}

// MsgType returns the message type.
func (n *NegotiationFieldsV0) MsgType() MessageType {
	return MsgNegotiationFields
}

// Decode reads an empty negotiation fields record.
func (n *NegotiationFieldsV0) Decode(c *Cursor) error {
	return decodeTLV(c, MsgNegotiationFields, func(*Cursor) error {
		return nil
	})
}

// Encode writes an empty negotiation fields record.
func (n *NegotiationFieldsV0) Encode(w *Writer) error {
	return encodeTLV(w, MsgNegotiationFields, func(*Writer) error {
		return nil
	})
}

// Validate always succeeds.
func (n *NegotiationFieldsV0) Validate() error {
	return nil
}

// NegotiationFieldsV1 proposes different rounding intervals.
type NegotiationFieldsV1 struct {
	RoundingIntervals RoundingIntervals
}

// A compile-time check to ensure NegotiationFieldsV1 implements
// NegotiationFields.
var _ NegotiationFields = (*NegotiationFieldsV1)(nil)

func (*NegotiationFieldsV1) negotiationFields() {}

// MsgType returns the message type.
func (n *NegotiationFieldsV1) MsgType() MessageType {
	return MsgRoundingNegotiationFields
}

// Decode reads a rounding negotiation fields record.
func (n *NegotiationFieldsV1) Decode(c *Cursor) error {
	var decoded NegotiationFieldsV1
	err := decodeTLV(c, MsgRoundingNegotiationFields, func(b *Cursor) error {
		return decoded.RoundingIntervals.Decode(b)
	})
	if err != nil {
		return err
	}
	*n = decoded
	return nil
}

// Encode writes the rounding negotiation fields record.
func (n *NegotiationFieldsV1) Encode(w *Writer) error {
	return encodeTLV(w, MsgRoundingNegotiationFields, func(b *Writer) error {
		return n.RoundingIntervals.Encode(b)
	})
}

// Validate validates the proposed rounding intervals.
func (n *NegotiationFieldsV1) Validate() error {
	return n.RoundingIntervals.Validate()
}
