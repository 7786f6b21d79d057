// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// MessageType is the numeric tag of a DLC message.  Top-level negotiation
// messages carry it as a u16 message type, all nested records carry it as
// a BigSize TLV type.
type MessageType uint64

// The following constants define the registered message types.  The
// values are fixed by the protocol and must never change.
const (
	MsgEnumeratedContractDescriptor      MessageType = 42768
	MsgSingleOracleInfo                  MessageType = 42770
	MsgFundingInput                      MessageType = 42772
	MsgCetAdaptorSignatures              MessageType = 42774
	MsgFundingSignatures                 MessageType = 42776
	MsgOffer                             MessageType = 42778
	MsgAccept                            MessageType = 42780
	MsgSign                              MessageType = 42782
	MsgNumericContractDescriptor         MessageType = 42784
	MsgMultiOracleInfo                   MessageType = 42786
	MsgRoundingIntervals                 MessageType = 42788
	MsgPayoutFunction                    MessageType = 42790
	MsgPolynomialPayoutCurvePiece        MessageType = 42792
	MsgHyperbolaPayoutCurvePiece         MessageType = 42794
	MsgEnumEventDescriptor               MessageType = 55302
	MsgDigitDecompositionEventDescriptor MessageType = 55306
	MsgOracleEvent                       MessageType = 55330
	MsgOracleAnnouncement                MessageType = 55332
	MsgNegotiationFields                 MessageType = 55334
	MsgRoundingNegotiationFields         MessageType = 55336
	MsgSingleContractInfo                MessageType = 55342
	MsgDisjointContractInfo              MessageType = 55344
)

var messageTypeStrings = map[MessageType]string{
	MsgEnumeratedContractDescriptor:      "EnumeratedContractDescriptor",
	MsgSingleOracleInfo:                  "SingleOracleInfo",
	MsgFundingInput:                      "FundingInput",
	MsgCetAdaptorSignatures:              "CetAdaptorSignatures",
	MsgFundingSignatures:                 "FundingSignatures",
	MsgOffer:                             "Offer",
	MsgAccept:                            "Accept",
	MsgSign:                              "Sign",
	MsgNumericContractDescriptor:         "NumericContractDescriptor",
	MsgMultiOracleInfo:                   "MultiOracleInfo",
	MsgRoundingIntervals:                 "RoundingIntervals",
	MsgPayoutFunction:                    "PayoutFunction",
	MsgPolynomialPayoutCurvePiece:        "PolynomialPayoutCurvePiece",
	MsgHyperbolaPayoutCurvePiece:         "HyperbolaPayoutCurvePiece",
	MsgEnumEventDescriptor:               "EnumEventDescriptor",
	MsgDigitDecompositionEventDescriptor: "DigitDecompositionEventDescriptor",
	MsgOracleEvent:                       "OracleEvent",
	MsgOracleAnnouncement:                "OracleAnnouncement",
	MsgNegotiationFields:                 "NegotiationFields",
	MsgRoundingNegotiationFields:         "RoundingNegotiationFields",
	MsgSingleContractInfo:                "SingleContractInfo",
	MsgDisjointContractInfo:              "DisjointContractInfo",
}

// String returns the message type as a human-readable name.
func (t MessageType) String() string {
	if s, ok := messageTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown MessageType (%d)", uint64(t))
}

// IsTopLevel reports whether the type is framed as a u16 message rather
// than a TLV record.
func (t MessageType) IsTopLevel() bool {
	switch t {
	case MsgOffer, MsgAccept, MsgSign:
		return true
	}
	return false
}

// Message is implemented by every DLC message.  Decode and Encode operate
// on the complete framed record, type prefix included, so every variant
// re-reads and checks its own tag.  Validate performs the semantic checks
// that decoding deliberately skips.
type Message interface {
	MsgType() MessageType
	Decode(c *Cursor) error
	Encode(w *Writer) error
	Validate() error
}

// messageConstructors maps each registered type to a constructor for an
// empty message used during dispatch.
var messageConstructors = map[MessageType]func() Message{
	MsgEnumeratedContractDescriptor:      func() Message { return &EnumeratedContractDescriptor{} },
	MsgSingleOracleInfo:                  func() Message { return &SingleOracleInfo{} },
	MsgFundingInput:                      func() Message { return &FundingInputV0{} },
	MsgCetAdaptorSignatures:              func() Message { return &CetAdaptorSignatures{} },
	MsgFundingSignatures:                 func() Message { return &FundingSignatures{} },
	MsgOffer:                             func() Message { return &Offer{} },
	MsgAccept:                            func() Message { return &Accept{} },
	MsgSign:                              func() Message { return &Sign{} },
	MsgNumericContractDescriptor:         func() Message { return &NumericContractDescriptor{} },
	MsgMultiOracleInfo:                   func() Message { return &MultiOracleInfo{} },
	MsgRoundingIntervals:                 func() Message { return &RoundingIntervals{} },
	MsgPayoutFunction:                    func() Message { return &PayoutFunction{} },
	MsgPolynomialPayoutCurvePiece:        func() Message { return &PolynomialPayoutCurvePiece{} },
	MsgHyperbolaPayoutCurvePiece:         func() Message { return &HyperbolaPayoutCurvePiece{} },
	MsgEnumEventDescriptor:               func() Message { return &EnumEventDescriptor{} },
	MsgDigitDecompositionEventDescriptor: func() Message { return &DigitDecompositionEventDescriptor{} },
	MsgOracleEvent:                       func() Message { return &OracleEvent{} },
	MsgOracleAnnouncement:                func() Message { return &OracleAnnouncement{} },
	MsgNegotiationFields:                 func() Message { return &NegotiationFieldsV0{} },
	MsgRoundingNegotiationFields:         func() Message { return &NegotiationFieldsV1{} },
	MsgSingleContractInfo:                func() Message { return &SingleContractInfo{} },
	MsgDisjointContractInfo:              func() Message { return &DisjointContractInfo{} },
}

// RegisteredTypes returns every registered message type in ascending
// order.
func RegisteredTypes() []MessageType {
	types := make([]MessageType, 0, len(messageConstructors))
	for t := range messageConstructors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// makeEmptyMessage returns a new empty message of the given type.
func makeEmptyMessage(t MessageType) (Message, error) {
	ctor, ok := messageConstructors[t]
	if !ok {
		return nil, messageError(ErrUnknownType, fmt.Sprintf(
			"unknown message type %d", uint64(t)), nil)
	}
	return ctor(), nil
}

// PeekType returns the type of the next message without consuming it.  A
// leading u16 naming a top-level message wins over a BigSize TLV type;
// the two never collide because no registered TLV type is encoded in a
// single byte.
func PeekType(c *Cursor) (MessageType, error) {
	if b, err := c.Peek(2); err == nil {
		t := MessageType(binary.BigEndian.Uint16(b))
		if t.IsTopLevel() {
			return t, nil
		}
	}
	v, err := c.PeekBigSize()
	if err != nil {
		return 0, err
	}
	return MessageType(v), nil
}

// Decode parses any registered message from b.  The whole input must be
// consumed.
func Decode(b []byte, opts ...CursorOption) (Message, error) {
	c := NewCursor(b, opts...)
	t, err := PeekType(c)
	if err != nil {
		return nil, err
	}
	msg, err := makeEmptyMessage(t)
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(c); err != nil {
		return nil, err
	}
	if c.Len() != 0 {
		return nil, messageError(ErrTrailingData, fmt.Sprintf(
			"%d bytes after %v", c.Len(), t), nil)
	}
	log.Tracef("Decoded %v (%d bytes)", t, len(b))
	return msg, nil
}

// Serialize returns the wire encoding of msg.
func Serialize(msg Message) ([]byte, error) {
	var w Writer
	if err := msg.Encode(&w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// deserialize decodes msg from b and requires b to be consumed entirely.
func deserialize(b []byte, msg Message, opts ...CursorOption) error {
	c := NewCursor(b, opts...)
	if err := msg.Decode(c); err != nil {
		return err
	}
	if c.Len() != 0 {
		return messageError(ErrTrailingData, fmt.Sprintf(
			"%d bytes after %v", c.Len(), msg.MsgType()), nil)
	}
	return nil
}

// decodeVariant peeks the next TLV type, checks that it belongs to the
// family and hands the record to the variant's own decoder.
func decodeVariant[T Message](c *Cursor, family string,
	allowed ...MessageType) (T, error) {

	var zero T
	v, err := c.PeekBigSize()
	if err != nil {
		return zero, err
	}
	t := MessageType(v)

	found := false
	for _, a := range allowed {
		if a == t {
			found = true
			break
		}
	}
	if !found {
		return zero, messageError(ErrTypeMismatch, fmt.Sprintf(
			"%v is not a %s", t, family), nil)
	}

	msg, err := makeEmptyMessage(t)
	if err != nil {
		return zero, err
	}
	if err := msg.Decode(c); err != nil {
		return zero, err
	}
	variant, ok := msg.(T)
	if !ok {
		return zero, messageError(ErrTypeMismatch, fmt.Sprintf(
			"%v is not a %s", t, family), nil)
	}
	return variant, nil
}

// decodeTLV reads a TLV record of type want and passes its body to fn,
// which must consume the body completely.
func decodeTLV(c *Cursor, want MessageType, fn func(body *Cursor) error) error {
	start := c.offset()
	tmp := *c

	v, err := tmp.ReadBigSize()
	if err != nil {
		return err
	}
	if t := MessageType(v); t != want {
		return messageError(ErrTypeMismatch, fmt.Sprintf(
			"expected %v at offset %d, got %v", want, start, t), nil)
	}
	length, err := tmp.ReadBigSize()
	if err != nil {
		return err
	}
	body, err := tmp.sub(length)
	if err != nil {
		return err
	}
	if c.trace != nil {
		c.trace(want, start, int(length))
	}
	if err := fn(body); err != nil {
		return err
	}
	if body.Len() != 0 {
		return messageError(ErrTrailingData, fmt.Sprintf(
			"%d unread bytes in %v at offset %d", body.Len(), want,
			start), nil)
	}
	c.pos = tmp.pos
	return nil
}

// encodeTLV writes a TLV record of type t whose body is produced by fn.
func encodeTLV(w *Writer, t MessageType, fn func(body *Writer) error) error {
	var body Writer
	if err := fn(&body); err != nil {
		return err
	}
	w.WriteBigSize(uint64(t))
	w.WriteBigSize(uint64(body.Len()))
	w.WriteBytes(body.Bytes())
	return nil
}

// decodeMessageType reads and checks the u16 type of a top-level message.
func decodeMessageType(c *Cursor, want MessageType) error {
	b, err := c.Peek(2)
	if err != nil {
		return err
	}
	if t := MessageType(binary.BigEndian.Uint16(b)); t != want {
		return messageError(ErrTypeMismatch, fmt.Sprintf(
			"expected %v, got %v", want, t), nil)
	}
	c.pos += 2
	return nil
}

// decodeMessage reads a top-level message of type want whose fields are
// read by fn.  The cursor only advances when fn succeeds.
func decodeMessage(c *Cursor, want MessageType, fn func(body *Cursor) error) error {
	tmp := *c
	if err := decodeMessageType(&tmp, want); err != nil {
		return err
	}
	if c.trace != nil {
		c.trace(want, c.offset(), tmp.Len())
	}
	if err := fn(&tmp); err != nil {
		return err
	}
	c.pos = tmp.pos
	return nil
}

// encodeMessage writes a top-level message of type t whose fields are
// produced by fn.
func encodeMessage(w *Writer, t MessageType, fn func(body *Writer) error) error {
	var body Writer
	if err := fn(&body); err != nil {
		return err
	}
	w.WriteUint16(uint16(t))
	w.WriteBytes(body.Bytes())
	return nil
}
