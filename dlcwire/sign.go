// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

// Sign completes a negotiation with the offering party's signatures and
// its witnesses for the funding inputs.
type Sign struct {
	ContractID           [32]byte
	CetAdaptorSignatures CetAdaptorSignatures
	RefundSignature      [64]byte
	FundingSignatures    FundingSignatures
}

// A compile-time check to ensure Sign implements Message.
var _ Message = (*Sign)(nil)

// DeserializeSign decodes a sign message that occupies all of b.
func DeserializeSign(b []byte, opts ...CursorOption) (*Sign, error) {
	var s Sign
	if err := deserialize(b, &s, opts...); err != nil {
		return nil, err
	}
	return &s, nil
}

// MsgType returns the message type.
func (s *Sign) MsgType() MessageType {
	return MsgSign
}

// Decode reads a sign message.
func (s *Sign) Decode(c *Cursor) error {
	var decoded Sign
	err := decodeMessage(c, MsgSign, func(b *Cursor) error {
		if err := b.ReadFull(decoded.ContractID[:]); err != nil {
			return err
		}
		if err := decoded.CetAdaptorSignatures.Decode(b); err != nil {
			return err
		}
		if err := b.ReadFull(decoded.RefundSignature[:]); err != nil {
			return err
		}
		return decoded.FundingSignatures.Decode(b)
	})
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Encode writes the sign message.
func (s *Sign) Encode(w *Writer) error {
	return encodeMessage(w, MsgSign, func(b *Writer) error {
		b.WriteBytes(s.ContractID[:])
		if err := s.CetAdaptorSignatures.Encode(b); err != nil {
			return err
		}
		b.WriteBytes(s.RefundSignature[:])
		return s.FundingSignatures.Encode(b)
	})
}

// Validate checks the adaptor signatures and the funding witnesses.
func (s *Sign) Validate() error {
	if err := s.CetAdaptorSignatures.Validate(); err != nil {
		return err
	}
	return s.FundingSignatures.Validate()
}
