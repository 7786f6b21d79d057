// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

// CetAdaptorSignature is an adaptor signature over one contract execution
// transaction together with the proof that it was encrypted correctly.
type CetAdaptorSignature struct {
	EncryptedSig [65]byte
	DleqProof    [97]byte
}

// CetAdaptorSignatures holds one adaptor signature per contract execution
// transaction.
type CetAdaptorSignatures struct {
	Signatures []CetAdaptorSignature
}

// A compile-time check to ensure CetAdaptorSignatures implements Message.
var _ Message = (*CetAdaptorSignatures)(nil)

// MsgType returns the message type.
func (s *CetAdaptorSignatures) MsgType() MessageType {
	return MsgCetAdaptorSignatures
}

// Decode reads a CET adaptor signatures record.
func (s *CetAdaptorSignatures) Decode(c *Cursor) error {
	var decoded CetAdaptorSignatures
	err := decodeTLV(c, MsgCetAdaptorSignatures, func(b *Cursor) error {
		n, err := b.ReadCount(65 + 97)
		if err != nil {
			return err
		}
		decoded.Signatures = make([]CetAdaptorSignature, n)
		for i := range decoded.Signatures {
			sig := &decoded.Signatures[i]
			if err := b.ReadFull(sig.EncryptedSig[:]); err != nil {
				return err
			}
			if err := b.ReadFull(sig.DleqProof[:]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Encode writes the CET adaptor signatures record.
func (s *CetAdaptorSignatures) Encode(w *Writer) error {
	return encodeTLV(w, MsgCetAdaptorSignatures, func(b *Writer) error {
		b.WriteBigSize(uint64(len(s.Signatures)))
		for _, sig := range s.Signatures {
			b.WriteBytes(sig.EncryptedSig[:])
			b.WriteBytes(sig.DleqProof[:])
		}
		return nil
	})
}

// Validate checks that at least one signature is present.
func (s *CetAdaptorSignatures) Validate() error {
	if len(s.Signatures) == 0 {
		return invalidf("no CET adaptor signatures")
	}
	return nil
}
