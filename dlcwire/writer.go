// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lightningnetwork/lnd/tlv"
)

// Writer accumulates the serialization of a message.
type Writer struct {
	buf     bytes.Buffer
	scratch [8]byte
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteBool appends 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteUint16 appends a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	binary.BigEndian.PutUint16(w.scratch[:2], v)
	w.buf.Write(w.scratch[:2])
}

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	binary.BigEndian.PutUint32(w.scratch[:4], v)
	w.buf.Write(w.scratch[:4])
}

// WriteInt32 appends a big-endian two's complement int32.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 appends a big-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	binary.BigEndian.PutUint64(w.scratch[:], v)
	w.buf.Write(w.scratch[:])
}

// WriteBigSize appends v in its minimal BigSize form.
func (w *Writer) WriteBigSize(v uint64) {
	// bytes.Buffer writes cannot fail.
	_ = tlv.WriteVarInt(&w.buf, v, &w.scratch)
}

// WriteVarBytes16 appends b prefixed by its u16 length.
func (w *Writer) WriteVarBytes16(field string, b []byte) error {
	if len(b) > math.MaxUint16 {
		return messageError(ErrFieldTooLarge, fmt.Sprintf(
			"%s is %d bytes, max %d", field, len(b),
			math.MaxUint16), nil)
	}
	w.WriteUint16(uint16(len(b)))
	w.buf.Write(b)
	return nil
}

// WriteString appends s prefixed by its BigSize length.
func (w *Writer) WriteString(s string) {
	w.WriteBigSize(uint64(len(s)))
	w.buf.WriteString(s)
}

// WriteCount16 appends a u16 element count.
func (w *Writer) WriteCount16(field string, n int) error {
	if n > math.MaxUint16 {
		return messageError(ErrFieldTooLarge, fmt.Sprintf(
			"%s has %d elements, max %d", field, n,
			math.MaxUint16), nil)
	}
	w.WriteUint16(uint16(n))
	return nil
}
