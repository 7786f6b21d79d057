// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lightningnetwork/lnd/tlv"
)

// TraceFunc receives one call per TLV record a Cursor enters.  offset is
// the absolute position of the record's type prefix in the original input
// and length is the size of the record body.
type TraceFunc func(typ MessageType, offset, length int)

// CursorOption configures a Cursor.
type CursorOption func(*Cursor)

// WithTrace installs a diagnostic hook that is invoked for every TLV
// record decoded through the cursor and its nested cursors.
func WithTrace(fn TraceFunc) CursorOption {
	return func(c *Cursor) {
		c.trace = fn
	}
}

// Cursor is a position-tracked reader over an immutable byte slice.  No
// read that fails moves the position, and Peek never moves it.
type Cursor struct {
	buf   []byte
	pos   int
	base  int
	trace TraceFunc
}

// NewCursor returns a cursor positioned at the start of b.  The cursor
// never modifies b.
func NewCursor(b []byte, opts ...CursorOption) *Cursor {
	c := &Cursor{buf: b}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// Peek returns the next n bytes without advancing the cursor.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, c.shortRead(n)
	}
	return c.buf[c.pos : c.pos+n], nil
}

// Consume returns the next n bytes and advances past them.  The returned
// slice aliases the cursor's input and must not be modified.
func (c *Cursor) Consume(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// Read implements io.Reader so that stream decoders can consume directly
// from the cursor.
func (c *Cursor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.Len() == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.buf[c.pos:])
	c.pos += n
	return n, nil
}

// ReadFull fills dst from the cursor.
func (c *Cursor) ReadFull(dst []byte) error {
	b, err := c.Consume(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// ReadUint8 reads a single byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.Consume(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a single byte that must be 0 or 1.
func (c *Cursor) ReadBool() (bool, error) {
	b, err := c.Peek(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
	case 1:
	default:
		return false, messageError(ErrNonCanonical,
			fmt.Sprintf("boolean byte %#02x at offset %d",
				b[0], c.offset()), nil)
	}
	c.pos++
	return b[0] == 1, nil
}

// ReadUint16 reads a big-endian uint16.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.Consume(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 reads a big-endian uint32.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.Consume(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadInt32 reads a big-endian two's complement int32.
func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian uint64.
func (c *Cursor) ReadUint64() (uint64, error) {
	b, err := c.Consume(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadBigSize reads a canonically encoded BigSize integer.  Non-minimal
// encodings are rejected with ErrNonCanonical.
func (c *Cursor) ReadBigSize() (uint64, error) {
	// Decode from a copy so a truncated or non-canonical value leaves
	// the cursor where it was.
	tmp := *c
	var scratch [8]byte
	v, err := tlv.ReadVarInt(&tmp, &scratch)
	switch {
	case errors.Is(err, tlv.ErrVarIntNotCanonical):
		return 0, messageError(ErrNonCanonical, fmt.Sprintf(
			"bigsize at offset %d", c.offset()), err)

	case err != nil:
		return 0, messageError(ErrShortRead, fmt.Sprintf(
			"bigsize at offset %d", c.offset()), err)
	}
	c.pos = tmp.pos
	return v, nil
}

// PeekBigSize decodes the next BigSize integer without advancing.
func (c *Cursor) PeekBigSize() (uint64, error) {
	tmp := *c
	return tmp.ReadBigSize()
}

// ReadVarBytes16 reads a u16 length prefixed byte string.  A zero length
// string is returned as nil, which is the canonical form of an empty field:
// a field set to []byte{} encodes identically and decodes as nil.
func (c *Cursor) ReadVarBytes16() ([]byte, error) {
	tmp := *c
	n, err := tmp.ReadUint16()
	if err != nil {
		return nil, err
	}
	b, err := tmp.Consume(int(n))
	if err != nil {
		return nil, err
	}
	c.pos = tmp.pos
	if n == 0 {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

// ReadString reads a BigSize length prefixed UTF-8 string.
func (c *Cursor) ReadString() (string, error) {
	tmp := *c
	n, err := tmp.ReadBigSize()
	if err != nil {
		return "", err
	}
	if n > uint64(tmp.Len()) {
		return "", tmp.shortRead(tmp.Len() + 1)
	}
	b, err := tmp.Consume(int(n))
	if err != nil {
		return "", err
	}
	c.pos = tmp.pos
	return string(b), nil
}

// ReadCount reads a BigSize element count and rejects counts that could
// not possibly fit in the remaining input given each element occupies at
// least minSize bytes.
func (c *Cursor) ReadCount(minSize int) (int, error) {
	tmp := *c
	n, err := tmp.ReadBigSize()
	if err != nil {
		return 0, err
	}
	if minSize < 1 {
		minSize = 1
	}
	if n > uint64(tmp.Len()/minSize) {
		return 0, messageError(ErrShortRead, fmt.Sprintf(
			"count %d exceeds remaining %d bytes at offset %d",
			n, tmp.Len(), c.offset()), nil)
	}
	c.pos = tmp.pos
	return int(n), nil
}

// sub consumes n bytes and returns a cursor over exactly those bytes.  The
// nested cursor shares the trace hook and reports absolute offsets.
func (c *Cursor) sub(n uint64) (*Cursor, error) {
	if n > uint64(c.Len()) {
		return nil, c.shortRead(c.Len() + 1)
	}
	start := c.pos
	b, err := c.Consume(int(n))
	if err != nil {
		return nil, err
	}
	return &Cursor{buf: b, base: c.base + start, trace: c.trace}, nil
}

// offset returns the absolute offset of the cursor in the original input.
func (c *Cursor) offset() int {
	return c.base + c.pos
}

func (c *Cursor) shortRead(n int) Error {
	return messageError(ErrShortRead, fmt.Sprintf(
		"need %d bytes at offset %d, have %d", n, c.offset(), c.Len()),
		io.ErrUnexpectedEOF)
}
