package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a read would run past the end of the
// cursor's buffer. OutOfBoundsError wraps it with position detail.
var ErrOutOfBounds = errors.New("read past end of buffer")

// OutOfBoundsError reports a read that would overrun the buffer.
type OutOfBoundsError struct {
	Offset int64 // absolute position of the failed read
	Want   int   // bytes requested
	Have   int   // bytes remaining
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read past end of buffer at offset %d: want %d bytes, have %d", e.Offset, e.Want, e.Have)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// Cursor is a bounds-checked sequential reader over a fixed byte buffer,
// typically the reassembled payload of one logical record. It decodes
// big-endian fixed-width integers and fixed-length strings, and tracks both
// a buffer-relative and an absolute file offset.
//
// Reads are all-or-nothing: on failure the offset does not advance.
type Cursor struct {
	buf  []byte
	off  int
	base int64 // absolute file offset of buf[0]
}

// NewCursor returns a cursor over buf. base is the absolute file offset of
// the first byte, used only for error reporting and Position.
func NewCursor(buf []byte, base int64) *Cursor {
	return &Cursor{buf: buf, base: base}
}

// need fails unless n more bytes are available.
func (c *Cursor) need(n int) error {
	if rem := len(c.buf) - c.off; rem < n {
		return &OutOfBoundsError{Offset: c.Position(), Want: n, Have: rem}
	}
	return nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// PeekU8 returns the next byte without advancing.
func (c *Cursor) PeekU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	return c.buf[c.off], nil
}

// ReadU16 reads a big-endian 16-bit unsigned integer.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// ReadU32 reads a big-endian 32-bit unsigned integer.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// ReadU64 reads a big-endian 64-bit unsigned integer.
func (c *Cursor) ReadU64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return v, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the cursor's
// buffer and must not be modified.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// ReadFixedString reads exactly n bytes as a string.
func (c *Cursor) ReadFixedString(n int) (string, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadRemaining consumes and returns all bytes left in the buffer.
func (c *Cursor) ReadRemaining() []byte {
	b := c.buf[c.off:]
	c.off = len(c.buf)
	return b
}

// Skip advances past n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("negative skip length %d", n)
	}
	if err := c.need(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// Position returns the absolute file offset of the next unread byte.
func (c *Cursor) Position() int64 { return c.base + int64(c.off) }

// Offset returns the buffer-relative offset of the next unread byte.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// AtEnd reports whether the cursor has consumed the whole buffer.
func (c *Cursor) AtEnd() bool { return c.off >= len(c.buf) }
