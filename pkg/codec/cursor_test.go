package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_Reads(t *testing.T) {
	buf := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
		'A', 'B', 'C',
		0xFF,
	}
	c := NewCursor(buf, 100)

	u8, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)

	u16, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), u16)

	u32, err := c.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04050607), u32)

	u64, err := c.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x08090A0B0C0D0E0F), u64)

	s, err := c.ReadFixedString(3)
	require.NoError(t, err)
	assert.Equal(t, "ABC", s)

	assert.Equal(t, int64(100+18), c.Position())
	assert.Equal(t, 1, c.Remaining())
	assert.False(t, c.AtEnd())

	rest := c.ReadRemaining()
	assert.Equal(t, []byte{0xFF}, rest)
	assert.True(t, c.AtEnd())
}

func TestCursor_OutOfBoundsDoesNotAdvance(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02}, 50)

	_, err := c.ReadU32()
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, int64(50), oob.Offset)
	assert.Equal(t, 4, oob.Want)
	assert.Equal(t, 2, oob.Have)

	// the failed read consumed nothing
	u16, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), u16)
}

func TestCursor_Skip(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4}, 0)
	require.NoError(t, c.Skip(3))
	assert.Equal(t, 1, c.Remaining())
	assert.ErrorIs(t, c.Skip(2), ErrOutOfBounds)
	assert.Equal(t, 1, c.Remaining())
	assert.Error(t, c.Skip(-1))
}

func TestCursor_PeekU8(t *testing.T) {
	c := NewCursor([]byte{0xAA}, 0)
	b, err := c.PeekU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAA), b)
	assert.Equal(t, 0, c.Offset())

	_, _ = c.ReadU8()
	_, err = c.PeekU8()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCursor_EmptyBuffer(t *testing.T) {
	c := NewCursor(nil, 0)
	assert.True(t, c.AtEnd())
	assert.Empty(t, c.ReadRemaining())
	_, err := c.ReadU8()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
