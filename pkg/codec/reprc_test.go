package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enc builds representation-code byte layouts for tests.
type enc struct {
	bytes.Buffer
}

func (e *enc) u8(v uint8)   { e.WriteByte(v) }
func (e *enc) u16(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); e.Write(b[:]) }
func (e *enc) u32(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); e.Write(b[:]) }
func (e *enc) u64(v uint64) { var b [8]byte; binary.BigEndian.PutUint64(b[:], v); e.Write(b[:]) }
func (e *enc) f32(v float32) { e.u32(math.Float32bits(v)) }
func (e *enc) f64(v float64) { e.u64(math.Float64bits(v)) }
func (e *enc) ident(s string) {
	e.u8(uint8(len(s)))
	e.WriteString(s)
}

func decodeOne(t *testing.T, rc ReprCode, buf []byte) (Value, int) {
	t.Helper()
	c := NewCursor(buf, 0)
	v, n, err := Decode(rc, c)
	require.NoError(t, err)
	return v, n
}

func TestDecode_IntegerBoundaries(t *testing.T) {
	cases := []struct {
		name string
		rc   ReprCode
		buf  []byte
		want Value
		n    int
	}{
		{"sshort min", SSHORT, []byte{0x80}, IntValue(-128), 1},
		{"sshort max", SSHORT, []byte{0x7F}, IntValue(127), 1},
		{"sshort zero", SSHORT, []byte{0x00}, IntValue(0), 1},
		{"snorm min", SNORM, []byte{0x80, 0x00}, IntValue(-32768), 2},
		{"snorm max", SNORM, []byte{0x7F, 0xFF}, IntValue(32767), 2},
		{"slong min", SLONG, []byte{0x80, 0, 0, 0}, IntValue(math.MinInt32), 4},
		{"slong max", SLONG, []byte{0x7F, 0xFF, 0xFF, 0xFF}, IntValue(math.MaxInt32), 4},
		{"ushort max", USHORT, []byte{0xFF}, UintValue(255), 1},
		{"unorm max", UNORM, []byte{0xFF, 0xFF}, UintValue(65535), 2},
		{"ulong max", ULONG, []byte{0xFF, 0xFF, 0xFF, 0xFF}, UintValue(math.MaxUint32), 4},
		{"ulong zero", ULONG, []byte{0, 0, 0, 0}, UintValue(0), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, n := decodeOne(t, tc.rc, tc.buf)
			assert.Equal(t, tc.want, v)
			assert.Equal(t, tc.n, n)
		})
	}
}

func TestDecode_Uvari(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want uint64
		n    int
	}{
		{"one byte zero", []byte{0x00}, 0, 1},
		{"one byte max", []byte{0x7F}, 127, 1},
		{"two bytes", []byte{0x81, 0x00}, 256, 2},
		{"two bytes max", []byte{0xBF, 0xFF}, 16383, 2},
		{"four bytes", []byte{0xC0, 0x01, 0x00, 0x00}, 65536, 4},
		{"four bytes max", []byte{0xFF, 0xFF, 0xFF, 0xFF}, 1<<30 - 1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, n := decodeOne(t, UVARI, tc.buf)
			assert.Equal(t, UintValue(tc.want), v)
			assert.Equal(t, tc.n, n)
		})
	}
}

func TestDecode_Floats(t *testing.T) {
	var e enc
	e.f32(-118.625)
	v, n := decodeOne(t, FSINGL, e.Bytes())
	assert.Equal(t, -118.625, v.Float)
	assert.Equal(t, 4, n)

	e.Reset()
	e.f64(math.MaxFloat64)
	v, n = decodeOne(t, FDOUBL, e.Bytes())
	assert.Equal(t, math.MaxFloat64, v.Float)
	assert.Equal(t, 8, n)

	// FSHORT: mantissa 1024/2048 = 0.5, exponent 12 -> 0.5 * 2^12
	var u uint16 = 1024<<4 | 12
	e.Reset()
	e.u16(u)
	v, n = decodeOne(t, FSHORT, e.Bytes())
	assert.Equal(t, 2048.0, v.Float)
	assert.Equal(t, 2, n)
}

func TestDecode_IBMAndVaxSingles(t *testing.T) {
	// IBM 360: sign 0, exponent 66, fraction 0x100000 -> (1/16) * 16^2 = 16
	var e enc
	e.u32(66<<24 | 0x100000)
	v, _ := decodeOne(t, ISINGL, e.Bytes())
	assert.InDelta(t, 16.0, v.Float, 1e-9)

	// VAX F: logical bits for 1.0 are exponent 129, fraction 0; file bytes
	// are pairwise swapped
	logical := uint32(129) << 23
	fileBytes := []byte{
		byte(logical >> 16), byte(logical >> 24),
		byte(logical), byte(logical >> 8),
	}
	v, _ = decodeOne(t, VSINGL, fileBytes)
	assert.InDelta(t, 1.0, v.Float, 1e-9)
}

func TestDecode_ValidatedAndComplex(t *testing.T) {
	var e enc
	e.f32(10.5)
	e.f32(0.25)
	v, n := decodeOne(t, FSING1, e.Bytes())
	assert.Equal(t, 10.5, v.Float)
	assert.Equal(t, []float64{0.25}, v.Bounds)
	assert.Equal(t, 8, n)

	e.Reset()
	e.f64(1.0)
	e.f64(-0.5)
	e.f64(0.5)
	v, n = decodeOne(t, FDOUB2, e.Bytes())
	assert.Equal(t, 1.0, v.Float)
	assert.Equal(t, []float64{-0.5, 0.5}, v.Bounds)
	assert.Equal(t, 24, n)

	e.Reset()
	e.f32(3.0)
	e.f32(-4.0)
	v, n = decodeOne(t, CSINGL, e.Bytes())
	assert.Equal(t, complex(3.0, -4.0), v.Complex)
	assert.Equal(t, 8, n)

	e.Reset()
	e.f64(3.0)
	e.f64(-4.0)
	v, n = decodeOne(t, CDOUBL, e.Bytes())
	assert.Equal(t, complex(3.0, -4.0), v.Complex)
	assert.Equal(t, 16, n)
}

func TestDecode_Strings(t *testing.T) {
	var e enc
	e.ident("DEPTH")
	v, n := decodeOne(t, IDENT, e.Bytes())
	assert.Equal(t, "DEPTH", v.Str)
	assert.Equal(t, 6, n)

	e.Reset()
	e.ident("")
	v, n = decodeOne(t, IDENT, e.Bytes())
	assert.Equal(t, "", v.Str)
	assert.Equal(t, 1, n)

	e.Reset()
	e.ident("0.1 in")
	v, _ = decodeOne(t, UNITS, e.Bytes())
	assert.Equal(t, "0.1 in", v.Str)

	// ASCII uses a UVARI length prefix; use the two-byte form
	e.Reset()
	e.u16(0x8000 | 11)
	e.WriteString("hello world")
	v, n = decodeOne(t, ASCII, e.Bytes())
	assert.Equal(t, "hello world", v.Str)
	assert.Equal(t, 13, n)
}

func TestDecode_DateTime(t *testing.T) {
	// 1987-04-19 21:20:15.250, timezone nibble 2 (GMT)
	buf := []byte{87, 0x24, 19, 21, 20, 15, 0x00, 0xFA}
	v, n := decodeOne(t, DTIME, buf)
	require.Equal(t, 8, n)
	want := time.Date(1987, time.April, 19, 21, 20, 15, 250*int(time.Millisecond), time.UTC)
	assert.True(t, v.Time.Equal(want), "got %v", v.Time)
}

func TestDecode_ObjectNameAndRefs(t *testing.T) {
	var e enc
	e.u8(2) // origin, one-byte UVARI
	e.u8(1) // copy
	e.ident("CHANNEL-1")
	v, n := decodeOne(t, OBNAME, e.Bytes())
	assert.Equal(t, ObjectName{Origin: 2, Copy: 1, Identifier: "CHANNEL-1"}, v.Name)
	assert.Equal(t, e.Len(), n)

	e.Reset()
	e.ident("CHANNEL")
	e.u8(2)
	e.u8(0)
	e.ident("TDEP")
	v, _ = decodeOne(t, OBJREF, e.Bytes())
	assert.Equal(t, "CHANNEL", v.Ref.Type)
	assert.Equal(t, "TDEP", v.Ref.Name.Identifier)

	e.Reset()
	e.ident("TOOL")
	e.u8(1)
	e.u8(0)
	e.ident("MWD")
	e.ident("STATUS")
	v, _ = decodeOne(t, ATTREF, e.Bytes())
	assert.Equal(t, "TOOL", v.Ref.Type)
	assert.Equal(t, "STATUS", v.Ref.Label)
}

func TestDecode_Status(t *testing.T) {
	v, _ := decodeOne(t, STATUS, []byte{0x01})
	assert.True(t, v.Bool)
	v, _ = decodeOne(t, STATUS, []byte{0x00})
	assert.False(t, v.Bool)
}

func TestDecode_UnsupportedCode(t *testing.T) {
	c := NewCursor([]byte{0x01}, 42)
	_, _, err := Decode(ReprCode(99), c)

	var unsupported *UnsupportedReprCodeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ReprCode(99), unsupported.Code)
	assert.Equal(t, int64(42), unsupported.Offset)
	assert.Equal(t, 0, c.Offset(), "failed decode must not consume")
}

func TestDecode_ShortBuffer(t *testing.T) {
	for _, rc := range []ReprCode{FSINGL, FDOUBL, SNORM, UNORM, ULONG, DTIME, OBNAME} {
		c := NewCursor([]byte{0x01}, 0)
		_, _, err := Decode(rc, c)
		assert.ErrorIs(t, err, ErrOutOfBounds, "code %s", rc)
	}
}

func TestDecodeN_CountOfThree(t *testing.T) {
	var e enc
	e.u16(1)
	e.u16(2)
	e.u16(3)
	c := NewCursor(e.Bytes(), 0)

	vs, n, err := DecodeN(UNORM, 3, c)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.Len(t, vs, 3)
	for i, v := range vs {
		assert.Equal(t, uint64(i+1), v.Uint)
	}
	assert.True(t, c.AtEnd())
}

func TestDecodeN_CountBeyondBufferRejected(t *testing.T) {
	// a declared count is file data; a huge one must fail cleanly before
	// anything is allocated for it
	c := NewCursor([]byte{0x01}, 7)

	_, _, err := DecodeN(USHORT, 1<<30-1, c)
	require.ErrorIs(t, err, ErrOutOfBounds)

	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 1<<30-1, oob.Want)
	assert.Equal(t, 1, oob.Have)
	assert.Equal(t, 0, c.Offset())
}

func TestReprCode_Strings(t *testing.T) {
	assert.Equal(t, "FSINGL", FSINGL.String())
	assert.Equal(t, "OBNAME", OBNAME.String())
	assert.Equal(t, "reprc(99)", ReprCode(99).String())
	assert.True(t, UVARI.Valid())
	assert.False(t, ReprCode(0).Valid())
}
