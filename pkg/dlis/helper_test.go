package dlis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// testSUL builds a valid 80-byte storage unit label.
func testSUL() []byte {
	s := fmt.Sprintf("%4d%-5s%-6s%5d%-60s", 1, "V1.00", "RECORD", 8192, "TEST-STORAGE-SET")
	if len(s) != SULSize {
		panic("bad test SUL length")
	}
	return []byte(s)
}

// seg builds one logical record segment with the given attribute flags and
// body bytes. Trailers must already be part of body if the flags claim them.
func seg(attrs, typ uint8, body []byte) []byte {
	out := make([]byte, segmentHeaderSize+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(out)))
	out[2] = attrs
	out[3] = typ
	copy(out[4:], body)
	return out
}

// vr wraps segments into one visible record.
func vr(segs ...[]byte) []byte {
	var data []byte
	for _, s := range segs {
		data = append(data, s...)
	}
	out := make([]byte, visibleRecordHeaderSize+len(data))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(out)))
	binary.BigEndian.PutUint16(out[2:4], visibleRecordMarker)
	copy(out[4:], data)
	return out
}

// writeTestFile concatenates parts into a file under t.TempDir.
func writeTestFile(t *testing.T, parts ...[]byte) string {
	t.Helper()
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	path := filepath.Join(t.TempDir(), "test.dlis")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

// eflrBuf builds explicit record bodies byte by byte.
type eflrBuf struct {
	bytes.Buffer
}

func (b *eflrBuf) u8(v uint8)    { b.WriteByte(v) }
func (b *eflrBuf) u16(v uint16)  { var x [2]byte; binary.BigEndian.PutUint16(x[:], v); b.Write(x[:]) }
func (b *eflrBuf) u32(v uint32)  { var x [4]byte; binary.BigEndian.PutUint32(x[:], v); b.Write(x[:]) }
func (b *eflrBuf) f32(v float32) { b.u32(math.Float32bits(v)) }

func (b *eflrBuf) ident(s string) {
	b.u8(uint8(len(s)))
	b.WriteString(s)
}

// ascii emits a UVARI length prefix in the one-byte form.
func (b *eflrBuf) ascii(s string) {
	b.u8(uint8(len(s)))
	b.WriteString(s)
}

func (b *eflrBuf) obname(origin uint8, copy uint8, id string) {
	b.u8(origin) // one-byte UVARI form
	b.u8(copy)
	b.ident(id)
}

// testEFLRBody builds a CHANNEL set with a three-column template and two
// objects; the second object leaves the first column absent and the third
// column unwritten.
func testEFLRBody() []byte {
	var b eflrBuf

	b.u8(0xF8) // set | type | name
	b.ident("CHANNEL")
	b.ident("0")

	b.u8(0x34) // attribute | label | reprc
	b.ident("LONG-NAME")
	b.u8(20) // ASCII

	b.u8(0x3E) // attribute | label | count | reprc | units
	b.ident("ELEVATION")
	b.u8(1)
	b.u8(2) // FSINGL
	b.ident("m")

	b.u8(0x35) // attribute | label | reprc | value
	b.ident("SAMPLES")
	b.u8(16) // UNORM
	b.u16(99)

	b.u8(0x70) // object | name
	b.obname(1, 0, "TDEP")
	b.u8(0x21) // attribute | value
	b.ascii("depth channel")
	b.u8(0x21)
	b.f32(312.5)
	b.u8(0x21)
	b.u16(42)

	b.u8(0x70)
	b.obname(1, 1, "GR")
	b.u8(0x00) // absent
	b.u8(0x21)
	b.f32(1.0)
	// third column unwritten: defaults to absent with template value

	return b.Bytes()
}
