package dlis

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scannerOver(parts ...[]byte) *VisibleRecordScanner {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return NewVisibleRecordScanner(bytes.NewReader(buf), int64(len(buf)), SULSize)
}

func TestVisibleRecordScanner_Next(t *testing.T) {
	vr1 := vr(seg(0x00, 0, make([]byte, 16)))
	vr2 := vr(seg(0x80, 1, make([]byte, 8)))
	s := scannerOver(testSUL(), vr1, vr2)

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(SULSize), first.Offset)
	assert.Equal(t, len(vr1), first.Length)
	assert.Equal(t, int64(SULSize+visibleRecordHeaderSize), first.DataStart())

	second, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, first.End(), second.Offset)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
	assert.True(t, s.AtEnd())
}

func TestVisibleRecordScanner_BadMarker(t *testing.T) {
	chunk := vr(seg(0x00, 0, make([]byte, 4)))
	chunk[2] = 0xAB
	s := scannerOver(testSUL(), chunk)

	_, err := s.Next()
	var corrupt *CorruptVisibleRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, int64(SULSize), corrupt.Offset)
}

func TestVisibleRecordScanner_LengthPastEndOfFile(t *testing.T) {
	chunk := vr(seg(0x00, 0, make([]byte, 4)))
	s := scannerOver(testSUL(), chunk[:len(chunk)-2])

	_, err := s.Next()
	var trunc *TruncatedError
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, int64(SULSize), trunc.Offset)
}

func TestVisibleRecordScanner_LengthBelowMinimum(t *testing.T) {
	chunk := vr() // header only, no room for a segment header
	s := scannerOver(testSUL(), chunk, vr(seg(0x00, 0, nil)))

	_, err := s.Next()
	var corrupt *CorruptVisibleRecordError
	require.ErrorAs(t, err, &corrupt)
}

func TestVisibleRecordScanner_Seek(t *testing.T) {
	vr1 := vr(seg(0x00, 0, make([]byte, 16)))
	vr2 := vr(seg(0x80, 1, make([]byte, 8)))
	s := scannerOver(testSUL(), vr1, vr2)

	s.Seek(int64(SULSize + len(vr1)))
	got, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(SULSize+len(vr1)), got.Offset)
}
