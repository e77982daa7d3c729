package dlis

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// visibleRecordHeaderSize is the 2-byte length plus 2-byte format marker.
	visibleRecordHeaderSize = 4

	// visibleRecordMarker is the fixed format-version marker 0xFF 0x01.
	visibleRecordMarker = 0xFF01

	// minVisibleRecordLength leaves room for at least one segment header
	// after the visible record's own header.
	minVisibleRecordLength = visibleRecordHeaderSize + segmentHeaderSize
)

// VisibleRecord is one physical chunk of the file: a transport-level framing
// unit carrying segment data, independent of logical record boundaries.
// Ephemeral; produced and consumed per scan step.
type VisibleRecord struct {
	Offset int64 // absolute offset of the 4-byte header
	Length int   // declared length, header included
}

// DataStart returns the absolute offset of the first segment byte.
func (vr VisibleRecord) DataStart() int64 { return vr.Offset + visibleRecordHeaderSize }

// End returns the absolute offset one past the last byte.
func (vr VisibleRecord) End() int64 { return vr.Offset + int64(vr.Length) }

// VisibleRecordScanner walks the file after the storage unit label in units
// of visible records, yielding chunk boundaries without interpreting their
// contents. Not safe for concurrent use.
type VisibleRecordScanner struct {
	r    io.ReaderAt
	size int64
	off  int64
}

// NewVisibleRecordScanner returns a scanner positioned at start, normally
// SULSize. size is the total file size, used to bounds-check declared
// lengths.
func NewVisibleRecordScanner(r io.ReaderAt, size, start int64) *VisibleRecordScanner {
	return &VisibleRecordScanner{r: r, size: size, off: start}
}

// Offset returns the absolute offset the next call to Next will read from.
func (s *VisibleRecordScanner) Offset() int64 { return s.off }

// Seek repositions the scanner. off must be a visible record boundary; the
// next call to Next validates that it is.
func (s *VisibleRecordScanner) Seek(off int64) { s.off = off }

// AtEnd reports whether the scanner has consumed the whole file.
func (s *VisibleRecordScanner) AtEnd() bool { return s.off >= s.size }

// Next reads the next visible record header, validates it, and advances past
// the whole chunk. Returns io.EOF at a clean end of file, a TruncatedError
// if the file ends inside the header or the declared extent, and a
// CorruptVisibleRecordError if the marker or length is wrong.
func (s *VisibleRecordScanner) Next() (VisibleRecord, error) {
	if s.off >= s.size {
		return VisibleRecord{}, io.EOF
	}
	if s.off+visibleRecordHeaderSize > s.size {
		return VisibleRecord{}, &TruncatedError{Offset: s.off}
	}

	var hdr [visibleRecordHeaderSize]byte
	if _, err := s.r.ReadAt(hdr[:], s.off); err != nil {
		return VisibleRecord{}, fmt.Errorf("read visible record header at %d: %w", s.off, err)
	}

	length := int(binary.BigEndian.Uint16(hdr[0:2]))
	marker := binary.BigEndian.Uint16(hdr[2:4])

	if marker != visibleRecordMarker {
		return VisibleRecord{}, &CorruptVisibleRecordError{
			Offset: s.off,
			Reason: fmt.Sprintf("format marker %#04x, want %#04x", marker, visibleRecordMarker),
		}
	}
	if length < minVisibleRecordLength {
		return VisibleRecord{}, &CorruptVisibleRecordError{
			Offset: s.off,
			Reason: fmt.Sprintf("declared length %d below minimum %d", length, minVisibleRecordLength),
		}
	}
	if s.off+int64(length) > s.size {
		return VisibleRecord{}, &TruncatedError{Offset: s.off}
	}

	vr := VisibleRecord{Offset: s.off, Length: length}
	s.off += int64(length)
	return vr, nil
}
