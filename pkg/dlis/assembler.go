package dlis

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LogicalRecord is one reassembled logical record. Position and Residual
// together form its bookmark: the absolute offset scanning started from and
// the number of unread bytes the enclosing visible record had at that point
// (zero when the record starts on a visible record boundary). Identity is
// permanent once indexed; Payload is recomputed on each fetch.
type LogicalRecord struct {
	Position  int64
	Residual  int
	Explicit  bool
	Encrypted bool
	Type      uint8
	Payload   []byte
}

// LogicalRecordAssembler reassembles logical records from their segments,
// transparently crossing visible record boundaries fetched from the scanner.
// It consumes segments until one without a successor is seen; the first
// segment's flags classify the whole record, and a formatting flag changing
// mid-record is fatal corruption.
//
// Not safe for concurrent use.
type LogicalRecordAssembler struct {
	r       io.ReaderAt
	scanner *VisibleRecordScanner
	verify  bool

	// extent of the visible record currently being consumed; off == chunkEnd
	// means between chunks
	off      int64
	chunkEnd int64
}

// NewLogicalRecordAssembler returns an assembler drawing chunks from the
// scanner. When verify is set, segment checksums are validated instead of
// just stripped.
func NewLogicalRecordAssembler(r io.ReaderAt, scanner *VisibleRecordScanner, verify bool) *LogicalRecordAssembler {
	return &LogicalRecordAssembler{r: r, scanner: scanner, verify: verify}
}

// remaining returns the unread bytes of the current visible record.
func (a *LogicalRecordAssembler) remaining() int { return int(a.chunkEnd - a.off) }

// Position returns the bookmark position the next record would get.
func (a *LogicalRecordAssembler) Position() int64 {
	if a.remaining() > 0 {
		return a.off
	}
	return a.scanner.Offset()
}

// Residual returns the bookmark residual the next record would get.
func (a *LogicalRecordAssembler) Residual() int {
	if r := a.remaining(); r > 0 {
		return r
	}
	return 0
}

// AtEnd reports whether both the current chunk and the file are exhausted.
func (a *LogicalRecordAssembler) AtEnd() bool {
	return a.remaining() == 0 && a.scanner.AtEnd()
}

// Seek repositions the assembler at a bookmark previously produced by
// indexing. With residual zero the position is a visible record boundary;
// otherwise it is a segment boundary residual bytes before the end of its
// visible record.
func (a *LogicalRecordAssembler) Seek(pos int64, residual int) {
	if residual <= 0 {
		a.off, a.chunkEnd = 0, 0
		a.scanner.Seek(pos)
		return
	}
	a.off = pos
	a.chunkEnd = pos + int64(residual)
	a.scanner.Seek(a.chunkEnd)
}

// nextSegment reads the next segment header, pulling in the next visible
// record when the current one is exhausted.
func (a *LogicalRecordAssembler) nextSegment() (segmentHeader, error) {
	if a.off >= a.chunkEnd {
		vr, err := a.scanner.Next()
		if err != nil {
			return segmentHeader{}, err
		}
		a.off = vr.DataStart()
		a.chunkEnd = vr.End()
	}
	if a.remaining() < segmentHeaderSize {
		return segmentHeader{}, &CorruptVisibleRecordError{
			Offset: a.off,
			Reason: fmt.Sprintf("segment header needs %d bytes, visible record has %d left", segmentHeaderSize, a.remaining()),
		}
	}

	var buf [segmentHeaderSize]byte
	if _, err := a.r.ReadAt(buf[:], a.off); err != nil {
		return segmentHeader{}, fmt.Errorf("read segment header at %d: %w", a.off, err)
	}
	h := parseSegmentHeader(buf[:])

	if h.length < segmentHeaderSize {
		return segmentHeader{}, &CorruptVisibleRecordError{
			Offset: a.off,
			Reason: fmt.Sprintf("segment length %d below header size", h.length),
		}
	}
	if h.length > a.remaining() {
		return segmentHeader{}, &CorruptVisibleRecordError{
			Offset: a.off,
			Reason: fmt.Sprintf("segment length %d overruns visible record (%d left)", h.length, a.remaining()),
		}
	}

	a.off += segmentHeaderSize
	return h, nil
}

// Next assembles the next logical record from the current position. With
// discard set it only walks segment headers, skipping payload bytes; this is
// what indexing uses. Returns io.EOF at a clean end of file and
// TruncatedError if the file ends before a record's last segment.
func (a *LogicalRecordAssembler) Next(discard bool) (*LogicalRecord, error) {
	rec := &LogicalRecord{Position: a.Position(), Residual: a.Residual()}

	first := true
	var payload []byte
	for {
		h, err := a.nextSegment()
		if err != nil {
			if err == io.EOF {
				if first {
					return nil, io.EOF
				}
				// the record's last segment never arrived
				return nil, &TruncatedError{Offset: a.scanner.Offset()}
			}
			return nil, err
		}

		hdrOff := a.off - segmentHeaderSize
		if first {
			rec.Explicit = h.explicit()
			rec.Encrypted = h.encrypted()
			rec.Type = h.typ
			first = false
		} else if h.explicit() != rec.Explicit {
			return nil, fmt.Errorf("%w at offset %d", ErrSegmentFlagMismatch, hdrOff)
		}

		body := h.length - segmentHeaderSize
		if discard {
			a.off += int64(body)
		} else {
			seg := make([]byte, body)
			if _, err := a.r.ReadAt(seg, a.off); err != nil {
				return nil, fmt.Errorf("read segment body at %d: %w", a.off, err)
			}
			segOff := a.off
			a.off += int64(body)
			seg, err = a.stripTrailers(h, seg, segOff)
			if err != nil {
				return nil, err
			}
			payload = append(payload, seg...)
		}

		if !h.hasSuccessor() {
			break
		}
	}

	rec.Payload = payload
	return rec, nil
}

// stripTrailers removes, in order, the trailing length copy, the checksum
// and the pad bytes from the end of one segment's bytes.
func (a *LogicalRecordAssembler) stripTrailers(h segmentHeader, seg []byte, segOff int64) ([]byte, error) {
	if h.hasTrailingLen() {
		if len(seg) < 2 {
			return nil, &CorruptVisibleRecordError{Offset: segOff, Reason: "segment too short for trailing length"}
		}
		tl := int(binary.BigEndian.Uint16(seg[len(seg)-2:]))
		if tl != h.length {
			return nil, &CorruptVisibleRecordError{
				Offset: segOff,
				Reason: fmt.Sprintf("trailing length %d disagrees with header length %d", tl, h.length),
			}
		}
		seg = seg[:len(seg)-2]
	}
	if h.hasChecksum() {
		if len(seg) < 2 {
			return nil, &CorruptVisibleRecordError{Offset: segOff, Reason: "segment too short for checksum"}
		}
		stored := binary.BigEndian.Uint16(seg[len(seg)-2:])
		seg = seg[:len(seg)-2]
		if a.verify {
			if got := segmentChecksum(seg); got != stored {
				return nil, &ChecksumError{Offset: segOff, Want: stored, Got: got}
			}
		}
	}
	if h.padded() {
		if len(seg) < 1 {
			return nil, &CorruptVisibleRecordError{Offset: segOff, Reason: "segment too short for pad count"}
		}
		pad := int(seg[len(seg)-1])
		if pad < 1 || pad > len(seg) {
			return nil, &CorruptVisibleRecordError{
				Offset: segOff,
				Reason: fmt.Sprintf("pad count %d outside segment of %d bytes", pad, len(seg)),
			}
		}
		seg = seg[:len(seg)-pad]
	}
	return seg, nil
}
