package dlis

import "encoding/binary"

// segmentHeaderSize is the 2-byte length, 1-byte attribute flags and 1-byte
// record type of a logical record segment header.
const segmentHeaderSize = 4

// Logical record segment attribute bits.
const (
	segExplicit         = 0x80 // explicitly formatted (EFLR)
	segHasPredecessor   = 0x40 // not the first segment of its record
	segHasSuccessor     = 0x20 // not the last segment of its record
	segEncrypted        = 0x10
	segEncryptionPacket = 0x08 // payload starts with an encryption packet
	segHasChecksum      = 0x04 // payload ends with a 2-byte checksum
	segHasTrailingLen   = 0x02 // payload ends with a 2-byte copy of the length
	segPadded           = 0x01 // payload ends with pad bytes; last byte is the count
)

// segmentHeader is the parsed header of one logical record segment.
// Ephemeral; one per reassembly step.
type segmentHeader struct {
	length int   // declared segment length, header included
	attrs  uint8 // attribute flag bits
	typ    uint8 // logical record type code
}

func parseSegmentHeader(b []byte) segmentHeader {
	return segmentHeader{
		length: int(binary.BigEndian.Uint16(b[0:2])),
		attrs:  b[2],
		typ:    b[3],
	}
}

func (h segmentHeader) explicit() bool         { return h.attrs&segExplicit != 0 }
func (h segmentHeader) hasPredecessor() bool   { return h.attrs&segHasPredecessor != 0 }
func (h segmentHeader) hasSuccessor() bool     { return h.attrs&segHasSuccessor != 0 }
func (h segmentHeader) encrypted() bool        { return h.attrs&segEncrypted != 0 }
func (h segmentHeader) encryptionPacket() bool { return h.attrs&segEncryptionPacket != 0 }
func (h segmentHeader) hasChecksum() bool      { return h.attrs&segHasChecksum != 0 }
func (h segmentHeader) hasTrailingLen() bool   { return h.attrs&segHasTrailingLen != 0 }
func (h segmentHeader) padded() bool           { return h.attrs&segPadded != 0 }

// segmentChecksum computes the 16-bit rotate-and-add checksum over a
// segment's payload bytes, per the optional trailer of RP66 v1 Appendix E.
func segmentChecksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum = sum<<1 | sum>>15
		sum += uint16(b)
	}
	return sum
}
