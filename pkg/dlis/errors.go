package dlis

import (
	"errors"
	"fmt"

	"github.com/welldata/dlis/pkg/codec"
)

// Sentinel errors. The fatal ones mean the index cannot be trusted past the
// failure point; the per-record ones are scoped to a single decode call.
var (
	// ErrInvalidStorageLabel means the 80-byte storage unit label is missing
	// or carries the wrong format-version token. Fatal for the whole file.
	ErrInvalidStorageLabel = errors.New("invalid storage unit label")

	// ErrSegmentFlagMismatch means the explicit/implicit flag changed
	// between segments of one logical record. Always fatal corruption.
	ErrSegmentFlagMismatch = errors.New("segment formatting flag changed mid-record")

	// ErrInvalidBookmark means a random-access position was not one
	// previously yielded by indexing. A caller bug, not a format fault.
	ErrInvalidBookmark = errors.New("position is not an indexed record boundary")

	// ErrImplicitRecord is returned when an explicit-record decode is
	// requested for an implicitly formatted record.
	ErrImplicitRecord = errors.New("record is implicitly formatted")

	// ErrEncryptedRecord is returned when an explicit-record decode is
	// requested for an encrypted record; payload bytes remain available via
	// RawRecordAt but are never decrypted.
	ErrEncryptedRecord = errors.New("record is encrypted")

	// ErrFileClosed is returned for any operation on a closed handle.
	ErrFileClosed = errors.New("file is closed")
)

// CorruptVisibleRecordError reports visible-record framing that cannot be
// trusted: a bad format marker, an impossible length, or a segment that
// overruns its enclosing visible record. Fatal; subsequent offsets are
// meaningless.
type CorruptVisibleRecordError struct {
	Offset int64
	Reason string
}

func (e *CorruptVisibleRecordError) Error() string {
	return fmt.Sprintf("corrupt visible record at offset %d: %s", e.Offset, e.Reason)
}

// TruncatedError reports a file that ends mid-structure: inside a visible
// record, a segment header, or before a record's last segment. Records
// indexed before Offset remain valid.
type TruncatedError struct {
	Offset int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("file truncated at offset %d", e.Offset)
}

// ChecksumError reports a segment checksum mismatch, only produced when
// checksum verification is enabled.
type ChecksumError struct {
	Offset int64
	Want   uint16
	Got    uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("segment checksum mismatch at offset %d: stored %#04x, computed %#04x", e.Offset, e.Want, e.Got)
}

// TemplateOverflowError reports an object carrying more attributes than its
// set's template defines. Scoped to the record being decoded.
type TemplateOverflowError struct {
	SetType  string
	Object   codec.ObjectName
	Template int
	Offset   int64
}

func (e *TemplateOverflowError) Error() string {
	return fmt.Sprintf("object %s in set %q carries more than %d attributes (offset %d)",
		e.Object, e.SetType, e.Template, e.Offset)
}
