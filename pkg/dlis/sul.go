package dlis

import (
	"fmt"
	"strconv"
	"strings"
)

// SULSize is the fixed size of the storage unit label at offset 0.
const SULSize = 80

// Fixed field widths within the label, in order.
const (
	sulSequenceLen  = 4  // storage unit sequence number
	sulVersionLen   = 5  // "V1.00" format-version token
	sulStructureLen = 6  // storage unit structure, "RECORD"
	sulMaxLenLen    = 5  // maximum visible record length
	sulIDLen        = 60 // storage set identifier
)

// StorageUnitLabel is the parsed 80-byte header identifying the file format
// and storage set. Parsed once at open and immutable for the life of the
// handle.
type StorageUnitLabel struct {
	Sequence        int    `json:"sequence"`
	Version         string `json:"version"` // "major.minor", e.g. "1.0"
	Layout          string `json:"layout"`  // "record", or "unknown"
	MaxRecordLength int    `json:"maxlen"`
	ID              string `json:"id"`
}

// ParseStorageUnitLabel parses the fixed label from the first 80 bytes of a
// file. The version token is validated; everything else is best-effort
// ASCII, matching how permissive real-world writers are with these fields.
func ParseStorageUnitLabel(b []byte) (StorageUnitLabel, error) {
	if len(b) < SULSize {
		return StorageUnitLabel{}, fmt.Errorf("%w: %d bytes, need %d", ErrInvalidStorageLabel, len(b), SULSize)
	}

	off := 0
	field := func(n int) string {
		s := string(b[off : off+n])
		off += n
		return s
	}

	seqStr := field(sulSequenceLen)
	verStr := field(sulVersionLen)
	structStr := field(sulStructureLen)
	maxStr := field(sulMaxLenLen)
	idStr := field(sulIDLen)

	major, minor, err := parseVersionToken(verStr)
	if err != nil {
		return StorageUnitLabel{}, err
	}

	sul := StorageUnitLabel{
		Version: fmt.Sprintf("%d.%d", major, minor),
		Layout:  "unknown",
		ID:      strings.TrimRight(idStr, " \x00"),
	}
	if strings.TrimSpace(structStr) == "RECORD" {
		sul.Layout = "record"
	}
	if n, err := strconv.Atoi(strings.TrimSpace(seqStr)); err == nil {
		sul.Sequence = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(maxStr)); err == nil {
		sul.MaxRecordLength = n
	}
	return sul, nil
}

// parseVersionToken validates the "Vn.mm" token. A file without it is not a
// DLIS file, and nothing after the label can be trusted.
func parseVersionToken(s string) (major, minor int, err error) {
	if len(s) != sulVersionLen || s[0] != 'V' || s[2] != '.' {
		return 0, 0, fmt.Errorf("%w: bad version token %q", ErrInvalidStorageLabel, s)
	}
	major, err = strconv.Atoi(s[1:2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad version token %q", ErrInvalidStorageLabel, s)
	}
	minor, err = strconv.Atoi(s[3:5])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad version token %q", ErrInvalidStorageLabel, s)
	}
	if major != 1 {
		return 0, 0, fmt.Errorf("%w: unsupported format version %d", ErrInvalidStorageLabel, major)
	}
	return major, minor, nil
}
