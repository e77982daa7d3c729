package dlis

import (
	"fmt"
	"io"
	"os"
)

// Options control how a File reads the underlying bytes.
type Options struct {
	// VerifyChecksums validates the optional segment checksum trailer
	// instead of just stripping it.
	VerifyChecksums bool
}

// Option mutates Options at Open time.
type Option func(*Options)

// WithChecksumVerification enables or disables segment checksum validation.
func WithChecksumVerification(v bool) Option {
	return func(o *Options) { o.VerifyChecksums = v }
}

// File is a random-access handle over one DLIS file: the parsed storage unit
// label, the record index, and the scan state used to extend the index
// incrementally.
//
// A File carries mutable cursor state and is owned by exactly one logical
// caller at a time; it is not safe for concurrent use without external
// synchronization. Independent handles over the same path may coexist
// freely. Random-access fetches use positioned reads and never disturb the
// sequential scan position.
type File struct {
	f     *os.File
	path  string
	size  int64
	opts  Options
	label StorageUnitLabel
	index *Index
	asm   *LogicalRecordAssembler
}

// Open opens path read-only, parses and validates the storage unit label,
// and positions the handle at the first visible record. The index starts
// empty; drive it with Advance or IndexAll, or seed it with RestoreIndex.
func Open(path string, opts ...Option) (*File, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	buf := make([]byte, SULSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidStorageLabel, err)
	}
	label, err := ParseStorageUnitLabel(buf)
	if err != nil {
		f.Close()
		return nil, err
	}

	scanner := NewVisibleRecordScanner(f, st.Size(), SULSize)
	return &File{
		f:     f,
		path:  path,
		size:  st.Size(),
		opts:  o,
		label: label,
		index: NewIndex(),
		asm:   NewLogicalRecordAssembler(f, scanner, o.VerifyChecksums),
	}, nil
}

// Path returns the path the handle was opened with.
func (f *File) Path() string { return f.path }

// Size returns the file size in bytes.
func (f *File) Size() int64 { return f.size }

// Label returns the storage unit label parsed at open.
func (f *File) Label() StorageUnitLabel { return f.label }

// Index returns the index built so far. It stays owned by the handle.
func (f *File) Index() *Index { return f.index }

// EOF reports whether the sequential scan has consumed the whole file. For
// a file holding only a storage unit label this is true immediately.
func (f *File) EOF() bool {
	return f.f == nil || f.index.complete || f.asm.AtEnd()
}

// Advance indexes one more logical record: it walks the record's segment
// headers without touching payload bytes, classifies it from the first
// segment, and appends its bookmark to the index. Returns io.EOF once the
// file is fully indexed. A scan error aborts this call; entries indexed
// before it remain valid, and the failure offset is carried in the error.
func (f *File) Advance() (IndexEntry, error) {
	if f.f == nil {
		return IndexEntry{}, ErrFileClosed
	}
	if f.index.complete {
		return IndexEntry{}, io.EOF
	}

	rec, err := f.asm.Next(true)
	if err == io.EOF {
		f.index.complete = true
		return IndexEntry{}, io.EOF
	}
	if err != nil {
		return IndexEntry{}, err
	}

	entry := IndexEntry{
		Position:  rec.Position,
		Explicit:  rec.Explicit,
		Encrypted: rec.Encrypted,
		Type:      rec.Type,
		Residual:  rec.Residual,
	}
	if err := f.index.append(entry); err != nil {
		return IndexEntry{}, err
	}
	return entry, nil
}

// IndexAll drives Advance to the end of the file.
func (f *File) IndexAll() error {
	for {
		if _, err := f.Advance(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// RestoreIndex seeds the handle with a previously built, complete index,
// typically from a persisted cache. Entries are validated for ordering only;
// the caller vouches that they belong to this file's current contents.
func (f *File) RestoreIndex(entries []IndexEntry) error {
	if f.f == nil {
		return ErrFileClosed
	}
	return f.index.restore(entries)
}

// RawRecordAt reassembles and returns the payload bytes of the record
// bookmarked at pos. pos must have been yielded by indexing; any other
// offset fails with ErrInvalidBookmark. Payloads are not cached; each call
// re-reads the file.
func (f *File) RawRecordAt(pos int64) ([]byte, error) {
	rec, err := f.recordAt(pos)
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

// DecodeExplicitAt reassembles the record bookmarked at pos and decodes its
// sets. The record must be classified explicit and not encrypted. On a
// decode error the sets decoded before the failure are returned with it;
// the index is never affected.
func (f *File) DecodeExplicitAt(pos int64) ([]*Set, error) {
	rec, err := f.recordAt(pos)
	if err != nil {
		return nil, err
	}
	if !rec.Explicit {
		return nil, fmt.Errorf("%w: record at %d", ErrImplicitRecord, pos)
	}
	if rec.Encrypted {
		return nil, fmt.Errorf("%w: record at %d", ErrEncryptedRecord, pos)
	}
	return DecodeExplicitRecord(rec.Payload, pos)
}

// recordAt runs a throwaway assembler from an indexed bookmark, leaving the
// sequential scan state untouched.
func (f *File) recordAt(pos int64) (*LogicalRecord, error) {
	if f.f == nil {
		return nil, ErrFileClosed
	}
	entry, ok := f.index.Lookup(pos)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBookmark, pos)
	}

	scanner := NewVisibleRecordScanner(f.f, f.size, pos)
	asm := NewLogicalRecordAssembler(f.f, scanner, f.opts.VerifyChecksums)
	asm.Seek(pos, entry.Residual)
	return asm.Next(false)
}

// Close releases the file handle. The index remains readable.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}
