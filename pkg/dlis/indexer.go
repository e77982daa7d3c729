package dlis

import (
	"fmt"
	"sort"
)

// IndexEntry is the identity of one logical record: its bookmark plus the
// classification taken from its first segment header. Residual is the part
// of the bookmark needed to resume mid-visible-record; Type is the logical
// record type code.
type IndexEntry struct {
	Position  int64 `json:"position"`
	Explicit  bool  `json:"explicit"`
	Encrypted bool  `json:"encrypted,omitempty"`
	Type      uint8 `json:"type"`
	Residual  int   `json:"residual"`
}

// Index is the ordered sequence of record identities in file order. It is
// append-only with strictly increasing positions, and owned by the File that
// builds it. Once complete it is stable; the underlying file is read-only.
type Index struct {
	entries  []IndexEntry
	complete bool
}

// NewIndex returns an empty index.
func NewIndex() *Index { return &Index{} }

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.entries) }

// Complete reports whether the whole file has been indexed.
func (ix *Index) Complete() bool { return ix.complete }

// Entry returns the i-th entry in file order.
func (ix *Index) Entry(i int) IndexEntry { return ix.entries[i] }

// Entries returns all entries in file order. The slice is shared; callers
// must not modify it.
func (ix *Index) Entries() []IndexEntry { return ix.entries }

// Lookup finds the entry bookmarked at exactly pos.
func (ix *Index) Lookup(pos int64) (IndexEntry, bool) {
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Position >= pos
	})
	if i < len(ix.entries) && ix.entries[i].Position == pos {
		return ix.entries[i], true
	}
	return IndexEntry{}, false
}

// append adds an entry, enforcing the strictly-increasing-position
// invariant.
func (ix *Index) append(e IndexEntry) error {
	if n := len(ix.entries); n > 0 && e.Position <= ix.entries[n-1].Position {
		return fmt.Errorf("index position %d not after %d", e.Position, ix.entries[n-1].Position)
	}
	ix.entries = append(ix.entries, e)
	return nil
}

// restore replaces the contents with previously persisted entries, after
// validating the ordering invariant. The restored index is complete.
func (ix *Index) restore(entries []IndexEntry) error {
	fresh := &Index{}
	for _, e := range entries {
		if e.Position < SULSize {
			return fmt.Errorf("index position %d inside storage unit label", e.Position)
		}
		if err := fresh.append(e); err != nil {
			return err
		}
	}
	ix.entries = fresh.entries
	ix.complete = true
	return nil
}
