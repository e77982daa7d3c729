// Package dlis reads DLIS (RP66 v1) well-log interchange files: it scans the
// physical visible-record framing, reassembles logically variable-length
// records from their segments, builds a random-access index over them, and
// decodes explicitly formatted (metadata) records into sets, objects and
// typed attributes.
//
// The File type is the entry point:
//
//	f, err := dlis.Open(path)
//	if err != nil { ... }
//	defer f.Close()
//
//	for {
//		entry, err := f.Advance()
//		if err == io.EOF {
//			break
//		}
//		if err != nil { ... }
//		if entry.Explicit {
//			sets, err := f.DecodeExplicitAt(entry.Position)
//			...
//		}
//	}
//
// A File is owned by one caller at a time; see the File documentation for
// the concurrency contract. Implicit (raw data) record payloads are exposed
// as opaque bytes via RawRecordAt and are never interpreted here.
package dlis
