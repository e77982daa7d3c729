// Package codec decodes the primitive value layer of the DLIS (RP66 v1)
// interchange format.
//
// DLIS metadata is self-describing: every value in an explicit logical record
// is preceded (directly or via a template) by a one-byte representation code
// that selects the binary layout of the bytes that follow. This package
// provides the two pieces that layer is built from:
//
//   - Cursor: a bounds-checked, big-endian reader over the reassembled bytes
//     of one logical record. Reads never return partial data; a read past the
//     end of the buffer fails with an out-of-bounds error and leaves the
//     cursor untouched.
//   - Decode: representation-code dispatch. Given a code and a cursor it
//     consumes exactly the bytes that code defines and returns a tagged
//     Value (integer, float, complex, string, boolean, date-time, object
//     name or object reference).
//
// # Representation Codes
//
// The full RP66 Appendix B enumeration (codes 1 through 27) is supported,
// including the legacy non-IEEE float layouts (FSHORT, ISINGL, VSINGL), the
// validated floats carrying confidence bounds (FSING1/FSING2/FDOUB1/FDOUB2)
// and the complex layouts (CSINGL/CDOUBL). An unknown code fails with
// UnsupportedReprCodeError carrying the offending code and the absolute
// cursor position, so callers can report exactly where a record stopped
// making sense.
//
// # Multi-byte Layout
//
// Everything in DLIS is big-endian. Variable-width fields use either a
// one-byte length prefix (IDENT, UNITS), a UVARI length prefix (ASCII), or
// the UVARI encoding itself: 1, 2 or 4 bytes selected by the top bits of the
// first byte.
//
// Cursors are not safe for concurrent use; a cursor belongs to the single
// decode pass that created it.
package codec
