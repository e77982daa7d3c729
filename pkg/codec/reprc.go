package codec

import (
	"fmt"
	"math"
	"time"
)

// ReprCode is a DLIS representation code: a one-byte tag selecting the
// binary layout of the value that follows it in the stream.
type ReprCode uint8

// RP66 v1 Appendix B representation codes.
const (
	FSHORT ReprCode = 1  // 16-bit low precision float
	FSINGL ReprCode = 2  // IEEE 754 single
	FSING1 ReprCode = 3  // validated single: value + bound
	FSING2 ReprCode = 4  // validated single: value + two bounds
	ISINGL ReprCode = 5  // IBM System/360 single
	VSINGL ReprCode = 6  // VAX F-floating single
	FDOUBL ReprCode = 7  // IEEE 754 double
	FDOUB1 ReprCode = 8  // validated double: value + bound
	FDOUB2 ReprCode = 9  // validated double: value + two bounds
	CSINGL ReprCode = 10 // complex, two IEEE singles
	CDOUBL ReprCode = 11 // complex, two IEEE doubles
	SSHORT ReprCode = 12 // signed 8-bit
	SNORM  ReprCode = 13 // signed 16-bit
	SLONG  ReprCode = 14 // signed 32-bit
	USHORT ReprCode = 15 // unsigned 8-bit
	UNORM  ReprCode = 16 // unsigned 16-bit
	ULONG  ReprCode = 17 // unsigned 32-bit
	UVARI  ReprCode = 18 // variable-width unsigned, 1/2/4 bytes
	IDENT  ReprCode = 19 // short string, one-byte length prefix
	ASCII  ReprCode = 20 // string, UVARI length prefix
	DTIME  ReprCode = 21 // date-time, fixed 8 bytes
	ORIGIN ReprCode = 22 // origin reference, UVARI layout
	OBNAME ReprCode = 23 // object name: origin, copy, identifier
	OBJREF ReprCode = 24 // object reference: set type + object name
	ATTREF ReprCode = 25 // attribute reference: objref + label
	STATUS ReprCode = 26 // boolean, one byte
	UNITS  ReprCode = 27 // units string, IDENT layout
)

var reprCodeNames = map[ReprCode]string{
	FSHORT: "FSHORT", FSINGL: "FSINGL", FSING1: "FSING1", FSING2: "FSING2",
	ISINGL: "ISINGL", VSINGL: "VSINGL", FDOUBL: "FDOUBL", FDOUB1: "FDOUB1",
	FDOUB2: "FDOUB2", CSINGL: "CSINGL", CDOUBL: "CDOUBL", SSHORT: "SSHORT",
	SNORM: "SNORM", SLONG: "SLONG", USHORT: "USHORT", UNORM: "UNORM",
	ULONG: "ULONG", UVARI: "UVARI", IDENT: "IDENT", ASCII: "ASCII",
	DTIME: "DTIME", ORIGIN: "ORIGIN", OBNAME: "OBNAME", OBJREF: "OBJREF",
	ATTREF: "ATTREF", STATUS: "STATUS", UNITS: "UNITS",
}

func (rc ReprCode) String() string {
	if s, ok := reprCodeNames[rc]; ok {
		return s
	}
	return fmt.Sprintf("reprc(%d)", uint8(rc))
}

// Valid reports whether rc is a known representation code.
func (rc ReprCode) Valid() bool {
	_, ok := reprCodeNames[rc]
	return ok
}

// UnsupportedReprCodeError reports a representation code outside the RP66
// enumeration. Offset is the absolute position the value would have been
// read from. The caller decides whether this is fatal: the rest of the
// record cannot be walked positionally, but records already decoded stay
// valid.
type UnsupportedReprCodeError struct {
	Code   ReprCode
	Offset int64
}

func (e *UnsupportedReprCodeError) Error() string {
	return fmt.Sprintf("unsupported representation code %d at offset %d", uint8(e.Code), e.Offset)
}

// Decode reads one value of the given representation code from the cursor.
// It returns the decoded value and the number of bytes consumed. On error
// the cursor is left where the failed read started.
func Decode(rc ReprCode, c *Cursor) (Value, int, error) {
	start := c.Offset()
	v, err := decode(rc, c)
	if err != nil {
		return Value{}, 0, err
	}
	return v, c.Offset() - start, nil
}

// DecodeN reads count consecutive values of the same representation code.
// count comes from untrusted file bytes; every value occupies at least one
// byte, so a count beyond the remaining buffer is rejected before any
// allocation sized by it.
func DecodeN(rc ReprCode, count int, c *Cursor) ([]Value, int, error) {
	start := c.Offset()
	if count > c.Remaining() {
		return nil, 0, &OutOfBoundsError{Offset: c.Position(), Want: count, Have: c.Remaining()}
	}
	vs := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, err := decode(rc, c)
		if err != nil {
			return nil, 0, err
		}
		vs = append(vs, v)
	}
	return vs, c.Offset() - start, nil
}

func decode(rc ReprCode, c *Cursor) (Value, error) {
	switch rc {
	case FSHORT:
		return decodeFShort(c)
	case FSINGL:
		u, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		return FloatValue(float64(math.Float32frombits(u))), nil
	case FSING1:
		return decodeValidatedSingle(c, 1)
	case FSING2:
		return decodeValidatedSingle(c, 2)
	case ISINGL:
		return decodeIBMSingle(c)
	case VSINGL:
		return decodeVaxSingle(c)
	case FDOUBL:
		u, err := c.ReadU64()
		if err != nil {
			return Value{}, err
		}
		return FloatValue(math.Float64frombits(u)), nil
	case FDOUB1:
		return decodeValidatedDouble(c, 1)
	case FDOUB2:
		return decodeValidatedDouble(c, 2)
	case CSINGL:
		re, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		im, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		return ComplexValue(complex(
			float64(math.Float32frombits(re)),
			float64(math.Float32frombits(im)))), nil
	case CDOUBL:
		re, err := c.ReadU64()
		if err != nil {
			return Value{}, err
		}
		im, err := c.ReadU64()
		if err != nil {
			return Value{}, err
		}
		return ComplexValue(complex(
			math.Float64frombits(re),
			math.Float64frombits(im))), nil
	case SSHORT:
		b, err := c.ReadU8()
		if err != nil {
			return Value{}, err
		}
		return IntValue(int64(int8(b))), nil
	case SNORM:
		u, err := c.ReadU16()
		if err != nil {
			return Value{}, err
		}
		return IntValue(int64(int16(u))), nil
	case SLONG:
		u, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		return IntValue(int64(int32(u))), nil
	case USHORT:
		b, err := c.ReadU8()
		if err != nil {
			return Value{}, err
		}
		return UintValue(uint64(b)), nil
	case UNORM:
		u, err := c.ReadU16()
		if err != nil {
			return Value{}, err
		}
		return UintValue(uint64(u)), nil
	case ULONG:
		u, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		return UintValue(uint64(u)), nil
	case UVARI, ORIGIN:
		u, err := Uvari(c)
		if err != nil {
			return Value{}, err
		}
		return UintValue(uint64(u)), nil
	case IDENT, UNITS:
		s, err := Ident(c)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case ASCII:
		n, err := Uvari(c)
		if err != nil {
			return Value{}, err
		}
		s, err := c.ReadFixedString(int(n))
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case DTIME:
		return decodeDTime(c)
	case OBNAME:
		n, err := Obname(c)
		if err != nil {
			return Value{}, err
		}
		return NameValue(n), nil
	case OBJREF:
		typ, err := Ident(c)
		if err != nil {
			return Value{}, err
		}
		n, err := Obname(c)
		if err != nil {
			return Value{}, err
		}
		return RefValue(ObjectRef{Type: typ, Name: n}), nil
	case ATTREF:
		typ, err := Ident(c)
		if err != nil {
			return Value{}, err
		}
		n, err := Obname(c)
		if err != nil {
			return Value{}, err
		}
		label, err := Ident(c)
		if err != nil {
			return Value{}, err
		}
		return RefValue(ObjectRef{Type: typ, Name: n, Label: label}), nil
	case STATUS:
		b, err := c.ReadU8()
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b != 0), nil
	default:
		return Value{}, &UnsupportedReprCodeError{Code: rc, Offset: c.Position()}
	}
}

// Uvari reads the variable-width unsigned integer: the top bits of the first
// byte select a 1, 2 or 4 byte encoding holding 7, 14 or 30 value bits.
func Uvari(c *Cursor) (uint32, error) {
	b, err := c.PeekU8()
	if err != nil {
		return 0, err
	}
	switch {
	case b&0x80 == 0:
		_, _ = c.ReadU8()
		return uint32(b), nil
	case b&0x40 == 0:
		u, err := c.ReadU16()
		if err != nil {
			return 0, err
		}
		return uint32(u) & 0x3FFF, nil
	default:
		u, err := c.ReadU32()
		if err != nil {
			return 0, err
		}
		return u & 0x3FFFFFFF, nil
	}
}

// Ident reads a short string with a one-byte length prefix.
func Ident(c *Cursor) (string, error) {
	n, err := c.ReadU8()
	if err != nil {
		return "", err
	}
	return c.ReadFixedString(int(n))
}

// Obname reads an object name: ORIGIN, one-byte copy number, IDENT.
func Obname(c *Cursor) (ObjectName, error) {
	origin, err := Uvari(c)
	if err != nil {
		return ObjectName{}, err
	}
	cp, err := c.ReadU8()
	if err != nil {
		return ObjectName{}, err
	}
	id, err := Ident(c)
	if err != nil {
		return ObjectName{}, err
	}
	return ObjectName{Origin: origin, Copy: cp, Identifier: id}, nil
}

// decodeFShort reads the 16-bit low precision float: a 12-bit two's
// complement fraction in the high bits and a 4-bit unsigned exponent in the
// low bits. V = (M/2048) * 2^E.
func decodeFShort(c *Cursor) (Value, error) {
	u, err := c.ReadU16()
	if err != nil {
		return Value{}, err
	}
	mant := int16(u) >> 4 // arithmetic shift keeps the sign
	exp := int(u & 0x000F)
	return FloatValue(math.Ldexp(float64(mant), exp-11)), nil
}

// decodeIBMSingle reads the IBM System/360 hexadecimal float: sign, 7-bit
// base-16 exponent biased by 64, 24-bit fraction.
func decodeIBMSingle(c *Cursor) (Value, error) {
	u, err := c.ReadU32()
	if err != nil {
		return Value{}, err
	}
	frac := float64(u&0x00FFFFFF) / float64(1<<24)
	exp := int(u>>24) & 0x7F
	v := frac * math.Pow(16, float64(exp-64))
	if u&0x80000000 != 0 {
		v = -v
	}
	return FloatValue(v), nil
}

// decodeVaxSingle reads the VAX F-floating single. The four file bytes are
// pairwise word-swapped relative to the logical layout: sign, 8-bit exponent
// biased by 128, 23-bit fraction with a hidden leading 0.1.
func decodeVaxSingle(c *Cursor) (Value, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return Value{}, err
	}
	u := uint32(b[1])<<24 | uint32(b[0])<<16 | uint32(b[3])<<8 | uint32(b[2])
	exp := int(u>>23) & 0xFF
	if exp == 0 {
		// true zero, or the reserved operand form; both decode to zero
		return FloatValue(0), nil
	}
	frac := 0.5 + float64(u&0x007FFFFF)/float64(1<<24)
	v := math.Ldexp(frac, exp-128)
	if u&0x80000000 != 0 {
		v = -v
	}
	return FloatValue(v), nil
}

func decodeValidatedSingle(c *Cursor, bounds int) (Value, error) {
	u, err := c.ReadU32()
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: KindFloat, Float: float64(math.Float32frombits(u))}
	for i := 0; i < bounds; i++ {
		bu, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		v.Bounds = append(v.Bounds, float64(math.Float32frombits(bu)))
	}
	return v, nil
}

func decodeValidatedDouble(c *Cursor, bounds int) (Value, error) {
	u, err := c.ReadU64()
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: KindFloat, Float: math.Float64frombits(u)}
	for i := 0; i < bounds; i++ {
		bu, err := c.ReadU64()
		if err != nil {
			return Value{}, err
		}
		v.Bounds = append(v.Bounds, math.Float64frombits(bu))
	}
	return v, nil
}

// decodeDTime reads the fixed 8-byte date-time: year since 1900, time zone
// nibble + month nibble, day, hour, minute, second, millisecond.
func decodeDTime(c *Cursor) (Value, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return Value{}, err
	}
	year := 1900 + int(b[0])
	month := time.Month(b[1] & 0x0F)
	ms := int(uint16(b[6])<<8 | uint16(b[7]))
	t := time.Date(year, month, int(b[2]), int(b[3]), int(b[4]), int(b[5]), ms*int(time.Millisecond), time.UTC)
	return TimeValue(t), nil
}
