package codec

import (
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind tags the variant stored in a Value, one per representation-code
// family.
type Kind uint8

const (
	// KindAbsent marks a value an object declined to override; the decoder
	// substitutes the template default, if any.
	KindAbsent Kind = iota
	KindInt
	KindUint
	KindFloat
	KindComplex
	KindString
	KindBool
	KindDateTime
	KindObjectName
	KindObjectRef
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindObjectName:
		return "objectname"
	case KindObjectRef:
		return "objectref"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ObjectName is the origin/copy/identifier triple that uniquely keys an
// object within one logical record.
type ObjectName struct {
	Origin     uint32 `json:"origin"`
	Copy       uint8  `json:"copy"`
	Identifier string `json:"identifier"`
}

func (n ObjectName) String() string {
	return fmt.Sprintf("%d/%d/%s", n.Origin, n.Copy, n.Identifier)
}

// ObjectRef is a reference to an object elsewhere in the file: the type of
// the set it lives in plus its name. ATTREF additionally names one of its
// attributes via Label.
type ObjectRef struct {
	Type  string     `json:"type"`
	Name  ObjectName `json:"name"`
	Label string     `json:"label,omitempty"`
}

// Value is a decoded DLIS value. Exactly one variant is meaningful, selected
// by Kind. Validated float codes (FSING1/FSING2/FDOUB1/FDOUB2) store their
// confidence bounds in Bounds alongside the nominal Float.
type Value struct {
	Kind    Kind
	Int     int64
	Uint    uint64
	Float   float64
	Complex complex128
	Str     string
	Bool    bool
	Time    time.Time
	Name    ObjectName
	Ref     ObjectRef
	Bounds  []float64
}

func IntValue(v int64) Value       { return Value{Kind: KindInt, Int: v} }
func UintValue(v uint64) Value     { return Value{Kind: KindUint, Uint: v} }
func FloatValue(v float64) Value   { return Value{Kind: KindFloat, Float: v} }
func StringValue(v string) Value   { return Value{Kind: KindString, Str: v} }
func BoolValue(v bool) Value       { return Value{Kind: KindBool, Bool: v} }
func TimeValue(v time.Time) Value  { return Value{Kind: KindDateTime, Time: v} }
func NameValue(v ObjectName) Value { return Value{Kind: KindObjectName, Name: v} }
func RefValue(v ObjectRef) Value   { return Value{Kind: KindObjectRef, Ref: v} }

func ComplexValue(v complex128) Value { return Value{Kind: KindComplex, Complex: v} }

// AbsentValue returns the marker for an attribute the object did not carry.
func AbsentValue() Value { return Value{Kind: KindAbsent} }

// String renders the value for human output.
func (v Value) String() string {
	switch v.Kind {
	case KindAbsent:
		return "-"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindUint:
		return strconv.FormatUint(v.Uint, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindComplex:
		return fmt.Sprintf("%g", v.Complex)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDateTime:
		return v.Time.Format(time.RFC3339)
	case KindObjectName:
		return v.Name.String()
	case KindObjectRef:
		return v.Ref.Name.String()
	default:
		return "?"
	}
}

// Interface returns the variant as an untyped value, for callers that feed
// decoded attributes into generic output layers.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindAbsent:
		return nil
	case KindInt:
		return v.Int
	case KindUint:
		return v.Uint
	case KindFloat:
		if len(v.Bounds) > 0 {
			return append([]float64{v.Float}, v.Bounds...)
		}
		return v.Float
	case KindComplex:
		return []float64{real(v.Complex), imag(v.Complex)}
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	case KindDateTime:
		return v.Time
	case KindObjectName:
		return v.Name
	case KindObjectRef:
		return v.Ref
	default:
		return nil
	}
}

// MarshalJSON renders the variant directly rather than the whole struct, so
// API and CLI output stays compact.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
