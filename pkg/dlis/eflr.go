package dlis

import (
	"fmt"

	"github.com/welldata/dlis/pkg/codec"
)

// Component descriptor roles, the top three bits of the descriptor byte.
const (
	roleAbsentAttr     = 0 // attribute the object declines to carry
	roleAttribute      = 1
	roleInvariantAttr  = 2 // template attribute shared by every object
	roleObject         = 3
	roleReserved       = 4
	roleRedundantSet   = 5
	roleReplacementSet = 6
	roleSet            = 7
)

func roleName(role uint8) string {
	switch role {
	case roleAbsentAttr:
		return "absent-attribute"
	case roleAttribute:
		return "attribute"
	case roleInvariantAttr:
		return "invariant-attribute"
	case roleObject:
		return "object"
	case roleReserved:
		return "reserved"
	case roleRedundantSet:
		return "redundant-set"
	case roleReplacementSet:
		return "replacement-set"
	case roleSet:
		return "set"
	default:
		return fmt.Sprintf("role(%d)", role)
	}
}

// Descriptor format bits. Their meaning depends on the role.
const (
	setHasType = 0x10
	setHasName = 0x08

	objHasName = 0x10

	attrHasLabel = 0x10
	attrHasCount = 0x08
	attrHasReprc = 0x04
	attrHasUnits = 0x02
	attrHasValue = 0x01
)

func descriptorRole(desc uint8) uint8 { return desc >> 5 }

func isSetRole(role uint8) bool {
	return role == roleSet || role == roleRedundantSet || role == roleReplacementSet
}

// AttributeSpec is one column of a set's template: the label, default count,
// representation code, units and default value objects inherit positionally.
type AttributeSpec struct {
	Label     string         `json:"label"`
	Count     int            `json:"count"`
	Reprc     codec.ReprCode `json:"reprc"`
	Units     string         `json:"units,omitempty"`
	Default   []codec.Value  `json:"default,omitempty"`
	Invariant bool           `json:"invariant,omitempty"`
}

// Template is the attribute schema of a set. Invariant attributes carry
// their values once here and are patched onto every object.
type Template struct {
	Attrs      []AttributeSpec `json:"attrs"`
	Invariants []AttributeSpec `json:"invariants,omitempty"`
}

// Len returns the number of positional (non-invariant) columns.
func (t Template) Len() int { return len(t.Attrs) }

// Attribute is one decoded attribute of an object. Label and any fields the
// object did not override are inherited from the template column at the same
// position. Absent marks attributes the object declined; those carry the
// template default values.
type Attribute struct {
	Label  string         `json:"label"`
	Reprc  codec.ReprCode `json:"reprc"`
	Units  string         `json:"units,omitempty"`
	Count  int            `json:"count"`
	Values []codec.Value  `json:"values,omitempty"`
	Absent bool           `json:"absent,omitempty"`
}

// Value returns the first value, or the absent marker when there is none.
func (a Attribute) Value() codec.Value {
	if len(a.Values) == 0 {
		return codec.AbsentValue()
	}
	return a.Values[0]
}

// Object is one row of a set: a name triple plus attributes aligned
// positionally to the set's template (invariants appended last).
type Object struct {
	Name       codec.ObjectName `json:"name"`
	Attributes []Attribute      `json:"attributes"`
}

// Attribute finds an attribute by label.
func (o *Object) Attribute(label string) (Attribute, bool) {
	for _, a := range o.Attributes {
		if a.Label == label {
			return a, true
		}
	}
	return Attribute{}, false
}

// Set is one decoded set of an explicit logical record: a type name, an
// optional set name, the template, and the objects in file order. Duplicate
// object names are preserved, not collapsed.
type Set struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Template Template  `json:"template"`
	Objects  []*Object `json:"objects"`
}

// Object returns the first object with exactly the given name triple.
func (s *Set) Object(name codec.ObjectName) (*Object, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// ObjectsNamed returns every object whose identifier matches, in file order.
func (s *Set) ObjectsNamed(identifier string) []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if o.Name.Identifier == identifier {
			out = append(out, o)
		}
	}
	return out
}

// DecodeExplicitRecord parses the reassembled payload of one explicitly
// formatted logical record into its sets. base is the record's bookmark
// position, used only for error offsets.
//
// On error the sets fully decoded before the failure are returned alongside
// it; an index built earlier is never affected. Recovery granularity is the
// whole record, since an undecodable value makes the remaining bytes
// positionally meaningless.
func DecodeExplicitRecord(payload []byte, base int64) ([]*Set, error) {
	cur := codec.NewCursor(payload, base)
	var sets []*Set
	for !cur.AtEnd() {
		set, err := decodeSet(cur)
		if err != nil {
			return sets, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func decodeSet(cur *codec.Cursor) (*Set, error) {
	desc, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	role := descriptorRole(desc)
	if !isSetRole(role) {
		return nil, fmt.Errorf("expected set component at offset %d, got %s", cur.Position()-1, roleName(role))
	}

	set := &Set{}
	if desc&setHasType != 0 {
		if set.Type, err = codec.Ident(cur); err != nil {
			return nil, err
		}
	}
	if desc&setHasName != 0 {
		if set.Name, err = codec.Ident(cur); err != nil {
			return nil, err
		}
	}

	if set.Template, err = decodeTemplate(cur); err != nil {
		return nil, err
	}

	for !cur.AtEnd() {
		next, err := cur.PeekU8()
		if err != nil {
			return nil, err
		}
		if isSetRole(descriptorRole(next)) {
			break
		}
		obj, err := decodeObject(cur, set)
		if err != nil {
			return nil, err
		}
		set.Objects = append(set.Objects, obj)
	}
	return set, nil
}

// decodeTemplate reads attribute specs until the first object descriptor.
// A set with no objects and no template is legal; the template ends at the
// record end too.
func decodeTemplate(cur *codec.Cursor) (Template, error) {
	var t Template
	for !cur.AtEnd() {
		desc, err := cur.PeekU8()
		if err != nil {
			return t, err
		}
		role := descriptorRole(desc)
		if role == roleObject {
			return t, nil
		}
		if role != roleAttribute && role != roleInvariantAttr {
			return t, fmt.Errorf("expected template attribute at offset %d, got %s", cur.Position(), roleName(role))
		}
		_, _ = cur.ReadU8()

		spec := AttributeSpec{Count: 1, Reprc: codec.IDENT, Invariant: role == roleInvariantAttr}
		if desc&attrHasLabel == 0 {
			return t, fmt.Errorf("template attribute at offset %d has no label", cur.Position()-1)
		}
		if spec.Label, err = codec.Ident(cur); err != nil {
			return t, err
		}
		if desc&attrHasCount != 0 {
			n, err := codec.Uvari(cur)
			if err != nil {
				return t, err
			}
			spec.Count = int(n)
		}
		if desc&attrHasReprc != 0 {
			rc, err := cur.ReadU8()
			if err != nil {
				return t, err
			}
			spec.Reprc = codec.ReprCode(rc)
		}
		if desc&attrHasUnits != 0 {
			if spec.Units, err = codec.Ident(cur); err != nil {
				return t, err
			}
		}
		if desc&attrHasValue != 0 {
			vs, _, err := codec.DecodeN(spec.Reprc, spec.Count, cur)
			if err != nil {
				return t, err
			}
			spec.Default = vs
		}

		if spec.Invariant {
			t.Invariants = append(t.Invariants, spec)
		} else {
			t.Attrs = append(t.Attrs, spec)
		}
	}
	return t, nil
}

func decodeObject(cur *codec.Cursor, set *Set) (*Object, error) {
	desc, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	if role := descriptorRole(desc); role != roleObject {
		return nil, fmt.Errorf("expected object component at offset %d, got %s", cur.Position()-1, roleName(role))
	}

	// the name bit is formally required; some writers leave it unset, and
	// the name bytes are always there, so read them regardless
	name, err := codec.Obname(cur)
	if err != nil {
		return nil, err
	}

	obj := &Object{Name: name}
	tmpl := set.Template

	for i := 0; i < tmpl.Len(); i++ {
		spec := tmpl.Attrs[i]
		attr := attributeFromSpec(spec, true)

		if cur.AtEnd() {
			obj.Attributes = append(obj.Attributes, attr)
			continue
		}
		next, err := cur.PeekU8()
		if err != nil {
			return nil, err
		}
		role := descriptorRole(next)
		if role == roleObject || isSetRole(role) {
			// a new component row starts here; the remaining columns stay
			// absent with their template defaults
			obj.Attributes = append(obj.Attributes, attr)
			continue
		}
		if role != roleAttribute && role != roleAbsentAttr {
			return nil, fmt.Errorf("expected object attribute at offset %d, got %s", cur.Position(), roleName(role))
		}
		_, _ = cur.ReadU8()

		if role == roleAbsentAttr {
			obj.Attributes = append(obj.Attributes, attr)
			continue
		}

		attr.Absent = false
		if next&attrHasLabel != 0 {
			// labels are not allowed on object attributes; tolerate and
			// discard, the value bytes follow either way
			if _, err := codec.Ident(cur); err != nil {
				return nil, err
			}
		}
		if next&attrHasCount != 0 {
			n, err := codec.Uvari(cur)
			if err != nil {
				return nil, err
			}
			attr.Count = int(n)
		}
		if next&attrHasReprc != 0 {
			rc, err := cur.ReadU8()
			if err != nil {
				return nil, err
			}
			attr.Reprc = codec.ReprCode(rc)
		}
		if next&attrHasUnits != 0 {
			if attr.Units, err = codec.Ident(cur); err != nil {
				return nil, err
			}
		}
		if next&attrHasValue != 0 {
			vs, _, err := codec.DecodeN(attr.Reprc, attr.Count, cur)
			if err != nil {
				return nil, err
			}
			attr.Values = vs
		}
		obj.Attributes = append(obj.Attributes, attr)
	}

	// more attribute components past the template width is never silently
	// truncated
	if !cur.AtEnd() {
		next, err := cur.PeekU8()
		if err != nil {
			return nil, err
		}
		if role := descriptorRole(next); role == roleAttribute || role == roleAbsentAttr {
			return nil, &TemplateOverflowError{
				SetType:  set.Type,
				Object:   name,
				Template: tmpl.Len(),
				Offset:   cur.Position(),
			}
		}
	}

	for _, inv := range tmpl.Invariants {
		obj.Attributes = append(obj.Attributes, attributeFromSpec(inv, false))
	}
	return obj, nil
}

// attributeFromSpec builds the attribute a template column yields when the
// object provides no override.
func attributeFromSpec(spec AttributeSpec, absent bool) Attribute {
	return Attribute{
		Label:  spec.Label,
		Reprc:  spec.Reprc,
		Units:  spec.Units,
		Count:  spec.Count,
		Values: spec.Default,
		Absent: absent,
	}
}
