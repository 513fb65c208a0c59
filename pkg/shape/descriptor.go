/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: descriptor.go
Description: Canonical shape descriptors for JSON values. A descriptor is a strictly acyclic
tagged tree: scalars carry a kind, objects a field set with optional markers, arrays an element
shape, and conflicting observations collapse into an anyOf node with one variant per kind.
*/

package shape

import (
	"sort"
)

// Kind tags a descriptor node
type Kind string

const (
	KindNull    Kind = "null"
	KindBool    Kind = "boolean"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindString  Kind = "string"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindAnyOf   Kind = "anyOf"
)

// kindOrder fixes the canonical order of anyOf variants
var kindOrder = map[Kind]int{
	KindNull:    0,
	KindBool:    1,
	KindInteger: 2,
	KindFloat:   3,
	KindString:  4,
	KindObject:  5,
	KindArray:   6,
	KindAnyOf:   7,
}

// IsScalar reports whether the kind is a leaf value kind (null excluded)
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindInteger, KindFloat, KindString:
		return true
	}
	return false
}

// Known reports whether the kind is part of the descriptor vocabulary
func (k Kind) Known() bool {
	_, ok := kindOrder[k]
	return ok
}

// Descriptor is the structural description of a JSON value
type Descriptor struct {
	Kind          Kind              `json:"kind"`
	Nullable      bool              `json:"nullable,omitempty"`      // Also observed as null
	Fields        map[string]*Field `json:"fields,omitempty"`        // Object fields
	Elem          *Descriptor       `json:"elem,omitempty"`          // Array element, nil if only empty arrays were seen
	Heterogeneous bool              `json:"heterogeneous,omitempty"` // Array elements disagreed in shape
	Variants      []*Descriptor     `json:"variants,omitempty"`      // anyOf variants, one per kind
}

// Field is one member of an object descriptor
type Field struct {
	Shape    *Descriptor `json:"shape"`
	Optional bool        `json:"optional,omitempty"` // Absent in at least one observation
}

// Scalar creates a leaf descriptor
func Scalar(kind Kind) *Descriptor {
	return &Descriptor{Kind: kind}
}

// Null creates the descriptor of a value only ever seen as null
func Null() *Descriptor {
	return &Descriptor{Kind: KindNull, Nullable: true}
}

// Object creates an object descriptor from its fields
func Object(fields map[string]*Field) *Descriptor {
	if fields == nil {
		fields = make(map[string]*Field)
	}
	return &Descriptor{Kind: KindObject, Fields: fields}
}

// Array creates an array descriptor; elem may be nil
func Array(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindArray, Elem: elem}
}

// Required wraps a descriptor as a required object field
func Required(d *Descriptor) *Field {
	return &Field{Shape: d}
}

// Optional wraps a descriptor as an optional object field
func Optional(d *Descriptor) *Field {
	return &Field{Shape: d, Optional: true}
}

// FieldNames returns the object's field names in sorted order
func (d *Descriptor) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := &Descriptor{
		Kind:          d.Kind,
		Nullable:      d.Nullable,
		Heterogeneous: d.Heterogeneous,
		Elem:          d.Elem.Clone(),
	}
	if d.Fields != nil {
		c.Fields = make(map[string]*Field, len(d.Fields))
		for name, f := range d.Fields {
			c.Fields[name] = &Field{Shape: f.Shape.Clone(), Optional: f.Optional}
		}
	}
	if d.Variants != nil {
		c.Variants = make([]*Descriptor, len(d.Variants))
		for i, v := range d.Variants {
			c.Variants[i] = v.Clone()
		}
	}
	return c
}

// Equal reports whether two descriptors describe the same shape
func Equal(a, b *Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Nullable != b.Nullable || a.Heterogeneous != b.Heterogeneous {
		return false
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for name, fa := range a.Fields {
		fb, ok := b.Fields[name]
		if !ok || fa.Optional != fb.Optional || !Equal(fa.Shape, fb.Shape) {
			return false
		}
	}
	if !Equal(a.Elem, b.Elem) {
		return false
	}
	if len(a.Variants) != len(b.Variants) {
		return false
	}
	for i := range a.Variants {
		if !Equal(a.Variants[i], b.Variants[i]) {
			return false
		}
	}
	return true
}

// Kinds lists the concrete kinds this node can take, null included when nullable
func (d *Descriptor) Kinds() []Kind {
	var kinds []Kind
	if d.Nullable || d.Kind == KindNull {
		kinds = append(kinds, KindNull)
	}
	switch d.Kind {
	case KindNull:
	case KindAnyOf:
		for _, v := range d.Variants {
			kinds = append(kinds, v.Kind)
		}
	default:
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

// Variant returns the variant of the given kind, or nil
func (d *Descriptor) Variant(kind Kind) *Descriptor {
	if d.Kind == KindAnyOf {
		for _, v := range d.Variants {
			if v.Kind == kind {
				return v
			}
		}
		return nil
	}
	if d.Kind == kind {
		return d
	}
	return nil
}
