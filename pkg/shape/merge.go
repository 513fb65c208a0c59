/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: merge.go
Description: Permissive merging of shape descriptors. Both operands are decomposed into a
per-kind variant set, unioned kind by kind, and recomposed into canonical form, which makes
Merge associative, commutative and idempotent.
*/

package shape

import "sort"

// Merge combines two descriptors of the same logical type into one.
// A nil operand is the identity. Inputs are never modified.
func Merge(a, b *Descriptor) *Descriptor {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}

	variants, nullable := decompose(a)
	other, otherNullable := decompose(b)
	for kind, d := range other {
		if cur, ok := variants[kind]; ok {
			variants[kind] = mergeSameKind(cur, d)
		} else {
			variants[kind] = d
		}
	}

	return compose(variants, nullable || otherNullable)
}

// MergeAll folds a sequence of descriptors; an empty sequence yields nil
func MergeAll(descriptors ...*Descriptor) *Descriptor {
	var merged *Descriptor
	for _, d := range descriptors {
		merged = Merge(merged, d)
	}
	return merged
}

// decompose splits a descriptor into non-nullable single-kind clones
func decompose(d *Descriptor) (map[Kind]*Descriptor, bool) {
	variants := make(map[Kind]*Descriptor)
	switch d.Kind {
	case KindNull:
		return variants, true
	case KindAnyOf:
		for _, v := range d.Variants {
			c := v.Clone()
			c.Nullable = false
			variants[c.Kind] = c
		}
	default:
		c := d.Clone()
		c.Nullable = false
		variants[c.Kind] = c
	}
	return variants, d.Nullable
}

// compose rebuilds the canonical descriptor from a variant set
func compose(variants map[Kind]*Descriptor, nullable bool) *Descriptor {
	// Integral floats decode as integers, so a float variant absorbs integer
	if _, ok := variants[KindFloat]; ok {
		delete(variants, KindInteger)
	}
	switch len(variants) {
	case 0:
		return Null()
	case 1:
		for _, v := range variants {
			v.Nullable = nullable
			return v
		}
	}

	list := make([]*Descriptor, 0, len(variants))
	for _, v := range variants {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		return kindOrder[list[i].Kind] < kindOrder[list[j].Kind]
	})
	return &Descriptor{Kind: KindAnyOf, Nullable: nullable, Variants: list}
}

// mergeSameKind merges two non-nullable descriptors that share a kind
func mergeSameKind(a, b *Descriptor) *Descriptor {
	switch a.Kind {
	case KindObject:
		fields := make(map[string]*Field, len(a.Fields)+len(b.Fields))
		for name, fa := range a.Fields {
			if fb, ok := b.Fields[name]; ok {
				fields[name] = &Field{
					Shape:    Merge(fa.Shape, fb.Shape),
					Optional: fa.Optional || fb.Optional,
				}
				continue
			}
			fields[name] = &Field{Shape: fa.Shape.Clone(), Optional: true}
		}
		for name, fb := range b.Fields {
			if _, ok := a.Fields[name]; !ok {
				fields[name] = &Field{Shape: fb.Shape.Clone(), Optional: true}
			}
		}
		return &Descriptor{Kind: KindObject, Fields: fields}

	case KindArray:
		return &Descriptor{
			Kind:          KindArray,
			Elem:          Merge(a.Elem, b.Elem),
			Heterogeneous: a.Heterogeneous || b.Heterogeneous,
		}

	default:
		return &Descriptor{Kind: a.Kind}
	}
}
