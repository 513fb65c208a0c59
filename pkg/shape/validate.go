/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: validate.go
Description: Conformance checks of decoded values against a descriptor. Reports every place
a value disagrees with the shape instead of stopping at the first problem.
*/

package shape

import (
	"fmt"
	"reflect"
	"sort"
)

// Validate lists every violation of d found in v; an empty result means v conforms
func Validate(d *Descriptor, v any) []string {
	var problems []string
	validate(d, v, "", &problems)
	return problems
}

// Conforms reports whether v matches d
func Conforms(d *Descriptor, v any) bool {
	return len(Validate(d, v)) == 0
}

func validate(d *Descriptor, v any, path string, problems *[]string) {
	report := func(format string, args ...any) {
		*problems = append(*problems, displayPath(path)+": "+fmt.Sprintf(format, args...))
	}

	kind, err := KindOfValue(v)
	if err != nil {
		report("%v", err)
		return
	}

	if kind == KindNull {
		if !d.Nullable && d.Kind != KindNull {
			report("null not allowed for %s", d.Kind)
		}
		return
	}

	switch d.Kind {
	case KindNull:
		report("expected null, got %s", kind)

	case KindAnyOf:
		for _, variant := range d.Variants {
			var scratch []string
			validate(variant, v, path, &scratch)
			if len(scratch) == 0 {
				return
			}
		}
		report("%s matches none of %v", kind, d.Kinds())

	case KindObject:
		if kind != KindObject {
			report("expected object, got %s", kind)
			return
		}
		members := objectMembers(v)
		for _, name := range d.FieldNames() {
			field := d.Fields[name]
			value, ok := members[name]
			if !ok {
				if !field.Optional {
					report("missing required field %q", name)
				}
				continue
			}
			validate(field.Shape, value, JoinPath(path, name), problems)
		}
		extra := make([]string, 0)
		for name := range members {
			if _, ok := d.Fields[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			report("unexpected field %q", name)
		}

	case KindArray:
		if kind != KindArray {
			report("expected array, got %s", kind)
			return
		}
		rv := reflect.ValueOf(v)
		if d.Elem == nil {
			if rv.Len() > 0 {
				report("expected empty array, got %d elements", rv.Len())
			}
			return
		}
		elemPath := ElemPath(path)
		for i := 0; i < rv.Len(); i++ {
			validate(d.Elem, rv.Index(i).Interface(), elemPath, problems)
		}

	case KindFloat:
		// Integral floats decode as integers
		if kind != KindFloat && kind != KindInteger {
			report("expected float, got %s", kind)
		}

	case KindBool, KindInteger, KindString:
		if kind != d.Kind {
			report("expected %s, got %s", d.Kind, kind)
		}

	default:
		report("unknown descriptor kind %q", d.Kind)
	}
}

func objectMembers(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	members := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		members[iter.Key().String()] = iter.Value().Interface()
	}
	return members
}
