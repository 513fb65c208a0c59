/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: export.go
Description: Plain nested map export of descriptors for reports
*/

package shape

// ToMap renders the descriptor as nested map[string]any / []any values that
// encoding/json serializes without loss
func (d *Descriptor) ToMap() map[string]any {
	if d == nil {
		return nil
	}
	m := map[string]any{"kind": string(d.Kind)}
	if d.Nullable {
		m["nullable"] = true
	}

	switch d.Kind {
	case KindObject:
		fields := make(map[string]any, len(d.Fields))
		required := make([]any, 0)
		optional := make([]any, 0)
		for _, name := range d.FieldNames() {
			f := d.Fields[name]
			fields[name] = map[string]any{
				"optional": f.Optional,
				"shape":    f.Shape.ToMap(),
			}
			if f.Optional {
				optional = append(optional, name)
			} else {
				required = append(required, name)
			}
		}
		m["fields"] = fields
		m["required"] = required
		m["optional"] = optional
	case KindArray:
		if d.Elem != nil {
			m["elem"] = d.Elem.ToMap()
		}
		if d.Heterogeneous {
			m["heterogeneous"] = true
		}
	case KindAnyOf:
		variants := make([]any, len(d.Variants))
		for i, v := range d.Variants {
			variants[i] = v.ToMap()
		}
		m["variants"] = variants
	}
	return m
}
