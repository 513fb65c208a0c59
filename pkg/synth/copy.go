/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: copy.go
Description: Deep copies of decoded JSON values, and normalization of embedder supplied
sources into the map[string]any / []any forms the synthesizer walks
*/

package synth

import (
	"reflect"

	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// copyValue deep copies v so records never share containers with the corpus
func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = copyValue(child)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, child := range x {
			out[i] = copyValue(child)
		}
		return out
	default:
		return profile.PlainValue(v)
	}
}

// normalize rewrites string-keyed maps and slices of any element type into
// map[string]any and []any. Nesting past shape.DefaultMaxDepth is left as is.
func normalize(v any, depth int) any {
	if depth > shape.DefaultMaxDepth {
		return v
	}
	switch x := v.(type) {
	case nil, bool, string, float64:
		return v
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = normalize(child, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, child := range x {
			out[i] = normalize(child, depth+1)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface(), depth+1)
		}
		return out
	}
	return v
}
