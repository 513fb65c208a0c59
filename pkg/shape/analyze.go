/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyze.go
Description: Structure analysis of decoded JSON values. Walks one value and produces its
canonical descriptor. Arrays collapse to their first element when homogeneous and to the
merge of all elements otherwise. Self-referential maps or slices are rejected.
*/

package shape

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/kleascm/mockjson/pkg/mockerr"
)

// DefaultMaxDepth bounds nesting during analysis
const DefaultMaxDepth = 64

// maxExactInteger is the largest magnitude a float64 holds without losing integer precision
const maxExactInteger = 1 << 53

// Analyzer produces descriptors from decoded JSON values
type Analyzer struct {
	MaxDepth int
}

// NewAnalyzer creates an analyzer with the default depth bound
func NewAnalyzer() *Analyzer {
	return &Analyzer{MaxDepth: DefaultMaxDepth}
}

// Analyze describes v using the default analyzer
func Analyze(v any) (*Descriptor, error) {
	return NewAnalyzer().Analyze(v)
}

// Analyze describes one decoded JSON value. Pure: v is never modified.
func (a *Analyzer) Analyze(v any) (*Descriptor, error) {
	maxDepth := a.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	w := &walker{maxDepth: maxDepth, ancestors: make(map[uintptr]struct{})}
	return w.walk(v, "", 0)
}

type walker struct {
	maxDepth  int
	ancestors map[uintptr]struct{}
}

func (w *walker) walk(v any, path string, depth int) (*Descriptor, error) {
	if depth > w.maxDepth {
		return nil, mockerr.New(mockerr.ErrSchemaAnalysis, "analyze", displayPath(path)).
			With("max_depth", w.maxDepth)
	}

	kind, err := KindOfValue(v)
	if err != nil {
		return nil, mockerr.Wrap(mockerr.ErrSchemaAnalysis, "analyze", displayPath(path), err)
	}

	switch kind {
	case KindNull:
		return Null(), nil
	case KindObject:
		return w.walkObject(v, path, depth)
	case KindArray:
		return w.walkArray(v, path, depth)
	default:
		return Scalar(kind), nil
	}
}

func (w *walker) walkObject(v any, path string, depth int) (*Descriptor, error) {
	rv := reflect.ValueOf(v)
	leave, err := w.enter(rv, path)
	if err != nil {
		return nil, err
	}
	defer leave()

	fields := make(map[string]*Field, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		name := iter.Key().String()
		child, err := w.walk(iter.Value().Interface(), JoinPath(path, name), depth+1)
		if err != nil {
			return nil, err
		}
		fields[name] = Required(child)
	}
	return Object(fields), nil
}

func (w *walker) walkArray(v any, path string, depth int) (*Descriptor, error) {
	rv := reflect.ValueOf(v)
	if rv.Len() == 0 {
		return Array(nil), nil
	}
	leave, err := w.enter(rv, path)
	if err != nil {
		return nil, err
	}
	defer leave()

	elemPath := ElemPath(path)
	elems := make([]*Descriptor, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := w.walk(rv.Index(i).Interface(), elemPath, depth+1)
		if err != nil {
			return nil, err
		}
		elems[i] = elem
	}

	homogeneous := true
	for _, elem := range elems[1:] {
		if !Equal(elems[0], elem) {
			homogeneous = false
			break
		}
	}
	if homogeneous {
		return Array(elems[0]), nil
	}

	arr := Array(MergeAll(elems...))
	arr.Heterogeneous = true
	return arr, nil
}

// enter records a container as an ancestor, rejecting cycles
func (w *walker) enter(rv reflect.Value, path string) (func(), error) {
	if rv.Kind() != reflect.Map && rv.Kind() != reflect.Slice {
		return func() {}, nil
	}
	ptr := rv.Pointer()
	if ptr == 0 {
		return func() {}, nil
	}
	if _, seen := w.ancestors[ptr]; seen {
		return nil, mockerr.New(mockerr.ErrSchemaAnalysis, "analyze", displayPath(path)).
			With("reason", "self-referential value")
	}
	w.ancestors[ptr] = struct{}{}
	return func() { delete(w.ancestors, ptr) }, nil
}

// KindOfValue classifies a decoded JSON value
func KindOfValue(v any) (Kind, error) {
	switch x := v.(type) {
	case nil:
		return KindNull, nil
	case bool:
		return KindBool, nil
	case string:
		return KindString, nil
	case json.Number:
		if strings.ContainsAny(x.String(), ".eE") {
			if f, err := x.Float64(); err == nil && isIntegral(f) {
				return KindInteger, nil
			}
			return KindFloat, nil
		}
		return KindInteger, nil
	case float64:
		return floatKind(x)
	case float32:
		return floatKind(float64(x))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInteger, nil
	case map[string]any:
		return KindObject, nil
	case []any:
		return KindArray, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindObject, nil
		}
	case reflect.Slice, reflect.Array:
		return KindArray, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNull, nil
		}
	}
	return "", fmt.Errorf("unsupported value of type %T", v)
}

func floatKind(f float64) (Kind, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite number %v", f)
	}
	if isIntegral(f) {
		return KindInteger, nil
	}
	return KindFloat, nil
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < maxExactInteger
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
