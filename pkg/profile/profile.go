/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: profile.go
Description: Per-path value profiles gathered from example documents. Each path records how
often it was observed, how often it was null, a bounded ordered set of distinct scalar values,
numeric ranges and array length bounds. Sensitive field names are counted but keep no values.
*/

package profile

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/kleascm/mockjson/pkg/shape"
)

// DefaultMaxDistinct caps the retained distinct values per path
const DefaultMaxDistinct = 20

// DefaultSensitiveFields never retain observed values
var DefaultSensitiveFields = []string{
	"name",
	"firstName",
	"lastName",
	"id",
	"idNumber",
	"email",
	"phone",
	"address",
}

// FieldProfile summarizes the values seen at one path
type FieldProfile struct {
	Path      string   `json:"path"`
	Values    []any    `json:"values"`            // Distinct scalar values in first-seen order
	Count     int      `json:"count"`             // Observations, nulls included
	NullCount int      `json:"null_count"`        // Observations that were null
	Objects   int      `json:"objects,omitempty"` // Observations that were objects
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinItems  *int     `json:"min_items,omitempty"` // Array length bounds
	MaxItems  *int     `json:"max_items,omitempty"`
	Sensitive bool     `json:"sensitive,omitempty"`

	seen map[string]struct{}
}

func newFieldProfile(path string) *FieldProfile {
	return &FieldProfile{
		Path:   path,
		Values: make([]any, 0),
		seen:   make(map[string]struct{}),
	}
}

// ValuesOfKind returns the retained values classified as kind
func (p *FieldProfile) ValuesOfKind(kind shape.Kind) []any {
	if p == nil {
		return nil
	}
	var out []any
	for _, v := range p.Values {
		k, err := shape.KindOfValue(v)
		if err != nil {
			continue
		}
		if k == kind || (kind == shape.KindFloat && k == shape.KindInteger) {
			out = append(out, v)
		}
	}
	return out
}

// NullRate is the fraction of observations that were null
func (p *FieldProfile) NullRate() (float64, bool) {
	if p == nil || p.Count == 0 {
		return 0, false
	}
	return float64(p.NullCount) / float64(p.Count), true
}

// HasRange reports whether numeric bounds were observed
func (p *FieldProfile) HasRange() bool {
	return p != nil && p.Min != nil && p.Max != nil
}

// HasLengthBounds reports whether array length bounds were observed
func (p *FieldProfile) HasLengthBounds() bool {
	return p != nil && p.MinItems != nil && p.MaxItems != nil
}

func (p *FieldProfile) observeNumber(f float64) {
	if p.Min == nil || f < *p.Min {
		v := f
		p.Min = &v
	}
	if p.Max == nil || f > *p.Max {
		v := f
		p.Max = &v
	}
}

func (p *FieldProfile) observeLength(n int) {
	if p.MinItems == nil || n < *p.MinItems {
		v := n
		p.MinItems = &v
	}
	if p.MaxItems == nil || n > *p.MaxItems {
		v := n
		p.MaxItems = &v
	}
}

func (p *FieldProfile) observeValue(kind shape.Kind, v any, limit int) {
	if p.Sensitive || len(p.Values) >= limit {
		return
	}
	key := string(kind) + ":" + fmt.Sprint(v)
	if _, ok := p.seen[key]; ok {
		return
	}
	p.seen[key] = struct{}{}
	p.Values = append(p.Values, v)
}

// Set maps paths to their profiles
type Set map[string]*FieldProfile

// Get returns the profile at path, or nil
func (s Set) Get(path string) *FieldProfile {
	if s == nil {
		return nil
	}
	return s[path]
}

// Paths lists the profiled paths in sorted order
func (s Set) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Presence is the observed frequency of child among the observations where parent was an object
func (s Set) Presence(parent, child string) (float64, bool) {
	pp, cp := s.Get(parent), s.Get(child)
	if pp == nil || cp == nil || pp.Objects == 0 {
		return 0, false
	}
	freq := float64(cp.Count) / float64(pp.Objects)
	if freq > 1 {
		freq = 1
	}
	return freq, true
}

// NullRate returns the null fraction observed at path
func (s Set) NullRate(path string) (float64, bool) {
	return s.Get(path).NullRate()
}

// CheckPaths reports profile paths that the descriptor does not contain
func CheckPaths(s Set, d *shape.Descriptor) []string {
	known := make(map[string]struct{})
	for _, p := range d.Paths() {
		known[p] = struct{}{}
	}
	var stray []string
	for _, p := range s.Paths() {
		if _, ok := known[p]; !ok {
			stray = append(stray, p)
		}
	}
	return stray
}

// Summary exports the set as plain nested maps
func (s Set) Summary() map[string]any {
	out := make(map[string]any, len(s))
	for path, p := range s {
		entry := map[string]any{
			"count":      p.Count,
			"null_count": p.NullCount,
			"values":     plainValues(p.Values),
		}
		if p.Sensitive {
			entry["sensitive"] = true
		}
		if p.HasRange() {
			entry["min"] = *p.Min
			entry["max"] = *p.Max
		}
		if p.HasLengthBounds() {
			entry["min_items"] = *p.MinItems
			entry["max_items"] = *p.MaxItems
		}
		out[path] = entry
	}
	return out
}

func plainValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = PlainValue(v)
	}
	return out
}

// PlainValue turns json.Number into int64 or float64 so results carry no decoder types
func PlainValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if iv, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return iv
	}
	if fv, err := n.Float64(); err == nil {
		return fv
	}
	return n.String()
}

// Builder accumulates profiles across documents
type Builder struct {
	maxDistinct int
	sensitive   map[string]struct{}
	profiles    Set
	documents   int
}

// NewBuilder creates a builder; maxDistinct <= 0 selects the default cap
func NewBuilder(maxDistinct int, sensitive []string) *Builder {
	if maxDistinct <= 0 {
		maxDistinct = DefaultMaxDistinct
	}
	set := make(map[string]struct{}, len(sensitive))
	for _, name := range sensitive {
		set[name] = struct{}{}
	}
	return &Builder{
		maxDistinct: maxDistinct,
		sensitive:   set,
		profiles:    make(Set),
	}
}

// Observe folds one document into the profiles
func (b *Builder) Observe(doc any) {
	b.documents++
	b.observe("", doc)
}

// Documents is the number of observed documents
func (b *Builder) Documents() int {
	return b.documents
}

// Profiles returns the accumulated set
func (b *Builder) Profiles() Set {
	return b.profiles
}

func (b *Builder) profile(path string) *FieldProfile {
	p, ok := b.profiles[path]
	if !ok {
		p = newFieldProfile(path)
		if _, sensitive := b.sensitive[shape.FieldName(path)]; sensitive && path != "" {
			p.Sensitive = true
		}
		b.profiles[path] = p
	}
	return p
}

func (b *Builder) observe(path string, v any) {
	p := b.profile(path)
	p.Count++

	kind, err := shape.KindOfValue(v)
	if err != nil {
		return
	}

	switch kind {
	case shape.KindNull:
		p.NullCount++

	case shape.KindObject:
		p.Objects++
		rv := reflect.ValueOf(v)
		iter := rv.MapRange()
		for iter.Next() {
			b.observe(shape.JoinPath(path, iter.Key().String()), iter.Value().Interface())
		}

	case shape.KindArray:
		rv := reflect.ValueOf(v)
		p.observeLength(rv.Len())
		elemPath := shape.ElemPath(path)
		for i := 0; i < rv.Len(); i++ {
			b.observe(elemPath, rv.Index(i).Interface())
		}

	case shape.KindInteger, shape.KindFloat:
		if f, ok := ToFloat(v); ok {
			p.observeNumber(f)
		}
		p.observeValue(kind, v, b.maxDistinct)

	default:
		p.observeValue(kind, v, b.maxDistinct)
	}
}

// ToFloat converts any decoded JSON number to float64
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}
