/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Analysis reports for external export. A report lists every analyzed logical type
with its merged shape, field profiles and corpus fingerprint. ToMap yields plain nested maps
and slices that encode to JSON or YAML without loss. WriteText renders the same data for people.
*/

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kleascm/mockjson/pkg/cache"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// Field is one addressable path of a type
type Field struct {
	Path     string   `json:"path"`
	Kinds    []string `json:"kinds"`
	Optional bool     `json:"optional,omitempty"`
	Count    int      `json:"count"`
	Samples  []any    `json:"samples,omitempty"`
}

// TypeReport summarizes one logical type
type TypeReport struct {
	LogicalType string         `json:"logical_type"`
	EntryID     string         `json:"entry_id"`
	Documents   int            `json:"documents"`
	Fingerprint string         `json:"fingerprint"`
	BuiltAt     time.Time      `json:"built_at"`
	Fields      []Field        `json:"fields"`
	Shape       map[string]any `json:"shape"`
	Profiles    map[string]any `json:"profiles"`
}

// Report is the exportable analysis of a corpus
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Types       []TypeReport `json:"types"`
}

// Build assembles a report from cache entries, ordered by logical type
func Build(entries []*cache.Entry, now time.Time) *Report {
	r := &Report{GeneratedAt: now, Types: make([]TypeReport, 0, len(entries))}
	for _, e := range entries {
		if e == nil {
			continue
		}
		r.Types = append(r.Types, TypeReport{
			LogicalType: e.LogicalType,
			EntryID:     e.ID.String(),
			Documents:   len(e.Documents),
			Fingerprint: e.Fingerprint,
			BuiltAt:     e.BuiltAt,
			Fields:      fields(e),
			Shape:       e.Shape.ToMap(),
			Profiles:    e.Profiles.Summary(),
		})
	}
	sort.Slice(r.Types, func(i, j int) bool {
		return r.Types[i].LogicalType < r.Types[j].LogicalType
	})
	return r
}

func fields(e *cache.Entry) []Field {
	optional := make(map[string]bool)
	e.Shape.Walk(func(path string, node *shape.Descriptor) {
		if node.Kind != shape.KindObject {
			return
		}
		for _, name := range node.FieldNames() {
			if node.Fields[name].Optional {
				optional[shape.JoinPath(path, name)] = true
			}
		}
	})

	out := make([]Field, 0)
	for _, path := range e.Shape.Paths() {
		if path == "" {
			continue
		}
		f := Field{Path: path, Optional: optional[path]}
		if node := e.Shape.Lookup(path); node != nil {
			for _, k := range node.Kinds() {
				f.Kinds = append(f.Kinds, string(k))
			}
		}
		if p := e.Profiles.Get(path); p != nil {
			f.Count = p.Count
			if !p.Sensitive && len(p.Values) > 0 {
				f.Samples = append([]any(nil), p.Values...)
			}
		}
		out = append(out, f)
	}
	return out
}

// Type returns the report of one logical type
func (r *Report) Type(logicalType string) (*TypeReport, bool) {
	for i := range r.Types {
		if r.Types[i].LogicalType == logicalType {
			return &r.Types[i], true
		}
	}
	return nil, false
}

// FieldPresence maps each top-level field name to the types that carry it
func (r *Report) FieldPresence() map[string][]string {
	out := make(map[string][]string)
	for _, t := range r.Types {
		for _, f := range t.Fields {
			if strings.ContainsAny(f.Path, ".[") {
				continue
			}
			out[f.Path] = append(out[f.Path], t.LogicalType)
		}
	}
	return out
}

// ToMap renders the report as plain nested values
func (r *Report) ToMap() map[string]any {
	types := make([]any, len(r.Types))
	for i, t := range r.Types {
		fieldList := make([]any, len(t.Fields))
		for j, f := range t.Fields {
			kinds := make([]any, len(f.Kinds))
			for k, kind := range f.Kinds {
				kinds[k] = kind
			}
			m := map[string]any{
				"path":     f.Path,
				"kinds":    kinds,
				"optional": f.Optional,
				"count":    f.Count,
			}
			if len(f.Samples) > 0 {
				m["samples"] = plainSlice(f.Samples)
			}
			fieldList[j] = m
		}
		types[i] = map[string]any{
			"logical_type": t.LogicalType,
			"entry_id":     t.EntryID,
			"documents":    t.Documents,
			"fingerprint":  t.Fingerprint,
			"built_at":     t.BuiltAt.UTC().Format(time.RFC3339),
			"fields":       fieldList,
			"shape":        t.Shape,
			"profiles":     t.Profiles,
		}
	}
	return map[string]any{
		"generated_at": r.GeneratedAt.UTC().Format(time.RFC3339),
		"types":        types,
	}
}

// WriteText renders the report for a terminal, showing up to samples values per field
func WriteText(w io.Writer, r *Report, samples int) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "EXAMPLE CORPUS ANALYSIS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "\nFound %d logical types:\n", len(r.Types))
	for i, t := range r.Types {
		fmt.Fprintf(&b, "  %d. %s (%d documents)\n", i+1, t.LogicalType, t.Documents)
	}

	for _, t := range r.Types {
		fmt.Fprintf(&b, "\n%s\n%s\n", strings.ToUpper(t.LogicalType), strings.Repeat("-", 40))
		fmt.Fprintf(&b, "Fingerprint: %s\n", t.Fingerprint)
		fmt.Fprintf(&b, "Total fields: %d\n", len(t.Fields))

		groups := make(map[string][]Field)
		for _, f := range t.Fields {
			key := strings.Join(f.Kinds, ", ")
			groups[key] = append(groups[key], f)
		}
		keys := make([]string, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s:\n", k)
			for _, f := range groups[k] {
				line := "    - " + f.Path
				if f.Optional {
					line += " (optional)"
				}
				if n := len(f.Samples); n > 0 && samples > 0 {
					shown := f.Samples
					if n > samples {
						shown = shown[:samples]
					}
					parts := make([]string, len(shown))
					for i, v := range shown {
						parts[i] = fmt.Sprint(v)
					}
					line += ": " + strings.Join(parts, ", ")
					if n > samples {
						line += fmt.Sprintf(" (+%d more)", n-samples)
					}
				}
				fmt.Fprintln(&b, line)
			}
		}
	}

	presence := r.FieldPresence()
	if len(r.Types) > 1 && len(presence) > 0 {
		fmt.Fprintf(&b, "\n%s\nFIELD PRESENCE\n%s\n", rule, rule)
		names := make([]string, 0, len(presence))
		for name := range presence {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(presence[name], ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plainSlice(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = profile.PlainValue(v)
	}
	return out
}
