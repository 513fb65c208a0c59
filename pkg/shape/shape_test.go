/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: shape_test.go
Description: Tests for structure analysis, merging, path addressing, validation and export.
Merge laws are checked over every ordering of a small heterogeneous corpus.
*/

package shape_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func analyze(t *testing.T, s string) *shape.Descriptor {
	t.Helper()
	d, err := shape.Analyze(decode(t, s))
	require.NoError(t, err)
	return d
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := make([]int, 0, n)
			q = append(q, p[:i]...)
			q = append(q, n-1)
			q = append(q, p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

// TestAnalyzeScalars tests runtime kind tagging
func TestAnalyzeScalars(t *testing.T) {
	cases := map[string]shape.Kind{
		`1`:      shape.KindInteger,
		`-7`:     shape.KindInteger,
		`1.5`:    shape.KindFloat,
		`"x"`:    shape.KindString,
		`true`:   shape.KindBool,
		`null`:   shape.KindNull,
		`{}`:     shape.KindObject,
		`[]`:     shape.KindArray,
		`2.0`:    shape.KindInteger,
		`3.25e1`: shape.KindFloat,
	}
	for input, want := range cases {
		d := analyze(t, input)
		assert.Equal(t, want, d.Kind, input)
	}

	d, err := shape.Analyze(float64(4))
	require.NoError(t, err)
	assert.Equal(t, shape.KindInteger, d.Kind)

	d, err = shape.Analyze(4.5)
	require.NoError(t, err)
	assert.Equal(t, shape.KindFloat, d.Kind)

	assert.True(t, analyze(t, `null`).Nullable)
}

// TestAnalyzeObject tests nested object descriptors
func TestAnalyzeObject(t *testing.T) {
	d := analyze(t, `{"id": 1, "holder": {"name": "a", "age": 30}, "tags": ["x", "y"]}`)
	require.Equal(t, shape.KindObject, d.Kind)
	assert.Equal(t, []string{"holder", "id", "tags"}, d.FieldNames())

	holder := d.Fields["holder"].Shape
	assert.Equal(t, shape.KindObject, holder.Kind)
	assert.Equal(t, shape.KindString, holder.Fields["name"].Shape.Kind)
	assert.Equal(t, shape.KindInteger, holder.Fields["age"].Shape.Kind)

	tags := d.Fields["tags"].Shape
	assert.Equal(t, shape.KindArray, tags.Kind)
	assert.False(t, tags.Heterogeneous)
	assert.Equal(t, shape.KindString, tags.Elem.Kind)

	for _, f := range d.Fields {
		assert.False(t, f.Optional)
	}
}

// TestAnalyzeArrays tests the homogeneous and heterogeneous array rules
func TestAnalyzeArrays(t *testing.T) {
	empty := analyze(t, `[]`)
	assert.Nil(t, empty.Elem)

	mixed := analyze(t, `[1, "a", null]`)
	assert.True(t, mixed.Heterogeneous)
	require.Equal(t, shape.KindAnyOf, mixed.Elem.Kind)
	assert.True(t, mixed.Elem.Nullable)
	assert.Equal(t, []shape.Kind{shape.KindNull, shape.KindInteger, shape.KindString}, mixed.Elem.Kinds())

	objects := analyze(t, `[{"a": 1}, {"a": 2, "b": "x"}]`)
	assert.True(t, objects.Heterogeneous)
	require.Equal(t, shape.KindObject, objects.Elem.Kind)
	assert.False(t, objects.Elem.Fields["a"].Optional)
	assert.True(t, objects.Elem.Fields["b"].Optional)
}

// TestAnalyzeRejectsInvalidValues tests analysis error conditions
func TestAnalyzeRejectsInvalidValues(t *testing.T) {
	_, err := shape.Analyze(struct{}{})
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)

	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	_, err = shape.Analyze(cyclic)
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)

	loop := []any{nil}
	loop[0] = loop
	_, err = shape.Analyze(loop)
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)

	var deep any = "leaf"
	for i := 0; i < 10; i++ {
		deep = []any{deep}
	}
	analyzer := &shape.Analyzer{MaxDepth: 5}
	_, err = analyzer.Analyze(deep)
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)

	// Shared but acyclic subtrees are fine
	shared := map[string]any{"k": "v"}
	_, err = shape.Analyze(map[string]any{"a": shared, "b": shared})
	assert.NoError(t, err)
}

// TestMergeScenario tests the two-document optional field scenario
func TestMergeScenario(t *testing.T) {
	merged := shape.Merge(analyze(t, `{"a":1,"b":"x"}`), analyze(t, `{"a":2,"c":true}`))

	require.Equal(t, shape.KindObject, merged.Kind)
	assert.Equal(t, []string{"a", "b", "c"}, merged.FieldNames())
	assert.False(t, merged.Fields["a"].Optional)
	assert.Equal(t, shape.KindInteger, merged.Fields["a"].Shape.Kind)
	assert.True(t, merged.Fields["b"].Optional)
	assert.True(t, merged.Fields["c"].Optional)
}

// TestMergeConflicts tests anyOf and nullable reconciliation
func TestMergeConflicts(t *testing.T) {
	m := shape.Merge(analyze(t, `{"v": 1}`), analyze(t, `{"v": "one"}`))
	v := m.Fields["v"].Shape
	require.Equal(t, shape.KindAnyOf, v.Kind)
	assert.Equal(t, []shape.Kind{shape.KindInteger, shape.KindString}, v.Kinds())

	num := shape.Merge(analyze(t, `{"v": 1}`), analyze(t, `{"v": 1.5}`))
	assert.Equal(t, shape.KindFloat, num.Fields["v"].Shape.Kind)

	wide := shape.MergeAll(analyze(t, `{"v": 1}`), analyze(t, `{"v": "x"}`), analyze(t, `{"v": 2.5}`))
	assert.Equal(t, []shape.Kind{shape.KindFloat, shape.KindString}, wide.Fields["v"].Shape.Kinds())
	assert.True(t, shape.Equal(wide, shape.MergeAll(analyze(t, `{"v": 2.5}`), analyze(t, `{"v": "x"}`), analyze(t, `{"v": 1}`))))

	n := shape.Merge(analyze(t, `{"v": null}`), analyze(t, `{"v": "one"}`))
	assert.Equal(t, shape.KindString, n.Fields["v"].Shape.Kind)
	assert.True(t, n.Fields["v"].Shape.Nullable)

	arr := shape.Merge(analyze(t, `[]`), analyze(t, `[1]`))
	require.NotNil(t, arr.Elem)
	assert.Equal(t, shape.KindInteger, arr.Elem.Kind)

	inputA := analyze(t, `{"x": {"y": 1}}`)
	before := inputA.Clone()
	shape.Merge(inputA, analyze(t, `{"x": {"z": 2}}`))
	assert.True(t, shape.Equal(before, inputA), "merge must not modify its inputs")
}

// TestMergeLaws tests order independence and idempotence over all orderings
func TestMergeLaws(t *testing.T) {
	docs := []string{
		`{"id": 1, "status": "OK", "items": [{"amount": 10}]}`,
		`{"id": "A-2", "items": [], "extra": null}`,
		`{"id": 3, "status": null, "items": [{"amount": 1.5, "note": "n"}, {"amount": 2}]}`,
		`{"id": 4.5, "items": [2.25, 7]}`,
		`{"status": "ERR", "items": [1, "x"], "extra": {"deep": [true]}}`,
		`[1, 2]`,
	}
	descs := make([]*shape.Descriptor, len(docs))
	for i, s := range docs {
		descs[i] = analyze(t, s)
	}

	reference := shape.MergeAll(descs...)
	for _, order := range permutations(len(descs)) {
		ordered := make([]*shape.Descriptor, len(order))
		for i, idx := range order {
			ordered[i] = descs[idx]
		}
		assert.True(t, shape.Equal(reference, shape.MergeAll(ordered...)), "order %v", order)
	}

	for _, a := range descs {
		assert.True(t, shape.Equal(a, shape.Merge(a, a)), "idempotence")
		for _, b := range descs {
			assert.True(t, shape.Equal(shape.Merge(a, b), shape.Merge(b, a)), "commutativity")
			for _, c := range descs {
				left := shape.Merge(shape.Merge(a, b), c)
				right := shape.Merge(a, shape.Merge(b, c))
				assert.True(t, shape.Equal(left, right), "associativity")
			}
		}
	}

	assert.True(t, shape.Equal(reference, shape.Merge(reference, reference)))
	assert.Nil(t, shape.MergeAll())
}

// TestPathsAndLookup tests dotted path addressing
func TestPathsAndLookup(t *testing.T) {
	d := analyze(t, `{"policy": {"items": [{"amount": 1}], "no": "P1"}, "ok": true}`)
	assert.Equal(t, []string{
		"",
		"ok",
		"policy",
		"policy.items",
		"policy.items[]",
		"policy.items[].amount",
		"policy.no",
	}, d.Paths())

	amount := d.Lookup("policy.items[].amount")
	require.NotNil(t, amount)
	assert.Equal(t, shape.KindInteger, amount.Kind)
	assert.Nil(t, d.Lookup("policy.missing"))

	assert.Equal(t, "amount", shape.FieldName("policy.items[].amount"))
	assert.Equal(t, "items", shape.FieldName("policy.items[]"))
	assert.Equal(t, "ok", shape.FieldName("ok"))
	assert.Equal(t, "", shape.FieldName(""))
}

// TestValidate tests conformance reporting
func TestValidate(t *testing.T) {
	d := shape.Merge(analyze(t, `{"a":1,"b":"x","list":[1.5]}`), analyze(t, `{"a":2,"c":true,"list":[]}`))

	assert.Empty(t, shape.Validate(d, decode(t, `{"a": 5, "list": [2.5, 3]}`)))
	assert.True(t, shape.Conforms(d, decode(t, `{"a": 5, "b": "y", "c": false, "list": []}`)))

	problems := shape.Validate(d, decode(t, `{"b": 1, "z": 0, "list": ["s"]}`))
	assert.Len(t, problems, 4)
	assert.Contains(t, problems, `$: missing required field "a"`)
	assert.Contains(t, problems, `$: unexpected field "z"`)
	assert.Contains(t, problems, "b: expected string, got integer")
	assert.Contains(t, problems, "list[]: expected float, got string")

	nullable := shape.Merge(analyze(t, `{"v": null}`), analyze(t, `{"v": 1}`))
	assert.Empty(t, shape.Validate(nullable, decode(t, `{"v": null}`)))
	assert.NotEmpty(t, shape.Validate(analyze(t, `{"v": 1}`), decode(t, `{"v": null}`)))
}

// TestToMapIsPlainJSON tests the report export form
func TestToMapIsPlainJSON(t *testing.T) {
	d := shape.Merge(analyze(t, `{"a":1,"b":[1,"x"]}`), analyze(t, `{"a":null}`))
	m := d.ToMap()

	assert.Equal(t, "object", m["kind"])
	assert.Equal(t, []any{"a"}, m["required"])
	assert.Equal(t, []any{"b"}, m["optional"])

	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal(encoded, &roundTrip))
	again, err := json.Marshal(roundTrip)
	require.NoError(t, err)
	assert.JSONEq(t, string(encoded), string(again))
}
