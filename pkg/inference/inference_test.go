/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference_test.go
Description: Tests for the inference engine: format selection, merged shapes with profiles,
empty corpora and malformed samples.
*/

package inference_test

import (
	"testing"

	"github.com/kleascm/mockjson/pkg/inference"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewEngine tests format selection
func TestNewEngine(t *testing.T) {
	engine, err := inference.NewEngine("json", inference.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "json", engine.Format())

	_, err = inference.NewEngine("binary", inference.DefaultOptions())
	assert.ErrorIs(t, err, mockerr.ErrConfiguration)
}

// TestInferBytes tests the merged shape and profiles of a small corpus
func TestInferBytes(t *testing.T) {
	engine := inference.NewJSONEngine(inference.DefaultOptions())
	result, err := engine.InferBytes([][]byte{
		[]byte(`{"a":1,"b":"x"}`),
		[]byte(`{"a":2,"c":true}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, []string{"a", "b", "c"}, result.Shape.FieldNames())
	assert.False(t, result.Shape.Fields["a"].Optional)
	assert.True(t, result.Shape.Fields["b"].Optional)
	assert.True(t, result.Shape.Fields["c"].Optional)

	a := result.Profiles.Get("a")
	require.NotNil(t, a)
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, 1.0, *a.Min)
	assert.Equal(t, 2.0, *a.Max)

	presence, ok := result.Profiles.Presence("", "b")
	require.True(t, ok)
	assert.InDelta(t, 0.5, presence, 1e-9)
}

// TestInferEmptyCorpus tests that no documents yield an empty object
func TestInferEmptyCorpus(t *testing.T) {
	result, err := inference.NewJSONEngine(inference.DefaultOptions()).Infer(nil)
	require.NoError(t, err)
	assert.Equal(t, shape.KindObject, result.Shape.Kind)
	assert.Empty(t, result.Shape.Fields)
	assert.Empty(t, result.Profiles)
	assert.Zero(t, result.Documents)
}

// TestInferErrors tests malformed samples and unsupported values
func TestInferErrors(t *testing.T) {
	engine := inference.NewJSONEngine(inference.DefaultOptions())

	_, err := engine.InferBytes([][]byte{[]byte(`{"a":`)})
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)

	_, err = engine.InferBytes([][]byte{[]byte(`{} {}`)})
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)

	_, err = engine.Infer([]any{map[string]any{"ch": make(chan int)}})
	assert.ErrorIs(t, err, mockerr.ErrSchemaAnalysis)
}
