/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: registry_test.go
Description: Tests for the generator registry contract and the built-in strategies
*/

package generator_test

import (
	"errors"
	"testing"

	"github.com/kleascm/mockjson/pkg/generator"
	"github.com/kleascm/mockjson/pkg/inference"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/kleascm/mockjson/pkg/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSynth struct{ logicalType string }

func (f fixedSynth) LogicalType() string                { return f.logicalType }
func (f fixedSynth) Synthesize(source any) (any, error) { return map[string]any{"fixed": true}, nil }

func fixedConstructor(b generator.Binding) (synth.Synthesizer, error) {
	return fixedSynth{logicalType: b.LogicalType}, nil
}

func options() synth.Options {
	opts := synth.DefaultOptions()
	opts.Seed = 1
	return opts
}

// TestRegistryContract tests duplicate registration and unknown type lookups
func TestRegistryContract(t *testing.T) {
	r := generator.NewRegistry(options())

	require.NoError(t, r.Register("T", fixedConstructor))
	err := r.Register("T", fixedConstructor)
	assert.ErrorIs(t, err, mockerr.ErrDuplicateRegistration)

	require.NoError(t, r.Register("T", generator.SchemaConstructor, generator.WithOverride()))

	_, err = r.Create("missing", nil, nil, nil)
	require.ErrorIs(t, err, mockerr.ErrUnknownType)
	var typed *mockerr.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, "T", typed.Details["available"])

	assert.ErrorIs(t, r.Register("", fixedConstructor), mockerr.ErrInvalidRequest)
	assert.ErrorIs(t, r.Register("U", nil), mockerr.ErrInvalidRequest)
}

// TestRegistryLifecycle tests listing, info and removal
func TestRegistryLifecycle(t *testing.T) {
	r := generator.NewRegistry(options())
	require.NoError(t, r.Register("b", fixedConstructor, generator.WithDescription("fixed output")))
	require.NoError(t, r.RegisterStrategy("a", generator.StrategySchema))

	assert.Equal(t, []string{"a", "b"}, r.Types())
	assert.True(t, r.IsRegistered("a"))

	info, err := r.Info("a")
	require.NoError(t, err)
	assert.Equal(t, generator.StrategySchema, info.Strategy)
	assert.NotEmpty(t, info.Description)

	info, err = r.Info("b")
	require.NoError(t, err)
	assert.Equal(t, "custom", info.Strategy)
	assert.Equal(t, "fixed output", info.Description)

	assert.True(t, r.Unregister("b"))
	assert.False(t, r.Unregister("b"))
	assert.False(t, r.IsRegistered("b"))
	_, err = r.Info("b")
	assert.ErrorIs(t, err, mockerr.ErrUnknownType)
}

// TestCreateBindsAnalysis tests that created synthesizers carry the supplied analysis
func TestCreateBindsAnalysis(t *testing.T) {
	result, err := inference.NewJSONEngine(inference.DefaultOptions()).InferBytes([][]byte{
		[]byte(`{"status":"OK","id":42}`),
	})
	require.NoError(t, err)

	r := generator.NewRegistry(options())
	for _, name := range generator.StrategyNames() {
		require.NoError(t, r.RegisterStrategy(name, name))
	}

	pol := policy.New("status")
	for _, name := range []string{generator.StrategySchema, generator.StrategyPolicy, generator.StrategyTrip} {
		s, err := r.Create(name, result.Shape, result.Profiles, pol)
		require.NoError(t, err)
		assert.Equal(t, name, s.LogicalType())

		record, err := s.Synthesize(map[string]any{"status": "OK", "id": 42})
		require.NoError(t, err)
		assert.Equal(t, "OK", record.(map[string]any)["status"])
	}

	require.NoError(t, pol.Add("id"), "caller policy stays independent of bound copies")

	_, err = r.Create(generator.StrategySchema, nil, nil, nil)
	assert.ErrorIs(t, err, mockerr.ErrConfiguration)
}

// TestStrategyLookup tests the strategy catalogue
func TestStrategyLookup(t *testing.T) {
	assert.Equal(t, []string{"policy", "schema", "trip"}, generator.StrategyNames())
	_, _, err := generator.Strategy("xml")
	assert.ErrorIs(t, err, mockerr.ErrConfiguration)

	r := generator.NewRegistry(options())
	assert.ErrorIs(t, r.RegisterStrategy("T", "xml"), mockerr.ErrConfiguration)
}
