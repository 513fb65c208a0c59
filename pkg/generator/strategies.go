/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: strategies.go
Description: Built-in synthesis strategies, looked up by name when binding logical types
*/

package generator

import (
	"sort"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/synth"
)

// Strategy names
const (
	StrategySchema = "schema" // Plain shape walk
	StrategyPolicy = "policy" // Shape walk plus yearly policy periods
	StrategyTrip   = "trip"   // Shape walk plus short future trips
)

var strategies = map[string]struct {
	ctor        Constructor
	description string
}{
	StrategySchema: {SchemaConstructor, "Shape driven synthesis from the example corpus"},
	StrategyPolicy: {periodConstructor(synth.PeriodPolicy), "Shape driven synthesis with coherent yearly policy dates"},
	StrategyTrip:   {periodConstructor(synth.PeriodTrip), "Shape driven synthesis with coherent trip dates"},
}

// SchemaConstructor builds a plain shape synthesizer
func SchemaConstructor(b Binding) (synth.Synthesizer, error) {
	return synth.NewShapeSynthesizer(synth.Config{
		LogicalType: b.LogicalType,
		Shape:       b.Shape,
		Profiles:    b.Profiles,
		Policy:      b.Policy,
		Options:     b.Options,
	})
}

func periodConstructor(kind synth.PeriodKind) Constructor {
	return func(b Binding) (synth.Synthesizer, error) {
		inner, err := SchemaConstructor(b)
		if err != nil {
			return nil, err
		}
		return synth.NewPeriodSynthesizer(inner, kind, b.Policy, b.Options)
	}
}

// Strategy returns the constructor and description of a named strategy
func Strategy(name string) (Constructor, string, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, "", mockerr.New(mockerr.ErrConfiguration, "strategy", name).
			With("available", StrategyNames())
	}
	return s.ctor, s.description, nil
}

// StrategyNames lists the built-in strategies
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterStrategy binds a logical type to a named built-in strategy
func (r *Registry) RegisterStrategy(logicalType, strategy string, opts ...RegisterOption) error {
	ctor, description, err := Strategy(strategy)
	if err != nil {
		return err
	}
	opts = append([]RegisterOption{WithStrategy(strategy), WithDescription(description)}, opts...)
	return r.Register(logicalType, ctor, opts...)
}
