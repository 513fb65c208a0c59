/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: synthesizer.go
Description: Record synthesis over a shape descriptor. Walks the descriptor and produces a
value for every node. Scalars either sample an observed value from the profile or fall back
to name and type heuristics. In preserve mode the record mirrors a source document and
preserved field names are copied from it unchanged.
*/

package synth

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// Synthesizer produces records for one logical type. A nil source synthesizes
// independently; a non-nil source is mirrored in preserve mode.
type Synthesizer interface {
	LogicalType() string
	Synthesize(source any) (any, error)
}

// Options tunes synthesis
type Options struct {
	ProfileSampleProbability float64   `mapstructure:"profile_sample_probability"` // Chance of drawing an observed value
	OptionalInclusion        float64   `mapstructure:"optional_inclusion"`         // Optional field inclusion without observed presence
	NullProbability          float64   `mapstructure:"null_probability"`           // Null chance for nullable nodes without observed rate
	MinArrayItems            int       `mapstructure:"min_array_items"`
	MaxArrayItems            int       `mapstructure:"max_array_items"`
	Seed                     int64     `mapstructure:"seed"`           // Zero seeds from the clock
	ReferenceDate            time.Time `mapstructure:"reference_date"` // Zero uses today
}

// DefaultOptions returns the stock synthesis options
func DefaultOptions() Options {
	return Options{
		ProfileSampleProbability: 0.7,
		OptionalInclusion:        0.5,
		NullProbability:          0.1,
		MinArrayItems:            1,
		MaxArrayItems:            5,
	}
}

// Validate checks option ranges
func (o Options) Validate() error {
	for name, p := range map[string]float64{
		"profile_sample_probability": o.ProfileSampleProbability,
		"optional_inclusion":         o.OptionalInclusion,
		"null_probability":           o.NullProbability,
	} {
		if p < 0 || p > 1 {
			return mockerr.New(mockerr.ErrConfiguration, "synthesis", name).With("value", p)
		}
	}
	if o.MinArrayItems < 0 || o.MaxArrayItems < o.MinArrayItems {
		return mockerr.New(mockerr.ErrConfiguration, "synthesis", "array_items").
			With("min", o.MinArrayItems).
			With("max", o.MaxArrayItems)
	}
	return nil
}

func (o Options) seed() int64 {
	if o.Seed != 0 {
		return o.Seed
	}
	return time.Now().UnixNano()
}

func (o Options) reference() time.Time {
	if o.ReferenceDate.IsZero() {
		return time.Now()
	}
	return o.ReferenceDate
}

// Stats counts synthesis decisions
type Stats struct {
	Records        int64
	ProfileSamples int64 // Scalars drawn from observed values
	Fallbacks      int64 // Scalars produced by heuristics
	Preserved      int64 // Fields copied from the source
}

// Config binds a synthesizer to one logical type's analysis
type Config struct {
	LogicalType string
	Shape       *shape.Descriptor
	Profiles    profile.Set
	Policy      *policy.Policy
	Options     Options
	Fallback    Fallback // Nil selects Heuristics
}

// ShapeSynthesizer generates records from a descriptor and profile set
type ShapeSynthesizer struct {
	logicalType string
	shape       *shape.Descriptor
	profiles    profile.Set
	policy      *policy.Policy
	opts        Options
	fallback    Fallback

	mu    sync.Mutex
	rng   *rand.Rand
	stats Stats
}

// NewShapeSynthesizer creates a synthesizer for cfg
func NewShapeSynthesizer(cfg Config) (*ShapeSynthesizer, error) {
	if cfg.Shape == nil {
		return nil, mockerr.New(mockerr.ErrConfiguration, "synthesizer", cfg.LogicalType).
			With("reason", "missing shape")
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Options.seed()
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = NewHeuristics(seed, cfg.Options.reference())
	}
	pol := cfg.Policy
	if pol == nil {
		pol = policy.New()
	}

	return &ShapeSynthesizer{
		logicalType: cfg.LogicalType,
		shape:       cfg.Shape,
		profiles:    cfg.Profiles,
		policy:      pol,
		opts:        cfg.Options,
		fallback:    fallback,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// LogicalType returns the bound logical type
func (s *ShapeSynthesizer) LogicalType() string {
	return s.logicalType
}

// Policy returns the bound preserve policy
func (s *ShapeSynthesizer) Policy() *policy.Policy {
	return s.policy
}

// Stats returns the decision counters
func (s *ShapeSynthesizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Synthesize produces one record
func (s *ShapeSynthesizer) Synthesize(source any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.node(s.shape, "", "", normalize(source, 0), source != nil)
	if err != nil {
		return nil, err
	}
	s.stats.Records++
	return v, nil
}

// node produces the value at path. hasSource marks an aligned source value in preserve mode.
func (s *ShapeSynthesizer) node(d *shape.Descriptor, path, name string, source any, hasSource bool) (any, error) {
	if hasSource && name != "" && s.policy.Has(name) {
		s.stats.Preserved++
		return copyValue(source), nil
	}

	if hasSource {
		if source == nil {
			return nil, nil
		}
		if !matchesKind(d, source) {
			hasSource = false
			source = nil
		}
	} else if d.Nullable || d.Kind == shape.KindNull {
		rate, ok := s.profiles.NullRate(path)
		if !ok {
			rate = s.opts.NullProbability
		}
		if d.Kind == shape.KindNull || s.rng.Float64() < rate {
			return nil, nil
		}
	}

	switch d.Kind {
	case shape.KindAnyOf:
		return s.anyOf(d, path, name, source, hasSource)
	case shape.KindObject:
		return s.object(d, path, source, hasSource)
	case shape.KindArray:
		return s.array(d, path, source, hasSource)
	case shape.KindBool, shape.KindInteger, shape.KindFloat, shape.KindString:
		return s.scalar(d.Kind, path, name)
	default:
		return nil, mockerr.New(mockerr.ErrSynthesis, "synthesize", displayPath(path)).
			With("kind", string(d.Kind))
	}
}

func (s *ShapeSynthesizer) anyOf(d *shape.Descriptor, path, name string, source any, hasSource bool) (any, error) {
	if len(d.Variants) == 0 {
		return nil, mockerr.New(mockerr.ErrSynthesis, "synthesize", displayPath(path)).
			With("reason", "anyOf without variants")
	}
	if hasSource {
		if variant := variantFor(d, source); variant != nil {
			return s.node(variant, path, name, source, true)
		}
	}
	variant := d.Variants[s.rng.Intn(len(d.Variants))]
	return s.node(variant, path, name, nil, false)
}

func (s *ShapeSynthesizer) object(d *shape.Descriptor, path string, source any, hasSource bool) (any, error) {
	var members map[string]any
	if hasSource {
		members, _ = source.(map[string]any)
	}

	out := make(map[string]any, len(d.Fields))
	for _, name := range d.FieldNames() {
		field := d.Fields[name]
		childPath := shape.JoinPath(path, name)

		if members != nil {
			value, present := members[name]
			if !present && field.Optional {
				continue
			}
			v, err := s.node(field.Shape, childPath, name, value, present)
			if err != nil {
				return nil, err
			}
			out[name] = v
			continue
		}

		if field.Optional {
			inclusion, ok := s.profiles.Presence(path, childPath)
			if !ok {
				inclusion = s.opts.OptionalInclusion
			}
			if s.rng.Float64() >= inclusion {
				continue
			}
		}
		v, err := s.node(field.Shape, childPath, name, nil, false)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}

	// Preserved members the descriptor does not know still mirror the source
	for name, value := range members {
		if _, known := d.Fields[name]; !known && s.policy.Has(name) {
			s.stats.Preserved++
			out[name] = copyValue(value)
		}
	}
	return out, nil
}

func (s *ShapeSynthesizer) array(d *shape.Descriptor, path string, source any, hasSource bool) (any, error) {
	if d.Elem == nil {
		return []any{}, nil
	}
	elemPath := shape.ElemPath(path)

	if hasSource {
		if elems, ok := source.([]any); ok {
			out := make([]any, 0, len(elems))
			for _, elem := range elems {
				v, err := s.node(d.Elem, elemPath, "", elem, true)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		}
	}

	lo, hi := s.opts.MinArrayItems, s.opts.MaxArrayItems
	if p := s.profiles.Get(path); p.HasLengthBounds() {
		lo, hi = *p.MinItems, *p.MaxItems
		if hi > s.opts.MaxArrayItems {
			hi = s.opts.MaxArrayItems
		}
		if lo > hi {
			lo = hi
		}
	}
	n := lo
	if hi > lo {
		n += s.rng.Intn(hi - lo + 1)
	}

	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := s.node(d.Elem, elemPath, "", nil, false)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// scalar applies the two-tier value policy
func (s *ShapeSynthesizer) scalar(kind shape.Kind, path, name string) (any, error) {
	p := s.profiles.Get(path)
	if values := p.ValuesOfKind(kind); len(values) > 0 && s.rng.Float64() < s.opts.ProfileSampleProbability {
		s.stats.ProfileSamples++
		return profile.PlainValue(values[s.rng.Intn(len(values))]), nil
	}

	s.stats.Fallbacks++
	v, err := s.fallback.Value(Request{
		Path:    path,
		Name:    name,
		Kind:    kind,
		Profile: p,
		Rand:    s.rng,
	})
	if err != nil {
		return nil, fmt.Errorf("fallback for %s: %w", displayPath(path), err)
	}
	return v, nil
}

// matchesKind reports whether a source value can be mirrored by d
func matchesKind(d *shape.Descriptor, source any) bool {
	if d.Kind == shape.KindAnyOf {
		return variantFor(d, source) != nil
	}
	kind, err := shape.KindOfValue(source)
	if err != nil {
		return false
	}
	return kind == d.Kind || (d.Kind == shape.KindFloat && kind == shape.KindInteger)
}

func variantFor(d *shape.Descriptor, source any) *shape.Descriptor {
	kind, err := shape.KindOfValue(source)
	if err != nil {
		return nil
	}
	if v := d.Variant(kind); v != nil {
		return v
	}
	if kind == shape.KindInteger {
		return d.Variant(shape.KindFloat)
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
