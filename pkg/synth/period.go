/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: period.go
Description: Coherent start and end dates. Wraps another synthesizer and rewrites every
start/end date pair inside each object so the two dates form a valid period: a yearly
policy that started in the recent past, or a short trip starting soon. Each field keeps
the layout it already had. Preserved fields are left alone in preserve mode.
*/

package synth

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
)

// PeriodKind selects the period rule
type PeriodKind string

const (
	PeriodPolicy PeriodKind = "policy" // Start 1-180 days before the reference, end 364 days later
	PeriodTrip   PeriodKind = "trip"   // Start 1-180 days after the reference, 2-21 days long
)

// PeriodSynthesizer decorates a synthesizer with coherent date periods
type PeriodSynthesizer struct {
	inner     Synthesizer
	kind      PeriodKind
	policy    *policy.Policy
	reference time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPeriodSynthesizer wraps inner
func NewPeriodSynthesizer(inner Synthesizer, kind PeriodKind, pol *policy.Policy, opts Options) (*PeriodSynthesizer, error) {
	switch kind {
	case PeriodPolicy, PeriodTrip:
	default:
		return nil, mockerr.New(mockerr.ErrConfiguration, "period", string(kind)).
			With("reason", "unknown period kind")
	}
	if pol == nil {
		pol = policy.New()
	}
	return &PeriodSynthesizer{
		inner:     inner,
		kind:      kind,
		policy:    pol,
		reference: opts.reference(),
		rng:       rand.New(rand.NewSource(opts.seed() + 1)),
	}, nil
}

// LogicalType returns the wrapped synthesizer's type
func (p *PeriodSynthesizer) LogicalType() string {
	return p.inner.LogicalType()
}

// Inner returns the wrapped synthesizer
func (p *PeriodSynthesizer) Inner() Synthesizer {
	return p.inner
}

// Synthesize produces a record and aligns its date pairs
func (p *PeriodSynthesizer) Synthesize(source any) (any, error) {
	record, err := p.inner.Synthesize(source)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rewrite(record, source != nil)
	return record, nil
}

// Period returns a start and end date under the configured rule
func (p *PeriodSynthesizer) Period() (time.Time, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period()
}

func (p *PeriodSynthesizer) period() (time.Time, time.Time) {
	day := time.Date(p.reference.Year(), p.reference.Month(), p.reference.Day(), 0, 0, 0, 0, p.reference.Location())
	offset := 1 + p.rng.Intn(180)
	if p.kind == PeriodTrip {
		start := day.AddDate(0, 0, offset)
		return start, start.AddDate(0, 0, 2+p.rng.Intn(20))
	}
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 364)
}

func (p *PeriodSynthesizer) rewrite(v any, preserving bool) {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, startKey := range keys {
			endKey, ok := partnerKey(startKey)
			if !ok {
				continue
			}
			if preserving && (p.policy.Has(startKey) || p.policy.Has(endKey)) {
				continue
			}
			startValue, ok1 := x[startKey].(string)
			endValue, ok2 := x[endKey].(string)
			if !ok1 || !ok2 {
				continue
			}
			startLayout, ok1 := DetectLayout(startValue)
			endLayout, ok2 := DetectLayout(endValue)
			if !ok1 || !ok2 {
				continue
			}
			start, end := p.period()
			x[startKey] = start.Format(startLayout)
			x[endKey] = end.Format(endLayout)
		}
		for _, k := range keys {
			// Preserved values were copied from the source and stay as they are
			if preserving && p.policy.Has(k) {
				continue
			}
			p.rewrite(x[k], preserving)
		}
	case []any:
		for _, child := range x {
			p.rewrite(child, preserving)
		}
	}
}

// partnerKey maps a start field name to its end field name
func partnerKey(key string) (string, bool) {
	for _, pair := range [][2]string{{"Start", "End"}, {"start", "end"}, {"START", "END"}} {
		if strings.Contains(key, pair[0]) {
			return strings.Replace(key, pair[0], pair[1], 1), true
		}
	}
	return "", false
}
