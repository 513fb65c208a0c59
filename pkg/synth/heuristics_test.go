/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: heuristics_test.go
Description: Tests for fallback heuristics, date layouts and coherent date periods
*/

package synth_test

import (
	"encoding/json"
	"math"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
	"github.com/kleascm/mockjson/pkg/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallback(t *testing.T, h *synth.Heuristics, name string, kind shape.Kind, p *profile.FieldProfile) any {
	t.Helper()
	v, err := h.Value(synth.Request{Path: name, Name: name, Kind: kind, Profile: p, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	return v
}

// TestHeuristicStrings tests name-pattern string generation
func TestHeuristicStrings(t *testing.T) {
	h := synth.NewHeuristics(1, reference)

	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{8}$`), fallback(t, h, "customerId", shape.KindString, nil))
	assert.Regexp(t, regexp.MustCompile(`^POL-\d{6}$`), fallback(t, h, "policyRef", shape.KindString, nil))
	assert.Contains(t, []any{"active", "inactive", "pending", "expired"}, fallback(t, h, "accountStatus", shape.KindString, nil))
	assert.Contains(t, []any{"₪", "$", "€", "£"}, fallback(t, h, "currency", shape.KindString, nil))
	assert.Contains(t, fallback(t, h, "contactEmail", shape.KindString, nil), "@")
	assert.Regexp(t, regexp.MustCompile(`^Mock_widget_\d{4}$`), fallback(t, h, "widget", shape.KindString, nil))
	assert.NotEmpty(t, fallback(t, h, "", shape.KindString, nil))

	date := fallback(t, h, "issueDate", shape.KindString, nil).(string)
	parsed, err := time.Parse(synth.DefaultDateLayout, date)
	require.NoError(t, err)
	assert.WithinDuration(t, reference, parsed, 366*24*time.Hour)

	b := profile.NewBuilder(0, nil)
	b.Observe(map[string]any{"issueDate": "2024-03-01"})
	iso := fallback(t, h, "issueDate", shape.KindString, b.Profiles().Get("issueDate")).(string)
	_, err = time.Parse("2006-01-02", iso)
	assert.NoError(t, err)
}

// TestHeuristicNumbers tests numeric ranges
func TestHeuristicNumbers(t *testing.T) {
	h := synth.NewHeuristics(1, reference)

	for i := 0; i < 20; i++ {
		pct := fallback(t, h, "percentage", shape.KindFloat, nil).(float64)
		assert.GreaterOrEqual(t, pct, 0.0)
		assert.LessOrEqual(t, pct, 100.0)

		agent := fallback(t, h, "agentNumber", shape.KindInteger, nil).(int64)
		assert.GreaterOrEqual(t, agent, int64(1))
	}

	b := profile.NewBuilder(0, nil)
	b.Observe(map[string]any{"premium": 120})
	b.Observe(map[string]any{"premium": 130})
	p := b.Profiles().Get("premium")
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		v, err := h.Value(synth.Request{Name: "premium", Kind: shape.KindInteger, Profile: p, Rand: rng})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v.(int64), int64(120))
		assert.LessOrEqual(t, v.(int64), int64(130))
	}

	_, ok := fallback(t, h, "flag", shape.KindBool, nil).(bool)
	assert.True(t, ok)

	_, err := h.Value(synth.Request{Name: "x", Kind: shape.KindObject})
	assert.ErrorIs(t, err, mockerr.ErrSynthesis)
}

// TestHeuristicExtremeRanges tests that observed bounds near the numeric limits stay in range and finite
func TestHeuristicExtremeRanges(t *testing.T) {
	h := synth.NewHeuristics(1, reference)

	cases := []struct {
		name string
		kind shape.Kind
		docs []string
	}{
		{"wide integers", shape.KindInteger, []string{`{"v": -5000000000000000000}`, `{"v": 5000000000000000000}`}},
		{"int64 limits", shape.KindInteger, []string{`{"v": -9223372036854775808}`, `{"v": 9223372036854775000}`}},
		{"beyond int64", shape.KindInteger, []string{`{"v": -1e19}`, `{"v": 1e19}`}},
		{"single huge integer", shape.KindInteger, []string{`{"v": 9000000000000000000}`}},
		{"float extremes", shape.KindFloat, []string{`{"v": -1.7e308}`, `{"v": 1.7e308}`}},
		{"tiny float span", shape.KindFloat, []string{`{"v": 0.125}`, `{"v": 0.126}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := profile.NewBuilder(0, nil)
			for _, doc := range tc.docs {
				b.Observe(decode(t, doc))
			}
			p := b.Profiles().Get("v")
			require.True(t, p.HasRange())
			rng := rand.New(rand.NewSource(3))

			for i := 0; i < 200; i++ {
				var v any
				require.NotPanics(t, func() {
					var err error
					v, err = h.Value(synth.Request{Name: "v", Kind: tc.kind, Profile: p, Rand: rng})
					require.NoError(t, err)
				})
				_, err := json.Marshal(v)
				require.NoError(t, err)

				f, ok := profile.ToFloat(v)
				require.True(t, ok)
				assert.False(t, math.IsInf(f, 0) || math.IsNaN(f))
				if tc.name != "beyond int64" {
					assert.GreaterOrEqual(t, f, *p.Min)
					assert.LessOrEqual(t, f, *p.Max)
				}
			}
		})
	}
}

// TestDetectLayout tests date layout recognition
func TestDetectLayout(t *testing.T) {
	cases := map[string]string{
		"07.07.2025":           "02.01.2006",
		"07/07/2025":           "02/01/2006",
		"2025-07-07":           "2006-01-02",
		"2025-07-07T10:00:00Z": time.RFC3339,
		"07.07.25":             "02.01.06",
	}
	for input, want := range cases {
		got, ok := synth.DetectLayout(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := synth.DetectLayout("tomorrow")
	assert.False(t, ok)
}

// TestPeriodSynthesizer tests coherent policy and trip periods
func TestPeriodSynthesizer(t *testing.T) {
	result := infer(t, `{"policy": {"startDate": "01.01.2025", "endDate": "31.12.2025", "insured": [{"tripStartDate": "2025-01-01", "tripEndDate": "2025-01-09"}]}}`)
	today := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)

	inner := newSynth(t, result, nil, options(4))
	yearly, err := synth.NewPeriodSynthesizer(inner, synth.PeriodPolicy, nil, options(4))
	require.NoError(t, err)
	assert.Equal(t, "T", yearly.LogicalType())

	for i := 0; i < 20; i++ {
		record, err := yearly.Synthesize(nil)
		require.NoError(t, err)
		pol := record.(map[string]any)["policy"].(map[string]any)
		start, err := time.Parse("02.01.2006", pol["startDate"].(string))
		require.NoError(t, err)
		end, err := time.Parse("02.01.2006", pol["endDate"].(string))
		require.NoError(t, err)
		assert.Equal(t, 364*24*time.Hour, end.Sub(start))
		assert.True(t, start.Before(today))
		assert.False(t, start.Before(today.AddDate(0, 0, -180)))

		for _, item := range pol["insured"].([]any) {
			trip := item.(map[string]any)
			_, err := time.Parse("2006-01-02", trip["tripStartDate"].(string))
			assert.NoError(t, err)
		}
	}

	trip, err := synth.NewPeriodSynthesizer(newSynth(t, result, nil, options(5)), synth.PeriodTrip, nil, options(5))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		start, end := trip.Period()
		assert.True(t, start.After(today))
		days := int(end.Sub(start).Hours() / 24)
		assert.GreaterOrEqual(t, days, 2)
		assert.LessOrEqual(t, days, 21)
	}

	_, err = synth.NewPeriodSynthesizer(inner, "decade", nil, options(1))
	assert.ErrorIs(t, err, mockerr.ErrConfiguration)
}

// TestPeriodRespectsPreserve tests that preserved dates survive in preserve mode
func TestPeriodRespectsPreserve(t *testing.T) {
	raw := `{"startDate": "01.01.2025", "endDate": "31.12.2025"}`
	result := infer(t, raw)
	pol := policy.New("startDate")
	inner := newSynth(t, result, pol, options(6))
	p, err := synth.NewPeriodSynthesizer(inner, synth.PeriodPolicy, pol, options(6))
	require.NoError(t, err)

	record, err := p.Synthesize(decode(t, raw))
	require.NoError(t, err)
	assert.Equal(t, "01.01.2025", record.(map[string]any)["startDate"])
}

// TestPeriodKeepsPreservedObjects tests that dates inside a preserved object are not rewritten
func TestPeriodKeepsPreservedObjects(t *testing.T) {
	cases := []struct {
		name   string
		kind   synth.PeriodKind
		raw    string
		field  string
		nested string
	}{
		{"policy cover", synth.PeriodPolicy, `{"cover": {"startDate": "01.01.2020", "endDate": "31.12.2020"}, "term": {"startDate": "01.01.2020", "endDate": "31.12.2020"}}`, "cover", "term"},
		{"trip legs", synth.PeriodTrip, `{"legs": [{"tripStartDate": "2020-03-01", "tripEndDate": "2020-03-09"}], "plan": {"tripStartDate": "2020-03-01", "tripEndDate": "2020-03-09"}}`, "legs", "plan"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := decode(t, tc.raw)
			pol := policy.New(tc.field)
			p, err := synth.NewPeriodSynthesizer(newSynth(t, infer(t, tc.raw), pol, options(8)), tc.kind, pol, options(8))
			require.NoError(t, err)

			for i := 0; i < 10; i++ {
				record, err := p.Synthesize(source)
				require.NoError(t, err)
				obj := record.(map[string]any)
				assert.Equal(t, source.(map[string]any)[tc.field], obj[tc.field])
				assert.NotEqual(t, source.(map[string]any)[tc.nested], obj[tc.nested])
			}

			// Independent records have no source to keep
			record, err := p.Synthesize(nil)
			require.NoError(t, err)
			assert.NotEqual(t, source.(map[string]any)[tc.nested], record.(map[string]any)[tc.nested])
		})
	}
}
