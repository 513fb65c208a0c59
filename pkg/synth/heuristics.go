/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: heuristics.go
Description: Fallback value heuristics keyed on field names and scalar kinds. Identifiers
become numeric strings, dates follow the layout seen in the profile, personal data comes
from gofakeit and enum-like names draw from small vocabularies. Numbers use the observed
range when one exists.
*/

package synth

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// Fallback produces a scalar when no observed value is drawn
type Fallback interface {
	Value(req Request) (any, error)
}

// Request describes the scalar a fallback must produce
type Request struct {
	Path    string
	Name    string // Field name, empty for array elements and the root
	Kind    shape.Kind
	Profile *profile.FieldProfile // May be nil
	Rand    *rand.Rand
}

var (
	currencies   = []string{"₪", "$", "€", "£"}
	statuses     = []string{"active", "inactive", "pending", "expired"}
	entityTypes  = []string{"personal", "business", "family", "individual"}
	policyTypes  = []string{"life", "health", "travel", "car", "home"}
	subtypes     = []string{"basic", "premium", "standard", "advanced"}
	destinations = []string{"Europe", "Asia", "America", "Africa", "Australia"}
)

// Heuristics is the default name-pattern fallback
type Heuristics struct {
	faker     *gofakeit.Faker
	reference time.Time
}

// NewHeuristics creates heuristics seeded for reproducible personal data
func NewHeuristics(seed int64, reference time.Time) *Heuristics {
	return &Heuristics{
		faker:     gofakeit.New(uint64(seed)),
		reference: reference,
	}
}

// Value implements Fallback
func (h *Heuristics) Value(req Request) (any, error) {
	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	lower := strings.ToLower(req.Name)

	switch req.Kind {
	case shape.KindBool:
		return rng.Intn(2) == 0, nil
	case shape.KindInteger:
		return h.integer(lower, req.Profile, rng), nil
	case shape.KindFloat:
		return h.float(lower, req.Profile, rng), nil
	case shape.KindString:
		return h.text(req.Name, lower, req.Profile, rng), nil
	default:
		return nil, mockerr.New(mockerr.ErrSynthesis, "fallback", req.Path).With("kind", string(req.Kind))
	}
}

func (h *Heuristics) text(name, lower string, p *profile.FieldProfile, rng *rand.Rand) string {
	switch {
	case strings.Contains(lower, "date") || strings.Contains(lower, "validitytime"):
		layout := layoutFromProfile(p)
		offset := rng.Intn(731) - 365
		return h.reference.AddDate(0, 0, offset).Format(layout)
	case strings.Contains(lower, "email"):
		return h.faker.Email()
	case strings.Contains(lower, "phone"):
		return h.faker.Phone()
	case strings.Contains(lower, "address"):
		return h.faker.Street() + ", " + h.faker.City()
	case strings.Contains(lower, "url") || strings.Contains(lower, "esite") || strings.Contains(lower, "website"):
		return h.faker.URL()
	case strings.Contains(lower, "licenseplate"):
		return digits(rng, 8)
	case strings.Contains(lower, "sectorid"):
		return fmt.Sprint(10 + rng.Intn(990))
	case lower == "id" || strings.HasSuffix(lower, "id") || strings.Contains(lower, "idnumber"):
		return digits(rng, 9)
	case strings.Contains(lower, "policytype"):
		return pick(rng, policyTypes)
	case strings.Contains(lower, "subtype"):
		return pick(rng, subtypes)
	case strings.Contains(lower, "policy"):
		return fmt.Sprintf("POL-%d", 100000+rng.Intn(900000))
	case strings.Contains(lower, "currency"):
		return pick(rng, currencies)
	case strings.Contains(lower, "status"):
		return pick(rng, statuses)
	case strings.Contains(lower, "type"):
		return pick(rng, entityTypes)
	case strings.Contains(lower, "destination"):
		return pick(rng, destinations)
	case strings.Contains(lower, "desc"):
		return fmt.Sprintf("Mock %s description", name)
	case strings.Contains(lower, "nickname"):
		return "Mock " + name
	case strings.Contains(lower, "firstname"):
		return h.faker.FirstName()
	case strings.Contains(lower, "lastname"):
		return h.faker.LastName()
	case strings.Contains(lower, "company"):
		return h.faker.Company()
	case strings.Contains(lower, "name"):
		return h.faker.Name()
	case strings.Contains(lower, "number") || strings.HasSuffix(lower, "no"):
		return digits(rng, 6+rng.Intn(3))
	case name == "":
		return h.faker.Word()
	default:
		return fmt.Sprintf("Mock_%s_%d", name, 1000+rng.Intn(9000))
	}
}

func (h *Heuristics) integer(lower string, p *profile.FieldProfile, rng *rand.Rand) int64 {
	if v, ok := integerInRange(p, rng); ok {
		return v
	}
	switch {
	case containsAny(lower, "amount", "sum", "value"):
		return between(rng, 1000, 1000000)
	case containsAny(lower, "percent"):
		return between(rng, 0, 100)
	case containsAny(lower, "beneficiaries"):
		return between(rng, 1, 10)
	case containsAny(lower, "numsavingchannel"):
		return between(rng, 1, 20)
	case containsAny(lower, "count", "number"):
		return between(rng, 1, 100)
	case containsAny(lower, "agent"):
		return between(rng, 10000, 99999)
	case containsAny(lower, "status"):
		return between(rng, 0, 3)
	case containsAny(lower, "year"):
		return int64(h.reference.Year()) - between(rng, 0, 10)
	case containsAny(lower, "month"):
		return between(rng, 1, 12)
	case containsAny(lower, "day"):
		return between(rng, 1, 31)
	default:
		return between(rng, 1, 1000)
	}
}

func (h *Heuristics) float(lower string, p *profile.FieldProfile, rng *rand.Rand) float64 {
	if p.HasRange() && *p.Max >= *p.Min {
		// Interpolate instead of Min+r*(Max-Min), the span can overflow
		r := rng.Float64()
		v := math.Min(math.Max(*p.Min*(1-r)+*p.Max*r, *p.Min), *p.Max)
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			if rounded := round2(v); rounded >= *p.Min && rounded <= *p.Max {
				return rounded
			}
			return v
		}
	}
	switch {
	case containsAny(lower, "amount", "sum", "value"):
		return round2(1000 + rng.Float64()*(1000000-1000))
	case containsAny(lower, "percent"):
		return round2(rng.Float64() * 100)
	default:
		return round2(1 + rng.Float64()*999)
	}
}

// integerInRange draws uniformly from the observed integer bounds. Bounds outside
// int64 are not usable and leave the choice to the name heuristics.
func integerInRange(p *profile.FieldProfile, rng *rand.Rand) (int64, bool) {
	if !p.HasRange() {
		return 0, false
	}
	lo, hi := math.Ceil(*p.Min), math.Floor(*p.Max)
	if hi < lo || lo < math.MinInt64 || hi >= math.MaxInt64 {
		return 0, false
	}
	low, high := int64(lo), int64(hi)
	span := uint64(high) - uint64(low)
	if span < math.MaxInt64 {
		return low + rng.Int63n(int64(span)+1), true
	}
	return int64(uint64(low) + rng.Uint64()%(span+1)), true
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func between(rng *rand.Rand, lo, hi int64) int64 {
	return lo + rng.Int63n(hi-lo+1)
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.Intn(len(words))]
}

func digits(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	b.WriteByte(byte('1' + rng.Intn(9)))
	for i := 1; i < n; i++ {
		b.WriteByte(byte('0' + rng.Intn(10)))
	}
	return b.String()
}

func round2(f float64) float64 {
	// Beyond 2^53 there are no cents left to round
	if math.Abs(f) >= 1<<53 {
		return f
	}
	return math.Round(f*100) / 100
}
