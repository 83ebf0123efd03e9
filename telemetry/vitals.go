package telemetry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

const DefaultVitalsCapacity = 1000

type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// thresholds are the upper bounds of "good" and "needs-improvement". Units are ms,
// except CLS which is unitless.
var thresholds = map[string][2]float64{
	"LCP":  {2500, 4000},
	"FID":  {100, 300},
	"CLS":  {0.1, 0.25},
	"INP":  {200, 500},
	"TTFB": {800, 1800},
	"FCP":  {1800, 3000},
}

func RateVital(name string, value float64) (Rating, bool) {
	t, ok := thresholds[name]
	if !ok {
		return "", false
	}
	switch {
	case value <= t[0]:
		return RatingGood, true
	case value <= t[1]:
		return RatingNeedsImprovement, true
	default:
		return RatingPoor, true
	}
}

type VitalSample struct {
	Name   string    `json:"name"`
	Value  float64   `json:"value"`
	Rating Rating    `json:"rating"`
	Path   string    `json:"path,omitempty"`
	At     time.Time `json:"at"`
}

var ErrInvalidVital = errors.New("invalid web vital")

type Vitals struct {
	mu   sync.Mutex
	ring *ring[VitalSample]
	now  func() time.Time
}

func NewVitals(capacity int) *Vitals {
	if capacity <= 0 {
		capacity = DefaultVitalsCapacity
	}
	return &Vitals{ring: newRing[VitalSample](capacity), now: time.Now}
}

// Add validates and stores a sample. The rating is always computed here; whatever the
// client sent is ignored.
func (v *Vitals) Add(name string, value float64, path string) (VitalSample, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return VitalSample{}, fmt.Errorf("%w: %s value must be a non-negative number", ErrInvalidVital, name)
	}
	rating, ok := RateVital(name, value)
	if !ok {
		return VitalSample{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidVital, name)
	}

	sample := VitalSample{Name: name, Value: value, Rating: rating, Path: path, At: v.now()}

	v.mu.Lock()
	v.ring.push(sample)
	v.mu.Unlock()

	return sample, nil
}

func (v *Vitals) Recent(n int) []VitalSample {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ring.recent(n)
}

type MetricSummary struct {
	Count            int     `json:"count"`
	P50              float64 `json:"p50"`
	P75              float64 `json:"p75"`
	P95              float64 `json:"p95"`
	Good             int     `json:"good"`
	NeedsImprovement int     `json:"needsImprovement"`
	Poor             int     `json:"poor"`
	Rating           Rating  `json:"rating"` // of the p75, the value web-vitals reporting uses
}

// Summary returns per-metric percentiles over the retained samples. Metrics with no
// samples are omitted.
func (v *Vitals) Summary() map[string]MetricSummary {
	v.mu.Lock()
	items := v.ring.items()
	v.mu.Unlock()

	values := map[string][]float64{}
	res := map[string]MetricSummary{}
	for _, s := range items {
		values[s.Name] = append(values[s.Name], s.Value)
		m := res[s.Name]
		m.Count++
		switch s.Rating {
		case RatingGood:
			m.Good++
		case RatingNeedsImprovement:
			m.NeedsImprovement++
		case RatingPoor:
			m.Poor++
		}
		res[s.Name] = m
	}

	for name, vals := range values {
		sort.Float64s(vals)
		m := res[name]
		m.P50 = percentile(vals, 50)
		m.P75 = percentile(vals, 75)
		m.P95 = percentile(vals, 95)
		m.Rating, _ = RateVital(name, m.P75)
		res[name] = m
	}

	return res
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p * float64(len(sorted)) / 100))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
