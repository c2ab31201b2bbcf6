// Package sample draws equal-size random samples of average sentence
// lengths from the records of a time window.
package sample

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/table"
)

// Mode selects how records are drawn from a window.
type Mode string

const (
	// ModeUniform draws from the whole window at once.
	ModeUniform Mode = "uniform"
	// ModeStratified draws the same number of records from every decade.
	ModeStratified Mode = "stratified"
)

// ParseMode parses a sampling mode name. "overall" is accepted as an alias
// for uniform sampling.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform", "overall":
		return ModeUniform, nil
	case "stratified", "decades", "sliced":
		return ModeStratified, nil
	}
	return "", fmt.Errorf("unknown sampling mode %q", s)
}

// Sample is a set of values drawn from one window. IDs[i] is the record
// Values[i] came from.
type Sample struct {
	Window corpus.TimeWindow `json:"window"`
	IDs    []string          `json:"ids"`
	Values []float64         `json:"values"`
	Median float64           `json:"median"`
}

// Len returns the sample size.
func (s Sample) Len() int { return len(s.Values) }

// Label renders the window and median, e.g. "1840–1859 (median=15.00)".
func (s Sample) Label() string {
	return fmt.Sprintf("%s (median=%.2f)", s.Window, s.Median)
}

// Median returns the sample median; the mean of the two middle values for
// an even count. It is NaN for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	xs := append([]float64(nil), values...)
	sort.Float64s(xs)
	return stats.Sample{Xs: xs, Sorted: true}.Quantile(0.5)
}

// Filter returns the records whose year lies in w, keeping their order.
func Filter(recs []corpus.MetricRecord, w corpus.TimeWindow) []corpus.MetricRecord {
	var out []corpus.MetricRecord
	for _, r := range recs {
		if w.Contains(r.Year) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByWindow returns the average sentence lengths of the records of t
// that fall in w, in identifier order.
func FilterByWindow(t *table.Table, w corpus.TimeWindow) []float64 {
	recs := Filter(t.Records(), w)
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.AvgSentenceLength()
	}
	return out
}

// Sampler draws samples from an explicitly seeded generator. The same seed
// and inputs always give the same samples. A Sampler is not safe for
// concurrent use.
type Sampler struct {
	seed uint64
	rng  *rand.Rand
}

// New returns a sampler seeded with seed.
func New(seed uint64) *Sampler {
	return &Sampler{seed: seed, rng: NewRand(seed)}
}

// NewRand returns a PCG generator derived from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed returns a fresh random seed for runs that did not fix one.
func NewSeed() uint64 { return rand.Uint64() }

// Seed returns the seed the sampler was created with.
func (s *Sampler) Seed() uint64 { return s.seed }

// indices returns n distinct positions in [0, population) in draw order.
func (s *Sampler) indices(population, n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}
	if population < n {
		return nil, fmt.Errorf("%w: %d available, %d requested", corpus.ErrInsufficientPopulation, population, n)
	}
	perm := make([]int, population)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + s.rng.IntN(population-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:n], nil
}

// Draw returns n values chosen uniformly without replacement. values is not
// modified.
func (s *Sampler) Draw(values []float64, n int) ([]float64, error) {
	idx, err := s.indices(len(values), n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, j := range idx {
		out[i] = values[j]
	}
	return out, nil
}

// Uniform draws n records from the records in w.
func (s *Sampler) Uniform(recs []corpus.MetricRecord, w corpus.TimeWindow, n int) (Sample, error) {
	pool := Filter(recs, w)
	idx, err := s.indices(len(pool), n)
	if err != nil {
		return Sample{}, fmt.Errorf("window %s: %w", w, err)
	}
	smp := Sample{Window: w}
	smp.add(pool, idx)
	smp.Median = Median(smp.Values)
	return smp, nil
}

// Stratified draws round(n / decades) records from every full decade of w
// and concatenates them. Any decade with too few records fails the draw.
func (s *Sampler) Stratified(recs []corpus.MetricRecord, w corpus.TimeWindow, n int) (Sample, error) {
	decades := w.Decades()
	if len(decades) == 0 {
		return Sample{}, fmt.Errorf("window %s: %w", w, corpus.ErrNoDecades)
	}
	per := int(math.Round(float64(n) / float64(len(decades))))
	if per <= 0 {
		return Sample{}, fmt.Errorf("window %s: sample size %d is too small for %d decades", w, n, len(decades))
	}
	smp := Sample{Window: w}
	for _, d := range decades {
		pool := Filter(recs, d)
		idx, err := s.indices(len(pool), per)
		if err != nil {
			return Sample{}, fmt.Errorf("decade %s: %w", d, err)
		}
		smp.add(pool, idx)
	}
	smp.Median = Median(smp.Values)
	return smp, nil
}

// Take draws a sample of size n from w using mode.
func (s *Sampler) Take(mode Mode, recs []corpus.MetricRecord, w corpus.TimeWindow, n int) (Sample, error) {
	switch mode {
	case ModeUniform, "":
		return s.Uniform(recs, w, n)
	case ModeStratified:
		return s.Stratified(recs, w, n)
	}
	return Sample{}, fmt.Errorf("unknown sampling mode %q", mode)
}

func (smp *Sample) add(pool []corpus.MetricRecord, idx []int) {
	for _, j := range idx {
		smp.IDs = append(smp.IDs, pool[j].ID)
		smp.Values = append(smp.Values, pool[j].AvgSentenceLength())
	}
}

// Records looks up the sampled records in t, in sample order.
func (smp Sample) Records(t *table.Table) []corpus.MetricRecord {
	out := make([]corpus.MetricRecord, 0, len(smp.IDs))
	for _, id := range smp.IDs {
		if r, ok := t.Get(id); ok {
			out = append(out, r)
		}
	}
	return out
}
