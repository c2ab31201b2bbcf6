package sample

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/table"
)

// threeDocs is the corpus of the end-to-end scenario: averages 12, 18, 25.
func threeDocs() *table.Table {
	return table.FromRecords([]corpus.MetricRecord{
		{ID: "d1", Year: 1850, Tokens: 120, Sentences: 10},
		{ID: "d2", Year: 1855, Tokens: 180, Sentences: 10},
		{ID: "d3", Year: 1905, Tokens: 250, Sentences: 10},
	})
}

// spread returns one record per year in [from, to], avg = year - 1800.
func spread(from, to int) []corpus.MetricRecord {
	var out []corpus.MetricRecord
	for y := from; y <= to; y++ {
		out = append(out, corpus.MetricRecord{ID: fmt.Sprintf("y%d", y), Year: y, Tokens: y - 1800, Sentences: 1})
	}
	return out
}

func TestFilterByWindow(t *testing.T) {
	got := FilterByWindow(threeDocs(), corpus.TimeWindow{Start: 1840, End: 1859})
	assert.Equal(t, []float64{12, 18}, got)
	assert.Empty(t, FilterByWindow(threeDocs(), corpus.TimeWindow{Start: 1700, End: 1799}))
}

func TestEndToEndScenario(t *testing.T) {
	w := corpus.TimeWindow{Start: 1840, End: 1859}
	smp, err := New(42).Uniform(threeDocs().Records(), w, 2)
	require.NoError(t, err)
	vals := append([]float64(nil), smp.Values...)
	sort.Float64s(vals)
	assert.Equal(t, []float64{12, 18}, vals)
	assert.InDelta(t, 15.0, smp.Median, 1e-9)
	assert.Equal(t, "1840–1859 (median=15.00)", smp.Label())
}

func TestDraw_InsufficientPopulation(t *testing.T) {
	_, err := New(1).Draw([]float64{1, 2}, 3)
	require.ErrorIs(t, err, corpus.ErrInsufficientPopulation)

	_, err = New(1).Uniform(threeDocs().Records(), corpus.TimeWindow{Start: 1900, End: 1910}, 2)
	require.ErrorIs(t, err, corpus.ErrInsufficientPopulation)

	_, err = New(1).Draw([]float64{1, 2}, 0)
	require.Error(t, err)
}

func TestDraw_WithoutReplacementAndDeterministic(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	a, err := New(7).Draw(values, 30)
	require.NoError(t, err)
	b, err := New(7).Draw(values, 30)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	seen := map[float64]bool{}
	for _, v := range a {
		assert.False(t, seen[v], "value %v drawn twice", v)
		seen[v] = true
	}
	assert.Equal(t, float64(0), values[0], "input must not be reordered")
	assert.Equal(t, float64(99), values[99])

	full, err := New(3).Draw(values, 100)
	require.NoError(t, err)
	sort.Float64s(full)
	assert.Equal(t, values, full)
}

func TestUniform_SameSeedSameSample(t *testing.T) {
	recs := spread(1800, 1899)
	w := corpus.TimeWindow{Start: 1820, End: 1869}
	a, err := New(99).Uniform(recs, w, 10)
	require.NoError(t, err)
	b, err := New(99).Uniform(recs, w, 10)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	for _, id := range a.IDs {
		var y int
		_, err := fmt.Sscanf(id, "y%d", &y)
		require.NoError(t, err)
		assert.True(t, w.Contains(y), id)
	}
}

func TestStratified(t *testing.T) {
	recs := spread(1800, 1899)
	w := corpus.TimeWindow{Start: 1820, End: 1859}
	smp, err := New(5).Stratified(recs, w, 10)
	require.NoError(t, err)
	// round(10/4) = 3 per decade (2.5 rounds away from zero).
	require.Equal(t, 12, smp.Len())
	perDecade := map[int]int{}
	for _, v := range smp.Values {
		perDecade[(1800+int(v))/10*10]++
	}
	assert.Equal(t, map[int]int{1820: 3, 1830: 3, 1840: 3, 1850: 3}, perDecade)
}

func TestStratified_DropsTrailingPartialDecade(t *testing.T) {
	recs := spread(1800, 1899)
	smp, err := New(5).Stratified(recs, corpus.TimeWindow{Start: 1820, End: 1845}, 4)
	require.NoError(t, err)
	for _, v := range smp.Values {
		assert.Less(t, 1800+int(v), 1840)
	}
	assert.Equal(t, 4, smp.Len())
}

func TestStratified_Errors(t *testing.T) {
	recs := spread(1800, 1899)
	_, err := New(1).Stratified(recs, corpus.TimeWindow{Start: 1800, End: 1805}, 3)
	require.ErrorIs(t, err, corpus.ErrNoDecades)

	_, err = New(1).Stratified(recs, corpus.TimeWindow{Start: 1800, End: 1819}, 30)
	require.ErrorIs(t, err, corpus.ErrInsufficientPopulation)

	_, err = New(1).Stratified(recs, corpus.TimeWindow{Start: 1800, End: 1899}, 4)
	require.Error(t, err)
}

func TestTake(t *testing.T) {
	recs := spread(1800, 1899)
	w := corpus.TimeWindow{Start: 1800, End: 1819}
	u, err := New(3).Take(ModeUniform, recs, w, 4)
	require.NoError(t, err)
	s, err := New(3).Take(ModeStratified, recs, w, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, u.Len())
	assert.Equal(t, 4, s.Len())
	_, err = New(3).Take("bogus", recs, w, 4)
	require.Error(t, err)
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-9)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 3, 2}), 1e-9)
	assert.True(t, math.IsNaN(Median(nil)))
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeUniform, "overall": ModeUniform, "Stratified": ModeStratified} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("weighted")
	require.Error(t, err)
}

func TestSampleRecords(t *testing.T) {
	tbl := threeDocs()
	smp, err := New(2).Uniform(tbl.Records(), corpus.TimeWindow{Start: 1800, End: 1999}, 3)
	require.NoError(t, err)
	recs := smp.Records(tbl)
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, smp.IDs[i], r.ID)
	}
}
