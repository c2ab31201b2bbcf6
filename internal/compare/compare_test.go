package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/sample"
)

func smp(start int, values ...float64) sample.Sample {
	return sample.Sample{
		Window: corpus.TimeWindow{Start: start, End: start + 19},
		Values: values,
		Median: sample.Median(values),
	}
}

func TestCompare_Separated(t *testing.T) {
	r, err := Compare(smp(1840, 1, 2, 3), smp(1900, 4, 5, 6))
	require.NoError(t, err)
	assert.InDelta(t, 0, r.U, 1e-12)
	assert.InDelta(t, 0.1, r.P, 1e-9)
	assert.False(t, r.Significant(0.05))
}

func TestCompare_SymmetricP(t *testing.T) {
	a := smp(1840, 12.1, 15.3, 14.2, 18.9, 11.0, 16.4)
	b := smp(1900, 17.5, 19.2, 14.2, 21.3, 20.0, 18.1)
	ab, err := Compare(a, b)
	require.NoError(t, err)
	ba, err := Compare(b, a)
	require.NoError(t, err)
	assert.InDelta(t, ab.P, ba.P, 1e-9)
	assert.InDelta(t, float64(6*6), ab.U+ba.U, 1e-9)
	assert.Greater(t, ab.P, 0.0)
	assert.LessOrEqual(t, ab.P, 1.0)
}

func TestCompare_AllEqual(t *testing.T) {
	r, err := Compare(smp(1840, 5, 5, 5), smp(1900, 5, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, 4.5, r.U)
	assert.Equal(t, 1.0, r.P)
}

func TestCompare_Identical(t *testing.T) {
	r, err := Compare(smp(1840, 1, 2, 3, 4), smp(1900, 1, 2, 3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 8, r.U, 1e-9)
	assert.InDelta(t, 1.0, r.P, 1e-9)
}

func TestCompare_KeepsSamples(t *testing.T) {
	a, b := smp(1840, 1, 2), smp(1900, 3, 4)
	r, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, a, r.A)
	assert.Equal(t, b, r.B)
}

func TestCompare_Empty(t *testing.T) {
	_, err := Compare(smp(1840), smp(1900, 1))
	require.ErrorIs(t, err, corpus.ErrInsufficientPopulation)
}

func TestCompare_LargeSamplesUseApproximation(t *testing.T) {
	var xs, ys []float64
	for i := 0; i < 60; i++ {
		xs = append(xs, float64(i))
		ys = append(ys, float64(i)+30)
	}
	r, err := Compare(smp(1840, xs...), smp(1900, ys...))
	require.NoError(t, err)
	assert.Less(t, r.P, 0.001)
}
