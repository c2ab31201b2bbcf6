// Package compare tests whether two samples of average sentence lengths
// come from the same distribution.
package compare

import (
	"errors"
	"fmt"

	"github.com/aclements/go-moremath/stats"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/sample"
)

// Result is the outcome of one comparison. It is not modified after
// Compare returns.
type Result struct {
	A sample.Sample `json:"a"`
	B sample.Sample `json:"b"`
	// U is the Mann-Whitney statistic of A: the number of (a, b) pairs
	// with a > b, ties counting one half.
	U float64 `json:"u"`
	// P is the two-sided p-value.
	P float64 `json:"p"`
}

// Significant reports whether P is below alpha.
func (r Result) Significant(alpha float64) bool { return r.P < alpha }

// Compare runs a two-sided Mann-Whitney U test on the values of a and b.
// Ties get midranks. Small samples use the exact null distribution, larger
// ones the normal approximation with tie and continuity correction.
// Equal sample sizes are expected but not enforced.
func Compare(a, b sample.Sample) (Result, error) {
	n1, n2 := len(a.Values), len(b.Values)
	if n1 == 0 || n2 == 0 {
		return Result{}, fmt.Errorf("%w: cannot compare samples of size %d and %d",
			corpus.ErrInsufficientPopulation, n1, n2)
	}
	res := Result{A: a, B: b}
	mw, err := stats.MannWhitneyUTest(a.Values, b.Values, stats.LocationDiffers)
	switch {
	case errors.Is(err, stats.ErrSamplesEqual):
		res.U = float64(n1*n2) / 2
		res.P = 1
		return res, nil
	case err != nil:
		return Result{}, fmt.Errorf("mann-whitney: %w", err)
	}
	res.U = mw.U
	res.P = mw.P
	return res, nil
}
