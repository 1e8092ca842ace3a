// Package correction turns an observed F grid and an Fmax null distribution
// into family-wise corrected p-values. Using the maximum statistic across
// all simultaneously tested cells as the reference distribution controls the
// family-wise error rate over the whole electrode x time grid.
package correction

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/HuseyinOrkun/FMUT/domain/erp"
	"github.com/HuseyinOrkun/FMUT/domain/result"
	"github.com/HuseyinOrkun/FMUT/internal/parametric"
)

// PValueGrid computes the corrected p-value of every electrode/time cell:
// the proportion of null entries at least as large as the cell's observed F.
// Ties count toward the null, which is the conservative direction. The
// observed statistic is the first null entry by construction, so no cell can
// receive a p-value of zero. NaN cells stay NaN for downstream flagging.
func PValueGrid(fObs *erp.Grid, null []float64) *erp.Grid {
	p := erp.NewGrid(fObs.Rows, fObs.Cols)
	n := float64(len(null))
	for i, f := range fObs.Values {
		if math.IsNaN(f) {
			p.Values[i] = math.NaN()
			continue
		}
		count := 0
		for _, nv := range null {
			if !math.IsNaN(nv) && nv >= f {
				count++
			}
		}
		p.Values[i] = float64(count) / n
	}
	return p
}

// CriticalF returns the Fmax threshold at the given alpha: the value an
// observed F has to reach for a corrected p-value <= alpha. NaN entries in
// the null distribution are excluded.
func CriticalF(null []float64, alpha float64) float64 {
	finite := make([]float64, 0, len(null))
	for _, v := range null {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	sort.Float64s(finite)
	idx := int(math.Ceil((1-alpha)*float64(len(finite)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(finite) {
		idx = len(finite) - 1
	}
	return finite[idx]
}

// ParametricPGrid computes uncorrected parametric p-values per cell from the
// F distribution, for side-by-side reporting against the permutation result.
func ParametricPGrid(fObs *erp.Grid, dfNum, dfDenom int) *erp.Grid {
	p := erp.NewGrid(fObs.Rows, fObs.Cols)
	for i, f := range fObs.Values {
		p.Values[i] = parametric.PValue(f, dfNum, dfDenom)
	}
	return p
}

// Summarize condenses a null distribution for reporting and persistence.
// NaN entries from degenerate iterations are dropped first.
func Summarize(null []float64) (result.NullDistributionSummary, error) {
	finite := make([]float64, 0, len(null))
	for _, v := range null {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	var summary result.NullDistributionSummary
	if len(finite) == 0 {
		return summary, nil
	}

	mean, err := stats.Mean(finite)
	if err != nil {
		return summary, err
	}
	stdDev, err := stats.StandardDeviationSample(finite)
	if err != nil {
		// A single finite entry has no sample deviation; report zero.
		stdDev = 0
	}
	min, err := stats.Min(finite)
	if err != nil {
		return summary, err
	}
	max, err := stats.Max(finite)
	if err != nil {
		return summary, err
	}
	p95, err := stats.Percentile(finite, 95)
	if err != nil {
		p95 = max
	}
	p99, err := stats.Percentile(finite, 99)
	if err != nil {
		p99 = max
	}

	summary = result.NullDistributionSummary{
		Mean:         mean,
		StdDev:       stdDev,
		Min:          min,
		Max:          max,
		Percentile95: p95,
		Percentile99: p99,
	}
	return summary, nil
}
