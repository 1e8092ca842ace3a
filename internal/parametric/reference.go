// Package parametric computes closed-form repeated-measures ANOVA tables
// from cell means. It exists as a correctness oracle for the permutation
// engine: the engine's unpermuted F grid must agree with these numbers. It
// works from mean deviations and inclusion-exclusion rather than the
// kernel's squared-marginal-sums identity, so the two implementations share
// no arithmetic. Sphericity corrections are deliberately absent.
package parametric

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// EffectResult is one row of an ANOVA table.
type EffectResult struct {
	SS float64
	DF int
	MS float64
	// F and P are populated for condition effects only; error terms carry
	// just their SS/DF/MS.
	F float64
	P float64
}

// Table maps effect labels ("A", "AxB", "AxS", "S", ...) to results.
type Table map[string]EffectResult

var axisNames = []string{"A", "B", "C"}

// CellANOVA computes the full within-subjects ANOVA for a single
// electrode/time cell. block is laid out cell-major with subject fastest
// (the same layout MeasurementArray.Block returns), levels gives the factor
// level counts in declared order, and nSubjects is the subject count.
func CellANOVA(block []float64, levels []int, nSubjects int) (Table, error) {
	if len(levels) < 1 || len(levels) > 3 {
		return nil, fmt.Errorf("parametric reference supports 1-3 factors, got %d", len(levels))
	}
	axes := len(levels) + 1 // subject axis last
	sizes := make([]int, axes)
	copy(sizes, levels)
	sizes[axes-1] = nSubjects

	total := 1
	for _, s := range sizes {
		total *= s
	}
	if len(block) != total {
		return nil, fmt.Errorf("block has %d values, design needs %d", len(block), total)
	}

	var grand float64
	for _, v := range block {
		grand += v
	}
	grand /= float64(total)

	// Marginal means for every subset of axes, indexed by bitmask.
	nMasks := 1 << axes
	means := make([][]float64, nMasks)
	dims := make([]int, nMasks)
	for mask := 1; mask < nMasks; mask++ {
		dim := 1
		for ax := 0; ax < axes; ax++ {
			if mask&(1<<ax) != 0 {
				dim *= sizes[ax]
			}
		}
		dims[mask] = dim
		sums := make([]float64, dim)
		coords := make([]int, axes)
		for flat, v := range block {
			decompose(flat, sizes, coords)
			sums[project(coords, sizes, mask)] += v
		}
		per := float64(total / dim)
		for i := range sums {
			sums[i] /= per
		}
		means[mask] = sums
	}

	table := make(Table, nMasks)
	coords := make([]int, axes)
	for mask := 1; mask < nMasks; mask++ {
		// Effect estimate at each cell of the mask's index space, by
		// inclusion-exclusion over lower-order marginal means.
		order := bits.OnesCount(uint(mask))
		collapsed := float64(total / dims[mask])
		var ss float64
		for cell := 0; cell < dims[mask]; cell++ {
			decomposeMask(cell, sizes, mask, coords)
			est := sign(order) * grand
			for sub := mask; sub > 0; sub = (sub - 1) & mask {
				est += sign(order-bits.OnesCount(uint(sub))) * means[sub][project(coords, sizes, sub)]
			}
			ss += est * est
		}
		ss *= collapsed

		df := 1
		for ax := 0; ax < axes; ax++ {
			if mask&(1<<ax) != 0 {
				df *= sizes[ax] - 1
			}
		}
		res := EffectResult{SS: ss, DF: df}
		if df > 0 {
			res.MS = ss / float64(df)
		}
		table[maskLabel(mask, axes)] = res
	}

	// F ratios for condition effects against their subject-interaction
	// error terms, with p-values from the F distribution.
	subjectBit := 1 << (axes - 1)
	for mask := 1; mask < nMasks; mask++ {
		if mask&subjectBit != 0 {
			continue
		}
		label := maskLabel(mask, axes)
		effect := table[label]
		errTerm := table[maskLabel(mask|subjectBit, axes)]
		if errTerm.MS == 0 {
			effect.F = math.NaN()
			effect.P = math.NaN()
		} else {
			effect.F = effect.MS / errTerm.MS
			fDist := distuv.F{D1: float64(effect.DF), D2: float64(errTerm.DF)}
			effect.P = 1 - fDist.CDF(effect.F)
		}
		table[label] = effect
	}
	return table, nil
}

// PValue returns the upper-tail F probability for a single statistic.
func PValue(f float64, dfNum, dfDenom int) float64 {
	if math.IsNaN(f) || dfNum <= 0 || dfDenom <= 0 {
		return math.NaN()
	}
	fDist := distuv.F{D1: float64(dfNum), D2: float64(dfDenom)}
	return 1 - fDist.CDF(f)
}

func sign(parity int) float64 {
	if parity%2 == 0 {
		return 1
	}
	return -1
}

// decompose splits a flat index into per-axis coordinates, last axis fastest.
func decompose(flat int, sizes []int, coords []int) {
	for ax := len(sizes) - 1; ax >= 0; ax-- {
		coords[ax] = flat % sizes[ax]
		flat /= sizes[ax]
	}
}

// decomposeMask splits a mask-space flat index into coordinates for the axes
// present in mask; other coordinates are left untouched and unused.
func decomposeMask(flat int, sizes []int, mask int, coords []int) {
	for ax := len(sizes) - 1; ax >= 0; ax-- {
		if mask&(1<<ax) == 0 {
			continue
		}
		coords[ax] = flat % sizes[ax]
		flat /= sizes[ax]
	}
}

// project maps full coordinates onto the flat index of a subset's space.
func project(coords []int, sizes []int, mask int) int {
	idx := 0
	for ax := 0; ax < len(sizes); ax++ {
		if mask&(1<<ax) != 0 {
			idx = idx*sizes[ax] + coords[ax]
		}
	}
	return idx
}

func maskLabel(mask, axes int) string {
	var parts []string
	for ax := 0; ax < axes; ax++ {
		if mask&(1<<ax) == 0 {
			continue
		}
		if ax == axes-1 {
			parts = append(parts, "S")
		} else {
			parts = append(parts, axisNames[ax])
		}
	}
	return strings.Join(parts, "x")
}
