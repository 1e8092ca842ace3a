package anova

// Residualization for interaction tests. Raw data are not exchangeable
// across condition labels when real main effects exist, so before permuting
// we subtract, within each subject independently, every effect of lower
// order than the interaction under test. What remains is the target
// interaction plus noise, which IS exchangeable under the null hypothesis
// that the interaction is zero.

import (
	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// ResidualizeTwoWay removes, per subject, the subject grand mean and both
// main effects from a 5-dimensional array, leaving the AxB component:
// r_ab = x_ab - mean_a - mean_b + mean.
func ResidualizeTwoWay(m *erp.MeasurementArray) *erp.MeasurementArray {
	levels := m.FactorLevels()
	a, b := levels[0], levels[1]
	nS := m.NSubjects()
	af, bf := float64(a), float64(b)

	out := m.Clone()
	meanA := make([]float64, a)
	meanB := make([]float64, b)

	for e := 0; e < m.NElectrodes(); e++ {
		for t := 0; t < m.NTimePoints(); t++ {
			blk := out.Block(e, t)
			for s := 0; s < nS; s++ {
				zero(meanA)
				zero(meanB)
				var grand float64
				for ai := 0; ai < a; ai++ {
					for bi := 0; bi < b; bi++ {
						v := blk[(ai*b+bi)*nS+s]
						grand += v
						meanA[ai] += v
						meanB[bi] += v
					}
				}
				grand /= af * bf
				for ai := range meanA {
					meanA[ai] /= bf
				}
				for bi := range meanB {
					meanB[bi] /= af
				}
				for ai := 0; ai < a; ai++ {
					for bi := 0; bi < b; bi++ {
						idx := (ai*b+bi)*nS + s
						blk[idx] -= meanA[ai] + meanB[bi] - grand
					}
				}
			}
		}
	}
	return out
}

// ResidualizeThreeWay removes, per subject, the grand mean, all three main
// effects, and all three two-way interactions from a 6-dimensional array.
// By inclusion-exclusion over the per-subject marginal means:
// r_abc = x_abc - mean_ab - mean_ac - mean_bc + mean_a + mean_b + mean_c - mean.
func ResidualizeThreeWay(m *erp.MeasurementArray) *erp.MeasurementArray {
	levels := m.FactorLevels()
	a, b, c := levels[0], levels[1], levels[2]
	nS := m.NSubjects()
	af, bf, cf := float64(a), float64(b), float64(c)

	out := m.Clone()
	meanA := make([]float64, a)
	meanB := make([]float64, b)
	meanC := make([]float64, c)
	meanAB := make([]float64, a*b)
	meanAC := make([]float64, a*c)
	meanBC := make([]float64, b*c)

	for e := 0; e < m.NElectrodes(); e++ {
		for t := 0; t < m.NTimePoints(); t++ {
			blk := out.Block(e, t)
			for s := 0; s < nS; s++ {
				zero(meanA)
				zero(meanB)
				zero(meanC)
				zero(meanAB)
				zero(meanAC)
				zero(meanBC)
				var grand float64
				for ai := 0; ai < a; ai++ {
					for bi := 0; bi < b; bi++ {
						for ci := 0; ci < c; ci++ {
							v := blk[((ai*b+bi)*c+ci)*nS+s]
							grand += v
							meanA[ai] += v
							meanB[bi] += v
							meanC[ci] += v
							meanAB[ai*b+bi] += v
							meanAC[ai*c+ci] += v
							meanBC[bi*c+ci] += v
						}
					}
				}
				grand /= af * bf * cf
				for i := range meanA {
					meanA[i] /= bf * cf
				}
				for i := range meanB {
					meanB[i] /= af * cf
				}
				for i := range meanC {
					meanC[i] /= af * bf
				}
				for i := range meanAB {
					meanAB[i] /= cf
				}
				for i := range meanAC {
					meanAC[i] /= bf
				}
				for i := range meanBC {
					meanBC[i] /= af
				}
				for ai := 0; ai < a; ai++ {
					for bi := 0; bi < b; bi++ {
						for ci := 0; ci < c; ci++ {
							idx := ((ai*b+bi)*c+ci)*nS + s
							blk[idx] -= meanAB[ai*b+bi] + meanAC[ai*c+ci] + meanBC[bi*c+ci] -
								meanA[ai] - meanB[bi] - meanC[ci] + grand
						}
					}
				}
			}
		}
	}
	return out
}
