package anova

import (
	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// TermSet maps named sum-of-squares terms to electrode x time grids. Keys are
// effect labels ("A", "AxB", ...), their subject-interaction error terms
// ("AxS", "AxBxS", ...), plus "mean" (grand-mean correction term) and
// "total" (corrected total). For every design tier the non-mean terms sum to
// "total" within floating-point tolerance; that identity is the kernel's
// contract and is what the tests pin down.
type TermSet map[string]*erp.Grid

func newTermSet(rows, cols int, keys ...string) TermSet {
	ts := make(TermSet, len(keys))
	for _, k := range keys {
		ts[k] = erp.NewGrid(rows, cols)
	}
	return ts
}

// ErrorTermKey returns the term-set key of the error term paired with an
// effect: the effect's interaction with the subject blocking factor.
func ErrorTermKey(effectKey string) string {
	return effectKey + "xS"
}

// Terms computes the complete repeated-measures sum-of-squares decomposition
// for the array's design tier, collapsing only condition and subject axes.
// The caller guarantees a valid 4-6 dimensional array (the dispatcher's job).
func Terms(m *erp.MeasurementArray) (TermSet, error) {
	switch m.NumFactors() {
	case 1:
		return oneWayTerms(m), nil
	case 2:
		return twoWayTerms(m), nil
	case 3:
		return threeWayTerms(m), nil
	default:
		return nil, core.NewDimensionalityError(m.NDim())
	}
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

func sqSum(v []float64) float64 {
	var acc float64
	for _, x := range v {
		acc += x * x
	}
	return acc
}

// oneWayTerms decomposes a single-factor design: SS_A, SS_S, and the AxS
// error term.
func oneWayTerms(m *erp.MeasurementArray) TermSet {
	nE, nT := m.NElectrodes(), m.NTimePoints()
	a := m.FactorLevels()[0]
	nS := m.NSubjects()
	af, sf := float64(a), float64(nS)

	terms := newTermSet(nE, nT, "mean", "A", "S", "AxS", "total")
	sumA := make([]float64, a)
	sumS := make([]float64, nS)

	for e := 0; e < nE; e++ {
		for t := 0; t < nT; t++ {
			blk := m.Block(e, t)
			zero(sumA)
			zero(sumS)
			var grand, sumSq float64
			for ai := 0; ai < a; ai++ {
				row := blk[ai*nS : (ai+1)*nS]
				for s, v := range row {
					grand += v
					sumSq += v * v
					sumA[ai] += v
					sumS[s] += v
				}
			}
			c := grand * grand / (af * sf)
			ssA := sqSum(sumA)/sf - c
			ssS := sqSum(sumS)/af - c
			ssTot := sumSq - c
			ssAS := ssTot - ssA - ssS

			terms["mean"].Set(c, e, t)
			terms["A"].Set(ssA, e, t)
			terms["S"].Set(ssS, e, t)
			terms["AxS"].Set(ssAS, e, t)
			terms["total"].Set(ssTot, e, t)
		}
	}
	return terms
}

// twoWayTerms decomposes a two-factor design. Each interaction term is the
// squared-marginal quantity minus the grand-mean correction minus every
// lower-order term it contains, so it isolates variability unique to that
// interaction.
func twoWayTerms(m *erp.MeasurementArray) TermSet {
	nE, nT := m.NElectrodes(), m.NTimePoints()
	levels := m.FactorLevels()
	a, b := levels[0], levels[1]
	nS := m.NSubjects()
	af, bf, sf := float64(a), float64(b), float64(nS)

	terms := newTermSet(nE, nT,
		"mean", "A", "B", "S", "AxB", "AxS", "BxS", "AxBxS", "total")

	sumA := make([]float64, a)
	sumB := make([]float64, b)
	sumS := make([]float64, nS)
	sumAB := make([]float64, a*b)
	sumAS := make([]float64, a*nS)
	sumBS := make([]float64, b*nS)

	for e := 0; e < nE; e++ {
		for t := 0; t < nT; t++ {
			blk := m.Block(e, t)
			zero(sumA)
			zero(sumB)
			zero(sumS)
			zero(sumAB)
			zero(sumAS)
			zero(sumBS)
			var grand, sumSq float64
			for ai := 0; ai < a; ai++ {
				for bi := 0; bi < b; bi++ {
					cell := ai*b + bi
					row := blk[cell*nS : (cell+1)*nS]
					for s, v := range row {
						grand += v
						sumSq += v * v
						sumA[ai] += v
						sumB[bi] += v
						sumS[s] += v
						sumAB[cell] += v
						sumAS[ai*nS+s] += v
						sumBS[bi*nS+s] += v
					}
				}
			}
			c := grand * grand / (af * bf * sf)
			ssA := sqSum(sumA)/(bf*sf) - c
			ssB := sqSum(sumB)/(af*sf) - c
			ssS := sqSum(sumS)/(af*bf) - c
			ssAB := sqSum(sumAB)/sf - c - ssA - ssB
			ssAS := sqSum(sumAS)/bf - c - ssA - ssS
			ssBS := sqSum(sumBS)/af - c - ssB - ssS
			ssTot := sumSq - c
			ssABS := ssTot - ssA - ssB - ssS - ssAB - ssAS - ssBS

			terms["mean"].Set(c, e, t)
			terms["A"].Set(ssA, e, t)
			terms["B"].Set(ssB, e, t)
			terms["S"].Set(ssS, e, t)
			terms["AxB"].Set(ssAB, e, t)
			terms["AxS"].Set(ssAS, e, t)
			terms["BxS"].Set(ssBS, e, t)
			terms["AxBxS"].Set(ssABS, e, t)
			terms["total"].Set(ssTot, e, t)
		}
	}
	return terms
}

// threeWayTerms decomposes a three-factor design: 7 condition effects, their
// 7 subject-interaction error terms, and the grand-mean correction term.
// Written out term by term rather than as a powerset recursion so each tier
// stays independently checkable against the closed-form reference.
func threeWayTerms(m *erp.MeasurementArray) TermSet {
	nE, nT := m.NElectrodes(), m.NTimePoints()
	levels := m.FactorLevels()
	a, b, cDim := levels[0], levels[1], levels[2]
	nS := m.NSubjects()
	af, bf, cf, sf := float64(a), float64(b), float64(cDim), float64(nS)

	terms := newTermSet(nE, nT,
		"mean", "A", "B", "C", "S",
		"AxB", "AxC", "BxC", "AxS", "BxS", "CxS",
		"AxBxC", "AxBxS", "AxCxS", "BxCxS", "AxBxCxS", "total")

	sumA := make([]float64, a)
	sumB := make([]float64, b)
	sumC := make([]float64, cDim)
	sumS := make([]float64, nS)
	sumAB := make([]float64, a*b)
	sumAC := make([]float64, a*cDim)
	sumBC := make([]float64, b*cDim)
	sumAS := make([]float64, a*nS)
	sumBS := make([]float64, b*nS)
	sumCS := make([]float64, cDim*nS)
	sumABC := make([]float64, a*b*cDim)
	sumABS := make([]float64, a*b*nS)
	sumACS := make([]float64, a*cDim*nS)
	sumBCS := make([]float64, b*cDim*nS)

	for e := 0; e < nE; e++ {
		for t := 0; t < nT; t++ {
			blk := m.Block(e, t)
			zero(sumA)
			zero(sumB)
			zero(sumC)
			zero(sumS)
			zero(sumAB)
			zero(sumAC)
			zero(sumBC)
			zero(sumAS)
			zero(sumBS)
			zero(sumCS)
			zero(sumABC)
			zero(sumABS)
			zero(sumACS)
			zero(sumBCS)
			var grand, sumSq float64
			for ai := 0; ai < a; ai++ {
				for bi := 0; bi < b; bi++ {
					for ci := 0; ci < cDim; ci++ {
						cell := (ai*b+bi)*cDim + ci
						row := blk[cell*nS : (cell+1)*nS]
						for s, v := range row {
							grand += v
							sumSq += v * v
							sumA[ai] += v
							sumB[bi] += v
							sumC[ci] += v
							sumS[s] += v
							sumAB[ai*b+bi] += v
							sumAC[ai*cDim+ci] += v
							sumBC[bi*cDim+ci] += v
							sumAS[ai*nS+s] += v
							sumBS[bi*nS+s] += v
							sumCS[ci*nS+s] += v
							sumABC[cell] += v
							sumABS[(ai*b+bi)*nS+s] += v
							sumACS[(ai*cDim+ci)*nS+s] += v
							sumBCS[(bi*cDim+ci)*nS+s] += v
						}
					}
				}
			}
			c := grand * grand / (af * bf * cf * sf)
			ssA := sqSum(sumA)/(bf*cf*sf) - c
			ssB := sqSum(sumB)/(af*cf*sf) - c
			ssC := sqSum(sumC)/(af*bf*sf) - c
			ssS := sqSum(sumS)/(af*bf*cf) - c
			ssAB := sqSum(sumAB)/(cf*sf) - c - ssA - ssB
			ssAC := sqSum(sumAC)/(bf*sf) - c - ssA - ssC
			ssBC := sqSum(sumBC)/(af*sf) - c - ssB - ssC
			ssAS := sqSum(sumAS)/(bf*cf) - c - ssA - ssS
			ssBS := sqSum(sumBS)/(af*cf) - c - ssB - ssS
			ssCS := sqSum(sumCS)/(af*bf) - c - ssC - ssS
			ssABC := sqSum(sumABC)/sf - c - ssA - ssB - ssC - ssAB - ssAC - ssBC
			ssABS := sqSum(sumABS)/cf - c - ssA - ssB - ssS - ssAB - ssAS - ssBS
			ssACS := sqSum(sumACS)/bf - c - ssA - ssC - ssS - ssAC - ssAS - ssCS
			ssBCS := sqSum(sumBCS)/af - c - ssB - ssC - ssS - ssBC - ssBS - ssCS
			ssTot := sumSq - c
			ssABCS := ssTot - ssA - ssB - ssC - ssS -
				ssAB - ssAC - ssBC - ssAS - ssBS - ssCS -
				ssABC - ssABS - ssACS - ssBCS

			terms["mean"].Set(c, e, t)
			terms["A"].Set(ssA, e, t)
			terms["B"].Set(ssB, e, t)
			terms["C"].Set(ssC, e, t)
			terms["S"].Set(ssS, e, t)
			terms["AxB"].Set(ssAB, e, t)
			terms["AxC"].Set(ssAC, e, t)
			terms["BxC"].Set(ssBC, e, t)
			terms["AxS"].Set(ssAS, e, t)
			terms["BxS"].Set(ssBS, e, t)
			terms["CxS"].Set(ssCS, e, t)
			terms["AxBxC"].Set(ssABC, e, t)
			terms["AxBxS"].Set(ssABS, e, t)
			terms["AxCxS"].Set(ssACS, e, t)
			terms["BxCxS"].Set(ssBCS, e, t)
			terms["AxBxCxS"].Set(ssABCS, e, t)
			terms["total"].Set(ssTot, e, t)
		}
	}
	return terms
}
