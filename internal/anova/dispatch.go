package anova

import (
	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/design"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// Tier is the design tier an array's dimensionality routes to.
type Tier int

const (
	OneWay   Tier = 1 // 4 dims: single factor, main effect, raw labels exchangeable
	TwoWay   Tier = 2 // 5 dims: AxB interaction, permutation of residuals
	ThreeWay Tier = 3 // 6 dims: AxBxC interaction, residualized through two-way terms
)

// Dispatch holds everything the permutation driver needs that is fixed per
// design: tier, design descriptor, target effect, and both degrees of
// freedom. Degrees of freedom never depend on the data values or on any
// permutation, so they are computed exactly once here.
type Dispatch struct {
	Tier          Tier
	Design        design.Design
	Target        design.Effect
	EffectKey     string
	NumSubjects   int
	NumeratorDF   int
	DenominatorDF int
}

// Inspect validates the array against the engine's contract and routes it by
// dimensionality: 4 -> one-way, 5 -> two-way, 6 -> three-way. Anything else
// fails fast rather than attempting a best-effort computation.
func Inspect(m *erp.MeasurementArray) (*Dispatch, error) {
	ndim := m.NDim()
	if ndim < 4 || ndim > 6 {
		return nil, core.NewDimensionalityError(ndim)
	}
	if m.NSubjects() < 2 {
		return nil, core.ErrTooFewSubjects
	}
	d, err := design.New(m.FactorLevels()...)
	if err != nil {
		return nil, err
	}

	target := d.FullInteraction()
	return &Dispatch{
		Tier:          Tier(d.NumFactors()),
		Design:        d,
		Target:        target,
		EffectKey:     target.Label(),
		NumSubjects:   m.NSubjects(),
		NumeratorDF:   d.NumeratorDF(target),
		DenominatorDF: d.DenominatorDF(target, m.NSubjects()),
	}, nil
}

// Prepare returns the array the permutation loop should actually consume.
// One-way data is used raw: condition labels are already exchangeable under
// the main-effect null. Interaction tiers are residualized so the permuted
// quantity is exchangeable under the interaction null.
func (dp *Dispatch) Prepare(m *erp.MeasurementArray) *erp.MeasurementArray {
	switch dp.Tier {
	case TwoWay:
		return ResidualizeTwoWay(m)
	case ThreeWay:
		return ResidualizeThreeWay(m)
	default:
		return m
	}
}

// ReduceToEffect averages a factorial array over every factor not in the
// effect and returns the reduced array, whose full interaction IS the
// requested effect. This is how callers test main effects and lower-order
// interactions of a factorial design: reduce first, then dispatch the
// reduced array at its natural tier.
func ReduceToEffect(m *erp.MeasurementArray, e design.Effect) (*erp.MeasurementArray, error) {
	d, err := design.New(m.FactorLevels()...)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(e); err != nil {
		return nil, err
	}
	return m.CollapseFactors(e)
}
