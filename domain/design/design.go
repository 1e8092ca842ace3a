package design

import (
	"fmt"
	"strings"

	"github.com/HuseyinOrkun/FMUT/domain/core"
)

// Design describes a factorial within-subjects design: one entry per factor,
// giving that factor's number of levels, ordered to match the measurement
// array's factor axes (slowest-varying first).
type Design struct {
	Levels []int `json:"levels"`
}

// FactorNames used in effect labels, positional: factor 0 is "A" and so on.
var factorNames = []string{"A", "B", "C"}

// New validates level counts and returns a Design.
func New(levels ...int) (Design, error) {
	if len(levels) < 1 || len(levels) > 3 {
		return Design{}, fmt.Errorf("%w: %d factors declared", core.ErrBadDimensionality, len(levels))
	}
	for i, l := range levels {
		if l < 2 {
			return Design{}, fmt.Errorf("%w: factor %s has %d", core.ErrTooFewLevels, factorNames[i], l)
		}
	}
	return Design{Levels: append([]int(nil), levels...)}, nil
}

// NumFactors returns the number of within-subjects factors.
func (d Design) NumFactors() int {
	return len(d.Levels)
}

// NumCells returns the number of condition cells (product of all level counts).
func (d Design) NumCells() int {
	n := 1
	for _, l := range d.Levels {
		n *= l
	}
	return n
}

// Effect identifies a main effect or interaction by the indices of the
// factors involved, e.g. {0} is the A main effect and {0,1} is AxB.
type Effect []int

// FullInteraction returns the highest-order effect of the design.
func (d Design) FullInteraction() Effect {
	e := make(Effect, d.NumFactors())
	for i := range e {
		e[i] = i
	}
	return e
}

// Validate checks the effect against the design.
func (d Design) Validate(e Effect) error {
	if len(e) == 0 {
		return fmt.Errorf("%w: empty effect", core.ErrBadEffect)
	}
	seen := make(map[int]bool, len(e))
	for _, f := range e {
		if f < 0 || f >= d.NumFactors() || seen[f] {
			return fmt.Errorf("%w: factor index %d in a %d-factor design", core.ErrBadEffect, f, d.NumFactors())
		}
		seen[f] = true
	}
	return nil
}

// Label renders an effect as "A", "AxB", "AxBxC", ...
func (e Effect) Label() string {
	parts := make([]string, len(e))
	for i, f := range e {
		parts[i] = factorNames[f]
	}
	return strings.Join(parts, "x")
}

// NumeratorDF is the effect's degrees of freedom: product of (levels-1)
// over the factors in the effect.
func (d Design) NumeratorDF(e Effect) int {
	df := 1
	for _, f := range e {
		df *= d.Levels[f] - 1
	}
	return df
}

// DenominatorDF is the error term's degrees of freedom. Repeated-measures
// designs pair every effect with its interaction with the subject factor,
// so df_error = df_effect * (nSubjects - 1).
func (d Design) DenominatorDF(e Effect, nSubjects int) int {
	return d.NumeratorDF(e) * (nSubjects - 1)
}
