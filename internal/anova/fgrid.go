package anova

import (
	"fmt"
	"math"

	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// SSTolerance is the floor below which an effect sum of squares is treated
// as zero. Higher-order terms are differences of large, nearly equal
// quantities, so floating-point cancellation can leave a tiny negative SS
// that would otherwise produce a negative or spuriously large F ratio.
const SSTolerance = 1e-12

// FGrid computes the F ratio of one effect at every electrode/time cell:
// (effect SS / numerator df) / (error SS / denominator df), where the error
// term is the effect's interaction with the subject factor, never a pooled
// residual. The effect SS is clamped at SSTolerance before dividing. Cells
// whose error SS is exactly zero get a NaN sentinel instead of crashing the
// caller's loop; downstream layers flag or exclude them.
func FGrid(terms TermSet, effectKey string, dfEffect, dfError int) (*erp.Grid, error) {
	effect, ok := terms[effectKey]
	if !ok {
		return nil, fmt.Errorf("unknown effect term %q", effectKey)
	}
	errTerm, ok := terms[ErrorTermKey(effectKey)]
	if !ok {
		return nil, fmt.Errorf("no error term for effect %q", effectKey)
	}

	f := erp.NewGrid(effect.Rows, effect.Cols)
	dfE, dfErr := float64(dfEffect), float64(dfError)
	for i, ss := range effect.Values {
		if ss < SSTolerance {
			ss = 0
		}
		mse := errTerm.Values[i] / dfErr
		if mse == 0 {
			f.Values[i] = math.NaN()
			continue
		}
		f.Values[i] = (ss / dfE) / mse
	}
	return f, nil
}
