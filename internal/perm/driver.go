package perm

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/design"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
	"github.com/HuseyinOrkun/FMUT/internal/anova"
	"github.com/HuseyinOrkun/FMUT/ports"
)

// streamName names the driver's RNG streams; per-iteration seeds are derived
// from the base seed so results are identical at any worker count.
const streamName = "fmax-perm"

// defaultProgressEvery is how often the progress callback fires when the
// caller does not say otherwise.
const defaultProgressEvery = 100

// Options configures one permutation run.
type Options struct {
	NumPermutations int
	Seed            int64
	// Workers bounds the permutation worker pool; <= 0 means NumCPU.
	Workers int
	// Progress, when set, receives coarse-grained completion counts. It has
	// no effect on results.
	Progress      ports.ProgressFunc
	ProgressEvery int
}

// Outcome is the functional result of a permutation run.
type Outcome struct {
	Design        design.Design
	Effect        string
	NumeratorDF   int
	DenominatorDF int

	// FObserved is the unpermuted F grid for the target effect.
	FObserved *erp.Grid
	// NullDistribution has exactly NumPermutations entries, unsorted. The
	// first entry is always the maximum of FObserved over the grid, so the
	// observed statistic sits inside its own reference distribution.
	NullDistribution []float64
}

// Run executes the Fmax permutation test on a measurement array. The array
// is routed by dimensionality (4/5/6 dims), residualized when the target is
// an interaction, and then permuted NumPermutations-1 times. Iteration one
// uses the unpermuted data and performs no random draws.
func Run(ctx context.Context, m *erp.MeasurementArray, rngPort ports.RNGPort, opts Options) (*Outcome, error) {
	if opts.NumPermutations < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrBadPermCount, opts.NumPermutations)
	}

	dp, err := anova.Inspect(m)
	if err != nil {
		return nil, err
	}
	prepared := dp.Prepare(m)

	terms, err := anova.Terms(prepared)
	if err != nil {
		return nil, err
	}
	fObs, err := anova.FGrid(terms, dp.EffectKey, dp.NumeratorDF, dp.DenominatorDF)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Design:           dp.Design,
		Effect:           dp.EffectKey,
		NumeratorDF:      dp.NumeratorDF,
		DenominatorDF:    dp.DenominatorDF,
		FObserved:        fObs,
		NullDistribution: make([]float64, opts.NumPermutations),
	}
	out.NullDistribution[0] = fObs.MaxFinite()

	progressEvery := opts.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = defaultProgressEvery
	}
	var completed atomic.Int64
	report := func() {
		done := int(completed.Add(1))
		if opts.Progress != nil && (done%progressEvery == 0 || done == opts.NumPermutations) {
			opts.Progress(done, opts.NumPermutations)
		}
	}
	report() // iteration one, the observed grid

	if opts.NumPermutations == 1 {
		return out, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > opts.NumPermutations-1 {
		workers = opts.NumPermutations - 1
	}

	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			// Each worker owns a private permuted buffer; the prepared
			// array is shared read-only across all of them.
			scratch := prepared.Clone()
			for iter := range jobs {
				rng, err := rngPort.SeededStream(gctx, streamName, opts.Seed+int64(iter))
				if err != nil {
					return fmt.Errorf("rng stream for iteration %d: %w", iter, err)
				}
				fMax, err := permutedFMax(prepared, scratch, dp, rng)
				if err != nil {
					return err
				}
				out.NullDistribution[iter] = fMax
				report()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for iter := 1; iter < opts.NumPermutations; iter++ {
			select {
			case jobs <- iter:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// permutedFMax draws one random permutation of the condition cells per
// subject (independently across subjects, never shared), applies it to every
// electrode/time block, recomputes the ANOVA, and collapses the target
// effect's F grid to its maximum.
func permutedFMax(src, dst *erp.MeasurementArray, dp *anova.Dispatch, rng *rand.Rand) (float64, error) {
	nCells := src.NumCells()
	nS := src.NSubjects()

	perms := make([]int, nS*nCells)
	for s := 0; s < nS; s++ {
		copy(perms[s*nCells:(s+1)*nCells], rng.Perm(nCells))
	}

	for e := 0; e < src.NElectrodes(); e++ {
		for t := 0; t < src.NTimePoints(); t++ {
			in := src.Block(e, t)
			outBlk := dst.Block(e, t)
			for s := 0; s < nS; s++ {
				perm := perms[s*nCells : (s+1)*nCells]
				for cell := 0; cell < nCells; cell++ {
					outBlk[cell*nS+s] = in[perm[cell]*nS+s]
				}
			}
		}
	}

	terms, err := anova.Terms(dst)
	if err != nil {
		return 0, err
	}
	f, err := anova.FGrid(terms, dp.EffectKey, dp.NumeratorDF, dp.DenominatorDF)
	if err != nil {
		return 0, err
	}
	return f.MaxFinite(), nil
}
