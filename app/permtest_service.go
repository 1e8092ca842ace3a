package app

import (
	"context"
	"log"
	"time"

	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/design"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
	"github.com/HuseyinOrkun/FMUT/domain/result"
	"github.com/HuseyinOrkun/FMUT/internal/anova"
	"github.com/HuseyinOrkun/FMUT/internal/correction"
	"github.com/HuseyinOrkun/FMUT/internal/perm"
	"github.com/HuseyinOrkun/FMUT/ports"
)

// PermTestService runs a complete Fmax permutation test: effect reduction,
// dispatch, the permutation loop, rank-based correction, and optional
// persistence of the result artifact.
type PermTestService struct {
	rngPort ports.RNGPort
	repo    ports.ResultRepositoryPort // nil disables persistence
}

// NewPermTestService creates a permutation test service.
func NewPermTestService(rngPort ports.RNGPort, repo ports.ResultRepositoryPort) *PermTestService {
	return &PermTestService{rngPort: rngPort, repo: repo}
}

// TestRequest defines the inputs for one deterministic permutation test.
type TestRequest struct {
	Data *erp.MeasurementArray
	// Effect selects which effect to test. Empty means the array's full
	// interaction. A lower-order effect averages the uninvolved factors out
	// first and tests the reduced array at its natural tier.
	Effect  design.Effect
	StudyID core.StudyID
	TestID  core.TestID // optional, generated when empty

	NumPermutations int
	Seed            int64
	Workers         int
	Alpha           float64
	Progress        ports.ProgressFunc
	ProgressEvery   int
}

// RunTest executes the test and returns the retained outputs: the observed F
// grid, both degrees of freedom, the Fmax null distribution, and the
// corrected p-value grid.
func (s *PermTestService) RunTest(ctx context.Context, req TestRequest) (*result.PermTestResult, error) {
	startTime := time.Now()

	testID := req.TestID
	if testID == "" {
		testID = core.TestID(core.NewID())
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = 0.05
	}

	data := req.Data
	effectLabel := ""
	if len(req.Effect) > 0 && len(req.Effect) < data.NumFactors() {
		reduced, err := anova.ReduceToEffect(data, req.Effect)
		if err != nil {
			return nil, err
		}
		data = reduced
		// Keep the original design's factor names in the report; the reduced
		// array relabels its remaining factors from A.
		effectLabel = req.Effect.Label()
	}

	outcome, err := perm.Run(ctx, data, s.rngPort, perm.Options{
		NumPermutations: req.NumPermutations,
		Seed:            req.Seed,
		Workers:         req.Workers,
		Progress:        req.Progress,
		ProgressEvery:   req.ProgressEvery,
	})
	if err != nil {
		return nil, err
	}

	summary, err := correction.Summarize(outcome.NullDistribution)
	if err != nil {
		return nil, err
	}

	res := &result.PermTestResult{
		TestID:           testID,
		StudyID:          req.StudyID,
		Design:           outcome.Design,
		Effect:           outcome.Effect,
		NumSubjects:      data.NSubjects(),
		NElectrodes:      data.NElectrodes(),
		NTimePoints:      data.NTimePoints(),
		NumPermutations:  req.NumPermutations,
		Seed:             req.Seed,
		NumeratorDF:      outcome.NumeratorDF,
		DenominatorDF:    outcome.DenominatorDF,
		FObserved:        outcome.FObserved,
		NullDistribution: outcome.NullDistribution,
		PValues:          correction.PValueGrid(outcome.FObserved, outcome.NullDistribution),
		CriticalF:        correction.CriticalF(outcome.NullDistribution, alpha),
		Alpha:            alpha,
		NullSummary:      summary,
		RuntimeMs:        time.Since(startTime).Milliseconds(),
		ComputedAt:       core.Now(),
	}
	if effectLabel != "" {
		res.Effect = effectLabel
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, res); err != nil {
			return nil, err
		}
	}

	log.Printf("[PermTestService] %s effect=%s perms=%d seed=%d runtime=%dms",
		testID.String(), res.Effect, res.NumPermutations, res.Seed, res.RuntimeMs)
	return res, nil
}
