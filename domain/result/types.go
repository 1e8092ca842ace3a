package result

import (
	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/design"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// NullDistributionSummary condenses a permutation null distribution for
// reporting and persistence.
type NullDistributionSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// PermTestResult is the complete output of one Fmax permutation test run.
type PermTestResult struct {
	TestID  core.TestID  `json:"test_id"`
	StudyID core.StudyID `json:"study_id,omitempty"`

	Design      design.Design `json:"design"`
	Effect      string        `json:"effect"` // "A", "AxB", "AxBxC"
	NumSubjects int           `json:"num_subjects"`
	NElectrodes int           `json:"num_electrodes"`
	NTimePoints int           `json:"num_time_points"`

	NumPermutations int   `json:"num_permutations"`
	Seed            int64 `json:"seed"`

	NumeratorDF   int `json:"numerator_df"`
	DenominatorDF int `json:"denominator_df"`

	FObserved        *erp.Grid      `json:"f_observed"`
	NullDistribution erp.FloatSlice `json:"null_distribution"`

	// Corrected (family-wise) p-values, one per electrode/time cell, from the
	// rank of each observed F in the Fmax null distribution.
	PValues *erp.Grid `json:"p_values,omitempty"`
	// CriticalF is the Fmax threshold at the configured alpha.
	CriticalF float64 `json:"critical_f,omitempty"`
	Alpha     float64 `json:"alpha,omitempty"`

	NullSummary NullDistributionSummary `json:"null_summary"`

	RuntimeMs  int64          `json:"runtime_ms"`
	ComputedAt core.Timestamp `json:"computed_at"`
}
