package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/design"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
	"github.com/HuseyinOrkun/FMUT/domain/result"
)

// Schema for the permutation test result store.
const Schema = `
CREATE TABLE IF NOT EXISTS perm_test_results (
	test_id            TEXT PRIMARY KEY,
	study_id           TEXT NOT NULL DEFAULT '',
	effect             TEXT NOT NULL,
	design_levels      JSONB NOT NULL,
	num_subjects       INTEGER NOT NULL,
	num_electrodes     INTEGER NOT NULL,
	num_time_points    INTEGER NOT NULL,
	num_permutations   INTEGER NOT NULL,
	seed               BIGINT NOT NULL,
	numerator_df       INTEGER NOT NULL,
	denominator_df     INTEGER NOT NULL,
	f_observed         JSONB NOT NULL,
	null_distribution  JSONB NOT NULL,
	p_values           JSONB,
	critical_f         DOUBLE PRECISION,
	alpha              DOUBLE PRECISION,
	null_summary       JSONB NOT NULL,
	runtime_ms         BIGINT NOT NULL,
	computed_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_perm_test_results_study
	ON perm_test_results (study_id, computed_at DESC);
`

// ResultRepository persists permutation test runs in Postgres.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Migrate applies the result store schema.
func (r *ResultRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply result store schema: %w", err)
	}
	return nil
}

// Save inserts a completed run.
func (r *ResultRepository) Save(ctx context.Context, res *result.PermTestResult) error {
	query := `
		INSERT INTO perm_test_results (
			test_id, study_id, effect, design_levels, num_subjects,
			num_electrodes, num_time_points, num_permutations, seed,
			numerator_df, denominator_df, f_observed, null_distribution,
			p_values, critical_f, alpha, null_summary, runtime_ms, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	levelsJSON, err := json.Marshal(res.Design.Levels)
	if err != nil {
		return fmt.Errorf("failed to marshal design levels: %w", err)
	}
	fObsJSON, err := json.Marshal(res.FObserved)
	if err != nil {
		return fmt.Errorf("failed to marshal observed F grid: %w", err)
	}
	nullJSON, err := json.Marshal(res.NullDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal null distribution: %w", err)
	}
	var pValuesJSON []byte
	if res.PValues != nil {
		pValuesJSON, err = json.Marshal(res.PValues)
		if err != nil {
			return fmt.Errorf("failed to marshal p-value grid: %w", err)
		}
	}
	summaryJSON, err := json.Marshal(res.NullSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal null summary: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		res.TestID.String(),
		res.StudyID.String(),
		res.Effect,
		levelsJSON,
		res.NumSubjects,
		res.NElectrodes,
		res.NTimePoints,
		res.NumPermutations,
		res.Seed,
		res.NumeratorDF,
		res.DenominatorDF,
		fObsJSON,
		nullJSON,
		pValuesJSON,
		res.CriticalF,
		res.Alpha,
		summaryJSON,
		res.RuntimeMs,
		res.ComputedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert permutation test result: %w", err)
	}
	return nil
}

type resultRow struct {
	TestID           string         `db:"test_id"`
	StudyID          string         `db:"study_id"`
	Effect           string         `db:"effect"`
	DesignLevels     []byte         `db:"design_levels"`
	NumSubjects      int            `db:"num_subjects"`
	NumElectrodes    int            `db:"num_electrodes"`
	NumTimePoints    int            `db:"num_time_points"`
	NumPermutations  int            `db:"num_permutations"`
	Seed             int64          `db:"seed"`
	NumeratorDF      int            `db:"numerator_df"`
	DenominatorDF    int            `db:"denominator_df"`
	FObserved        []byte         `db:"f_observed"`
	NullDistribution []byte         `db:"null_distribution"`
	PValues          []byte         `db:"p_values"`
	CriticalF        sql.NullFloat64 `db:"critical_f"`
	Alpha            sql.NullFloat64 `db:"alpha"`
	NullSummary      []byte         `db:"null_summary"`
	RuntimeMs        int64          `db:"runtime_ms"`
	ComputedAt       time.Time      `db:"computed_at"`
}

// GetByID loads one run.
func (r *ResultRepository) GetByID(ctx context.Context, id core.TestID) (*result.PermTestResult, error) {
	query := `SELECT * FROM perm_test_results WHERE test_id = $1`

	var row resultRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load permutation test result: %w", err)
	}
	return row.toDomain()
}

// ListByStudy returns the most recent runs for a study.
func (r *ResultRepository) ListByStudy(ctx context.Context, studyID core.StudyID, limit int) ([]*result.PermTestResult, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT * FROM perm_test_results WHERE study_id = $1 ORDER BY computed_at DESC LIMIT $2`

	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, query, studyID.String(), limit); err != nil {
		return nil, fmt.Errorf("failed to list permutation test results: %w", err)
	}
	results := make([]*result.PermTestResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (row *resultRow) toDomain() (*result.PermTestResult, error) {
	res := &result.PermTestResult{
		TestID:          core.TestID(row.TestID),
		StudyID:         core.StudyID(row.StudyID),
		Effect:          row.Effect,
		NumSubjects:     row.NumSubjects,
		NElectrodes:     row.NumElectrodes,
		NTimePoints:     row.NumTimePoints,
		NumPermutations: row.NumPermutations,
		Seed:            row.Seed,
		NumeratorDF:     row.NumeratorDF,
		DenominatorDF:   row.DenominatorDF,
		RuntimeMs:       row.RuntimeMs,
		ComputedAt:      core.NewTimestamp(row.ComputedAt),
	}
	if row.CriticalF.Valid {
		res.CriticalF = row.CriticalF.Float64
	}
	if row.Alpha.Valid {
		res.Alpha = row.Alpha.Float64
	}

	var levels []int
	if err := json.Unmarshal(row.DesignLevels, &levels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design levels: %w", err)
	}
	res.Design = design.Design{Levels: levels}

	res.FObserved = &erp.Grid{}
	if err := json.Unmarshal(row.FObserved, res.FObserved); err != nil {
		return nil, fmt.Errorf("failed to unmarshal observed F grid: %w", err)
	}
	if err := json.Unmarshal(row.NullDistribution, &res.NullDistribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal null distribution: %w", err)
	}
	if len(row.PValues) > 0 {
		res.PValues = &erp.Grid{}
		if err := json.Unmarshal(row.PValues, res.PValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal p-value grid: %w", err)
		}
	}
	if err := json.Unmarshal(row.NullSummary, &res.NullSummary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal null summary: %w", err)
	}
	return res, nil
}
