package ports

import (
	"context"

	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/result"
)

// ResultRepositoryPort persists permutation test runs for audit and replay.
type ResultRepositoryPort interface {
	Save(ctx context.Context, res *result.PermTestResult) error
	GetByID(ctx context.Context, id core.TestID) (*result.PermTestResult, error)
	ListByStudy(ctx context.Context, studyID core.StudyID, limit int) ([]*result.PermTestResult, error)
}
