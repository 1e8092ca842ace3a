package ports

import (
	"context"

	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// MeasurementReaderPort supplies measurement arrays already reduced upstream:
// one value per (electrode, time, condition, subject) cell, restricted to the
// time window and channel subset under test. The engine performs no windowing
// or channel filtering of its own.
type MeasurementReaderPort interface {
	ReadMeasurements(ctx context.Context, source string) (*erp.MeasurementArray, error)
}
