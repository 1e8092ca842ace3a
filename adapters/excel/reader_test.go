package excel

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// writeWorkbook builds a complete one-factor workbook: nSubjects x levels
// sheets, each an electrodes x timePoints matrix. value encodes every
// coordinate so the reader's index mapping is fully checked.
func writeWorkbook(t *testing.T, path string, electrodes, timePoints, levels, subjects int, skip map[string]bool) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for s := 0; s < subjects; s++ {
		for l := 0; l < levels; l++ {
			name := SheetName(s, l)
			if skip[name] {
				continue
			}
			if first {
				require.NoError(t, f.SetSheetName("Sheet1", name))
				first = false
			} else {
				_, err := f.NewSheet(name)
				require.NoError(t, err)
			}
			for e := 0; e < electrodes; e++ {
				for tp := 0; tp < timePoints; tp++ {
					cell, err := excelize.CoordinatesToCellName(tp+1, e+1)
					require.NoError(t, err)
					require.NoError(t, f.SetCellValue(name, cell, cellValue(e, tp, l, s)))
				}
			}
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func cellValue(e, tp, l, s int) float64 {
	return float64(1000*e + 100*tp + 10*l + s)
}

func TestReadMeasurements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp.xlsx")
	writeWorkbook(t, path, 2, 3, 2, 2, nil)

	arr, err := NewMeasurementReader().ReadMeasurements(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, []int{2, 3, 2, 2}, arr.Shape())
	for e := 0; e < 2; e++ {
		for tp := 0; tp < 3; tp++ {
			for l := 0; l < 2; l++ {
				for s := 0; s < 2; s++ {
					require.Equal(t, cellValue(e, tp, l, s), arr.At(e, tp, l, s),
						"value at (e=%d,t=%d,l=%d,s=%d)", e, tp, l, s)
				}
			}
		}
	}
}

func TestReadMeasurements_MissingCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp.xlsx")
	writeWorkbook(t, path, 2, 2, 2, 3, map[string]bool{SheetName(2, 1): true})

	_, err := NewMeasurementReader().ReadMeasurements(context.Background(), path)
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrIncompleteData), "got %v", err)
}

func TestReadMeasurements_FileNotFound(t *testing.T) {
	_, err := NewMeasurementReader().ReadMeasurements(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
}

func TestReadMeasurements_BadSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "subject one"))
	require.NoError(t, f.SetCellValue("subject one", "A1", 1.0))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewMeasurementReader().ReadMeasurements(context.Background(), path)
	require.Error(t, err)
}

func TestReadMeasurements_RoundTripsEngineInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp.xlsx")
	writeWorkbook(t, path, 1, 2, 3, 4, nil)

	arr, err := NewMeasurementReader().ReadMeasurements(context.Background(), path)
	require.NoError(t, err)

	// The loaded array must satisfy the engine's layout contract.
	var _ *erp.MeasurementArray = arr
	blk := arr.Block(0, 1)
	nS := arr.NSubjects()
	for l := 0; l < 3; l++ {
		for s := 0; s < 4; s++ {
			require.Equal(t, cellValue(0, 1, l, s), blk[l*nS+s])
		}
	}
}

func TestSheetName(t *testing.T) {
	cases := []struct {
		subject int
		levels  []int
		want    string
	}{
		{0, []int{0}, "S1 A1"},
		{2, []int{1, 0}, "S3 A2 B1"},
		{4, []int{0, 1, 2}, "S5 A1 B2 C3"},
	}
	for _, tc := range cases {
		if got := SheetName(tc.subject, tc.levels...); got != tc.want {
			t.Errorf("SheetName(%d, %v) = %q, want %q", tc.subject, tc.levels, got, tc.want)
		}
	}
}
