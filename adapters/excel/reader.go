package excel

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HuseyinOrkun/FMUT/domain/core"
	"github.com/HuseyinOrkun/FMUT/domain/erp"
	"github.com/HuseyinOrkun/FMUT/internal/errors"
)

// MeasurementReader loads a measurement array from an Excel workbook.
//
// Workbook layout: one sheet per subject x condition cell, named
// "S<subject> A<level>[ B<level>[ C<level>]]" with 1-based indices, e.g.
// "S3 A2 B1". Each sheet holds a numeric matrix with one row per electrode
// and one column per time point. Factor level counts, subject count, and
// grid dimensions are inferred from the sheet names and the first sheet's
// matrix; every combination must be present and every sheet must match the
// grid dimensions, since the engine permits no missing cells.
type MeasurementReader struct{}

// NewMeasurementReader creates a workbook reader.
func NewMeasurementReader() *MeasurementReader {
	return &MeasurementReader{}
}

type sheetKey struct {
	subject int   // 0-based
	levels  []int // 0-based, declared factor order
}

// ReadMeasurements implements ports.MeasurementReaderPort.
func (r *MeasurementReader) ReadMeasurements(_ context.Context, source string) (*erp.MeasurementArray, error) {
	start := time.Now()
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return nil, errors.IngestionError(fmt.Sprintf("workbook not found: %s", source), err)
	}

	f, err := excelize.OpenFile(source)
	if err != nil {
		return nil, errors.IngestionError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	keys := make(map[string]sheetKey, len(sheets))
	nFactors := -1
	nSubjects := 0
	var levels []int
	for _, name := range sheets {
		key, err := parseSheetName(name)
		if err != nil {
			return nil, err
		}
		if nFactors == -1 {
			nFactors = len(key.levels)
			levels = make([]int, nFactors)
		} else if len(key.levels) != nFactors {
			return nil, errors.IngestionError(
				fmt.Sprintf("sheet %q declares %d factors, earlier sheets declare %d", name, len(key.levels), nFactors), nil)
		}
		if key.subject+1 > nSubjects {
			nSubjects = key.subject + 1
		}
		for i, l := range key.levels {
			if l+1 > levels[i] {
				levels[i] = l + 1
			}
		}
		keys[name] = key
	}
	if nFactors < 1 {
		return nil, errors.IngestionError("workbook has no condition sheets", nil)
	}

	expected := nSubjects
	for _, l := range levels {
		expected *= l
	}
	if len(sheets) != expected {
		return nil, errors.IngestionError(
			fmt.Sprintf("workbook has %d sheets, complete design needs %d", len(sheets), expected),
			core.ErrIncompleteData)
	}

	var arr *erp.MeasurementArray
	var nElectrodes, nTimePoints int
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.IngestionError(fmt.Sprintf("failed to read sheet %q", name), err)
		}
		if arr == nil {
			nElectrodes = len(rows)
			if nElectrodes == 0 {
				return nil, errors.IngestionError(fmt.Sprintf("sheet %q is empty", name), nil)
			}
			nTimePoints = len(rows[0])
			shape := append([]int{nElectrodes, nTimePoints}, levels...)
			shape = append(shape, nSubjects)
			arr, err = erp.New(shape...)
			if err != nil {
				return nil, err
			}
		}
		if len(rows) != nElectrodes {
			return nil, errors.IngestionError(
				fmt.Sprintf("sheet %q has %d rows, expected %d", name, len(rows), nElectrodes), nil)
		}

		key := keys[name]
		idx := make([]int, 0, 3+len(levels))
		for e, row := range rows {
			if len(row) != nTimePoints {
				return nil, errors.IngestionError(
					fmt.Sprintf("sheet %q row %d has %d columns, expected %d", name, e+1, len(row), nTimePoints), nil)
			}
			for t, cellText := range row {
				v, err := strconv.ParseFloat(strings.TrimSpace(cellText), 64)
				if err != nil {
					return nil, errors.IngestionError(
						fmt.Sprintf("sheet %q cell (%d,%d): non-numeric value %q", name, e+1, t+1, cellText), err)
				}
				idx = idx[:0]
				idx = append(idx, e, t)
				idx = append(idx, key.levels...)
				idx = append(idx, key.subject)
				arr.Set(v, idx...)
			}
		}
	}

	log.Printf("[MeasurementReader] loaded %s in %.2fms (%d electrodes, %d time points, %v levels, %d subjects)",
		source, float64(time.Since(start).Nanoseconds())/1e6, nElectrodes, nTimePoints, levels, nSubjects)
	return arr, nil
}

// SheetName renders the canonical sheet name for a subject/condition cell,
// both 0-based. Exported so writers and tests build workbooks the reader
// understands.
func SheetName(subject int, levels ...int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "S%d", subject+1)
	names := []string{"A", "B", "C"}
	for i, l := range levels {
		fmt.Fprintf(&b, " %s%d", names[i], l+1)
	}
	return b.String()
}

func parseSheetName(name string) (sheetKey, error) {
	parts := strings.Fields(name)
	if len(parts) < 2 || len(parts) > 4 {
		return sheetKey{}, errors.IngestionError(
			fmt.Sprintf("sheet %q does not match \"S<n> A<i> [B<j> [C<k>]]\"", name), nil)
	}
	key := sheetKey{}
	prefixes := []string{"S", "A", "B", "C"}
	for i, part := range parts {
		if !strings.HasPrefix(part, prefixes[i]) {
			return sheetKey{}, errors.IngestionError(
				fmt.Sprintf("sheet %q: token %q should start with %q", name, part, prefixes[i]), nil)
		}
		n, err := strconv.Atoi(part[len(prefixes[i]):])
		if err != nil || n < 1 {
			return sheetKey{}, errors.IngestionError(
				fmt.Sprintf("sheet %q: bad index in token %q", name, part), err)
		}
		if i == 0 {
			key.subject = n - 1
		} else {
			key.levels = append(key.levels, n-1)
		}
	}
	return key, nil
}
