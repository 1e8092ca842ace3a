package erp

import (
	"fmt"

	"github.com/HuseyinOrkun/FMUT/domain/core"
)

// MeasurementArray holds reduced electrophysiological measurements in a dense
// float64 buffer with fixed axis order: electrode, time point, one axis per
// within-subjects factor (slowest-varying first), subject last. Values are
// one measurement per (electrode, time, condition, subject) cell; no missing
// values are permitted.
type MeasurementArray struct {
	shape   []int
	strides []int
	data    []float64
}

// New allocates a zero-filled array with the given shape
// [electrodes, timePoints, levels..., subjects].
func New(shape ...int) (*MeasurementArray, error) {
	if len(shape) < 4 || len(shape) > 6 {
		return nil, core.NewDimensionalityError(len(shape))
	}
	size := 1
	for i, s := range shape {
		if s < 1 {
			return nil, fmt.Errorf("%w: axis %d has size %d", core.ErrShapeMismatch, i, s)
		}
		size *= s
	}
	m := &MeasurementArray{
		shape: append([]int(nil), shape...),
		data:  make([]float64, size),
	}
	m.strides = computeStrides(m.shape)
	return m, nil
}

// FromData wraps an existing flat buffer (row-major, subject fastest).
func FromData(data []float64, shape ...int) (*MeasurementArray, error) {
	m, err := New(shape...)
	if err != nil {
		return nil, err
	}
	if len(data) != len(m.data) {
		return nil, fmt.Errorf("%w: buffer holds %d values, shape needs %d", core.ErrShapeMismatch, len(data), len(m.data))
	}
	m.data = data
	return m, nil
}

func computeStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// Shape returns a copy of the array's shape.
func (m *MeasurementArray) Shape() []int {
	return append([]int(nil), m.shape...)
}

// NDim returns the number of axes.
func (m *MeasurementArray) NDim() int { return len(m.shape) }

// NumFactors returns the number of within-subjects factor axes.
func (m *MeasurementArray) NumFactors() int { return len(m.shape) - 3 }

// NElectrodes returns the size of the electrode axis.
func (m *MeasurementArray) NElectrodes() int { return m.shape[0] }

// NTimePoints returns the size of the time axis.
func (m *MeasurementArray) NTimePoints() int { return m.shape[1] }

// NSubjects returns the size of the subject axis.
func (m *MeasurementArray) NSubjects() int { return m.shape[len(m.shape)-1] }

// FactorLevels returns the level count of every factor axis, declared order.
func (m *MeasurementArray) FactorLevels() []int {
	return append([]int(nil), m.shape[2:len(m.shape)-1]...)
}

// NumCells returns the number of condition cells (product of factor levels).
func (m *MeasurementArray) NumCells() int {
	n := 1
	for _, l := range m.FactorLevels() {
		n *= l
	}
	return n
}

func (m *MeasurementArray) offset(idx []int) int {
	off := 0
	for i, x := range idx {
		off += x * m.strides[i]
	}
	return off
}

// At returns the value at a full multi-index.
func (m *MeasurementArray) At(idx ...int) float64 {
	return m.data[m.offset(idx)]
}

// Set writes the value at a full multi-index.
func (m *MeasurementArray) Set(v float64, idx ...int) {
	m.data[m.offset(idx)] = v
}

// Data exposes the backing buffer. Callers must treat it as read-only unless
// they own the array.
func (m *MeasurementArray) Data() []float64 { return m.data }

// Block returns the contiguous sub-buffer for one (electrode, time) pair.
// Within the block, values are laid out cell-major with subject fastest:
// block[cell*NSubjects()+subject].
func (m *MeasurementArray) Block(e, t int) []float64 {
	n := m.NumCells() * m.NSubjects()
	start := e*m.strides[0] + t*m.strides[1]
	return m.data[start : start+n]
}

// Clone returns a deep copy.
func (m *MeasurementArray) Clone() *MeasurementArray {
	c := &MeasurementArray{
		shape:   append([]int(nil), m.shape...),
		strides: append([]int(nil), m.strides...),
		data:    append([]float64(nil), m.data...),
	}
	return c
}

// CollapseFactors averages the array over every factor axis NOT listed in
// keep (indices into the declared factor order) and returns the reduced
// array. Kept factors stay in their declared relative order. This is how the
// caller extracts a lower-order effect from a factorial design: average out
// the uninvolved factors, then test the reduced array at its natural tier.
func (m *MeasurementArray) CollapseFactors(keep []int) (*MeasurementArray, error) {
	levels := m.FactorLevels()
	kept := make(map[int]bool, len(keep))
	for _, f := range keep {
		if f < 0 || f >= len(levels) || kept[f] {
			return nil, fmt.Errorf("%w: factor index %d", core.ErrBadEffect, f)
		}
		kept[f] = true
	}
	if len(keep) == len(levels) {
		return m.Clone(), nil
	}

	outShape := []int{m.NElectrodes(), m.NTimePoints()}
	for f, l := range levels {
		if kept[f] {
			outShape = append(outShape, l)
		}
	}
	outShape = append(outShape, m.NSubjects())
	out, err := New(outShape...)
	if err != nil {
		return nil, err
	}

	nS := m.NSubjects()
	dropped := 1
	for f, l := range levels {
		if !kept[f] {
			dropped *= l
		}
	}

	// Map every full condition cell onto its kept-cell index once.
	cellMap := make([]int, m.NumCells())
	idx := make([]int, len(levels))
	for cell := range cellMap {
		outCell := 0
		for f := 0; f < len(levels); f++ {
			if kept[f] {
				outCell = outCell*levels[f] + idx[f]
			}
		}
		cellMap[cell] = outCell
		for f := len(levels) - 1; f >= 0; f-- {
			idx[f]++
			if idx[f] < levels[f] {
				break
			}
			idx[f] = 0
		}
	}

	for e := 0; e < m.NElectrodes(); e++ {
		for t := 0; t < m.NTimePoints(); t++ {
			src := m.Block(e, t)
			dst := out.Block(e, t)
			for cell, outCell := range cellMap {
				for s := 0; s < nS; s++ {
					dst[outCell*nS+s] += src[cell*nS+s]
				}
			}
			for i := range dst {
				dst[i] /= float64(dropped)
			}
		}
	}
	return out, nil
}
