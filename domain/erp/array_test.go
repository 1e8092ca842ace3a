package erp

import (
	"errors"
	"math"
	"testing"

	"github.com/HuseyinOrkun/FMUT/domain/core"
)

func TestNew_ShapeValidation(t *testing.T) {
	if _, err := New(2, 3, 4, 5); err != nil {
		t.Fatalf("valid 4-dim shape rejected: %v", err)
	}
	if _, err := New(2, 3); !errors.Is(err, core.ErrBadDimensionality) {
		t.Errorf("2 dims: got %v", err)
	}
	if _, err := New(2, 3, 2, 2, 2, 2, 2); !errors.Is(err, core.ErrBadDimensionality) {
		t.Errorf("7 dims: got %v", err)
	}
	if _, err := New(2, 0, 4, 5); !errors.Is(err, core.ErrShapeMismatch) {
		t.Errorf("zero axis: got %v", err)
	}
}

func TestFromData(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	m, err := FromData(data, 1, 1, 4, 2)
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	if got := m.At(0, 0, 2, 1); got != 6 {
		t.Errorf("At(0,0,2,1) = %v, want 6", got)
	}
	if _, err := FromData(data, 1, 1, 4, 3); !errors.Is(err, core.ErrShapeMismatch) {
		t.Errorf("wrong length: got %v", err)
	}
}

func TestAccessors(t *testing.T) {
	m, err := New(3, 4, 2, 5, 6)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.NDim() != 5 || m.NumFactors() != 2 {
		t.Errorf("NDim=%d NumFactors=%d, want 5/2", m.NDim(), m.NumFactors())
	}
	if m.NElectrodes() != 3 || m.NTimePoints() != 4 || m.NSubjects() != 6 {
		t.Errorf("axes %d/%d/%d, want 3/4/6", m.NElectrodes(), m.NTimePoints(), m.NSubjects())
	}
	levels := m.FactorLevels()
	if len(levels) != 2 || levels[0] != 2 || levels[1] != 5 {
		t.Errorf("FactorLevels() = %v, want [2 5]", levels)
	}
	if m.NumCells() != 10 {
		t.Errorf("NumCells() = %d, want 10", m.NumCells())
	}
}

// Block must hand back the contiguous slice for one electrode/time pair,
// cell-major with subject fastest.
func TestBlockLayout(t *testing.T) {
	m, err := New(2, 2, 2, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for e := 0; e < 2; e++ {
		for tp := 0; tp < 2; tp++ {
			for a := 0; a < 2; a++ {
				for s := 0; s < 3; s++ {
					m.Set(float64(1000*e+100*tp+10*a+s), e, tp, a, s)
				}
			}
		}
	}

	blk := m.Block(1, 0)
	if len(blk) != 6 {
		t.Fatalf("block length %d, want 6", len(blk))
	}
	nS := m.NSubjects()
	for a := 0; a < 2; a++ {
		for s := 0; s < 3; s++ {
			want := float64(1000 + 10*a + s)
			if got := blk[a*nS+s]; got != want {
				t.Errorf("blk[%d] = %v, want %v", a*nS+s, got, want)
			}
		}
	}

	// Writes through the block alias the array.
	blk[0] = -1
	if m.At(1, 0, 0, 0) != -1 {
		t.Error("block write did not reach the backing array")
	}
}

func TestClone_Independent(t *testing.T) {
	m, _ := New(1, 1, 2, 2)
	m.Set(5, 0, 0, 1, 1)
	c := m.Clone()
	c.Set(9, 0, 0, 1, 1)
	if m.At(0, 0, 1, 1) != 5 {
		t.Error("clone shares storage with the original")
	}
}

func TestCollapseFactors(t *testing.T) {
	m, err := New(1, 1, 2, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Values chosen so each B-average is distinct per (a, s).
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for s := 0; s < 2; s++ {
				m.Set(float64(100*a+10*b+s), 0, 0, a, b, s)
			}
		}
	}

	reduced, err := m.CollapseFactors([]int{0})
	if err != nil {
		t.Fatalf("CollapseFactors: %v", err)
	}
	if reduced.NDim() != 4 {
		t.Fatalf("reduced NDim %d, want 4", reduced.NDim())
	}
	for a := 0; a < 2; a++ {
		for s := 0; s < 2; s++ {
			want := float64(100*a+s) + 5 // average of 10b over b in {0,1}
			if got := reduced.At(0, 0, a, s); math.Abs(got-want) > 1e-12 {
				t.Errorf("reduced (a=%d,s=%d) = %v, want %v", a, s, got, want)
			}
		}
	}
}

func TestCollapseFactors_KeepAllClones(t *testing.T) {
	m, _ := New(1, 1, 2, 3, 2)
	out, err := m.CollapseFactors([]int{0, 1})
	if err != nil {
		t.Fatalf("CollapseFactors: %v", err)
	}
	if out == m {
		t.Error("keeping every factor should still return a copy")
	}
	if out.NumCells() != m.NumCells() {
		t.Errorf("cell count changed: %d vs %d", out.NumCells(), m.NumCells())
	}
}

func TestCollapseFactors_BadKeep(t *testing.T) {
	m, _ := New(1, 1, 2, 3, 2)
	if _, err := m.CollapseFactors([]int{2}); !errors.Is(err, core.ErrBadEffect) {
		t.Errorf("out-of-range factor: got %v", err)
	}
	if _, err := m.CollapseFactors([]int{0, 0}); !errors.Is(err, core.ErrBadEffect) {
		t.Errorf("duplicate factor: got %v", err)
	}
}
