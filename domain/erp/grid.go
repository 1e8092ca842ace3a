package erp

import (
	"encoding/json"
	"math"
)

// FloatSlice is a []float64 whose JSON encoding writes NaN as null, so
// degenerate-cell sentinels survive a round trip through JSON payloads.
type FloatSlice []float64

// MarshalJSON implements json.Marshaler.
func (fs FloatSlice) MarshalJSON() ([]byte, error) {
	boxed := make([]*float64, len(fs))
	for i := range fs {
		if !math.IsNaN(fs[i]) {
			boxed[i] = &fs[i]
		}
	}
	return json.Marshal(boxed)
}

// UnmarshalJSON implements json.Unmarshaler.
func (fs *FloatSlice) UnmarshalJSON(data []byte) error {
	var boxed []*float64
	if err := json.Unmarshal(data, &boxed); err != nil {
		return err
	}
	out := make(FloatSlice, len(boxed))
	for i, p := range boxed {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	*fs = out
	return nil
}

// Grid is an electrode x time matrix of scalars, the shape every
// sum-of-squares term and F statistic collapses to.
type Grid struct {
	Rows   int        `json:"rows"`
	Cols   int        `json:"cols"`
	Values FloatSlice `json:"values"`
}

// NewGrid allocates a zero grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Values: make(FloatSlice, rows*cols)}
}

// At returns the value at (electrode, timePoint).
func (g *Grid) At(e, t int) float64 { return g.Values[e*g.Cols+t] }

// Set writes the value at (electrode, timePoint).
func (g *Grid) Set(v float64, e, t int) { g.Values[e*g.Cols+t] = v }

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{Rows: g.Rows, Cols: g.Cols, Values: append(FloatSlice(nil), g.Values...)}
}

// MaxFinite returns the maximum over all cells, skipping NaN sentinels left
// by degenerate cells. When every cell is NaN the result is NaN.
func (g *Grid) MaxFinite() float64 {
	max := math.NaN()
	for _, v := range g.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}
