package parametric

import (
	"math"
	"math/rand"
	"testing"
)

// naiveOneWay computes the one-way repeated-measures table with plain
// textbook formulas, as a cross-check written against the package's
// inclusion-exclusion machinery.
func naiveOneWay(block []float64, a, nS int) (ssA, ssS, ssAS, fA float64) {
	grand := 0.0
	for _, v := range block {
		grand += v
	}
	grand /= float64(a * nS)

	condMean := make([]float64, a)
	subjMean := make([]float64, nS)
	for ai := 0; ai < a; ai++ {
		for s := 0; s < nS; s++ {
			v := block[ai*nS+s]
			condMean[ai] += v / float64(nS)
			subjMean[s] += v / float64(a)
		}
	}
	for _, m := range condMean {
		ssA += float64(nS) * (m - grand) * (m - grand)
	}
	for _, m := range subjMean {
		ssS += float64(a) * (m - grand) * (m - grand)
	}
	for ai := 0; ai < a; ai++ {
		for s := 0; s < nS; s++ {
			d := block[ai*nS+s] - condMean[ai] - subjMean[s] + grand
			ssAS += d * d
		}
	}
	msA := ssA / float64(a-1)
	msAS := ssAS / float64((a-1)*(nS-1))
	fA = msA / msAS
	return
}

func randomBlock(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	block := make([]float64, n)
	for i := range block {
		block[i] = rng.NormFloat64() + float64(i%3)
	}
	return block
}

func TestCellANOVA_OneWayAgainstTextbookFormulas(t *testing.T) {
	a, nS := 4, 6
	block := randomBlock(a*nS, 17)

	table, err := CellANOVA(block, []int{a}, nS)
	if err != nil {
		t.Fatalf("CellANOVA: %v", err)
	}
	ssA, ssS, ssAS, fA := naiveOneWay(block, a, nS)

	checks := []struct {
		label string
		got   float64
		want  float64
	}{
		{"A SS", table["A"].SS, ssA},
		{"S SS", table["S"].SS, ssS},
		{"AxS SS", table["AxS"].SS, ssAS},
		{"A F", table["A"].F, fA},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9*(1+math.Abs(c.want)) {
			t.Errorf("%s: got %v, want %v", c.label, c.got, c.want)
		}
	}
	if table["A"].DF != a-1 {
		t.Errorf("A df %d, want %d", table["A"].DF, a-1)
	}
	if table["AxS"].DF != (a-1)*(nS-1) {
		t.Errorf("AxS df %d, want %d", table["AxS"].DF, (a-1)*(nS-1))
	}
}

func TestCellANOVA_SSSumsToTotal(t *testing.T) {
	for _, levels := range [][]int{{3}, {2, 4}, {2, 3, 2}} {
		nS := 5
		n := nS
		for _, l := range levels {
			n *= l
		}
		block := randomBlock(n, 31)

		table, err := CellANOVA(block, levels, nS)
		if err != nil {
			t.Fatalf("CellANOVA(%v): %v", levels, err)
		}

		grand := 0.0
		for _, v := range block {
			grand += v
		}
		grand /= float64(n)
		var ssTotal float64
		for _, v := range block {
			ssTotal += (v - grand) * (v - grand)
		}

		var sum float64
		for _, res := range table {
			sum += res.SS
		}
		if math.Abs(sum-ssTotal) > 1e-9*(1+ssTotal) {
			t.Errorf("design %v: terms sum to %v, corrected total is %v", levels, sum, ssTotal)
		}
	}
}

func TestCellANOVA_ThreeWayDegreesOfFreedom(t *testing.T) {
	levels, nS := []int{2, 3, 4}, 5
	n := nS * 2 * 3 * 4
	table, err := CellANOVA(randomBlock(n, 3), levels, nS)
	if err != nil {
		t.Fatalf("CellANOVA: %v", err)
	}
	want := map[string]int{
		"A": 1, "B": 2, "C": 3,
		"AxB": 2, "AxC": 3, "BxC": 6, "AxBxC": 6,
		"S": 4, "AxS": 4, "AxBxS": 8, "AxBxCxS": 24,
	}
	for label, df := range want {
		if got := table[label].DF; got != df {
			t.Errorf("%s df %d, want %d", label, got, df)
		}
	}
}

func TestCellANOVA_PValuesInRange(t *testing.T) {
	table, err := CellANOVA(randomBlock(3*6, 8), []int{3}, 6)
	if err != nil {
		t.Fatalf("CellANOVA: %v", err)
	}
	p := table["A"].P
	if p <= 0 || p >= 1 {
		t.Errorf("p-value %v out of (0,1)", p)
	}
}

func TestCellANOVA_ConstantDataIsNaN(t *testing.T) {
	table, err := CellANOVA(make([]float64, 3*4), []int{3}, 4)
	if err != nil {
		t.Fatalf("CellANOVA: %v", err)
	}
	if !math.IsNaN(table["A"].F) || !math.IsNaN(table["A"].P) {
		t.Errorf("constant data should give NaN F and P, got %v / %v", table["A"].F, table["A"].P)
	}
}

func TestCellANOVA_RejectsBadInput(t *testing.T) {
	if _, err := CellANOVA(make([]float64, 10), []int{3}, 4); err == nil {
		t.Error("expected size-mismatch error")
	}
	if _, err := CellANOVA(make([]float64, 16), []int{2, 2, 2, 2}, 1); err == nil {
		t.Error("expected factor-count error")
	}
}

func TestPValue(t *testing.T) {
	if p := PValue(0, 3, 12); math.Abs(p-1) > 1e-9 {
		t.Errorf("PValue(0) = %v, want 1", p)
	}
	if p := PValue(1000, 3, 12); p > 1e-6 {
		t.Errorf("PValue(1000) = %v, want near 0", p)
	}
	if !math.IsNaN(PValue(math.NaN(), 3, 12)) {
		t.Error("NaN statistic should give NaN p")
	}
	if !math.IsNaN(PValue(1, 0, 12)) {
		t.Error("zero df should give NaN p")
	}
}
