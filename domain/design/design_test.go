package design

import (
	"errors"
	"testing"

	"github.com/HuseyinOrkun/FMUT/domain/core"
)

func TestNew(t *testing.T) {
	d, err := New(2, 3, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.NumFactors() != 3 || d.NumCells() != 24 {
		t.Errorf("factors=%d cells=%d, want 3/24", d.NumFactors(), d.NumCells())
	}

	if _, err := New(); !errors.Is(err, core.ErrBadDimensionality) {
		t.Errorf("no factors: got %v", err)
	}
	if _, err := New(2, 2, 2, 2); !errors.Is(err, core.ErrBadDimensionality) {
		t.Errorf("four factors: got %v", err)
	}
	if _, err := New(2, 1); !errors.Is(err, core.ErrTooFewLevels) {
		t.Errorf("single-level factor: got %v", err)
	}
}

func TestEffectLabels(t *testing.T) {
	cases := []struct {
		effect Effect
		want   string
	}{
		{Effect{0}, "A"},
		{Effect{1}, "B"},
		{Effect{0, 1}, "AxB"},
		{Effect{0, 2}, "AxC"},
		{Effect{0, 1, 2}, "AxBxC"},
	}
	for _, tc := range cases {
		if got := tc.effect.Label(); got != tc.want {
			t.Errorf("Label(%v) = %q, want %q", tc.effect, got, tc.want)
		}
	}
}

func TestFullInteraction(t *testing.T) {
	d, _ := New(2, 3)
	e := d.FullInteraction()
	if e.Label() != "AxB" {
		t.Errorf("full interaction %q, want AxB", e.Label())
	}
}

func TestValidate(t *testing.T) {
	d, _ := New(2, 3)
	if err := d.Validate(Effect{0, 1}); err != nil {
		t.Errorf("valid effect rejected: %v", err)
	}
	if err := d.Validate(Effect{}); !errors.Is(err, core.ErrBadEffect) {
		t.Errorf("empty effect: got %v", err)
	}
	if err := d.Validate(Effect{2}); !errors.Is(err, core.ErrBadEffect) {
		t.Errorf("out-of-range factor: got %v", err)
	}
	if err := d.Validate(Effect{0, 0}); !errors.Is(err, core.ErrBadEffect) {
		t.Errorf("duplicate factor: got %v", err)
	}
}

func TestDegreesOfFreedom(t *testing.T) {
	d, _ := New(3, 4)
	e := Effect{0, 1}
	if got := d.NumeratorDF(e); got != 6 {
		t.Errorf("NumeratorDF = %d, want 6", got)
	}
	if got := d.DenominatorDF(e, 11); got != 60 {
		t.Errorf("DenominatorDF = %d, want 60", got)
	}
}
