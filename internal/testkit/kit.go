// Package testkit builds deterministic synthetic measurement arrays with
// known effect structure, so tests can assert on what the engine should
// recover rather than on baked-in numbers.
package testkit

import (
	"math/rand"

	"github.com/HuseyinOrkun/FMUT/domain/erp"
)

// DatasetConfig controls the generated effect structure. A zero scale means
// that component is absent, so the zero value plus Noise gives pure-null
// data.
type DatasetConfig struct {
	NElectrodes int
	NTimePoints int
	Levels      []int
	NSubjects   int
	Seed        int64

	// Noise is the standard deviation of the per-observation gaussian noise.
	Noise float64
	// MainEffectScale sizes additive per-level shifts for every factor.
	MainEffectScale float64
	// InteractionScale sizes the highest-order interaction: the product of
	// centered level codes, which contributes nothing to any lower-order
	// effect.
	InteractionScale float64
	// SubjectScale sizes additive per-subject offsets (blocking variance).
	SubjectScale float64
}

// Generate builds the measurement array described by cfg. The same config
// always yields the same data.
func Generate(cfg DatasetConfig) (*erp.MeasurementArray, error) {
	shape := append([]int{cfg.NElectrodes, cfg.NTimePoints}, cfg.Levels...)
	shape = append(shape, cfg.NSubjects)
	m, err := erp.New(shape...)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	subj := make([]float64, cfg.NSubjects)
	for s := range subj {
		subj[s] = cfg.SubjectScale * rng.NormFloat64()
	}

	// Centered level codes, e.g. 3 levels -> -1, 0, +1.
	codes := make([][]float64, len(cfg.Levels))
	for f, l := range cfg.Levels {
		codes[f] = make([]float64, l)
		for i := 0; i < l; i++ {
			codes[f][i] = float64(i) - float64(l-1)/2
		}
	}

	nCells := m.NumCells()
	idx := make([]int, len(cfg.Levels))
	cellSignal := make([]float64, nCells)
	for cell := 0; cell < nCells; cell++ {
		var main float64
		inter := 1.0
		for f := range idx {
			main += cfg.MainEffectScale * codes[f][idx[f]]
			inter *= codes[f][idx[f]]
		}
		cellSignal[cell] = main + cfg.InteractionScale*inter
		for f := len(idx) - 1; f >= 0; f-- {
			idx[f]++
			if idx[f] < cfg.Levels[f] {
				break
			}
			idx[f] = 0
		}
	}

	for e := 0; e < cfg.NElectrodes; e++ {
		for t := 0; t < cfg.NTimePoints; t++ {
			blk := m.Block(e, t)
			for cell := 0; cell < nCells; cell++ {
				for s := 0; s < cfg.NSubjects; s++ {
					blk[cell*cfg.NSubjects+s] = cellSignal[cell] + subj[s] + cfg.Noise*rng.NormFloat64()
				}
			}
		}
	}
	return m, nil
}

// NullDataset returns pure-noise data: no condition effect of any order.
func NullDataset(electrodes, timePoints int, levels []int, subjects int, seed int64) (*erp.MeasurementArray, error) {
	return Generate(DatasetConfig{
		NElectrodes: electrodes,
		NTimePoints: timePoints,
		Levels:      levels,
		NSubjects:   subjects,
		Seed:        seed,
		Noise:       1.0,
	})
}

// InteractionDataset returns data whose only condition effect is the
// highest-order interaction.
func InteractionDataset(electrodes, timePoints int, levels []int, subjects int, seed int64, scale float64) (*erp.MeasurementArray, error) {
	return Generate(DatasetConfig{
		NElectrodes:      electrodes,
		NTimePoints:      timePoints,
		Levels:           levels,
		NSubjects:        subjects,
		Seed:             seed,
		Noise:            1.0,
		InteractionScale: scale,
		SubjectScale:     0.5,
	})
}
