// Package cellfixture builds small, self-consistent parameter sets for tests.
package cellfixture

import (
	"bpxgen/internal/funcs"
	"bpxgen/internal/params"
)

var (
	Sto = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

	NegativeOCP = []float64{1.2, 0.45, 0.25, 0.18, 0.14, 0.12, 0.11, 0.10, 0.09, 0.085, 0.08}
	PositiveOCP = []float64{4.6, 4.4, 4.25, 4.1, 4.0, 3.9, 3.8, 3.7, 3.6, 3.5, 3.0}
)

const (
	NegMinSto = 0.02
	NegMaxSto = 0.9
	PosMinSto = 0.25
	PosMaxSto = 0.95

	NegMaxConc = 30000.0
	PosMaxConc = 50000.0

	// HysteresisHalfWidth offsets the branch OCPs from the mean.
	HysteresisHalfWidth = 0.01
)

// shift returns ys + d.
func shift(ys []float64, d float64) []float64 {
	out := make([]float64, len(ys))
	for i, y := range ys {
		out[i] = y + d
	}
	return out
}

// Single returns an unblended cell at SOC 1 with standard kinetics.
func Single() params.Set {
	s := params.Set{
		params.ReferenceTemperature:       params.Scalar(298.15),
		params.AmbientTemperature:         params.Scalar(298.15),
		params.LowerCutoff:                params.Scalar(2.5),
		params.UpperCutoff:                params.Scalar(4.1),
		params.ElectrodeArea:              params.Scalar(0.1),
		params.NominalCapacity:            params.Scalar(5),
		params.HeatTransferCoeff:          params.Scalar(10),
		params.ElectrolyteConductivity:    params.Scalar(1.0),
		params.ElectrolyteDiffusivity:     params.Scalar(3e-10),
		params.ElectrolyteInitialConc:     params.Scalar(1000),
		params.Thickness(params.Negative): params.Scalar(80e-6),
		params.Thickness(params.Positive): params.Scalar(70e-6),
	}
	addElectrode(s, params.SinglePhase, params.Negative, 0.6, NegMaxConc, NegMinSto, NegMaxSto, NegativeOCP, 1e-10)
	addElectrode(s, params.SinglePhase, params.Positive, 0.6, PosMaxConc, PosMinSto, PosMaxSto, PositiveOCP, 3e-11)
	return s
}

// WithHysteresis adds lithiation and delithiation OCPs to the negative
// electrode of s, +/- HysteresisHalfWidth around the canonical OCP.
func WithHysteresis(s params.Set, ph params.Phase) params.Set {
	xs, ys := s[params.OCP(ph, params.Negative)].Points()
	s[params.BranchOCP(ph, params.Negative, "lithiation")] = params.Table(xs, shift(ys, -HysteresisHalfWidth))
	s[params.BranchOCP(ph, params.Negative, "delithiation")] = params.Table(xs, shift(ys, HysteresisHalfWidth))
	s[params.SwitchingFactor(ph, params.Negative)] = params.Scalar(0)
	return s
}

// Blended returns a cell whose negative electrode has Primary and Secondary
// phases, both with hysteresis data.
func Blended() params.Set {
	s := Single()
	for _, key := range []string{
		params.VolumeFraction(params.SinglePhase, params.Negative),
		params.MaxConcentration(params.SinglePhase, params.Negative),
		params.MinStoichiometry(params.SinglePhase, params.Negative),
		params.MaxStoichiometry(params.SinglePhase, params.Negative),
		params.InitialConcentration(params.SinglePhase, params.Negative),
		params.OCP(params.SinglePhase, params.Negative),
		params.EntropicChange(params.SinglePhase, params.Negative),
		params.ExchangeCurrentDensity(params.SinglePhase, params.Negative),
	} {
		delete(s, key)
	}
	phases := params.MaterialPhases()
	addElectrode(s, phases[0], params.Negative, 0.5, NegMaxConc, NegMinSto, NegMaxSto, NegativeOCP, 1e-10)
	addElectrode(s, phases[1], params.Negative, 0.1, 28000, 0.05, 0.85, shift(NegativeOCP, 0.2), 5e-11)
	for _, ph := range phases {
		WithHysteresis(s, ph)
	}
	return s
}

func addElectrode(s params.Set, ph params.Phase, e params.Electrode, eps, cmax, lo, hi float64, ocp []float64, k float64) {
	s[params.VolumeFraction(ph, e)] = params.Scalar(eps)
	s[params.MaxConcentration(ph, e)] = params.Scalar(cmax)
	s[params.MinStoichiometry(ph, e)] = params.Scalar(lo)
	s[params.MaxStoichiometry(ph, e)] = params.Scalar(hi)
	s[params.OCP(ph, e)] = params.Table(Sto, ocp)
	s[params.EntropicChange(ph, e)] = params.Scalar(0)
	s[params.ExchangeCurrentDensity(ph, e)] = funcs.StandardJ0(k, 30000, 298.15)
	at100 := hi
	if e == params.Positive {
		at100 = lo
	}
	s[params.InitialConcentration(ph, e)] = params.Scalar(at100 * cmax)
}
