package model

import (
	"errors"
	"fmt"
	"math"

	"bpxgen/internal/params"
)

var ErrNoHeatSources = errors.New("model: heat sources are not computed")

// AddHysteresisHeatSource appends the hysteresis heating term when it is
// missing. It reports whether the model changed.
func AddHysteresisHeatSource(m *Model) (bool, error) {
	if len(m.HeatSources) == 0 {
		return false, fmt.Errorf("%w; set %q", ErrNoHeatSources, OptionHeatIsotherm)
	}
	for _, h := range m.HeatSources {
		if h == HeatHysteresis {
			return false, nil
		}
	}
	m.HeatSources = append(m.HeatSources, HeatHysteresis)
	return true, nil
}

const labelStoT = "f(sto, T)"

// MakeHysteresisCompatible returns v as a function of (sto, T), the form the
// one-state OCP model evaluates. Functions pass through unchanged.
func MakeHysteresisCompatible(v params.Value) (params.Value, error) {
	switch v.Kind() {
	case params.KindFunction:
		return v, nil
	case params.KindScalar, params.KindTable:
		fn, err := v.Func()
		if err != nil {
			return params.Value{}, err
		}
		return params.Function(func(args ...float64) float64 {
			if len(args) == 0 {
				return math.NaN()
			}
			return fn(args[0])
		}, fmt.Sprintf("%s %s", v.Kind(), labelStoT)), nil
	default:
		return params.Value{}, fmt.Errorf("cannot use %s value as an OCP", v.Kind())
	}
}
