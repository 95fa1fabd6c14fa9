package electrochem

import (
	"bpxgen/internal/params"
)

// DefaultTemperature is used when a set carries no reference temperature.
const DefaultTemperature = 298.15

func referenceTemperature(set params.Set) float64 {
	t, err := set.FloatOr(params.ReferenceTemperature, DefaultTemperature)
	if err != nil || t <= 0 {
		return DefaultTemperature
	}
	return t
}

// ocpFunc returns U(sto) for one electrode phase at temperature t. The
// canonical OCP is preferred; otherwise the branch mean is used.
func ocpFunc(set params.Set, ph params.Phase, e params.Electrode, t float64) (func(float64) float64, error) {
	if v, ok := set[params.OCP(ph, e)]; ok {
		fn, err := v.Func()
		if err != nil {
			return nil, err
		}
		return func(sto float64) float64 { return fn(sto, t) }, nil
	}
	lith, err := set.Get(params.BranchOCP(ph, e, Lithiation))
	if err != nil {
		// report the canonical name, it is the one a single-branch set needs
		_, err = set.Get(params.OCP(ph, e))
		return nil, err
	}
	delith, err := set.Get(params.BranchOCP(ph, e, Delithiation))
	if err != nil {
		return nil, err
	}
	fl, err := lith.Func()
	if err != nil {
		return nil, err
	}
	fd, err := delith.Func()
	if err != nil {
		return nil, err
	}
	return func(sto float64) float64 { return 0.5 * (fl(sto, t) + fd(sto, t)) }, nil
}
