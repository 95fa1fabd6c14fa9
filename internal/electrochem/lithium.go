package electrochem

import (
	"fmt"

	"bpxgen/internal/params"
)

// Phases lists the phase prefixes used per electrode, (negative, positive).
type Phases [2][]params.Phase

// SinglePhases is the phase layout of an unblended cell.
var SinglePhases = Phases{{params.SinglePhase}, {params.SinglePhase}}

// capacity returns eps * L * c_max [mol.m-2] for one electrode phase.
func capacity(set params.Set, ph params.Phase, e params.Electrode) (float64, error) {
	eps, err := set.Float(params.VolumeFraction(ph, e))
	if err != nil {
		return 0, err
	}
	l, err := set.Float(params.Thickness(e))
	if err != nil {
		return 0, err
	}
	cmax, err := set.Float(params.MaxConcentration(ph, e))
	if err != nil {
		return 0, err
	}
	return eps * l * cmax, nil
}

// LithiumInventory sums eps * L * c_init over every electrode phase and
// returns the cyclable lithium per unit electrode area [mol.m-2].
func LithiumInventory(set params.Set, phases Phases) (float64, error) {
	var total float64
	for _, e := range params.Electrodes {
		for _, ph := range phases[e] {
			eps, err := set.Float(params.VolumeFraction(ph, e))
			if err != nil {
				return 0, err
			}
			l, err := set.Float(params.Thickness(e))
			if err != nil {
				return 0, err
			}
			c, err := set.Float(params.InitialConcentration(ph, e))
			if err != nil {
				return 0, err
			}
			if c < 0 {
				return 0, fmt.Errorf("negative initial concentration in %s electrode", e.Lower())
			}
			total += eps * l * c
		}
	}
	return total, nil
}
