package pipeline

import (
	"fmt"
	"strconv"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/params"
)

// phasesByElectrode returns the phase prefixes to work over per electrode.
func phasesByElectrode(blended [2]bool) electrochem.Phases {
	var out electrochem.Phases
	for _, e := range params.Electrodes {
		if blended[e] {
			out[e] = params.MaterialPhases()
		} else {
			out[e] = []params.Phase{params.SinglePhase}
		}
	}
	return out
}

// validatePhases is a coarse check that the requested layout matches the
// data: a blended electrode needs Primary and Secondary entries, a single
// one its maximum concentration.
func validatePhases(set params.Set, phases electrochem.Phases) error {
	if len(phases[params.Positive]) > 1 {
		return configErrorf("positive electrode blends are not supported")
	}
	for _, e := range params.Electrodes {
		if len(phases[e]) > 1 {
			for _, ph := range phases[e] {
				if !set.AnyContains(string(ph[:len(ph)-1])) {
					return fmt.Errorf("%w: no parameter data found to treat %s electrode as blended material; try disabling blended_electrode",
						ErrDataAvailability, e.Lower())
				}
			}
			continue
		}
		if !set.Has(params.MaxConcentration(params.SinglePhase, e)) {
			return fmt.Errorf("%w: no parameter data to treat %s electrode as single-material; try setting blended_electrode",
				ErrDataAvailability, e.Lower())
		}
	}
	return nil
}

func phaseStage(dc *DeriveContext) (params.Patch, error) {
	phases := phasesByElectrode(dc.Request.BlendedElectrode)
	if err := validatePhases(dc.set, phases); err != nil {
		return params.Patch{}, err
	}
	dc.phases = phases
	dc.Require(optParticlePhases, []string{
		strconv.Itoa(len(phases[params.Negative])),
		strconv.Itoa(len(phases[params.Positive])),
	})
	return params.NewPatch(), nil
}
