package pipeline

import (
	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
	"bpxgen/internal/params"
)

var (
	lamKeys   = [2]string{DegLAMNeg, DegLAMPos}
	riFarKeys = [2]string{DegRIFarNeg, DegRIFarPos}
)

// degradationStage scales the loaded parameters to the requested state of
// health. Every term reads the set as loaded, so the terms do not compound.
func degradationStage(dc *DeriveContext) (params.Patch, error) {
	patch := params.NewPatch()
	deg := dc.degradation
	if deg == nil {
		return patch, nil
	}
	set := dc.set

	ncyc, err := electrochem.LithiumInventory(set, electrochem.SinglePhases)
	if err != nil {
		return params.Patch{}, err
	}
	if lli, ok := deg[DegLLI]; ok {
		ncyc *= 1 - lli
	}
	patch.Put(params.CyclableLithium, params.Scalar(ncyc))

	for _, e := range params.Electrodes {
		key := params.VolumeFraction(params.SinglePhase, e)
		eps, err := set.Get(key)
		if err != nil {
			return params.Patch{}, err
		}
		if lam, ok := deg[lamKeys[e]]; ok {
			if eps, err = eps.Scale(1 - lam); err != nil {
				return params.Patch{}, err
			}
		}
		patch.Put(key, eps)
	}

	for _, e := range params.Electrodes {
		ri, ok := deg[riFarKeys[e]]
		if !ok {
			continue
		}
		if err := scaleInto(&patch, set, params.ExchangeCurrentDensity(params.SinglePhase, e), 1/(1+ri)); err != nil {
			return params.Patch{}, err
		}
	}

	if ri, ok := deg[DegRIElectrolyte]; ok {
		for _, key := range []string{params.ElectrolyteConductivity, params.ElectrolyteDiffusivity} {
			if err := scaleInto(&patch, set, key, 1/(1+ri)); err != nil {
				return params.Patch{}, err
			}
		}
	}

	if r0, ok := deg[DegR0Addn]; ok {
		existing, err := set.FloatOr(params.ContactResistance, 0)
		if err != nil {
			return params.Patch{}, err
		}
		patch.Put(params.ContactResistance, params.Scalar(existing+r0))
	}
	return patch, nil
}

func scaleInto(patch *params.Patch, set params.Set, key string, mul float64) error {
	v, err := set.Get(key)
	if err != nil {
		return err
	}
	scaled, err := v.Scale(mul)
	if err != nil {
		return err
	}
	patch.Put(key, scaled)
	return nil
}

// contactResistanceStage enables the contact resistance option when the
// set carries a positive contact resistance.
func contactResistanceStage(dc *DeriveContext) (params.Patch, error) {
	r, err := dc.set.FloatOr(params.ContactResistance, 0)
	if err != nil {
		return params.Patch{}, err
	}
	if r > 0 {
		dc.Require(optContactResistance, "true")
	}
	return params.NewPatch(), nil
}

const (
	optContactResistance = "contact resistance"
	optParticlePhases    = "particle phases"
	optOCP               = "open-circuit potential"
	optHeatIsotherm      = model.OptionHeatIsotherm
)
