package pipeline

import (
	"fmt"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
	"bpxgen/internal/params"
)

// hysteresisSuffixes are the OCP entries rewritten for the one-state model.
var hysteresisSuffixes = []string{
	"lithiation OCP [V]",
	"delithiation OCP [V]",
	"OCP [V]",
	"OCP entropic change [V.K-1]",
}

func hysteresisStage(dc *DeriveContext) (params.Patch, error) {
	req := dc.Request
	if req.HysteresisModel == HysteresisNone {
		if req.HysteresisBranch == electrochem.BranchAverage {
			return params.NewPatch(), nil
		}
		return selectBranch(dc.set, dc.phases, req.HysteresisBranch), nil
	}

	models := resolveOCPModels(dc.set, dc.phases, req.HysteresisModel)
	patch := params.NewPatch()
	if req.HysteresisModel == HysteresisOneState {
		p, err := oneStatePatch(dc.set, dc.phases, models)
		if err != nil {
			return params.Patch{}, err
		}
		patch.Merge(p)
	}

	dc.ocpModels = models
	dc.initBranch = electrochem.InitBranches(models, req.HysteresisPrecedingState)
	dc.Require(optOCP, ocpOption(models))
	if req.AddHysteresisHeatSource {
		dc.Require(optHeatIsotherm, "true")
	}
	return patch, nil
}

// selectBranch makes the OCP of the selected branch the canonical OCP of
// every phase with branch data and drops both branch entries.
func selectBranch(set params.Set, phases electrochem.Phases, branch electrochem.Branch) params.Patch {
	patch := params.NewPatch()
	for _, e := range params.Electrodes {
		eb, ok := electrochem.ElectrodeBranch(branch, e)
		if !ok {
			continue
		}
		for _, ph := range phases[e] {
			if !electrochem.HasHysteresisData(set, e, ph) {
				continue
			}
			patch.Put(params.OCP(ph, e), set[params.BranchOCP(ph, e, eb)])
			for _, b := range electrochem.ElectrodeBranches {
				patch.Remove(params.BranchOCP(ph, e, b))
			}
		}
	}
	return patch
}

// resolveOCPModels applies the requested model to every phase that has both
// branch OCPs; phases without branch data stay single.
func resolveOCPModels(set params.Set, phases electrochem.Phases, requested HysteresisModel) [2][]electrochem.OCPModel {
	var out [2][]electrochem.OCPModel
	for _, e := range params.Electrodes {
		for _, ph := range phases[e] {
			m := electrochem.OCPSingle
			if electrochem.HasHysteresisData(set, e, ph) {
				m = requested.OCPModel()
			}
			out[e] = append(out[e], m)
		}
	}
	return out
}

// ocpOption renders the "open-circuit potential" option: a string for a
// single-phase electrode, a list for a blended one.
func ocpOption(models [2][]electrochem.OCPModel) []any {
	out := make([]any, len(models))
	for e, ms := range models {
		if len(ms) == 1 {
			out[e] = string(ms[0])
			continue
		}
		names := make([]string, len(ms))
		for i, m := range ms {
			names[i] = string(m)
		}
		out[e] = names
	}
	return out
}

// oneStatePatch prepares every Wycisk phase: zero switching factor, zero
// initial hysteresis state and OCP entries in (sto, T) function form. It
// fails before producing anything when a switching factor is non-zero.
func oneStatePatch(set params.Set, phases electrochem.Phases, models [2][]electrochem.OCPModel) (params.Patch, error) {
	patch := params.NewPatch()
	for _, e := range params.Electrodes {
		for i, ph := range phases[e] {
			if models[e][i] != electrochem.OCPWycisk {
				continue
			}
			keySwitch := params.SwitchingFactor(ph, e)
			if v, ok := set[keySwitch]; ok {
				if f, isScalar := v.Float(); !isScalar || f != 0 {
					return params.Patch{}, fmt.Errorf("%w: %s only supported with zero value, got %s",
						ErrPhysicalConstraint, keySwitch, v)
				}
			}
			patch.Put(keySwitch, params.Scalar(0))
			patch.Put(params.InitialHysteresisState(ph, e), params.Scalar(0))

			for _, suffix := range hysteresisSuffixes {
				key := params.ElectrodeParam(ph, e, suffix)
				v, err := set.Get(key)
				if err != nil {
					return params.Patch{}, err
				}
				compat, err := model.MakeHysteresisCompatible(v)
				if err != nil {
					return params.Patch{}, fmt.Errorf("%s: %w", key, err)
				}
				patch.Put(key, compat)
			}
		}
	}
	return patch, nil
}
