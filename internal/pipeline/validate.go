package pipeline

import (
	"slices"
	"strings"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
)

// Validate checks the argument combination. It runs before anything is
// loaded or derived.
func (r Request) Validate() error {
	if r.BlendedElectrode[1] {
		return configErrorf("positive electrode blends are not supported")
	}
	if _, err := model.ParseType(string(r.ModelType)); err != nil {
		return configErrorf("%v", err)
	}
	if !slices.Contains(HysteresisModels, r.HysteresisModel) {
		return configErrorf("unsupported hysteresis model %q (supported: %s)", r.HysteresisModel, joinModels())
	}
	if _, err := electrochem.ParseBranch(string(r.HysteresisBranch)); err != nil {
		return configErrorf("%v", err)
	}
	if _, err := electrochem.ParseBranch(string(r.HysteresisPrecedingState)); err != nil {
		return configErrorf("hysteresis preceding state: %v", err)
	}

	if r.AddHysteresisHeatSource && r.HysteresisModel != HysteresisOneState {
		return configErrorf("hysteresis heat source can only be added to the %q hysteresis model", HysteresisOneState)
	}

	if r.DegradationState != nil {
		if r.blended() || r.HysteresisModel != HysteresisNone {
			return configErrorf("degradation state is only supported for single-phase electrodes with no hysteresis")
		}
		for _, k := range sortedKeys(r.DegradationState) {
			if !slices.Contains(DegradationKeys, k) {
				return configErrorf("unsupported degradation_state field %q (supported: %s)", k, strings.Join(DegradationKeys, ", "))
			}
		}
	}

	if thermal, ok := r.ExtraModelOptions[model.OptionThermal]; ok && thermal != "isothermal" && r.HTCExt == nil {
		return configErrorf("a thermal model needs the external heat transfer coefficient htc_ext")
	}

	if r.OCVInit != nil && (r.blended() || r.HysteresisModel != HysteresisNone) {
		return configErrorf("voltage-based initialisation is only supported for single-phase electrodes with no hysteresis")
	}

	if r.SOCDefinition != nil {
		if r.blended() || r.HysteresisModel != HysteresisNone {
			return configErrorf("OCV-SOC conversion is only supported for single-phase electrodes with no hysteresis")
		}
		if len(r.SOCDefinition.SOC) < 2 || len(r.SOCDefinition.SOC) != len(r.SOCDefinition.OCV) {
			return configErrorf("soc_definition data needs at least two (SOC, OCV) rows")
		}
		if _, err := electrochem.ParseMethod(string(r.SOCDefinition.Method)); err != nil {
			return configErrorf("%v", err)
		}
	}

	if r.OCVInit == nil && (r.SOCInit < 0 || r.SOCInit > 1) {
		return configErrorf("soc_init %g outside [0, 1]", r.SOCInit)
	}
	return nil
}

func joinModels() string {
	out := make([]string, len(HysteresisModels))
	for i, m := range HysteresisModels {
		out[i] = string(m)
	}
	return strings.Join(out, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
