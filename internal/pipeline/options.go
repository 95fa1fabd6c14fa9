package pipeline

import (
	"fmt"

	"bpxgen/internal/logger"
	"bpxgen/internal/model"
	"bpxgen/internal/params"
)

// socTolerance is the band around empty and full in which voltage events are
// dropped.
const socTolerance = 0.05

// combineOptions merges the extra options into the derived ones. An extra
// option may never replace a derived one.
func combineOptions(required, extra model.Options) (model.Options, error) {
	for _, k := range extra.Keys() {
		if v, ok := required[k]; ok {
			return nil, fmt.Errorf("%w: required setting %q: %s, derived from other arguments, cannot be replaced with %q: %s from extra model options",
				ErrOptionConflict, k, model.FormatOption(v), k, model.FormatOption(extra[k]))
		}
	}
	out := required.Clone()
	for k, v := range extra {
		out[k] = v
	}
	return out, nil
}

func modelStage(dc *DeriveContext) (params.Patch, error) {
	opts, err := combineOptions(dc.required, dc.Request.ExtraModelOptions)
	if err != nil {
		return params.Patch{}, err
	}
	m, err := dc.factory.New(dc.Request.ModelType, opts)
	if err != nil {
		return params.Patch{}, err
	}
	dc.options = opts
	dc.model = m
	return params.NewPatch(), nil
}

func heatSourceStage(dc *DeriveContext) (params.Patch, error) {
	if !dc.Request.AddHysteresisHeatSource {
		return params.NewPatch(), nil
	}
	added, err := model.AddHysteresisHeatSource(dc.model)
	if err != nil {
		return params.Patch{}, err
	}
	if !added {
		dc.Warn("model already carries " + model.HeatHysteresis)
	}
	return params.NewPatch(), nil
}

// trimEventsStage drops voltage events the initial state would trip at once
// through interpolation error at the boundary.
func trimEventsStage(dc *DeriveContext) (params.Patch, error) {
	if !dc.Request.TrimModelEvents {
		return params.NewPatch(), nil
	}
	soc := trimSOC(dc)
	var removed int
	switch {
	case soc > 1-socTolerance:
		removed = dc.model.RemoveEvents("Maximum voltage")
	case soc < socTolerance:
		removed = dc.model.RemoveEvents("Minimum voltage")
	}
	if removed > 0 {
		logger.Debugf("trimmed %d voltage events at soc=%.4f", removed, soc)
	}
	return params.NewPatch(), nil
}

// trimSOC is the requested SOC fraction, or the resolved SOC when the
// operating point was given as a voltage.
func trimSOC(dc *DeriveContext) float64 {
	if dc.Request.OCVInit != nil {
		return dc.soc
	}
	return dc.Request.SOCInit
}
