package pipeline

import (
	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
	"bpxgen/internal/params"
)

// DeriveContext is the state of one derivation. It owns its parameter set;
// stages read it and hand back patches that the runner applies.
type DeriveContext struct {
	Request Request
	Source  string

	set         params.Set
	factory     model.Factory
	curvePoints int

	// degradation is the request's degradation state with zero entries
	// dropped; nil when nothing applies.
	degradation map[string]float64
	phases      electrochem.Phases
	ocpModels   [2][]electrochem.OCPModel
	initBranch  [2]string
	soc         float64

	required model.Options
	options  model.Options
	model    *model.Model

	reports  []StageReport
	warnings []string
}

func newDeriveContext(base params.Set, req Request, factory model.Factory) *DeriveContext {
	return &DeriveContext{
		Request:     req,
		set:         base.Clone(),
		factory:     factory,
		degradation: activeDegradation(req.DegradationState),
		phases:      electrochem.SinglePhases,
		soc:         req.SOCInit,
		required:    make(model.Options),
	}
}

// Params returns the current parameter set. Callers must treat it as read
// only.
func (dc *DeriveContext) Params() params.Set { return dc.set }

// SOC returns the thermodynamic SOC resolved so far.
func (dc *DeriveContext) SOC() float64 { return dc.soc }

// Require records a derived model option.
func (dc *DeriveContext) Require(key string, v any) { dc.required[key] = v }

// Warn records a non-fatal note for the result.
func (dc *DeriveContext) Warn(msg string) { dc.warnings = append(dc.warnings, msg) }

func (dc *DeriveContext) apply(name string, p params.Patch) {
	dc.set.Apply(p)
	dc.reports = append(dc.reports, StageReport{
		Name:     name,
		Produced: p.Produced(),
		Consumed: p.Consumed(),
	})
}

// activeDegradation drops zero entries; an empty result means none.
func activeDegradation(state map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(state))
	for k, v := range state {
		if v != 0 {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
