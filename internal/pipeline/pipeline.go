package pipeline

import (
	"context"
	"fmt"
	"sort"

	"bpxgen/internal/logger"
)

// Pipeline runs a set of stages in ascending Order. Stages run one at a time:
// every stage may depend on what earlier ones produced.
type Pipeline struct {
	name   string
	stages []Stage
}

// New creates a Pipeline and orders its stages. Stages sharing an Order keep
// their argument order.
func New(name string, stages ...Stage) *Pipeline {
	list := make([]Stage, 0, len(stages))
	for _, st := range stages {
		if st == nil {
			continue
		}
		list = append(list, st)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Meta().Order < list[j].Meta().Order
	})
	return &Pipeline{name: name, stages: list}
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.stages))
	for i, st := range p.stages {
		out[i] = st.Meta().Name
	}
	return out
}

// Run executes the pipeline. A failing stage stops the run; its patch is
// discarded, so dc holds only the changes of the stages before it.
func (p *Pipeline) Run(ctx context.Context, dc *DeriveContext) error {
	if dc == nil {
		return fmt.Errorf("nil derive context")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, st := range p.stages {
		meta := st.Meta()
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: meta.Name, Err: err}
		}
		patch, err := st.Handle(dc)
		if err != nil {
			logger.Debugf("[pipeline] %s stage=%s failed: %v", p.name, meta.Name, err)
			return &StageError{Stage: meta.Name, Err: err}
		}
		dc.apply(meta.Name, patch)
		logger.Debugf("[pipeline] %s stage=%s produced=%d consumed=%d",
			p.name, meta.Name, len(patch.Produced()), len(patch.Consumed()))
	}
	return nil
}

// Stage order of a derivation.
const (
	orderFunctions = iota * 10
	orderThermal
	orderDegradation
	orderContactResistance
	orderPhases
	orderHysteresis
	orderSOC
	orderInitialState
	orderModel
	orderHeatSource
	orderTrimEvents
)

// DefaultStages returns the derivation stages.
func DefaultStages() []Stage {
	return []Stage{
		NewStage("exchange-current", orderFunctions, exchangeCurrentStage),
		NewStage("generic-functions", orderFunctions, genericFunctionStage),
		NewStage("thermal", orderThermal, thermalStage),
		NewStage("degradation", orderDegradation, degradationStage),
		NewStage("contact-resistance", orderContactResistance, contactResistanceStage),
		NewStage("phases", orderPhases, phaseStage),
		NewStage("hysteresis", orderHysteresis, hysteresisStage),
		NewStage("soc", orderSOC, socStage),
		NewStage("initial-state", orderInitialState, initialStateStage),
		NewStage("model", orderModel, modelStage),
		NewStage("heat-source", orderHeatSource, heatSourceStage),
		NewStage("trim-events", orderTrimEvents, trimEventsStage),
	}
}
