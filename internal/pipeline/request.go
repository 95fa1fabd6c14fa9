package pipeline

import (
	"fmt"
	"strings"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"

	"github.com/mitchellh/mapstructure"
)

// HysteresisModel is the requested hysteresis treatment.
type HysteresisModel string

const (
	HysteresisNone      HysteresisModel = "none"
	HysteresisZeroState HysteresisModel = "zero-state"
	HysteresisOneState  HysteresisModel = "one-state"
)

var HysteresisModels = []HysteresisModel{HysteresisNone, HysteresisZeroState, HysteresisOneState}

// OCPModel maps the request onto the per-phase OCP model name.
func (h HysteresisModel) OCPModel() electrochem.OCPModel {
	switch h {
	case HysteresisZeroState:
		return electrochem.OCPCurrentSigmoid
	case HysteresisOneState:
		return electrochem.OCPWycisk
	default:
		return electrochem.OCPSingle
	}
}

// Degradation state keys.
const (
	DegLAMNeg        = "LAM_NE"
	DegLAMPos        = "LAM_PE"
	DegLLI           = "LLI"
	DegRIFarNeg      = "RI_far_NE"
	DegRIFarPos      = "RI_far_PE"
	DegRIElectrolyte = "RI_electrolyte"
	DegR0Addn        = "R0_addn [Ohm]"
)

// DegradationKeys is the closed set of accepted degradation modes.
var DegradationKeys = []string{DegLAMNeg, DegLAMPos, DegLLI, DegRIFarNeg, DegRIFarPos, DegRIElectrolyte, DegR0Addn}

// SOCDefinition is an external OCV-SOC scale the requested SOC is read on.
type SOCDefinition struct {
	SOC    []float64          `json:"soc"`
	OCV    []float64          `json:"ocv"`
	Method electrochem.Method `json:"method,omitempty"`
}

// Request holds every argument of a derivation.
type Request struct {
	// Path is the BPX document or BPX Parent index.
	Path string `json:"path,omitempty"`
	// ParameterSet selects a set of a BPX Parent index.
	ParameterSet string `json:"parameter_set,omitempty"`

	SOCInit       float64        `json:"soc_init"`
	SOCDefinition *SOCDefinition `json:"soc_definition,omitempty"`
	OCVInit       *float64       `json:"ocv_init,omitempty"`

	// DegradationState is sparse; a nil map means no degradation state.
	DegradationState map[string]float64 `json:"degradation_state,omitempty"`
	HTCExt           *float64           `json:"htc_ext,omitempty"`

	ModelType                model.Type         `json:"model_type"`
	HysteresisModel          HysteresisModel    `json:"hysteresis_model"`
	HysteresisBranch         electrochem.Branch `json:"hysteresis_branch"`
	HysteresisPrecedingState electrochem.Branch `json:"hysteresis_preceding_state"`
	BlendedElectrode         [2]bool            `json:"blended_electrode"`
	AddHysteresisHeatSource  bool               `json:"add_hysteresis_heat_source"`
	ExtraModelOptions        model.Options      `json:"extra_model_options,omitempty"`
	TrimModelEvents          bool               `json:"trim_model_events"`
}

// DefaultRequest returns the defaults: SOC 1, DFN, no hysteresis, average
// branches and event trimming on.
func DefaultRequest() Request {
	return Request{
		SOCInit:                  1,
		ModelType:                model.DFN,
		HysteresisModel:          HysteresisNone,
		HysteresisBranch:         electrochem.BranchAverage,
		HysteresisPrecedingState: electrochem.BranchAverage,
		TrimModelEvents:          true,
	}
}

// Normalize fills empty enum fields with their defaults.
func (r Request) Normalize() Request {
	if r.ModelType == "" {
		r.ModelType = model.DFN
	}
	if r.HysteresisModel == "" {
		r.HysteresisModel = HysteresisNone
	}
	if r.HysteresisBranch == "" {
		r.HysteresisBranch = electrochem.BranchAverage
	}
	if r.HysteresisPrecedingState == "" {
		r.HysteresisPrecedingState = electrochem.BranchAverage
	}
	if r.SOCDefinition != nil && r.SOCDefinition.Method == "" {
		def := *r.SOCDefinition
		def.Method = electrochem.MethodVoltage
		r.SOCDefinition = &def
	}
	return r
}

// blended reports whether any electrode is blended.
func (r Request) blended() bool {
	return r.BlendedElectrode[0] || r.BlendedElectrode[1]
}

// DecodeDegradationState decodes an untyped degradation state, as found in
// YAML config or a JSON body. nil decodes to nil.
func DecodeDegradationState(raw any) (map[string]float64, error) {
	if raw == nil {
		return nil, nil
	}
	if _, ok := raw.(map[string]any); !ok {
		if _, ok := raw.(map[string]float64); !ok {
			return nil, configErrorf("degradation_state must be a mapping, got %T", raw)
		}
	}
	var out map[string]float64
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, configErrorf("degradation_state: %v", err)
	}
	return out, nil
}

type rawSOCDefinition struct {
	Data   [][]float64 `mapstructure:"data"`
	Method string      `mapstructure:"method"`
}

// DecodeSOCDefinition decodes {"data": [[soc, ocv], ...], "method": ...}.
// nil decodes to nil.
func DecodeSOCDefinition(raw any) (*SOCDefinition, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, configErrorf("soc_definition must be a mapping containing 'data', got %T", raw)
	}
	if _, ok := m["data"]; !ok {
		return nil, configErrorf("soc_definition must be a mapping containing 'data'")
	}
	var rd rawSOCDefinition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rd,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, configErrorf("soc_definition: %v", err)
	}
	def := &SOCDefinition{Method: electrochem.Method(strings.TrimSpace(rd.Method))}
	for i, row := range rd.Data {
		if len(row) != 2 {
			return nil, configErrorf("soc_definition data row %d has %d columns, want 2 (SOC, OCV)", i, len(row))
		}
		def.SOC = append(def.SOC, row[0])
		def.OCV = append(def.OCV, row[1])
	}
	return def, nil
}

func (d *SOCDefinition) String() string {
	if d == nil {
		return "none"
	}
	return fmt.Sprintf("%d points, method %s", len(d.SOC), d.Method)
}
