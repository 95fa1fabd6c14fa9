package derivehttp

import (
	"bpxgen/internal/electrochem"
	"bpxgen/internal/export"
	"bpxgen/internal/model"
	"bpxgen/internal/pipeline"
)

// DeriveBody is the POST /api/derive payload. Degradation state and SOC
// definition arrive untyped and are decoded like config values.
type DeriveBody struct {
	Path                     string        `json:"path" binding:"required"`
	ParameterSet             string        `json:"parameter_set"`
	SOCInit                  *float64      `json:"soc_init"`
	SOCDefinition            any           `json:"soc_definition"`
	OCVInit                  *float64      `json:"ocv_init"`
	DegradationState         any           `json:"degradation_state"`
	HTCExt                   *float64      `json:"htc_ext"`
	ModelType                string        `json:"model_type"`
	HysteresisModel          string        `json:"hysteresis_model"`
	HysteresisBranch         string        `json:"hysteresis_branch"`
	HysteresisPrecedingState string        `json:"hysteresis_preceding_state"`
	BlendedElectrode         [2]bool       `json:"blended_electrode"`
	AddHysteresisHeatSource  bool          `json:"add_hysteresis_heat_source"`
	ExtraModelOptions        model.Options `json:"extra_model_options"`
	TrimModelEvents          *bool         `json:"trim_model_events"`

	// IncludeParameters adds the full parameter set to the response.
	IncludeParameters bool `json:"include_parameters"`
}

// DeriveResponse answers a successful derivation.
type DeriveResponse struct {
	RunID    string               `json:"run_id,omitempty"`
	Source   string               `json:"source"`
	SOC      float64              `json:"soc"`
	Model    export.ModelDoc      `json:"model"`
	Summary  []export.SummaryLine `json:"summary"`
	Stages   []export.StageDoc    `json:"stages"`
	Warnings []string             `json:"warnings,omitempty"`

	// Parameters is set when IncludeParameters was requested.
	Parameters any `json:"parameters,omitempty"`
}

// ErrorResponse carries a failure and the stage it happened in.
type ErrorResponse struct {
	RunID string `json:"run_id,omitempty"`
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// request converts the body into a pipeline request on top of the defaults.
func (b DeriveBody) request() (pipeline.Request, error) {
	req := pipeline.DefaultRequest()
	req.Path = b.Path
	req.ParameterSet = b.ParameterSet
	if b.SOCInit != nil {
		req.SOCInit = *b.SOCInit
	}
	req.OCVInit = b.OCVInit
	req.HTCExt = b.HTCExt

	var err error
	if req.SOCDefinition, err = pipeline.DecodeSOCDefinition(b.SOCDefinition); err != nil {
		return pipeline.Request{}, err
	}
	if req.DegradationState, err = pipeline.DecodeDegradationState(b.DegradationState); err != nil {
		return pipeline.Request{}, err
	}

	req.ModelType = model.Type(b.ModelType)
	req.HysteresisModel = pipeline.HysteresisModel(b.HysteresisModel)
	req.HysteresisBranch = electrochem.Branch(b.HysteresisBranch)
	req.HysteresisPrecedingState = electrochem.Branch(b.HysteresisPrecedingState)
	req.BlendedElectrode = b.BlendedElectrode
	req.AddHysteresisHeatSource = b.AddHysteresisHeatSource
	req.ExtraModelOptions = b.ExtraModelOptions
	if b.TrimModelEvents != nil {
		req.TrimModelEvents = *b.TrimModelEvents
	}
	return req.Normalize(), nil
}
