package config

import (
	"path/filepath"
	"strings"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
	"bpxgen/internal/pipeline"
)

// Request builds the derivation request described by the configuration.
func (c *Config) Request() (pipeline.Request, error) {
	req := pipeline.DefaultRequest()
	req.Path = c.Resolve(c.Source.Path)
	req.ParameterSet = strings.TrimSpace(c.Source.ParameterSet)

	if c.Operating.SOCInit != nil {
		req.SOCInit = *c.Operating.SOCInit
	}
	req.OCVInit = c.Operating.OCVInit
	def, err := c.socDefinition()
	if err != nil {
		return pipeline.Request{}, err
	}
	req.SOCDefinition = def

	if c.Degradation != nil {
		state, err := pipeline.DecodeDegradationState(canonicalDegradation(c.Degradation))
		if err != nil {
			return pipeline.Request{}, err
		}
		req.DegradationState = state
	}
	req.HTCExt = c.Thermal.HTCExt

	m := c.Model
	req.ModelType = model.Type(m.Type)
	req.HysteresisModel = pipeline.HysteresisModel(strings.ToLower(m.HysteresisModel))
	req.HysteresisBranch = electrochem.Branch(strings.ToLower(m.HysteresisBranch))
	req.HysteresisPrecedingState = electrochem.Branch(strings.ToLower(m.HysteresisPrecedingState))
	for i, b := range m.BlendedElectrode {
		req.BlendedElectrode[i] = b
	}
	req.AddHysteresisHeatSource = m.AddHysteresisHeatSource
	req.TrimModelEvents = m.TrimModelEvents
	if len(m.ExtraOptions) > 0 {
		req.ExtraModelOptions = make(model.Options, len(m.ExtraOptions))
		for k, v := range m.ExtraOptions {
			req.ExtraModelOptions[model.CanonicalOption(k)] = optionValue(v)
		}
	}
	return req.Normalize(), nil
}

// Resolve makes path absolute against the config directory.
func (c *Config) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

func (c *Config) socDefinition() (*pipeline.SOCDefinition, error) {
	sd := c.Operating.SOCDefinition
	if sd.empty() {
		return nil, nil
	}
	rows := sd.Data
	if strings.TrimSpace(sd.DataPath) != "" {
		var err error
		if rows, err = ReadCurveCSV(c.Resolve(sd.DataPath)); err != nil {
			return nil, err
		}
	}
	data := make([]any, len(rows))
	for i, r := range rows {
		data[i] = r
	}
	return pipeline.DecodeSOCDefinition(map[string]any{"data": data, "method": sd.Method})
}

// canonicalDegradation restores the case of known degradation keys; the
// config reader lowercases every key.
func canonicalDegradation(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		name := k
		for _, known := range pipeline.DegradationKeys {
			if strings.EqualFold(known, k) {
				name = known
				break
			}
		}
		out[name] = v
	}
	return out
}

// optionValue converts YAML lists into the option value shapes models take.
func optionValue(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	strs := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return list
		}
		strs = append(strs, s)
	}
	return strs
}
