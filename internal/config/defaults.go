package config

import (
	"strings"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
)

const (
	defaultLogLevel     = "info"
	defaultSOCInit      = 1.0
	defaultStorePath    = "data/bpxgen.db"
	defaultHTTPAddr     = ":9992"
	defaultOutputFormat = "json"
	defaultHysteresis   = "none"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Operating.applyDefaults(keys)
	c.Model.applyDefaults(keys)
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &c.Store.Path, defaultStorePath),
		stringFieldDefault("http.addr", &c.HTTP.Addr, defaultHTTPAddr),
		stringFieldDefault("output.format", &c.Output.Format, defaultOutputFormat),
	)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.log_level", &a.LogLevel, defaultLogLevel),
	)
}

func (o *OperatingConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "operating.soc_init",
			need:  func() bool { return o.SOCInit == nil },
			apply: func() { v := defaultSOCInit; o.SOCInit = &v },
		},
		stringFieldDefault("operating.soc_definition.method", &o.SOCDefinition.Method, string(electrochem.MethodVoltage)),
	)
}

func (m *ModelConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("model.type", &m.Type, string(model.DFN)),
		stringFieldDefault("model.hysteresis_model", &m.HysteresisModel, defaultHysteresis),
		stringFieldDefault("model.hysteresis_branch", &m.HysteresisBranch, string(electrochem.BranchAverage)),
		stringFieldDefault("model.hysteresis_preceding_state", &m.HysteresisPrecedingState, string(electrochem.BranchAverage)),
		boolFieldDefault("model.trim_model_events", &m.TrimModelEvents, true),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return strings.TrimSpace(*target) == "" },
		apply: func() { *target = def },
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:   key,
		apply: func() { *target = def },
	}
}
