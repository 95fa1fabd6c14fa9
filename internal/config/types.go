package config

import "strings"

// Config is one bpxgen run configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Source    SourceConfig    `mapstructure:"source"`
	Operating OperatingConfig `mapstructure:"operating"`
	// Degradation is kept untyped: it is decoded and checked together with
	// the rest of the request.
	Degradation map[string]any `mapstructure:"degradation"`
	Thermal     ThermalConfig  `mapstructure:"thermal"`
	Model       ModelConfig    `mapstructure:"model"`
	Store       StoreConfig    `mapstructure:"store"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Output      OutputConfig   `mapstructure:"output"`

	// dir is the directory of the main config file; relative paths are
	// resolved against it.
	dir string
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

type SourceConfig struct {
	Path         string `mapstructure:"path"`
	ParameterSet string `mapstructure:"parameter_set"`
}

type OperatingConfig struct {
	SOCInit       *float64            `mapstructure:"soc_init"`
	OCVInit       *float64            `mapstructure:"ocv_init"`
	SOCDefinition SOCDefinitionConfig `mapstructure:"soc_definition"`
}

// SOCDefinitionConfig points at an external OCV-SOC curve, either as a
// two-column CSV file or inline rows.
type SOCDefinitionConfig struct {
	DataPath string      `mapstructure:"data_path"`
	Data     [][]float64 `mapstructure:"data"`
	Method   string      `mapstructure:"method"`
}

func (s SOCDefinitionConfig) empty() bool {
	return strings.TrimSpace(s.DataPath) == "" && len(s.Data) == 0
}

type ThermalConfig struct {
	HTCExt *float64 `mapstructure:"htc_ext"`
}

type ModelConfig struct {
	Type                     string         `mapstructure:"type"`
	HysteresisModel          string         `mapstructure:"hysteresis_model"`
	HysteresisBranch         string         `mapstructure:"hysteresis_branch"`
	HysteresisPrecedingState string         `mapstructure:"hysteresis_preceding_state"`
	BlendedElectrode         []bool         `mapstructure:"blended_electrode"`
	AddHysteresisHeatSource  bool           `mapstructure:"add_hysteresis_heat_source"`
	TrimModelEvents          bool           `mapstructure:"trim_model_events"`
	ExtraOptions             map[string]any `mapstructure:"extra_options"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	// Root confines API request paths; it defaults to the config directory.
	Root string `mapstructure:"root"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string { return c.dir }

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

// fieldDefault applies def unless the key was set explicitly or need says no.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
