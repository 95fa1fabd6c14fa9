package config

import (
	"fmt"
	"slices"
	"strings"

	"bpxgen/internal/logger"
)

var outputFormats = []string{"json", "yaml"}

// validate checks the run configuration. Request arguments are checked
// later, together, by the pipeline.
func validate(c *Config) error {
	if _, err := logger.ParseLevel(c.App.LogLevel); err != nil {
		return fmt.Errorf("app.log_level: %w", err)
	}
	if strings.TrimSpace(c.Source.Path) == "" {
		return fmt.Errorf("source.path is required")
	}
	if len(c.Model.BlendedElectrode) > 2 {
		return fmt.Errorf("model.blended_electrode takes at most two flags (negative, positive), got %d", len(c.Model.BlendedElectrode))
	}
	sd := c.Operating.SOCDefinition
	if strings.TrimSpace(sd.DataPath) != "" && len(sd.Data) > 0 {
		return fmt.Errorf("operating.soc_definition: set either data_path or data, not both")
	}
	if !slices.Contains(outputFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format %q unsupported (supported: %s)", c.Output.Format, strings.Join(outputFormats, ", "))
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required when the store is enabled")
	}
	return nil
}
