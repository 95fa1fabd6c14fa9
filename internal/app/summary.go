package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"bpxgen/internal/config"
	"bpxgen/internal/model"
)

type StartupSummary struct {
	Source      SourceSummary
	Model       ModelSummary
	Store       string
	HTTP        HTTPSummary
	Stages      []string
	Degradation map[string]any
}

type SourceSummary struct {
	Path         string
	ParameterSet string
}

type ModelSummary struct {
	Type       string
	Hysteresis string
	Branch     string
	Blended    []bool
	Extra      map[string]string
}

type HTTPSummary struct {
	Addr string
	Root string
}

func newStartupSummary(cfg *config.Config, root string, stages []string) *StartupSummary {
	s := &StartupSummary{
		Source: SourceSummary{
			Path:         cfg.Resolve(cfg.Source.Path),
			ParameterSet: cfg.Source.ParameterSet,
		},
		Model: ModelSummary{
			Type:       cfg.Model.Type,
			Hysteresis: cfg.Model.HysteresisModel,
			Branch:     cfg.Model.HysteresisBranch,
			Blended:    cfg.Model.BlendedElectrode,
		},
		HTTP:        HTTPSummary{Addr: cfg.HTTP.Addr, Root: root},
		Stages:      stages,
		Degradation: cfg.Degradation,
	}
	if cfg.Store.Enabled {
		s.Store = cfg.Resolve(cfg.Store.Path)
	}
	if len(cfg.Model.ExtraOptions) > 0 {
		s.Model.Extra = make(map[string]string, len(cfg.Model.ExtraOptions))
		for k, v := range cfg.Model.ExtraOptions {
			s.Model.Extra[k] = model.FormatOption(v)
		}
	}
	return s
}

func (s *StartupSummary) Print(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len("STARTUP SUMMARY")/2, "STARTUP SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[SOURCE]")
	fmt.Fprintf(w, "  document:      %s\n", orDash(s.Source.Path))
	fmt.Fprintf(w, "  parameter set: %s\n", orDash(s.Source.ParameterSet))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[MODEL]")
	fmt.Fprintf(w, "  type:       %s\n", orDash(s.Model.Type))
	fmt.Fprintf(w, "  hysteresis: %s (branch %s)\n", orDash(s.Model.Hysteresis), orDash(s.Model.Branch))
	fmt.Fprintf(w, "  blended:    %v\n", s.Model.Blended)
	for _, k := range sortedKeys(s.Model.Extra) {
		fmt.Fprintf(w, "  option %s = %s\n", k, s.Model.Extra[k])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[DEGRADATION]")
	if len(s.Degradation) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, k := range sortedKeys(s.Degradation) {
		fmt.Fprintf(w, "  %s = %v\n", k, s.Degradation[k])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[PIPELINE]")
	fmt.Fprintf(w, "  stages: %s\n", formatList(s.Stages))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[SERVICES]")
	fmt.Fprintf(w, "  run store: %s\n", orDash(s.Store))
	fmt.Fprintf(w, "  http:      %s (root %s)\n", orDash(s.HTTP.Addr), orDash(s.HTTP.Root))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
