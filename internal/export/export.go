// Package export renders derivation results for files, terminals and the
// HTTP API.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"bpxgen/internal/model"
	"bpxgen/internal/params"
	"bpxgen/internal/pipeline"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates s; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: json, yaml)", s)
	}
}

// Document is the serialised form of a derivation.
type Document struct {
	Source     string                  `json:"source,omitempty" yaml:"source,omitempty"`
	SOC        float64                 `json:"soc" yaml:"soc"`
	Model      ModelDoc                `json:"model" yaml:"model"`
	Parameters map[string]params.Value `json:"parameters" yaml:"parameters"`
	Stages     []StageDoc              `json:"stages,omitempty" yaml:"stages,omitempty"`
	Warnings   []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type ModelDoc struct {
	Type        model.Type        `json:"type" yaml:"type"`
	Options     map[string]string `json:"options" yaml:"options"`
	Events      []string          `json:"events" yaml:"events"`
	HeatSources []string          `json:"heat_sources,omitempty" yaml:"heat_sources,omitempty"`
}

type StageDoc struct {
	Name     string   `json:"name" yaml:"name"`
	Produced []string `json:"produced,omitempty" yaml:"produced,omitempty"`
	Consumed []string `json:"consumed,omitempty" yaml:"consumed,omitempty"`
}

// NewDocument flattens res.
func NewDocument(res *pipeline.Result) Document {
	doc := Document{
		Source:     res.Source,
		SOC:        res.SOC,
		Parameters: res.Params,
		Warnings:   res.Warnings,
	}
	if res.Model != nil {
		doc.Model = ModelDoc{
			Type:        res.Model.Type,
			Options:     renderOptions(res.Options),
			Events:      res.Model.EventNames(),
			HeatSources: res.Model.HeatSources,
		}
	}
	for _, st := range res.Stages {
		doc.Stages = append(doc.Stages, StageDoc(st))
	}
	return doc
}

func renderOptions(opts model.Options) map[string]string {
	out := make(map[string]string, len(opts))
	for k, v := range opts {
		out[k] = model.FormatOption(v)
	}
	return out
}

// Write encodes res to w.
func Write(w io.Writer, res *pipeline.Result, f Format) error {
	doc := NewDocument(res)
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
