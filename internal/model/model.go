// Package model describes the electrochemical model the derived parameters
// are handed to: its class, structural options, termination events and heat
// source terms. It does not solve anything.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Type is an electrochemical model class.
type Type string

const (
	DFN  Type = "DFN"
	SPMe Type = "SPMe"
	SPM  Type = "SPM"
)

// Types lists the supported model classes.
var Types = []Type{DFN, SPMe, SPM}

// ParseType validates s.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return "", fmt.Errorf("unsupported model type %q (supported: %s)", s, strings.Join(names, ", "))
}

// Options are the structural model options. Values are a string, a []string
// or a []any holding per-electrode strings or []string.
type Options map[string]any

// Keys returns the sorted option names.
func (o Options) Keys() []string {
	out := make([]string, 0, len(o))
	for k := range o {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone copies the top level of o.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// FormatOption renders an option value the way it is passed to the model.
func FormatOption(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []string:
		return "(" + strings.Join(x, ", ") + ")"
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = FormatOption(item)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprint(v)
	}
}

// Event is a termination event of the model.
type Event struct {
	Name string `json:"name"`
}

// Model is a configured model instance.
type Model struct {
	Type        Type     `json:"type"`
	Options     Options  `json:"options"`
	Events      []Event  `json:"events"`
	HeatSources []string `json:"heat_sources,omitempty"`
}

// EventNames returns the event names in order.
func (m *Model) EventNames() []string {
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Name
	}
	return out
}

// RemoveEvents drops every event whose name contains sub and returns how
// many were removed.
func (m *Model) RemoveEvents(sub string) int {
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !strings.Contains(e.Name, sub) {
			kept = append(kept, e)
		}
	}
	n := len(m.Events) - len(kept)
	m.Events = kept
	return n
}
