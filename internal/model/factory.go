package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownOption = errors.New("model: unknown option")

// Heat source terms reported by models that compute heat sources.
const (
	HeatOhmic          = "Ohmic heating [W.m-3]"
	HeatIrreversible   = "Irreversible electrochemical heating [W.m-3]"
	HeatReversible     = "Reversible heating [W.m-3]"
	HeatHysteresis     = "Hysteresis heating [W.m-3]"
	OptionHeatIsotherm = "calculate heat source for isothermal models"
	OptionThermal      = "thermal"
)

// knownOptions are the structural options a model accepts.
var knownOptions = []string{
	"calculate heat source for isothermal models",
	"cell geometry",
	"contact resistance",
	"current collector",
	"diffusivity",
	"dimensionality",
	"electrolyte conductivity",
	"exchange-current density",
	"heat of mixing",
	"intercalation kinetics",
	"interface utilisation",
	"lithium plating",
	"lithium plating porosity change",
	"loss of active material",
	"open-circuit potential",
	"operating mode",
	"particle",
	"particle mechanics",
	"particle phases",
	"particle shape",
	"particle size",
	"SEI",
	"SEI film resistance",
	"SEI on cracks",
	"SEI porosity change",
	"stress-induced diffusion",
	"surface form",
	"thermal",
	"total interfacial current density as a state",
	"transport efficiency",
	"voltage as a state",
	"working electrode",
	"x-average side reactions",
}

// CanonicalOption returns the known option matching name regardless of
// case, or name itself when there is none.
func CanonicalOption(name string) string {
	for _, k := range knownOptions {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

// Class describes one model type.
type Class struct {
	Type Type
	// Electrolyte reports whether the class resolves electrolyte
	// concentration and so carries an electrolyte cut-off event.
	Electrolyte bool
}

var classes = map[Type]Class{
	DFN:  {Type: DFN, Electrolyte: true},
	SPMe: {Type: SPMe, Electrolyte: true},
	SPM:  {Type: SPM},
}

// Lookup returns the class for t.
func Lookup(t Type) (Class, error) {
	c, ok := classes[t]
	if !ok {
		_, err := ParseType(string(t))
		return Class{}, err
	}
	return c, nil
}

// New builds a model of class c with opts.
func (c Class) New(opts Options) (*Model, error) {
	for _, k := range opts.Keys() {
		if !slices.Contains(knownOptions, k) {
			return nil, fmt.Errorf("%w %q", ErrUnknownOption, k)
		}
	}
	m := &Model{Type: c.Type, Options: opts.Clone()}
	for _, name := range []string{
		"Minimum voltage [V]",
		"Maximum voltage [V]",
		"Minimum voltage switch [V]",
		"Maximum voltage switch [V]",
		"Minimum negative particle surface stoichiometry",
		"Maximum negative particle surface stoichiometry",
		"Minimum positive particle surface stoichiometry",
		"Maximum positive particle surface stoichiometry",
	} {
		m.Events = append(m.Events, Event{Name: name})
	}
	if c.Electrolyte {
		m.Events = append(m.Events, Event{Name: "Zero electrolyte concentration cut-off"})
	}
	if computesHeat(opts) {
		m.HeatSources = []string{HeatOhmic, HeatIrreversible, HeatReversible}
	}
	return m, nil
}

func computesHeat(opts Options) bool {
	if v, ok := opts[OptionHeatIsotherm].(string); ok && strings.EqualFold(v, "true") {
		return true
	}
	if v, ok := opts[OptionThermal].(string); ok && v != "" && v != "isothermal" {
		return true
	}
	return false
}

// Factory constructs models.
type Factory interface {
	New(t Type, opts Options) (*Model, error)
}

// DefaultFactory resolves the class with Lookup.
type DefaultFactory struct{}

func (DefaultFactory) New(t Type, opts Options) (*Model, error) {
	c, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	return c.New(opts)
}
