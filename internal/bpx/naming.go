package bpx

import (
	"fmt"
	"strings"
	"unicode"

	"bpxgen/internal/params"
)

// Field names inside an electrode (or particle) section that get special
// handling when flattened.
const (
	fieldRateConstant   = "Reaction rate constant [mol.m-2.s-1]"
	fieldRateEa         = "Reaction rate constant activation energy [J.mol-1]"
	fieldSurfaceArea    = "Surface area per unit volume [m-1]"
	fieldParticleRadius = "Particle radius [m]"
	fieldMaxConc        = "Maximum concentration [mol.m-3]"
	fieldMinSto         = "Minimum stoichiometry"
	fieldMaxSto         = "Maximum stoichiometry"
)

var cellNames = map[string]string{
	"Specific heat capacity [J.K-1.kg-1]": "Cell specific heat capacity [J.K-1.kg-1]",
	"Thermal conductivity [W.m-1.K-1]":    "Cell thermal conductivity [W.m-1.K-1]",
	"Density [kg.m-3]":                    "Cell density [kg.m-3]",
	"Volume [m3]":                         "Cell volume [m3]",
	"External surface area [m2]":          "Cell cooling surface area [m2]",
}

var electrolyteNames = map[string]string{
	"Initial concentration [mol.m-3]": params.ElectrolyteInitialConc,
	"Cation transference number":      "Cation transference number",
}

// lowerFirst lower-cases the first rune unless the word is an acronym.
func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) < 2 || unicode.IsUpper(r[1]) {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func cellName(field string) string {
	if n, ok := cellNames[field]; ok {
		return n
	}
	return field
}

func electrolyteName(field string) string {
	if n, ok := electrolyteNames[field]; ok {
		return n
	}
	return "Electrolyte " + lowerFirst(field)
}

func separatorName(field string) string {
	return "Separator " + lowerFirst(field)
}

// electrodeName maps an electrode or particle field onto its parameter name.
func electrodeName(ph params.Phase, e params.Electrode, field string) string {
	switch field {
	case fieldParticleRadius:
		return params.ParticleParam(ph, e, "radius [m]")
	case fieldMaxConc:
		return params.MaxConcentration(ph, e)
	case fieldMinSto:
		return params.MinStoichiometry(ph, e)
	case fieldMaxSto:
		return params.MaxStoichiometry(ph, e)
	case "Entropic change coefficient [V.K-1]":
		return params.EntropicChange(ph, e)
	case fieldSurfaceArea:
		return params.ElectrodeParam(ph, e, "surface area to volume ratio [m-1]")
	case fieldRateConstant:
		return params.ElectrodeParam(ph, e, "reaction rate constant [mol.m-2.s-1]")
	case fieldRateEa:
		return params.ElectrodeParam(ph, e, "reaction rate constant activation energy [J.mol-1]")
	}
	if rest, ok := strings.CutPrefix(field, "Diffusivity"); ok {
		return params.ParticleParam(ph, e, "diffusivity"+rest)
	}
	return params.ElectrodeParam(ph, e, lowerFirst(field))
}

// sectionElectrode maps a section title to its electrode.
func sectionElectrode(title string) (params.Electrode, error) {
	switch title {
	case "Negative electrode":
		return params.Negative, nil
	case "Positive electrode":
		return params.Positive, nil
	}
	return 0, fmt.Errorf("bpx: unknown electrode section %q", title)
}
