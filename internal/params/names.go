package params

import (
	"fmt"
	"strings"
)

// Electrode is one of the two electrode roles.
type Electrode int

const (
	Negative Electrode = iota
	Positive
)

// Electrodes lists the roles in (negative, positive) order.
var Electrodes = [2]Electrode{Negative, Positive}

// String returns the capitalised name used at the start of parameter names.
func (e Electrode) String() string {
	if e == Positive {
		return "Positive"
	}
	return "Negative"
}

// Lower returns the name used inside parameter names.
func (e Electrode) Lower() string { return strings.ToLower(e.String()) }

// Phase is a blended-material prefix ("Primary: ") or "" for a single phase.
type Phase string

const SinglePhase Phase = ""

// MaterialNames are the blended phases in order.
var MaterialNames = []string{"Primary", "Secondary"}

// MaterialPhases returns the phase prefixes for a blended electrode.
func MaterialPhases() []Phase {
	out := make([]Phase, 0, len(MaterialNames))
	for _, n := range MaterialNames {
		out = append(out, Phase(n+": "))
	}
	return out
}

// Canonical names shared across stages.
const (
	ReferenceTemperature    = "Reference temperature [K]"
	AmbientTemperature      = "Ambient temperature [K]"
	LowerCutoff             = "Lower voltage cut-off [V]"
	UpperCutoff             = "Upper voltage cut-off [V]"
	ContactResistance       = "Contact resistance [Ohm]"
	HeatTransferCoeff       = "Total heat transfer coefficient [W.m-2.K-1]"
	CyclableLithium         = "AE: Total cyclable lithium inventory [mol.m-2]"
	ElectrolyteConductivity = "Electrolyte conductivity [S.m-1]"
	ElectrolyteDiffusivity  = "Electrolyte diffusivity [m2.s-1]"
	ElectrolyteInitialConc  = "Initial concentration in electrolyte [mol.m-3]"
	ElectrodeArea           = "Electrode area [m2]"
	NominalCapacity         = "Nominal cell capacity [A.h]"
)

// ElectrodeParam builds "{phase}{Electrode} electrode {suffix}".
func ElectrodeParam(ph Phase, e Electrode, suffix string) string {
	return fmt.Sprintf("%s%s electrode %s", ph, e, suffix)
}

// ParticleParam builds "{phase}{Electrode} particle {suffix}".
func ParticleParam(ph Phase, e Electrode, suffix string) string {
	return fmt.Sprintf("%s%s particle %s", ph, e, suffix)
}

func OCP(ph Phase, e Electrode) string { return ElectrodeParam(ph, e, "OCP [V]") }

// BranchOCP builds the OCP name of an electrode-level hysteresis branch
// ("lithiation" or "delithiation").
func BranchOCP(ph Phase, e Electrode, branch string) string {
	return ElectrodeParam(ph, e, branch+" OCP [V]")
}

func EntropicChange(ph Phase, e Electrode) string {
	return ElectrodeParam(ph, e, "OCP entropic change [V.K-1]")
}

func ExchangeCurrentDensity(ph Phase, e Electrode) string {
	return ElectrodeParam(ph, e, "exchange-current density [A.m-2]")
}

func VolumeFraction(ph Phase, e Electrode) string {
	return ElectrodeParam(ph, e, "active material volume fraction")
}

func Thickness(e Electrode) string { return ElectrodeParam(SinglePhase, e, "thickness [m]") }

func MinStoichiometry(ph Phase, e Electrode) string {
	return ElectrodeParam(ph, e, "minimum stoichiometry")
}

func MaxStoichiometry(ph Phase, e Electrode) string {
	return ElectrodeParam(ph, e, "maximum stoichiometry")
}

func MaxConcentration(ph Phase, e Electrode) string {
	return fmt.Sprintf("%sMaximum concentration in %s electrode [mol.m-3]", ph, e.Lower())
}

func InitialConcentration(ph Phase, e Electrode) string {
	return fmt.Sprintf("%sInitial concentration in %s electrode [mol.m-3]", ph, e.Lower())
}

func SwitchingFactor(ph Phase, e Electrode) string {
	return ParticleParam(ph, e, "hysteresis switching factor")
}

func InitialHysteresisState(ph Phase, e Electrode) string {
	return fmt.Sprintf("%sInitial hysteresis state in %s electrode", ph, e.Lower())
}
