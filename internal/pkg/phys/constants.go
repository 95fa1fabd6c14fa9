// Package phys holds physical constants and the Arrhenius correction shared
// by parameter functions.
package phys

import "math"

const (
	// Faraday constant [C.mol-1].
	Faraday = 96485.33212
	// GasConstant is the molar gas constant [J.mol-1.K-1].
	GasConstant = 8.314462618
)

// Arrhenius returns exp(Ea/R * (1/Tref - 1/T)).
func Arrhenius(ea, tref, t float64) float64 {
	if ea == 0 {
		return 1
	}
	return math.Exp(ea / GasConstant * (1/tref - 1/t))
}
