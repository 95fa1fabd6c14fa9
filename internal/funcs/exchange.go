// Package funcs synthesizes parameter functions from coefficient entries
// carried in the user-defined section of a parameter file.
package funcs

import (
	"fmt"
	"math"
	"strings"

	"bpxgen/internal/params"
	"bpxgen/internal/pkg/phys"
)

const (
	tagPremultiplier = "exchange-current density pre-multiplier"
	tagRateConstant  = "reaction rate constant [mol.m-2.s-1]"
	tagRateEa        = "reaction rate constant activation energy [J.mol-1]"

	labelJ0 = "j0(c_e, c_s_surf, c_s_max, T)"
)

// BuildExchangeCurrentDensity replaces every "... exchange-current density
// pre-multiplier" entry with a full "... exchange-current density [A.m-2]"
// function. The pre-multiplier, the reaction rate constant and its activation
// energy are consumed.
func BuildExchangeCurrentDensity(set params.Set) (params.Patch, error) {
	patch := params.NewPatch()
	for _, key := range set.KeysContaining(tagPremultiplier) {
		rateKey := strings.Replace(key, tagPremultiplier, tagRateConstant, 1)
		eaKey := strings.Replace(key, tagPremultiplier, tagRateEa, 1)

		k, err := set.Float(rateKey)
		if err != nil {
			return params.Patch{}, err
		}
		ea, err := set.Float(eaKey)
		if err != nil {
			return params.Patch{}, err
		}
		tref, err := set.Float(params.ReferenceTemperature)
		if err != nil {
			return params.Patch{}, err
		}
		premul, err := set.Get(key)
		if err != nil {
			return params.Patch{}, err
		}
		j0, err := MakeJ0(phys.Faraday*k, ea, tref, premul)
		if err != nil {
			return params.Patch{}, fmt.Errorf("%s: %w", key, err)
		}
		patch.Put(strings.Replace(key, "pre-multiplier", "[A.m-2]", 1), j0)
		patch.Remove(key, rateKey, eaKey)
	}
	return patch, nil
}

// MakeJ0 builds j0 = j0ref * exp(Ea/R (1/Tref - 1/T)) * premul. A tabulated
// pre-multiplier is read against the surface stoichiometry c_s_surf/c_s_max;
// a function pre-multiplier receives the full argument list.
func MakeJ0(j0ref, ea, tref float64, premul params.Value) (params.Value, error) {
	var pre func(ce, cs, cmax, t float64) float64
	switch premul.Kind() {
	case params.KindScalar:
		c, _ := premul.Float()
		pre = func(_, _, _, _ float64) float64 { return c }
	case params.KindTable:
		fn, err := premul.Func()
		if err != nil {
			return params.Value{}, err
		}
		pre = func(_, cs, cmax, _ float64) float64 { return fn(cs / cmax) }
	case params.KindFunction:
		fn, _ := premul.Func()
		pre = func(ce, cs, cmax, t float64) float64 { return fn(ce, cs, cmax, t) }
	default:
		return params.Value{}, fmt.Errorf("unsupported pre-multiplier %s", premul.Kind())
	}
	return params.Function(func(args ...float64) float64 {
		if len(args) < 4 {
			return math.NaN()
		}
		ce, cs, cmax, t := args[0], args[1], args[2], args[3]
		return j0ref * phys.Arrhenius(ea, tref, t) * pre(ce, cs, cmax, t)
	}, labelJ0), nil
}

// StandardJ0 is the symmetric Butler-Volmer form
// F k sqrt(c_e c_s (c_max - c_s)) with an Arrhenius correction.
func StandardJ0(k, ea, tref float64) params.Value {
	j0ref := phys.Faraday * k
	return params.Function(func(args ...float64) float64 {
		if len(args) < 4 {
			return math.NaN()
		}
		ce, cs, cmax, t := args[0], args[1], args[2], args[3]
		return j0ref * phys.Arrhenius(ea, tref, t) * math.Sqrt(math.Max(ce*cs*(cmax-cs), 0))
	}, labelJ0)
}
