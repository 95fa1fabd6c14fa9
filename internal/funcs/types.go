package funcs

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"bpxgen/internal/params"
	"bpxgen/internal/pkg/numeric"
	"bpxgen/internal/pkg/phys"
)

const labelCeT = "f(c_e, T)"

// builder makes a (c_e, T) function from a coefficient tree.
type builder func(c Coeffs) (func(ce, t float64) float64, error)

// builders holds every supported func_type; name => builder.
var builders = map[string]builder{
	"constant_arrhenius":             buildConstant,
	"polynomial_arrhenius":           buildPolynomial,
	"piecewise_polynomial_arrhenius": buildPiecewise,
	"table_arrhenius":                buildTable,
}

// FuncTypes lists the supported function types.
func FuncTypes() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MakeGeneric builds a concentration and temperature dependent function of
// the declared type. The result takes (c_e, T).
func MakeGeneric(funcType string, c Coeffs) (params.Value, error) {
	build, ok := builders[funcType]
	if !ok {
		return params.Value{}, fmt.Errorf("unsupported func_type %q (supported: %s)", funcType, strings.Join(FuncTypes(), ", "))
	}
	base, err := build(c)
	if err != nil {
		return params.Value{}, fmt.Errorf("%s: %w", funcType, err)
	}
	ea, tref, err := c.Arrhenius()
	if err != nil {
		return params.Value{}, fmt.Errorf("%s: %w", funcType, err)
	}
	return params.Function(func(args ...float64) float64 {
		if len(args) < 2 {
			return math.NaN()
		}
		ce, t := args[0], args[1]
		return base(ce, t) * phys.Arrhenius(ea, tref, t)
	}, fmt.Sprintf("%s %s", funcType, labelCeT)), nil
}

func buildConstant(c Coeffs) (func(ce, t float64) float64, error) {
	v, err := c.Float("value")
	if err != nil {
		return nil, err
	}
	return func(_, _ float64) float64 { return v }, nil
}

func buildPolynomial(c Coeffs) (func(ce, t float64) float64, error) {
	coeffs, err := c.Floats("coeffs")
	if err != nil {
		return nil, err
	}
	return func(ce, _ float64) float64 { return polyval(coeffs, ce) }, nil
}

// buildPiecewise reads "breakpoints" (n+1 values) and "pieces.<i>.coeffs"
// for i < n. Concentrations outside the breakpoints use the end pieces.
func buildPiecewise(c Coeffs) (func(ce, t float64) float64, error) {
	bps, err := c.Floats("breakpoints")
	if err != nil {
		return nil, err
	}
	if len(bps) < 2 || !sort.Float64sAreSorted(bps) {
		return nil, fmt.Errorf("breakpoints must be ascending with at least two values")
	}
	group, err := c.Group("pieces")
	if err != nil {
		return nil, err
	}
	if group.Len() != len(bps)-1 {
		return nil, fmt.Errorf("%d pieces for %d breakpoints", group.Len(), len(bps))
	}
	pieces := make([][]float64, group.Len())
	for i := range pieces {
		piece, err := group.Group(fmt.Sprint(i))
		if err != nil {
			return nil, err
		}
		if pieces[i], err = piece.Floats("coeffs"); err != nil {
			return nil, fmt.Errorf("piece %d: %w", i, err)
		}
	}
	return func(ce, _ float64) float64 {
		i := sort.SearchFloat64s(bps, ce) - 1
		if i < 0 {
			i = 0
		}
		if i >= len(pieces) {
			i = len(pieces) - 1
		}
		return polyval(pieces[i], ce)
	}, nil
}

func buildTable(c Coeffs) (func(ce, t float64) float64, error) {
	xs, err := c.Floats("x")
	if err != nil {
		return nil, err
	}
	ys, err := c.Floats("y")
	if err != nil {
		return nil, err
	}
	lin, err := numeric.NewLinear(xs, ys)
	if err != nil {
		return nil, err
	}
	return func(ce, _ float64) float64 { return lin.At(ce) }, nil
}

// polyval evaluates sum(c[i] * x^i).
func polyval(c []float64, x float64) float64 {
	var out float64
	for i := len(c) - 1; i >= 0; i-- {
		out = out*x + c[i]
	}
	return out
}
