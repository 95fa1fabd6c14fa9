package funcs

import (
	"math"
	"strings"
	"testing"

	"bpxgen/internal/params"
	"bpxgen/internal/pkg/phys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExchangeCurrentDensity(t *testing.T) {
	set := params.Set{
		params.ReferenceTemperature:                                             params.Scalar(298.15),
		"Negative electrode exchange-current density pre-multiplier":            params.Scalar(2),
		"Negative electrode reaction rate constant [mol.m-2.s-1]":               params.Scalar(1e-10),
		"Negative electrode reaction rate constant activation energy [J.mol-1]": params.Scalar(30000),
		"Positive electrode exchange-current density [A.m-2]":                   params.Scalar(5),
	}

	patch, err := BuildExchangeCurrentDensity(set)
	require.NoError(t, err)
	set.Apply(patch)

	assert.False(t, set.AnyContains("pre-multiplier"))
	assert.False(t, set.AnyContains("reaction rate constant"))
	assert.True(t, set.Has(params.ReferenceTemperature))

	j0 := set["Negative electrode exchange-current density [A.m-2]"]
	require.Equal(t, params.KindFunction, j0.Kind())

	atRef, err := j0.Eval(1000, 15000, 30000, 298.15)
	require.NoError(t, err)
	assert.InDelta(t, phys.Faraday*1e-10*2, atRef, 1e-15)

	hot, err := j0.Eval(1000, 15000, 30000, 318.15)
	require.NoError(t, err)
	assert.InDelta(t, atRef*phys.Arrhenius(30000, 298.15, 318.15), hot, 1e-15)
	assert.Greater(t, hot, atRef)

	f, err := set.Float("Positive electrode exchange-current density [A.m-2]")
	require.NoError(t, err)
	assert.Equal(t, 5.0, f)
}

func TestBuildExchangeCurrentDensityTablePremultiplier(t *testing.T) {
	set := params.Set{
		params.ReferenceTemperature:                                             params.Scalar(298.15),
		"Positive electrode exchange-current density pre-multiplier":            params.Table([]float64{0, 1}, []float64{0, 2}),
		"Positive electrode reaction rate constant [mol.m-2.s-1]":               params.Scalar(1e-11),
		"Positive electrode reaction rate constant activation energy [J.mol-1]": params.Scalar(0),
	}
	patch, err := BuildExchangeCurrentDensity(set)
	require.NoError(t, err)
	set.Apply(patch)

	got, err := set["Positive electrode exchange-current density [A.m-2]"].Eval(1000, 25000, 50000, 298.15)
	require.NoError(t, err)
	assert.InDelta(t, phys.Faraday*1e-11*1.0, got, 1e-18)
}

func TestBuildExchangeCurrentDensityMissingInput(t *testing.T) {
	set := params.Set{
		params.ReferenceTemperature:                                  params.Scalar(298.15),
		"Negative electrode exchange-current density pre-multiplier": params.Scalar(1),
	}
	_, err := BuildExchangeCurrentDensity(set)
	assert.ErrorIs(t, err, params.ErrMissing)
}

func TestBuildGenericConsumesSiblings(t *testing.T) {
	const param = "Electrolyte conductivity [S.m-1]"
	set := params.Set{
		params.ReferenceTemperature:               params.Scalar(298.15),
		param:                                     params.Scalar(1.0),
		param + " func_type polynomial_arrhenius": params.Text(""),
		param + " coeffs.0":                       params.Scalar(0.1),
		param + " coeffs.1":                       params.Scalar(0.001),
		param + " Ea":                             params.Scalar(17000),
		"Electrolyte diffusivity [m2.s-1]":        params.Scalar(3e-10),
	}

	patch, err := BuildGeneric(set)
	require.NoError(t, err)
	set.Apply(patch)

	for k := range set {
		assert.False(t, strings.HasPrefix(k, param+" "), "residual entry %q", k)
	}
	assert.True(t, set.Has("Electrolyte diffusivity [m2.s-1]"))

	fn := set[param]
	require.Equal(t, params.KindFunction, fn.Kind())
	got, err := fn.Eval(1000, 298.15)
	require.NoError(t, err)
	assert.InDelta(t, 1.1, got, 1e-12)

	hot, err := fn.Eval(1000, 308.15)
	require.NoError(t, err)
	assert.InDelta(t, 1.1*phys.Arrhenius(17000, 298.15, 308.15), hot, 1e-12)
}

func TestBuildGenericNoMarker(t *testing.T) {
	set := params.Set{"Electrolyte conductivity [S.m-1] coeffs.0": params.Scalar(1)}
	patch, err := BuildGeneric(set)
	require.NoError(t, err)
	assert.True(t, patch.Empty())
}

func TestBuildGenericPiecewise(t *testing.T) {
	const param = "Electrolyte diffusivity [m2.s-1]"
	set := params.Set{
		param + " func_type piecewise_polynomial_arrhenius": params.Text(""),
		param + " breakpoints":                              params.Array([]float64{0, 1000, 4000}),
		param + " pieces.0.coeffs":                          params.Array([]float64{1, 0.001}),
		param + " pieces.1.coeffs.0":                        params.Scalar(3),
		param + " pieces.1.coeffs.1":                        params.Scalar(-0.0005),
	}
	patch, err := BuildGeneric(set)
	require.NoError(t, err)
	set.Apply(patch)
	require.Len(t, set, 1)

	low, err := set[param].Eval(500, 298.15)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, low, 1e-12)

	high, err := set[param].Eval(2000, 298.15)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, high, 1e-12)
}

func TestBuildGenericUnknownType(t *testing.T) {
	set := params.Set{
		"X [1] func_type spline": params.Text(""),
		"X [1] value":            params.Scalar(1),
	}
	_, err := BuildGeneric(set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constant_arrhenius")
}

func TestUnflatten(t *testing.T) {
	tree, err := Unflatten(map[string]params.Value{
		"Ea":         params.Scalar(1),
		"pieces.0.a": params.Scalar(2),
		"pieces.1.a": params.Scalar(3),
	})
	require.NoError(t, err)
	pieces, ok := tree["pieces"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, pieces, 2)

	_, err = Unflatten(map[string]params.Value{"a": params.Scalar(1), "a.b": params.Scalar(2)})
	assert.Error(t, err)
}

func TestPolyval(t *testing.T) {
	assert.Equal(t, 1.0+2*2+3*4, polyval([]float64{1, 2, 3}, 2))
	assert.True(t, math.IsNaN(polyval([]float64{math.NaN()}, 1)))
}
